package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-realestate-listings/internal/container"
	handlers "github.com/oksasatya/go-realestate-listings/internal/interface/http"
	"github.com/oksasatya/go-realestate-listings/internal/interface/middleware"
	"github.com/oksasatya/go-realestate-listings/pkg/helpers"
)

type PropertyModule struct {
	Handler *handlers.PropertyHandler
	JWT     *helpers.JWTManager
}

func NewPropertyModule(h *handlers.PropertyHandler, jwt *helpers.JWTManager) *PropertyModule {
	return &PropertyModule{Handler: h, JWT: jwt}
}

func (m *PropertyModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	// Public catalog; the detail page adapts to the viewer when logged in.
	public := rg.Group("/properties")
	public.Use(middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP()))
	{
		public.GET("", m.Handler.List)
		public.GET("/:id", middleware.OptionalAuth(rdb, m.JWT), m.Handler.Detail)
	}

	owner := rg.Group("/properties")
	owner.Use(middleware.Auth(rdb, m.JWT))
	owner.Use(middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		owner.POST("", m.Handler.Create)
		owner.PUT("/:id", m.Handler.Update)
		owner.DELETE("/:id", m.Handler.Delete)
		owner.POST("/:id/images", m.Handler.UploadImage)
		owner.PUT("/:id/featured-image", m.Handler.SetFeaturedImage)
		owner.DELETE("/:id/images/:imageId", m.Handler.DeleteImage)
	}
}
