package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-realestate-listings/internal/container"
	handlers "github.com/oksasatya/go-realestate-listings/internal/interface/http"
	"github.com/oksasatya/go-realestate-listings/internal/interface/middleware"
	"github.com/oksasatya/go-realestate-listings/pkg/helpers"
)

type InquiryModule struct {
	Handler *handlers.InquiryHandler
	JWT     *helpers.JWTManager
}

func NewInquiryModule(h *handlers.InquiryHandler, jwt *helpers.JWTManager) *InquiryModule {
	return &InquiryModule{Handler: h, JWT: jwt}
}

func (m *InquiryModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	auth := rg.Group("/")
	auth.Use(middleware.Auth(rdb, m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		// sending is limited harder to keep owners' inboxes clean
		auth.POST("/properties/:id/inquiries",
			middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil),
			m.Handler.Create)
		auth.GET("/inquiries", m.Handler.List)
		auth.GET("/inquiries/:id", m.Handler.Detail)
	}
}
