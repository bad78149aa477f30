package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-realestate-listings/internal/container"
	handlers "github.com/oksasatya/go-realestate-listings/internal/interface/http"
	"github.com/oksasatya/go-realestate-listings/internal/interface/middleware"
	"github.com/oksasatya/go-realestate-listings/pkg/helpers"
)

// AccountModule wires registration, sessions, password reset and the
// user's own profile.
// Public: POST /register, /login, /refresh, /auth/reset/init, /auth/reset/confirm
// Protected: POST /logout, GET/PUT /profile, DELETE /account
type AccountModule struct {
	Handler *handlers.AccountHandler
	JWT     *helpers.JWTManager
}

func NewAccountModule(h *handlers.AccountHandler, jwt *helpers.JWTManager) *AccountModule {
	return &AccountModule{Handler: h, JWT: jwt}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	perIP := func(max int) gin.HandlerFunc {
		return middleware.RateLimit(rdb, max, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	}

	rg.POST("/register", perIP(10), m.Handler.Register)
	rg.POST("/login", perIP(10), m.Handler.Login)
	rg.POST("/refresh", perIP(60), m.Handler.Refresh)
	rg.POST("/auth/reset/init", perIP(5), m.Handler.ResetInit)
	rg.POST("/auth/reset/confirm", perIP(30), m.Handler.ResetConfirm)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(rdb, m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.DELETE("/account", m.Handler.DeleteAccount)
	}
}
