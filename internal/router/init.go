package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	app "github.com/oksasatya/go-realestate-listings/internal/application"
	"github.com/oksasatya/go-realestate-listings/internal/container"
	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
	handlers "github.com/oksasatya/go-realestate-listings/internal/interface/http"
	"github.com/oksasatya/go-realestate-listings/internal/router/modules"
	"github.com/oksasatya/go-realestate-listings/pkg/response"
)

// InitModules builds services and handlers from the container and adds
// their modules to the registry. Call once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	deps := container.AppDeps()

	accounts := handlers.NewAccountHandler(app.NewAccountService(deps), logger, cfg.CookieDomain, cfg.CookieSecure)
	properties := handlers.NewPropertyHandler(app.NewPropertyService(deps), app.NewListingService(deps), logger, cfg.MaxUploadBytes)
	inquiries := handlers.NewInquiryHandler(app.NewInquiryService(deps), logger)

	r.Add(modules.NewAccountModule(accounts, container.GetJWT()))
	r.Add(modules.NewPropertyModule(properties, container.GetJWT()))
	r.Add(modules.NewInquiryModule(inquiries, container.GetJWT()))
	r.Add(ModuleFunc(choices))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}

// choices publishes the enum values forms need.
func choices(rg *gin.RouterGroup) {
	rg.GET("/choices", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{
			"property_types": entity.PropertyTypes,
			"statuses":       entity.ListingStatuses,
			"roles":          []entity.Role{entity.RoleAgent, entity.RoleBuyer},
		}, "ok", nil)
	})
}
