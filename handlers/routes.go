package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/hostpilotpro/hostpilot_backend/middlewares"
	"github.com/hostpilotpro/hostpilot_backend/models"
)

// RegisterRoutes mounts every feature area under /api behind bearer auth.
func RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api", middlewares.AuthMiddleware())
	managers := middlewares.RequireRole(func(role string) bool {
		return models.UserRole(role).CanManage()
	})

	registerPropertyRoutes(api)
	registerWaterUtilityRoutes(api, managers)
	registerWaterRefillRoutes(api)
	registerWaterConsumptionRoutes(api)
	registerUtilityRoutes(api, managers)
	registerBookingRevenueRoutes(api, managers)
	registerSmartPricingRoutes(api)
	registerOwnerTargetRoutes(api, managers)
	registerAiNotificationRoutes(api, managers)
}
