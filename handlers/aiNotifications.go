package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
)

func registerAiNotificationRoutes(api *gin.RouterGroup, managers gin.HandlerFunc) {
	g := api.Group("/ai-notifications")

	g.GET("", scoped("ListAiNotifications", listAiNotifications))
	g.POST("", scoped("CreateAiNotification", createHandler(models.CreateAiNotification)))
	g.GET("/stats", scoped("GetAiNotificationStats", aiNotificationStats))
	g.GET("/history", scoped("ListAiNotificationHistory", listAiNotificationHistory))
	g.GET("/:id", scoped("GetAiNotification", byIdHandler(models.GetAiNotification)))
	g.PUT("/:id", scoped("UpdateAiNotification", updateHandler(models.UpdateAiNotification)))
	g.DELETE("/:id", managers, scoped("DeleteAiNotification", byIdHandler(models.DeleteAiNotification)))
	g.POST("/:id/snooze", scoped("SnoozeAiNotification", snoozeAiNotification))
	g.POST("/:id/resolve", scoped("ResolveAiNotification", resolveAiNotification))

	g.GET("/reminder-settings", scoped("ListAiReminderSettings", listReminderSettings))
	g.POST("/reminder-settings", managers, scoped("CreateAiReminderSetting", createHandler(models.CreateAiReminderSetting)))
	g.PUT("/reminder-settings/:id", managers, scoped("UpdateAiReminderSetting", updateHandler(models.UpdateAiReminderSetting)))
}

// listAiNotifications defaults the role filter to the caller's role.
func listAiNotifications(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.AiNotificationFilter{
		PropertyId:    q.Int("property_id"),
		AlertType:     queryString[string](c, "alert_type"),
		Status:        queryString[models.NotificationStatus](c, "status"),
		Priority:      queryString[models.Severity](c, "priority"),
		VisibleToRole: queryString[models.UserRole](c, "role"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	if filter.VisibleToRole == nil {
		if role, ok := utils.GetRoleFromContext(ctx); ok && role != "" {
			filter.VisibleToRole = utils.Ptr(models.UserRole(role))
		}
	}
	rows, err := models.ListAiNotifications(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func aiNotificationStats(c *gin.Context, ctx context.Context, organizationId string) {
	propertyId, err := queryInt(c, "property_id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	stats, err := models.GetAiNotificationStats(ctx, organizationId, propertyId, time.Now().UTC())
	reply(c, ctx, http.StatusOK, stats, err)
}

func listAiNotificationHistory(c *gin.Context, ctx context.Context, organizationId string) {
	notificationId, err := queryInt(c, "notification_id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	rows, err := models.ListAiNotificationHistory(ctx, organizationId, notificationId)
	reply(c, ctx, http.StatusOK, rows, err)
}

type snoozeRequest struct {
	Until time.Time `json:"until" binding:"required"`
}

func snoozeAiNotification(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	var req snoozeRequest
	if !bindJSON(c, &req) {
		return
	}
	notification, err := models.SnoozeAiNotification(ctx, organizationId, id, req.Until)
	reply(c, ctx, http.StatusOK, notification, err)
}

func resolveAiNotification(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	var req actionTakenRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	notification, err := models.ResolveAiNotification(ctx, organizationId, id, req.Notes)
	reply(c, ctx, http.StatusOK, notification, err)
}

func listReminderSettings(c *gin.Context, ctx context.Context, organizationId string) {
	propertyId, err := queryInt(c, "property_id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	rows, err := models.ListAiReminderSettings(ctx, organizationId, propertyId)
	reply(c, ctx, http.StatusOK, rows, err)
}
