package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
)

func registerUtilityRoutes(api *gin.RouterGroup, managers gin.HandlerFunc) {
	g := api.Group("/utilities")

	g.GET("", scoped("ListPropertyUtilities", listPropertyUtilities))
	g.POST("", scoped("CreatePropertyUtility", createHandler(models.CreatePropertyUtility)))
	g.GET("/:id", scoped("GetPropertyUtility", byIdHandler(models.GetPropertyUtility)))
	g.PUT("/:id", scoped("UpdatePropertyUtility", updateHandler(models.UpdatePropertyUtility)))
	g.DELETE("/:id", managers, scoped("DeactivatePropertyUtility", byIdHandler(models.DeactivatePropertyUtility)))
	g.GET("/:id/predict-bill", scoped("PredictUtilityBillArrival", predictUtilityBill))
	g.GET("/:id/permissions", scoped("ListUtilityAccessPermissions", listUtilityPermissions))

	g.POST("/permissions", managers, scoped("CreateUtilityAccessPermission", createHandler(models.CreateUtilityAccessPermission)))
	g.PUT("/permissions/:id", managers, scoped("UpdateUtilityAccessPermission", updateHandler(models.UpdateUtilityAccessPermission)))

	g.GET("/bills", scoped("ListUtilityBills", listUtilityBills))
	g.POST("/bills", scoped("CreateUtilityBill", createHandler(models.CreateUtilityBill)))
	g.GET("/bills/:id", scoped("GetUtilityBill", byIdHandler(models.GetUtilityBill)))
	g.PUT("/bills/:id", scoped("UpdateUtilityBill", updateHandler(models.UpdateUtilityBill)))
	g.DELETE("/bills/:id", scoped("DeleteUtilityBill", byIdHandler(models.DeleteUtilityBill)))
	g.POST("/bills/:id/pay", scoped("MarkUtilityBillPaid", markUtilityBillPaid))

	g.GET("/notifications", scoped("ListUtilityNotifications", listUtilityNotifications))
	g.POST("/notifications", scoped("CreateUtilityNotification", createHandler(models.CreateUtilityNotification)))
	g.POST("/notifications/:id/read", scoped("MarkUtilityNotificationRead", readUtilityNotification))
	g.POST("/notifications/:id/action", scoped("MarkUtilityNotificationActionTaken", actOnUtilityNotification))

	g.GET("/dashboard", scoped("GetUtilityDashboard", utilityDashboard))
}

func listPropertyUtilities(c *gin.Context, ctx context.Context, organizationId string) {
	propertyId, err := queryInt(c, "property_id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	rows, err := models.ListPropertyUtilities(ctx, organizationId, propertyId)
	reply(c, ctx, http.StatusOK, rows, err)
}

func predictUtilityBill(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	prediction, err := models.PredictUtilityBillArrival(ctx, organizationId, id, time.Now().UTC())
	reply(c, ctx, http.StatusOK, prediction, err)
}

func listUtilityPermissions(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	rows, err := models.ListUtilityAccessPermissions(ctx, organizationId, id, queryString[models.UserRole](c, "role"))
	reply(c, ctx, http.StatusOK, rows, err)
}

func listUtilityBills(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.UtilityBillFilter{
		UtilityId:    q.Int("utility_id"),
		PropertyId:   q.Int("property_id"),
		BillingMonth: queryString[string](c, "billing_month"),
		IsPaid:       q.Bool("is_paid"),
		IsLate:       q.Bool("is_late"),
		MonthsBack:   q.Int("months_back"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListUtilityBills(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func markUtilityBillPaid(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	var req markPaidRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	bill, err := models.MarkUtilityBillPaid(ctx, organizationId, id, req.PaidDate)
	reply(c, ctx, http.StatusOK, bill, err)
}

func listUtilityNotifications(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.UtilityNotificationFilter{
		RecipientUserId:  q.Int("recipient_user_id"),
		RecipientRole:    queryString[models.UserRole](c, "recipient_role"),
		NotificationType: queryString[string](c, "notification_type"),
		IsRead:           q.Bool("is_read"),
		ActionRequired:   q.Bool("action_required"),
		Severity:         queryString[models.Severity](c, "severity"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListUtilityNotifications(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func readUtilityNotification(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	notification, err := models.MarkUtilityNotificationRead(ctx, organizationId, id, utils.GetActorIdFromContext(ctx))
	reply(c, ctx, http.StatusOK, notification, err)
}

type actionTakenRequest struct {
	Notes *string `json:"notes"`
}

func actOnUtilityNotification(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	var req actionTakenRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	notification, err := models.MarkUtilityNotificationActionTaken(ctx, organizationId, id, utils.GetActorIdFromContext(ctx), req.Notes)
	reply(c, ctx, http.StatusOK, notification, err)
}

func utilityDashboard(c *gin.Context, ctx context.Context, organizationId string) {
	dashboard, err := models.GetUtilityDashboard(ctx, organizationId, time.Now().UTC())
	reply(c, ctx, http.StatusOK, dashboard, err)
}
