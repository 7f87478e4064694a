package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
)

func registerWaterUtilityRoutes(api *gin.RouterGroup, managers gin.HandlerFunc) {
	g := api.Group("/water-utility")

	g.GET("/deliveries", scoped("ListEmergencyWaterDeliveries", listEmergencyDeliveries))
	g.POST("/deliveries", scoped("CreateEmergencyWaterDelivery", createHandler(models.CreateEmergencyWaterDelivery)))
	g.GET("/deliveries/:id", scoped("GetEmergencyWaterDelivery", byIdHandler(models.GetEmergencyWaterDelivery)))
	g.PUT("/deliveries/:id", scoped("UpdateEmergencyWaterDelivery", updateHandler(models.UpdateEmergencyWaterDelivery)))
	g.DELETE("/deliveries/:id", scoped("DeleteEmergencyWaterDelivery", byIdHandler(models.DeleteEmergencyWaterDelivery)))
	g.POST("/deliveries/:id/complete", managers, scoped("CompleteEmergencyWaterDelivery", byIdHandler(models.CompleteEmergencyWaterDelivery)))

	g.GET("/sources", scoped("ListWaterUtilitySources", listWaterSources))
	g.POST("/sources", scoped("CreateWaterUtilitySource", createHandler(models.CreateWaterUtilitySource)))
	g.PUT("/sources/:id", scoped("UpdateWaterUtilitySource", updateHandler(models.UpdateWaterUtilitySource)))

	g.GET("/bills", scoped("ListWaterUtilityBills", listWaterBills))
	g.POST("/bills", scoped("CreateWaterUtilityBill", createHandler(models.CreateWaterUtilityBill)))
	g.PUT("/bills/:id", scoped("UpdateWaterUtilityBill", updateHandler(models.UpdateWaterUtilityBill)))
	g.POST("/bills/:id/pay", scoped("MarkWaterUtilityBillPaid", markWaterBillPaid))

	g.GET("/alerts", scoped("ListWaterUtilityAlerts", listWaterAlerts))
	g.POST("/alerts", scoped("CreateWaterUtilityAlert", createHandler(models.CreateWaterUtilityAlert)))
	g.POST("/scan-missing-bills", scoped("ScanMissingWaterBills", scanMissingWaterBills))
	g.POST("/alerts/:id/dismiss", managers, scoped("DismissWaterUtilityAlert", dismissWaterAlert))

	g.GET("/settings", scoped("ListPropertyWaterSettings", listWaterSettings))
	g.POST("/settings", scoped("CreatePropertyWaterSetting", createHandler(models.CreatePropertyWaterSetting)))
	g.PUT("/settings/:id", scoped("UpdatePropertyWaterSetting", updateHandler(models.UpdatePropertyWaterSetting)))

	g.GET("/analytics", scoped("GetWaterUtilityAnalytics", waterUtilityAnalytics))
}

func listEmergencyDeliveries(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.EmergencyWaterDeliveryFilter{
		PropertyId:   q.Int("property_id"),
		StartDate:    q.Date("start_date"),
		EndDate:      q.Date("end_date"),
		DeliveryType: queryString[models.DeliveryType](c, "delivery_type"),
		BillingType:  queryString[models.BillingType](c, "billing_type"),
		Status:       queryString[models.DeliveryStatus](c, "status"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListEmergencyWaterDeliveries(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func listWaterSources(c *gin.Context, ctx context.Context, organizationId string) {
	propertyId, err := queryInt(c, "property_id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	rows, err := models.ListWaterUtilitySources(ctx, organizationId, propertyId)
	reply(c, ctx, http.StatusOK, rows, err)
}

func listWaterBills(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.WaterUtilityBillFilter{
		PropertyId:    q.Int("property_id"),
		StartDate:     q.Date("start_date"),
		EndDate:       q.Date("end_date"),
		BillType:      queryString[models.WaterBillType](c, "bill_type"),
		PaymentStatus: queryString[models.PaymentStatus](c, "payment_status"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListWaterUtilityBills(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

type markPaidRequest struct {
	PaidDate *time.Time `json:"paid_date"`
}

func markWaterBillPaid(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	var req markPaidRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	bill, err := models.MarkWaterUtilityBillPaid(ctx, organizationId, id, req.PaidDate)
	reply(c, ctx, http.StatusOK, bill, err)
}

func listWaterAlerts(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.WaterUtilityAlertFilter{
		PropertyId: q.Int("property_id"),
		AlertType:  queryString[models.WaterAlertType](c, "alert_type"),
		IsActive:   q.Bool("is_active"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListWaterUtilityAlerts(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

type dismissRequest struct {
	ActionTaken *string `json:"action_taken"`
}

func dismissWaterAlert(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	var req dismissRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	alert, err := models.DismissWaterUtilityAlert(ctx, organizationId, id, utils.GetActorIdFromContext(ctx), req.ActionTaken)
	reply(c, ctx, http.StatusOK, alert, err)
}

func scanMissingWaterBills(c *gin.Context, ctx context.Context, organizationId string) {
	alerts, err := models.ScanMissingWaterBills(ctx, organizationId, time.Now().UTC())
	reply(c, ctx, http.StatusOK, alerts, err)
}

func listWaterSettings(c *gin.Context, ctx context.Context, organizationId string) {
	propertyId, err := queryInt(c, "property_id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	rows, err := models.ListPropertyWaterSettings(ctx, organizationId, propertyId)
	reply(c, ctx, http.StatusOK, rows, err)
}

func waterUtilityAnalytics(c *gin.Context, ctx context.Context, organizationId string) {
	propertyId, err := queryInt(c, "property_id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	analytics, err := models.GetWaterUtilityAnalytics(ctx, organizationId, propertyId)
	reply(c, ctx, http.StatusOK, analytics, err)
}
