package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
)

func registerWaterRefillRoutes(api *gin.RouterGroup) {
	refills := api.Group("/water-refills")
	refills.GET("", scoped("ListWaterRefills", listWaterRefills))
	refills.POST("", scoped("CreateWaterRefill", createHandler(models.CreateWaterRefill)))
	refills.GET("/:id", scoped("GetWaterRefill", byIdHandler(models.GetWaterRefill)))
	refills.PUT("/:id", scoped("UpdateWaterRefill", updateHandler(models.UpdateWaterRefill)))
	refills.DELETE("/:id", scoped("DeleteWaterRefill", byIdHandler(models.DeleteWaterRefill)))

	alerts := api.Group("/water-refill-alerts")
	alerts.GET("", scoped("ListWaterRefillAlerts", listWaterRefillAlerts))
	alerts.POST("", scoped("CreateWaterRefillAlert", createHandler(models.CreateWaterRefillAlert)))
	alerts.POST("/check", scoped("CheckRefillFrequency", checkRefillFrequency))
	alerts.POST("/:id/acknowledge", scoped("AcknowledgeWaterRefillAlert", acknowledgeWaterRefillAlert))

	bills := api.Group("/water-refill-bills")
	bills.GET("", scoped("ListWaterRefillBills", listWaterRefillBills))
	bills.POST("", scoped("CreateWaterRefillBill", createHandler(models.CreateWaterRefillBill)))

	suppliers := api.Group("/water-suppliers")
	suppliers.GET("", scoped("ListWaterSuppliers", listWaterSuppliers))
	suppliers.POST("", scoped("CreateWaterSupplier", createHandler(models.CreateWaterSupplier)))
	suppliers.PUT("/:id", scoped("UpdateWaterSupplier", updateHandler(models.UpdateWaterSupplier)))

	api.GET("/water-refill-analytics", scoped("GetRefillAnalytics", refillAnalytics))
}

func listWaterRefills(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.WaterRefillFilter{
		PropertyId:   q.Int("property_id"),
		Status:       queryString[models.RefillStatus](c, "status"),
		WaterType:    queryString[models.WaterSourceType](c, "water_type"),
		BillingRoute: queryString[models.BillingType](c, "billing_route"),
		FromDate:     q.Date("from_date"),
		ToDate:       q.Date("to_date"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListWaterRefills(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func listWaterRefillAlerts(c *gin.Context, ctx context.Context, organizationId string) {
	propertyId, err := queryInt(c, "property_id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	rows, err := models.ListWaterRefillAlerts(ctx, organizationId, propertyId)
	reply(c, ctx, http.StatusOK, rows, err)
}

type refillFrequencyRequest struct {
	PropertyId int `json:"property_id" binding:"required"`
}

// checkRefillFrequency answers 200 with the new alert, or 204 when none was raised.
func checkRefillFrequency(c *gin.Context, ctx context.Context, organizationId string) {
	var req refillFrequencyRequest
	if !bindJSON(c, &req) {
		return
	}
	alert, err := models.CheckRefillFrequency(ctx, organizationId, req.PropertyId, time.Now().UTC())
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	if alert == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func acknowledgeWaterRefillAlert(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	alert, err := models.AcknowledgeWaterRefillAlert(ctx, organizationId, id, utils.GetActorIdFromContext(ctx))
	reply(c, ctx, http.StatusOK, alert, err)
}

func listWaterRefillBills(c *gin.Context, ctx context.Context, organizationId string) {
	refillId, err := queryInt(c, "refill_id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	rows, err := models.ListWaterRefillBills(ctx, organizationId, refillId)
	reply(c, ctx, http.StatusOK, rows, err)
}

func listWaterSuppliers(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.WaterSupplierFilter{
		IsActive:    q.Bool("is_active"),
		IsPreferred: q.Bool("is_preferred"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListWaterSuppliers(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func refillAnalytics(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.RefillAnalyticsFilter{
		PropertyId: q.Int("property_id"),
		FromDate:   q.Date("from_date"),
		ToDate:     q.Date("to_date"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	analytics, err := models.GetRefillAnalytics(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, analytics, err)
}
