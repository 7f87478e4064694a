package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
)

func registerWaterConsumptionRoutes(api *gin.RouterGroup) {
	g := api.Group("/water-consumption")

	g.GET("/entries", scoped("ListWaterConsumptionEntries", listConsumptionEntries))
	g.POST("/entries", scoped("CreateWaterConsumptionEntry", createHandler(models.CreateWaterConsumptionEntry)))
	g.GET("/entries/:id", scoped("GetWaterConsumptionEntry", byIdHandler(models.GetWaterConsumptionEntry)))
	g.PUT("/entries/:id", scoped("UpdateWaterConsumptionEntry", updateHandler(models.UpdateWaterConsumptionEntry)))
	g.DELETE("/entries/:id", scoped("DeleteWaterConsumptionEntry", byIdHandler(models.DeleteWaterConsumptionEntry)))

	g.GET("/alerts", scoped("ListWaterConsumptionAlerts", listConsumptionAlerts))
	g.POST("/alerts", scoped("CreateWaterConsumptionAlert", createHandler(models.CreateWaterConsumptionAlert)))
	g.POST("/alerts/:id/acknowledge", scoped("AcknowledgeWaterConsumptionAlert", acknowledgeConsumptionAlert))
	g.POST("/properties/:id/check-alerts", scoped("CheckWaterConsumptionAlerts", checkConsumptionAlerts))

	g.GET("/summary", scoped("GetWaterConsumptionSummary", consumptionSummary))
}

func listConsumptionEntries(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.WaterConsumptionEntryFilter{
		PropertyId:  q.Int("property_id"),
		SourceId:    q.Int("source_id"),
		EntryType:   queryString[models.ConsumptionEntryType](c, "entry_type"),
		IsEmergency: q.Bool("is_emergency"),
		StartDate:   q.Date("start_date"),
		EndDate:     q.Date("end_date"),
		PaidBy:      queryString[models.PaidBy](c, "paid_by"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListWaterConsumptionEntries(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func listConsumptionAlerts(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.WaterConsumptionAlertFilter{
		PropertyId: q.Int("property_id"),
		AlertType:  queryString[models.ConsumptionAlertType](c, "alert_type"),
		Severity:   queryString[models.Severity](c, "severity"),
		IsActive:   q.Bool("is_active"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListWaterConsumptionAlerts(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func acknowledgeConsumptionAlert(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	alert, err := models.AcknowledgeWaterConsumptionAlert(ctx, organizationId, id, utils.GetActorIdFromContext(ctx))
	reply(c, ctx, http.StatusOK, alert, err)
}

func checkConsumptionAlerts(c *gin.Context, ctx context.Context, organizationId string) {
	propertyId, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	alerts, err := models.CheckWaterConsumptionAlerts(ctx, organizationId, propertyId, time.Now().UTC())
	reply(c, ctx, http.StatusOK, alerts, err)
}

func consumptionSummary(c *gin.Context, ctx context.Context, organizationId string) {
	propertyId, err := queryInt(c, "property_id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	summary, err := models.GetWaterConsumptionSummary(ctx, organizationId, propertyId, time.Now().UTC())
	reply(c, ctx, http.StatusOK, summary, err)
}
