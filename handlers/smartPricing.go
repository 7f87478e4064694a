package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
)

func registerSmartPricingRoutes(api *gin.RouterGroup) {
	g := api.Group("/smart-pricing")

	g.GET("/performance", scoped("ListYearOnYearPerformance", listPerformance))
	g.POST("/performance", scoped("CreateYearOnYearPerformance", createHandler(models.CreateYearOnYearPerformance)))
	g.PUT("/performance/:id", scoped("UpdateYearOnYearPerformance", updateHandler(models.UpdateYearOnYearPerformance)))

	g.GET("/holidays", scoped("ListHolidayEvents", listHolidayEvents))
	g.POST("/holidays", scoped("CreateHolidayEvent", createHandler(models.CreateHolidayEvent)))

	g.GET("/price-deviations", scoped("ListPriceDeviations", listPriceDeviations))
	g.POST("/price-deviations", scoped("CreatePriceDeviation", createHandler(models.CreatePriceDeviation)))

	g.GET("/booking-gaps", scoped("ListBookingGaps", listBookingGaps))
	g.POST("/booking-gaps", scoped("CreateBookingGap", createHandler(models.CreateBookingGap)))
	g.POST("/booking-gaps/:id/resolve", scoped("ResolveBookingGap", resolveBookingGap))

	g.GET("/alerts", scoped("ListSmartPricingAlerts", listSmartPricingAlerts))
	g.POST("/alerts", scoped("CreateSmartPricingAlert", createHandler(models.CreateSmartPricingAlert)))
	g.POST("/alerts/:id/read", scoped("MarkSmartPricingAlertRead", byIdHandler(models.MarkSmartPricingAlertRead)))
	g.POST("/alerts/:id/resolve", scoped("ResolveSmartPricingAlert", resolveSmartPricingAlert))

	g.GET("/ai-summaries", scoped("ListAiPerformanceSummaries", listAiSummaries))
	g.POST("/ai-summaries", scoped("CreateAiPerformanceSummary", createHandler(models.CreateAiPerformanceSummary)))

	g.GET("/direct-booking", scoped("ListDirectBookingOptimizations", listDirectBooking))
	g.POST("/direct-booking", scoped("CreateDirectBookingOptimization", createHandler(models.CreateDirectBookingOptimization)))

	g.GET("/booking-patterns", scoped("ListHistoricalBookingPatterns", listBookingPatterns))
	g.POST("/booking-patterns", scoped("CreateHistoricalBookingPattern", createHandler(models.CreateHistoricalBookingPattern)))

	g.GET("/heatmap", scoped("ListHolidayHeatmap", listHeatmap))
	g.POST("/heatmap", scoped("CreateHolidayHeatmapDay", createHandler(models.CreateHolidayHeatmapDay)))
	g.PUT("/heatmap/:id", scoped("UpdateHolidayHeatmapDay", updateHandler(models.UpdateHolidayHeatmapDay)))

	g.GET("/dashboard", scoped("GetPricingPerformanceDashboard", pricingDashboard))
}

func listPerformance(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.YearOnYearPerformanceFilter{
		PropertyId: q.Int("property_id"),
		Year:       q.Int("year"),
		Month:      q.Int("month"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListYearOnYearPerformance(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func listHolidayEvents(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.HolidayEventFilter{
		StartDate: q.Date("start_date"),
		EndDate:   q.Date("end_date"),
		EventType: queryString[string](c, "event_type"),
		Country:   queryString[string](c, "country"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListHolidayEvents(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func listPriceDeviations(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.PriceDeviationFilter{
		PropertyId:    q.Int("property_id"),
		IsUnderpriced: q.Bool("is_underpriced"),
		IsOverpriced:  q.Bool("is_overpriced"),
		StartDate:     q.Date("start_date"),
		EndDate:       q.Date("end_date"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListPriceDeviations(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func listBookingGaps(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.BookingGapFilter{
		PropertyId: q.Int("property_id"),
		GapType:    queryString[string](c, "gap_type"),
		IsResolved: q.Bool("is_resolved"),
		StartDate:  q.Date("start_date"),
		EndDate:    q.Date("end_date"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListBookingGaps(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

type resolveGapRequest struct {
	ActionTaken string `json:"action_taken" binding:"required"`
}

func resolveBookingGap(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	var req resolveGapRequest
	if !bindJSON(c, &req) {
		return
	}
	gap, err := models.ResolveBookingGap(ctx, organizationId, id, req.ActionTaken)
	reply(c, ctx, http.StatusOK, gap, err)
}

func listSmartPricingAlerts(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.SmartPricingAlertFilter{
		PropertyId: q.Int("property_id"),
		AlertType:  queryString[string](c, "alert_type"),
		Severity:   queryString[models.Severity](c, "severity"),
		IsRead:     q.Bool("is_read"),
		IsResolved: q.Bool("is_resolved"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListSmartPricingAlerts(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func resolveSmartPricingAlert(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	var req dismissRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	alert, err := models.ResolveSmartPricingAlert(ctx, organizationId, id, utils.GetActorIdFromContext(ctx), req.ActionTaken)
	reply(c, ctx, http.StatusOK, alert, err)
}

func listAiSummaries(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.AiPerformanceSummaryFilter{
		PropertyId: q.Int("property_id"),
		PeriodType: queryString[models.PeriodType](c, "period_type"),
		StartDate:  q.Date("start_date"),
		EndDate:    q.Date("end_date"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListAiPerformanceSummaries(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func listDirectBooking(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.DirectBookingOptimizationFilter{
		PropertyId:   q.Int("property_id"),
		PlatformName: queryString[string](c, "platform_name"),
		StartDate:    q.Date("start_date"),
		EndDate:      q.Date("end_date"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListDirectBookingOptimizations(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func listBookingPatterns(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.HistoricalBookingPatternFilter{
		PropertyId: q.Int("property_id"),
		Year:       q.Int("year"),
		Month:      q.Int("month"),
		WeekNumber: q.Int("week_number"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListHistoricalBookingPatterns(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func listHeatmap(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.HolidayHeatmapFilter{
		PropertyId:  q.Int("property_id"),
		StartDate:   q.Date("start_date"),
		EndDate:     q.Date("end_date"),
		DemandLevel: queryString[models.DemandLevel](c, "demand_level"),
		ColorCode:   queryString[string](c, "color_code"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListHolidayHeatmap(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func pricingDashboard(c *gin.Context, ctx context.Context, organizationId string) {
	propertyId, err := queryInt(c, "property_id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	dashboard, err := models.GetPricingPerformanceDashboard(ctx, organizationId, propertyId, time.Now().UTC())
	reply(c, ctx, http.StatusOK, dashboard, err)
}
