package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
)

func registerBookingRevenueRoutes(api *gin.RouterGroup, managers gin.HandlerFunc) {
	bookings := api.Group("/booking-revenue")
	bookings.GET("", scoped("ListBookingRevenues", listBookingRevenues))
	bookings.POST("", scoped("CreateBookingRevenue", createHandler(models.CreateBookingRevenue)))
	bookings.GET("/:id", scoped("GetBookingRevenue", byIdHandler(models.GetBookingRevenue)))
	bookings.PUT("/:id", scoped("UpdateBookingRevenue", updateHandler(models.UpdateBookingRevenue)))
	bookings.DELETE("/:id", scoped("DeleteBookingRevenue", byIdHandler(models.DeleteBookingRevenue)))
	bookings.POST("/:id/commissions", scoped("CalculateBookingCommissions", calculateBookingCommissions))

	commissions := api.Group("/booking-commissions")
	commissions.GET("", scoped("ListBookingCommissions", listBookingCommissions))
	commissions.POST("/:id/finalize", managers, scoped("FinalizeBookingCommission", byIdHandler(models.FinalizeBookingCommission)))

	ota := api.Group("/ota-settings")
	ota.GET("", scoped("ListOtaPlatformSettings", listOtaSettings))
	ota.POST("", scoped("CreateOtaPlatformSetting", createHandler(models.CreateOtaPlatformSetting)))
	ota.PUT("/:id", scoped("UpdateOtaPlatformSetting", updateHandler(models.UpdateOtaPlatformSetting)))

	api.GET("/revenue-analytics", scoped("GetRevenueAnalytics", revenueAnalytics))
}

func listBookingRevenues(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.BookingRevenueFilter{
		PropertyId:    q.Int("property_id"),
		OtaName:       queryString[string](c, "ota_name"),
		BookingType:   queryString[models.BookingType](c, "booking_type"),
		PaymentStatus: queryString[models.BookingPaymentStatus](c, "payment_status"),
		StartDate:     q.Date("start_date"),
		EndDate:       q.Date("end_date"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	rows, err := models.ListBookingRevenues(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, rows, err)
}

func calculateBookingCommissions(c *gin.Context, ctx context.Context, organizationId string) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	commission, err := models.CalculateBookingCommissions(ctx, organizationId, id, utils.GetActorIdFromContext(ctx))
	reply(c, ctx, http.StatusCreated, commission, err)
}

func listBookingCommissions(c *gin.Context, ctx context.Context, organizationId string) {
	bookingRevenueId, err := queryInt(c, "booking_revenue_id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	rows, err := models.ListBookingCommissions(ctx, organizationId, bookingRevenueId)
	reply(c, ctx, http.StatusOK, rows, err)
}

func listOtaSettings(c *gin.Context, ctx context.Context, organizationId string) {
	propertyId, err := queryInt(c, "property_id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	rows, err := models.ListOtaPlatformSettings(ctx, organizationId, propertyId)
	reply(c, ctx, http.StatusOK, rows, err)
}

func revenueAnalytics(c *gin.Context, ctx context.Context, organizationId string) {
	q := queryParser{c: c}
	filter := models.RevenueAnalyticsFilter{
		PropertyId: q.Int("property_id"),
		StartDate:  q.Date("start_date"),
		EndDate:    q.Date("end_date"),
	}
	if q.err != nil {
		respondError(c, ctx, q.err)
		return
	}
	analytics, err := models.GetRevenueAnalytics(ctx, organizationId, filter)
	reply(c, ctx, http.StatusOK, analytics, err)
}
