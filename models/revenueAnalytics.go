package models

import (
	"context"
	"sort"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

type RevenueSummary struct {
	TotalBookings            int             `json:"totalBookings"`
	TotalGuestRevenue        decimal.Decimal `json:"totalGuestRevenue"`
	TotalOtaCommissions      decimal.Decimal `json:"totalOtaCommissions"`
	TotalNetPayouts          decimal.Decimal `json:"totalNetPayouts"`
	AverageCommissionRate    decimal.Decimal `json:"averageCommissionRate"`
	CommissionLossPercentage decimal.Decimal `json:"commissionLossPercentage"`
}

type OtaRevenueBreakdown struct {
	OtaName               string          `json:"otaName"`
	BookingCount          int             `json:"bookingCount"`
	TotalGuestRevenue     decimal.Decimal `json:"totalGuestRevenue"`
	TotalOtaCommissions   decimal.Decimal `json:"totalOtaCommissions"`
	TotalNetPayouts       decimal.Decimal `json:"totalNetPayouts"`
	AverageCommissionRate decimal.Decimal `json:"averageCommissionRate"`
}

type MonthlyRevenueTrend struct {
	Month             string          `json:"month"`
	BookingCount      int             `json:"bookingCount"`
	TotalGuestRevenue decimal.Decimal `json:"totalGuestRevenue"`
	TotalNetPayouts   decimal.Decimal `json:"totalNetPayouts"`
	CommissionLoss    decimal.Decimal `json:"commissionLoss"`
}

type RevenueAnalytics struct {
	Summary       RevenueSummary         `json:"summary"`
	OtaBreakdown  []*OtaRevenueBreakdown `json:"otaBreakdown"`
	MonthlyTrends []*MonthlyRevenueTrend `json:"monthlyTrends"`
}

type RevenueAnalyticsFilter struct {
	PropertyId *int
	StartDate  *time.Time
	EndDate    *time.Time
}

func GetRevenueAnalytics(ctx context.Context, organizationId string, filter RevenueAnalyticsFilter) (*RevenueAnalytics, error) {
	bookings, err := ListBookingRevenues(ctx, organizationId, BookingRevenueFilter{
		PropertyId: filter.PropertyId,
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
	})
	if err != nil {
		return nil, err
	}

	summary := RevenueSummary{
		TotalGuestRevenue:   decimal.Zero,
		TotalOtaCommissions: decimal.Zero,
		TotalNetPayouts:     decimal.Zero,
	}
	otas := make(map[string]*OtaRevenueBreakdown)
	otaOrder := make([]string, 0)
	months := make(map[string]*MonthlyRevenueTrend)
	for _, b := range bookings {
		summary.TotalBookings++
		summary.TotalGuestRevenue = summary.TotalGuestRevenue.Add(b.GuestBookingPrice)
		summary.TotalOtaCommissions = summary.TotalOtaCommissions.Add(b.OtaPlatformFee)
		summary.TotalNetPayouts = summary.TotalNetPayouts.Add(b.FinalPayoutAmount)

		o, ok := otas[b.OtaName]
		if !ok {
			o = &OtaRevenueBreakdown{
				OtaName:             b.OtaName,
				TotalGuestRevenue:   decimal.Zero,
				TotalOtaCommissions: decimal.Zero,
				TotalNetPayouts:     decimal.Zero,
			}
			otas[b.OtaName] = o
			otaOrder = append(otaOrder, b.OtaName)
		}
		o.BookingCount++
		o.TotalGuestRevenue = o.TotalGuestRevenue.Add(b.GuestBookingPrice)
		o.TotalOtaCommissions = o.TotalOtaCommissions.Add(b.OtaPlatformFee)
		o.TotalNetPayouts = o.TotalNetPayouts.Add(b.FinalPayoutAmount)

		key := utils.MonthKey(b.CheckInDate)
		m, ok := months[key]
		if !ok {
			m = &MonthlyRevenueTrend{
				Month:             key,
				TotalGuestRevenue: decimal.Zero,
				TotalNetPayouts:   decimal.Zero,
				CommissionLoss:    decimal.Zero,
			}
			months[key] = m
		}
		m.BookingCount++
		m.TotalGuestRevenue = m.TotalGuestRevenue.Add(b.GuestBookingPrice)
		m.TotalNetPayouts = m.TotalNetPayouts.Add(b.FinalPayoutAmount)
		m.CommissionLoss = m.CommissionLoss.Add(b.OtaPlatformFee)
	}
	summary.AverageCommissionRate = utils.Ratio(summary.TotalOtaCommissions, summary.TotalGuestRevenue)
	summary.CommissionLossPercentage = summary.AverageCommissionRate

	result := RevenueAnalytics{
		Summary:       summary,
		OtaBreakdown:  make([]*OtaRevenueBreakdown, 0, len(otas)),
		MonthlyTrends: make([]*MonthlyRevenueTrend, 0, len(months)),
	}
	for _, name := range otaOrder {
		o := otas[name]
		o.AverageCommissionRate = utils.Ratio(o.TotalOtaCommissions, o.TotalGuestRevenue)
		result.OtaBreakdown = append(result.OtaBreakdown, o)
	}
	for _, m := range months {
		result.MonthlyTrends = append(result.MonthlyTrends, m)
	}
	sort.Slice(result.MonthlyTrends, func(i, j int) bool {
		return result.MonthlyTrends[i].Month < result.MonthlyTrends[j].Month
	})
	return &result, nil
}
