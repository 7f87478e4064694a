package models

import (
	"context"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const deviationWindowDays = 30

type PricingPerformanceDashboard struct {
	TotalProperties     int             `json:"totalProperties"`
	UnresolvedAlerts    int             `json:"unresolvedAlerts"`
	AverageOccupancy    decimal.Decimal `json:"averageOccupancy"`
	RevenueGrowth       decimal.Decimal `json:"revenueGrowth"`
	UnderpricedDays     int             `json:"underpricedDays"`
	OverpricedDays      int             `json:"overpricedDays"`
	LatestGrade         *string         `json:"latestGrade"`
	UpcomingPeakDays    int             `json:"upcomingPeakDays"`
	DirectBookingGap    decimal.Decimal `json:"averageDirectBookingAdvantage"`
	PerformanceRowsUsed int             `json:"performanceRowsUsed"`
}

// GetPricingPerformanceDashboard rolls up the pricing tables for one property,
// or the whole organization when propertyId is nil. Occupancy and growth use
// the year-on-year rows of the year containing at; deviations look back thirty
// days and peak days look ahead thirty.
func GetPricingPerformanceDashboard(ctx context.Context, organizationId string, propertyId *int, at time.Time) (*PricingPerformanceDashboard, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if err := validatePropertyRef(ctx, organizationId, propertyId); err != nil {
		return nil, err
	}
	result := PricingPerformanceDashboard{
		TotalProperties:  1,
		AverageOccupancy: decimal.Zero,
		RevenueGrowth:    decimal.Zero,
		DirectBookingGap: decimal.Zero,
	}
	if propertyId == nil {
		properties, err := ListProperties(ctx, organizationId, PropertyFilter{})
		if err != nil {
			return nil, err
		}
		result.TotalProperties = len(properties)
	}

	alerts, err := ListSmartPricingAlerts(ctx, organizationId, SmartPricingAlertFilter{PropertyId: propertyId, IsResolved: utils.NewFalse()})
	if err != nil {
		return nil, err
	}
	result.UnresolvedAlerts = len(alerts)

	year := at.UTC().Year()
	performance, err := ListYearOnYearPerformance(ctx, organizationId, YearOnYearPerformanceFilter{PropertyId: propertyId, Year: &year})
	if err != nil {
		return nil, err
	}
	revenue, previous, occupancy := decimal.Zero, decimal.Zero, decimal.Zero
	for _, p := range performance {
		revenue = revenue.Add(p.Revenue)
		previous = previous.Add(p.PreviousRevenue)
		occupancy = occupancy.Add(p.OccupancyRate)
	}
	if n := len(performance); n > 0 {
		result.PerformanceRowsUsed = n
		result.AverageOccupancy = occupancy.DivRound(decimal.NewFromInt(int64(n)), 2)
		result.RevenueGrowth = growthRate(revenue, previous)
	}

	today := dateOnly(at)
	since := today.AddDate(0, 0, -deviationWindowDays)
	deviations, err := ListPriceDeviations(ctx, organizationId, PriceDeviationFilter{PropertyId: propertyId, StartDate: &since, EndDate: &today})
	if err != nil {
		return nil, err
	}
	for _, d := range deviations {
		if utils.DereferencePtr(d.IsUnderpriced) {
			result.UnderpricedDays++
		}
		if utils.DereferencePtr(d.IsOverpriced) {
			result.OverpricedDays++
		}
	}

	summaries, err := ListAiPerformanceSummaries(ctx, organizationId, AiPerformanceSummaryFilter{PropertyId: propertyId})
	if err != nil {
		return nil, err
	}
	if len(summaries) > 0 {
		result.LatestGrade = utils.Ptr(summaries[0].PerformanceGrade)
	}

	until := today.AddDate(0, 0, deviationWindowDays)
	peak := DemandPeak
	peakDays, err := ListHolidayHeatmap(ctx, organizationId, HolidayHeatmapFilter{PropertyId: propertyId, StartDate: &today, EndDate: &until, DemandLevel: &peak})
	if err != nil {
		return nil, err
	}
	result.UpcomingPeakDays = len(peakDays)

	direct, err := ListDirectBookingOptimizations(ctx, organizationId, DirectBookingOptimizationFilter{PropertyId: propertyId, StartDate: &since})
	if err != nil {
		return nil, err
	}
	if len(direct) > 0 {
		total := decimal.Zero
		for _, d := range direct {
			total = total.Add(d.CompetitiveAdvantage)
		}
		result.DirectBookingGap = total.DivRound(decimal.NewFromInt(int64(len(direct))), 2)
	}
	return &result, nil
}
