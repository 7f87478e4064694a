package models

import (
	"context"
	"sort"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const (
	refillAnalyticsMonths = 12
	unknownPropertyName   = "Unknown Property"
)

type RefillMonthlyUsage struct {
	Month       string          `json:"month"`
	Liters      int             `json:"liters"`
	Cost        decimal.Decimal `json:"cost"`
	RefillCount int             `json:"refillCount"`
}

type RefillPropertyBreakdown struct {
	PropertyId          int             `json:"propertyId"`
	PropertyName        string          `json:"propertyName"`
	RefillCount         int             `json:"refillCount"`
	TotalLiters         int             `json:"totalLiters"`
	TotalCost           decimal.Decimal `json:"totalCost"`
	AverageCostPerLiter decimal.Decimal `json:"averageCostPerLiter"`
}

type RefillAnalytics struct {
	TotalRefills        int                        `json:"totalRefills"`
	TotalLiters         int                        `json:"totalLiters"`
	TotalCost           decimal.Decimal            `json:"totalCost"`
	AverageCostPerLiter decimal.Decimal            `json:"averageCostPerLiter"`
	MonthlyUsage        []*RefillMonthlyUsage      `json:"monthlyUsage"`
	AlertsTriggered     int                        `json:"alertsTriggered"`
	PropertyBreakdown   []*RefillPropertyBreakdown `json:"propertyBreakdown"`
}

type RefillAnalyticsFilter struct {
	PropertyId *int
	FromDate   *time.Time
	ToDate     *time.Time
}

// GetRefillAnalytics aggregates refills in Go. Averages are total cost over total
// liters, not a mean of per-row unit costs.
func GetRefillAnalytics(ctx context.Context, organizationId string, filter RefillAnalyticsFilter) (*RefillAnalytics, error) {
	refills, err := ListWaterRefills(ctx, organizationId, WaterRefillFilter{
		PropertyId: filter.PropertyId,
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
	})
	if err != nil {
		return nil, err
	}
	unacknowledged, err := listScoped[WaterRefillAlert](ctx, utils.TenantScope(waterRefillAlertsTable, organizationId).With(
		utils.OptionalEq(waterRefillAlertsTable, "is_acknowledged", utils.NewFalse()),
	))
	if err != nil {
		return nil, err
	}

	result := RefillAnalytics{
		TotalCost:         decimal.Zero,
		MonthlyUsage:      make([]*RefillMonthlyUsage, 0),
		AlertsTriggered:   len(unacknowledged),
		PropertyBreakdown: make([]*RefillPropertyBreakdown, 0),
	}
	months := make(map[string]*RefillMonthlyUsage)
	properties := make(map[int]*RefillPropertyBreakdown)
	for _, r := range refills {
		result.TotalRefills++
		result.TotalLiters += r.LitersDelivered
		result.TotalCost = result.TotalCost.Add(r.CostAmount)

		key := utils.MonthKey(r.DeliveryDate)
		m, ok := months[key]
		if !ok {
			m = &RefillMonthlyUsage{Month: key, Cost: decimal.Zero}
			months[key] = m
		}
		m.Liters += r.LitersDelivered
		m.Cost = m.Cost.Add(r.CostAmount)
		m.RefillCount++

		p, ok := properties[r.PropertyId]
		if !ok {
			p = &RefillPropertyBreakdown{
				PropertyId:   r.PropertyId,
				PropertyName: utils.DereferencePtr(r.PropertyName, unknownPropertyName),
				TotalCost:    decimal.Zero,
			}
			properties[r.PropertyId] = p
		}
		p.RefillCount++
		p.TotalLiters += r.LitersDelivered
		p.TotalCost = p.TotalCost.Add(r.CostAmount)
	}
	result.AverageCostPerLiter = utils.UnitCostInt(result.TotalCost, result.TotalLiters)

	for _, m := range months {
		result.MonthlyUsage = append(result.MonthlyUsage, m)
	}
	sort.Slice(result.MonthlyUsage, func(i, j int) bool {
		return result.MonthlyUsage[i].Month > result.MonthlyUsage[j].Month
	})
	if len(result.MonthlyUsage) > refillAnalyticsMonths {
		result.MonthlyUsage = result.MonthlyUsage[:refillAnalyticsMonths]
	}

	for _, p := range properties {
		p.AverageCostPerLiter = utils.UnitCostInt(p.TotalCost, p.TotalLiters)
		result.PropertyBreakdown = append(result.PropertyBreakdown, p)
	}
	sort.Slice(result.PropertyBreakdown, func(i, j int) bool {
		a, b := result.PropertyBreakdown[i], result.PropertyBreakdown[j]
		if !a.TotalCost.Equal(b.TotalCost) {
			return a.TotalCost.GreaterThan(b.TotalCost)
		}
		return a.PropertyId < b.PropertyId
	})
	return &result, nil
}
