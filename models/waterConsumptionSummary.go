package models

import (
	"context"
	"sort"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const (
	consumptionSummaryDays = 180
	unknownSourceType      = "unknown"
)

type ConsumptionMonth struct {
	Month          string          `json:"month"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	TotalVolume    int             `json:"totalVolume"`
	EmergencyCount int             `json:"emergencyCount"`
}

type ConsumptionSourceBreakdown struct {
	SourceType  string          `json:"sourceType"`
	TotalCost   decimal.Decimal `json:"totalCost"`
	TotalVolume int             `json:"totalVolume"`
	EntryCount  int             `json:"entryCount"`
}

type WaterConsumptionSummary struct {
	TotalEntries        int                           `json:"totalEntries"`
	EmergencyDeliveries int                           `json:"emergencyDeliveries"`
	TotalCost           decimal.Decimal               `json:"totalCost"`
	TotalVolume         int                           `json:"totalVolume"`
	AverageCostPerLiter decimal.Decimal               `json:"averageCostPerLiter"`
	MonthlyBreakdown    []*ConsumptionMonth           `json:"monthlyBreakdown"`
	SourceTypeBreakdown []*ConsumptionSourceBreakdown `json:"sourceTypeBreakdown"`
}

// GetWaterConsumptionSummary totals every entry, breaks the last 180 days down by
// month (newest first) and groups all entries by their source's type, costliest
// first. Entries without a source fall under "unknown".
func GetWaterConsumptionSummary(ctx context.Context, organizationId string, propertyId *int, at time.Time) (*WaterConsumptionSummary, error) {
	entries, err := ListWaterConsumptionEntries(ctx, organizationId, WaterConsumptionEntryFilter{PropertyId: propertyId})
	if err != nil {
		return nil, err
	}
	sources, err := ListWaterUtilitySources(ctx, organizationId, nil)
	if err != nil {
		return nil, err
	}
	sourceTypes := make(map[int]WaterSourceType, len(sources))
	for _, s := range sources {
		sourceTypes[s.ID] = s.SourceType
	}

	result := WaterConsumptionSummary{
		TotalCost:           decimal.Zero,
		MonthlyBreakdown:    make([]*ConsumptionMonth, 0),
		SourceTypeBreakdown: make([]*ConsumptionSourceBreakdown, 0),
	}
	since := dateOnly(at).AddDate(0, 0, -consumptionSummaryDays)
	months := make(map[string]*ConsumptionMonth)
	bySource := make(map[string]*ConsumptionSourceBreakdown)
	for _, e := range entries {
		volume := utils.DereferencePtr(e.VolumeLiters)
		emergency := utils.DereferencePtr(e.IsEmergency)
		result.TotalEntries++
		result.TotalCost = result.TotalCost.Add(e.TotalCost)
		result.TotalVolume += volume
		if emergency {
			result.EmergencyDeliveries++
		}

		if !e.EntryDate.Before(since) {
			key := utils.MonthKey(e.EntryDate)
			m, ok := months[key]
			if !ok {
				m = &ConsumptionMonth{Month: key, TotalCost: decimal.Zero}
				months[key] = m
			}
			m.TotalCost = m.TotalCost.Add(e.TotalCost)
			m.TotalVolume += volume
			if emergency {
				m.EmergencyCount++
			}
		}

		sourceType := unknownSourceType
		if e.SourceId != nil {
			if st, ok := sourceTypes[*e.SourceId]; ok {
				sourceType = string(st)
			}
		}
		b, ok := bySource[sourceType]
		if !ok {
			b = &ConsumptionSourceBreakdown{SourceType: sourceType, TotalCost: decimal.Zero}
			bySource[sourceType] = b
		}
		b.TotalCost = b.TotalCost.Add(e.TotalCost)
		b.TotalVolume += volume
		b.EntryCount++
	}
	result.AverageCostPerLiter = utils.UnitCostInt(result.TotalCost, result.TotalVolume)

	for _, m := range months {
		result.MonthlyBreakdown = append(result.MonthlyBreakdown, m)
	}
	sort.Slice(result.MonthlyBreakdown, func(i, j int) bool {
		return result.MonthlyBreakdown[i].Month > result.MonthlyBreakdown[j].Month
	})
	for _, b := range bySource {
		result.SourceTypeBreakdown = append(result.SourceTypeBreakdown, b)
	}
	sort.Slice(result.SourceTypeBreakdown, func(i, j int) bool {
		a, b := result.SourceTypeBreakdown[i], result.SourceTypeBreakdown[j]
		if !a.TotalCost.Equal(b.TotalCost) {
			return a.TotalCost.GreaterThan(b.TotalCost)
		}
		return a.SourceType < b.SourceType
	})
	return &result, nil
}
