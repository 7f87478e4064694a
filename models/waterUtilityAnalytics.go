package models

import (
	"context"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

type EmergencyDeliveryStats struct {
	TotalDeliveries     int             `json:"totalDeliveries"`
	TotalLiters         int             `json:"totalLiters"`
	TotalCost           decimal.Decimal `json:"totalCost"`
	AverageCostPerLiter decimal.Decimal `json:"averageCostPerLiter"`
}

type WaterAlertStats struct {
	ActiveAlerts int `json:"activeAlerts"`
}

type WaterBillingStats struct {
	TotalBills   int `json:"totalBills"`
	OverdueBills int `json:"overdueBills"`
	PaidBills    int `json:"paidBills"`
}

type WaterUtilityAnalytics struct {
	EmergencyDeliveries EmergencyDeliveryStats `json:"emergencyDeliveries"`
	Alerts              WaterAlertStats        `json:"alerts"`
	Billing             WaterBillingStats      `json:"billing"`
}

// GetWaterUtilityAnalytics aggregates deliveries, alerts and bills for the
// organization, optionally narrowed to one property.
func GetWaterUtilityAnalytics(ctx context.Context, organizationId string, propertyId *int) (*WaterUtilityAnalytics, error) {
	deliveries, err := ListEmergencyWaterDeliveries(ctx, organizationId, EmergencyWaterDeliveryFilter{PropertyId: propertyId})
	if err != nil {
		return nil, err
	}
	alerts, err := ListWaterUtilityAlerts(ctx, organizationId, WaterUtilityAlertFilter{PropertyId: propertyId, IsActive: utils.NewTrue()})
	if err != nil {
		return nil, err
	}
	bills, err := ListWaterUtilityBills(ctx, organizationId, WaterUtilityBillFilter{PropertyId: propertyId})
	if err != nil {
		return nil, err
	}

	var result WaterUtilityAnalytics
	result.EmergencyDeliveries.TotalCost = decimal.Zero
	for _, d := range deliveries {
		result.EmergencyDeliveries.TotalDeliveries++
		result.EmergencyDeliveries.TotalLiters += d.VolumeLiters
		result.EmergencyDeliveries.TotalCost = result.EmergencyDeliveries.TotalCost.Add(d.Cost)
	}
	result.EmergencyDeliveries.AverageCostPerLiter = utils.UnitCostInt(result.EmergencyDeliveries.TotalCost, result.EmergencyDeliveries.TotalLiters)
	result.Alerts.ActiveAlerts = len(alerts)

	result.Billing.TotalBills = len(bills)
	for _, b := range bills {
		switch b.DisplayStatus {
		case PaymentStatusOverdue:
			result.Billing.OverdueBills++
		case PaymentStatusPaid:
			result.Billing.PaidBills++
		}
	}
	return &result, nil
}
