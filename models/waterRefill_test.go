package models_test

import (
	"testing"

	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefillCostPerLiter(t *testing.T) {
	setupDB(t)
	t.Setenv("AUTO_REFILL_FREQUENCY_ALERTS", "false")
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")

	refill, err := models.CreateWaterRefill(ctx, org, &models.NewWaterRefill{
		PropertyId:      propertyId,
		DeliveryDate:    daysAgo(2),
		LitersDelivered: 5000,
		CostAmount:      dec("750"),
		SupplierName:    "Blue Truck Co",
	})
	require.NoError(t, err)
	assertDecimal(t, "0.15", refill.CostPerLiter)
	assert.Equal(t, models.RefillStatusCompleted, refill.Status)
	assert.Equal(t, models.WaterSourceEmergencyTruck, refill.WaterType)

	cost := dec("900")
	updated, err := models.UpdateWaterRefill(ctx, org, refill.ID, &models.WaterRefillUpdate{CostAmount: &cost})
	require.NoError(t, err)
	assertDecimal(t, "0.18", updated.CostPerLiter)
}

func TestRefillTakesSupplierDefaults(t *testing.T) {
	setupDB(t)
	t.Setenv("AUTO_REFILL_FREQUENCY_ALERTS", "false")
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")

	phone := "0812345678"
	supplier, err := models.CreateWaterSupplier(ctx, org, &models.NewWaterSupplier{Name: "Aqua Express", Phone: &phone})
	require.NoError(t, err)
	require.NotNil(t, supplier.Phone)
	assert.Equal(t, "+66812345678", *supplier.Phone)

	refill, err := models.CreateWaterRefill(ctx, org, &models.NewWaterRefill{
		PropertyId:      propertyId,
		DeliveryDate:    daysAgo(1),
		LitersDelivered: 2000,
		CostAmount:      dec("400"),
		SupplierId:      &supplier.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Aqua Express", refill.SupplierName)
	require.NotNil(t, refill.SupplierContact)
	assert.Equal(t, "+66812345678", *refill.SupplierContact)

	_, err = models.CreateWaterRefill(ctx, org, &models.NewWaterRefill{
		PropertyId:   propertyId,
		DeliveryDate: daysAgo(1),
	})
	assert.True(t, utils.IsInputError(err), "supplier name is required without a supplier")

	bill, err := models.CreateWaterRefillBill(ctx, org, &models.NewWaterRefillBill{RefillId: refill.ID})
	require.NoError(t, err)
	assertDecimal(t, "400", bill.Amount)
	assert.Equal(t, models.BillingTypeOwnerBillable, bill.BilledTo)
	assert.Equal(t, propertyId, bill.PropertyId)
}

func TestRefillFrequencyAlertRaisedOnce(t *testing.T) {
	setupDB(t)
	t.Setenv("AUTO_REFILL_FREQUENCY_ALERTS", "true")
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")
	quiet := newProperty(t, ctx, org, "Villa Quiet")

	addRefill := func(id int, daysBack int) {
		_, err := models.CreateWaterRefill(ctx, org, &models.NewWaterRefill{
			PropertyId:      id,
			DeliveryDate:    daysAgo(daysBack),
			LitersDelivered: 3000,
			CostAmount:      dec("600"),
			SupplierName:    "Blue Truck Co",
		})
		require.NoError(t, err)
	}

	addRefill(propertyId, 50)
	addRefill(propertyId, 5)
	alerts, err := models.ListWaterRefillAlerts(ctx, org, &propertyId)
	require.NoError(t, err)
	assert.Empty(t, alerts, "refills outside the window do not count")

	addRefill(propertyId, 2)
	alerts, err = models.ListWaterRefillAlerts(ctx, org, &propertyId)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.RefillAlertFrequency, alerts[0].AlertType)
	assert.Equal(t, 2, alerts[0].TriggerCount)
	assert.Equal(t, 30, alerts[0].TriggerPeriodDays)
	assert.Equal(t, models.SeverityMedium, alerts[0].Severity)

	// an unacknowledged alert suppresses a duplicate
	addRefill(propertyId, 1)
	alerts, err = models.ListWaterRefillAlerts(ctx, org, &propertyId)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	acked, err := models.AcknowledgeWaterRefillAlert(ctx, org, alerts[0].ID, nil)
	require.NoError(t, err)
	assert.True(t, *acked.IsAcknowledged)
	require.NotNil(t, acked.AcknowledgedBy)

	again, err := models.AcknowledgeWaterRefillAlert(ctx, org, alerts[0].ID, utils.Ptr(9999))
	require.NoError(t, err)
	assert.Equal(t, *acked.AcknowledgedBy, *again.AcknowledgedBy)

	addRefill(propertyId, 0)
	alerts, err = models.ListWaterRefillAlerts(ctx, org, &propertyId)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, models.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, 4, alerts[0].TriggerCount)

	addRefill(quiet, 3)
	quietAlerts, err := models.ListWaterRefillAlerts(ctx, org, &quiet)
	require.NoError(t, err)
	assert.Empty(t, quietAlerts)
}

func TestRefillAnalyticsUsesWeightedAverage(t *testing.T) {
	setupDB(t)
	t.Setenv("AUTO_REFILL_FREQUENCY_ALERTS", "false")
	ctx, org := newTenant(t, "sunset")
	mango := newProperty(t, ctx, org, "Villa Mango")
	lime := newProperty(t, ctx, org, "Villa Lime")

	for _, r := range []struct {
		property int
		liters   int
		cost     string
	}{
		{mango, 1000, "500"},
		{mango, 3000, "900"},
		{lime, 2000, "200"},
	} {
		_, err := models.CreateWaterRefill(ctx, org, &models.NewWaterRefill{
			PropertyId:      r.property,
			DeliveryDate:    daysAgo(3),
			LitersDelivered: r.liters,
			CostAmount:      dec(r.cost),
			SupplierName:    "Blue Truck Co",
		})
		require.NoError(t, err)
	}

	analytics, err := models.GetRefillAnalytics(ctx, org, models.RefillAnalyticsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, analytics.TotalRefills)
	assert.Equal(t, 6000, analytics.TotalLiters)
	assertDecimal(t, "1600", analytics.TotalCost)
	// 1600 / 6000, not the mean of 0.5, 0.3 and 0.1
	assertDecimal(t, "0.266667", analytics.AverageCostPerLiter)
	require.Len(t, analytics.MonthlyUsage, 1)
	assert.Equal(t, 3, analytics.MonthlyUsage[0].RefillCount)

	require.Len(t, analytics.PropertyBreakdown, 2)
	assert.Equal(t, mango, analytics.PropertyBreakdown[0].PropertyId)
	assert.Equal(t, "Villa Mango", analytics.PropertyBreakdown[0].PropertyName)
	assertDecimal(t, "0.35", analytics.PropertyBreakdown[0].AverageCostPerLiter)

	onlyLime, err := models.GetRefillAnalytics(ctx, org, models.RefillAnalyticsFilter{PropertyId: &lime})
	require.NoError(t, err)
	assert.Equal(t, 1, onlyLime.TotalRefills)
	assertDecimal(t, "0.1", onlyLime.AverageCostPerLiter)
}
