package models_test

import (
	"testing"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumptionEntryCostPerLiter(t *testing.T) {
	setupDB(t)
	t.Setenv("AUTO_WATER_CONSUMPTION_ALERTS", "0")
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")
	source, err := models.CreateWaterUtilitySource(ctx, org, &models.NewWaterUtilitySource{
		PropertyId: &propertyId, SourceType: models.WaterSourceGovernment, ProviderName: utils.Ptr("PWA"),
	})
	require.NoError(t, err)

	entry, err := models.CreateWaterConsumptionEntry(ctx, org, &models.NewWaterConsumptionEntry{
		PropertyId:   propertyId,
		SourceId:     &source.ID,
		EntryType:    models.ConsumptionEntryEmergencyDelivery,
		EntryDate:    daysAgo(1),
		VolumeLiters: utils.Ptr(5000),
		TotalCost:    dec("750"),
	})
	require.NoError(t, err)
	require.NotNil(t, entry.CostPerLiter)
	assertDecimal(t, "0.15", *entry.CostPerLiter)
	assert.True(t, *entry.IsEmergency)
	assert.Equal(t, models.PaidByManagement, entry.PaidBy)
	assert.Equal(t, models.PaymentStatusPending, entry.PaymentStatus)
	assert.Equal(t, "THB", entry.Currency)

	bill, err := models.CreateWaterConsumptionEntry(ctx, org, &models.NewWaterConsumptionEntry{
		PropertyId: propertyId,
		EntryType:  models.ConsumptionEntryBill,
		EntryDate:  daysAgo(1),
		TotalCost:  dec("320"),
	})
	require.NoError(t, err)
	assert.Nil(t, bill.CostPerLiter)
	assert.False(t, *bill.IsEmergency)

	cost := dec("900")
	updated, err := models.UpdateWaterConsumptionEntry(ctx, org, entry.ID, &models.WaterConsumptionEntryUpdate{TotalCost: &cost})
	require.NoError(t, err)
	require.NotNil(t, updated.CostPerLiter)
	assertDecimal(t, "0.18", *updated.CostPerLiter)

	rows, err := models.ListWaterConsumptionEntries(ctx, org, models.WaterConsumptionEntryFilter{IsEmergency: utils.NewTrue()})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].SourceName)
	assert.Equal(t, "PWA", *rows[0].SourceName)
	require.NotNil(t, rows[0].PropertyName)
	assert.Equal(t, "Villa Mango", *rows[0].PropertyName)
}

func TestConsumptionEntryRejectsBadInput(t *testing.T) {
	setupDB(t)
	t.Setenv("AUTO_WATER_CONSUMPTION_ALERTS", "0")
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")

	cases := map[string]models.NewWaterConsumptionEntry{
		"entry type":     {PropertyId: propertyId, EntryType: "leak", EntryDate: daysAgo(1)},
		"custom payer":   {PropertyId: propertyId, EntryType: models.ConsumptionEntryBill, EntryDate: daysAgo(1), PaidBy: models.PaidByCustom},
		"negative cost":  {PropertyId: propertyId, EntryType: models.ConsumptionEntryBill, EntryDate: daysAgo(1), TotalCost: dec("-5")},
		"missing source": {PropertyId: propertyId, EntryType: models.ConsumptionEntryBill, EntryDate: daysAgo(1), SourceId: utils.Ptr(9999)},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := models.CreateWaterConsumptionEntry(ctx, org, &input)
			assert.True(t, utils.IsInputError(err), err)
		})
	}
}

func TestFrequentEmergencyAlertRaisedOnce(t *testing.T) {
	setupDB(t)
	t.Setenv("AUTO_WATER_CONSUMPTION_ALERTS", "0")
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")

	for i := 1; i <= 3; i++ {
		_, err := models.CreateWaterConsumptionEntry(ctx, org, &models.NewWaterConsumptionEntry{
			PropertyId: propertyId,
			EntryType:  models.ConsumptionEntryEmergencyDelivery,
			EntryDate:  daysAgo(i),
			TotalCost:  dec("500"),
		})
		require.NoError(t, err)
	}
	// outside the 30 day window
	_, err := models.CreateWaterConsumptionEntry(ctx, org, &models.NewWaterConsumptionEntry{
		PropertyId: propertyId,
		EntryType:  models.ConsumptionEntryEmergencyDelivery,
		EntryDate:  daysAgo(45),
		TotalCost:  dec("500"),
	})
	require.NoError(t, err)

	alerts, err := models.CheckWaterConsumptionAlerts(ctx, org, propertyId, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.ConsumptionAlertFrequentEmergency, alerts[0].AlertType)
	assert.Equal(t, models.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, 3, *alerts[0].TriggerCount)
	assert.Equal(t, 30, *alerts[0].TriggerPeriodDays)
	assert.True(t, *alerts[0].AiGenerated)

	again, err := models.CheckWaterConsumptionAlerts(ctx, org, propertyId, time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestNoEntryAlertCountsDaysSinceLastEntry(t *testing.T) {
	setupDB(t)
	t.Setenv("AUTO_WATER_CONSUMPTION_ALERTS", "0")
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")

	_, err := models.CreateWaterConsumptionEntry(ctx, org, &models.NewWaterConsumptionEntry{
		PropertyId: propertyId,
		EntryType:  models.ConsumptionEntryBill,
		EntryDate:  daysAgo(25),
		TotalCost:  dec("300"),
	})
	require.NoError(t, err)

	alerts, err := models.CheckWaterConsumptionAlerts(ctx, org, propertyId, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.ConsumptionAlertNoEntry, alerts[0].AlertType)
	assert.Equal(t, models.SeverityMedium, alerts[0].Severity)
	require.NotNil(t, alerts[0].DaysSinceLastEntry)
	assert.Equal(t, 25, *alerts[0].DaysSinceLastEntry)

	// an acknowledged alert no longer blocks a new one
	_, err = models.AcknowledgeWaterConsumptionAlert(ctx, org, alerts[0].ID, nil)
	require.NoError(t, err)
	alerts, err = models.CheckWaterConsumptionAlerts(ctx, org, propertyId, time.Now().UTC())
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestNewEntryRunsAlertChecksWhenEnabled(t *testing.T) {
	setupDB(t)
	t.Setenv("AUTO_WATER_CONSUMPTION_ALERTS", "1")
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")

	for i := 1; i <= 3; i++ {
		_, err := models.CreateWaterConsumptionEntry(ctx, org, &models.NewWaterConsumptionEntry{
			PropertyId: propertyId,
			EntryType:  models.ConsumptionEntryEmergencyDelivery,
			EntryDate:  daysAgo(i),
			TotalCost:  dec("500"),
		})
		require.NoError(t, err)
	}
	alertType := models.ConsumptionAlertFrequentEmergency
	alerts, err := models.ListWaterConsumptionAlerts(ctx, org, models.WaterConsumptionAlertFilter{PropertyId: &propertyId, AlertType: &alertType})
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestAcknowledgeKeepsFirstAcknowledger(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")

	alert, err := models.CreateWaterConsumptionAlert(ctx, org, &models.NewWaterConsumptionAlert{
		PropertyId:   &propertyId,
		AlertType:    models.ConsumptionAlertOverdueBill,
		AlertMessage: "Water bill overdue",
	})
	require.NoError(t, err)
	assert.False(t, *alert.AiGenerated)

	first, err := models.AcknowledgeWaterConsumptionAlert(ctx, org, alert.ID, utils.Ptr(7))
	require.NoError(t, err)
	require.NotNil(t, first.AcknowledgedAt)
	assert.Equal(t, 7, *first.AcknowledgedBy)

	second, err := models.AcknowledgeWaterConsumptionAlert(ctx, org, alert.ID, utils.Ptr(8))
	require.NoError(t, err)
	assert.Equal(t, 7, *second.AcknowledgedBy)
	assert.True(t, first.AcknowledgedAt.Equal(*second.AcknowledgedAt))
}

func TestConsumptionSummaryBreakdowns(t *testing.T) {
	setupDB(t)
	t.Setenv("AUTO_WATER_CONSUMPTION_ALERTS", "0")
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")
	source, err := models.CreateWaterUtilitySource(ctx, org, &models.NewWaterUtilitySource{
		PropertyId: &propertyId, SourceType: models.WaterSourceGovernment,
	})
	require.NoError(t, err)

	entries := []models.NewWaterConsumptionEntry{
		{PropertyId: propertyId, SourceId: &source.ID, EntryType: models.ConsumptionEntryBill, EntryDate: daysAgo(1), VolumeLiters: utils.Ptr(1000), TotalCost: dec("300")},
		{PropertyId: propertyId, EntryType: models.ConsumptionEntryEmergencyDelivery, EntryDate: daysAgo(1), VolumeLiters: utils.Ptr(5000), TotalCost: dec("750")},
		{PropertyId: propertyId, EntryType: models.ConsumptionEntryBill, EntryDate: daysAgo(200), TotalCost: dec("50")},
	}
	for i := range entries {
		_, err := models.CreateWaterConsumptionEntry(ctx, org, &entries[i])
		require.NoError(t, err)
	}

	summary, err := models.GetWaterConsumptionSummary(ctx, org, &propertyId, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalEntries)
	assert.Equal(t, 1, summary.EmergencyDeliveries)
	assertDecimal(t, "1100", summary.TotalCost)
	assert.Equal(t, 6000, summary.TotalVolume)
	assertDecimal(t, "0.183333", summary.AverageCostPerLiter)

	require.Len(t, summary.MonthlyBreakdown, 1)
	assert.Equal(t, utils.MonthKey(daysAgo(1)), summary.MonthlyBreakdown[0].Month)
	assertDecimal(t, "1050", summary.MonthlyBreakdown[0].TotalCost)
	assert.Equal(t, 1, summary.MonthlyBreakdown[0].EmergencyCount)

	require.Len(t, summary.SourceTypeBreakdown, 2)
	assert.Equal(t, "unknown", summary.SourceTypeBreakdown[0].SourceType)
	assertDecimal(t, "800", summary.SourceTypeBreakdown[0].TotalCost)
	assert.Equal(t, 2, summary.SourceTypeBreakdown[0].EntryCount)
	assert.Equal(t, string(models.WaterSourceGovernment), summary.SourceTypeBreakdown[1].SourceType)
}
