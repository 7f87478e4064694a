package models_test

import (
	"sync"
	"testing"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmergencyDeliveryCostPerLiter(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")

	delivery, err := models.CreateEmergencyWaterDelivery(ctx, org, &models.NewEmergencyWaterDelivery{
		PropertyId:   &propertyId,
		SupplierName: "Blue Truck Co",
		DeliveryDate: daysAgo(1),
		VolumeLiters: 5000,
		Cost:         dec("750"),
	})
	require.NoError(t, err)
	assertDecimal(t, "0.15", delivery.CostPerLiter)
	assert.Equal(t, models.DeliveryStatusPending, delivery.Status)
	assert.Equal(t, models.DeliveryTypeUnexpected, delivery.DeliveryType)
	assert.Equal(t, models.BillingTypeOwnerBillable, delivery.BillingType)
	assert.Equal(t, "THB", delivery.Currency)

	cost := dec("900")
	updated, err := models.UpdateEmergencyWaterDelivery(ctx, org, delivery.ID, &models.EmergencyWaterDeliveryUpdate{Cost: &cost})
	require.NoError(t, err)
	assertDecimal(t, "0.18", updated.CostPerLiter)
	assert.Equal(t, 5000, updated.VolumeLiters)

	withName, err := models.GetEmergencyWaterDelivery(ctx, org, delivery.ID)
	require.NoError(t, err)
	require.NotNil(t, withName.PropertyName)
	assert.Equal(t, "Villa Mango", *withName.PropertyName)
}

func TestEmergencyDeliveryZeroVolumeHasZeroUnitCost(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")

	delivery, err := models.CreateEmergencyWaterDelivery(ctx, org, &models.NewEmergencyWaterDelivery{
		SupplierName: "Blue Truck Co",
		DeliveryDate: daysAgo(1),
		Cost:         dec("300"),
	})
	require.NoError(t, err)
	assert.True(t, delivery.CostPerLiter.IsZero())
}

func TestEmergencyDeliveryRejectsBadInput(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")

	_, err := models.CreateEmergencyWaterDelivery(ctx, org, &models.NewEmergencyWaterDelivery{
		SupplierName: "Blue Truck Co",
		DeliveryDate: daysAgo(1),
		VolumeLiters: 100,
		Cost:         dec("-1"),
	})
	assert.True(t, utils.IsInputError(err))

	_, err = models.CreateEmergencyWaterDelivery(ctx, org, &models.NewEmergencyWaterDelivery{
		SupplierName: "Blue Truck Co",
		DeliveryDate: daysAgo(1),
		DeliveryType: "sometimes",
	})
	assert.True(t, utils.IsInputError(err))

	missing := 9999
	_, err = models.CreateEmergencyWaterDelivery(ctx, org, &models.NewEmergencyWaterDelivery{
		PropertyId:   &missing,
		SupplierName: "Blue Truck Co",
		DeliveryDate: daysAgo(1),
	})
	assert.True(t, utils.IsInputError(err))

	_, err = models.ListEmergencyWaterDeliveries(ctx, "", models.EmergencyWaterDeliveryFilter{})
	assert.ErrorIs(t, err, utils.ErrorOrganizationRequired)
}

func TestEmergencyDeliveryTenantIsolation(t *testing.T) {
	setupDB(t)
	ctxA, orgA := newTenant(t, "alpha")
	ctxB, orgB := newTenant(t, "bravo")
	propertyA := newProperty(t, ctxA, orgA, "Alpha House")

	delivery, err := models.CreateEmergencyWaterDelivery(ctxA, orgA, &models.NewEmergencyWaterDelivery{
		PropertyId:   &propertyA,
		SupplierName: "Blue Truck Co",
		DeliveryDate: daysAgo(2),
		VolumeLiters: 1000,
		Cost:         dec("200"),
	})
	require.NoError(t, err)

	rows, err := models.ListEmergencyWaterDeliveries(ctxB, orgB, models.EmergencyWaterDeliveryFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = models.GetEmergencyWaterDelivery(ctxB, orgB, delivery.ID)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)

	supplier := "Hijacked"
	_, err = models.UpdateEmergencyWaterDelivery(ctxB, orgB, delivery.ID, &models.EmergencyWaterDeliveryUpdate{SupplierName: &supplier})
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)

	_, err = models.DeleteEmergencyWaterDelivery(ctxB, orgB, delivery.ID)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)

	// a property of tenant A is not a valid reference for tenant B
	_, err = models.CreateEmergencyWaterDelivery(ctxB, orgB, &models.NewEmergencyWaterDelivery{
		PropertyId:   &propertyA,
		SupplierName: "Blue Truck Co",
		DeliveryDate: daysAgo(2),
	})
	assert.True(t, utils.IsInputError(err))

	stored, err := models.GetEmergencyWaterDelivery(ctxA, orgA, delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blue Truck Co", stored.SupplierName)
}

func TestEmergencyDeliveryFiltersCombine(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	mango := newProperty(t, ctx, org, "Villa Mango")
	lime := newProperty(t, ctx, org, "Villa Lime")

	create := func(propertyId int, deliveryType models.DeliveryType, daysBack int) *models.EmergencyWaterDelivery {
		d, err := models.CreateEmergencyWaterDelivery(ctx, org, &models.NewEmergencyWaterDelivery{
			PropertyId:   &propertyId,
			SupplierName: "Blue Truck Co",
			DeliveryDate: daysAgo(daysBack),
			VolumeLiters: 1000,
			Cost:         dec("150"),
			DeliveryType: deliveryType,
		})
		require.NoError(t, err)
		return d
	}
	want := create(mango, models.DeliveryTypePlanned, 3)
	unexpected := create(mango, models.DeliveryTypeUnexpected, 3)
	other := create(lime, models.DeliveryTypePlanned, 3)
	old := create(mango, models.DeliveryTypePlanned, 40)
	newest := create(lime, models.DeliveryTypeUnexpected, 1)

	planned := models.DeliveryTypePlanned
	since := daysAgo(10)
	rows, err := models.ListEmergencyWaterDeliveries(ctx, org, models.EmergencyWaterDeliveryFilter{
		PropertyId:   &mango,
		DeliveryType: &planned,
		StartDate:    &since,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, want.ID, rows[0].ID)

	all, err := models.ListEmergencyWaterDeliveries(ctx, org, models.EmergencyWaterDeliveryFilter{})
	require.NoError(t, err)
	ids := make([]int, 0, len(all))
	for _, row := range all {
		ids = append(ids, row.ID)
	}
	// delivery date desc, then id desc
	assert.Equal(t, []int{newest.ID, other.ID, unexpected.ID, want.ID, old.ID}, ids)
}

func TestCompleteEmergencyDeliveryIsIdempotent(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")

	delivery, err := models.CreateEmergencyWaterDelivery(ctx, org, &models.NewEmergencyWaterDelivery{
		SupplierName: "Blue Truck Co",
		DeliveryDate: daysAgo(1),
		VolumeLiters: 1000,
		Cost:         dec("150"),
	})
	require.NoError(t, err)

	first, err := models.CompleteEmergencyWaterDelivery(ctx, org, delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusCompleted, first.Status)
	require.NotNil(t, first.ApprovedBy)

	second, err := models.CompleteEmergencyWaterDelivery(ctx, org, delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusCompleted, second.Status)
	assert.Equal(t, *first.ApprovedBy, *second.ApprovedBy)
}

func TestWaterBillOverdueAndPayment(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")

	due := daysAgo(3)
	units := dec("40")
	bill, err := models.CreateWaterUtilityBill(ctx, org, &models.NewWaterUtilityBill{
		PropertyId: &propertyId,
		BillDate:   daysAgo(20),
		DueDate:    &due,
		Amount:     dec("600"),
		Units:      &units,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, bill.PaymentStatus)
	require.NotNil(t, bill.UnitRate)
	assertDecimal(t, "15", *bill.UnitRate)

	rows, err := models.ListWaterUtilityBills(ctx, org, models.WaterUtilityBillFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.PaymentStatusOverdue, rows[0].DisplayStatus)

	paidOn := daysAgo(1)
	paid, err := models.MarkWaterUtilityBillPaid(ctx, org, bill.ID, &paidOn)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaidDate)

	again, err := models.MarkWaterUtilityBillPaid(ctx, org, bill.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, again.PaidDate)
	assert.True(t, paid.PaidDate.Equal(*again.PaidDate))

	analytics, err := models.GetWaterUtilityAnalytics(ctx, org, &propertyId)
	require.NoError(t, err)
	assert.Equal(t, 1, analytics.Billing.TotalBills)
	assert.Equal(t, 1, analytics.Billing.PaidBills)
	assert.Equal(t, 0, analytics.Billing.OverdueBills)
}

func TestWaterBillRejectsDueBeforeBillDate(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")

	due := daysAgo(30)
	_, err := models.CreateWaterUtilityBill(ctx, org, &models.NewWaterUtilityBill{
		BillDate: daysAgo(10),
		DueDate:  &due,
		Amount:   dec("100"),
	})
	assert.True(t, utils.IsInputError(err))
}

func TestDismissWaterAlertKeepsFirstDismissal(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")

	alert, err := models.CreateWaterUtilityAlert(ctx, org, &models.NewWaterUtilityAlert{
		AlertType:    models.WaterAlertOverduePayment,
		AlertMessage: "Water bill overdue",
	})
	require.NoError(t, err)
	require.True(t, *alert.IsActive)

	action := "paid at the counter"
	first, err := models.DismissWaterUtilityAlert(ctx, org, alert.ID, nil, &action)
	require.NoError(t, err)
	assert.False(t, *first.IsActive)
	require.NotNil(t, first.DismissedAt)
	require.NotNil(t, first.DismissedBy)

	other := "something else"
	second, err := models.DismissWaterUtilityAlert(ctx, org, alert.ID, nil, &other)
	require.NoError(t, err)
	require.NotNil(t, second.ActionTaken)
	assert.Equal(t, action, *second.ActionTaken)
	assert.True(t, first.DismissedAt.Equal(*second.DismissedAt))

	active, err := models.ListWaterUtilityAlerts(ctx, org, models.WaterUtilityAlertFilter{IsActive: utils.NewTrue()})
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestConcurrentDismissalsKeepOneDismisser(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")

	alert, err := models.CreateWaterUtilityAlert(ctx, org, &models.NewWaterUtilityAlert{
		AlertType:    models.WaterAlertOverduePayment,
		AlertMessage: "Water bill overdue",
	})
	require.NoError(t, err)

	const workers = 8
	results := make([]*models.WaterUtilityAlert, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = models.DismissWaterUtilityAlert(ctx, org, alert.ID, utils.Ptr(100+i), nil)
		}(i)
	}
	wg.Wait()

	stored, err := models.ListWaterUtilityAlerts(ctx, org, models.WaterUtilityAlertFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].DismissedBy)
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		// every caller sees the single winning dismissal
		assert.Equal(t, *stored[0].DismissedBy, *results[i].DismissedBy)
		assert.True(t, stored[0].DismissedAt.Equal(*results[i].DismissedAt))
	}
}

func TestScanMissingWaterBills(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	stale := newProperty(t, ctx, org, "Villa Stale")
	fresh := newProperty(t, ctx, org, "Villa Fresh")
	muted := newProperty(t, ctx, org, "Villa Muted")

	for _, id := range []int{stale, fresh} {
		_, err := models.CreatePropertyWaterSetting(ctx, org, &models.NewPropertyWaterSetting{PropertyId: id})
		require.NoError(t, err)
	}
	_, err := models.CreatePropertyWaterSetting(ctx, org, &models.NewPropertyWaterSetting{
		PropertyId:       muted,
		AutoAlertEnabled: utils.NewFalse(),
	})
	require.NoError(t, err)

	for id, age := range map[int]int{stale: 40, fresh: 10, muted: 90} {
		propertyId := id
		_, err := models.CreateWaterUtilityBill(ctx, org, &models.NewWaterUtilityBill{
			PropertyId: &propertyId,
			BillDate:   daysAgo(age),
			Amount:     dec("450"),
		})
		require.NoError(t, err)
	}

	at := time.Now().UTC()
	created, err := models.ScanMissingWaterBills(ctx, org, at)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, stale, *created[0].PropertyId)
	assert.Equal(t, models.WaterAlertEmergencyPrompt, created[0].AlertType)
	require.NotNil(t, created[0].DaysSinceLastBill)
	assert.GreaterOrEqual(t, *created[0].DaysSinceLastBill, 40)

	// an active prompt suppresses a second one
	again, err := models.ScanMissingWaterBills(ctx, org, at)
	require.NoError(t, err)
	assert.Empty(t, again)

	_, err = models.DismissWaterUtilityAlert(ctx, org, created[0].ID, nil, nil)
	require.NoError(t, err)
	afterDismiss, err := models.ScanMissingWaterBills(ctx, org, at)
	require.NoError(t, err)
	assert.Len(t, afterDismiss, 1)
}

func TestWaterSettingNormalizesEmergencyContact(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")

	contact := "081 234 5678"
	setting, err := models.CreatePropertyWaterSetting(ctx, org, &models.NewPropertyWaterSetting{
		PropertyId:               propertyId,
		EmergencySupplierContact: &contact,
	})
	require.NoError(t, err)
	require.NotNil(t, setting.EmergencySupplierContact)
	assert.Equal(t, "+66812345678", *setting.EmergencySupplierContact)
	assert.Equal(t, 30, setting.ExpectedBillCycle)
	assert.Equal(t, 7, setting.AlertThresholdDays)

	bad := "not a phone"
	_, err = models.CreatePropertyWaterSetting(ctx, org, &models.NewPropertyWaterSetting{
		PropertyId:               propertyId,
		EmergencySupplierContact: &bad,
	})
	assert.True(t, utils.IsInputError(err))
}
