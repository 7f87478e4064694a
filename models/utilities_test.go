package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUtility(t *testing.T, ctx context.Context, org string, propertyId int, utilityType models.UtilityType) *models.PropertyUtility {
	t.Helper()
	utility, err := models.CreatePropertyUtility(ctx, org, &models.NewPropertyUtility{
		PropertyId:   propertyId,
		UtilityType:  utilityType,
		ProviderName: "PEA",
	})
	require.NoError(t, err)
	return utility
}

func newUtilityBill(t *testing.T, ctx context.Context, org string, input models.NewUtilityBill) *models.UtilityBill {
	t.Helper()
	bill, err := models.CreateUtilityBill(ctx, org, &input)
	require.NoError(t, err)
	return bill
}

func TestUtilityBillTakesPropertyFromUtility(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")
	utility := newUtility(t, ctx, org, propertyId, models.UtilityElectricity)

	start := daysAgo(20)
	bill := newUtilityBill(t, ctx, org, models.NewUtilityBill{UtilityId: utility.ID, BillingPeriodStart: start, Amount: dec("1450.50")})
	assert.Equal(t, propertyId, bill.PropertyId)
	assert.Equal(t, utils.MonthKey(start), bill.BillingMonth)
	assert.Equal(t, "THB", bill.Currency)
	assert.False(t, *bill.IsPaid)
	require.NotNil(t, bill.UploadedAt)

	_, err := models.CreateUtilityBill(ctx, org, &models.NewUtilityBill{UtilityId: 9999, BillingPeriodStart: start})
	assert.True(t, utils.IsInputError(err))

	rows, err := models.ListUtilityBills(ctx, org, models.UtilityBillFilter{PropertyId: &propertyId})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].UtilityType)
	assert.Equal(t, models.UtilityElectricity, *rows[0].UtilityType)
	require.NotNil(t, rows[0].ProviderName)
	assert.Equal(t, "PEA", *rows[0].ProviderName)
}

func TestUtilityBillPaidOnce(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")
	utility := newUtility(t, ctx, org, propertyId, models.UtilityWater)
	bill := newUtilityBill(t, ctx, org, models.NewUtilityBill{UtilityId: utility.ID, BillingPeriodStart: daysAgo(20), Amount: dec("300")})

	paidOn := daysAgo(2)
	paid, err := models.MarkUtilityBillPaid(ctx, org, bill.ID, &paidOn)
	require.NoError(t, err)
	assert.True(t, *paid.IsPaid)
	require.NotNil(t, paid.PaidDate)
	assert.True(t, paidOn.Equal(*paid.PaidDate))

	later := daysAgo(0)
	again, err := models.MarkUtilityBillPaid(ctx, org, bill.ID, &later)
	require.NoError(t, err)
	assert.True(t, paidOn.Equal(*again.PaidDate))
}

func TestDeactivatedUtilityLeavesLists(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")
	internet := newUtility(t, ctx, org, propertyId, models.UtilityInternet)
	newUtility(t, ctx, org, propertyId, models.UtilityElectricity)

	_, err := models.CreatePropertyUtility(ctx, org, &models.NewPropertyUtility{
		PropertyId: propertyId, UtilityType: models.UtilityGas, ProviderName: "PTT", ExpectedBillDay: utils.Ptr(32),
	})
	assert.True(t, utils.IsInputError(err))

	_, err = models.DeactivatePropertyUtility(ctx, org, internet.ID)
	require.NoError(t, err)
	rows, err := models.ListPropertyUtilities(ctx, org, &propertyId)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.UtilityElectricity, rows[0].UtilityType)
}

func TestUtilityPermissionsDefaultToViewOnly(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")
	utility := newUtility(t, ctx, org, propertyId, models.UtilityElectricity)

	permission, err := models.CreateUtilityAccessPermission(ctx, org, &models.NewUtilityAccessPermission{
		UtilityId: utility.ID, UserRole: models.UserRoleStaff, CanUploadReceipt: utils.NewTrue(),
	})
	require.NoError(t, err)
	assert.True(t, *permission.CanView)
	assert.True(t, *permission.CanUploadReceipt)
	assert.False(t, *permission.CanMarkPaid)

	_, err = models.CreateUtilityAccessPermission(ctx, org, &models.NewUtilityAccessPermission{UtilityId: 9999, UserRole: models.UserRoleStaff})
	assert.True(t, utils.IsInputError(err))
	_, err = models.CreateUtilityAccessPermission(ctx, org, &models.NewUtilityAccessPermission{UtilityId: utility.ID, UserRole: "janitor"})
	assert.True(t, utils.IsInputError(err))

	staff := models.UserRoleStaff
	rows, err := models.ListUtilityAccessPermissions(ctx, org, utility.ID, &staff)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestUtilityNotificationKeepsFirstReader(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")
	utility := newUtility(t, ctx, org, propertyId, models.UtilityElectricity)

	notification, err := models.CreateUtilityNotification(ctx, org, &models.NewUtilityNotification{
		UtilityId: &utility.ID, PropertyId: &propertyId, NotificationType: "bill_overdue",
		Title: "Electricity bill overdue", Message: "Pay before cut off", ActionRequired: utils.NewTrue(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.SeverityMedium, notification.Severity)
	assert.False(t, *notification.IsRead)

	read, err := models.MarkUtilityNotificationRead(ctx, org, notification.ID, utils.Ptr(3))
	require.NoError(t, err)
	assert.True(t, *read.IsRead)
	assert.Equal(t, 3, *read.ReadBy)

	read, err = models.MarkUtilityNotificationRead(ctx, org, notification.ID, utils.Ptr(4))
	require.NoError(t, err)
	assert.Equal(t, 3, *read.ReadBy)

	acted, err := models.MarkUtilityNotificationActionTaken(ctx, org, notification.ID, utils.Ptr(4), utils.Ptr("paid online"))
	require.NoError(t, err)
	assert.True(t, *acted.ActionTaken)
	assert.Equal(t, 4, *acted.ActionTakenBy)
	assert.Equal(t, "paid online", *acted.ActionNotes)
	assert.True(t, read.ReadAt.Equal(*acted.ReadAt))
}

func TestUtilityDashboardCounts(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")
	power := newUtility(t, ctx, org, propertyId, models.UtilityElectricity)
	water := newUtility(t, ctx, org, propertyId, models.UtilityWater)
	internet := newUtility(t, ctx, org, propertyId, models.UtilityInternet)
	_, err := models.DeactivatePropertyUtility(ctx, org, internet.ID)
	require.NoError(t, err)

	newUtilityBill(t, ctx, org, models.NewUtilityBill{UtilityId: power.ID, BillingPeriodStart: daysAgo(10), Amount: dec("1200"), IsLate: utils.NewTrue()})
	newUtilityBill(t, ctx, org, models.NewUtilityBill{UtilityId: water.ID, BillingPeriodStart: daysAgo(10), Amount: dec("300"), ExpectedArrivalDate: utils.Ptr(daysAgo(-3))})
	paid := newUtilityBill(t, ctx, org, models.NewUtilityBill{UtilityId: power.ID, BillingPeriodStart: daysAgo(40), Amount: dec("1000")})
	old := newUtilityBill(t, ctx, org, models.NewUtilityBill{UtilityId: power.ID, BillingPeriodStart: daysAgo(240), Amount: dec("500")})
	for _, id := range []int{paid.ID, old.ID} {
		_, err := models.MarkUtilityBillPaid(ctx, org, id, nil)
		require.NoError(t, err)
	}

	for _, severity := range []models.Severity{models.SeverityCritical, models.SeverityMedium, models.SeverityCritical} {
		_, err := models.CreateUtilityNotification(ctx, org, &models.NewUtilityNotification{
			UtilityId: &power.ID, NotificationType: "bill_overdue", Severity: severity, Title: "Overdue", Message: "Pay now",
		})
		require.NoError(t, err)
	}
	notifications, err := models.ListUtilityNotifications(ctx, org, models.UtilityNotificationFilter{})
	require.NoError(t, err)
	_, err = models.MarkUtilityNotificationRead(ctx, org, notifications[0].ID, nil)
	require.NoError(t, err)

	dashboard, err := models.GetUtilityDashboard(ctx, org, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 2, dashboard.TotalUtilities)
	assert.Equal(t, 2, dashboard.UnpaidBills)
	assertDecimal(t, "1500", dashboard.TotalUnpaidAmount)
	assert.Equal(t, 1, dashboard.OverdueBills)
	assert.Equal(t, 1, dashboard.UpcomingBills)
	assert.Equal(t, 2, dashboard.UnreadNotifications)
	assert.Equal(t, 1, dashboard.CriticalAlerts)

	require.Len(t, dashboard.UtilityTypeBreakdown, 2)
	assert.Equal(t, models.UtilityElectricity, dashboard.UtilityTypeBreakdown[0].UtilityType)
	assert.Equal(t, models.UtilityWater, dashboard.UtilityTypeBreakdown[1].UtilityType)

	spent := decimal.Zero
	for i, m := range dashboard.MonthlySpending {
		spent = spent.Add(m.Amount)
		assert.NotEqual(t, utils.MonthKey(daysAgo(240)), m.Month)
		if i > 0 {
			assert.Greater(t, dashboard.MonthlySpending[i-1].Month, m.Month)
		}
	}
	assertDecimal(t, "2500", spent)
}

func TestBillArrivalPrediction(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	propertyId := newProperty(t, ctx, org, "Villa Mango")
	utility := newUtility(t, ctx, org, propertyId, models.UtilityElectricity)
	at := time.Now().UTC()
	nextMonth := time.Date(at.Year(), at.Month()+1, 1, 0, 0, 0, 0, time.UTC)

	prediction, err := models.PredictUtilityBillArrival(ctx, org, utility.ID, at)
	require.NoError(t, err)
	assert.Equal(t, 15, prediction.AverageArrivalDay)
	assertDecimal(t, "0.3", prediction.ConfidenceScore)
	assert.Equal(t, 0, prediction.BillsConsidered)
	assert.True(t, nextMonth.AddDate(0, 0, 14).Equal(prediction.PredictedDate))

	newUtilityBill(t, ctx, org, models.NewUtilityBill{UtilityId: utility.ID, BillingPeriodStart: daysAgo(5), Amount: dec("900")})
	prediction, err = models.PredictUtilityBillArrival(ctx, org, utility.ID, at)
	require.NoError(t, err)
	day := at.Day()
	if last := nextMonth.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	assert.Equal(t, 1, prediction.BillsConsidered)
	assert.Equal(t, day, prediction.AverageArrivalDay)
	assertDecimal(t, "1", prediction.ConfidenceScore)

	_, err = models.PredictUtilityBillArrival(ctx, org, 9999, at)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
}
