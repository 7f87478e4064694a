package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBooking(t *testing.T, ctx context.Context, org string, input models.NewBookingRevenue) *models.BookingRevenue {
	t.Helper()
	if input.GuestName == "" {
		input.GuestName = "Jane Guest"
	}
	if input.OtaName == "" {
		input.OtaName = "Airbnb"
	}
	if input.CheckInDate.IsZero() {
		input.CheckInDate = daysAgo(10)
		input.CheckOutDate = daysAgo(7)
	}
	booking, err := models.CreateBookingRevenue(ctx, org, &input)
	require.NoError(t, err)
	return booking
}

func TestBookingFeeFromOtaSettings(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	mango := newProperty(t, ctx, org, "Villa Mango")
	lime := newProperty(t, ctx, org, "Villa Lime")

	_, err := models.CreateOtaPlatformSetting(ctx, org, &models.NewOtaPlatformSetting{OtaName: "Airbnb", CommissionRate: dec("15")})
	require.NoError(t, err)
	_, err = models.CreateOtaPlatformSetting(ctx, org, &models.NewOtaPlatformSetting{PropertyId: &mango, OtaName: "Airbnb", CommissionRate: dec("12")})
	require.NoError(t, err)

	specific := newBooking(t, ctx, org, models.NewBookingRevenue{PropertyId: mango, GuestBookingPrice: dec("10000")})
	assertDecimal(t, "1200", specific.OtaPlatformFee)
	assertDecimal(t, "8800", specific.FinalPayoutAmount)
	assert.Equal(t, models.BookingPaymentPending, specific.PaymentStatus)
	assert.Equal(t, models.BookingTypeOTA, specific.BookingType)

	orgWide := newBooking(t, ctx, org, models.NewBookingRevenue{PropertyId: lime, GuestBookingPrice: dec("10000")})
	assertDecimal(t, "1500", orgWide.OtaPlatformFee)
	assertDecimal(t, "8500", orgWide.FinalPayoutAmount)

	unknown := newBooking(t, ctx, org, models.NewBookingRevenue{PropertyId: lime, OtaName: "Direct Site", GuestBookingPrice: dec("5000")})
	assertDecimal(t, "0", unknown.OtaPlatformFee)
	assertDecimal(t, "5000", unknown.FinalPayoutAmount)

	explicit := dec("300")
	manual := newBooking(t, ctx, org, models.NewBookingRevenue{PropertyId: mango, GuestBookingPrice: dec("4000"), OtaPlatformFee: &explicit})
	assertDecimal(t, "300", manual.OtaPlatformFee)
	assertDecimal(t, "3700", manual.FinalPayoutAmount)
}

func TestBookingValidation(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	mango := newProperty(t, ctx, org, "Villa Mango")

	_, err := models.CreateBookingRevenue(ctx, org, &models.NewBookingRevenue{
		PropertyId:   mango,
		GuestName:    "Jane Guest",
		OtaName:      "Airbnb",
		CheckInDate:  daysAgo(3),
		CheckOutDate: daysAgo(5),
	})
	assert.True(t, utils.IsInputError(err), "check-out before check-in")

	_, err = models.CreateBookingRevenue(ctx, org, &models.NewBookingRevenue{
		PropertyId:               mango,
		GuestName:                "Jane Guest",
		OtaName:                  "Airbnb",
		CheckInDate:              daysAgo(5),
		CheckOutDate:             daysAgo(3),
		ManagementCommissionRate: dec("120"),
	})
	assert.True(t, utils.IsInputError(err), "rate above 100")

	sameDay := newBooking(t, ctx, org, models.NewBookingRevenue{PropertyId: mango, CheckInDate: daysAgo(2), CheckOutDate: daysAgo(2)})
	checkIn := daysAgo(1)
	_, err = models.UpdateBookingRevenue(ctx, org, sameDay.ID, &models.BookingRevenueUpdate{CheckInDate: &checkIn})
	assert.True(t, utils.IsInputError(err), "update moving check-in after check-out")
}

func TestBookingFiltersCombine(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	mango := newProperty(t, ctx, org, "Villa Mango")
	lime := newProperty(t, ctx, org, "Villa Lime")

	paid := models.BookingPaymentPaid
	newBooking(t, ctx, org, models.NewBookingRevenue{PropertyId: mango, OtaName: "Airbnb", PaymentStatus: paid, GuestBookingPrice: dec("1000")})
	newBooking(t, ctx, org, models.NewBookingRevenue{PropertyId: mango, OtaName: "Booking.com", PaymentStatus: paid, GuestBookingPrice: dec("1000")})
	newBooking(t, ctx, org, models.NewBookingRevenue{PropertyId: lime, OtaName: "Airbnb", PaymentStatus: paid, GuestBookingPrice: dec("1000")})
	newBooking(t, ctx, org, models.NewBookingRevenue{PropertyId: mango, OtaName: "Airbnb", GuestBookingPrice: dec("1000")})
	newBooking(t, ctx, org, models.NewBookingRevenue{
		PropertyId: mango, OtaName: "Airbnb", PaymentStatus: paid, GuestBookingPrice: dec("1000"),
		CheckInDate: daysAgo(90), CheckOutDate: daysAgo(85),
	})

	ota := "Airbnb"
	start := daysAgo(30)
	rows, err := models.ListBookingRevenues(ctx, org, models.BookingRevenueFilter{
		PropertyId:    &mango,
		OtaName:       &ota,
		PaymentStatus: &paid,
		StartDate:     &start,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Villa Mango", *rows[0].PropertyName)

	all, err := models.ListBookingRevenues(ctx, org, models.BookingRevenueFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	otherCtx, other := newTenant(t, "harbour")
	none, err := models.ListBookingRevenues(otherCtx, other, models.BookingRevenueFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
	_, err = models.GetBookingRevenue(otherCtx, other, all[0].ID)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
}

func TestBookingCommissionSplitAndFinalize(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	mango := newProperty(t, ctx, org, "Villa Mango")

	fee := dec("1200")
	booking := newBooking(t, ctx, org, models.NewBookingRevenue{
		PropertyId:               mango,
		GuestBookingPrice:        dec("10000"),
		OtaPlatformFee:           &fee,
		ManagementCommissionRate: dec("20"),
	})

	commission, err := models.CalculateBookingCommissions(ctx, org, booking.ID, nil)
	require.NoError(t, err)
	assertDecimal(t, "1760", commission.ManagementCommissionAmount)
	assertDecimal(t, "7040", commission.OwnerNetAmount)
	assertDecimal(t, "0", commission.PortfolioManagerCommissionAmount)
	assert.False(t, *commission.IsFinalized)
	require.NotNil(t, commission.CalculatedBy)

	_, err = models.CalculateBookingCommissions(ctx, org, booking.ID+100, nil)
	assert.True(t, utils.IsInputError(err))

	finalized, err := models.FinalizeBookingCommission(ctx, org, commission.ID)
	require.NoError(t, err)
	assert.True(t, *finalized.IsFinalized)
	again, err := models.FinalizeBookingCommission(ctx, org, commission.ID)
	require.NoError(t, err)
	assert.True(t, *again.IsFinalized)

	listed, err := models.ListBookingCommissions(ctx, org, &booking.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestSplitPayoutRounding(t *testing.T) {
	split := models.SplitPayout(dec("999.99"), dec("17.5"))
	assertDecimal(t, "175", split.Management)
	assertDecimal(t, "824.99", split.OwnerNet)

	zero := models.SplitPayout(dec("500"), dec("0"))
	assertDecimal(t, "0", zero.Management)
	assertDecimal(t, "500", zero.OwnerNet)
}

func TestRevenueAnalytics(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	mango := newProperty(t, ctx, org, "Villa Mango")
	lime := newProperty(t, ctx, org, "Villa Lime")

	airbnbFee := dec("1500")
	bookingFee := dec("500")
	lastMonth := time.Date(daysAgo(0).Year(), daysAgo(0).Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	newBooking(t, ctx, org, models.NewBookingRevenue{PropertyId: mango, OtaName: "Airbnb", GuestBookingPrice: dec("10000"), OtaPlatformFee: &airbnbFee,
		CheckInDate: lastMonth, CheckOutDate: lastMonth.AddDate(0, 0, 3)})
	newBooking(t, ctx, org, models.NewBookingRevenue{PropertyId: mango, OtaName: "Booking.com", GuestBookingPrice: dec("5000"), OtaPlatformFee: &bookingFee,
		CheckInDate: lastMonth.AddDate(0, 1, 0), CheckOutDate: lastMonth.AddDate(0, 1, 2)})
	newBooking(t, ctx, org, models.NewBookingRevenue{PropertyId: lime, OtaName: "Airbnb", GuestBookingPrice: dec("8000"), OtaPlatformFee: &airbnbFee})

	analytics, err := models.GetRevenueAnalytics(ctx, org, models.RevenueAnalyticsFilter{PropertyId: &mango})
	require.NoError(t, err)
	assert.Equal(t, 2, analytics.Summary.TotalBookings)
	assertDecimal(t, "15000", analytics.Summary.TotalGuestRevenue)
	assertDecimal(t, "2000", analytics.Summary.TotalOtaCommissions)
	assertDecimal(t, "13000", analytics.Summary.TotalNetPayouts)
	assertDecimal(t, "13.33", analytics.Summary.AverageCommissionRate)

	require.Len(t, analytics.OtaBreakdown, 2)
	for _, o := range analytics.OtaBreakdown {
		switch o.OtaName {
		case "Airbnb":
			assertDecimal(t, "15", o.AverageCommissionRate)
		case "Booking.com":
			assertDecimal(t, "10", o.AverageCommissionRate)
		default:
			t.Fatalf("unexpected ota %s", o.OtaName)
		}
	}

	require.Len(t, analytics.MonthlyTrends, 2)
	assert.Less(t, analytics.MonthlyTrends[0].Month, analytics.MonthlyTrends[1].Month)
	assertDecimal(t, "1500", analytics.MonthlyTrends[0].CommissionLoss)

	empty, err := models.GetRevenueAnalytics(ctx, org, models.RevenueAnalyticsFilter{PropertyId: utils.Ptr(mango + lime + 100)})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Summary.TotalBookings)
	assertDecimal(t, "0", empty.Summary.AverageCommissionRate)
}
