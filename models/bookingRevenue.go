package models

import (
	"context"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const bookingRevenueTable = "booking_revenue"

type BookingRevenue struct {
	ID                       int                  `gorm:"primary_key" json:"id"`
	OrganizationId           string               `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId               int                  `gorm:"index;not null" json:"property_id"`
	GuestName                string               `gorm:"size:200;not null" json:"guest_name"`
	BookingReference         *string              `gorm:"size:100" json:"booking_reference"`
	OtaName                  string               `gorm:"size:100;not null" json:"ota_name"`
	BookingType              BookingType          `gorm:"size:20;not null;default:ota" json:"booking_type"`
	CheckInDate              time.Time            `gorm:"type:date;not null" json:"check_in_date"`
	CheckOutDate             time.Time            `gorm:"type:date;not null" json:"check_out_date"`
	GuestBookingPrice        decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"guest_booking_price"`
	OtaPlatformFee           decimal.Decimal      `gorm:"type:decimal(12,2);not null;default:0" json:"ota_platform_fee"`
	FinalPayoutAmount        decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"final_payout_amount"`
	ManagementCommissionRate decimal.Decimal      `gorm:"type:decimal(5,2);not null;default:0" json:"management_commission_rate"`
	Currency                 string               `gorm:"size:3;not null;default:THB" json:"currency"`
	PaymentStatus            BookingPaymentStatus `gorm:"size:20;not null;default:pending" json:"payment_status"`
	Notes                    *string              `gorm:"type:text" json:"notes"`
	CreatedBy                *int                 `json:"created_by"`
	CreatedAt                time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BookingRevenue) TableName() string { return bookingRevenueTable }

type BookingRevenueWithProperty struct {
	BookingRevenue
	PropertyName *string `json:"property_name"`
}

type NewBookingRevenue struct {
	PropertyId               int                  `json:"property_id" binding:"required"`
	GuestName                string               `json:"guest_name" binding:"required"`
	BookingReference         *string              `json:"booking_reference"`
	OtaName                  string               `json:"ota_name" binding:"required"`
	BookingType              BookingType          `json:"booking_type"`
	CheckInDate              time.Time            `json:"check_in_date" binding:"required"`
	CheckOutDate             time.Time            `json:"check_out_date" binding:"required"`
	GuestBookingPrice        decimal.Decimal      `json:"guest_booking_price"`
	OtaPlatformFee           *decimal.Decimal     `json:"ota_platform_fee"`
	FinalPayoutAmount        *decimal.Decimal     `json:"final_payout_amount"`
	ManagementCommissionRate decimal.Decimal      `json:"management_commission_rate"`
	Currency                 string               `json:"currency"`
	PaymentStatus            BookingPaymentStatus `json:"payment_status"`
	Notes                    *string              `json:"notes"`
}

type BookingRevenueUpdate struct {
	GuestName                *string               `json:"guest_name"`
	BookingReference         *string               `json:"booking_reference"`
	OtaName                  *string               `json:"ota_name"`
	BookingType              *BookingType          `json:"booking_type"`
	CheckInDate              *time.Time            `json:"check_in_date"`
	CheckOutDate             *time.Time            `json:"check_out_date"`
	GuestBookingPrice        *decimal.Decimal      `json:"guest_booking_price"`
	OtaPlatformFee           *decimal.Decimal      `json:"ota_platform_fee"`
	FinalPayoutAmount        *decimal.Decimal      `json:"final_payout_amount"`
	ManagementCommissionRate *decimal.Decimal      `json:"management_commission_rate"`
	Currency                 *string               `json:"currency"`
	PaymentStatus            *BookingPaymentStatus `json:"payment_status"`
	Notes                    *string               `json:"notes"`
}

type BookingRevenueFilter struct {
	PropertyId    *int
	OtaName       *string
	BookingType   *BookingType
	PaymentStatus *BookingPaymentStatus
	StartDate     *time.Time
	EndDate       *time.Time
}

var hundredPercent = decimal.NewFromInt(100)

func validateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundredPercent) {
		return utils.NewInputError("rate must be between 0 and 100")
	}
	return nil
}

func validateStay(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return utils.NewInputError("check-in and check-out dates are required")
	}
	if dateOnly(checkOut).Before(dateOnly(checkIn)) {
		return utils.NewInputError("check-out date cannot be before check-in date")
	}
	return nil
}

func (input *NewBookingRevenue) validate(ctx context.Context, organizationId string) error {
	if strings.TrimSpace(input.GuestName) == "" {
		return utils.NewInputError("guest name is required")
	}
	if strings.TrimSpace(input.OtaName) == "" {
		return utils.NewInputError("ota name is required")
	}
	if input.BookingType != "" && !input.BookingType.IsValid() {
		return errInvalidBookingType
	}
	if input.PaymentStatus != "" && !input.PaymentStatus.IsValid() {
		return errInvalidPaymentStatus
	}
	if err := validateStay(input.CheckInDate, input.CheckOutDate); err != nil {
		return err
	}
	if err := validateNonNegative(input.GuestBookingPrice); err != nil {
		return err
	}
	if input.OtaPlatformFee != nil {
		if err := validateNonNegative(*input.OtaPlatformFee); err != nil {
			return err
		}
	}
	if err := validateRate(input.ManagementCommissionRate); err != nil {
		return err
	}
	return validatePropertyRef(ctx, organizationId, &input.PropertyId)
}

// defaultOtaFee applies the active OTA platform rate for the property, or zero.
func defaultOtaFee(ctx context.Context, organizationId string, propertyId int, otaName string, guestPrice decimal.Decimal) (decimal.Decimal, error) {
	setting, err := activeOtaPlatformSetting(ctx, organizationId, propertyId, otaName)
	if err != nil {
		return decimal.Zero, err
	}
	if setting == nil {
		return decimal.Zero, nil
	}
	return utils.RoundMoney(utils.PercentOf(guestPrice, setting.CommissionRate)), nil
}

func ListBookingRevenues(ctx context.Context, organizationId string, filter BookingRevenueFilter) ([]*BookingRevenueWithProperty, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = bookingRevenueTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "ota_name", filter.OtaName),
		utils.OptionalEq(t, "booking_type", filter.BookingType),
		utils.OptionalEq(t, "payment_status", filter.PaymentStatus),
		utils.OptionalGte(t, "check_in_date", filter.StartDate),
		utils.OptionalLte(t, "check_out_date", filter.EndDate),
	)
	return listWithProperty[BookingRevenueWithProperty](ctx, &BookingRevenue{}, t, preds,
		utils.OrderDesc(t, "check_in_date"), utils.OrderDesc(t, "id"))
}

func GetBookingRevenue(ctx context.Context, organizationId string, id int) (*BookingRevenueWithProperty, error) {
	return getWithProperty[BookingRevenueWithProperty](ctx, &BookingRevenue{}, bookingRevenueTable, organizationId, id)
}

// CreateBookingRevenue fills the OTA fee from the property's platform settings
// and the payout as guest price minus fee when they are not given.
func CreateBookingRevenue(ctx context.Context, organizationId string, input *NewBookingRevenue) (*BookingRevenue, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, organizationId); err != nil {
		return nil, err
	}
	otaName := strings.TrimSpace(input.OtaName)
	fee := decimal.Zero
	if input.OtaPlatformFee != nil {
		fee = *input.OtaPlatformFee
	} else {
		var err error
		if fee, err = defaultOtaFee(ctx, organizationId, input.PropertyId, otaName, input.GuestBookingPrice); err != nil {
			return nil, err
		}
	}
	payout := input.GuestBookingPrice.Sub(fee)
	if input.FinalPayoutAmount != nil {
		payout = *input.FinalPayoutAmount
	}
	if err := validateNonNegative(payout); err != nil {
		return nil, err
	}

	booking := BookingRevenue{
		OrganizationId:           organizationId,
		PropertyId:               input.PropertyId,
		GuestName:                strings.TrimSpace(input.GuestName),
		BookingReference:         input.BookingReference,
		OtaName:                  otaName,
		BookingType:              utils.DereferencePtr(utils.NilIfEmpty(input.BookingType), BookingTypeOTA),
		CheckInDate:              dateOnly(input.CheckInDate),
		CheckOutDate:             dateOnly(input.CheckOutDate),
		GuestBookingPrice:        input.GuestBookingPrice,
		OtaPlatformFee:           fee,
		FinalPayoutAmount:        payout,
		ManagementCommissionRate: input.ManagementCommissionRate,
		Currency:                 utils.DereferencePtr(utils.NilIfEmpty(input.Currency), "THB"),
		PaymentStatus:            utils.DereferencePtr(utils.NilIfEmpty(input.PaymentStatus), BookingPaymentPending),
		Notes:                    input.Notes,
		CreatedBy:                utils.GetActorIdFromContext(ctx),
	}
	return createScoped(ctx, &booking)
}

// UpdateBookingRevenue keeps final_payout_amount = price - fee whenever either
// changes and no explicit payout is supplied.
func UpdateBookingRevenue(ctx context.Context, organizationId string, id int, input *BookingRevenueUpdate) (*BookingRevenue, error) {
	existing, err := utils.FetchModel[BookingRevenue](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.GuestName != nil {
		if strings.TrimSpace(*input.GuestName) == "" {
			return nil, utils.NewInputError("guest name is required")
		}
		updates["guest_name"] = strings.TrimSpace(*input.GuestName)
	}
	if input.BookingReference != nil {
		updates["booking_reference"] = *input.BookingReference
	}
	if input.OtaName != nil {
		if strings.TrimSpace(*input.OtaName) == "" {
			return nil, utils.NewInputError("ota name is required")
		}
		updates["ota_name"] = strings.TrimSpace(*input.OtaName)
	}
	if input.BookingType != nil {
		if !input.BookingType.IsValid() {
			return nil, errInvalidBookingType
		}
		updates["booking_type"] = *input.BookingType
	}
	if input.CheckInDate != nil || input.CheckOutDate != nil {
		checkIn := utils.DereferencePtr(input.CheckInDate, existing.CheckInDate)
		checkOut := utils.DereferencePtr(input.CheckOutDate, existing.CheckOutDate)
		if err := validateStay(checkIn, checkOut); err != nil {
			return nil, err
		}
		updates["check_in_date"] = dateOnly(checkIn)
		updates["check_out_date"] = dateOnly(checkOut)
	}
	if input.ManagementCommissionRate != nil {
		if err := validateRate(*input.ManagementCommissionRate); err != nil {
			return nil, err
		}
		updates["management_commission_rate"] = *input.ManagementCommissionRate
	}
	if input.Currency != nil {
		updates["currency"] = *input.Currency
	}
	if input.PaymentStatus != nil {
		if !input.PaymentStatus.IsValid() {
			return nil, errInvalidPaymentStatus
		}
		updates["payment_status"] = *input.PaymentStatus
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.GuestBookingPrice != nil || input.OtaPlatformFee != nil || input.FinalPayoutAmount != nil {
		price := utils.DereferencePtr(input.GuestBookingPrice, existing.GuestBookingPrice)
		fee := utils.DereferencePtr(input.OtaPlatformFee, existing.OtaPlatformFee)
		payout := price.Sub(fee)
		if input.FinalPayoutAmount != nil {
			payout = *input.FinalPayoutAmount
		}
		if err := validateNonNegative(price, fee, payout); err != nil {
			return nil, err
		}
		updates["guest_booking_price"] = price
		updates["ota_platform_fee"] = fee
		updates["final_payout_amount"] = payout
	}
	if err := utils.UpdateScoped[BookingRevenue](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	return utils.FetchModel[BookingRevenue](ctx, organizationId, id)
}

func DeleteBookingRevenue(ctx context.Context, organizationId string, id int) (*BookingRevenue, error) {
	existing, err := utils.FetchModel[BookingRevenue](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if err := utils.DeleteScoped[BookingRevenue](ctx, organizationId, id); err != nil {
		return nil, err
	}
	return existing, nil
}
