package models

import (
	"context"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const waterUtilityBillsTable = "water_utility_bills"

type WaterUtilityBill struct {
	ID                  int              `gorm:"primary_key" json:"id"`
	OrganizationId      string           `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId          *int             `gorm:"index" json:"property_id"`
	BillType            WaterBillType    `gorm:"size:30;not null;default:regular_bill" json:"bill_type"`
	BillDate            time.Time        `gorm:"type:date;not null" json:"bill_date"`
	DueDate             *time.Time       `gorm:"type:date" json:"due_date"`
	Amount              decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency            string           `gorm:"size:3;not null;default:THB" json:"currency"`
	Units               *decimal.Decimal `gorm:"type:decimal(12,2)" json:"units"`
	UnitRate            *decimal.Decimal `gorm:"type:decimal(12,6)" json:"unit_rate"`
	PaymentStatus       PaymentStatus    `gorm:"size:20;not null;default:pending" json:"payment_status"`
	PaidDate            *time.Time       `gorm:"type:date" json:"paid_date"`
	ReceiptUrl          *string          `gorm:"size:500" json:"receipt_url"`
	SourceType          *WaterSourceType `gorm:"size:30" json:"source_type"`
	EmergencyDeliveryId *int             `gorm:"index" json:"emergency_delivery_id"`
	Notes               *string          `gorm:"type:text" json:"notes"`
	CreatedAt           time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WaterUtilityBill) TableName() string { return waterUtilityBillsTable }

// StatusAt derives the display status: a pending bill past its due date is overdue.
func (b WaterUtilityBill) StatusAt(at time.Time) PaymentStatus {
	if b.PaymentStatus == PaymentStatusPending && b.DueDate != nil && b.DueDate.Before(at) {
		return PaymentStatusOverdue
	}
	return b.PaymentStatus
}

type WaterUtilityBillWithProperty struct {
	WaterUtilityBill
	PropertyName  *string       `json:"property_name"`
	DisplayStatus PaymentStatus `gorm:"-" json:"display_status"`
}

type NewWaterUtilityBill struct {
	PropertyId          *int             `json:"property_id"`
	BillType            WaterBillType    `json:"bill_type"`
	BillDate            time.Time        `json:"bill_date" binding:"required"`
	DueDate             *time.Time       `json:"due_date"`
	Amount              decimal.Decimal  `json:"amount"`
	Currency            string           `json:"currency"`
	Units               *decimal.Decimal `json:"units"`
	ReceiptUrl          *string          `json:"receipt_url"`
	SourceType          *WaterSourceType `json:"source_type"`
	EmergencyDeliveryId *int             `json:"emergency_delivery_id"`
	Notes               *string          `json:"notes"`
}

type WaterUtilityBillUpdate struct {
	PropertyId    *int             `json:"property_id"`
	BillType      *WaterBillType   `json:"bill_type"`
	BillDate      *time.Time       `json:"bill_date"`
	DueDate       *time.Time       `json:"due_date"`
	Amount        *decimal.Decimal `json:"amount"`
	Currency      *string          `json:"currency"`
	Units         *decimal.Decimal `json:"units"`
	PaymentStatus *PaymentStatus   `json:"payment_status"`
	PaidDate      *time.Time       `json:"paid_date"`
	ReceiptUrl    *string          `json:"receipt_url"`
	SourceType    *WaterSourceType `json:"source_type"`
	Notes         *string          `json:"notes"`
}

type WaterUtilityBillFilter struct {
	PropertyId    *int
	StartDate     *time.Time
	EndDate       *time.Time
	BillType      *WaterBillType
	PaymentStatus *PaymentStatus
}

func (input *NewWaterUtilityBill) validate(ctx context.Context, organizationId string) error {
	if input.BillDate.IsZero() {
		return utils.NewInputError("bill date is required")
	}
	if input.BillType != "" && !input.BillType.IsValid() {
		return errInvalidBillType
	}
	if input.SourceType != nil && !input.SourceType.IsValid() {
		return errInvalidSourceType
	}
	if err := validateNonNegative(input.Amount); err != nil {
		return err
	}
	if input.Units != nil {
		if err := validateNonNegative(*input.Units); err != nil {
			return err
		}
	}
	if input.DueDate != nil && input.DueDate.Before(dateOnly(input.BillDate)) {
		return utils.NewInputError("due date cannot be before bill date")
	}
	if err := validatePropertyRef(ctx, organizationId, input.PropertyId); err != nil {
		return err
	}
	return validateRef[EmergencyWaterDelivery](ctx, organizationId, input.EmergencyDeliveryId, "emergency delivery")
}

// unitRate is amount per unit when units were recorded.
func unitRate(amount decimal.Decimal, units *decimal.Decimal) *decimal.Decimal {
	if units == nil {
		return nil
	}
	rate := utils.UnitCost(amount, *units)
	return &rate
}

func ListWaterUtilityBills(ctx context.Context, organizationId string, filter WaterUtilityBillFilter) ([]*WaterUtilityBillWithProperty, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = waterUtilityBillsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalGte(t, "bill_date", filter.StartDate),
		utils.OptionalLte(t, "bill_date", filter.EndDate),
		utils.OptionalEq(t, "bill_type", filter.BillType),
		utils.OptionalEq(t, "payment_status", filter.PaymentStatus),
	)
	results, err := listWithProperty[WaterUtilityBillWithProperty](ctx, &WaterUtilityBill{}, t, preds,
		utils.OrderDesc(t, "bill_date"), utils.OrderDesc(t, "id"))
	if err != nil {
		return nil, err
	}
	at := now()
	for _, r := range results {
		r.DisplayStatus = r.StatusAt(at)
	}
	return results, nil
}

func CreateWaterUtilityBill(ctx context.Context, organizationId string, input *NewWaterUtilityBill) (*WaterUtilityBill, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, organizationId); err != nil {
		return nil, err
	}
	var dueDate *time.Time
	if input.DueDate != nil {
		d := dateOnly(*input.DueDate)
		dueDate = &d
	}
	bill := WaterUtilityBill{
		OrganizationId:      organizationId,
		PropertyId:          input.PropertyId,
		BillType:            utils.DereferencePtr(utils.NilIfEmpty(input.BillType), WaterBillTypeRegular),
		BillDate:            dateOnly(input.BillDate),
		DueDate:             dueDate,
		Amount:              input.Amount,
		Currency:            utils.DereferencePtr(utils.NilIfEmpty(input.Currency), "THB"),
		Units:               input.Units,
		UnitRate:            unitRate(input.Amount, input.Units),
		PaymentStatus:       PaymentStatusPending,
		ReceiptUrl:          input.ReceiptUrl,
		SourceType:          input.SourceType,
		EmergencyDeliveryId: input.EmergencyDeliveryId,
		Notes:               input.Notes,
	}
	return createScoped(ctx, &bill)
}

func UpdateWaterUtilityBill(ctx context.Context, organizationId string, id int, input *WaterUtilityBillUpdate) (*WaterUtilityBill, error) {
	existing, err := utils.FetchModel[WaterUtilityBill](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.PropertyId != nil {
		if err := validatePropertyRef(ctx, organizationId, input.PropertyId); err != nil {
			return nil, err
		}
		updates["property_id"] = *input.PropertyId
	}
	if input.BillType != nil {
		if !input.BillType.IsValid() {
			return nil, errInvalidBillType
		}
		updates["bill_type"] = *input.BillType
	}
	if input.BillDate != nil {
		updates["bill_date"] = dateOnly(*input.BillDate)
	}
	if input.DueDate != nil {
		updates["due_date"] = dateOnly(*input.DueDate)
	}
	if input.Currency != nil {
		updates["currency"] = *input.Currency
	}
	if input.PaymentStatus != nil {
		if !input.PaymentStatus.IsValid() {
			return nil, errInvalidPaymentStatus
		}
		updates["payment_status"] = *input.PaymentStatus
		if *input.PaymentStatus == PaymentStatusPaid && input.PaidDate == nil && existing.PaidDate == nil {
			updates["paid_date"] = dateOnly(now())
		}
	}
	if input.PaidDate != nil {
		updates["paid_date"] = dateOnly(*input.PaidDate)
	}
	if input.ReceiptUrl != nil {
		updates["receipt_url"] = *input.ReceiptUrl
	}
	if input.SourceType != nil {
		if !input.SourceType.IsValid() {
			return nil, errInvalidSourceType
		}
		updates["source_type"] = *input.SourceType
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.Amount != nil || input.Units != nil {
		amount := utils.DereferencePtr(input.Amount, existing.Amount)
		if err := validateNonNegative(amount); err != nil {
			return nil, err
		}
		units := existing.Units
		if input.Units != nil {
			units = input.Units
			updates["units"] = *input.Units
		}
		updates["amount"] = amount
		if rate := unitRate(amount, units); rate != nil {
			updates["unit_rate"] = *rate
		}
	}
	guard := utils.NotEqualOrNull(waterUtilityBillsTable, "payment_status", PaymentStatusPaid)
	if _, err := utils.TransitionScoped[WaterUtilityBill](ctx, organizationId, id, updates, guard); err != nil {
		return nil, err
	}
	return utils.FetchModel[WaterUtilityBill](ctx, organizationId, id)
}

// MarkWaterUtilityBillPaid sets payment_status to paid. A bill already paid keeps its paid date.
func MarkWaterUtilityBillPaid(ctx context.Context, organizationId string, id int, paidDate *time.Time) (*WaterUtilityBill, error) {
	existing, err := utils.FetchModel[WaterUtilityBill](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if existing.PaymentStatus == PaymentStatusPaid {
		return existing, nil
	}
	paid := dateOnly(utils.DereferencePtr(paidDate, now()))
	updates := map[string]interface{}{
		"payment_status": PaymentStatusPaid,
		"paid_date":      paid,
		"updated_at":     now(),
	}
	guard := utils.NotEqualOrNull(waterUtilityBillsTable, "payment_status", PaymentStatusPaid)
	if _, err := utils.TransitionScoped[WaterUtilityBill](ctx, organizationId, id, updates, guard); err != nil {
		return nil, err
	}
	return utils.FetchModel[WaterUtilityBill](ctx, organizationId, id)
}
