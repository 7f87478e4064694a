package models

import (
	"context"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const waterRefillBillsTable = "water_refill_bills"

type WaterRefillBill struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OrganizationId string          `gorm:"size:36;index;not null" json:"organization_id"`
	RefillId       int             `gorm:"index;not null" json:"refill_id"`
	PropertyId     int             `gorm:"index;not null" json:"property_id"`
	BillNumber     *string         `gorm:"size:100" json:"bill_number"`
	BillDate       time.Time       `gorm:"type:date;not null" json:"bill_date"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency       string          `gorm:"size:3;not null;default:THB" json:"currency"`
	BilledTo       BillingType     `gorm:"size:20;not null" json:"billed_to"`
	PaymentStatus  PaymentStatus   `gorm:"size:20;not null;default:pending" json:"payment_status"`
	ReceiptUrl     *string         `gorm:"size:500" json:"receipt_url"`
	Notes          *string         `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (WaterRefillBill) TableName() string { return waterRefillBillsTable }

type NewWaterRefillBill struct {
	RefillId   int              `json:"refill_id" binding:"required"`
	BillNumber *string          `json:"bill_number"`
	BillDate   *time.Time       `json:"bill_date"`
	Amount     *decimal.Decimal `json:"amount"`
	Currency   string           `json:"currency"`
	BilledTo   BillingType      `json:"billed_to"`
	ReceiptUrl *string          `json:"receipt_url"`
	Notes      *string          `json:"notes"`
}

// CreateWaterRefillBill bills a refill. Amount, date and billing route default
// to the refill's own values.
func CreateWaterRefillBill(ctx context.Context, organizationId string, input *NewWaterRefillBill) (*WaterRefillBill, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	refill, err := utils.FetchModel[WaterRefill](ctx, organizationId, input.RefillId)
	if err != nil {
		return nil, utils.NewInputError("refill not found")
	}
	if input.BilledTo != "" && !input.BilledTo.IsValid() {
		return nil, errInvalidBillingType
	}
	amount := utils.DereferencePtr(input.Amount, refill.CostAmount)
	if err := validateNonNegative(amount); err != nil {
		return nil, err
	}
	bill := WaterRefillBill{
		OrganizationId: organizationId,
		RefillId:       refill.ID,
		PropertyId:     refill.PropertyId,
		BillNumber:     input.BillNumber,
		BillDate:       dateOnly(utils.DereferencePtr(input.BillDate, refill.DeliveryDate)),
		Amount:         amount,
		Currency:       utils.DereferencePtr(utils.NilIfEmpty(input.Currency), "THB"),
		BilledTo:       utils.DereferencePtr(utils.NilIfEmpty(input.BilledTo), refill.BillingRoute),
		PaymentStatus:  PaymentStatusPending,
		ReceiptUrl:     input.ReceiptUrl,
		Notes:          input.Notes,
	}
	return createScoped(ctx, &bill)
}

func ListWaterRefillBills(ctx context.Context, organizationId string, refillId *int) ([]*WaterRefillBill, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = waterRefillBillsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "refill_id", refillId),
	)
	return listScoped[WaterRefillBill](ctx, preds, utils.OrderDesc(t, "bill_date"), utils.OrderDesc(t, "id"))
}
