package models

import (
	"context"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const emergencyWaterDeliveriesTable = "emergency_water_deliveries"

type EmergencyWaterDelivery struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	OrganizationId     string          `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId         *int            `gorm:"index" json:"property_id"`
	SupplierName       string          `gorm:"size:200;not null" json:"supplier_name"`
	DeliveryDate       time.Time       `gorm:"type:date;not null" json:"delivery_date"`
	VolumeLiters       int             `gorm:"not null" json:"volume_liters"`
	Cost               decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost"`
	CostPerLiter       decimal.Decimal `gorm:"type:decimal(12,6);not null;default:0" json:"cost_per_liter"`
	Currency           string          `gorm:"size:3;not null;default:THB" json:"currency"`
	ReceiptUrl         *string         `gorm:"size:500" json:"receipt_url"`
	Notes              *string         `gorm:"type:text" json:"notes"`
	LinkedGuestBooking *string         `gorm:"size:100" json:"linked_guest_booking"`
	LinkedEvent        *string         `gorm:"size:200" json:"linked_event"`
	DeliveryType       DeliveryType    `gorm:"size:20;not null;default:unexpected" json:"delivery_type"`
	BillingType        BillingType     `gorm:"size:20;not null;default:owner_billable" json:"billing_type"`
	ProcessedBy        *int            `json:"processed_by"`
	ApprovedBy         *int            `json:"approved_by"`
	Status             DeliveryStatus  `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EmergencyWaterDelivery) TableName() string { return emergencyWaterDeliveriesTable }

type EmergencyWaterDeliveryWithProperty struct {
	EmergencyWaterDelivery
	PropertyName *string `json:"property_name"`
}

type NewEmergencyWaterDelivery struct {
	PropertyId         *int            `json:"property_id"`
	SupplierName       string          `json:"supplier_name" binding:"required"`
	DeliveryDate       time.Time       `json:"delivery_date" binding:"required"`
	VolumeLiters       int             `json:"volume_liters"`
	Cost               decimal.Decimal `json:"cost"`
	Currency           string          `json:"currency"`
	ReceiptUrl         *string         `json:"receipt_url"`
	Notes              *string         `json:"notes"`
	LinkedGuestBooking *string         `json:"linked_guest_booking"`
	LinkedEvent        *string         `json:"linked_event"`
	DeliveryType       DeliveryType    `json:"delivery_type"`
	BillingType        BillingType     `json:"billing_type"`
	ProcessedBy        *int            `json:"processed_by"`
}

type EmergencyWaterDeliveryUpdate struct {
	PropertyId         *int             `json:"property_id"`
	SupplierName       *string          `json:"supplier_name"`
	DeliveryDate       *time.Time       `json:"delivery_date"`
	VolumeLiters       *int             `json:"volume_liters"`
	Cost               *decimal.Decimal `json:"cost"`
	Currency           *string          `json:"currency"`
	ReceiptUrl         *string          `json:"receipt_url"`
	Notes              *string          `json:"notes"`
	LinkedGuestBooking *string          `json:"linked_guest_booking"`
	LinkedEvent        *string          `json:"linked_event"`
	DeliveryType       *DeliveryType    `json:"delivery_type"`
	BillingType        *BillingType     `json:"billing_type"`
	ApprovedBy         *int             `json:"approved_by"`
	Status             *DeliveryStatus  `json:"status"`
}

type EmergencyWaterDeliveryFilter struct {
	PropertyId   *int
	StartDate    *time.Time
	EndDate      *time.Time
	DeliveryType *DeliveryType
	BillingType  *BillingType
	Status       *DeliveryStatus
}

func (input *NewEmergencyWaterDelivery) validate(ctx context.Context, organizationId string) error {
	if strings.TrimSpace(input.SupplierName) == "" {
		return utils.NewInputError("supplier name is required")
	}
	if input.DeliveryDate.IsZero() {
		return utils.NewInputError("delivery date is required")
	}
	if input.VolumeLiters < 0 {
		return utils.NewInputError("volume cannot be negative")
	}
	if err := validateNonNegative(input.Cost); err != nil {
		return err
	}
	if input.DeliveryType != "" && !input.DeliveryType.IsValid() {
		return errInvalidDeliveryType
	}
	if input.BillingType != "" && !input.BillingType.IsValid() {
		return errInvalidBillingType
	}
	if err := validatePropertyRef(ctx, organizationId, input.PropertyId); err != nil {
		return err
	}
	return validateRef[User](ctx, organizationId, input.ProcessedBy, "user")
}

func ListEmergencyWaterDeliveries(ctx context.Context, organizationId string, filter EmergencyWaterDeliveryFilter) ([]*EmergencyWaterDeliveryWithProperty, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = emergencyWaterDeliveriesTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalGte(t, "delivery_date", filter.StartDate),
		utils.OptionalLte(t, "delivery_date", filter.EndDate),
		utils.OptionalEq(t, "delivery_type", filter.DeliveryType),
		utils.OptionalEq(t, "billing_type", filter.BillingType),
		utils.OptionalEq(t, "status", filter.Status),
	)
	return listWithProperty[EmergencyWaterDeliveryWithProperty](ctx, &EmergencyWaterDelivery{}, t, preds,
		utils.OrderDesc(t, "delivery_date"), utils.OrderDesc(t, "id"))
}

func GetEmergencyWaterDelivery(ctx context.Context, organizationId string, id int) (*EmergencyWaterDeliveryWithProperty, error) {
	return getWithProperty[EmergencyWaterDeliveryWithProperty](ctx, &EmergencyWaterDelivery{}, emergencyWaterDeliveriesTable, organizationId, id)
}

func CreateEmergencyWaterDelivery(ctx context.Context, organizationId string, input *NewEmergencyWaterDelivery) (*EmergencyWaterDelivery, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, organizationId); err != nil {
		return nil, err
	}
	processedBy := input.ProcessedBy
	if processedBy == nil {
		processedBy = utils.GetActorIdFromContext(ctx)
	}
	delivery := EmergencyWaterDelivery{
		OrganizationId:     organizationId,
		PropertyId:         input.PropertyId,
		SupplierName:       strings.TrimSpace(input.SupplierName),
		DeliveryDate:       dateOnly(input.DeliveryDate),
		VolumeLiters:       input.VolumeLiters,
		Cost:               input.Cost,
		CostPerLiter:       utils.UnitCostInt(input.Cost, input.VolumeLiters),
		Currency:           utils.DereferencePtr(utils.NilIfEmpty(input.Currency), "THB"),
		ReceiptUrl:         input.ReceiptUrl,
		Notes:              input.Notes,
		LinkedGuestBooking: input.LinkedGuestBooking,
		LinkedEvent:        input.LinkedEvent,
		DeliveryType:       utils.DereferencePtr(utils.NilIfEmpty(input.DeliveryType), DeliveryTypeUnexpected),
		BillingType:        utils.DereferencePtr(utils.NilIfEmpty(input.BillingType), BillingTypeOwnerBillable),
		ProcessedBy:        processedBy,
		Status:             DeliveryStatusPending,
	}
	return createScoped(ctx, &delivery)
}

// UpdateEmergencyWaterDelivery recomputes cost_per_liter whenever cost or volume
// changes, taking the stored value for whichever input was not supplied.
func UpdateEmergencyWaterDelivery(ctx context.Context, organizationId string, id int, input *EmergencyWaterDeliveryUpdate) (*EmergencyWaterDelivery, error) {
	existing, err := utils.FetchModel[EmergencyWaterDelivery](ctx, organizationId, id)
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
	if input.SupplierName != nil {
		if strings.TrimSpace(*input.SupplierName) == "" {
			return nil, utils.NewInputError("supplier name is required")
		}
		updates["supplier_name"] = strings.TrimSpace(*input.SupplierName)
	}
	if input.DeliveryDate != nil {
		updates["delivery_date"] = dateOnly(*input.DeliveryDate)
	}
	if input.Currency != nil {
		updates["currency"] = *input.Currency
	}
	if input.ReceiptUrl != nil {
		updates["receipt_url"] = *input.ReceiptUrl
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.LinkedGuestBooking != nil {
		updates["linked_guest_booking"] = *input.LinkedGuestBooking
	}
	if input.LinkedEvent != nil {
		updates["linked_event"] = *input.LinkedEvent
	}
	if input.DeliveryType != nil {
		if !input.DeliveryType.IsValid() {
			return nil, errInvalidDeliveryType
		}
		updates["delivery_type"] = *input.DeliveryType
	}
	if input.BillingType != nil {
		if !input.BillingType.IsValid() {
			return nil, errInvalidBillingType
		}
		updates["billing_type"] = *input.BillingType
	}
	if input.ApprovedBy != nil {
		if err := validateRef[User](ctx, organizationId, input.ApprovedBy, "user"); err != nil {
			return nil, err
		}
		updates["approved_by"] = *input.ApprovedBy
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, errInvalidStatus
		}
		updates["status"] = *input.Status
	}

	if input.Cost != nil || input.VolumeLiters != nil {
		cost := utils.DereferencePtr(input.Cost, existing.Cost)
		volume := utils.DereferencePtr(input.VolumeLiters, existing.VolumeLiters)
		if volume < 0 {
			return nil, utils.NewInputError("volume cannot be negative")
		}
		if err := validateNonNegative(cost); err != nil {
			return nil, err
		}
		updates["cost"] = cost
		updates["volume_liters"] = volume
		updates["cost_per_liter"] = utils.UnitCostInt(cost, volume)
	}

	guard := utils.NotEqualOrNull(emergencyWaterDeliveriesTable, "status", DeliveryStatusCompleted)
	if _, err := utils.TransitionScoped[EmergencyWaterDelivery](ctx, organizationId, id, updates, guard); err != nil {
		return nil, err
	}
	return utils.FetchModel[EmergencyWaterDelivery](ctx, organizationId, id)
}

// CompleteEmergencyWaterDelivery moves a pending delivery to completed.
// Completing an already completed delivery returns it unchanged.
func CompleteEmergencyWaterDelivery(ctx context.Context, organizationId string, id int) (*EmergencyWaterDelivery, error) {
	existing, err := utils.FetchModel[EmergencyWaterDelivery](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == DeliveryStatusCompleted {
		return existing, nil
	}
	updates := map[string]interface{}{
		"status":     DeliveryStatusCompleted,
		"updated_at": now(),
	}
	if existing.ApprovedBy == nil {
		if actor := utils.GetActorIdFromContext(ctx); actor != nil {
			updates["approved_by"] = *actor
		}
	}
	guard := utils.NotEqualOrNull(emergencyWaterDeliveriesTable, "status", DeliveryStatusCompleted)
	if _, err := utils.TransitionScoped[EmergencyWaterDelivery](ctx, organizationId, id, updates, guard); err != nil {
		return nil, err
	}
	return utils.FetchModel[EmergencyWaterDelivery](ctx, organizationId, id)
}

func DeleteEmergencyWaterDelivery(ctx context.Context, organizationId string, id int) (*EmergencyWaterDelivery, error) {
	existing, err := utils.FetchModel[EmergencyWaterDelivery](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if err := utils.DeleteScoped[EmergencyWaterDelivery](ctx, organizationId, id); err != nil {
		return nil, err
	}
	return existing, nil
}
