package models

import (
	"context"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

const waterConsumptionEntriesTable = "water_consumption_entries"

// WaterConsumptionEntry is one logged water cost for a property: a utility bill,
// a truck delivery or a refill, optionally tied to one of its water sources.
type WaterConsumptionEntry struct {
	ID              int                  `gorm:"primary_key" json:"id"`
	OrganizationId  string               `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId      int                  `gorm:"index;not null" json:"property_id"`
	SourceId        *int                 `gorm:"index" json:"source_id"`
	EntryType       ConsumptionEntryType `gorm:"size:30;not null" json:"entry_type"`
	EntryDate       time.Time            `gorm:"type:date;not null" json:"entry_date"`
	VolumeLiters    *int                 `json:"volume_liters"`
	TotalCost       decimal.Decimal      `gorm:"type:decimal(12,2);not null;default:0" json:"total_cost"`
	CostPerLiter    *decimal.Decimal     `gorm:"type:decimal(12,6)" json:"cost_per_liter"`
	Currency        string               `gorm:"size:3;not null;default:THB" json:"currency"`
	BillNumber      *string              `gorm:"size:100" json:"bill_number"`
	DueDate         *time.Time           `gorm:"type:date" json:"due_date"`
	SupplierName    *string              `gorm:"size:200" json:"supplier_name"`
	PaidBy          PaidBy               `gorm:"size:20;not null;default:management" json:"paid_by"`
	PaidByCustom    *string              `gorm:"size:200" json:"paid_by_custom"`
	PaymentStatus   PaymentStatus        `gorm:"size:20;not null;default:pending" json:"payment_status"`
	PaidAt          *time.Time           `json:"paid_at"`
	IsEmergency     *bool                `gorm:"not null;default:false" json:"is_emergency"`
	EmergencyReason *string              `gorm:"type:text" json:"emergency_reason"`
	ReceiptUrl      *string              `gorm:"size:500" json:"receipt_url"`
	Notes           *string              `gorm:"type:text" json:"notes"`
	CreatedBy       *int                 `json:"created_by"`
	CreatedAt       time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WaterConsumptionEntry) TableName() string { return waterConsumptionEntriesTable }

type WaterConsumptionEntryWithNames struct {
	WaterConsumptionEntry
	PropertyName *string `json:"property_name"`
	SourceName   *string `json:"source_name"`
}

type NewWaterConsumptionEntry struct {
	PropertyId      int                  `json:"property_id" binding:"required"`
	SourceId        *int                 `json:"source_id"`
	EntryType       ConsumptionEntryType `json:"entry_type" binding:"required"`
	EntryDate       time.Time            `json:"entry_date" binding:"required"`
	VolumeLiters    *int                 `json:"volume_liters"`
	TotalCost       decimal.Decimal      `json:"total_cost"`
	Currency        string               `json:"currency"`
	BillNumber      *string              `json:"bill_number"`
	DueDate         *time.Time           `json:"due_date"`
	SupplierName    *string              `json:"supplier_name"`
	PaidBy          PaidBy               `json:"paid_by"`
	PaidByCustom    *string              `json:"paid_by_custom"`
	PaymentStatus   PaymentStatus        `json:"payment_status"`
	IsEmergency     *bool                `json:"is_emergency"`
	EmergencyReason *string              `json:"emergency_reason"`
	ReceiptUrl      *string              `json:"receipt_url"`
	Notes           *string              `json:"notes"`
}

type WaterConsumptionEntryUpdate struct {
	SourceId        *int             `json:"source_id"`
	EntryDate       *time.Time       `json:"entry_date"`
	VolumeLiters    *int             `json:"volume_liters"`
	TotalCost       *decimal.Decimal `json:"total_cost"`
	BillNumber      *string          `json:"bill_number"`
	DueDate         *time.Time       `json:"due_date"`
	SupplierName    *string          `json:"supplier_name"`
	PaidBy          *PaidBy          `json:"paid_by"`
	PaidByCustom    *string          `json:"paid_by_custom"`
	PaymentStatus   *PaymentStatus   `json:"payment_status"`
	IsEmergency     *bool            `json:"is_emergency"`
	EmergencyReason *string          `json:"emergency_reason"`
	ReceiptUrl      *string          `json:"receipt_url"`
	Notes           *string          `json:"notes"`
}

type WaterConsumptionEntryFilter struct {
	PropertyId  *int
	SourceId    *int
	EntryType   *ConsumptionEntryType
	IsEmergency *bool
	StartDate   *time.Time
	EndDate     *time.Time
	PaidBy      *PaidBy
}

// consumptionCostPerLiter is nil when no volume was recorded, as for most bills.
func consumptionCostPerLiter(cost decimal.Decimal, liters *int) *decimal.Decimal {
	if liters == nil || *liters <= 0 {
		return nil
	}
	v := utils.UnitCostInt(cost, *liters)
	return &v
}

func validatePaidBy(paidBy PaidBy, custom *string) error {
	if !paidBy.IsValid() {
		return errInvalidPaidBy
	}
	if paidBy == PaidByCustom && strings.TrimSpace(utils.DereferencePtr(custom)) == "" {
		return utils.NewInputError("paid_by_custom is required for custom payers")
	}
	return nil
}

func ListWaterConsumptionEntries(ctx context.Context, organizationId string, filter WaterConsumptionEntryFilter) ([]*WaterConsumptionEntryWithNames, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = waterConsumptionEntriesTable
	const s = waterUtilitySourcesTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "source_id", filter.SourceId),
		utils.OptionalEq(t, "entry_type", filter.EntryType),
		utils.OptionalEq(t, "is_emergency", filter.IsEmergency),
		utils.OptionalGte(t, "entry_date", filter.StartDate),
		utils.OptionalLte(t, "entry_date", filter.EndDate),
		utils.OptionalEq(t, "paid_by", filter.PaidBy),
	)
	db := config.GetDB()
	results := make([]*WaterConsumptionEntryWithNames, 0)
	err := db.WithContext(ctx).Model(&WaterConsumptionEntry{}).
		Select(t+".*, "+propertiesTable+".name AS property_name, "+s+".provider_name AS source_name").
		Joins(propertyJoin(t)).
		Joins("LEFT JOIN "+s+" ON "+s+".id = "+t+".source_id AND "+s+".organization_id = "+t+".organization_id").
		Clauses(preds.Where(), clause.OrderBy{Columns: []clause.OrderByColumn{
			utils.OrderDesc(t, "entry_date"), utils.OrderDesc(t, "id"),
		}}).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetWaterConsumptionEntry(ctx context.Context, organizationId string, id int) (*WaterConsumptionEntry, error) {
	return utils.FetchModel[WaterConsumptionEntry](ctx, organizationId, id)
}

// CreateWaterConsumptionEntry logs an entry and, unless switched off, runs the
// consumption alert checks for its property. A failed check is logged only.
func CreateWaterConsumptionEntry(ctx context.Context, organizationId string, input *NewWaterConsumptionEntry) (*WaterConsumptionEntry, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if !input.EntryType.IsValid() {
		return nil, errInvalidEntryType
	}
	paidBy := utils.DereferencePtr(utils.NilIfEmpty(input.PaidBy), PaidByManagement)
	if err := validatePaidBy(paidBy, input.PaidByCustom); err != nil {
		return nil, err
	}
	paymentStatus := utils.DereferencePtr(utils.NilIfEmpty(input.PaymentStatus), PaymentStatusPending)
	if !paymentStatus.IsValid() {
		return nil, errInvalidPaymentStatus
	}
	if err := validateNonNegative(input.TotalCost); err != nil {
		return nil, err
	}
	if input.VolumeLiters != nil && *input.VolumeLiters < 0 {
		return nil, utils.NewInputError("volume cannot be negative")
	}
	if err := validatePropertyRef(ctx, organizationId, &input.PropertyId); err != nil {
		return nil, err
	}
	if err := validateRef[WaterUtilitySource](ctx, organizationId, input.SourceId, "water source"); err != nil {
		return nil, err
	}

	isEmergency := input.IsEmergency
	if isEmergency == nil {
		isEmergency = utils.Ptr(input.EntryType == ConsumptionEntryEmergencyDelivery)
	}
	entry := WaterConsumptionEntry{
		OrganizationId:  organizationId,
		PropertyId:      input.PropertyId,
		SourceId:        input.SourceId,
		EntryType:       input.EntryType,
		EntryDate:       dateOnly(input.EntryDate),
		VolumeLiters:    input.VolumeLiters,
		TotalCost:       input.TotalCost,
		CostPerLiter:    consumptionCostPerLiter(input.TotalCost, input.VolumeLiters),
		Currency:        utils.DereferencePtr(utils.NilIfEmpty(strings.ToUpper(strings.TrimSpace(input.Currency))), "THB"),
		BillNumber:      input.BillNumber,
		DueDate:         input.DueDate,
		SupplierName:    input.SupplierName,
		PaidBy:          paidBy,
		PaidByCustom:    input.PaidByCustom,
		PaymentStatus:   paymentStatus,
		IsEmergency:     isEmergency,
		EmergencyReason: input.EmergencyReason,
		ReceiptUrl:      input.ReceiptUrl,
		Notes:           input.Notes,
		CreatedBy:       utils.GetActorIdFromContext(ctx),
	}
	if paymentStatus == PaymentStatusPaid {
		paidAt := now()
		entry.PaidAt = &paidAt
	}
	if _, err := createScoped(ctx, &entry); err != nil {
		return nil, err
	}

	if config.AutoWaterConsumptionAlerts() {
		if _, err := CheckWaterConsumptionAlerts(ctx, organizationId, entry.PropertyId, now()); err != nil {
			config.LogError(config.GetLogger(), "waterConsumption.go", "CreateWaterConsumptionEntry", "CheckWaterConsumptionAlerts", entry.ID, err)
		}
	}
	return &entry, nil
}

func UpdateWaterConsumptionEntry(ctx context.Context, organizationId string, id int, input *WaterConsumptionEntryUpdate) (*WaterConsumptionEntry, error) {
	existing, err := utils.FetchModel[WaterConsumptionEntry](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.SourceId != nil {
		if err := validateRef[WaterUtilitySource](ctx, organizationId, input.SourceId, "water source"); err != nil {
			return nil, err
		}
		updates["source_id"] = *input.SourceId
	}
	if input.EntryDate != nil {
		updates["entry_date"] = dateOnly(*input.EntryDate)
	}
	if input.BillNumber != nil {
		updates["bill_number"] = *input.BillNumber
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}
	if input.SupplierName != nil {
		updates["supplier_name"] = *input.SupplierName
	}
	if input.PaidBy != nil || input.PaidByCustom != nil {
		paidBy := utils.DereferencePtr(input.PaidBy, existing.PaidBy)
		custom := input.PaidByCustom
		if custom == nil {
			custom = existing.PaidByCustom
		}
		if err := validatePaidBy(paidBy, custom); err != nil {
			return nil, err
		}
		updates["paid_by"] = paidBy
		if input.PaidByCustom != nil {
			updates["paid_by_custom"] = *input.PaidByCustom
		}
	}
	if input.PaymentStatus != nil {
		if !input.PaymentStatus.IsValid() {
			return nil, errInvalidPaymentStatus
		}
		updates["payment_status"] = *input.PaymentStatus
		if *input.PaymentStatus == PaymentStatusPaid && existing.PaidAt == nil {
			updates["paid_at"] = now()
		}
	}
	if input.IsEmergency != nil {
		updates["is_emergency"] = *input.IsEmergency
	}
	if input.EmergencyReason != nil {
		updates["emergency_reason"] = *input.EmergencyReason
	}
	if input.ReceiptUrl != nil {
		updates["receipt_url"] = *input.ReceiptUrl
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.TotalCost != nil || input.VolumeLiters != nil {
		cost := utils.DereferencePtr(input.TotalCost, existing.TotalCost)
		liters := input.VolumeLiters
		if liters == nil {
			liters = existing.VolumeLiters
		}
		if err := validateNonNegative(cost); err != nil {
			return nil, err
		}
		if liters != nil && *liters < 0 {
			return nil, utils.NewInputError("volume cannot be negative")
		}
		updates["total_cost"] = cost
		if liters != nil {
			updates["volume_liters"] = *liters
		}
		updates["cost_per_liter"] = consumptionCostPerLiter(cost, liters)
	}
	if err := utils.UpdateScoped[WaterConsumptionEntry](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	return utils.FetchModel[WaterConsumptionEntry](ctx, organizationId, id)
}

func DeleteWaterConsumptionEntry(ctx context.Context, organizationId string, id int) (*WaterConsumptionEntry, error) {
	existing, err := utils.FetchModel[WaterConsumptionEntry](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if err := utils.DeleteScoped[WaterConsumptionEntry](ctx, organizationId, id); err != nil {
		return nil, err
	}
	return existing, nil
}
