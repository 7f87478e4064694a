package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const waterRefillsTable = "water_utility_refills"

const (
	frequencyWindowDays    = 30
	frequencyAlertMinimum  = 2
	frequencyAlertSeverity = 4
	frequencyLockTTL       = 10 * time.Second
)

type WaterRefill struct {
	ID              int             `gorm:"primary_key" json:"id"`
	OrganizationId  string          `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId      int             `gorm:"index;not null" json:"property_id"`
	DeliveryDate    time.Time       `gorm:"type:date;not null" json:"delivery_date"`
	LitersDelivered int             `gorm:"not null" json:"liters_delivered"`
	CostAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost_amount"`
	CostPerLiter    decimal.Decimal `gorm:"type:decimal(12,6);not null;default:0" json:"cost_per_liter"`
	SupplierId      *int            `gorm:"index" json:"supplier_id"`
	SupplierName    string          `gorm:"size:200;not null" json:"supplier_name"`
	SupplierContact *string         `gorm:"size:50" json:"supplier_contact"`
	WaterType       WaterSourceType `gorm:"size:30;not null;default:emergency_truck" json:"water_type"`
	BillingRoute    BillingType     `gorm:"size:20;not null;default:owner_billable" json:"billing_route"`
	Notes           *string         `gorm:"type:text" json:"notes"`
	Status          RefillStatus    `gorm:"size:20;not null;default:completed" json:"status"`
	CreatedBy       *int            `json:"created_by"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WaterRefill) TableName() string { return waterRefillsTable }

type WaterRefillWithProperty struct {
	WaterRefill
	PropertyName *string `json:"property_name"`
}

type NewWaterRefill struct {
	PropertyId      int             `json:"property_id" binding:"required"`
	DeliveryDate    time.Time       `json:"delivery_date" binding:"required"`
	LitersDelivered int             `json:"liters_delivered"`
	CostAmount      decimal.Decimal `json:"cost_amount"`
	SupplierId      *int            `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	SupplierContact *string         `json:"supplier_contact"`
	WaterType       WaterSourceType `json:"water_type"`
	BillingRoute    BillingType     `json:"billing_route"`
	Notes           *string         `json:"notes"`
	Status          RefillStatus    `json:"status"`
}

type WaterRefillUpdate struct {
	DeliveryDate    *time.Time       `json:"delivery_date"`
	LitersDelivered *int             `json:"liters_delivered"`
	CostAmount      *decimal.Decimal `json:"cost_amount"`
	SupplierName    *string          `json:"supplier_name"`
	SupplierContact *string          `json:"supplier_contact"`
	WaterType       *WaterSourceType `json:"water_type"`
	BillingRoute    *BillingType     `json:"billing_route"`
	Notes           *string          `json:"notes"`
	Status          *RefillStatus    `json:"status"`
}

type WaterRefillFilter struct {
	PropertyId   *int
	Status       *RefillStatus
	WaterType    *WaterSourceType
	BillingRoute *BillingType
	FromDate     *time.Time
	ToDate       *time.Time
}

func (input *NewWaterRefill) validate(ctx context.Context, organizationId string) error {
	if input.DeliveryDate.IsZero() {
		return utils.NewInputError("delivery date is required")
	}
	if input.LitersDelivered < 0 {
		return utils.NewInputError("liters delivered cannot be negative")
	}
	if err := validateNonNegative(input.CostAmount); err != nil {
		return err
	}
	if input.WaterType != "" && !input.WaterType.IsValid() {
		return errInvalidSourceType
	}
	if input.BillingRoute != "" && !input.BillingRoute.IsValid() {
		return errInvalidBillingType
	}
	if input.Status != "" && !input.Status.IsValid() {
		return errInvalidStatus
	}
	return validatePropertyRef(ctx, organizationId, &input.PropertyId)
}

func ListWaterRefills(ctx context.Context, organizationId string, filter WaterRefillFilter) ([]*WaterRefillWithProperty, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = waterRefillsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "status", filter.Status),
		utils.OptionalEq(t, "water_type", filter.WaterType),
		utils.OptionalEq(t, "billing_route", filter.BillingRoute),
		utils.OptionalGte(t, "delivery_date", filter.FromDate),
		utils.OptionalLte(t, "delivery_date", filter.ToDate),
	)
	return listWithProperty[WaterRefillWithProperty](ctx, &WaterRefill{}, t, preds,
		utils.OrderDesc(t, "delivery_date"), utils.OrderDesc(t, "id"))
}

func GetWaterRefill(ctx context.Context, organizationId string, id int) (*WaterRefillWithProperty, error) {
	return getWithProperty[WaterRefillWithProperty](ctx, &WaterRefill{}, waterRefillsTable, organizationId, id)
}

// CreateWaterRefill stores a refill and, when enabled, runs the frequency check
// for its property. A failed check is logged; the refill is still returned.
func CreateWaterRefill(ctx context.Context, organizationId string, input *NewWaterRefill) (*WaterRefill, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, organizationId); err != nil {
		return nil, err
	}
	supplierName := strings.TrimSpace(input.SupplierName)
	supplierContact := input.SupplierContact
	if input.SupplierId != nil {
		supplier, err := utils.FetchModel[WaterSupplier](ctx, organizationId, *input.SupplierId)
		if err != nil {
			return nil, utils.NewInputError("supplier not found")
		}
		if supplierName == "" {
			supplierName = supplier.Name
		}
		if supplierContact == nil {
			supplierContact = supplier.Phone
		}
	}
	if supplierName == "" {
		return nil, utils.NewInputError("supplier name is required")
	}

	refill := WaterRefill{
		OrganizationId:  organizationId,
		PropertyId:      input.PropertyId,
		DeliveryDate:    dateOnly(input.DeliveryDate),
		LitersDelivered: input.LitersDelivered,
		CostAmount:      input.CostAmount,
		CostPerLiter:    utils.UnitCostInt(input.CostAmount, input.LitersDelivered),
		SupplierId:      input.SupplierId,
		SupplierName:    supplierName,
		SupplierContact: supplierContact,
		WaterType:       utils.DereferencePtr(utils.NilIfEmpty(input.WaterType), WaterSourceEmergencyTruck),
		BillingRoute:    utils.DereferencePtr(utils.NilIfEmpty(input.BillingRoute), BillingTypeOwnerBillable),
		Notes:           input.Notes,
		Status:          utils.DereferencePtr(utils.NilIfEmpty(input.Status), RefillStatusCompleted),
		CreatedBy:       utils.GetActorIdFromContext(ctx),
	}
	if _, err := createScoped(ctx, &refill); err != nil {
		return nil, err
	}

	if config.AutoRefillFrequencyAlerts() {
		if _, err := CheckRefillFrequency(ctx, organizationId, refill.PropertyId, now()); err != nil {
			config.LogError(config.GetLogger(), "waterRefill.go", "CreateWaterRefill", "CheckRefillFrequency", refill.ID, err)
		}
	}
	return &refill, nil
}

func UpdateWaterRefill(ctx context.Context, organizationId string, id int, input *WaterRefillUpdate) (*WaterRefill, error) {
	existing, err := utils.FetchModel[WaterRefill](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.DeliveryDate != nil {
		updates["delivery_date"] = dateOnly(*input.DeliveryDate)
	}
	if input.SupplierName != nil {
		if strings.TrimSpace(*input.SupplierName) == "" {
			return nil, utils.NewInputError("supplier name is required")
		}
		updates["supplier_name"] = strings.TrimSpace(*input.SupplierName)
	}
	if input.SupplierContact != nil {
		updates["supplier_contact"] = *input.SupplierContact
	}
	if input.WaterType != nil {
		if !input.WaterType.IsValid() {
			return nil, errInvalidSourceType
		}
		updates["water_type"] = *input.WaterType
	}
	if input.BillingRoute != nil {
		if !input.BillingRoute.IsValid() {
			return nil, errInvalidBillingType
		}
		updates["billing_route"] = *input.BillingRoute
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, errInvalidStatus
		}
		updates["status"] = *input.Status
	}
	if input.CostAmount != nil || input.LitersDelivered != nil {
		cost := utils.DereferencePtr(input.CostAmount, existing.CostAmount)
		liters := utils.DereferencePtr(input.LitersDelivered, existing.LitersDelivered)
		if liters < 0 {
			return nil, utils.NewInputError("liters delivered cannot be negative")
		}
		if err := validateNonNegative(cost); err != nil {
			return nil, err
		}
		updates["cost_amount"] = cost
		updates["liters_delivered"] = liters
		updates["cost_per_liter"] = utils.UnitCostInt(cost, liters)
	}
	if err := utils.UpdateScoped[WaterRefill](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	return utils.FetchModel[WaterRefill](ctx, organizationId, id)
}

func DeleteWaterRefill(ctx context.Context, organizationId string, id int) (*WaterRefill, error) {
	existing, err := utils.FetchModel[WaterRefill](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if err := utils.DeleteScoped[WaterRefill](ctx, organizationId, id); err != nil {
		return nil, err
	}
	return existing, nil
}

func frequencyRecommendations(count int) (Severity, string) {
	if count >= frequencyAlertSeverity {
		return SeverityHigh, "URGENT: Consider immediate water system inspection and deepwell upgrade. Multiple emergency refills indicate serious water supply issues."
	}
	return SeverityMedium, "Recommend water system inspection to identify potential issues. Consider deepwell servicing or tank maintenance."
}

// CheckRefillFrequency raises a frequency_alert when a property had at least two
// refills in the last 30 days and has no unacknowledged frequency alert yet.
// Returns the new alert, or nil when none was raised.
func CheckRefillFrequency(ctx context.Context, organizationId string, propertyId int, at time.Time) (*WaterRefillAlert, error) {
	release := utils.OrganizationLock(ctx, organizationId, fmt.Sprintf("refill-frequency:%d", propertyId), frequencyLockTTL)
	defer release()

	since := dateOnly(at).AddDate(0, 0, -frequencyWindowDays)
	refills, err := ListWaterRefills(ctx, organizationId, WaterRefillFilter{PropertyId: &propertyId, FromDate: &since})
	if err != nil {
		return nil, err
	}
	count := len(refills)
	if count < frequencyAlertMinimum {
		return nil, nil
	}

	alertType := RefillAlertFrequency
	open, err := listScoped[WaterRefillAlert](ctx, utils.TenantScope(waterRefillAlertsTable, organizationId).With(
		utils.OptionalEq(waterRefillAlertsTable, "property_id", &propertyId),
		utils.OptionalEq(waterRefillAlertsTable, "alert_type", &alertType),
		utils.OptionalEq(waterRefillAlertsTable, "is_acknowledged", utils.NewFalse()),
	))
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		return nil, nil
	}

	severity, recommendations := frequencyRecommendations(count)
	return CreateWaterRefillAlert(ctx, organizationId, &NewWaterRefillAlert{
		PropertyId:        propertyId,
		AlertType:         RefillAlertFrequency,
		AlertMessage:      fmt.Sprintf("High frequency emergency water refills detected: %d refills in the last %d days", count, frequencyWindowDays),
		TriggerCount:      count,
		TriggerPeriodDays: frequencyWindowDays,
		Severity:          severity,
		Recommendations:   &recommendations,
	})
}
