package models

import (
	"context"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const propertyWaterSettingsTable = "property_water_settings"

const (
	defaultExpectedBillCycle  = 30
	defaultAlertThresholdDays = 7
)

type PropertyWaterSetting struct {
	ID                       int              `gorm:"primary_key" json:"id"`
	OrganizationId           string           `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId               int              `gorm:"index;not null" json:"property_id"`
	PrimarySource            WaterSourceType  `gorm:"size:30;not null;default:government_water" json:"primary_source"`
	ExpectedBillCycle        int              `gorm:"not null;default:30" json:"expected_bill_cycle"`
	AutoAlertEnabled         *bool            `gorm:"not null;default:true" json:"auto_alert_enabled"`
	AlertThresholdDays       int              `gorm:"not null;default:7" json:"alert_threshold_days"`
	EmergencySupplierContact *string          `gorm:"size:50" json:"emergency_supplier_contact"`
	AverageMonthlyUsage      *decimal.Decimal `gorm:"type:decimal(12,2)" json:"average_monthly_usage"`
	UsageUnit                string           `gorm:"size:20;not null;default:liters" json:"usage_unit"`
	Notes                    *string          `gorm:"type:text" json:"notes"`
	CreatedAt                time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PropertyWaterSetting) TableName() string { return propertyWaterSettingsTable }

type NewPropertyWaterSetting struct {
	PropertyId               int              `json:"property_id" binding:"required"`
	PrimarySource            WaterSourceType  `json:"primary_source"`
	ExpectedBillCycle        int              `json:"expected_bill_cycle"`
	AutoAlertEnabled         *bool            `json:"auto_alert_enabled"`
	AlertThresholdDays       int              `json:"alert_threshold_days"`
	EmergencySupplierContact *string          `json:"emergency_supplier_contact"`
	AverageMonthlyUsage      *decimal.Decimal `json:"average_monthly_usage"`
	UsageUnit                string           `json:"usage_unit"`
	Notes                    *string          `json:"notes"`
}

type PropertyWaterSettingUpdate struct {
	PrimarySource            *WaterSourceType `json:"primary_source"`
	ExpectedBillCycle        *int             `json:"expected_bill_cycle"`
	AutoAlertEnabled         *bool            `json:"auto_alert_enabled"`
	AlertThresholdDays       *int             `json:"alert_threshold_days"`
	EmergencySupplierContact *string          `json:"emergency_supplier_contact"`
	AverageMonthlyUsage      *decimal.Decimal `json:"average_monthly_usage"`
	UsageUnit                *string          `json:"usage_unit"`
	Notes                    *string          `json:"notes"`
}

// normalizeContact formats an emergency supplier phone number to E.164
// using the organization's country.
func normalizeContact(ctx context.Context, organizationId string, contact *string) (*string, error) {
	if contact == nil || *contact == "" {
		return contact, nil
	}
	formatted, err := utils.FormatPhoneNumber(*contact, organizationCountryCode(ctx, organizationId))
	if err != nil {
		return nil, utils.NewInputError("invalid emergency supplier contact")
	}
	return &formatted, nil
}

func ListPropertyWaterSettings(ctx context.Context, organizationId string, propertyId *int) ([]*PropertyWaterSetting, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = propertyWaterSettingsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", propertyId),
	)
	return listScoped[PropertyWaterSetting](ctx, preds, utils.OrderDesc(t, "created_at"), utils.OrderDesc(t, "id"))
}

func CreatePropertyWaterSetting(ctx context.Context, organizationId string, input *NewPropertyWaterSetting) (*PropertyWaterSetting, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if err := validatePropertyRef(ctx, organizationId, &input.PropertyId); err != nil {
		return nil, err
	}
	if input.PrimarySource != "" && !input.PrimarySource.IsValid() {
		return nil, errInvalidSourceType
	}
	if input.ExpectedBillCycle < 0 || input.AlertThresholdDays < 0 {
		return nil, utils.NewInputError("bill cycle and threshold cannot be negative")
	}
	contact, err := normalizeContact(ctx, organizationId, input.EmergencySupplierContact)
	if err != nil {
		return nil, err
	}
	autoAlert := input.AutoAlertEnabled
	if autoAlert == nil {
		autoAlert = utils.NewTrue()
	}
	setting := PropertyWaterSetting{
		OrganizationId:           organizationId,
		PropertyId:               input.PropertyId,
		PrimarySource:            utils.DereferencePtr(utils.NilIfEmpty(input.PrimarySource), WaterSourceGovernment),
		ExpectedBillCycle:        utils.DereferencePtr(utils.NilIfEmpty(input.ExpectedBillCycle), defaultExpectedBillCycle),
		AutoAlertEnabled:         autoAlert,
		AlertThresholdDays:       utils.DereferencePtr(utils.NilIfEmpty(input.AlertThresholdDays), defaultAlertThresholdDays),
		EmergencySupplierContact: contact,
		AverageMonthlyUsage:      input.AverageMonthlyUsage,
		UsageUnit:                utils.DereferencePtr(utils.NilIfEmpty(input.UsageUnit), "liters"),
		Notes:                    input.Notes,
	}
	return createScoped(ctx, &setting)
}

func UpdatePropertyWaterSetting(ctx context.Context, organizationId string, id int, input *PropertyWaterSettingUpdate) (*PropertyWaterSetting, error) {
	if _, err := utils.FetchModel[PropertyWaterSetting](ctx, organizationId, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.PrimarySource != nil {
		if !input.PrimarySource.IsValid() {
			return nil, errInvalidSourceType
		}
		updates["primary_source"] = *input.PrimarySource
	}
	if input.ExpectedBillCycle != nil {
		if *input.ExpectedBillCycle <= 0 {
			return nil, utils.NewInputError("bill cycle must be positive")
		}
		updates["expected_bill_cycle"] = *input.ExpectedBillCycle
	}
	if input.AutoAlertEnabled != nil {
		updates["auto_alert_enabled"] = *input.AutoAlertEnabled
	}
	if input.AlertThresholdDays != nil {
		if *input.AlertThresholdDays < 0 {
			return nil, utils.NewInputError("threshold cannot be negative")
		}
		updates["alert_threshold_days"] = *input.AlertThresholdDays
	}
	if input.EmergencySupplierContact != nil {
		contact, err := normalizeContact(ctx, organizationId, input.EmergencySupplierContact)
		if err != nil {
			return nil, err
		}
		updates["emergency_supplier_contact"] = *contact
	}
	if input.AverageMonthlyUsage != nil {
		updates["average_monthly_usage"] = *input.AverageMonthlyUsage
	}
	if input.UsageUnit != nil {
		updates["usage_unit"] = *input.UsageUnit
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if err := utils.UpdateScoped[PropertyWaterSetting](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	return utils.FetchModel[PropertyWaterSetting](ctx, organizationId, id)
}
