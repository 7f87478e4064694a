package models

import (
	"context"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
)

const propertyUtilitiesTable = "property_utilities"

// PropertyUtility is a utility account attached to a property. Deleting one only
// deactivates it so its bill history survives.
type PropertyUtility struct {
	ID              int         `gorm:"primary_key" json:"id"`
	OrganizationId  string      `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId      int         `gorm:"index;not null" json:"property_id"`
	UtilityType     UtilityType `gorm:"size:30;not null" json:"utility_type"`
	ProviderName    string      `gorm:"size:200;not null" json:"provider_name"`
	AccountNumber   *string     `gorm:"size:100" json:"account_number"`
	MeterNumber     *string     `gorm:"size:100" json:"meter_number"`
	ExpectedBillDay *int        `json:"expected_bill_day"`
	AutoPayEnabled  *bool       `gorm:"not null;default:false" json:"auto_pay_enabled"`
	IsActive        *bool       `gorm:"not null;default:true" json:"is_active"`
	Notes           *string     `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PropertyUtility) TableName() string { return propertyUtilitiesTable }

type NewPropertyUtility struct {
	PropertyId      int         `json:"property_id" binding:"required"`
	UtilityType     UtilityType `json:"utility_type" binding:"required"`
	ProviderName    string      `json:"provider_name" binding:"required"`
	AccountNumber   *string     `json:"account_number"`
	MeterNumber     *string     `json:"meter_number"`
	ExpectedBillDay *int        `json:"expected_bill_day"`
	AutoPayEnabled  *bool       `json:"auto_pay_enabled"`
	Notes           *string     `json:"notes"`
}

type PropertyUtilityUpdate struct {
	UtilityType     *UtilityType `json:"utility_type"`
	ProviderName    *string      `json:"provider_name"`
	AccountNumber   *string      `json:"account_number"`
	MeterNumber     *string      `json:"meter_number"`
	ExpectedBillDay *int         `json:"expected_bill_day"`
	AutoPayEnabled  *bool        `json:"auto_pay_enabled"`
	Notes           *string      `json:"notes"`
}

func validateBillDay(day *int) error {
	if day != nil && (*day < 1 || *day > 31) {
		return utils.NewInputError("expected bill day must be between 1 and 31")
	}
	return nil
}

// ListPropertyUtilities returns active utilities ordered by type.
func ListPropertyUtilities(ctx context.Context, organizationId string, propertyId *int) ([]*PropertyUtility, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = propertyUtilitiesTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", propertyId),
		utils.OptionalEq(t, "is_active", utils.NewTrue()),
	)
	return listScoped[PropertyUtility](ctx, preds, utils.OrderAsc(t, "utility_type"), utils.OrderAsc(t, "id"))
}

func GetPropertyUtility(ctx context.Context, organizationId string, id int) (*PropertyUtility, error) {
	return utils.FetchModel[PropertyUtility](ctx, organizationId, id)
}

func CreatePropertyUtility(ctx context.Context, organizationId string, input *NewPropertyUtility) (*PropertyUtility, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if !input.UtilityType.IsValid() {
		return nil, errInvalidUtilityType
	}
	if err := validateBillDay(input.ExpectedBillDay); err != nil {
		return nil, err
	}
	if err := validatePropertyRef(ctx, organizationId, &input.PropertyId); err != nil {
		return nil, err
	}
	utility := PropertyUtility{
		OrganizationId:  organizationId,
		PropertyId:      input.PropertyId,
		UtilityType:     input.UtilityType,
		ProviderName:    input.ProviderName,
		AccountNumber:   input.AccountNumber,
		MeterNumber:     input.MeterNumber,
		ExpectedBillDay: input.ExpectedBillDay,
		AutoPayEnabled:  utils.Ptr(utils.DereferencePtr(input.AutoPayEnabled)),
		IsActive:        utils.NewTrue(),
		Notes:           input.Notes,
	}
	return createScoped(ctx, &utility)
}

func UpdatePropertyUtility(ctx context.Context, organizationId string, id int, input *PropertyUtilityUpdate) (*PropertyUtility, error) {
	if _, err := utils.FetchModel[PropertyUtility](ctx, organizationId, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.UtilityType != nil {
		if !input.UtilityType.IsValid() {
			return nil, errInvalidUtilityType
		}
		updates["utility_type"] = *input.UtilityType
	}
	if input.ProviderName != nil {
		updates["provider_name"] = *input.ProviderName
	}
	if input.AccountNumber != nil {
		updates["account_number"] = *input.AccountNumber
	}
	if input.MeterNumber != nil {
		updates["meter_number"] = *input.MeterNumber
	}
	if input.ExpectedBillDay != nil {
		if err := validateBillDay(input.ExpectedBillDay); err != nil {
			return nil, err
		}
		updates["expected_bill_day"] = *input.ExpectedBillDay
	}
	if input.AutoPayEnabled != nil {
		updates["auto_pay_enabled"] = *input.AutoPayEnabled
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if err := utils.UpdateScoped[PropertyUtility](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	return utils.FetchModel[PropertyUtility](ctx, organizationId, id)
}

// DeactivatePropertyUtility hides the utility from lists and the dashboard.
func DeactivatePropertyUtility(ctx context.Context, organizationId string, id int) (*PropertyUtility, error) {
	if _, err := utils.FetchModel[PropertyUtility](ctx, organizationId, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"is_active": false, "updated_at": now()}
	if err := utils.UpdateScoped[PropertyUtility](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	return utils.FetchModel[PropertyUtility](ctx, organizationId, id)
}
