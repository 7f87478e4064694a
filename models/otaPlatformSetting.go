package models

import (
	"context"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const otaPlatformSettingsTable = "ota_platform_settings"

type OtaPlatformSetting struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OrganizationId string          `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId     *int            `gorm:"index" json:"property_id"`
	OtaName        string          `gorm:"size:100;not null" json:"ota_name"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"commission_rate"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	PayoutSchedule *string         `gorm:"size:50" json:"payout_schedule"`
	Notes          *string         `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OtaPlatformSetting) TableName() string { return otaPlatformSettingsTable }

type NewOtaPlatformSetting struct {
	PropertyId     *int            `json:"property_id"`
	OtaName        string          `json:"ota_name" binding:"required"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	PayoutSchedule *string         `json:"payout_schedule"`
	Notes          *string         `json:"notes"`
}

type OtaPlatformSettingUpdate struct {
	OtaName        *string          `json:"ota_name"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
	IsActive       *bool            `json:"is_active"`
	PayoutSchedule *string          `json:"payout_schedule"`
	Notes          *string          `json:"notes"`
}

func ListOtaPlatformSettings(ctx context.Context, organizationId string, propertyId *int) ([]*OtaPlatformSetting, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = otaPlatformSettingsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", propertyId),
	)
	return listScoped[OtaPlatformSetting](ctx, preds, utils.OrderAsc(t, "ota_name"), utils.OrderAsc(t, "id"))
}

// activeOtaPlatformSetting prefers a property-specific setting over an
// organization-wide one (property_id NULL).
func activeOtaPlatformSetting(ctx context.Context, organizationId string, propertyId int, otaName string) (*OtaPlatformSetting, error) {
	const t = otaPlatformSettingsTable
	settings, err := listScoped[OtaPlatformSetting](ctx, utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "ota_name", &otaName),
		utils.OptionalEq(t, "is_active", utils.NewTrue()),
	))
	if err != nil {
		return nil, err
	}
	var fallback *OtaPlatformSetting
	for _, s := range settings {
		if s.PropertyId != nil && *s.PropertyId == propertyId {
			return s, nil
		}
		if s.PropertyId == nil && fallback == nil {
			fallback = s
		}
	}
	return fallback, nil
}

func CreateOtaPlatformSetting(ctx context.Context, organizationId string, input *NewOtaPlatformSetting) (*OtaPlatformSetting, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.OtaName) == "" {
		return nil, utils.NewInputError("ota name is required")
	}
	if err := validateRate(input.CommissionRate); err != nil {
		return nil, err
	}
	if err := validatePropertyRef(ctx, organizationId, input.PropertyId); err != nil {
		return nil, err
	}
	setting := OtaPlatformSetting{
		OrganizationId: organizationId,
		PropertyId:     input.PropertyId,
		OtaName:        strings.TrimSpace(input.OtaName),
		CommissionRate: input.CommissionRate,
		IsActive:       utils.NewTrue(),
		PayoutSchedule: input.PayoutSchedule,
		Notes:          input.Notes,
	}
	return createScoped(ctx, &setting)
}

func UpdateOtaPlatformSetting(ctx context.Context, organizationId string, id int, input *OtaPlatformSettingUpdate) (*OtaPlatformSetting, error) {
	if _, err := utils.FetchModel[OtaPlatformSetting](ctx, organizationId, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.OtaName != nil {
		if strings.TrimSpace(*input.OtaName) == "" {
			return nil, utils.NewInputError("ota name is required")
		}
		updates["ota_name"] = strings.TrimSpace(*input.OtaName)
	}
	if input.CommissionRate != nil {
		if err := validateRate(*input.CommissionRate); err != nil {
			return nil, err
		}
		updates["commission_rate"] = *input.CommissionRate
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.PayoutSchedule != nil {
		updates["payout_schedule"] = *input.PayoutSchedule
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if err := utils.UpdateScoped[OtaPlatformSetting](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	return utils.FetchModel[OtaPlatformSetting](ctx, organizationId, id)
}
