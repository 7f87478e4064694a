package models

import (
	"context"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
)

const waterUtilitySourcesTable = "water_utility_sources"

type WaterUtilitySource struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OrganizationId string          `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId     *int            `gorm:"index" json:"property_id"`
	SourceType     WaterSourceType `gorm:"size:30;not null" json:"source_type"`
	ProviderName   *string         `gorm:"size:200" json:"provider_name"`
	AccountNumber  *string         `gorm:"size:100" json:"account_number"`
	MeterNumber    *string         `gorm:"size:100" json:"meter_number"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	Notes          *string         `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WaterUtilitySource) TableName() string { return waterUtilitySourcesTable }

type NewWaterUtilitySource struct {
	PropertyId    *int            `json:"property_id"`
	SourceType    WaterSourceType `json:"source_type" binding:"required"`
	ProviderName  *string         `json:"provider_name"`
	AccountNumber *string         `json:"account_number"`
	MeterNumber   *string         `json:"meter_number"`
	Notes         *string         `json:"notes"`
}

type WaterUtilitySourceUpdate struct {
	PropertyId    *int             `json:"property_id"`
	SourceType    *WaterSourceType `json:"source_type"`
	ProviderName  *string          `json:"provider_name"`
	AccountNumber *string          `json:"account_number"`
	MeterNumber   *string          `json:"meter_number"`
	IsActive      *bool            `json:"is_active"`
	Notes         *string          `json:"notes"`
}

func ListWaterUtilitySources(ctx context.Context, organizationId string, propertyId *int) ([]*WaterUtilitySource, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = waterUtilitySourcesTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", propertyId),
	)
	return listScoped[WaterUtilitySource](ctx, preds, utils.OrderDesc(t, "created_at"), utils.OrderDesc(t, "id"))
}

func CreateWaterUtilitySource(ctx context.Context, organizationId string, input *NewWaterUtilitySource) (*WaterUtilitySource, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if !input.SourceType.IsValid() {
		return nil, errInvalidSourceType
	}
	if err := validatePropertyRef(ctx, organizationId, input.PropertyId); err != nil {
		return nil, err
	}
	source := WaterUtilitySource{
		OrganizationId: organizationId,
		PropertyId:     input.PropertyId,
		SourceType:     input.SourceType,
		ProviderName:   input.ProviderName,
		AccountNumber:  input.AccountNumber,
		MeterNumber:    input.MeterNumber,
		IsActive:       utils.NewTrue(),
		Notes:          input.Notes,
	}
	return createScoped(ctx, &source)
}

func UpdateWaterUtilitySource(ctx context.Context, organizationId string, id int, input *WaterUtilitySourceUpdate) (*WaterUtilitySource, error) {
	if _, err := utils.FetchModel[WaterUtilitySource](ctx, organizationId, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.PropertyId != nil {
		if err := validatePropertyRef(ctx, organizationId, input.PropertyId); err != nil {
			return nil, err
		}
		updates["property_id"] = *input.PropertyId
	}
	if input.SourceType != nil {
		if !input.SourceType.IsValid() {
			return nil, errInvalidSourceType
		}
		updates["source_type"] = *input.SourceType
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
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if err := utils.UpdateScoped[WaterUtilitySource](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	return utils.FetchModel[WaterUtilitySource](ctx, organizationId, id)
}
