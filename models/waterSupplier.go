package models

import (
	"context"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const waterSuppliersTable = "water_suppliers"

type WaterSupplier struct {
	ID             int              `gorm:"primary_key" json:"id"`
	OrganizationId string           `gorm:"size:36;index;not null" json:"organization_id"`
	Name           string           `gorm:"size:200;not null" json:"name"`
	Phone          *string          `gorm:"size:30" json:"phone"`
	Email          *string          `gorm:"size:100" json:"email"`
	ServiceArea    *string          `gorm:"size:200" json:"service_area"`
	PricePerLiter  *decimal.Decimal `gorm:"type:decimal(12,6)" json:"price_per_liter"`
	IsPreferred    *bool            `gorm:"not null;default:false" json:"is_preferred"`
	IsActive       *bool            `gorm:"not null;default:true" json:"is_active"`
	Notes          *string          `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WaterSupplier) TableName() string { return waterSuppliersTable }

type NewWaterSupplier struct {
	Name          string           `json:"name" binding:"required"`
	Phone         *string          `json:"phone"`
	Email         *string          `json:"email" binding:"omitempty,email"`
	ServiceArea   *string          `json:"service_area"`
	PricePerLiter *decimal.Decimal `json:"price_per_liter"`
	IsPreferred   *bool            `json:"is_preferred"`
	Notes         *string          `json:"notes"`
}

type WaterSupplierUpdate struct {
	Name          *string          `json:"name"`
	Phone         *string          `json:"phone"`
	Email         *string          `json:"email" binding:"omitempty,email"`
	ServiceArea   *string          `json:"service_area"`
	PricePerLiter *decimal.Decimal `json:"price_per_liter"`
	IsPreferred   *bool            `json:"is_preferred"`
	IsActive      *bool            `json:"is_active"`
	Notes         *string          `json:"notes"`
}

type WaterSupplierFilter struct {
	IsActive    *bool
	IsPreferred *bool
}

// normalizeSupplierPhone validates against the organization's country and stores E.164.
func normalizeSupplierPhone(ctx context.Context, organizationId string, phone *string) (*string, error) {
	if phone == nil || strings.TrimSpace(*phone) == "" {
		return nil, nil
	}
	formatted, err := utils.FormatPhoneNumber(*phone, organizationCountryCode(ctx, organizationId))
	if err != nil {
		return nil, utils.NewInputError("invalid phone number")
	}
	return &formatted, nil
}

func ListWaterSuppliers(ctx context.Context, organizationId string, filter WaterSupplierFilter) ([]*WaterSupplier, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = waterSuppliersTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "is_active", filter.IsActive),
		utils.OptionalEq(t, "is_preferred", filter.IsPreferred),
	)
	return listScoped[WaterSupplier](ctx, preds, utils.OrderDesc(t, "is_preferred"), utils.OrderAsc(t, "name"))
}

func CreateWaterSupplier(ctx context.Context, organizationId string, input *NewWaterSupplier) (*WaterSupplier, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, utils.NewInputError("name is required")
	}
	if input.PricePerLiter != nil {
		if err := validateNonNegative(*input.PricePerLiter); err != nil {
			return nil, err
		}
	}
	phone, err := normalizeSupplierPhone(ctx, organizationId, input.Phone)
	if err != nil {
		return nil, err
	}
	supplier := WaterSupplier{
		OrganizationId: organizationId,
		Name:           strings.TrimSpace(input.Name),
		Phone:          phone,
		Email:          input.Email,
		ServiceArea:    input.ServiceArea,
		PricePerLiter:  input.PricePerLiter,
		IsPreferred:    utils.Ptr(utils.DereferencePtr(input.IsPreferred)),
		IsActive:       utils.NewTrue(),
		Notes:          input.Notes,
	}
	return createScoped(ctx, &supplier)
}

func UpdateWaterSupplier(ctx context.Context, organizationId string, id int, input *WaterSupplierUpdate) (*WaterSupplier, error) {
	if _, err := utils.FetchModel[WaterSupplier](ctx, organizationId, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, utils.NewInputError("name is required")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		phone, err := normalizeSupplierPhone(ctx, organizationId, input.Phone)
		if err != nil {
			return nil, err
		}
		updates["phone"] = phone
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.ServiceArea != nil {
		updates["service_area"] = *input.ServiceArea
	}
	if input.PricePerLiter != nil {
		if err := validateNonNegative(*input.PricePerLiter); err != nil {
			return nil, err
		}
		updates["price_per_liter"] = *input.PricePerLiter
	}
	if input.IsPreferred != nil {
		updates["is_preferred"] = *input.IsPreferred
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if err := utils.UpdateScoped[WaterSupplier](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	return utils.FetchModel[WaterSupplier](ctx, organizationId, id)
}
