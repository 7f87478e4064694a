package models

import (
	"context"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const revenueTargetsTable = "property_revenue_targets"

type RevenueTarget struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OrganizationId string          `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId     int             `gorm:"index;not null" json:"property_id"`
	TargetYear     int             `gorm:"not null" json:"target_year"`
	TargetQuarter  *int            `json:"target_quarter"`
	TargetAmount   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"target_amount"`
	Currency       string          `gorm:"size:3;not null;default:THB" json:"currency"`
	CurrentRevenue decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"current_revenue"`
	Description    *string         `gorm:"type:text" json:"description"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedBy      *int            `json:"created_by"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RevenueTarget) TableName() string { return revenueTargetsTable }

// onTrackShare is the share of the target amount a target must reach to count as on track.
var onTrackShare = decimal.NewFromFloat(0.8)

func (t RevenueTarget) IsOnTrack() bool {
	return t.CurrentRevenue.GreaterThanOrEqual(t.TargetAmount.Mul(onTrackShare))
}

type RevenueTargetWithProperty struct {
	RevenueTarget
	PropertyName *string `json:"property_name"`
}

type NewRevenueTarget struct {
	PropertyId     int              `json:"property_id" binding:"required"`
	TargetYear     int              `json:"target_year" binding:"required"`
	TargetQuarter  *int             `json:"target_quarter"`
	TargetAmount   decimal.Decimal  `json:"target_amount"`
	Currency       string           `json:"currency"`
	CurrentRevenue *decimal.Decimal `json:"current_revenue"`
	Description    *string          `json:"description"`
	CreatedBy      *int             `json:"created_by"`
}

type RevenueTargetUpdate struct {
	TargetYear     *int             `json:"target_year"`
	TargetQuarter  *int             `json:"target_quarter"`
	TargetAmount   *decimal.Decimal `json:"target_amount"`
	Currency       *string          `json:"currency"`
	CurrentRevenue *decimal.Decimal `json:"current_revenue"`
	Description    *string          `json:"description"`
	IsActive       *bool            `json:"is_active"`
}

type RevenueTargetFilter struct {
	PropertyId    *int
	TargetYear    *int
	TargetQuarter *int
	IsActive      *bool
}

func validateQuarter(quarter *int) error {
	if quarter != nil && (*quarter < 1 || *quarter > 4) {
		return utils.NewInputError("quarter must be between 1 and 4")
	}
	return nil
}

func ListRevenueTargets(ctx context.Context, organizationId string, filter RevenueTargetFilter) ([]*RevenueTargetWithProperty, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = revenueTargetsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "target_year", filter.TargetYear),
		utils.OptionalEq(t, "target_quarter", filter.TargetQuarter),
		utils.OptionalEq(t, "is_active", filter.IsActive),
	)
	return listWithProperty[RevenueTargetWithProperty](ctx, &RevenueTarget{}, t, preds,
		utils.OrderDesc(t, "target_year"), utils.OrderDesc(t, "target_quarter"), utils.OrderDesc(t, "id"))
}

func GetRevenueTarget(ctx context.Context, organizationId string, id int) (*RevenueTargetWithProperty, error) {
	return getWithProperty[RevenueTargetWithProperty](ctx, &RevenueTarget{}, revenueTargetsTable, organizationId, id)
}

func CreateRevenueTarget(ctx context.Context, organizationId string, input *NewRevenueTarget) (*RevenueTarget, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if input.TargetYear < 2000 {
		return nil, utils.NewInputError("invalid target year")
	}
	if err := validateQuarter(input.TargetQuarter); err != nil {
		return nil, err
	}
	currentRevenue := utils.DereferencePtr(input.CurrentRevenue, decimal.Zero)
	if err := validateNonNegative(input.TargetAmount, currentRevenue); err != nil {
		return nil, err
	}
	if !input.TargetAmount.IsPositive() {
		return nil, utils.NewInputError("target amount must be greater than zero")
	}
	if err := validatePropertyRef(ctx, organizationId, &input.PropertyId); err != nil {
		return nil, err
	}
	createdBy := input.CreatedBy
	if createdBy == nil {
		createdBy = utils.GetActorIdFromContext(ctx)
	}
	target := RevenueTarget{
		OrganizationId: organizationId,
		PropertyId:     input.PropertyId,
		TargetYear:     input.TargetYear,
		TargetQuarter:  input.TargetQuarter,
		TargetAmount:   input.TargetAmount,
		Currency:       defaultCurrency(ctx, organizationId, input.Currency),
		CurrentRevenue: currentRevenue,
		Description:    input.Description,
		IsActive:       utils.NewTrue(),
		CreatedBy:      createdBy,
	}
	return createScoped(ctx, &target)
}

func UpdateRevenueTarget(ctx context.Context, organizationId string, id int, input *RevenueTargetUpdate) (*RevenueTarget, error) {
	if _, err := utils.FetchModel[RevenueTarget](ctx, organizationId, id); err != nil {
		return nil, err
	}
	if err := validateQuarter(input.TargetQuarter); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.TargetYear != nil {
		if *input.TargetYear < 2000 {
			return nil, utils.NewInputError("invalid target year")
		}
		updates["target_year"] = *input.TargetYear
	}
	if input.TargetQuarter != nil {
		updates["target_quarter"] = *input.TargetQuarter
	}
	if input.TargetAmount != nil {
		if !input.TargetAmount.IsPositive() {
			return nil, utils.NewInputError("target amount must be greater than zero")
		}
		updates["target_amount"] = *input.TargetAmount
	}
	if input.CurrentRevenue != nil {
		if err := validateNonNegative(*input.CurrentRevenue); err != nil {
			return nil, err
		}
		updates["current_revenue"] = *input.CurrentRevenue
	}
	if input.Currency != nil {
		updates["currency"] = strings.ToUpper(*input.Currency)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if err := utils.UpdateScoped[RevenueTarget](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	return utils.FetchModel[RevenueTarget](ctx, organizationId, id)
}

func DeleteRevenueTarget(ctx context.Context, organizationId string, id int) (*RevenueTarget, error) {
	existing, err := utils.FetchModel[RevenueTarget](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if err := utils.DeleteScoped[RevenueTarget](ctx, organizationId, id); err != nil {
		return nil, err
	}
	return existing, nil
}
