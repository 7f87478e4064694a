package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

const upgradeWishlistTable = "property_upgrade_wishlist"

type UpgradeItem struct {
	ID             int              `gorm:"primary_key" json:"id"`
	OrganizationId string           `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId     int              `gorm:"index;not null" json:"property_id"`
	TargetId       *int             `gorm:"index" json:"target_id"`
	UpgradeName    string           `gorm:"size:200;not null" json:"upgrade_name"`
	Description    *string          `gorm:"type:text" json:"description"`
	TriggerAmount  *decimal.Decimal `gorm:"type:decimal(14,2)" json:"trigger_amount"`
	EstimatedCost  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"estimated_cost"`
	Currency       string           `gorm:"size:3;not null;default:THB" json:"currency"`
	Priority       Priority         `gorm:"size:20;not null;default:medium" json:"priority"`
	Status         UpgradeStatus    `gorm:"size:20;not null;default:planned" json:"status"`
	Deadline       *time.Time       `gorm:"type:date" json:"deadline"`
	Category       *string          `gorm:"size:50" json:"category"`
	Notes          *string          `gorm:"type:text" json:"notes"`
	CreatedBy      *int             `json:"created_by"`
	ApprovedBy     *int             `json:"approved_by"`
	ApprovedAt     *time.Time       `json:"approved_at"`
	CompletedAt    *time.Time       `json:"completed_at"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UpgradeItem) TableName() string { return upgradeWishlistTable }

type UpgradeItemWithTarget struct {
	UpgradeItem
	PropertyName      *string `json:"property_name"`
	TargetDescription *string `json:"target_description"`
}

type NewUpgradeItem struct {
	PropertyId    int              `json:"property_id" binding:"required"`
	TargetId      *int             `json:"target_id"`
	UpgradeName   string           `json:"upgrade_name" binding:"required"`
	Description   *string          `json:"description"`
	TriggerAmount *decimal.Decimal `json:"trigger_amount"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost"`
	Currency      string           `json:"currency"`
	Priority      Priority         `json:"priority"`
	Deadline      *time.Time       `json:"deadline"`
	Category      *string          `json:"category"`
	Notes         *string          `json:"notes"`
}

type UpgradeItemUpdate struct {
	TargetId      *int             `json:"target_id"`
	UpgradeName   *string          `json:"upgrade_name"`
	Description   *string          `json:"description"`
	TriggerAmount *decimal.Decimal `json:"trigger_amount"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost"`
	Currency      *string          `json:"currency"`
	Priority      *Priority        `json:"priority"`
	Status        *UpgradeStatus   `json:"status"`
	Deadline      *time.Time       `json:"deadline"`
	Category      *string          `json:"category"`
	Notes         *string          `json:"notes"`
}

type UpgradeItemFilter struct {
	PropertyId *int
	TargetId   *int
	Status     *UpgradeStatus
	Priority   *Priority
	Category   *string
}

var errUpgradeTransition = utils.NewInputError("upgrade cannot move to that status")

// validateUpgradeTarget checks the target belongs to the tenant and the same property.
func validateUpgradeTarget(ctx context.Context, organizationId string, propertyId int, targetId *int) error {
	if targetId == nil {
		return nil
	}
	target, err := utils.FetchModel[RevenueTarget](ctx, organizationId, *targetId)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return utils.NewInputError("revenue target not found")
		}
		return err
	}
	if target.PropertyId != propertyId {
		return utils.NewInputError("revenue target belongs to another property")
	}
	return nil
}

func validateOptionalAmounts(values ...*decimal.Decimal) error {
	for _, v := range values {
		if v != nil && v.IsNegative() {
			return errNegativeAmount
		}
	}
	return nil
}

// ListUpgradeItems orders by priority (high, medium, everything else) then deadline.
func ListUpgradeItems(ctx context.Context, organizationId string, filter UpgradeItemFilter) ([]*UpgradeItemWithTarget, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = upgradeWishlistTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "target_id", filter.TargetId),
		utils.OptionalEq(t, "status", filter.Status),
		utils.OptionalEq(t, "priority", filter.Priority),
		utils.OptionalEq(t, "category", filter.Category),
	)
	priorityRank := clause.OrderByColumn{Column: clause.Column{
		Name: "CASE WHEN " + t + ".priority = 'high' THEN 1 WHEN " + t + ".priority = 'medium' THEN 2 ELSE 3 END",
		Raw:  true,
	}}

	db := config.GetDB()
	results := make([]*UpgradeItemWithTarget, 0)
	err := db.WithContext(ctx).Model(&UpgradeItem{}).
		Select(t + ".*, " + propertiesTable + ".name AS property_name, " + revenueTargetsTable + ".description AS target_description").
		Joins(propertyJoin(t)).
		Joins("LEFT JOIN " + revenueTargetsTable + " ON " + revenueTargetsTable + ".id = " + t + ".target_id AND " +
			revenueTargetsTable + ".organization_id = " + t + ".organization_id").
		Clauses(preds.Where()).
		Clauses(clause.OrderBy{Columns: []clause.OrderByColumn{priorityRank, utils.OrderAsc(t, "deadline"), utils.OrderAsc(t, "id")}}).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetUpgradeItem(ctx context.Context, organizationId string, id int) (*UpgradeItem, error) {
	return utils.FetchModel[UpgradeItem](ctx, organizationId, id)
}

func CreateUpgradeItem(ctx context.Context, organizationId string, input *NewUpgradeItem) (*UpgradeItem, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.UpgradeName) == "" {
		return nil, utils.NewInputError("upgrade name is required")
	}
	if input.Priority != "" && !input.Priority.IsValid() {
		return nil, errInvalidPriority
	}
	if err := validateOptionalAmounts(input.TriggerAmount, input.EstimatedCost); err != nil {
		return nil, err
	}
	if err := validatePropertyRef(ctx, organizationId, &input.PropertyId); err != nil {
		return nil, err
	}
	if err := validateUpgradeTarget(ctx, organizationId, input.PropertyId, input.TargetId); err != nil {
		return nil, err
	}
	var deadline *time.Time
	if input.Deadline != nil {
		deadline = utils.Ptr(dateOnly(*input.Deadline))
	}
	item := UpgradeItem{
		OrganizationId: organizationId,
		PropertyId:     input.PropertyId,
		TargetId:       input.TargetId,
		UpgradeName:    strings.TrimSpace(input.UpgradeName),
		Description:    input.Description,
		TriggerAmount:  input.TriggerAmount,
		EstimatedCost:  input.EstimatedCost,
		Currency:       defaultCurrency(ctx, organizationId, input.Currency),
		Priority:       utils.DereferencePtr(utils.NilIfEmpty(input.Priority), PriorityMedium),
		Status:         UpgradeStatusPlanned,
		Deadline:       deadline,
		Category:       input.Category,
		Notes:          input.Notes,
		CreatedBy:      utils.GetActorIdFromContext(ctx),
	}
	return createScoped(ctx, &item)
}

func UpdateUpgradeItem(ctx context.Context, organizationId string, id int, input *UpgradeItemUpdate) (*UpgradeItem, error) {
	existing, err := utils.FetchModel[UpgradeItem](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.TargetId != nil {
		if err := validateUpgradeTarget(ctx, organizationId, existing.PropertyId, input.TargetId); err != nil {
			return nil, err
		}
		updates["target_id"] = *input.TargetId
	}
	if input.UpgradeName != nil {
		name := strings.TrimSpace(*input.UpgradeName)
		if name == "" {
			return nil, utils.NewInputError("upgrade name is required")
		}
		updates["upgrade_name"] = name
	}
	if err := validateOptionalAmounts(input.TriggerAmount, input.EstimatedCost); err != nil {
		return nil, err
	}
	if input.TriggerAmount != nil {
		updates["trigger_amount"] = *input.TriggerAmount
	}
	if input.EstimatedCost != nil {
		updates["estimated_cost"] = *input.EstimatedCost
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Currency != nil {
		updates["currency"] = strings.ToUpper(*input.Currency)
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, errInvalidPriority
		}
		updates["priority"] = *input.Priority
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, errInvalidStatus
		}
		updates["status"] = *input.Status
		if *input.Status == UpgradeStatusCompleted && existing.CompletedAt == nil {
			updates["completed_at"] = now()
		}
	}
	if input.Deadline != nil {
		updates["deadline"] = dateOnly(*input.Deadline)
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if err := utils.UpdateScoped[UpgradeItem](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	return utils.FetchModel[UpgradeItem](ctx, organizationId, id)
}

func DeleteUpgradeItem(ctx context.Context, organizationId string, id int) (*UpgradeItem, error) {
	existing, err := utils.FetchModel[UpgradeItem](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if err := utils.DeleteScoped[UpgradeItem](ctx, organizationId, id); err != nil {
		return nil, err
	}
	return existing, nil
}

// ApproveUpgradeItem moves a planned upgrade to confirmed.
func ApproveUpgradeItem(ctx context.Context, organizationId string, id int, approvedBy *int) (*UpgradeItem, error) {
	existing, err := utils.FetchModel[UpgradeItem](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	switch existing.Status {
	case UpgradeStatusConfirmed:
		return existing, nil
	case UpgradeStatusPlanned:
	default:
		return nil, errUpgradeTransition
	}
	if approvedBy == nil {
		approvedBy = utils.GetActorIdFromContext(ctx)
	}
	updates := map[string]interface{}{
		"status":      UpgradeStatusConfirmed,
		"approved_at": now(),
		"updated_at":  now(),
	}
	if approvedBy != nil {
		updates["approved_by"] = *approvedBy
	}
	planned := clause.Eq{Column: utils.Col(upgradeWishlistTable, "status"), Value: UpgradeStatusPlanned}
	changed, err := utils.TransitionScoped[UpgradeItem](ctx, organizationId, id, updates, planned)
	if err != nil {
		return nil, err
	}
	current, err := utils.FetchModel[UpgradeItem](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if !changed && current.Status != UpgradeStatusConfirmed {
		return nil, errUpgradeTransition
	}
	return current, nil
}

// CompleteUpgradeItem completes a planned or confirmed upgrade.
func CompleteUpgradeItem(ctx context.Context, organizationId string, id int) (*UpgradeItem, error) {
	existing, err := utils.FetchModel[UpgradeItem](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	switch existing.Status {
	case UpgradeStatusCompleted:
		return existing, nil
	case UpgradeStatusCancelled:
		return nil, errUpgradeTransition
	}
	updates := map[string]interface{}{
		"status":       UpgradeStatusCompleted,
		"completed_at": now(),
		"updated_at":   now(),
	}
	changed, err := utils.TransitionScoped[UpgradeItem](ctx, organizationId, id, updates,
		clause.Neq{Column: utils.Col(upgradeWishlistTable, "status"), Value: UpgradeStatusCompleted},
		clause.Neq{Column: utils.Col(upgradeWishlistTable, "status"), Value: UpgradeStatusCancelled},
	)
	if err != nil {
		return nil, err
	}
	current, err := utils.FetchModel[UpgradeItem](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if !changed && current.Status == UpgradeStatusCancelled {
		return nil, errUpgradeTransition
	}
	return current, nil
}
