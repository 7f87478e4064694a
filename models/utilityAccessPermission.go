package models

import (
	"context"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
)

const utilityAccessPermissionsTable = "utility_access_permissions"

// UtilityAccessPermission grants one role its rights on one utility.
type UtilityAccessPermission struct {
	ID               int       `gorm:"primary_key" json:"id"`
	OrganizationId   string    `gorm:"size:36;index;not null" json:"organization_id"`
	UtilityId        int       `gorm:"uniqueIndex:idx_utility_permission_role;not null" json:"utility_id"`
	UserRole         UserRole  `gorm:"size:30;uniqueIndex:idx_utility_permission_role;not null" json:"user_role"`
	CanView          *bool     `gorm:"not null;default:true" json:"can_view"`
	CanEdit          *bool     `gorm:"not null;default:false" json:"can_edit"`
	CanUploadReceipt *bool     `gorm:"not null;default:false" json:"can_upload_receipt"`
	CanMarkPaid      *bool     `gorm:"not null;default:false" json:"can_mark_paid"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UtilityAccessPermission) TableName() string { return utilityAccessPermissionsTable }

type NewUtilityAccessPermission struct {
	UtilityId        int      `json:"utility_id" binding:"required"`
	UserRole         UserRole `json:"user_role" binding:"required"`
	CanView          *bool    `json:"can_view"`
	CanEdit          *bool    `json:"can_edit"`
	CanUploadReceipt *bool    `json:"can_upload_receipt"`
	CanMarkPaid      *bool    `json:"can_mark_paid"`
}

type UtilityAccessPermissionUpdate struct {
	CanView          *bool `json:"can_view"`
	CanEdit          *bool `json:"can_edit"`
	CanUploadReceipt *bool `json:"can_upload_receipt"`
	CanMarkPaid      *bool `json:"can_mark_paid"`
}

func ListUtilityAccessPermissions(ctx context.Context, organizationId string, utilityId int, role *UserRole) ([]*UtilityAccessPermission, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = utilityAccessPermissionsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "utility_id", &utilityId),
		utils.OptionalEq(t, "user_role", role),
	)
	return listScoped[UtilityAccessPermission](ctx, preds, utils.OrderAsc(t, "user_role"))
}

// CreateUtilityAccessPermission fails with a duplicate key when the role already
// has a row for the utility.
func CreateUtilityAccessPermission(ctx context.Context, organizationId string, input *NewUtilityAccessPermission) (*UtilityAccessPermission, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if !input.UserRole.IsValid() {
		return nil, errInvalidRole
	}
	if err := validateRef[PropertyUtility](ctx, organizationId, &input.UtilityId, "utility"); err != nil {
		return nil, err
	}
	permission := UtilityAccessPermission{
		OrganizationId:   organizationId,
		UtilityId:        input.UtilityId,
		UserRole:         input.UserRole,
		CanView:          utils.Ptr(utils.DereferencePtr(input.CanView, true)),
		CanEdit:          utils.Ptr(utils.DereferencePtr(input.CanEdit)),
		CanUploadReceipt: utils.Ptr(utils.DereferencePtr(input.CanUploadReceipt)),
		CanMarkPaid:      utils.Ptr(utils.DereferencePtr(input.CanMarkPaid)),
	}
	return createScoped(ctx, &permission)
}

func UpdateUtilityAccessPermission(ctx context.Context, organizationId string, id int, input *UtilityAccessPermissionUpdate) (*UtilityAccessPermission, error) {
	if _, err := utils.FetchModel[UtilityAccessPermission](ctx, organizationId, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.CanView != nil {
		updates["can_view"] = *input.CanView
	}
	if input.CanEdit != nil {
		updates["can_edit"] = *input.CanEdit
	}
	if input.CanUploadReceipt != nil {
		updates["can_upload_receipt"] = *input.CanUploadReceipt
	}
	if input.CanMarkPaid != nil {
		updates["can_mark_paid"] = *input.CanMarkPaid
	}
	if err := utils.UpdateScoped[UtilityAccessPermission](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	return utils.FetchModel[UtilityAccessPermission](ctx, organizationId, id)
}
