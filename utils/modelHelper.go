package utils

import (
	"context"
	"errors"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

/* DB fetching */

// fetch a tenant row by id
// (returns ErrorRecordNotFound when the id belongs to another organization)
func FetchModel[T any](ctx context.Context, organizationId string, id int) (*T, error) {
	if err := RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	db := config.GetDB()
	var result T
	table := tableOf(db, &result)
	err := db.WithContext(ctx).
		Clauses(ById(table, organizationId, id).Where()).
		Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// check if id exists for the organization, return ErrorRecordNotFound otherwise
func ValidateResourceId[T any](ctx context.Context, organizationId string, id int) error {
	db := config.GetDB()
	var model T
	table := tableOf(db, &model)
	var count int64
	if err := db.WithContext(ctx).Model(&model).
		Clauses(ById(table, organizationId, id).Where()).
		Count(&count).Error; err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}
	return nil
}

// ValidateOptionalResourceId accepts a nil id (unassigned reference).
func ValidateOptionalResourceId[T any](ctx context.Context, organizationId string, id *int) error {
	if id == nil {
		return nil
	}
	return ValidateResourceId[T](ctx, organizationId, *id)
}

// UpdateScoped applies updates to exactly one row matched on id AND organization_id.
// Returns ErrorRecordNotFound when nothing matched.
func UpdateScoped[T any](ctx context.Context, organizationId string, id int, updates map[string]interface{}) error {
	db := config.GetDB()
	var model T
	table := tableOf(db, &model)
	result := db.WithContext(ctx).Model(&model).
		Clauses(ById(table, organizationId, id).Where()).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// MySQL reports zero for unchanged rows; distinguish from a missing row.
		return ValidateResourceId[T](ctx, organizationId, id)
	}
	return nil
}

// TransitionScoped applies updates to one tenant row only while it still matches
// every guard. It reports false when nothing matched, either because another
// writer already moved the row or because the row is gone.
func TransitionScoped[T any](ctx context.Context, organizationId string, id int, updates map[string]interface{}, guards ...clause.Expression) (bool, error) {
	if err := RequireOrganization(organizationId); err != nil {
		return false, err
	}
	db := config.GetDB()
	var model T
	table := tableOf(db, &model)
	result := db.WithContext(ctx).Model(&model).
		Clauses(ById(table, organizationId, id).With(guards...).Where()).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteScoped removes one row matched on id AND organization_id.
func DeleteScoped[T any](ctx context.Context, organizationId string, id int) error {
	if err := RequireOrganization(organizationId); err != nil {
		return err
	}
	db := config.GetDB()
	var model T
	table := tableOf(db, &model)
	result := db.WithContext(ctx).
		Clauses(ById(table, organizationId, id).Where()).
		Delete(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrorRecordNotFound
	}
	return nil
}

func tableOf(db *gorm.DB, model interface{}) string {
	if t, ok := model.(schema.Tabler); ok {
		return t.TableName()
	}
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return ""
	}
	return stmt.Table
}
