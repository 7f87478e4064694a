package models

import (
	"context"
	"errors"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const propertiesTable = "properties"

// propertyJoin repeats the tenant column so a mis-assigned property id can never
// surface another organization's property.
func propertyJoin(table string) string {
	return "LEFT JOIN " + propertiesTable + " ON " + propertiesTable + ".id = " + table + ".property_id AND " +
		propertiesTable + ".organization_id = " + table + ".organization_id"
}

// withPropertyName selects every column of table plus the joined property name.
func withPropertyName(db *gorm.DB, table string) *gorm.DB {
	return db.Select(table + ".*, " + propertiesTable + ".name AS property_name").Joins(propertyJoin(table))
}

// listWithProperty runs one scoped list query and scans rows of R, which embeds
// the model and adds PropertyName.
func listWithProperty[R any](ctx context.Context, model interface{}, table string, preds utils.Predicates, orders ...clause.OrderByColumn) ([]*R, error) {
	db := config.GetDB()
	results := make([]*R, 0)
	tx := withPropertyName(db.WithContext(ctx).Model(model), table).Clauses(preds.Where())
	if len(orders) > 0 {
		tx = tx.Clauses(clause.OrderBy{Columns: orders})
	}
	if err := tx.Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getWithProperty fetches one row with its property name.
func getWithProperty[R any](ctx context.Context, model interface{}, table string, organizationId string, id int) (*R, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	db := config.GetDB()
	var results []*R
	err := withPropertyName(db.WithContext(ctx).Model(model), table).
		Clauses(utils.ById(table, organizationId, id).Where()).
		Limit(1).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	return results[0], nil
}

// listScoped is listWithProperty for tables without a property join.
func listScoped[T any](ctx context.Context, preds utils.Predicates, orders ...clause.OrderByColumn) ([]*T, error) {
	db := config.GetDB()
	results := make([]*T, 0)
	tx := db.WithContext(ctx).Clauses(preds.Where())
	if len(orders) > 0 {
		tx = tx.Clauses(clause.OrderBy{Columns: orders})
	}
	if err := tx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// createScoped inserts a row that already carries its organization id.
func createScoped[T any](ctx context.Context, row *T) (*T, error) {
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// validateRef checks an optional reference against the tenant. A missing row is
// bad input; any other failure is returned as is.
func validateRef[T any](ctx context.Context, organizationId string, id *int, name string) error {
	if err := utils.ValidateOptionalResourceId[T](ctx, organizationId, id); err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return utils.NewInputError(name + " not found")
		}
		return err
	}
	return nil
}

func validatePropertyRef(ctx context.Context, organizationId string, propertyId *int) error {
	return validateRef[Property](ctx, organizationId, propertyId, "property")
}

func validateNonNegative(values ...decimal.Decimal) error {
	for _, v := range values {
		if v.IsNegative() {
			return errNegativeAmount
		}
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}

// dateOnly truncates t to midnight UTC.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
