package utils

import (
	"strings"

	"gorm.io/gorm/clause"
)

const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// Predicates is an ordered list of WHERE conditions for one query.
// It is built once per call and never shared, so folding never
// mutates another query's conditions.
type Predicates []clause.Expression

// TenantScope is the mandatory first predicate of every tenant query.
func TenantScope(table string, organizationId string) Predicates {
	return Predicates{
		clause.Eq{Column: clause.Column{Table: table, Name: "organization_id"}, Value: organizationId},
	}
}

// ById narrows a tenant scope to a single row.
func ById(table string, organizationId string, id int) Predicates {
	return TenantScope(table, organizationId).With(
		clause.Eq{Column: clause.Column{Table: table, Name: "id"}, Value: id},
	)
}

// OptionalEq returns nil when value is nil.
func OptionalEq[T any](table string, column string, value *T) clause.Expression {
	if value == nil {
		return nil
	}
	return clause.Eq{Column: clause.Column{Table: table, Name: column}, Value: *value}
}

func OptionalGte[T any](table string, column string, value *T) clause.Expression {
	if value == nil {
		return nil
	}
	return clause.Gte{Column: clause.Column{Table: table, Name: column}, Value: *value}
}

func OptionalLte[T any](table string, column string, value *T) clause.Expression {
	if value == nil {
		return nil
	}
	return clause.Lte{Column: clause.Column{Table: table, Name: column}, Value: *value}
}

// OptionalLike matches a case-insensitive substring across the given columns.
// Wildcards in value match literally.
func OptionalLike(table string, value *string, columns ...string) clause.Expression {
	if value == nil || *value == "" || len(columns) == 0 {
		return nil
	}
	pattern := "%" + likeEscaper.Replace(*value) + "%"
	ors := make([]clause.Expression, 0, len(columns))
	for _, c := range columns {
		ors = append(ors, clause.Expr{
			SQL:  "? LIKE ? ESCAPE '" + likeEscape + "'",
			Vars: []interface{}{clause.Column{Table: table, Name: c}, pattern},
		})
	}
	return clause.Or(ors...)
}

// NotEqualOrNull matches rows whose column differs from value or is unset.
func NotEqualOrNull(table string, column string, value interface{}) clause.Expression {
	col := clause.Column{Table: table, Name: column}
	return clause.Or(clause.Neq{Column: col, Value: value}, clause.Eq{Column: col, Value: nil})
}

// With returns a new list with the non-nil expressions appended.
func (p Predicates) With(exprs ...clause.Expression) Predicates {
	out := make(Predicates, 0, len(p)+len(exprs))
	out = append(out, p...)
	for _, e := range exprs {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Where folds the list into a single AND-ed WHERE clause.
func (p Predicates) Where() clause.Where {
	return FoldPredicates(p...)
}

// FoldPredicates combines predicates with AND, dropping nils.
func FoldPredicates(preds ...clause.Expression) clause.Where {
	exprs := make([]clause.Expression, 0, len(preds))
	for _, e := range preds {
		if e != nil {
			exprs = append(exprs, e)
		}
	}
	return clause.Where{Exprs: exprs}
}

// Col is a table-qualified column for ORDER BY and SELECT expressions.
func Col(table string, column string) clause.Column {
	return clause.Column{Table: table, Name: column}
}

func OrderDesc(table string, column string) clause.OrderByColumn {
	return clause.OrderByColumn{Column: Col(table, column), Desc: true}
}

func OrderAsc(table string, column string) clause.OrderByColumn {
	return clause.OrderByColumn{Column: Col(table, column)}
}
