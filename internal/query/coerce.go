package query

import (
	"github.com/tobsdb/flatdb/internal/builder"
	"github.com/tobsdb/flatdb/internal/types"
	"github.com/tobsdb/flatdb/internal/where"
)

// coerceLiterals returns expr with the literals compared against Date columns parsed into
// times, the same way inserts parse them. Requests can only carry dates as strings or
// numbers, which would otherwise never order against a stored time.
// Literals that do not parse are left as they are.
func coerceLiterals(schema *builder.Schema, base *builder.Table, expr where.Expr) where.Expr {
	switch expr := expr.(type) {
	case *where.Combinator:
		left := coerceLiterals(schema, base, expr.Left)
		right := coerceLiterals(schema, base, expr.Right)
		if expr.Op() == where.BoolOpOr {
			return where.Or(left, right)
		}
		return where.And(left, right)
	case *where.Comparison:
		field := comparedField(schema, base, expr.Column)
		if field == nil || field.BuiltinType != types.FieldTypeDate {
			return expr
		}
		value, ok := coerceLiteral(field, expr.Op, expr.Value)
		if !ok {
			return expr
		}
		return where.Compare(expr.Column, expr.Op, value)
	}
	return expr
}

func comparedField(schema *builder.Schema, base *builder.Table, ref where.ColumnRef) *builder.Field {
	table := base
	if ref.IsQualified() {
		t, ok := schema.GetTable(ref.Table)
		if !ok {
			return nil
		}
		table = t
	}
	if table == nil {
		return nil
	}
	field, ok := table.Field(ref.Name)
	if !ok {
		return nil
	}
	return field
}

func coerceLiteral(field *builder.Field, op where.Operator, value any) (any, bool) {
	if value == nil {
		return nil, false
	}
	switch op {
	case where.OpEqual, where.OpNotEqual, where.OpLess, where.OpGreater, where.OpLessOrEqual, where.OpGreaterOrEqual:
		v, err := field.ValidateType(value)
		return v, err == nil
	case where.OpIn, where.OpNotIn:
		list, ok := value.([]any)
		if !ok {
			return nil, false
		}
		coerced := make([]any, len(list))
		for i, item := range list {
			coerced[i] = item
			if item == nil {
				continue
			}
			if v, err := field.ValidateType(item); err == nil {
				coerced[i] = v
			}
		}
		return coerced, true
	}
	return nil, false
}
