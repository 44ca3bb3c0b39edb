package where

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/tobsdb/flatdb/pkg"
)

// Evaluate reports whether row satisfies expr.
//
// Unqualified columns resolve against base; qualified ones go through catalog and fail with a
// *TableNotFoundError when the table is unknown. When a column is missing from the row and its
// table is ignore, the comparison holds no matter the operator. This keeps rows produced by an
// outer join whose other side found no match from being rejected on that side's columns.
// A column of table X is read from the row key "X.column" when present, then from the bare
// column name; for the ignore table only the qualified key is read.
//
// Evaluate holds no state and is safe to call from many goroutines at once.
func Evaluate(row RowSource, expr Expr, catalog Catalog, base TableDef, ignore TableDef) (bool, error) {
	e := evaluator{row, catalog, base, ignore}
	return e.eval(expr)
}

type evaluator struct {
	row     RowSource
	catalog Catalog
	base    TableDef
	ignore  TableDef
}

func (e *evaluator) eval(expr Expr) (bool, error) {
	switch expr := expr.(type) {
	case nil, Empty, *Empty:
		return true, nil
	case *Combinator:
		if expr.op != BoolOpAnd && expr.op != BoolOpOr {
			return false, fmt.Errorf("Invalid combinator %q; use where.And or where.Or", expr.op)
		}
		left, err := e.eval(expr.Left)
		if err != nil {
			return false, err
		}
		if expr.op == BoolOpAnd && !left {
			return false, nil
		}
		if expr.op == BoolOpOr && left {
			return true, nil
		}
		return e.eval(expr.Right)
	case *Comparison:
		return e.compare(expr)
	}
	return false, fmt.Errorf("Invalid where expression %T", expr)
}

func (e *evaluator) resolve(ref ColumnRef) (TableDef, error) {
	if !ref.IsQualified() {
		return e.base, nil
	}
	if e.catalog != nil {
		if table, ok := e.catalog.Table(ref.Table); ok {
			return table, nil
		}
	}
	return nil, &TableNotFoundError{Table: ref.Table}
}

// lookup reads a column of table from the row, trying "table.column" before the bare name.
// Columns of the ignore table only count under their qualified name.
func (e *evaluator) lookup(table TableDef, column string) (any, bool) {
	if table == nil {
		return e.row.Lookup(column)
	}
	if v, ok := e.row.Lookup(qualifiedKey(table.TableName(), column)); ok {
		return v, true
	}
	if sameTable(table, e.ignore) {
		return nil, false
	}
	return e.row.Lookup(column)
}

// sameTable matches tables by identity. Tables whose dynamic type cannot be compared
// with == are matched by name instead.
func sameTable(a, b TableDef) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return a.TableName() == b.TableName()
}

func (e *evaluator) compare(c *Comparison) (bool, error) {
	table, err := e.resolve(c.Column)
	if err != nil {
		return false, err
	}

	value, ok := e.lookup(table, c.Column.Name)
	if !ok {
		if sameTable(table, e.ignore) {
			return true, nil
		}
		value = nil
	}
	value = Canonical(value)

	op, invert := c.Op.split()
	var res bool
	switch op {
	case OpEqual:
		res = equals(table, c.Column.Name, value, c.Value)
	case OpLess, OpGreater, OpLessOrEqual, OpGreaterOrEqual:
		res = ordered(op, value, c.Value)
	case OpLike:
		res = matchPattern(value, c.Value, LikeToRegex)
	case OpRegex:
		res = matchPattern(value, c.Value, anchor)
	case OpIn:
		res, err = contains(value, c.Value)
	case OpExists:
		res, err = exists(c.Value)
	default:
		// Unrecognized operators match every row. Callers rely on this to send operators
		// newer than the server understands, so it stays fail-open.
		pkg.DebugLog("unknown where operator", fmt.Sprintf("%q", c.Op), "on", c.Column.String(), "matches all rows")
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return res != invert, nil
}

type columnRole int

const (
	columnRoleData columnRole = iota
	columnRoleKey
)

// equality_policy decides how string forms are compared for = and != by column role.
// Key columns hold identifiers and compare case-insensitively.
var equality_policy = map[columnRole]func(a, b string) bool{
	columnRoleKey:  strings.EqualFold,
	columnRoleData: func(a, b string) bool { return a == b },
}

func roleOf(table TableDef, column string) columnRole {
	if table == nil {
		return columnRoleData
	}
	col, ok := table.Column(column)
	if ok && col != nil && (col.IsPrimaryKey() || col.IsForeignKey()) {
		return columnRoleKey
	}
	return columnRoleData
}

func equals(table TableDef, column string, value, literal any) bool {
	if literal == nil {
		return value == nil
	}
	if value == nil || isSubQuery(literal) {
		return false
	}
	return equality_policy[roleOf(table, column)](StringOf(value), StringOf(literal))
}

func ordered(op Operator, value, literal any) bool {
	if isSubQuery(literal) {
		return false
	}
	cmp, ok := CompareValues(value, Canonical(literal))
	if !ok {
		return false
	}
	switch op {
	case OpLess:
		return cmp < 0
	case OpGreater:
		return cmp > 0
	case OpLessOrEqual:
		return cmp <= 0
	case OpGreaterOrEqual:
		return cmp >= 0
	}
	return false
}

func contains(value, operand any) (bool, error) {
	var list []any
	switch src := operand.(type) {
	case ValueSource:
		values, err := src.Values()
		if err != nil {
			return false, err
		}
		list = values
	case ExistenceSource:
		// a handle that can only answer EXISTS yields no values
	default:
		list = listOf(operand)
	}

	for _, item := range list {
		if Equal(value, item) {
			return true, nil
		}
	}
	return false, nil
}

func exists(operand any) (bool, error) {
	src, ok := operand.(ExistenceSource)
	if !ok {
		return false, nil
	}
	return src.Exists()
}
