package where

import (
	"fmt"
	"strings"
)

// Expr is a where clause: a *Combinator, a *Comparison or Empty.
// A nil Expr behaves like Empty.
type Expr interface {
	isExpr()
}

type BoolOp string

const (
	BoolOpAnd BoolOp = "AND"
	BoolOpOr  BoolOp = "OR"
)

// Combinator joins two expressions with AND or OR.
// Build one with And or Or; the operator cannot be set to anything else.
type Combinator struct {
	op    BoolOp
	Left  Expr
	Right Expr
}

func And(left, right Expr) *Combinator { return &Combinator{BoolOpAnd, left, right} }
func Or(left, right Expr) *Combinator  { return &Combinator{BoolOpOr, left, right} }

func (c *Combinator) Op() BoolOp { return c.op }

func (c *Combinator) String() string {
	return fmt.Sprintf("(%v %s %v)", exprString(c.Left), c.op, exprString(c.Right))
}

// All folds exprs into a left-deep AND chain. No exprs means Empty.
func All(exprs ...Expr) Expr { return fold(And, exprs) }

// Any folds exprs into a left-deep OR chain. No exprs means Empty.
func Any(exprs ...Expr) Expr { return fold(Or, exprs) }

func fold(join func(l, r Expr) *Combinator, exprs []Expr) Expr {
	if len(exprs) == 0 {
		return Empty{}
	}
	res := exprs[0]
	for _, e := range exprs[1:] {
		res = join(res, e)
	}
	return res
}

// Comparison tests one column against Value.
// Value holds a sub-query handle only for IN, NOT IN, EXISTS and NOT EXISTS.
type Comparison struct {
	Column ColumnRef
	Op     Operator
	Value  any
}

// Compare builds a comparison. op goes through ParseOperator, so "like" and "==" mean
// LIKE and =; only unrecognized tokens stay unknown.
func Compare(column ColumnRef, op Operator, value any) *Comparison {
	return &Comparison{column, ParseOperator(string(op)), value}
}

func (c *Comparison) String() string {
	if isSubQuery(c.Value) {
		return fmt.Sprintf("%s %s (subquery)", c.Column, c.Op)
	}
	return fmt.Sprintf("%s %s %v", c.Column, c.Op, c.Value)
}

// Empty matches every row.
type Empty struct{}

func (Empty) String() string { return "TRUE" }

func (*Combinator) isExpr() {}
func (*Comparison) isExpr() {}
func (Empty) isExpr()       {}

func exprString(e Expr) string {
	if e == nil {
		return Empty{}.String()
	}
	return fmt.Sprint(e)
}

// ColumnRef names a column, optionally qualified with its table.
// An unqualified reference resolves against the base table of the query.
type ColumnRef struct {
	Table string
	Name  string
}

func Unqualified(name string) ColumnRef       { return ColumnRef{Name: name} }
func Qualified(table, name string) ColumnRef { return ColumnRef{Table: table, Name: name} }

// ParseColumnRef splits "table.column"; anything without a dot is unqualified.
func ParseColumnRef(ref string) ColumnRef {
	ref = strings.TrimSpace(ref)
	if i := strings.LastIndex(ref, "."); i > 0 && i < len(ref)-1 {
		return Qualified(ref[:i], ref[i+1:])
	}
	return Unqualified(ref)
}

func (c ColumnRef) IsQualified() bool { return c.Table != "" }

func (c ColumnRef) String() string {
	if c.IsQualified() {
		return c.Table + "." + c.Name
	}
	return c.Name
}
