package where

import "strings"

type Operator string

const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "!="
	OpLess           Operator = "<"
	OpGreater        Operator = ">"
	OpLessOrEqual    Operator = "<="
	OpGreaterOrEqual Operator = ">="
	OpLike           Operator = "LIKE"
	OpNotLike        Operator = "NOT LIKE"
	OpRegex          Operator = "REGEXP"
	OpNotRegex       Operator = "NOT REGEXP"
	OpIn             Operator = "IN"
	OpNotIn          Operator = "NOT IN"
	OpExists         Operator = "EXISTS"
	OpNotExists      Operator = "NOT EXISTS"
)

var VALID_OPERATORS = []Operator{
	OpEqual, OpNotEqual, OpLess, OpGreater, OpLessOrEqual, OpGreaterOrEqual,
	OpLike, OpNotLike, OpRegex, OpNotRegex, OpIn, OpNotIn, OpExists, OpNotExists,
}

var operator_aliases = map[string]Operator{
	"==":         OpEqual,
	"EQ":         OpEqual,
	"<>":         OpNotEqual,
	"NE":         OpNotEqual,
	"LT":         OpLess,
	"GT":         OpGreater,
	"LTE":        OpLessOrEqual,
	"GTE":        OpGreaterOrEqual,
	"RLIKE":      OpRegex,
	"NOT RLIKE":  OpNotRegex,
	"REGEX":      OpRegex,
	"NOT REGEX":  OpNotRegex,
	"NOT_LIKE":   OpNotLike,
	"NOT_REGEXP": OpNotRegex,
	"NOT_IN":     OpNotIn,
	"NOT_EXISTS": OpNotExists,
}

// negated maps every NOT operator to the operator it inverts.
var negated = map[Operator]Operator{
	OpNotEqual:  OpEqual,
	OpNotLike:   OpLike,
	OpNotRegex:  OpRegex,
	OpNotIn:     OpIn,
	OpNotExists: OpExists,
}

// ParseOperator normalizes an operator token coming from an untyped caller.
// Tokens it does not recognize are returned as given; IsKnown reports false for them.
func ParseOperator(token string) Operator {
	norm := strings.ToUpper(strings.Join(strings.Fields(token), " "))
	if alias, ok := operator_aliases[norm]; ok {
		return alias
	}
	if op := Operator(norm); op.IsKnown() {
		return op
	}
	return Operator(token)
}

func (op Operator) IsKnown() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpGreater, OpLessOrEqual, OpGreaterOrEqual,
		OpLike, OpNotLike, OpRegex, OpNotRegex, OpIn, OpNotIn, OpExists, OpNotExists:
		return true
	}
	return false
}

// TakesSubQuery reports whether the operator accepts a sub-query handle on the right.
func (op Operator) TakesSubQuery() bool {
	switch op {
	case OpIn, OpNotIn, OpExists, OpNotExists:
		return true
	}
	return false
}

// split returns the positive form of op and whether the result must be inverted.
func (op Operator) split() (Operator, bool) {
	if base, ok := negated[op]; ok {
		return base, true
	}
	return op, false
}
