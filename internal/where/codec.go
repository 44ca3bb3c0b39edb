package where

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// SubQueryResolver turns the "query" part of a JSON comparison into a sub-query handle.
type SubQueryResolver func(raw json.RawMessage) (any, error)

type jsonClause struct {
	And    []json.RawMessage `json:"and"`
	Or     []json.RawMessage `json:"or"`
	Column string            `json:"column"`
	Op     string            `json:"op"`
	Value  any               `json:"value"`
	Query  json.RawMessage   `json:"query"`
}

var clause_keys = []string{"and", "or", "column", "op", "value", "query"}

// Decode builds an expression tree from a JSON where clause.
//
//	null or {}                                   matches everything
//	{"and": [...]} / {"or": [...]}               combines clauses left to right
//	{"column": "t.c", "op": ">=", "value": 1}    compares one column
//	{"column": "c", "op": "IN", "query": {...}}  compares against a sub-query
//	{"c": 1, "d": {"gte": 2}}                    shorthand: every entry must hold
//
// Unknown operator tokens are kept; they match every row when evaluated.
func Decode(raw json.RawMessage, resolve SubQueryResolver) (Expr, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Empty{}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("Invalid where clause: %s", err.Error())
	}
	if len(fields) == 0 {
		return Empty{}, nil
	}

	structured := false
	for _, key := range clause_keys {
		if _, ok := fields[key]; ok {
			structured = true
			break
		}
	}
	if !structured {
		return decodeShorthand(fields)
	}

	var c jsonClause
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("Invalid where clause: %s", err.Error())
	}

	_, has_and := fields["and"]
	_, has_or := fields["or"]
	if has_and || has_or {
		if (has_and && has_or) || c.Column != "" {
			return nil, fmt.Errorf("Where clause must be exactly one of and, or, or a comparison")
		}
		parts := c.And
		join := All
		if has_or {
			parts, join = c.Or, Any
		}
		exprs := make([]Expr, 0, len(parts))
		for _, part := range parts {
			e, err := Decode(part, resolve)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
		return join(exprs...), nil
	}

	op := OpEqual
	if c.Op != "" {
		op = ParseOperator(c.Op)
	}

	// EXISTS ignores its column, so it may leave it out
	if c.Column == "" && op != OpExists && op != OpNotExists {
		return nil, fmt.Errorf("Where comparison is missing a column")
	}

	if len(c.Query) > 0 && !bytes.Equal(c.Query, []byte("null")) {
		if op.IsKnown() && !op.TakesSubQuery() {
			return nil, fmt.Errorf("Operator %s cannot take a sub-query", op)
		}
		if resolve == nil {
			return nil, fmt.Errorf("Sub-queries are not supported here")
		}
		handle, err := resolve(c.Query)
		if err != nil {
			return nil, err
		}
		return Compare(ParseColumnRef(c.Column), op, handle), nil
	}

	if op == OpExists || op == OpNotExists {
		return nil, fmt.Errorf("Operator %s requires a query", op)
	}

	return Compare(ParseColumnRef(c.Column), op, c.Value), nil
}

// decodeShorthand reads the {"column": value} form. A value that is an object of
// operator/operand pairs yields one comparison per pair.
func decodeShorthand(fields map[string]json.RawMessage) (Expr, error) {
	columns := make([]string, 0, len(fields))
	for k := range fields {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	exprs := []Expr{}
	for _, column := range columns {
		ref := ParseColumnRef(column)

		var ops map[string]any
		if err := json.Unmarshal(fields[column], &ops); err == nil && ops != nil {
			tokens := make([]string, 0, len(ops))
			for k := range ops {
				tokens = append(tokens, k)
			}
			sort.Strings(tokens)
			for _, token := range tokens {
				exprs = append(exprs, Compare(ref, ParseOperator(token), ops[token]))
			}
			continue
		}

		var value any
		if err := json.Unmarshal(fields[column], &value); err != nil {
			return nil, fmt.Errorf("Invalid where value for %s: %s", column, err.Error())
		}
		exprs = append(exprs, Compare(ref, OpEqual, value))
	}
	return All(exprs...), nil
}
