package query

import (
	"encoding/json"
	"fmt"

	"github.com/tobsdb/flatdb/internal/builder"
	"github.com/tobsdb/flatdb/internal/where"
)

type joinRequest struct {
	Table    string          `json:"table"`
	Kind     JoinKind        `json:"kind"`
	LeftKey  string          `json:"left_key"`
	RightKey string          `json:"right_key"`
	On       json.RawMessage `json:"on"`
}

type orderRequest struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}

// FindRequest is the JSON form of a find, as sent by clients and nested in sub-queries.
type FindRequest struct {
	Table   string          `json:"table"`
	Where   json.RawMessage `json:"where"`
	Joins   []joinRequest   `json:"joins"`
	OrderBy []orderRequest  `json:"order_by"`
	Columns []string        `json:"columns"`
	Offset  int             `json:"offset"`
	Limit   int             `json:"limit"`
	// Column picks the value a sub-query yields for IN.
	Column string `json:"column"`
}

// Args turns the request into FindArgs. Sub-queries in where and on clauses
// become *SubQuery handles bound to schema.
func (r FindRequest) Args(schema *builder.Schema) (FindArgs, error) {
	resolve := Resolver(schema)

	if len(r.Table) == 0 {
		return FindArgs{}, fmt.Errorf("Missing table")
	}

	where_expr, err := where.Decode(r.Where, resolve)
	if err != nil {
		return FindArgs{}, err
	}

	args := FindArgs{
		Table:   r.Table,
		Where:   where_expr,
		Columns: r.Columns,
		Offset:  r.Offset,
		Limit:   r.Limit,
	}

	for _, j := range r.Joins {
		on, err := where.Decode(j.On, resolve)
		if err != nil {
			return FindArgs{}, err
		}
		args.Joins = append(args.Joins, Join{Table: j.Table, Kind: j.Kind, LeftKey: j.LeftKey, RightKey: j.RightKey, On: on})
	}

	for _, o := range r.OrderBy {
		args.OrderBy = append(args.OrderBy, Order{Column: o.Column, Desc: o.Desc})
	}

	return args, nil
}

// Resolver builds sub-query handles for where.Decode.
func Resolver(schema *builder.Schema) where.SubQueryResolver {
	return func(raw json.RawMessage) (any, error) {
		var req FindRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("Invalid sub-query: %s", err.Error())
		}
		args, err := req.Args(schema)
		if err != nil {
			return nil, err
		}
		return &SubQuery{Schema: schema, Args: args, Column: req.Column}, nil
	}
}
