package query

import (
	"github.com/tobsdb/flatdb/internal/builder"
	"github.com/tobsdb/flatdb/internal/where"
)

// SubQuery is a find used as the right side of IN or EXISTS.
// It runs every time it is asked; results are not cached.
type SubQuery struct {
	Schema *builder.Schema
	Args   FindArgs
	// Column is the column IN compares against. Empty means the first projected column,
	// or the table's first field when nothing is projected.
	Column string
}

func (q *SubQuery) Values() ([]any, error) {
	rows, err := Find(q.Schema, q.Args)
	if err != nil {
		return nil, err
	}

	column := q.column()
	values := make([]any, 0, len(rows))
	for _, row := range rows {
		if v, ok := row.Lookup(column); ok {
			values = append(values, v)
		}
	}
	return values, nil
}

func (q *SubQuery) Exists() (bool, error) {
	args := q.Args
	args.Limit = 1
	rows, err := Find(q.Schema, args)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (q *SubQuery) column() string {
	if len(q.Column) > 0 {
		return q.Column
	}
	if len(q.Args.Columns) > 0 {
		return q.Args.Columns[0]
	}
	if table, ok := q.Schema.GetTable(q.Args.Table); ok && table.Fields.Len() > 0 {
		return table.Fields.Sorted[0]
	}
	return ""
}

var (
	_ where.ValueSource     = (*SubQuery)(nil)
	_ where.ExistenceSource = (*SubQuery)(nil)
)
