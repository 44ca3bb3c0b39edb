package query

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/tobsdb/flatdb/internal/builder"
	"github.com/tobsdb/flatdb/internal/where"
)

type JoinKind string

const (
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
)

type Join struct {
	Table string
	Kind  JoinKind
	// LeftKey and RightKey pair rows whose values are equal. Both empty pairs every row.
	LeftKey  string
	RightKey string
	// On is evaluated against the left row merged with a candidate row of Table.
	// Unqualified columns in it resolve against Table. The merged row keeps every column
	// of Table under "table.column" as well, so qualified references never read the left row.
	On where.Expr
}

func (j Join) pairs(l, r where.Row) bool {
	if len(j.LeftKey) == 0 && len(j.RightKey) == 0 {
		return true
	}
	lv, rv := l.Get(j.LeftKey), r.Get(j.RightKey)
	return lv != nil && rv != nil && where.Equal(lv, rv)
}

type Order struct {
	Column string
	Desc   bool
}

type FindArgs struct {
	Table   string
	Where   where.Expr
	Joins   []Join
	OrderBy []Order
	// Columns keeps only the named columns in each result row. Empty keeps all of them.
	Columns []string
	Offset  int
	Limit   int
}

// candidate is a row on its way through a find.
// ignore is the right table of the last left join that found no match for it.
type candidate struct {
	row    where.Row
	ignore where.TableDef
}

// Find scans args.Table, applies joins, the where clause, ordering, projection and
// finally the offset/limit window.
func Find(schema *builder.Schema, args FindArgs) ([]where.Row, error) {
	table, ok := schema.GetTable(args.Table)
	if !ok {
		return nil, &where.TableNotFoundError{Table: args.Table}
	}

	entries := table.Entries()
	scanned := len(entries)
	found_rows := make([]candidate, 0, len(entries))
	for _, entry := range entries {
		found_rows = append(found_rows, candidate{row: where.NewRow(entry.Row)})
	}

	for _, join := range args.Joins {
		joined, n, err := applyJoin(schema, found_rows, join)
		if err != nil {
			return nil, err
		}
		found_rows = joined
		scanned += n
	}

	expr := coerceLiterals(schema, table, args.Where)
	res := make([]where.Row, 0, len(found_rows))
	for _, c := range found_rows {
		ok, err := where.Evaluate(c.row, expr, schema, table, c.ignore)
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, c.row)
		}
	}

	if len(args.OrderBy) > 0 {
		sortRows(res, args.OrderBy)
	}

	if len(args.Columns) > 0 {
		for i, row := range res {
			res[i] = row.Pick(args.Columns...)
		}
	}

	res = Window(res, args.Offset, args.Limit)
	observeFind(table.Name, scanned, len(res))
	return res, nil
}

func applyJoin(schema *builder.Schema, left []candidate, join Join) ([]candidate, int, error) {
	right_table, ok := schema.GetTable(join.Table)
	if !ok {
		return nil, 0, &where.TableNotFoundError{Table: join.Table}
	}

	switch join.Kind {
	case JoinInner, JoinLeft:
	case "":
		join.Kind = JoinInner
	default:
		return nil, 0, builder.NewQueryError(http.StatusBadRequest, fmt.Sprintf("Invalid join kind: %s", join.Kind))
	}

	right_rows := []where.Row{}
	for _, row := range right_table.Scan() {
		right_rows = append(right_rows, where.NewRow(row))
	}

	on := coerceLiterals(schema, right_table, join.On)
	joined := []candidate{}
	for _, l := range left {
		matched := false
		for _, r := range right_rows {
			if !join.pairs(l.row, r) {
				continue
			}
			merged := l.row.Merge(right_table.Name, r)
			ok, err := where.Evaluate(merged, on, schema, right_table, l.ignore)
			if err != nil {
				return nil, 0, err
			}
			if ok {
				matched = true
				joined = append(joined, candidate{merged, l.ignore})
			}
		}

		if !matched && join.Kind == JoinLeft {
			joined = append(joined, candidate{l.row, right_table})
		}
	}

	return joined, len(right_rows), nil
}

// sortRows orders rows in place, keeping the scan order of rows that compare equal.
// nil sorts before everything; values that cannot be ordered against each other compare equal.
func sortRows(rows []where.Row, order []Order) {
	slices.SortStableFunc(rows, func(a, b where.Row) int {
		for _, o := range order {
			cmp := compareForSort(a.Get(o.Column), b.Get(o.Column))
			if o.Desc {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp
			}
		}
		return 0
	})
}

func compareForSort(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	cmp, ok := where.CompareValues(where.Canonical(a), where.Canonical(b))
	if !ok {
		return 0
	}
	return cmp
}
