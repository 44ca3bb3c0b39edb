package query

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/tobsdb/flatdb/internal/builder"
	"github.com/tobsdb/flatdb/internal/where"
	"github.com/tobsdb/flatdb/pkg"
)

type QueryArg = map[string]any

func getTable(schema *builder.Schema, name string) (*builder.Table, error) {
	table, ok := schema.GetTable(name)
	if !ok {
		return nil, &where.TableNotFoundError{Table: name}
	}
	return table, nil
}

func Create(schema *builder.Schema, table_name string, data QueryArg) (builder.TDBTableRow, error) {
	table, err := getTable(schema, table_name)
	if err != nil {
		return nil, err
	}
	return table.Insert(data)
}

// CreateMany inserts rows in order and stops at the first failure.
// Rows inserted before the failure are kept.
func CreateMany(schema *builder.Schema, table_name string, data []QueryArg) ([]builder.TDBTableRow, error) {
	table, err := getTable(schema, table_name)
	if err != nil {
		return nil, err
	}

	created := make([]builder.TDBTableRow, 0, len(data))
	for _, d := range data {
		row, err := table.Insert(d)
		if err != nil {
			return created, err
		}
		created = append(created, row)
	}
	return created, nil
}

// FindMany runs Find and gives the result columns back their declared names.
func FindMany(schema *builder.Schema, args FindArgs) ([]map[string]any, error) {
	rows, err := Find(schema, args)
	if err != nil {
		return nil, err
	}

	names := declaredNames(schema, args)
	res := make([]map[string]any, len(rows))
	for i, row := range rows {
		res[i] = make(map[string]any, len(row))
		for key, value := range row {
			if name, ok := names[key]; ok {
				key = name
			}
			res[i][key] = value
		}
	}
	return res, nil
}

func declaredNames(schema *builder.Schema, args FindArgs) map[string]string {
	names := map[string]string{}
	tables := []string{args.Table}
	for _, j := range args.Joins {
		tables = append(tables, j.Table)
	}
	for _, table_name := range tables {
		table, ok := schema.GetTable(table_name)
		if !ok {
			continue
		}
		for _, field := range table.Fields.Values() {
			key := strings.ToUpper(field.Name)
			if _, taken := names[key]; !taken {
				names[key] = field.Name
			}
			qualified := table.Name + "." + field.Name
			names[strings.ToUpper(qualified)] = qualified
		}
	}
	return names
}

// Count returns how many rows of table_name match expr.
func Count(schema *builder.Schema, table_name string, expr where.Expr) (int, error) {
	rows, err := Find(schema, FindArgs{Table: table_name, Where: expr})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// DeleteMany removes every row of table_name that matches expr and returns how many went.
func DeleteMany(schema *builder.Schema, table_name string, expr where.Expr) (int, error) {
	table, err := getTable(schema, table_name)
	if err != nil {
		return 0, err
	}

	ids, err := matchingIds(schema, table, expr)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, id := range ids {
		if table.Delete(id) {
			deleted++
		}
	}
	return deleted, nil
}

// UpdateMany applies data to every row of table_name that matches expr.
// It stops at the first row that fails; rows updated before it keep their changes.
func UpdateMany(schema *builder.Schema, table_name string, expr where.Expr, data QueryArg) ([]builder.TDBTableRow, error) {
	table, err := getTable(schema, table_name)
	if err != nil {
		return nil, err
	}

	ids, err := matchingIds(schema, table, expr)
	if err != nil {
		return nil, err
	}

	updated := make([]builder.TDBTableRow, 0, len(ids))
	for _, id := range ids {
		row, err := table.Update(id, data)
		if err != nil {
			return updated, err
		}
		updated = append(updated, row)
	}
	return updated, nil
}

// matchingIds evaluates expr against every row of table before anything is changed.
func matchingIds(schema *builder.Schema, table *builder.Table, expr where.Expr) ([]int, error) {
	expr = coerceLiterals(schema, table, expr)
	ids := []int{}
	for _, entry := range table.Entries() {
		ok, err := where.Evaluate(where.NewRow(entry.Row), expr, schema, table, nil)
		if err != nil {
			return nil, err
		}
		if ok {
			ids = append(ids, entry.Id)
		}
	}
	return ids, nil
}

// FindUnique returns the row identified by a primary key or unique field in constraints.
// Every other constraint must match too. Constraints are column equalities.
func FindUnique(schema *builder.Schema, table_name string, constraints QueryArg) (builder.TDBTableRow, error) {
	table, err := getTable(schema, table_name)
	if err != nil {
		return nil, err
	}
	entry, err := findUnique(schema, table, constraints)
	if err != nil {
		return nil, err
	}
	return entry.Row, nil
}

func UpdateUnique(schema *builder.Schema, table_name string, constraints, data QueryArg) (builder.TDBTableRow, error) {
	table, err := getTable(schema, table_name)
	if err != nil {
		return nil, err
	}
	entry, err := findUnique(schema, table, constraints)
	if err != nil {
		return nil, err
	}
	return table.Update(entry.Id, data)
}

// DeleteUnique removes the row FindUnique would return and gives it back.
func DeleteUnique(schema *builder.Schema, table_name string, constraints QueryArg) (builder.TDBTableRow, error) {
	table, err := getTable(schema, table_name)
	if err != nil {
		return nil, err
	}
	entry, err := findUnique(schema, table, constraints)
	if err != nil {
		return nil, err
	}
	table.Delete(entry.Id)
	return entry.Row, nil
}

func findUnique(schema *builder.Schema, table *builder.Table, constraints QueryArg) (builder.RowEntry, error) {
	if len(constraints) == 0 {
		return builder.RowEntry{}, badRequest("Where constraints cannot be empty")
	}

	keys := make([]string, 0, len(constraints))
	for key := range constraints {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	exprs := make([]where.Expr, 0, len(keys))
	id, found, has_index := 0, false, false
	for _, key := range keys {
		field, ok := table.Field(key)
		if !ok {
			return builder.RowEntry{}, badRequest(fmt.Sprintf("Field %s does not exist on table %s", key, table.Name))
		}

		var value any
		if input := constraints[key]; input != nil {
			v, err := field.ValidateType(input)
			if err != nil {
				return builder.RowEntry{}, err
			}
			value = v
		}
		exprs = append(exprs, where.Compare(where.Unqualified(field.Name), where.OpEqual, value))

		if has_index || value == nil {
			continue
		}
		switch field.IndexLevel() {
		case builder.IndexLevelPrimary:
			has_index = true
			id = pkg.NumToInt(value)
			_, found = table.Row(id)
		case builder.IndexLevelUnique:
			has_index = true
			id, found = table.IndexMap(field.Name).Get(value)
		}
	}

	if !has_index {
		if len(table.Indexes) > 0 {
			return builder.RowEntry{}, badRequest("Unique fields not included in findUnique request")
		}
		return builder.RowEntry{}, badRequest("Table does not have any unique fields")
	}

	not_found := builder.NewQueryError(http.StatusNotFound, fmt.Sprintf("No row found in table %s", table.Name))
	if !found {
		return builder.RowEntry{}, not_found
	}
	row, ok := table.Row(id)
	if !ok {
		return builder.RowEntry{}, not_found
	}

	ok, err := where.Evaluate(where.NewRow(row), where.All(exprs...), schema, table, nil)
	if err != nil {
		return builder.RowEntry{}, err
	}
	if !ok {
		return builder.RowEntry{}, not_found
	}
	return builder.RowEntry{Id: id, Row: row}, nil
}

func badRequest(msg string) error {
	return builder.NewQueryError(http.StatusBadRequest, msg)
}
