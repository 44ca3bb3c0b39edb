package builder

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tobsdb/flatdb/internal/where"
	"github.com/tobsdb/flatdb/pkg"
)

type Table struct {
	Name    string
	Fields  *pkg.InsertSortMap[string, *Field]
	Indexes []string

	IdTracker atomic.Int64

	Schema *Schema

	rows    *TDBTableRows
	indexes TDBTableIndexes
	// serializes writes so unique checks and inserts happen together
	write_locker sync.Mutex

	first_page_id string
}

func NewTable(schema *Schema, name string) *Table {
	return &Table{
		Name:    name,
		Fields:  pkg.NewInsertSortMap[string, *Field](),
		Indexes: []string{},
		Schema:  schema,
		rows:    NewTDBTableRows(),
		indexes: TDBTableIndexes{},
	}
}

func (t *Table) TableName() string { return t.Name }

// Column looks a field up by exact name, then case-insensitively.
func (t *Table) Column(name string) (where.ColumnDef, bool) {
	f, ok := t.Field(name)
	if !ok {
		return nil, false
	}
	return f, true
}

func (t *Table) Field(name string) (*Field, bool) {
	return pkg.FoldGet(t.Fields, name)
}

func (t *Table) PrimaryKey() *Field {
	for _, field := range t.Fields.Values() {
		if field.IndexLevel() == IndexLevelPrimary {
			return field
		}
	}
	return nil
}

func (t *Table) Row(id int) (TDBTableRow, bool) { return t.rows.Get(id) }

func (t *Table) Len() int { return t.rows.Len() }

// Scan returns every row in primary key order.
func (t *Table) Scan() []TDBTableRow {
	entries := t.rows.Entries()
	rows := make([]TDBTableRow, len(entries))
	for i, entry := range entries {
		rows[i] = entry.Row
	}
	return rows
}

func (t *Table) Entries() []RowEntry { return t.rows.Entries() }

func (t *Table) IndexMap(index string) *TDBTableIndexMap {
	return t.indexes.Get(index)
}

func (t *Table) uniqueFields() []*Field {
	fields := []*Field{}
	for _, index := range t.Indexes {
		if field := t.Fields.Get(index); field.IndexLevel() == IndexLevelUnique {
			fields = append(fields, field)
		}
	}
	return fields
}

// Insert validates data against the table's fields and stores it as a new row.
func (t *Table) Insert(data map[string]any) (TDBTableRow, error) {
	t.write_locker.Lock()
	defer t.write_locker.Unlock()

	for key := range data {
		if _, ok := t.Field(key); !ok {
			return nil, badRequest(fmt.Sprintf("Field %s does not exist on table %s", key, t.Name))
		}
	}

	row := TDBTableRow{}
	primary_key := t.PrimaryKey()

	for _, field := range t.Fields.Values() {
		input := inputValue(data, field.Name)
		if field == primary_key && input == nil {
			continue
		}

		value, err := field.ValidateType(input)
		if err != nil {
			return nil, err
		}

		if value != nil && field.IsForeignKey() {
			if err := t.validateRelation(field, value); err != nil {
				return nil, err
			}
		}

		row.Set(field.Name, value)
	}

	var id int
	if primary_key != nil && row.Has(primary_key.Name) {
		id = row.Get(primary_key.Name).(int)
		if t.rows.Has(id) {
			return nil, NewQueryError(http.StatusConflict, fmt.Sprintf("Row with %s %d already exists", primary_key.Name, id))
		}
	} else {
		id = t.nextId()
		if primary_key != nil {
			row.Set(primary_key.Name, id)
		}
	}

	unique_fields := t.uniqueFields()
	for _, field := range unique_fields {
		value := row.Get(field.Name)
		if value != nil && t.IndexMap(field.Name).Has(value) {
			return nil, NewQueryError(http.StatusConflict, fmt.Sprintf("Value for unique field %s already exists", field.Name))
		}
	}

	t.rows.Insert(id, row)
	t.trackId(id)
	for _, field := range unique_fields {
		if value := row.Get(field.Name); value != nil {
			t.IndexMap(field.Name).Set(value, id)
		}
	}

	t.Schema.UpdateLastChange()
	return row, nil
}

// Update applies data to the row stored under id and returns the new row.
// Int and Float fields also take {"increment": n} or {"decrement": n}.
// Nothing is changed when any field fails validation.
func (t *Table) Update(id int, data map[string]any) (TDBTableRow, error) {
	t.write_locker.Lock()
	defer t.write_locker.Unlock()

	old_row, ok := t.rows.Get(id)
	if !ok {
		return nil, NewQueryError(http.StatusNotFound, fmt.Sprintf("No row found with id %d in table %s", id, t.Name))
	}

	for key := range data {
		if _, ok := t.Field(key); !ok {
			return nil, badRequest(fmt.Sprintf("Field %s does not exist on table %s", key, t.Name))
		}
	}

	row := TDBTableRow{}
	for k, v := range old_row {
		row[k] = v
	}

	for _, field := range t.Fields.Values() {
		input, ok := lookupInput(data, field.Name)
		if !ok {
			continue
		}

		if field.IsPrimaryKey() {
			if input == nil || !pkg.IsWholeNumber(input) || pkg.NumToInt(input) != id {
				return nil, badRequest(fmt.Sprintf("Primary key %s cannot be updated", field.Name))
			}
			continue
		}

		value, err := field.updateValue(old_row.Get(field.Name), input)
		if err != nil {
			return nil, err
		}

		if value != nil && field.IsForeignKey() {
			if err := t.validateRelation(field, value); err != nil {
				return nil, err
			}
		}

		if value != nil && field.IndexLevel() == IndexLevelUnique {
			if other, taken := t.IndexMap(field.Name).Get(value); taken && other != id {
				return nil, NewQueryError(http.StatusConflict, fmt.Sprintf("Value for unique field %s already exists", field.Name))
			}
		}

		row.Set(field.Name, value)
	}

	t.rows.Replace(id, row)
	for _, field := range t.uniqueFields() {
		index := t.IndexMap(field.Name)
		if value := old_row.Get(field.Name); value != nil {
			index.Delete(value)
		}
		if value := row.Get(field.Name); value != nil {
			index.Set(value, id)
		}
	}

	t.Schema.UpdateLastChange()
	return row, nil
}

func (t *Table) Delete(id int) bool {
	t.write_locker.Lock()
	defer t.write_locker.Unlock()

	row, ok := t.rows.Get(id)
	if !ok {
		return false
	}

	for _, field := range t.uniqueFields() {
		if value := row.Get(field.Name); value != nil {
			t.IndexMap(field.Name).Delete(value)
		}
	}

	t.rows.Delete(id)
	t.Schema.UpdateLastChange()
	return true
}

func (t *Table) nextId() int {
	for {
		id := int(t.IdTracker.Add(1))
		if !t.rows.Has(id) {
			return id
		}
	}
}

// trackId keeps the id tracker at or above every id in use.
func (t *Table) trackId(id int) {
	for {
		curr := t.IdTracker.Load()
		if int64(id) <= curr || t.IdTracker.CompareAndSwap(curr, int64(id)) {
			return
		}
	}
}

// validateRelation checks that the row referenced by the relation exists
// before the new row is added
func (t *Table) validateRelation(field *Field, value any) error {
	rel_table_name, rel_field_name, _ := field.Relation()
	rel_table, ok := t.Schema.GetTable(rel_table_name)
	if !ok {
		return fmt.Errorf("Table %s not found", rel_table_name)
	}
	rel_field := rel_table.Fields.Get(rel_field_name)

	var found bool
	switch rel_field.IndexLevel() {
	case IndexLevelPrimary:
		found = rel_table.rows.Has(pkg.NumToInt(value))
	case IndexLevelUnique:
		found = rel_table.IndexMap(rel_field_name).Has(value)
	default:
		needle := formatIndexValue(value)
		for _, row := range rel_table.Scan() {
			if formatIndexValue(row.Get(rel_field_name)) == needle {
				found = true
				break
			}
		}
	}

	if !found {
		return badRequest(fmt.Sprintf("No row found for relation table %s", rel_table_name))
	}
	return nil
}

func inputValue(data map[string]any, name string) any {
	v, _ := lookupInput(data, name)
	return v
}

// lookupInput finds name in data by exact key, then case-insensitively.
func lookupInput(data map[string]any, name string) (any, bool) {
	if v, ok := data[name]; ok {
		return v, true
	}
	for key, v := range data {
		if strings.EqualFold(key, name) {
			return v, true
		}
	}
	return nil, false
}
