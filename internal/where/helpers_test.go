package where_test

import (
	"errors"
	"strings"

	. "github.com/tobsdb/flatdb/internal/where"
)

type testColumn struct{ primary, foreign bool }

func (c testColumn) IsPrimaryKey() bool { return c.primary }
func (c testColumn) IsForeignKey() bool { return c.foreign }

type testTable struct {
	name    string
	columns map[string]testColumn
}

func (t *testTable) TableName() string { return t.name }

func (t *testTable) Column(name string) (ColumnDef, bool) {
	c, ok := t.columns[strings.ToLower(name)]
	return c, ok
}

type testCatalog map[string]*testTable

func (c testCatalog) Table(name string) (TableDef, bool) {
	t, ok := c[name]
	if !ok {
		return nil, false
	}
	return t, true
}

func newTestCatalog() (testCatalog, *testTable, *testTable) {
	t := &testTable{"t", map[string]testColumn{
		"id":    {primary: true},
		"owner": {foreign: true},
		"name":  {},
		"a":     {},
	}}
	u := &testTable{"u", map[string]testColumn{
		"id":   {primary: true},
		"note": {},
	}}
	return testCatalog{"t": t, "u": u}, t, u
}

// mapTable is a table whose dynamic type cannot be compared with ==.
type mapTable map[string]testColumn

func (m mapTable) TableName() string { return "m" }

func (m mapTable) Column(name string) (ColumnDef, bool) {
	c, ok := m[strings.ToLower(name)]
	return c, ok
}

type anyCatalog map[string]TableDef

func (c anyCatalog) Table(name string) (TableDef, bool) {
	t, ok := c[name]
	return t, ok
}

type valuesHandle struct {
	values []any
	err    error
	calls  *int
}

func (h valuesHandle) Values() ([]any, error) {
	if h.calls != nil {
		*h.calls++
	}
	return h.values, h.err
}

type existsHandle struct {
	exists bool
	err    error
}

func (h existsHandle) Exists() (bool, error) { return h.exists, h.err }

// panicHandle blows up if the evaluator ever looks at it.
type panicHandle struct{}

func (panicHandle) Exists() (bool, error) { panic("right branch was evaluated") }

var errHandle = errors.New("sub-query failed")
