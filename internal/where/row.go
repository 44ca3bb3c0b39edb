package where

import "strings"

// RowSource is anything that can look a column up by name, ignoring case.
type RowSource interface {
	Lookup(name string) (any, bool)
}

// Row maps upper-cased column names to values.
type Row map[string]any

func canonicalKey(name string) string { return strings.ToUpper(name) }

func NewRow(data map[string]any) Row {
	row := make(Row, len(data))
	for k, v := range data {
		row[canonicalKey(k)] = v
	}
	return row
}

func (r Row) Lookup(name string) (any, bool) {
	v, ok := r[canonicalKey(name)]
	return v, ok
}

func (r Row) Get(name string) any { return r[canonicalKey(name)] }

func (r Row) Has(name string) bool {
	_, ok := r[canonicalKey(name)]
	return ok
}

func (r Row) Set(name string, value any) { r[canonicalKey(name)] = value }

// Merge returns a new row holding r's columns plus the columns of other, a row of table.
// Every column of other is also kept under "table.column", so it stays reachable when r
// already has a column of the same name.
func (r Row) Merge(table string, other Row) Row {
	merged := make(Row, len(r)+2*len(other))
	for k, v := range other {
		merged[k] = v
		merged[qualifiedKey(table, k)] = v
	}
	for k, v := range r {
		merged[k] = v
	}
	return merged
}

func qualifiedKey(table, column string) string { return canonicalKey(table + "." + column) }

// Pick returns a row with only the named columns. Missing columns are skipped.
func (r Row) Pick(names ...string) Row {
	picked := make(Row, len(names))
	for _, name := range names {
		key := canonicalKey(name)
		if v, ok := r[key]; ok {
			picked[key] = v
		}
	}
	return picked
}
