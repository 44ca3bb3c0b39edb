package where

// Catalog resolves table names for qualified column references.
type Catalog interface {
	Table(name string) (TableDef, bool)
}

// TableDef is matched by identity when it is the ignore-table marker. Implementations
// whose dynamic type is not comparable are matched by TableName.
type TableDef interface {
	TableName() string
	Column(name string) (ColumnDef, bool)
}

type ColumnDef interface {
	IsPrimaryKey() bool
	IsForeignKey() bool
}

// ValueSource is a sub-query handle that can be materialized into a list, for IN and NOT IN.
type ValueSource interface {
	Values() ([]any, error)
}

// ExistenceSource is a sub-query handle for EXISTS and NOT EXISTS.
type ExistenceSource interface {
	Exists() (bool, error)
}

func isSubQuery(v any) bool {
	switch v.(type) {
	case ValueSource, ExistenceSource:
		return true
	}
	return false
}
