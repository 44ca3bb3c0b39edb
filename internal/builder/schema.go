package builder

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tobsdb/flatdb/internal/where"
	"github.com/tobsdb/flatdb/pkg"
)

type Schema struct {
	Tables *pkg.InsertSortMap[string, *Table]
	// Source is the schema text the tables were parsed from.
	Source string

	// held shared by reads and writes to disk, exclusively by row changes
	locker      sync.RWMutex
	base        string
	last_change atomic.Int64
	last_write  atomic.Int64
}

func (s *Schema) GetLocker() *sync.RWMutex { return &s.locker }

// Table looks a table up by exact name, then case-insensitively.
func (s *Schema) Table(name string) (where.TableDef, bool) {
	t, ok := s.GetTable(name)
	if !ok {
		return nil, false
	}
	return t, true
}

func (s *Schema) GetTable(name string) (*Table, bool) {
	return pkg.FoldGet(s.Tables, name)
}

// Base is the directory the schema is written to.
func (s *Schema) Base() string { return s.base }

func (s *Schema) SetBase(base string) { s.base = base }

// InMem reports whether the schema skips all disk IO.
func (s *Schema) InMem() bool { return len(s.base) == 0 }

func (s *Schema) UpdateLastChange() { s.last_change.Store(time.Now().UnixNano()) }

// Dirty reports whether rows changed since the last write.
func (s *Schema) Dirty() bool { return s.last_change.Load() > s.last_write.Load() }

func ValidateSchemaRelations(schema *Schema) error {
	for _, table := range schema.Tables.Values() {
		for _, field := range table.Fields.Values() {
			rel_table_name, rel_field_name, is_relation := field.Relation()
			if !is_relation {
				continue
			}

			invalidRelationError := ThrowInvalidRelationError(table.Name, rel_table_name, field.Name)

			rel_table, rel_table_exists := schema.Tables.Idx[rel_table_name]
			if !rel_table_exists {
				return invalidRelationError(fmt.Sprintf("\"%s\" is not a valid table", rel_table_name))
			}

			rel_field, rel_field_ok := rel_table.Fields.Idx[rel_field_name]
			if !rel_field_ok {
				return invalidRelationError(
					fmt.Sprintf("\"%s\" is not a valid field on table %s", rel_field_name, rel_table_name),
				)
			}

			if rel_field.BuiltinType != field.BuiltinType {
				return invalidRelationError("field types must match")
			}
		}
	}

	return nil
}

func ThrowInvalidRelationError(table_name, rel_table_name, field_name string) func(string) error {
	return func(reason string) error {
		return fmt.Errorf(
			"Invalid relation between %s and %s in field %s; %s",
			table_name,
			rel_table_name,
			field_name,
			reason,
		)
	}
}
