package builder

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/tobsdb/flatdb/internal/parser"
	"github.com/tobsdb/flatdb/pkg"
)

func ParseSchema(schema_data string) (*Schema, error) {
	schema := &Schema{Tables: pkg.NewInsertSortMap[string, *Table](), Source: schema_data}

	scanner := bufio.NewScanner(strings.NewReader(schema_data))
	line_idx := 0

	var current_table *Table

	for scanner.Scan() {
		line_idx++
		line := strings.TrimSpace(scanner.Text())

		// Ignore empty lines & comments
		if len(line) == 0 || strings.HasPrefix(line, "//") {
			continue
		}

		state, data, err := parser.LineParser(line)
		if err != nil {
			return nil, ParseLineError(line_idx, err.Error())
		}

		switch state {
		case parser.ParserStateTableStart:
			if current_table != nil {
				return nil, ParseLineError(line_idx, fmt.Sprintf("Table %s is not closed", current_table.Name))
			}
			if _, exists := pkg.FoldGet(schema.Tables, data.Name); exists {
				return nil, ParseLineError(line_idx, fmt.Sprintf("Duplicate table %s", data.Name))
			}
			current_table = NewTable(schema, data.Name)
		case parser.ParserStateTableEnd:
			if current_table == nil {
				return nil, ParseLineError(line_idx, "Unexpected }")
			}
			schema.Tables.Push(current_table.Name, current_table)
			current_table = nil
		case parser.ParserStateNewField:
			if current_table == nil {
				return nil, ParseLineError(line_idx, fmt.Sprintf("Field %s is outside a table", data.Name))
			}
			if _, exists := pkg.FoldGet(current_table.Fields, data.Name); exists {
				return nil, ParseLineError(line_idx, fmt.Sprintf("Duplicate field %s", data.Name))
			}
			new_field := &Field{
				Name:        data.Name,
				Properties:  data.Properties,
				BuiltinType: data.Builtin_type,
				Table:       current_table,
			}

			index_level := new_field.IndexLevel()
			if index_level == IndexLevelPrimary && current_table.PrimaryKey() != nil {
				return nil, ParseLineError(line_idx, "Table can't have multiple primary keys")
			}

			if err := CheckFieldRules(new_field); err != nil {
				return nil, ParseLineError(line_idx, err.Error())
			}

			current_table.Fields.Push(new_field.Name, new_field)

			if index_level > IndexLevelNone {
				current_table.Indexes = append(current_table.Indexes, new_field.Name)
			}
			if index_level == IndexLevelUnique {
				current_table.indexes.Set(new_field.Name, NewTDBTableIndexMap())
			}
		}
	}

	if current_table != nil {
		return nil, fmt.Errorf("Table %s is not closed", current_table.Name)
	}

	if err := ValidateSchemaRelations(schema); err != nil {
		return nil, err
	}

	return schema, nil
}

func ParseLineError(line int, reason string) error {
	return fmt.Errorf("Error parsing line %d: %s", line, reason)
}
