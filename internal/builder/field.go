package builder

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/tobsdb/flatdb/internal/props"
	"github.com/tobsdb/flatdb/internal/types"
	"github.com/tobsdb/flatdb/pkg"
)

type IndexLevel int

const (
	IndexLevelNone IndexLevel = iota
	IndexLevelUnique
	IndexLevelPrimary
)

type Field struct {
	Name        string
	Properties  map[props.FieldProp]string
	BuiltinType types.FieldType

	Table *Table `json:"-"`
}

func (f *Field) IndexLevel() IndexLevel {
	if key, ok := f.Properties[props.FieldPropKey]; ok && key == props.KeyPropPrimary {
		return IndexLevelPrimary
	}
	if f.boolProp(props.FieldPropUnique) {
		return IndexLevelUnique
	}
	return IndexLevelNone
}

func (f *Field) IsPrimaryKey() bool { return f.IndexLevel() == IndexLevelPrimary }

func (f *Field) IsForeignKey() bool {
	_, ok := f.Properties[props.FieldPropRelation]
	return ok
}

func (f *Field) IsOptional() bool { return f.boolProp(props.FieldPropOptional) }

// Relation returns the table and field named by relation(table.field).
func (f *Field) Relation() (string, string, bool) {
	relation, ok := f.Properties[props.FieldPropRelation]
	if !ok {
		return "", "", false
	}
	rel_table_name, rel_field_name := props.ParseRelationProp(relation)
	return rel_table_name, rel_field_name, true
}

func (f *Field) boolProp(prop props.FieldProp) bool {
	v, ok := f.Properties[prop]
	if !ok {
		return false
	}
	b, _ := strconv.ParseBool(v)
	return b
}

// field local rules:
// - primary key field must be type Int
// - can't have key primary and optional prop true
// - can't have Json type and unique prop true
// - can't have Json type and default prop
// - a default has to be a valid value of the field's type
func CheckFieldRules(field *Field) error {
	if field.IndexLevel() == IndexLevelPrimary {
		if field.BuiltinType != types.FieldTypeInt {
			return fmt.Errorf("field(%s %s key(primary)) must be type Int", field.Name, field.BuiltinType)
		}
		if field.IsOptional() {
			return fmt.Errorf("field(%s %s key(primary)) cannot be optional", field.Name, field.BuiltinType)
		}
	}

	if field.BuiltinType == types.FieldTypeJson {
		if _, ok := field.Properties[props.FieldPropDefault]; ok {
			return fmt.Errorf("field(%s %s) cannot have default prop", field.Name, field.BuiltinType)
		}
		if field.IndexLevel() == IndexLevelUnique {
			return fmt.Errorf("field(%s %s) cannot have unique prop", field.Name, field.BuiltinType)
		}
		if field.IsForeignKey() {
			return fmt.Errorf("field(%s %s) cannot have relation prop", field.Name, field.BuiltinType)
		}
	}

	if def, ok := field.Properties[props.FieldPropDefault]; ok && def != "now" {
		if _, err := field.parseDefault(def); err != nil {
			return fmt.Errorf("field(%s %s) has an invalid default: %s", field.Name, field.BuiltinType, def)
		}
	}

	return nil
}

// ValidateType checks input against the field's type and coerces it to the stored form.
// A nil input falls back to the default prop, then to nil for optional fields.
func (f *Field) ValidateType(input any) (any, error) {
	if input == nil {
		def, ok := f.Properties[props.FieldPropDefault]
		if !ok {
			if f.IsOptional() {
				return nil, nil
			}
			return nil, badRequest(fmt.Sprintf("Missing required field: %s", f.Name))
		}
		if f.BuiltinType == types.FieldTypeDate && def == "now" {
			return time.Now().UTC(), nil
		}
		return f.parseDefault(def)
	}

	switch f.BuiltinType {
	case types.FieldTypeInt:
		switch input := input.(type) {
		case int, int32, int64:
			return pkg.NumToInt(input), nil
		case float32, float64:
			if pkg.IsWholeNumber(input) {
				return pkg.NumToInt(input), nil
			}
		}
	case types.FieldTypeFloat:
		switch input := input.(type) {
		case float64:
			return input, nil
		case float32:
			return float64(input), nil
		case int, int32, int64:
			return float64(pkg.NumToInt(input)), nil
		}
	case types.FieldTypeString:
		if input, ok := input.(string); ok {
			return input, nil
		}
	case types.FieldTypeBool:
		if input, ok := input.(bool); ok {
			return input, nil
		}
	case types.FieldTypeDate:
		switch input := input.(type) {
		case time.Time:
			return input.UTC(), nil
		case string:
			date, err := time.Parse(time.RFC3339Nano, input)
			if err == nil {
				return date.UTC(), nil
			}
		case float64, int, int64:
			return time.UnixMilli(int64(pkg.NumToInt(input))).UTC(), nil
		}
	case types.FieldTypeJson:
		if _, err := json.Marshal(input); err == nil {
			return input, nil
		}
	}

	return nil, invalidFieldTypeError(input, f.Name)
}

// updateValue works out the field's new value from its current value and an update input.
// Unlike inserts, a nil input clears the field instead of applying the default.
func (f *Field) updateValue(current, input any) (any, error) {
	if input == nil {
		if !f.IsOptional() {
			return nil, badRequest(fmt.Sprintf("Missing required field: %s", f.Name))
		}
		return nil, nil
	}

	if ops, ok := input.(map[string]any); ok {
		switch f.BuiltinType {
		case types.FieldTypeInt, types.FieldTypeFloat:
			return f.applyNumericUpdate(current, ops)
		}
	}
	return f.ValidateType(input)
}

func (f *Field) applyNumericUpdate(current any, ops map[string]any) (any, error) {
	sum_int := pkg.NumToInt(current)
	sum_float, _ := current.(float64)

	for op, operand := range ops {
		if operand == nil {
			return nil, invalidFieldTypeError(operand, f.Name)
		}
		n, err := f.ValidateType(operand)
		if err != nil {
			return nil, err
		}

		sign := 1
		switch op {
		case "increment":
		case "decrement":
			sign = -1
		default:
			return nil, badRequest(fmt.Sprintf("Invalid update operation %s for %s", op, f.Name))
		}

		if f.BuiltinType == types.FieldTypeInt {
			sum_int += sign * n.(int)
		} else {
			sum_float += float64(sign) * n.(float64)
		}
	}

	if f.BuiltinType == types.FieldTypeInt {
		return sum_int, nil
	}
	return sum_float, nil
}

func (f *Field) parseDefault(def string) (any, error) {
	switch f.BuiltinType {
	case types.FieldTypeInt:
		return strconv.Atoi(def)
	case types.FieldTypeFloat:
		return strconv.ParseFloat(def, 64)
	case types.FieldTypeBool:
		return strconv.ParseBool(def)
	case types.FieldTypeString:
		if unquoted, err := strconv.Unquote(def); err == nil {
			return unquoted, nil
		}
		return def, nil
	case types.FieldTypeDate:
		if def == "now" {
			return time.Now().UTC(), nil
		}
		date, err := time.Parse(time.RFC3339Nano, def)
		if err != nil {
			return nil, err
		}
		return date.UTC(), nil
	}
	return nil, fmt.Errorf("Type %s cannot have a default", f.BuiltinType)
}

func invalidFieldTypeError(input any, field_name string) error {
	return badRequest(fmt.Sprintf("Invalid field type for %s: %T", field_name, input))
}

