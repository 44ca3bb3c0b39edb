package props

import (
	"fmt"
	"strconv"
	"strings"
)

func ParseRelationPropSafe(relation string) (string, string, error) {
	parsed_rel := strings.Split(relation, ".")
	if len(parsed_rel) != 2 {
		return "", "", fmt.Errorf("Invalid syntax: relation(%s)", relation)
	}
	table, field := strings.TrimSpace(parsed_rel[0]), strings.TrimSpace(parsed_rel[1])
	if len(table) == 0 || len(field) == 0 {
		return "", "", fmt.Errorf("Invalid syntax: relation(%s)", relation)
	}
	return table, field, nil
}

func ParseRelationProp(relation string) (string, string) {
	table, field, _ := ParseRelationPropSafe(relation)
	return table, field
}

// ParseBoolPropSafe reads the value of a true/false prop such as optional(...) or unique(...).
func ParseBoolPropSafe(prop FieldProp, value string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%s(%s) is not a valid prop; expected true or false", prop, value)
	}
	return b, nil
}

// ValidatePropValue checks a prop value before it reaches the schema builder.
func ValidatePropValue(prop FieldProp, value string) error {
	switch prop {
	case FieldPropOptional, FieldPropUnique:
		_, err := ParseBoolPropSafe(prop, value)
		return err
	case FieldPropRelation:
		_, _, err := ParseRelationPropSafe(value)
		return err
	case FieldPropKey:
		if strings.TrimSpace(value) != KeyPropPrimary {
			return fmt.Errorf("key(%s) is not a valid prop; only key(primary) is supported", value)
		}
	}
	return nil
}
