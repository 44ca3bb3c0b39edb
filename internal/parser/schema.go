package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tobsdb/flatdb/internal/props"
	"github.com/tobsdb/flatdb/internal/types"
	"github.com/tobsdb/flatdb/pkg"
)

type LineParserState int

const (
	ParserStateTableStart LineParserState = iota
	ParserStateTableEnd
	ParserStateNewField
	ParserStateIdle
)

type ParserData struct {
	Name         string
	Builtin_type types.FieldType
	Properties   map[props.FieldProp]string
}

const (
	table_prefix     = "$TABLE "
	table_prefix_len = len(table_prefix)
)

var (
	name_regexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	prop_regexp = regexp.MustCompile(`(\w+)\(([^)]*)\)`)
)

// LineParser reads one trimmed, non-comment line of a schema.
func LineParser(line string) (LineParserState, *ParserData, error) {
	if strings.HasPrefix(line, table_prefix) {
		return parseTableStart(line[table_prefix_len:])
	}
	if line == "}" {
		return ParserStateTableEnd, nil, nil
	}
	return parseField(line)
}

func parseTableStart(line string) (LineParserState, *ParserData, error) {
	line = strings.TrimSpace(line)
	if !strings.HasSuffix(line, "{") {
		return ParserStateIdle, nil, errors.New("Invalid line")
	}
	name := strings.TrimSpace(strings.TrimSuffix(line, "{"))
	if len(name) == 0 {
		return ParserStateIdle, nil, errors.New("Invalid line")
	}
	if strings.ContainsAny(name, " \t") {
		return ParserStateIdle, nil, errors.New("Table name cannot include space")
	}
	if !name_regexp.MatchString(name) {
		return ParserStateIdle, nil, errors.New("Table name contains invalid characters")
	}
	return ParserStateTableStart, &ParserData{Name: name}, nil
}

func parseField(line string) (LineParserState, *ParserData, error) {
	splits := pkg.Filter(strings.Fields(line), func(s string) bool { return len(s) > 0 })
	if len(splits) == 0 {
		return ParserStateIdle, nil, errors.New("Invalid line")
	}

	name := splits[0]
	if !name_regexp.MatchString(name) {
		return ParserStateIdle, nil, errors.New("Field name contains invalid characters")
	}
	if len(splits) < 2 {
		return ParserStateIdle, nil, fmt.Errorf("Field %s does not have a type", name)
	}

	builtin_type := types.FieldType(splits[1])
	if !builtin_type.IsValid() {
		return ParserStateIdle, nil, fmt.Errorf("Invalid field type: %s", builtin_type)
	}

	field_props, err := parseRawFieldProps(strings.Join(splits[2:], " "))
	if err != nil {
		return ParserStateIdle, nil, err
	}

	return ParserStateNewField, &ParserData{
		Name:         name,
		Builtin_type: builtin_type,
		Properties:   field_props,
	}, nil
}

func parseRawFieldProps(raw string) (map[props.FieldProp]string, error) {
	field_props := make(map[props.FieldProp]string)

	for _, match := range prop_regexp.FindAllStringSubmatch(raw, -1) {
		prop, value := props.FieldProp(match[1]), strings.TrimSpace(match[2])
		if !prop.IsValid() {
			return nil, fmt.Errorf("Invalid field prop: %s", prop)
		}
		if len(value) == 0 {
			return nil, fmt.Errorf("No value for prop: %s", prop)
		}
		if err := props.ValidatePropValue(prop, value); err != nil {
			return nil, err
		}
		field_props[prop] = value
	}

	return field_props, nil
}
