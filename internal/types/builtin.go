package types

import "slices"

var VALID_BUILTIN_TYPES = []FieldType{
	FieldTypeInt, FieldTypeString, FieldTypeDate,
	FieldTypeFloat, FieldTypeBool, FieldTypeJson,
}

type FieldType string

const (
	FieldTypeInt    FieldType = "Int"
	FieldTypeString FieldType = "String"
	FieldTypeDate   FieldType = "Date"
	FieldTypeFloat  FieldType = "Float"
	FieldTypeBool   FieldType = "Bool"
	// holds nested lists and objects
	FieldTypeJson FieldType = "Json"
)

func (t FieldType) IsValid() bool {
	return slices.Contains(VALID_BUILTIN_TYPES, t)
}
