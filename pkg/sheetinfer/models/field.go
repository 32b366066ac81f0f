// Package models defines data structures for schema inference and extraction.
package models

// FieldType is the closed set of value types a field may carry.
type FieldType string

const (
	// TypeString accepts text values.
	TypeString FieldType = "string"
	// TypeInteger accepts whole numbers; grouping separators are stripped.
	TypeInteger FieldType = "integer"
	// TypeFloat accepts decimal numbers; grouping separators are stripped.
	TypeFloat FieldType = "float"
	// TypeBoolean accepts true/false, yes/no and 1/0, case-insensitively.
	TypeBoolean FieldType = "boolean"
)

// FieldTypes lists every supported FieldType in a stable order.
var FieldTypes = []FieldType{TypeString, TypeInteger, TypeFloat, TypeBoolean}

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeString, TypeInteger, TypeFloat, TypeBoolean:
		return true
	}
	return false
}

// FieldDefinition describes one proposed column.
type FieldDefinition struct {
	// Name is the cleaned identifier, unique within its schema.
	Name string `json:"name" jsonschema_description:"The field/column name as a clean snake_case identifier"`
	// OriginalName is the source header text, empty when unknown.
	OriginalName string `json:"original_name" jsonschema_description:"Original column header text from the sheet, or empty if there is none"`
	// Type is the value type of the field.
	Type FieldType `json:"field_type" jsonschema:"enum=string,enum=integer,enum=float,enum=boolean" jsonschema_description:"Value type of the field"`
	// Description explains what the field represents.
	Description string `json:"description" jsonschema_description:"What this field represents"`
	// Optional marks fields that accept an explicit missing value.
	Optional bool `json:"optional" jsonschema_description:"Whether the field may be null for some rows"`
}
