// Package validator compiles a SchemaDefinition into a runtime record checker.
//
// A compiled Validator is an ordered table of fields, each pairing a primitive
// checker for its type with the provenance of the source column. Optional
// fields additionally accept nil, the explicit missing marker. A key that is
// absent from a candidate record is never treated as missing.
package validator

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type checkFunc func(any) (any, error)

var checkers = map[models.FieldType]checkFunc{
	models.TypeString:  CoerceString,
	models.TypeInteger: CoerceInteger,
	models.TypeFloat:   CoerceFloat,
	models.TypeBoolean: CoerceBoolean,
}

// Field is one compiled column.
type Field struct {
	// Name is the field identifier.
	Name string
	// Type is the field's value type.
	Type models.FieldType
	// Optional reports whether nil is accepted.
	Optional bool
	// OriginalName is provenance only and takes no part in validation.
	OriginalName string
	// Description is surfaced on validation failure.
	Description string

	check checkFunc
}

// Validator checks candidate records against a compiled schema. It is
// immutable after Compile and safe for concurrent use.
type Validator struct {
	unit   string
	fields []Field
	index  map[string]int
}

// Compile builds a Validator from def. It fails with *SchemaIntegrityError
// when the schema has no fields, a name that is not an identifier, or a
// duplicate name, and with *SchemaTypeError for a type outside the supported
// set.
func Compile(def *models.SchemaDefinition) (*Validator, error) {
	if def == nil || len(def.Fields) == 0 {
		unit := ""
		if def != nil {
			unit = def.UnitName
		}
		return nil, &SchemaIntegrityError{Unit: unit, Reason: "schema has no fields"}
	}

	v := &Validator{
		unit:   def.UnitName,
		fields: make([]Field, 0, len(def.Fields)),
		index:  make(map[string]int, len(def.Fields)),
	}
	for _, fd := range def.Fields {
		if !identifierPattern.MatchString(fd.Name) {
			return nil, &SchemaIntegrityError{Unit: def.UnitName, Field: fd.Name, Reason: "name is not a valid identifier"}
		}
		if _, dup := v.index[fd.Name]; dup {
			return nil, &SchemaIntegrityError{Unit: def.UnitName, Field: fd.Name, Reason: "duplicate field name"}
		}
		check, ok := checkers[fd.Type]
		if !ok {
			return nil, &SchemaTypeError{Unit: def.UnitName, Field: fd.Name, Type: fd.Type}
		}
		v.index[fd.Name] = len(v.fields)
		v.fields = append(v.fields, Field{
			Name:         fd.Name,
			Type:         fd.Type,
			Optional:     fd.Optional,
			OriginalName: fd.OriginalName,
			Description:  fd.Description,
			check:        check,
		})
	}
	return v, nil
}

// Unit returns the name of the unit the schema belongs to.
func (v *Validator) Unit() string { return v.unit }

// Fields returns a copy of the compiled fields in schema order.
func (v *Validator) Fields() []Field {
	out := make([]Field, len(v.fields))
	copy(out, v.fields)
	return out
}

// FieldNames returns the field names in schema order.
func (v *Validator) FieldNames() []string {
	out := make([]string, len(v.fields))
	for i, f := range v.fields {
		out[i] = f.Name
	}
	return out
}

// Schema rebuilds the SchemaDefinition the validator was compiled from.
func (v *Validator) Schema() *models.SchemaDefinition {
	def := &models.SchemaDefinition{UnitName: v.unit, Fields: make([]models.FieldDefinition, len(v.fields))}
	for i, f := range v.fields {
		def.Fields[i] = models.FieldDefinition{
			Name:         f.Name,
			OriginalName: f.OriginalName,
			Type:         f.Type,
			Description:  f.Description,
			Optional:     f.Optional,
		}
	}
	return def
}

// Validate checks raw against the schema and returns a new record holding
// the coerced values. Every field must be present; optional fields may hold
// nil. Keys outside the schema are rejected. On failure the error is a
// *RecordError naming every offending field.
func (v *Validator) Validate(raw map[string]any) (models.Record, error) {
	out := make(models.Record, len(v.fields))
	var failures []models.FieldFailure

	for _, f := range v.fields {
		val, present := raw[f.Name]
		switch {
		case !present:
			failures = append(failures, f.failure(nil, "field is absent"))
		case val == nil && f.Optional:
			out[f.Name] = nil
		case val == nil:
			failures = append(failures, f.failure(nil, "required value is missing"))
		default:
			coerced, err := f.check(val)
			if err != nil {
				failures = append(failures, f.failure(val, fmt.Sprintf("%v for %s field", err, f.Type)))
				continue
			}
			out[f.Name] = coerced
		}
	}

	for key, val := range raw {
		if _, known := v.index[key]; !known {
			failures = append(failures, models.FieldFailure{Field: key, Value: val, Reason: "unknown field"})
		}
	}

	if len(failures) > 0 {
		sortFailures(failures, v.index)
		return nil, &RecordError{Unit: v.unit, Failures: failures}
	}
	return out, nil
}

func (f Field) failure(val any, reason string) models.FieldFailure {
	return models.FieldFailure{
		Field:        f.Name,
		OriginalName: f.OriginalName,
		Description:  f.Description,
		Value:        val,
		Reason:       reason,
	}
}

// sortFailures orders schema fields first in schema order, then unknown
// keys alphabetically, so error text is stable across map iteration.
func sortFailures(failures []models.FieldFailure, index map[string]int) {
	rank := func(f models.FieldFailure) int {
		if i, ok := index[f.Field]; ok {
			return i
		}
		return len(index)
	}
	sort.SliceStable(failures, func(i, j int) bool {
		ri, rj := rank(failures[i]), rank(failures[j])
		if ri != rj {
			return ri < rj
		}
		return failures[i].Field < failures[j].Field
	})
}

// JSONSchema describes the record shape as a JSON Schema object suitable for
// schema-constrained generation. Every field is required; optional fields
// are nullable instead.
func (v *Validator) JSONSchema() map[string]any {
	props := make(map[string]any, len(v.fields))
	required := make([]string, len(v.fields))
	for i, f := range v.fields {
		var typ any = jsonType(f.Type)
		if f.Optional {
			typ = []string{jsonType(f.Type), "null"}
		}
		prop := map[string]any{"type": typ}
		if f.Description != "" {
			prop["description"] = f.Description
		}
		props[f.Name] = prop
		required[i] = f.Name
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func jsonType(t models.FieldType) string {
	switch t {
	case models.TypeInteger:
		return "integer"
	case models.TypeFloat:
		return "number"
	case models.TypeBoolean:
		return "boolean"
	}
	return "string"
}
