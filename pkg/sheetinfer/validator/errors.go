package validator

import (
	"fmt"
	"strings"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
)

// SchemaTypeError reports a field whose type is outside the supported set.
type SchemaTypeError struct {
	Unit  string
	Field string
	Type  models.FieldType
}

func (e *SchemaTypeError) Error() string {
	return fmt.Sprintf("schema for unit %q: field %q has unknown type %q", e.Unit, e.Field, e.Type)
}

// SchemaIntegrityError reports a structurally broken schema: no fields, an
// invalid identifier, or a duplicate field name.
type SchemaIntegrityError struct {
	Unit   string
	Field  string
	Reason string
}

func (e *SchemaIntegrityError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema for unit %q: %s", e.Unit, e.Reason)
	}
	return fmt.Sprintf("schema for unit %q: field %q: %s", e.Unit, e.Field, e.Reason)
}

// RecordError is returned when a candidate record does not satisfy the
// validator. Failures names every offending field.
type RecordError struct {
	Unit     string
	Failures []models.FieldFailure
}

func (e *RecordError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return fmt.Sprintf("record rejected for unit %q: %s", e.Unit, strings.Join(parts, "; "))
}

// Fields returns the names of the offending fields.
func (e *RecordError) Fields() []string {
	out := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Field
	}
	return out
}
