package models

import (
	"strconv"
	"strings"
	"unicode"
)

// SchemaDefinition is the ordered field list proposed for one unit.
type SchemaDefinition struct {
	// UnitName is the sheet identifier the schema was inferred from.
	UnitName string `json:"unit_name" jsonschema_description:"Name of the source sheet"`
	// Fields lists the columns in output order.
	Fields []FieldDefinition `json:"fields" jsonschema_description:"List of field definitions for the table"`
}

// Clone returns a deep copy of the schema.
func (s *SchemaDefinition) Clone() *SchemaDefinition {
	if s == nil {
		return nil
	}
	out := &SchemaDefinition{UnitName: s.UnitName}
	if s.Fields != nil {
		out.Fields = make([]FieldDefinition, len(s.Fields))
		copy(out.Fields, s.Fields)
	}
	return out
}

// FieldNames returns the field names in schema order.
func (s *SchemaDefinition) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Normalize returns a copy of the schema whose field names are clean,
// unique identifiers. Names are lowered to snake_case, and an empty name
// falls back to OriginalName. A later field whose normalized name is already
// taken gets the first free suffix _2, _3, ...
// OriginalName, Type and the remaining attributes are left untouched.
func (s *SchemaDefinition) Normalize() *SchemaDefinition {
	out := s.Clone()
	taken := make(map[string]bool, len(out.Fields))
	for i := range out.Fields {
		src := out.Fields[i].Name
		if strings.TrimSpace(src) == "" {
			src = out.Fields[i].OriginalName
		}
		base := NormalizeFieldName(src)
		name := base
		for n := 2; taken[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		taken[name] = true
		out.Fields[i].Name = name
	}
	return out
}

// NormalizeFieldName converts arbitrary header text into a lower snake_case
// identifier. Runs of non-alphanumeric characters collapse to a single
// underscore; a leading digit is prefixed with "f_"; empty input yields "field".
func NormalizeFieldName(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSep = true
	}
	name := b.String()
	if name == "" {
		return "field"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "f_" + name
	}
	return name
}
