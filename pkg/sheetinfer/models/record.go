package models

// Record is one validated row keyed by field name. Values are string,
// int64, float64, bool, or nil for an explicit missing value.
type Record map[string]any

// Values returns the record's values in the given field order.
func (r Record) Values(names []string) []any {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = r[n]
	}
	return out
}

// FieldFailure explains why one field of a candidate record was rejected.
type FieldFailure struct {
	// Field is the schema field name, or the unexpected key.
	Field string `json:"field"`
	// OriginalName is the source header of the field, when known.
	OriginalName string `json:"original_name,omitempty"`
	// Description is the field's description, surfaced as a hint.
	Description string `json:"description,omitempty"`
	// Value is the raw value that failed.
	Value any `json:"value,omitempty"`
	// Reason is a short human-readable cause.
	Reason string `json:"reason"`
}

// RecordRejection is a candidate row dropped during extraction.
type RecordRejection struct {
	// Row is the 0-based position of the candidate in the service response.
	Row int `json:"row"`
	// Failures lists every offending field.
	Failures []FieldFailure `json:"failures"`
}
