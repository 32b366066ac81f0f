package models

import "sort"

// Pipeline stages a unit can fail in.
const (
	StageSchemaInference = "schema_inference"
	StageSchemaCompile   = "schema_compile"
	StageExtraction      = "extraction"
)

// UnitResult is the complete, validated output of one unit.
type UnitResult struct {
	// UnitName identifies the unit.
	UnitName string `json:"unit_name"`
	// Index is the unit's position in the source workbook.
	Index int `json:"index"`
	// Schema is the schema the records conform to.
	Schema *SchemaDefinition `json:"schema"`
	// Records holds the accepted rows in source order.
	Records []Record `json:"records"`
	// Rejected holds the rows the validator dropped.
	Rejected []RecordRejection `json:"rejected,omitempty"`
}

// UnitFailure records why a unit contributed no rows.
type UnitFailure struct {
	// UnitName identifies the unit.
	UnitName string `json:"unit_name"`
	// Index is the unit's position in the source workbook.
	Index int `json:"index"`
	// Stage is one of the Stage* constants.
	Stage string `json:"stage"`
	// Reason is the error message.
	Reason string `json:"reason"`
}

// OverallResult aggregates every unit of a run.
type OverallResult struct {
	// RunID identifies the run.
	RunID string `json:"run_id"`
	// BookName is the source workbook file name, when known.
	BookName string `json:"book_name,omitempty"`
	// Units maps unit name to its successful result.
	Units map[string]*UnitResult `json:"units"`
	// Failures maps unit name to its failure.
	Failures map[string]*UnitFailure `json:"failures"`
	// Schemas maps unit name to the schema used, including units whose
	// extraction later failed.
	Schemas map[string]*SchemaDefinition `json:"schemas"`
}

// NewOverallResult returns an empty result.
func NewOverallResult(runID string) *OverallResult {
	return &OverallResult{
		RunID:    runID,
		Units:    make(map[string]*UnitResult),
		Failures: make(map[string]*UnitFailure),
		Schemas:  make(map[string]*SchemaDefinition),
	}
}

// Has reports whether the unit already contributed a result or a failure.
func (r *OverallResult) Has(unit string) bool {
	if _, ok := r.Units[unit]; ok {
		return true
	}
	_, ok := r.Failures[unit]
	return ok
}

// UnitSummary is the per-unit line of a run report.
type UnitSummary struct {
	UnitName string `json:"unit_name"`
	Index    int    `json:"index"`
	OK       bool   `json:"ok"`
	Rows     int    `json:"rows"`
	Rejected int    `json:"rejected"`
	Stage    string `json:"stage,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Summary reports, for every unit, either its row count or its failure,
// ordered by source index then name.
func (r *OverallResult) Summary() []UnitSummary {
	out := make([]UnitSummary, 0, len(r.Units)+len(r.Failures))
	for _, u := range r.Units {
		out = append(out, UnitSummary{
			UnitName: u.UnitName,
			Index:    u.Index,
			OK:       true,
			Rows:     len(u.Records),
			Rejected: len(u.Rejected),
		})
	}
	for _, f := range r.Failures {
		out = append(out, UnitSummary{
			UnitName: f.UnitName,
			Index:    f.Index,
			Stage:    f.Stage,
			Reason:   f.Reason,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Index != out[j].Index {
			return out[i].Index < out[j].Index
		}
		return out[i].UnitName < out[j].UnitName
	})
	return out
}

// OrderedUnits returns the successful unit results ordered by source index
// then name.
func (r *OverallResult) OrderedUnits() []*UnitResult {
	out := make([]*UnitResult, 0, len(r.Units))
	for _, u := range r.Units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Index != out[j].Index {
			return out[i].Index < out[j].Index
		}
		return out[i].UnitName < out[j].UnitName
	})
	return out
}
