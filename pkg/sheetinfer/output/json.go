// Package output persists an OverallResult as JSON, xlsx or SQLite.
package output

import (
	"encoding/json"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
)

// Report is the JSON document written for a run.
type Report struct {
	*models.OverallResult
	Summary []models.UnitSummary `json:"summary"`
}

// ToJSON serializes a run result together with its per-unit summary.
func ToJSON(r *models.OverallResult, pretty bool) ([]byte, error) {
	return marshal(Report{OverallResult: r, Summary: r.Summary()}, pretty)
}

// UnitToJSON serializes one unit result.
func UnitToJSON(u *models.UnitResult, pretty bool) ([]byte, error) {
	return marshal(u, pretty)
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
