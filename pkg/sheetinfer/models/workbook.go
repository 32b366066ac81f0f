package models

// ConsolidatedUnitName names the single unit produced when all sheets of a
// workbook are merged.
const ConsolidatedUnitName = "consolidated table"

// Unit is one logical input blob: a sheet rendered as CSV text, or every
// sheet concatenated in consolidation mode.
type Unit struct {
	// Name is the sheet name, or ConsolidatedUnitName.
	Name string `json:"name"`
	// Index is the 0-based position of the unit in the source workbook.
	Index int `json:"index"`
	// Range is the cell range the text was cut from (e.g. "A1:D12"), empty
	// for consolidated or blank units.
	Range string `json:"range,omitempty"`
	// Text is the CSV rendering of the unit.
	Text string `json:"text"`
}

// Workbook is the ordered set of units read from one file.
type Workbook struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// Consolidated reports whether sheets were merged into one unit.
	Consolidated bool `json:"consolidated"`
	// Units lists the units in sheet order.
	Units []Unit `json:"units"`
}

// TextByName returns the raw text of every unit keyed by unit name.
func (w *Workbook) TextByName() map[string]string {
	out := make(map[string]string, len(w.Units))
	for _, u := range w.Units {
		out[u.Name] = u.Text
	}
	return out
}
