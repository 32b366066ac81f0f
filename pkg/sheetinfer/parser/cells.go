package parser

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetRows returns the formatted cell text of a sheet, cropped to its data
// bounds and padded so every row has the same width. A non-nil area limits
// the sheet to that region first.
func SheetRows(f *excelize.File, sheetName string, area *Bounds) ([][]string, Bounds, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, Bounds{}, err
	}
	if area != nil {
		rows = clipRows(rows, *area)
	}
	b := DataBounds(rows)
	if b.Empty() {
		return nil, b, nil
	}

	width := b.MaxCol - b.MinCol + 1
	out := make([][]string, 0, b.MaxRow-b.MinRow+1)
	for rowIdx := b.MinRow; rowIdx <= b.MaxRow; rowIdx++ {
		cropped := make([]string, width)
		if rowIdx < len(rows) {
			row := rows[rowIdx]
			for colIdx := b.MinCol; colIdx <= b.MaxCol && colIdx < len(row); colIdx++ {
				cropped[colIdx-b.MinCol] = strings.TrimSpace(row[colIdx])
			}
		}
		out = append(out, cropped)
	}
	return out, b, nil
}

// RowsToCSV renders rows as CSV text with "\n" line endings.
func RowsToCSV(rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
