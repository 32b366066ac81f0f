package parser

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// PrintAreas returns, per sheet, the first print area the workbook defines,
// as 0-based bounds.
func PrintAreas(f *excelize.File) map[string]Bounds {
	result := make(map[string]Bounds)

	for _, dn := range f.GetDefinedName() {
		if !strings.EqualFold(dn.Name, "_xlnm.Print_Area") {
			continue
		}
		sheetName, areas := parsePrintAreaReference(dn.RefersTo)
		if sheetName == "" && dn.Scope != "" && dn.Scope != "Workbook" {
			sheetName = dn.Scope
		}
		if sheetName == "" || len(areas) == 0 {
			continue
		}
		if _, seen := result[sheetName]; !seen {
			result[sheetName] = areas[0]
		}
	}

	return result
}

// parsePrintAreaReference parses a print area reference string.
// Format: 'SheetName'!$A$1:$D$10 or SheetName!$A$1:$D$10,SheetName!$F$1:$G$4
func parsePrintAreaReference(ref string) (string, []Bounds) {
	var areas []Bounds

	var sheetName string
	for _, part := range strings.Split(ref, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		idx := strings.LastIndex(part, "!")
		if idx < 0 {
			continue
		}
		sheet := strings.Trim(part[:idx], "'")
		sheet = strings.ReplaceAll(sheet, "''", "'")
		if sheetName == "" {
			sheetName = sheet
		}

		if area, ok := parseRangeToBounds(part[idx+1:]); ok {
			areas = append(areas, area)
		}
	}

	return sheetName, areas
}

// parseRangeToBounds parses a range string like $A$1:$D$10. A single cell
// is a one-cell range.
func parseRangeToBounds(rangeStr string) (Bounds, bool) {
	rangeStr = strings.ReplaceAll(rangeStr, "$", "")

	parts := strings.Split(rangeStr, ":")
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	if len(parts) != 2 {
		return Bounds{}, false
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return Bounds{}, false
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return Bounds{}, false
	}
	if endRow < startRow {
		startRow, endRow = endRow, startRow
	}
	if endCol < startCol {
		startCol, endCol = endCol, startCol
	}

	return Bounds{
		MinRow: startRow - 1,
		MaxRow: endRow - 1,
		MinCol: startCol - 1,
		MaxCol: endCol - 1,
	}, true
}

// clipRows blanks every cell outside area, keeping sheet coordinates.
func clipRows(rows [][]string, area Bounds) [][]string {
	out := make([][]string, 0, len(rows))
	for rowIdx, row := range rows {
		if rowIdx < area.MinRow || rowIdx > area.MaxRow {
			out = append(out, nil)
			continue
		}
		clipped := make([]string, len(row))
		for colIdx := area.MinCol; colIdx <= area.MaxCol && colIdx < len(row); colIdx++ {
			clipped[colIdx] = row[colIdx]
		}
		out = append(out, clipped)
	}
	return out
}
