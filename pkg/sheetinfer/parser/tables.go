package parser

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Bounds is the 0-based inclusive box enclosing a sheet's non-empty cells.
type Bounds struct {
	MinRow, MaxRow int
	MinCol, MaxCol int
}

// Empty reports whether the sheet had no non-empty cell.
func (b Bounds) Empty() bool {
	return b.MinRow < 0
}

// Range renders the bounds in Excel notation, e.g. "A1:D10".
func (b Bounds) Range() string {
	if b.Empty() {
		return ""
	}
	startCell, _ := excelize.CoordinatesToCellName(b.MinCol+1, b.MinRow+1)
	endCell, _ := excelize.CoordinatesToCellName(b.MaxCol+1, b.MaxRow+1)
	return fmt.Sprintf("%s:%s", startCell, endCell)
}

// DataBounds finds the bounding box of non-empty cells.
func DataBounds(rows [][]string) Bounds {
	b := Bounds{MinRow: -1, MaxRow: -1, MinCol: -1, MaxCol: -1}

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if isBlank(cell) {
				continue
			}
			if b.MinRow < 0 || rowIdx < b.MinRow {
				b.MinRow = rowIdx
			}
			if b.MaxRow < 0 || rowIdx > b.MaxRow {
				b.MaxRow = rowIdx
			}
			if b.MinCol < 0 || colIdx < b.MinCol {
				b.MinCol = colIdx
			}
			if b.MaxCol < 0 || colIdx > b.MaxCol {
				b.MaxCol = colIdx
			}
		}
	}

	return b
}
