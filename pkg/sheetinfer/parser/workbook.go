// Package parser reads workbooks into units of CSV text.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
	"github.com/xuri/excelize/v2"
)

// ReadOptions controls how sheets become units.
type ReadOptions struct {
	// Consolidate joins all sheets, in sheet order, into a single unit
	// named models.ConsolidatedUnitName.
	Consolidate bool
	// PrintAreas limits each sheet that defines a print area to its first
	// print area.
	PrintAreas bool
}

// Load opens the workbook at path and renders each sheet as one unit.
func Load(path string, opts ReadOptions) (*models.Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readWorkbook(f, filepath.Base(path), opts)
}

// LoadReader is Load for an in-memory workbook such as an upload.
func LoadReader(r io.Reader, bookName string, opts ReadOptions) (*models.Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readWorkbook(f, bookName, opts)
}

func readWorkbook(f *excelize.File, bookName string, opts ReadOptions) (*models.Workbook, error) {
	wb := &models.Workbook{BookName: bookName, Consolidated: opts.Consolidate}

	var areas map[string]Bounds
	if opts.PrintAreas {
		areas = PrintAreas(f)
	}

	for i, sheetName := range f.GetSheetList() {
		var area *Bounds
		if a, ok := areas[sheetName]; ok {
			area = &a
		}
		rows, bounds, err := SheetRows(f, sheetName, area)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
		}
		text, err := RowsToCSV(rows)
		if err != nil {
			return nil, fmt.Errorf("render sheet %q: %w", sheetName, err)
		}
		wb.Units = append(wb.Units, models.Unit{
			Name:  sheetName,
			Index: i,
			Range: bounds.Range(),
			Text:  text,
		})
	}

	if opts.Consolidate {
		wb.Units = []models.Unit{Consolidate(wb.Units)}
	}
	return wb, nil
}

// Consolidate joins the text of units, in order, with newlines.
func Consolidate(units []models.Unit) models.Unit {
	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}
	return models.Unit{
		Name: models.ConsolidatedUnitName,
		Text: strings.Join(texts, "\n"),
	}
}
