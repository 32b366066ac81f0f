package output

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
	"github.com/xuri/excelize/v2"
)

// HeaderMode selects the header text of each column.
type HeaderMode string

const (
	// HeaderName uses the cleaned field name.
	HeaderName HeaderMode = "name"
	// HeaderOriginal uses the source header text, falling back to the name.
	HeaderOriginal HeaderMode = "original"
)

const (
	summarySheet  = "_summary"
	fieldsSheet   = "_fields"
	maxSheetName  = 31
	invalidSheetC = `[]:*?/\`
)

// WorkbookOptions configures BuildWorkbook.
type WorkbookOptions struct {
	Header HeaderMode
	// SkipSummary omits the _summary and _fields tabs.
	SkipSummary bool
}

// WriteWorkbook writes r to an xlsx file at path.
func WriteWorkbook(path string, r *models.OverallResult, opts WorkbookOptions) error {
	f, err := BuildWorkbook(r, opts)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// BuildWorkbook renders r as a workbook: one tab per successful unit in
// source order, with fields as columns in schema order, followed by a
// _summary tab reporting every unit and a _fields tab with column
// provenance.
func BuildWorkbook(r *models.OverallResult, opts WorkbookOptions) (*excelize.File, error) {
	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)
	used := make(map[string]bool)
	first := true

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	addSheet := func(name string) (string, error) {
		sheet := uniqueSheetName(name, used)
		if first {
			first = false
			return sheet, f.SetSheetName(defaultSheet, sheet)
		}
		_, err := f.NewSheet(sheet)
		return sheet, err
	}

	for _, u := range r.OrderedUnits() {
		sheet, err := addSheet(u.UnitName)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet for %q: %w", u.UnitName, err)
		}
		if err := writeUnit(f, sheet, u, opts.Header, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("write unit %q: %w", u.UnitName, err)
		}
	}

	if !opts.SkipSummary || first {
		sheet, err := addSheet(summarySheet)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := writeSummary(f, sheet, r, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	if !opts.SkipSummary {
		sheet, err := addSheet(fieldsSheet)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := writeFields(f, sheet, r, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeUnit(f *excelize.File, sheet string, u *models.UnitResult, mode HeaderMode, style int) error {
	names := u.Schema.FieldNames()
	header := make([]any, len(u.Schema.Fields))
	for i, fd := range u.Schema.Fields {
		header[i] = fd.Name
		if mode == HeaderOriginal && strings.TrimSpace(fd.OriginalName) != "" {
			header[i] = fd.OriginalName
		}
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	if len(header) > 0 {
		end, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := f.SetCellStyle(sheet, "A1", end, style); err != nil {
			return err
		}
	}
	for i, rec := range u.Records {
		if err := writeRow(f, sheet, i+2, rec.Values(names)); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, sheet string, r *models.OverallResult, style int) error {
	if err := writeRow(f, sheet, 1, []any{"unit", "status", "rows", "rejected", "stage", "reason"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", style); err != nil {
		return err
	}
	for i, s := range r.Summary() {
		status := "ok"
		if !s.OK {
			status = "failed"
		}
		if err := writeRow(f, sheet, i+2, []any{s.UnitName, status, s.Rows, s.Rejected, s.Stage, s.Reason}); err != nil {
			return err
		}
	}
	return nil
}

func writeFields(f *excelize.File, sheet string, r *models.OverallResult, style int) error {
	if err := writeRow(f, sheet, 1, []any{"unit", "position", "name", "original_name", "field_type", "optional", "description"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "G1", style); err != nil {
		return err
	}
	row := 2
	for _, s := range r.Summary() {
		schema := r.Schemas[s.UnitName]
		if schema == nil {
			continue
		}
		for i, fd := range schema.Fields {
			vals := []any{s.UnitName, i + 1, fd.Name, fd.OriginalName, string(fd.Type), fd.Optional, fd.Description}
			if err := writeRow(f, sheet, row, vals); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, vals []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &vals)
}

// uniqueSheetName makes name a legal tab name not yet in used: invalid
// characters become "_", the name is cut to 31 characters, and clashes get
// a " (n)" suffix.
func uniqueSheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidSheetC, r) {
			return '_'
		}
		return r
	}, name)
	clean = strings.Trim(clean, "'")
	if strings.TrimSpace(clean) == "" {
		clean = "sheet"
	}
	clean = truncateRunes(clean, maxSheetName)

	candidate := clean
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(clean, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
