package sheetinfer

import (
	"strings"
	"text/template"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
)

var promptSource = template.Must(template.New("source").Parse(
	`{{if .Consolidated}}The user provided all sheets of a workbook, one after another, each exported as comma separated values (CSV)
with its own header row.{{else}}The user provided one sheet of a spreadsheet, exported as comma separated values (CSV).{{end}}`))

var schemaPrompt = template.Must(template.Must(promptSource.Clone()).New("schema").Parse(`## Role

You are a senior data scientist with an excellent eye for detail.

## Background

{{template "source" .}}
{{- if .Background}}
{{.Background}}
{{- end}}

## Task

Work out the table that the CSV content really contains. The data may or may not be laid out as a clean table:
decide which columns a well structured version of it should have, and which content should be ignored.

## Instructions

1. Work systematically row by row, downwards from the top row.
2. Tell real data columns apart from noise: blank rows and columns, titles, multi-row headers,
   spreadsheet artifacts such as "Unnamed: 3", notes, and summary or total rows.
3. For every real column, give:
   - name: a short snake_case identifier, unique within the table
   - original_name: the header text as it appears in the sheet, or "" if there is none
   - field_type: exactly one of string, integer, float, boolean
   - description: what the column holds
   - optional: true if some data rows leave the column empty
4. Use unit_name {{printf "%q" .Unit}}.
`))

var extractPrompt = template.Must(template.Must(promptSource.Clone()).New("extract").Parse(`## Role

You are a meticulous data entry specialist.

## Background

{{template "source" .}}
{{- if .Background}}
{{.Background}}
{{- end}}

## Task

Extract every data row of the CSV content into records with exactly these fields:
{{range .Fields}}
- {{.Name}} ({{.Type}}{{if .Optional}}, may be null{{end}}){{if .OriginalName}}, source column {{printf "%q" .OriginalName}}{{end}}: {{.Description}}
{{- end}}

## Instructions

1. Work systematically row by row, downwards from the top row, and keep the source row order.
2. Emit one record per genuine data row. Skip empty rows, header rows, footers, notes and summary or total rows.
3. Numbers: drop thousands separators and whitespace ("1,234" becomes 1234).
4. Booleans: map yes/no, true/false and 1/0 to true or false.
5. Use null only for a field that may be null and has no value in that row. Never invent values.
`))

type promptData struct {
	Unit         string
	Consolidated bool
	Background   string
	Fields       any
}

func newPromptData(unit models.Unit, background string) promptData {
	return promptData{
		Unit:         unit.Name,
		Consolidated: unit.Name == models.ConsolidatedUnitName,
		Background:   background,
	}
}

func renderPrompt(t *template.Template, data promptData) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
