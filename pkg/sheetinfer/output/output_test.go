package output

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
	"github.com/xuri/excelize/v2"
)

func sampleResult() *models.OverallResult {
	r := models.NewOverallResult("0f8c2a9e-1111-4222-8333-944455556666")
	r.BookName = "book.xlsx"

	orders := &models.SchemaDefinition{
		UnitName: "Orders",
		Fields: []models.FieldDefinition{
			{Name: "order_id", OriginalName: "Order ID", Type: models.TypeInteger},
			{Name: "amount", OriginalName: "Amount", Type: models.TypeFloat},
			{Name: "paid", OriginalName: "Paid?", Type: models.TypeBoolean, Optional: true},
		},
	}
	r.Schemas["Orders"] = orders
	r.Units["Orders"] = &models.UnitResult{
		UnitName: "Orders",
		Index:    0,
		Schema:   orders,
		Records: []models.Record{
			{"order_id": int64(1), "amount": 12.5, "paid": true},
			{"order_id": int64(2), "amount": 3.0, "paid": nil},
		},
		Rejected: []models.RecordRejection{{Row: 2, Failures: []models.FieldFailure{{Field: "amount", Reason: "not a number"}}}},
	}

	notes := &models.SchemaDefinition{
		UnitName: "Notes",
		Fields:   []models.FieldDefinition{{Name: "text", Type: models.TypeString}},
	}
	r.Schemas["Notes"] = notes
	r.Failures["Notes"] = &models.UnitFailure{UnitName: "Notes", Index: 1, Stage: models.StageExtraction, Reason: "service unavailable"}
	return r
}

func TestToJSONIncludesSummary(t *testing.T) {
	data, err := ToJSON(sampleResult(), false)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var doc struct {
		RunID    string                        `json:"run_id"`
		Units    map[string]json.RawMessage    `json:"units"`
		Failures map[string]models.UnitFailure `json:"failures"`
		Summary  []models.UnitSummary          `json:"summary"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.RunID == "" || len(doc.Units) != 1 || len(doc.Failures) != 1 {
		t.Errorf("unexpected document: %s", data)
	}
	if len(doc.Summary) != 2 || doc.Summary[0].UnitName != "Orders" || !doc.Summary[0].OK || doc.Summary[0].Rows != 2 {
		t.Errorf("unexpected summary: %+v", doc.Summary)
	}
	if doc.Summary[1].Stage != models.StageExtraction {
		t.Errorf("Expected extraction stage, got %q", doc.Summary[1].Stage)
	}
}

func TestToJSONPretty(t *testing.T) {
	data, err := ToJSON(sampleResult(), true)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"run_id\"") {
		t.Errorf("expected indented output, got %s", data)
	}
}

func TestBuildWorkbook(t *testing.T) {
	f, err := BuildWorkbook(sampleResult(), WorkbookOptions{})
	if err != nil {
		t.Fatalf("BuildWorkbook failed: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	expected := []string{"Orders", "_summary", "_fields"}
	if strings.Join(sheets, ",") != strings.Join(expected, ",") {
		t.Fatalf("Expected sheets %v, got %v", expected, sheets)
	}

	rows, err := f.GetRows("Orders")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "order_id,amount,paid" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "1" || rows[1][1] != "12.5" || rows[1][2] != "TRUE" {
		t.Errorf("unexpected first row: %v", rows[1])
	}
	if len(rows[2]) > 2 && rows[2][2] != "" {
		t.Errorf("missing value should leave an empty cell, got %v", rows[2])
	}

	summary, _ := f.GetRows("_summary")
	if len(summary) != 3 || summary[2][0] != "Notes" || summary[2][1] != "failed" {
		t.Errorf("unexpected summary: %v", summary)
	}

	fields, _ := f.GetRows("_fields")
	// header + 3 Orders fields + 1 Notes field
	if len(fields) != 5 {
		t.Errorf("Expected 5 field rows, got %d", len(fields))
	}
}

func TestBuildWorkbookOriginalHeaders(t *testing.T) {
	f, err := BuildWorkbook(sampleResult(), WorkbookOptions{Header: HeaderOriginal, SkipSummary: true})
	if err != nil {
		t.Fatalf("BuildWorkbook failed: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 {
		t.Fatalf("Expected only the unit sheet, got %v", sheets)
	}
	rows, _ := f.GetRows("Orders")
	if strings.Join(rows[0], ",") != "Order ID,Amount,Paid?" {
		t.Errorf("unexpected header: %v", rows[0])
	}
}

func TestBuildWorkbookNoUnits(t *testing.T) {
	r := models.NewOverallResult("run")
	f, err := BuildWorkbook(r, WorkbookOptions{SkipSummary: true})
	if err != nil {
		t.Fatalf("BuildWorkbook failed: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != "_summary" {
		t.Errorf("Expected a lone _summary sheet, got %v", sheets)
	}
}

func TestWriteWorkbookRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.xlsx")
	if err := WriteWorkbook(path, sampleResult(), WorkbookOptions{}); err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Orders", "B2"); v != "12.5" {
		t.Errorf("Expected 12.5, got %q", v)
	}
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]bool{}
	tests := []struct {
		input    string
		expected string
	}{
		{"Sales", "Sales"},
		{"sales", "sales (2)"},
		{"Q1/Q2 [draft]", "Q1_Q2 _draft_"},
		{"'quoted'", "quoted"},
		{"   ", "sheet"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
		{strings.Repeat("x", 40), strings.Repeat("x", 27) + " (2)"},
	}

	for _, tt := range tests {
		result := uniqueSheetName(tt.input, used)
		if result != tt.expected {
			t.Errorf("uniqueSheetName(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestWriteSQLite(t *testing.T) {
	r := sampleResult()
	path := filepath.Join(t.TempDir(), "runs.db")
	if err := WriteSQLite(context.Background(), path, r); err != nil {
		t.Fatalf("WriteSQLite failed: %v", err)
	}

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer db.Close()

	var book string
	if err := db.QueryRow(`SELECT book_name FROM _runs WHERE run_id = ?`, r.RunID).Scan(&book); err != nil {
		t.Fatalf("runs query failed: %v", err)
	}
	if book != "book.xlsx" {
		t.Errorf("Expected book.xlsx, got %q", book)
	}

	var table, status string
	if err := db.QueryRow(`SELECT table_name, status FROM _units WHERE run_id = ? AND unit_name = 'Orders'`, r.RunID).Scan(&table, &status); err != nil {
		t.Fatalf("units query failed: %v", err)
	}
	if table != "orders__0f8c2a9e" || status != "ok" {
		t.Errorf("unexpected unit row: %q %q", table, status)
	}

	var failedStage string
	if err := db.QueryRow(`SELECT stage FROM _units WHERE run_id = ? AND unit_name = 'Notes'`, r.RunID).Scan(&failedStage); err != nil {
		t.Fatalf("units query failed: %v", err)
	}
	if failedStage != models.StageExtraction {
		t.Errorf("Expected extraction, got %q", failedStage)
	}

	var nFields int
	if err := db.QueryRow(`SELECT COUNT(*) FROM _fields WHERE run_id = ?`, r.RunID).Scan(&nFields); err != nil {
		t.Fatalf("fields query failed: %v", err)
	}
	if nFields != 4 {
		t.Errorf("Expected 4 field rows, got %d", nFields)
	}

	rows, err := db.Query(`SELECT order_id, amount, paid FROM "` + table + `" ORDER BY _row`)
	if err != nil {
		t.Fatalf("unit table query failed: %v", err)
	}
	defer rows.Close()
	var got []string
	for rows.Next() {
		var id int64
		var amount float64
		var paid *int64
		if err := rows.Scan(&id, &amount, &paid); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		p := "null"
		if paid != nil {
			p = "set"
		}
		got = append(got, p)
	}
	if strings.Join(got, ",") != "set,null" {
		t.Errorf("unexpected paid column: %v", got)
	}
}

func TestUnitTablesDisambiguate(t *testing.T) {
	r := models.NewOverallResult("abcdef123456")
	schema := &models.SchemaDefinition{Fields: []models.FieldDefinition{{Name: "a", Type: models.TypeString}}}
	r.Units["Sheet 1"] = &models.UnitResult{UnitName: "Sheet 1", Index: 0, Schema: schema}
	r.Units["sheet_1"] = &models.UnitResult{UnitName: "sheet_1", Index: 1, Schema: schema}

	tables := unitTables(r)
	if tables["Sheet 1"] != "sheet_1__abcdef12" || tables["sheet_1"] != "sheet_1__abcdef12_2" {
		t.Errorf("unexpected tables: %v", tables)
	}
}
