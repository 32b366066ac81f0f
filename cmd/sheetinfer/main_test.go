package main

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
)

func TestResolveBackground(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.txt")
	if err := os.WriteFile(path, []byte("Monthly sales"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	tests := []struct {
		inline   string
		path     string
		expected string
		wantErr  bool
	}{
		{"", "", "", false},
		{"inline text", "", "inline text", false},
		{"", path, "Monthly sales", false},
		{"inline text", path, "", true},
		{"", filepath.Join(t.TempDir(), "missing.txt"), "", true},
	}

	for _, tt := range tests {
		result, err := resolveBackground(tt.inline, tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("resolveBackground(%q, %q) error = %v, wantErr %v", tt.inline, tt.path, err, tt.wantErr)
			continue
		}
		if result != tt.expected {
			t.Errorf("resolveBackground(%q, %q) = %q, expected %q", tt.inline, tt.path, result, tt.expected)
		}
	}
}

func TestWriteUnitFiles(t *testing.T) {
	r := models.NewOverallResult("run")
	schema := &models.SchemaDefinition{Fields: []models.FieldDefinition{{Name: "a", Type: models.TypeString}}}
	r.Units["Sheet 1"] = &models.UnitResult{UnitName: "Sheet 1", Index: 0, Schema: schema}
	r.Units["sheet-1"] = &models.UnitResult{UnitName: "sheet-1", Index: 1, Schema: schema}
	r.Units["Totals"] = &models.UnitResult{UnitName: "Totals", Index: 2, Schema: schema}

	dir := filepath.Join(t.TempDir(), "units")
	if err := writeUnitFiles(r, dir); err != nil {
		t.Fatalf("writeUnitFiles failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	expected := []string{"sheet_1.json", "sheet_1_2.json", "totals.json"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("file %d = %q, expected %q", i, names[i], expected[i])
		}
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"clean", "schema", "sheets", "serve", "mcp"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered: %v", name, err)
		}
	}
}
