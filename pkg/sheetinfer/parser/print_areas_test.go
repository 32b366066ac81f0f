package parser

import "testing"

func TestParsePrintAreaReference(t *testing.T) {
	tests := []struct {
		ref       string
		wantSheet string
		wantAreas []string
	}{
		{"Sheet1!$A$1:$D$10", "Sheet1", []string{"A1:D10"}},
		{"'Q1 Sales'!$B$2:$C$3", "Q1 Sales", []string{"B2:C3"}},
		{"'Bob''s'!$A$1:$A$1", "Bob's", []string{"A1:A1"}},
		{"Data!$A$1:$B$2,Data!$E$5:$F$9", "Data", []string{"A1:B2", "E5:F9"}},
		{"Data!$C$4", "Data", []string{"C4:C4"}},
		{"Data!$D$10:$A$1", "Data", []string{"A1:D10"}},
		{"Data!garbage", "Data", nil},
		{"$A$1:$B$2", "", nil},
	}

	for _, tt := range tests {
		sheet, areas := parsePrintAreaReference(tt.ref)
		if sheet != tt.wantSheet {
			t.Errorf("parsePrintAreaReference(%q) sheet = %q, expected %q", tt.ref, sheet, tt.wantSheet)
		}
		if len(areas) != len(tt.wantAreas) {
			t.Errorf("parsePrintAreaReference(%q) = %d areas, expected %d", tt.ref, len(areas), len(tt.wantAreas))
			continue
		}
		for i, a := range areas {
			if a.Range() != tt.wantAreas[i] {
				t.Errorf("parsePrintAreaReference(%q)[%d] = %q, expected %q", tt.ref, i, a.Range(), tt.wantAreas[i])
			}
		}
	}
}

func TestClipRows(t *testing.T) {
	rows := [][]string{
		{"title"},
		{"", "a", "b", "x"},
		{"", "1", "2", "y"},
	}
	clipped := clipRows(rows, Bounds{MinRow: 1, MaxRow: 2, MinCol: 1, MaxCol: 2})
	if got := DataBounds(clipped).Range(); got != "B2:C3" {
		t.Errorf("clipped bounds = %q, expected B2:C3", got)
	}
	if clipped[1][3] != "" || clipped[0] != nil {
		t.Errorf("cells outside the area survived: %v", clipped)
	}
}
