package sheetinfer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/completion"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
)

func TestProposeNormalizesNames(t *testing.T) {
	fake := completion.NewFake().On(completion.SchemaNameSchema, "Sheet 1", `{"unit_name":"other","fields":[
		{"name":"Total Sales","original_name":"Total Sales","field_type":"float","description":"","optional":false},
		{"name":"total_sales","original_name":"Total sales (net)","field_type":"float","description":"","optional":true}
	]}`)

	p, err := NewProposer(fake, nil)
	if err != nil {
		t.Fatalf("NewProposer failed: %v", err)
	}
	def, err := p.Propose(context.Background(), models.Unit{Name: "Sheet 1", Text: "x"}, "Sales by region")
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	if def.UnitName != "Sheet 1" {
		t.Errorf("Expected unit name from unit, got %q", def.UnitName)
	}
	if got := def.FieldNames(); got[0] != "total_sales" || got[1] != "total_sales_2" {
		t.Errorf("unexpected names %v", got)
	}
	if def.Fields[1].OriginalName != "Total sales (net)" {
		t.Errorf("original name altered: %q", def.Fields[1].OriginalName)
	}

	call := fake.Calls()[0]
	if !strings.Contains(call.Instructions, "Sales by region") || !strings.Contains(call.Instructions, `"Sheet 1"`) {
		t.Errorf("prompt missing background or unit name: %s", call.Instructions)
	}
	if !strings.Contains(string(call.Schema), `"fields"`) {
		t.Errorf("request should carry the SchemaDefinition schema")
	}
}

func TestProposeFailures(t *testing.T) {
	tests := []struct {
		name string
		fake *completion.Fake
	}{
		{"service error", completion.NewFake().Fail(completion.SchemaNameSchema, "S", completion.ErrRefused)},
		{"no fields", completion.NewFake().On(completion.SchemaNameSchema, "S", `{"unit_name":"S","fields":[]}`)},
		{"bad shape", completion.NewFake().On(completion.SchemaNameSchema, "S", `{"fields":"nope"}`)},
	}

	for _, tt := range tests {
		p, err := NewProposer(tt.fake, nil)
		if err != nil {
			t.Fatalf("NewProposer failed: %v", err)
		}
		_, err = p.Propose(context.Background(), models.Unit{Name: "S"}, "")
		var inf *SchemaInferenceError
		if !errors.As(err, &inf) || inf.Unit != "S" {
			t.Errorf("%s: expected SchemaInferenceError for S, got %v", tt.name, err)
		}
	}
}
