package sheetinfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/completion"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
)

// Proposer asks the completion service for the schema of a unit.
type Proposer struct {
	client completion.Client
	schema json.RawMessage
	logger *slog.Logger
}

// NewProposer returns a Proposer using client.
func NewProposer(client completion.Client, logger *slog.Logger) (*Proposer, error) {
	schema, err := completion.SchemaDefinitionSchema()
	if err != nil {
		return nil, fmt.Errorf("reflect schema definition: %w", err)
	}
	if logger == nil {
		logger = Options{}.logger()
	}
	return &Proposer{client: client, schema: schema, logger: logger}, nil
}

// Propose returns the normalized schema for unit. The unit name always
// comes from the unit, never from the service. Any failure is a
// *SchemaInferenceError.
func (p *Proposer) Propose(ctx context.Context, unit models.Unit, background string) (*models.SchemaDefinition, error) {
	instructions, err := renderPrompt(schemaPrompt, newPromptData(unit, background))
	if err != nil {
		return nil, NewSchemaInferenceError(unit.Name, err)
	}

	raw, err := p.client.Complete(ctx, completion.Request{
		Unit:         unit.Name,
		Instructions: instructions,
		Input:        unit.Text,
		SchemaName:   completion.SchemaNameSchema,
		Schema:       p.schema,
	})
	if err != nil {
		return nil, NewSchemaInferenceError(unit.Name, err)
	}

	var def models.SchemaDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, NewSchemaInferenceError(unit.Name, fmt.Errorf("decode schema: %w", err))
	}
	if len(def.Fields) == 0 {
		return nil, NewSchemaInferenceError(unit.Name, errors.New("service proposed no fields"))
	}

	def.UnitName = unit.Name
	normalized := def.Normalize()
	p.logger.Debug("schema proposed", "unit", unit.Name, "fields", len(normalized.Fields))
	return normalized, nil
}
