package sheetinfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/completion"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/validator"
)

// Extractor asks the completion service for the rows of a unit and
// re-validates every returned record.
type Extractor struct {
	client completion.Client
	logger *slog.Logger
}

// NewExtractor returns an Extractor using client.
func NewExtractor(client completion.Client, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = Options{}.logger()
	}
	return &Extractor{client: client, logger: logger}
}

// Extraction is the outcome of extracting one unit.
type Extraction struct {
	Records  []models.Record
	Rejected []models.RecordRejection
}

// recordsEnvelope wraps the record schema; structured outputs require an
// object at the top level.
func recordsEnvelope(v *validator.Validator) (json.RawMessage, error) {
	return json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"records": map[string]any{
				"type":  "array",
				"items": v.JSONSchema(),
			},
		},
		"required":             []string{"records"},
		"additionalProperties": false,
	})
}

// Extract returns the records of unit that pass v, in the order the service
// returned them. Records failing validation are dropped, logged and listed
// in Rejected. A service failure is an *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, unit models.Unit, v *validator.Validator, background string) (*Extraction, error) {
	data := newPromptData(unit, background)
	data.Fields = v.Fields()
	instructions, err := renderPrompt(extractPrompt, data)
	if err != nil {
		return nil, NewExtractionError(unit.Name, err)
	}
	schema, err := recordsEnvelope(v)
	if err != nil {
		return nil, NewExtractionError(unit.Name, err)
	}

	raw, err := e.client.Complete(ctx, completion.Request{
		Unit:         unit.Name,
		Instructions: instructions,
		Input:        unit.Text,
		SchemaName:   completion.SchemaNameRecords,
		Schema:       schema,
	})
	if err != nil {
		return nil, NewExtractionError(unit.Name, err)
	}

	candidates, err := decodeCandidates(raw)
	if err != nil {
		return nil, NewExtractionError(unit.Name, err)
	}

	out := &Extraction{Records: make([]models.Record, 0, len(candidates))}
	for row, candidate := range candidates {
		var fields map[string]any
		if err := decodeObject(candidate, &fields); err != nil {
			out.reject(e.logger, unit.Name, row, models.FieldFailure{Value: string(candidate), Reason: "record is not an object"})
			continue
		}
		rec, err := v.Validate(fields)
		if err != nil {
			var recErr *validator.RecordError
			if errors.As(err, &recErr) {
				out.reject(e.logger, unit.Name, row, recErr.Failures...)
				continue
			}
			return nil, NewExtractionError(unit.Name, err)
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

func (x *Extraction) reject(logger *slog.Logger, unit string, row int, failures ...models.FieldFailure) {
	for _, f := range failures {
		logger.Warn("record dropped",
			"unit", unit,
			"row", row,
			"field", f.Field,
			"value", f.Value,
			"reason", f.Reason,
		)
	}
	x.Rejected = append(x.Rejected, models.RecordRejection{Row: row, Failures: failures})
}

func decodeCandidates(raw json.RawMessage) ([]json.RawMessage, error) {
	var envelope struct {
		Records *[]json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if envelope.Records == nil {
		return nil, errors.New("decode records: response has no records array")
	}
	return *envelope.Records, nil
}

// decodeObject decodes a JSON object keeping numbers as json.Number so
// large integers survive intact.
func decodeObject(raw json.RawMessage, v *map[string]any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if *v == nil {
		return errors.New("null record")
	}
	return nil
}
