// Package completion talks to a structured completion service: a model that
// is given instructions, input text and a JSON Schema, and answers with a
// JSON document conforming to that schema.
package completion

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrUnauthorized = errors.New("completion unauthorized")
	ErrUnavailable  = errors.New("completion unavailable")
	ErrRateLimited  = errors.New("completion rate limited")
	ErrRefused      = errors.New("completion refused")
	ErrTruncated    = errors.New("completion truncated")
	ErrEmpty        = errors.New("completion empty response")
)

// Schema names used by the pipeline.
const (
	SchemaNameSchema  = "schema_definition"
	SchemaNameRecords = "extracted_records"
)

// Request is one schema-constrained completion.
type Request struct {
	// Unit names the unit the request is about; used for logging and routing.
	Unit string
	// Instructions is the system prompt.
	Instructions string
	// Input is the user content, typically the unit's CSV text.
	Input string
	// SchemaName labels the output schema.
	SchemaName string
	// Schema is the JSON Schema the answer must conform to.
	Schema json.RawMessage
}

// Client performs schema-constrained completions. Implementations must be
// safe for concurrent use.
type Client interface {
	Complete(ctx context.Context, req Request) (json.RawMessage, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req Request) (json.RawMessage, error)

// Complete calls fn.
func (fn ClientFunc) Complete(ctx context.Context, req Request) (json.RawMessage, error) {
	return fn(ctx, req)
}

// Retryable reports whether err is worth retrying.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable)
}
