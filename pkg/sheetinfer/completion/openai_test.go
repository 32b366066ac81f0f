package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestOpenAIClientComplete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"records\":[]}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL + "/", APIKey: "sk-test", Model: "m1"})
	out, err := c.Complete(context.Background(), Request{
		Instructions: "sys",
		Input:        "a,b\n1,2\n",
		SchemaName:   SchemaNameRecords,
		Schema:       json.RawMessage(`{"type":"object"}`),
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if string(out) != `{"records":[]}` {
		t.Errorf("unexpected content: %s", out)
	}

	if got.Model != "m1" || len(got.Messages) != 2 || got.Messages[1].Content != "a,b\n1,2\n" {
		t.Errorf("unexpected request: %+v", got)
	}
	if got.ResponseFormat.Type != "json_schema" || !got.ResponseFormat.JSONSchema.Strict || got.ResponseFormat.JSONSchema.Name != SchemaNameRecords {
		t.Errorf("unexpected response_format: %+v", got.ResponseFormat)
	}
}

func TestOpenAIClientStatusMapping(t *testing.T) {
	tests := []struct {
		status   int
		body     string
		expected error
	}{
		{http.StatusUnauthorized, "", ErrUnauthorized},
		{http.StatusForbidden, "", ErrUnauthorized},
		{http.StatusTooManyRequests, "", ErrRateLimited},
		{http.StatusBadGateway, "", ErrUnavailable},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		c := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL})
		_, err := c.Complete(context.Background(), Request{Schema: json.RawMessage(`{}`)})
		if !errors.Is(err, tt.expected) {
			t.Errorf("status %d: expected %v, got %v", tt.status, tt.expected, err)
		}
		srv.Close()
	}
}

func TestOpenAIClientBadRequestCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"schema is invalid"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), Request{Schema: json.RawMessage(`{}`)})
	if err == nil || !strings.Contains(err.Error(), "schema is invalid") {
		t.Errorf("Expected provider message in error, got %v", err)
	}
}

func TestOpenAIClientRefusalAndTruncation(t *testing.T) {
	tests := []struct {
		body     string
		expected error
	}{
		{`{"choices":[{"message":{"refusal":"no"},"finish_reason":"stop"}]}`, ErrRefused},
		{`{"choices":[{"message":{"content":"{\"a\":"},"finish_reason":"length"}]}`, ErrTruncated},
		{`{"choices":[]}`, ErrEmpty},
		{`{"choices":[{"message":{"content":"  "},"finish_reason":"stop"}]}`, ErrEmpty},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(tt.body))
		}))
		c := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL})
		_, err := c.Complete(context.Background(), Request{Schema: json.RawMessage(`{}`)})
		if !errors.Is(err, tt.expected) {
			t.Errorf("body %s: expected %v, got %v", tt.body, tt.expected, err)
		}
		srv.Close()
	}
}

func TestOpenAIClientRetriesRateLimit(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"{}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL, MaxRetries: 2, Backoff: time.Millisecond})
	if _, err := c.Complete(context.Background(), Request{Schema: json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 3 {
		t.Errorf("Expected 3 attempts, got %d", n)
	}

	atomic.StoreInt32(&hits, -10)
	c = NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL, MaxRetries: 1, Backoff: time.Millisecond})
	if _, err := c.Complete(context.Background(), Request{Schema: json.RawMessage(`{}`)}); !errors.Is(err, ErrRateLimited) {
		t.Errorf("Expected ErrRateLimited once retries run out, got %v", err)
	}
}

func TestSchemaDefinitionSchema(t *testing.T) {
	raw, err := SchemaDefinitionSchema()
	if err != nil {
		t.Fatalf("SchemaDefinitionSchema failed: %v", err)
	}
	text := string(raw)
	for _, want := range []string{`"fields"`, `"original_name"`, `"field_type"`, `"integer"`, `"boolean"`, `"additionalProperties":false`} {
		if !strings.Contains(text, want) {
			t.Errorf("schema missing %s: %s", want, text)
		}
	}
	for _, unwanted := range []string{`"$ref"`, `"$schema"`} {
		if strings.Contains(text, unwanted) {
			t.Errorf("schema should not contain %s: %s", unwanted, text)
		}
	}
}

func TestFake(t *testing.T) {
	f := NewFake().
		On(SchemaNameSchema, "A", `{"unit_name":"A","fields":[]}`).
		Fail(SchemaNameRecords, "A", ErrRefused)

	if _, err := f.Complete(context.Background(), Request{SchemaName: SchemaNameSchema, Unit: "A"}); err != nil {
		t.Errorf("scripted reply failed: %v", err)
	}
	if _, err := f.Complete(context.Background(), Request{SchemaName: SchemaNameRecords, Unit: "A"}); !errors.Is(err, ErrRefused) {
		t.Errorf("Expected ErrRefused, got %v", err)
	}
	if _, err := f.Complete(context.Background(), Request{SchemaName: SchemaNameRecords, Unit: "B"}); err == nil {
		t.Errorf("Expected error for unscripted request")
	}
	if n := len(f.Calls()); n != 3 {
		t.Errorf("Expected 3 calls, got %d", n)
	}
}

func TestNewOpenAIClientDefaults(t *testing.T) {
	c := NewOpenAIClient(OpenAIConfig{})
	if c.logger == nil {
		t.Fatal("Expected a discarding logger when none is configured")
	}
	if c.cfg.BaseURL != defaultBaseURL || c.cfg.Model != defaultModel {
		t.Errorf("unexpected defaults: %q %q", c.cfg.BaseURL, c.cfg.Model)
	}
	if c.client.Timeout != defaultTimeout || c.cfg.Backoff != defaultBackoff {
		t.Errorf("unexpected timing defaults: %v %v", c.client.Timeout, c.cfg.Backoff)
	}
}
