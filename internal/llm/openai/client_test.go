package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"resume-roaster/internal/llm"
)

func TestGenerateSendsSchemaAndTemperature(t *testing.T) {
	var bodyMu sync.Mutex
	var lastBody map[string]any
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		bodyMu.Lock()
		lastBody = payload
		authHeader = r.Header.Get("Authorization")
		bodyMu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"matchScore\":10}"}}],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`))
	}))
	defer server.Close()

	client, err := NewClient("sk-test", "", Options{APIURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	got, err := client.Generate(context.Background(), llm.Request{
		Prompt:            "review this",
		SystemInstruction: "be harsh",
		Schema:            &llm.Schema{Type: llm.TypeObject, Required: []string{"matchScore"}},
		Temperature:       llm.Float32(0.7),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != `{"matchScore":10}` {
		t.Fatalf("unexpected content %q", got)
	}

	bodyMu.Lock()
	defer bodyMu.Unlock()
	if authHeader != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", authHeader)
	}
	if lastBody["model"] != DefaultModel {
		t.Fatalf("expected default model, got %v", lastBody["model"])
	}
	if temp, ok := lastBody["temperature"].(float64); !ok || temp < 0.69 || temp > 0.71 {
		t.Fatalf("expected temperature 0.7, got %v", lastBody["temperature"])
	}
	messages, _ := lastBody["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %v", lastBody["messages"])
	}
	format, _ := lastBody["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Fatalf("expected json_schema response format, got %v", lastBody["response_format"])
	}
}

func TestGenerateSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
	}))
	defer server.Close()

	client, err := NewClient("sk-test", "gpt-test", Options{APIURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Generate(context.Background(), llm.Request{Prompt: "x"}); err == nil {
		t.Fatalf("expected API error")
	}
}

func TestGenerateEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  "}}]}`))
	}))
	defer server.Close()

	client, _ := NewClient("sk-test", "gpt-test", Options{APIURL: server.URL})
	if _, err := client.Generate(context.Background(), llm.Request{Prompt: "x"}); !errors.Is(err, llm.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("", "gpt-4o", Options{}); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestToJSONSchema(t *testing.T) {
	out := toJSONSchema(&llm.Schema{
		Type:       llm.TypeArray,
		Items:      &llm.Schema{Type: llm.TypeString},
		Properties: nil,
	})
	if out["type"] != "array" {
		t.Fatalf("unexpected type %v", out["type"])
	}
	items, _ := out["items"].(map[string]any)
	if items["type"] != "string" {
		t.Fatalf("unexpected items %v", out["items"])
	}
}
