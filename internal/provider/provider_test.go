package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type chatRequestBody struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionJSON(content string) string {
	resp := map[string]interface{}{
		"id":    "gen-1",
		"model": "mistralai/mistral-7b-instruct",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			},
		},
		"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestOpenRouterCreateMessage(t *testing.T) {
	var got chatRequestBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: want POST, got %s", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path: want /chat/completions, got %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization: want %q, got %q", "Bearer sk-test", auth)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type: want application/json, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionJSON("Looks good")))
	}))
	defer server.Close()

	p := NewOpenRouterProvider("sk-test", Options{BaseURL: server.URL})
	resp, err := p.CreateMessage(context.Background(), &MessageRequest{
		Model:    "mistralai/mistral-7b-instruct",
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if resp.Content != "Looks good" {
		t.Errorf("Content: want %q, got %q", "Looks good", resp.Content)
	}
	if resp.Usage.TotalTokens() != 15 {
		t.Errorf("TotalTokens: want 15, got %d", resp.Usage.TotalTokens())
	}
	if got.Model != "mistralai/mistral-7b-instruct" {
		t.Errorf("model: got %q", got.Model)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "hello" {
		t.Errorf("messages: got %+v", got.Messages)
	}
}

func TestOpenRouterDefaultBaseURL(t *testing.T) {
	p := NewOpenRouterProvider("sk-test", Options{})
	if p.BaseURL() != OpenRouterBaseURL {
		t.Errorf("BaseURL: want %q, got %q", OpenRouterBaseURL, p.BaseURL())
	}
	if p.Name() != "openrouter" {
		t.Errorf("Name: want openrouter, got %q", p.Name())
	}
}

func TestCreateMessageEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"gen-2","choices":[]}`))
	}))
	defer server.Close()

	p := NewOpenRouterProvider("sk-test", Options{BaseURL: server.URL})
	_, err := p.CreateMessage(context.Background(), &MessageRequest{
		Model:    "anthropic/claude-3-haiku",
		Messages: []Message{{Role: "user", Content: "x"}},
	})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if ce := ClassifyError(err); ce.Type != ErrorTypeMalformed {
		t.Errorf("Type: want %s, got %s", ErrorTypeMalformed, ce.Type)
	}
}

func TestCustomHeadersAreSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Title"); got != "dreview" {
			t.Errorf("X-Title: want dreview, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionJSON("ok")))
	}))
	defer server.Close()

	p := NewOpenRouterProvider("sk-test", Options{
		BaseURL: server.URL,
		Headers: map[string]string{"X-Title": "dreview"},
	})
	if _, err := p.CreateMessage(context.Background(), &MessageRequest{
		Model:    "anthropic/claude-3-haiku",
		Messages: []Message{{Role: "user", Content: "x"}},
	}); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expectType  ErrorType
		keyRejected bool
	}{
		{"auth error", 401, `{"error":{"message":"No auth credentials found","code":401}}`, ErrorTypeAuth, true},
		{"forbidden", 403, `{"error":{"message":"forbidden","code":403}}`, ErrorTypeForbidden, false},
		{"rate limit", 429, `{"error":{"message":"slow down","code":429}}`, ErrorTypeRateLimit, false},
		{"not found", 404, `{"error":{"message":"no such model","code":404}}`, ErrorTypeNotFound, false},
		{"context overflow", 400, `{"error":{"message":"This model's maximum context length is 8192 tokens","code":400}}`, ErrorTypeContextOverflow, false},
		{"server error", 500, `{"error":{"message":"internal server error","code":500}}`, ErrorTypeAPIError, false},
		{"non-json error body", 502, `bad gateway`, ErrorTypeAPIError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewOpenRouterProvider("sk-test", Options{BaseURL: server.URL})
			_, err := p.CreateMessage(context.Background(), &MessageRequest{
				Model:    "mistralai/mistral-7b-instruct",
				Messages: []Message{{Role: "user", Content: "x"}},
			})
			if err == nil {
				t.Fatal("expected error")
			}
			ce := ClassifyError(err)
			if ce.StatusCode != tt.status {
				t.Errorf("StatusCode: want %d, got %d", tt.status, ce.StatusCode)
			}
			if ce.Type != tt.expectType {
				t.Errorf("Type: want %s, got %s", tt.expectType, ce.Type)
			}
			if ce.IsKeyRejected() != tt.keyRejected {
				t.Errorf("IsKeyRejected: want %v, got %v", tt.keyRejected, ce.IsKeyRejected())
			}
		})
	}
}

func TestClassifyNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	p := NewOpenRouterProvider("sk-test", Options{BaseURL: url, Timeout: 2 * time.Second})
	_, err := p.CreateMessage(context.Background(), &MessageRequest{
		Model:    "mistralai/mistral-7b-instruct",
		Messages: []Message{{Role: "user", Content: "x"}},
	})
	if err == nil {
		t.Fatal("expected error from closed server")
	}
	ce := ClassifyError(err)
	if ce.StatusCode != 0 {
		t.Errorf("StatusCode: want 0, got %d", ce.StatusCode)
	}
	if ce.IsKeyRejected() {
		t.Error("network failure must not count as key rejection")
	}
	if ce.Type != ErrorTypeNetwork {
		t.Errorf("Type: want %s, got %s", ErrorTypeNetwork, ce.Type)
	}
}

func TestClassifyTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	p := NewOpenRouterProvider("sk-test", Options{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	_, err := p.CreateMessage(context.Background(), &MessageRequest{
		Model:    "mistralai/mistral-7b-instruct",
		Messages: []Message{{Role: "user", Content: "x"}},
	})
	if err == nil {
		t.Fatal("expected timeout")
	}
	if ce := ClassifyError(err); ce.Type != ErrorTypeTimeout {
		t.Errorf("Type: want %s, got %s (%v)", ErrorTypeTimeout, ce.Type, err)
	}
}

func TestClassifyErrorNil(t *testing.T) {
	if ClassifyError(nil) != nil {
		t.Error("ClassifyError(nil) should be nil")
	}
	var ce *ClassifiedError
	if ce.IsKeyRejected() {
		t.Error("nil ClassifiedError should not be key-rejected")
	}
}

func TestIsContextOverflow(t *testing.T) {
	tests := []struct {
		msg      string
		expected bool
	}{
		{"maximum context length exceeded", true},
		{"prompt is too long", true},
		{"context_length_exceeded", true},
		{"normal error message", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			result := IsContextOverflow(tt.msg)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v for message: %s", tt.expected, result, tt.msg)
			}
		})
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     *MessageRequest
		wantErr bool
	}{
		{"nil request", nil, true},
		{"missing model", &MessageRequest{Messages: []Message{{Role: "user", Content: "x"}}}, true},
		{"no messages", &MessageRequest{Model: "m"}, true},
		{"bad temperature", &MessageRequest{Model: "m", Messages: []Message{{Role: "user", Content: "x"}}, Temperature: 3}, true},
		{"valid", &MessageRequest{Model: "m", Messages: []Message{{Role: "user", Content: "x"}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHint(t *testing.T) {
	if Hint(nil) != "" {
		t.Error("Hint(nil) should be empty")
	}
	if Hint(&ClassifiedError{Type: ErrorTypeAuth}) == "" {
		t.Error("auth errors should carry a hint")
	}
}
