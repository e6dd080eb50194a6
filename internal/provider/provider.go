package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Provider defines the interface for chat-completion backends
type Provider interface {
	Name() string
	CreateMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error)
}

// Message represents a single chat message
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// MessageRequest represents a request to create a completion
type MessageRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// MessageResponse represents the first completion choice returned by the endpoint
type MessageResponse struct {
	ID         string `json:"id"`
	Model      string `json:"model"`
	Content    string `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      Usage  `json:"usage"`
}

// Usage tracks token usage
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// TotalTokens returns the total token count
func (u Usage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens
}

// Options tune how a provider reaches its endpoint.
type Options struct {
	BaseURL string        // overrides the provider's default endpoint
	Timeout time.Duration // 0 = DefaultTimeout
	Headers map[string]string

	// HTTPClient replaces the default client entirely (tests).
	HTTPClient *http.Client
}

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 120 * time.Second

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var transport http.RoundTripper = http.DefaultTransport
	if len(o.Headers) > 0 {
		transport = &headerTransport{base: transport, headers: o.Headers}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

// ValidateRequest performs basic validation on a MessageRequest
func ValidateRequest(req *MessageRequest) error {
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}
	if strings.TrimSpace(req.Model) == "" {
		return fmt.Errorf("model must be specified")
	}
	if len(req.Messages) == 0 {
		return fmt.Errorf("at least one message is required")
	}
	if req.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must not be negative")
	}
	if req.Temperature < 0 || req.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	return nil
}
