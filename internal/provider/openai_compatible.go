package provider

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenRouterBaseURL is the endpoint the reviewer talks to by default.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// ErrEmptyResponse is returned when the endpoint answers without any choices.
var ErrEmptyResponse = errors.New("completion response has no choices")

// OpenAICompatibleProvider works with any OpenAI-compatible API
type OpenAICompatibleProvider struct {
	name    string
	client  *openai.Client
	baseURL string
}

// NewOpenAICompatibleProvider creates a new OpenAI-compatible provider.
// The API key is sent as a bearer credential on every request.
func NewOpenAICompatibleProvider(name, apiKey string, opts Options) *OpenAICompatibleProvider {
	config := openai.DefaultConfig(apiKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}
	config.HTTPClient = opts.httpClient()

	return &OpenAICompatibleProvider{
		name:    name,
		client:  openai.NewClientWithConfig(config),
		baseURL: config.BaseURL,
	}
}

func (p *OpenAICompatibleProvider) Name() string { return p.name }

// BaseURL returns the endpoint root requests are sent to.
func (p *OpenAICompatibleProvider) BaseURL() string { return p.baseURL }

func (p *OpenAICompatibleProvider) CreateMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: convertToOpenAIMessages(req.Messages),
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}
	if req.Temperature != 0 {
		chatReq.Temperature = float32(req.Temperature)
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}

	return convertFromOpenAIResponse(&resp)
}

// OpenRouterProvider uses OpenRouter's multi-provider API
type OpenRouterProvider struct {
	*OpenAICompatibleProvider
}

// NewOpenRouterProvider creates a new OpenRouter provider
func NewOpenRouterProvider(apiKey string, opts Options) *OpenRouterProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = OpenRouterBaseURL
	}
	return &OpenRouterProvider{OpenAICompatibleProvider: NewOpenAICompatibleProvider("openrouter", apiKey, opts)}
}

func convertToOpenAIMessages(msgs []Message) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, msg := range msgs {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return messages
}

func convertFromOpenAIResponse(resp *openai.ChatCompletionResponse) (*MessageResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choice := resp.Choices[0]
	return &MessageResponse{
		ID:         resp.ID,
		Model:      resp.Model,
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
