package review

import "github.com/Dhanuzh/dreview/internal/provider"

// PromptPrefix precedes the pasted code in the single user message.
const PromptPrefix = "Please review this code and suggest improvements:\n\n"

// BuildPrompt returns the message content sent for code.
func BuildPrompt(code string) string {
	return PromptPrefix + code
}

// BuildRequest returns the chat-completion request for one submission.
func BuildRequest(model, code string) *provider.MessageRequest {
	return &provider.MessageRequest{
		Model: model,
		Messages: []provider.Message{
			{Role: "user", Content: BuildPrompt(code)},
		},
	}
}
