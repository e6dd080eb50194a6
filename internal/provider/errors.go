package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrorType classifies a failed completion call
type ErrorType string

const (
	ErrorTypeAuth            ErrorType = "auth_error"
	ErrorTypeForbidden       ErrorType = "forbidden"
	ErrorTypeRateLimit       ErrorType = "rate_limit"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeContextOverflow ErrorType = "context_overflow"
	ErrorTypeTimeout         ErrorType = "timeout"
	ErrorTypeNetwork         ErrorType = "network"
	ErrorTypeMalformed       ErrorType = "malformed_response"
	ErrorTypeAPIError        ErrorType = "api_error"
)

// ClassifiedError wraps a provider error with classification
type ClassifiedError struct {
	Type       ErrorType
	Message    string
	StatusCode int // 0 when no HTTP response was received
	Original   error
}

func (e *ClassifiedError) Error() string {
	return e.Message
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// IsKeyRejected reports whether the endpoint refused the credential itself.
// Only 401 counts: 403 means the key is valid but lacks access.
func (e *ClassifiedError) IsKeyRejected() bool {
	return e != nil && e.StatusCode == http.StatusUnauthorized
}

var overflowPatterns = []*regexp.Regexp{
	regexp.MustCompile(`maximum context length`),
	regexp.MustCompile(`context_length_exceeded`),
	regexp.MustCompile(`prompt is too long`),
	regexp.MustCompile(`Request too large`),
	regexp.MustCompile(`(?i)context.*(?:too long|overflow|exceeded|limit)`),
}

// IsContextOverflow checks if an error message indicates the pasted code
// does not fit the model's context window
func IsContextOverflow(msg string) bool {
	for _, pat := range overflowPatterns {
		if pat.MatchString(msg) {
			return true
		}
	}
	return false
}

// StatusCode extracts the HTTP status carried by a go-openai error, or 0.
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// ClassifyError classifies an error returned by CreateMessage
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce
	}

	status := StatusCode(err)
	msg := err.Error()
	classified := &ClassifiedError{StatusCode: status, Original: err}

	switch {
	case status == http.StatusUnauthorized:
		classified.Type = ErrorTypeAuth
		classified.Message = fmt.Sprintf("Authentication error (%d): %s", status, msg)
	case status == http.StatusForbidden:
		classified.Type = ErrorTypeForbidden
		classified.Message = fmt.Sprintf("Access denied (%d): %s", status, msg)
	case status == http.StatusTooManyRequests || strings.Contains(strings.ToLower(msg), "rate_limit"):
		classified.Type = ErrorTypeRateLimit
		classified.Message = "Rate limited by provider"
	case status == http.StatusNotFound:
		classified.Type = ErrorTypeNotFound
		classified.Message = fmt.Sprintf("Model or endpoint not found: %s", msg)
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		classified.Type = ErrorTypeTimeout
		classified.Message = "Request timed out"
	case status != 0 && IsContextOverflow(msg):
		classified.Type = ErrorTypeContextOverflow
		classified.Message = "Code is too long for the selected model's context window"
	case errors.Is(err, ErrEmptyResponse):
		classified.Type = ErrorTypeMalformed
		classified.Message = msg
	case status >= 500:
		classified.Type = ErrorTypeAPIError
		classified.Message = fmt.Sprintf("Provider server error (%d): %s", status, msg)
	case status == 0 && isNetwork(err):
		classified.Type = ErrorTypeNetwork
		classified.Message = fmt.Sprintf("Network error: %s", msg)
	default:
		classified.Type = ErrorTypeAPIError
		classified.Message = msg
	}
	return classified
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNetwork(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// Hint returns a short suggestion for the user, or "" when there is nothing useful to add.
func Hint(ce *ClassifiedError) string {
	if ce == nil {
		return ""
	}
	switch ce.Type {
	case ErrorTypeAuth:
		return "Check your API key at https://openrouter.ai/keys or set OPENROUTER_API_KEY."
	case ErrorTypeForbidden:
		return "Your key does not have access to this model; pick another one."
	case ErrorTypeRateLimit:
		return "Wait a moment before trying again, or check your plan's quota."
	case ErrorTypeNotFound:
		return "Run 'dreview models' to see the supported model identifiers."
	case ErrorTypeContextOverflow:
		return "Review a smaller piece of code or choose a model with a larger context window."
	case ErrorTypeTimeout:
		return "Raise the timeout setting or try a faster model."
	case ErrorTypeNetwork:
		return "Check your internet connection and the base_url setting."
	default:
		return ""
	}
}
