package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Dhanuzh/dreview/internal/review"
	"github.com/Dhanuzh/dreview/internal/theme"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

var validLogLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate validates the configuration. A missing API key is not an error:
// the form reports it when a review is submitted.
func (c *Config) Validate() error {
	var errors ValidationErrors

	if _, ok := review.LookupModel(c.Model); !ok {
		ids := make([]string, 0, len(review.Models()))
		for _, m := range review.Models() {
			ids = append(ids, m.ID)
		}
		errors = append(errors, ValidationError{
			Field:   "model",
			Message: fmt.Sprintf("unknown model '%s', valid: %s", c.Model, strings.Join(ids, ", ")),
		})
	}

	if u, err := url.Parse(c.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "base_url",
			Message: fmt.Sprintf("'%s' is not an http(s) URL", c.BaseURL),
		})
	}

	if c.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "timeout",
			Message: "must be positive",
		})
	}
	if c.Timeout > 600 {
		errors = append(errors, ValidationError{
			Field:   "timeout",
			Message: "exceeds 600 seconds",
		})
	}

	if _, ok := theme.Get(c.Theme); !ok {
		errors = append(errors, ValidationError{
			Field:   "theme",
			Message: fmt.Sprintf("unknown theme '%s', valid: %s", c.Theme, strings.Join(theme.Names(), ", ")),
		})
	}

	if !containsFold(validLogLevels, c.LogLevel) {
		errors = append(errors, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be one of %s", strings.Join(validLogLevels, ", ")),
		})
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "server.port",
			Message: "must be between 1 and 65535",
		})
	}

	for _, pattern := range c.Server.CORS {
		if _, err := glob.Compile(pattern); err != nil {
			errors = append(errors, ValidationError{
				Field:   "server.cors",
				Message: fmt.Sprintf("invalid origin pattern '%s': %v", pattern, err),
			})
		}
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

// GetConfigPrecedence returns a description of config source precedence
func GetConfigPrecedence() string {
	return `Configuration is loaded in the following order (later sources override earlier):

1. Built-in defaults
2. Config file (~/.config/dreview/dreview.yaml, ./dreview.yaml, or $DREVIEW_CONFIG)
3. Stored credentials (~/.config/dreview/credentials.json, written by 'dreview login')
4. .env file in the working directory
5. Environment variables (DREVIEW_*, OPENROUTER_API_KEY, VITE_OPENROUTER_API_KEY)
6. Command-line flags (--api-key, --model, ...)
`
}

// ValidateAPIKey checks if an API key looks usable
func ValidateAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key is empty")
	}
	if strings.ContainsAny(key, " \t\n") {
		return fmt.Errorf("API key must not contain whitespace")
	}
	if len(key) < 20 {
		return fmt.Errorf("API key seems too short")
	}
	return nil
}
