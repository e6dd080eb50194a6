package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"
)

// Credentials holds the key stored by `dreview login`.
type Credentials struct {
	OpenRouterAPIKey string    `json:"openrouter_api_key,omitempty"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
}

// GetCredentialsPath returns the path to the credentials file
func GetCredentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dreview", "credentials.json"), nil
}

// LoadCredentials loads stored credentials
func LoadCredentials() (*Credentials, error) {
	path, err := GetCredentialsPath()
	if err != nil {
		return &Credentials{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Credentials{}, nil
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &creds, nil
}

// SaveCredentials saves credentials to disk
func SaveCredentials(creds *Credentials) error {
	path, err := GetCredentialsPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// readHiddenInput reads input without echoing it when in is a terminal.
func readHiddenInput(in *os.File, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	b, err := io.ReadAll(io.LimitReader(in, 4096))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Login asks for an OpenRouter key and stores it.
func Login(in *os.File, out io.Writer) error {
	key, err := readHiddenInput(in, out, "OpenRouter API key: ")
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}
	if err := ValidateAPIKey(key); err != nil {
		return err
	}
	if err := StoreAPIKey(key); err != nil {
		return err
	}
	path, _ := GetCredentialsPath()
	fmt.Fprintf(out, "✓ Key saved to %s (%s)\n", path, MaskKey(key))
	return nil
}

// StoreAPIKey writes key into the credentials file.
func StoreAPIKey(key string) error {
	creds, err := LoadCredentials()
	if err != nil {
		creds = &Credentials{}
	}
	creds.OpenRouterAPIKey = strings.TrimSpace(key)
	creds.UpdatedAt = time.Now().UTC()
	if err := SaveCredentials(creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// Logout removes stored credentials. It reports whether anything was removed.
func Logout() (bool, error) {
	path, err := GetCredentialsPath()
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
