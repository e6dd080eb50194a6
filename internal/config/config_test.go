package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// isolate points HOME and the working directory at fresh temp dirs and
// clears every variable Load consults.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	work = t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range append(apiKeyEnvVars, EnvConfig, "DREVIEW_MODEL", "DREVIEW_TIMEOUT", "DREVIEW_SERVER_PORT", "DREVIEW_LOG_LEVEL", "LOG_LEVEL") {
		t.Setenv(name, "x")
		os.Unsetenv(name)
	}
	t.Chdir(work)
	return home, work
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.Model != want.Model {
		t.Errorf("Model: want %q, got %q", want.Model, cfg.Model)
	}
	if cfg.BaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout() != 120*time.Second {
		t.Errorf("RequestTimeout: got %v", cfg.RequestTimeout())
	}
	if cfg.Server.Port != 4097 || cfg.Server.Hostname != "localhost" {
		t.Errorf("Server: got %+v", cfg.Server)
	}
	if cfg.APIKey != "" || cfg.KeySource() != "" {
		t.Errorf("no key expected, got %q from %q", cfg.APIKey, cfg.KeySource())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	home, _ := isolate(t)
	writeFile(t, filepath.Join(home, ".config", "dreview", "dreview.yaml"), `
api_key: sk-or-from-file
model: anthropic/claude-3-haiku
timeout: 30
server:
  port: 9000
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "sk-or-from-file" || cfg.KeySource() != "config file" {
		t.Errorf("APIKey: got %q from %q", cfg.APIKey, cfg.KeySource())
	}
	if cfg.Model != "anthropic/claude-3-haiku" {
		t.Errorf("Model: got %q", cfg.Model)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout: got %v", cfg.RequestTimeout())
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port: got %d", cfg.Server.Port)
	}
	if !strings.HasSuffix(cfg.ConfigFile(), "dreview.yaml") {
		t.Errorf("ConfigFile: got %q", cfg.ConfigFile())
	}
}

func TestLoadPrecedence(t *testing.T) {
	home, work := isolate(t)
	writeFile(t, filepath.Join(home, ".config", "dreview", "dreview.yaml"), "api_key: sk-or-from-file\n")

	if err := StoreAPIKey("sk-or-from-credentials"); err != nil {
		t.Fatalf("StoreAPIKey: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "sk-or-from-credentials" {
		t.Errorf("credentials should beat config file, got %q", cfg.APIKey)
	}

	writeFile(t, filepath.Join(work, ".env"), "VITE_OPENROUTER_API_KEY=sk-or-from-dotenv\n")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "sk-or-from-dotenv" || cfg.KeySource() != "environment" {
		t.Errorf(".env should beat credentials, got %q from %q", cfg.APIKey, cfg.KeySource())
	}

	t.Setenv("OPENROUTER_API_KEY", "sk-or-from-env")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "sk-or-from-env" {
		t.Errorf("OPENROUTER_API_KEY should beat VITE_OPENROUTER_API_KEY, got %q", cfg.APIKey)
	}

	t.Setenv("DREVIEW_API_KEY", "sk-or-prefixed")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "sk-or-prefixed" {
		t.Errorf("DREVIEW_API_KEY should win, got %q", cfg.APIKey)
	}

	cfg.SetAPIKey(" sk-or-flag ", "flag")
	if cfg.APIKey != "sk-or-flag" || cfg.KeySource() != "flag" {
		t.Errorf("SetAPIKey: got %q from %q", cfg.APIKey, cfg.KeySource())
	}
}

func TestLoadAPIKeyFromEachEnvVar(t *testing.T) {
	for _, name := range apiKeyEnvVars {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			t.Setenv(name, "sk-or-"+strings.ToLower(name))

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.APIKey != "sk-or-"+strings.ToLower(name) {
				t.Errorf("APIKey: want key from %s, got %q", name, cfg.APIKey)
			}
			if cfg.KeySource() != "environment" {
				t.Errorf("KeySource: want environment, got %q", cfg.KeySource())
			}
		})
	}
}

func TestLoadEnvOverridesNestedKeys(t *testing.T) {
	isolate(t)
	t.Setenv("DREVIEW_SERVER_PORT", "8123")
	t.Setenv("DREVIEW_MODEL", "meta-llama/llama-3-8b-instruct")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8123 {
		t.Errorf("Port: want 8123, got %d", cfg.Server.Port)
	}
	if cfg.Model != "meta-llama/llama-3-8b-instruct" {
		t.Errorf("Model: got %q", cfg.Model)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q", cfg.LogLevel)
	}
}

func TestLoadFromExplicitPath(t *testing.T) {
	_, work := isolate(t)

	if _, err := LoadFrom(filepath.Join(work, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}

	path := filepath.Join(work, "custom.yaml")
	writeFile(t, path, "model: meta-llama/llama-3-8b-instruct\n")
	t.Setenv(EnvConfig, path)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "meta-llama/llama-3-8b-instruct" {
		t.Errorf("Model: got %q", cfg.Model)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, "dreview.yaml"), "model: [unclosed\n")
	if _, err := Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown model", func(c *Config) { c.Model = "openai/gpt-4o" }, "model"},
		{"bad base url", func(c *Config) { c.BaseURL = "openrouter.ai" }, "base_url"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
		{"huge timeout", func(c *Config) { c.Timeout = 3600 }, "timeout"},
		{"unknown theme", func(c *Config) { c.Theme = "neon" }, "theme"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad cors pattern", func(c *Config) { c.Server.CORS = []string{"https://[a"} }, "server.cors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("want ValidationErrors, got %v", err)
			}
			if len(verrs) != 1 || verrs[0].Field != tt.field {
				t.Errorf("want one error on %q, got %v", tt.field, verrs)
			}
		})
	}
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"", true},
		{"short", true},
		{"sk-or-v1 with spaces in it", true},
		{"sk-or-v1-0123456789abcdef", false},
	}
	for _, tt := range tests {
		if err := ValidateAPIKey(tt.key); (err != nil) != tt.wantErr {
			t.Errorf("ValidateAPIKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
		}
	}
}

// TestSaveConfigPermissions verifies SaveConfig writes with 0600 permissions.
func TestSaveConfigPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dreview.yaml")

	cfg := Default()
	cfg.APIKey = "sk-or-secret"
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600 permissions, got %04o", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got Config
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.APIKey != "sk-or-secret" || got.Model != cfg.Model || got.Server.Port != cfg.Server.Port {
		t.Errorf("written config differs: %+v", got)
	}
}

func TestSaveConfigIsLoadable(t *testing.T) {
	isolate(t)
	cfg := Default()
	cfg.Model = "anthropic/claude-3-haiku"
	if err := cfg.SaveConfig(DefaultConfigPath()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Model != "anthropic/claude-3-haiku" {
		t.Errorf("Model: got %q", loaded.Model)
	}
}

func TestCredentialsRoundTrip(t *testing.T) {
	isolate(t)

	removed, err := Logout()
	if err != nil || removed {
		t.Fatalf("Logout with nothing stored: removed=%v err=%v", removed, err)
	}

	if err := StoreAPIKey("sk-or-v1-0123456789abcdef"); err != nil {
		t.Fatalf("StoreAPIKey: %v", err)
	}
	path, _ := GetCredentialsPath()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600 permissions, got %04o", perm)
	}

	creds, err := LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.OpenRouterAPIKey != "sk-or-v1-0123456789abcdef" {
		t.Errorf("key: got %q", creds.OpenRouterAPIKey)
	}

	removed, err = Logout()
	if err != nil || !removed {
		t.Fatalf("Logout: removed=%v err=%v", removed, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("credentials file should be gone")
	}
}

func TestLoginFromPipe(t *testing.T) {
	isolate(t)

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	w.WriteString("sk-or-v1-0123456789abcdef\n")
	w.Close()
	defer r.Close()

	var out strings.Builder
	if err := Login(r, &out); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if strings.Contains(out.String(), "0123456789") {
		t.Errorf("output should not echo the full key: %q", out.String())
	}
	creds, _ := LoadCredentials()
	if creds.OpenRouterAPIKey != "sk-or-v1-0123456789abcdef" {
		t.Errorf("stored key: got %q", creds.OpenRouterAPIKey)
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"short", "*****"},
		{"sk-or-v1-0123456789abcdef", "sk-o********cdef"},
	}
	for _, tt := range tests {
		if got := MaskKey(tt.in); got != tt.want {
			t.Errorf("MaskKey(%q): want %q, got %q", tt.in, tt.want, got)
		}
	}
}

// TestGetConfigDir returns a non-empty path.
func TestGetConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if got := GetConfigDir(); got != filepath.Join(home, ".config", "dreview") {
		t.Errorf("GetConfigDir: got %q", got)
	}
	if !strings.HasPrefix(DefaultLogFile(), GetConfigDir()) {
		t.Errorf("DefaultLogFile should live under the config dir: %q", DefaultLogFile())
	}
}
