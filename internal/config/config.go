package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Dhanuzh/dreview/internal/provider"
	"github.com/Dhanuzh/dreview/internal/review"
)

const (
	EnvPrefix = "DREVIEW"
	EnvConfig = "DREVIEW_CONFIG" // path to an explicit config file

	// ConfigName is the file stem searched for in the config directories.
	ConfigName = "dreview"
)

// Environment variables consulted for the API key, in priority order.
var apiKeyEnvVars = []string{"DREVIEW_API_KEY", "OPENROUTER_API_KEY", "VITE_OPENROUTER_API_KEY"}

// Config holds all configuration for dreview.
type Config struct {
	APIKey     string `mapstructure:"api_key" yaml:"api_key,omitempty" json:"api_key,omitempty"`
	Model      string `mapstructure:"model" yaml:"model" json:"model"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
	Timeout    int    `mapstructure:"timeout" yaml:"timeout" json:"timeout"` // seconds
	MaskAPIKey bool   `mapstructure:"mask_api_key" yaml:"mask_api_key" json:"mask_api_key"`

	Theme    string `mapstructure:"theme" yaml:"theme" json:"theme"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file,omitempty" json:"log_file,omitempty"`

	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Populated at load time, not serialized.
	configFile string
	keySource  string
}

// ServerConfig defines the HTTP server settings
type ServerConfig struct {
	Hostname string   `mapstructure:"hostname" yaml:"hostname" json:"hostname"`
	Port     int      `mapstructure:"port" yaml:"port" json:"port"`
	CORS     []string `mapstructure:"cors" yaml:"cors,omitempty" json:"cors,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model:      review.DefaultModel(),
		BaseURL:    provider.OpenRouterBaseURL,
		Timeout:    int(provider.DefaultTimeout / time.Second),
		MaskAPIKey: true,
		Theme:      "dreview",
		LogLevel:   "info",
		Server: ServerConfig{
			Hostname: "localhost",
			Port:     4097,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("api_key", "")
	v.SetDefault("model", d.Model)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("mask_api_key", d.MaskAPIKey)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("server.hostname", d.Server.Hostname)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.cors", []string{})
}

// Load reads configuration from the default locations, or from the file
// named by DREVIEW_CONFIG when set.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv(EnvConfig))
}

// LoadFrom reads configuration with path as the config file. An empty path
// searches ~/.config/dreview and the working directory; a missing file is
// only an error when path is explicit.
//
// Precedence, lowest first: defaults, config file, stored credentials,
// .env file, environment variables. Flags are applied by the caller.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(GetConfigDir())
		v.AddConfigPath(".")
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
	}

	// .env never overrides variables already present in the environment.
	_ = godotenv.Load()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(append([]string{"api_key"}, apiKeyEnvVars...)...)
	_ = v.BindEnv("log_level", "DREVIEW_LOG_LEVEL", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.configFile = v.ConfigFileUsed()

	switch {
	case envAPIKey() != "":
		cfg.keySource = "environment"
	case cfg.APIKey != "":
		cfg.keySource = "config file"
	}
	if cfg.keySource != "environment" {
		if creds, err := LoadCredentials(); err == nil && creds.OpenRouterAPIKey != "" {
			cfg.APIKey = creds.OpenRouterAPIKey
			cfg.keySource = "credentials"
		}
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	return cfg, nil
}

func envAPIKey() string {
	for _, name := range apiKeyEnvVars {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return ""
}

// GetConfigDir returns the dreview config directory
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dreview"
	}
	return filepath.Join(home, ".config", "dreview")
}

// DefaultConfigPath is where `config init` writes.
func DefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), ConfigName+".yaml")
}

// DefaultLogFile is the rotated log used when log_file is unset.
func DefaultLogFile() string {
	return filepath.Join(GetConfigDir(), "logs", "dreview.log")
}

// ConfigFile returns the file the config was read from, or "".
func (c *Config) ConfigFile() string { return c.configFile }

// KeySource names where the API key came from, or "" when none is set.
func (c *Config) KeySource() string { return c.keySource }

// SetAPIKey overrides the key, e.g. from a command-line flag.
func (c *Config) SetAPIKey(key, source string) {
	c.APIKey = strings.TrimSpace(key)
	c.keySource = source
}

// RequestTimeout bounds a single completion call.
func (c *Config) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return provider.DefaultTimeout
	}
	return time.Duration(c.Timeout) * time.Second
}

// LogPath returns the configured log file or the default one.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return DefaultLogFile()
}

// ProviderOptions returns the endpoint settings for the completion client.
func (c *Config) ProviderOptions() provider.Options {
	return provider.Options{
		BaseURL: c.BaseURL,
		Timeout: c.RequestTimeout(),
		Headers: map[string]string{
			"HTTP-Referer": "https://github.com/Dhanuzh/dreview",
			"X-Title":      "dreview",
		},
	}
}

// ProviderFactory builds OpenRouter clients for review.Form.
func (c *Config) ProviderFactory() review.ProviderFactory {
	opts := c.ProviderOptions()
	return func(apiKey string) provider.Provider {
		return provider.NewOpenRouterProvider(apiKey, opts)
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Hostname, c.Server.Port)
}

// MaskedAPIKey shows only the ends of the key.
func (c *Config) MaskedAPIKey() string {
	return MaskKey(c.APIKey)
}

// MaskKey hides all but the first and last four characters of key.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 12 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 8) + key[len(key)-4:]
}

// SaveConfig writes the config as YAML. The API key is included, so the
// file is created with 0600 permissions.
func (c *Config) SaveConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// String returns a human-readable representation
func (c *Config) String() string {
	return fmt.Sprintf("Config{Model: %s, BaseURL: %s, Timeout: %ds}", c.Model, c.BaseURL, c.Timeout)
}
