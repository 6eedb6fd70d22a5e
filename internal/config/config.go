// Package config loads and validates the on-disk configuration for
// operator-agent.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultEnvTimeoutSec = 65
	defaultMaxSteps      = 100

	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config is the on-disk configuration. Field names are snake_case to match
// the rest of the agent config surface. Secrets (API keys) are not stored
// here; the oracle key is read from the environment variable named by
// api_key_env.
type Config struct {
	// EnvironmentBaseURL is the environment runtime endpoint. Required.
	EnvironmentBaseURL string `json:"environment_base_url"`

	// EnvironmentTimeoutSec bounds a single environment call. Default: 65.
	EnvironmentTimeoutSec int `json:"environment_timeout_sec,omitempty"`

	Oracle OracleConfig `json:"oracle"`

	// MaxSteps caps loop iterations per run. Default: 100.
	MaxSteps int `json:"max_steps,omitempty"`

	// DBPath is the sqlite file for run records. Empty disables persistence.
	DBPath string `json:"db_path,omitempty"`

	// SystemPrompt is prepended to every oracle invocation. Immutable after
	// process start.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// LogFormat is "json" or "text".
	LogFormat string `json:"log_format,omitempty"`
	// LogLevel is "debug|info|warn|error".
	LogLevel string `json:"log_level,omitempty"`
}

type OracleConfig struct {
	// Provider is one of: "anthropic" | "openai".
	Provider string `json:"provider"`
	Model    string `json:"model"`
	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty"`
	// APIKeyEnv names the environment variable holding the provider key.
	// Defaults to ANTHROPIC_API_KEY / OPENAI_API_KEY per provider.
	APIKeyEnv string `json:"api_key_env,omitempty"`
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	base := strings.TrimSpace(c.EnvironmentBaseURL)
	if base == "" {
		return errors.New("missing environment_base_url")
	}
	u, err := url.Parse(base)
	if err != nil || strings.TrimSpace(u.Host) == "" {
		return fmt.Errorf("invalid environment_base_url %q", c.EnvironmentBaseURL)
	}
	switch strings.ToLower(strings.TrimSpace(u.Scheme)) {
	case "http", "https":
	default:
		return fmt.Errorf("invalid environment_base_url scheme %q", u.Scheme)
	}
	if c.EnvironmentTimeoutSec < 0 {
		return fmt.Errorf("invalid environment_timeout_sec %d", c.EnvironmentTimeoutSec)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("invalid max_steps %d", c.MaxSteps)
	}
	switch strings.ToLower(strings.TrimSpace(c.Oracle.Provider)) {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("invalid oracle provider %q", c.Oracle.Provider)
	}
	if strings.TrimSpace(c.Oracle.Model) == "" {
		return errors.New("missing oracle model")
	}
	return nil
}

func (c *Config) EffectiveEnvironmentTimeout() time.Duration {
	if c == nil || c.EnvironmentTimeoutSec <= 0 {
		return defaultEnvTimeoutSec * time.Second
	}
	return time.Duration(c.EnvironmentTimeoutSec) * time.Second
}

func (c *Config) EffectiveMaxSteps() int {
	if c == nil || c.MaxSteps <= 0 {
		return defaultMaxSteps
	}
	return c.MaxSteps
}

func (c *Config) EffectiveAPIKeyEnv() string {
	if c != nil {
		if name := strings.TrimSpace(c.Oracle.APIKeyEnv); name != "" {
			return name
		}
	}
	if c != nil && strings.ToLower(strings.TrimSpace(c.Oracle.Provider)) == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}

func (c *Config) EffectiveLogFormat() string {
	if c == nil {
		return "json"
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "text":
		return "text"
	default:
		return "json"
	}
}

func (c *Config) EffectiveLogLevel() string {
	if c == nil {
		return "info"
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "warn", "error":
		return strings.ToLower(strings.TrimSpace(c.LogLevel))
	default:
		return "info"
	}
}

// DefaultConfigPath returns the default config path:
//
//	~/.operator-agent/config.json
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return "operator-agent.config.json"
	}
	return filepath.Join(home, ".operator-agent", "config.json")
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	// Write atomically.
	tmp := path + ".tmp"
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
