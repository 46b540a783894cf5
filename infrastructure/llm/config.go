// Package llm bridges the grading core to concrete LLM backends. It holds
// the immutable provider configuration table, one adapter per backend wire
// family, and the HTTP caller with its middleware chain for retry, rate
// limiting, metrics, and tracing.
package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/code-scoring/engine/internal/domain"
)

// Default request parameters applied when a provider entry omits them.
const (
	DefaultTimeoutSeconds  = 60
	DefaultMaxRetries      = 2
	DefaultMaxOutputTokens = 2048
)

var configValidate = validator.New()

// ProviderConfig holds everything needed to call one backend: endpoint,
// credentials, model, generation parameters, and transport limits. The table
// of configs is constructed once at startup and never mutated afterwards, so
// adapters can be tested without environment mutation.
type ProviderConfig struct {
	// BaseURL is the backend's root URL; adapters append their own paths.
	BaseURL string `yaml:"base_url" validate:"required,url"`

	// Model is the default model, overridable per request.
	Model string `yaml:"model" validate:"required"`

	// APIKeyEnv names the environment variable holding the API key. Empty
	// for local backends that require none.
	APIKeyEnv string `yaml:"api_key_env"`

	// APIKey is resolved from APIKeyEnv at load time.
	APIKey string `yaml:"-"`

	// Temperature controls sampling randomness.
	Temperature float64 `yaml:"temperature" validate:"min=0,max=2"`

	// TopP is the nucleus-sampling threshold. Zero means provider default.
	TopP float64 `yaml:"top_p" validate:"min=0,max=1"`

	// TopK limits sampling to the K most likely tokens. Zero means provider
	// default; only some backends honor it.
	TopK int `yaml:"top_k" validate:"min=0,max=100"`

	// MaxOutputTokens bounds the completion length.
	MaxOutputTokens int `yaml:"max_output_tokens" validate:"min=0"`

	// TimeoutSeconds is the per-request deadline for the outbound call.
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"min=0,max=600"`

	// MaxRetries is the number of additional attempts after a retryable
	// transport failure.
	MaxRetries int `yaml:"max_retries" validate:"min=0,max=10"`

	// RequestsPerSecond caps the sustained outbound rate. Zero disables
	// rate limiting for this provider.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`
}

// Timeout returns the configured per-request deadline.
func (c ProviderConfig) Timeout() time.Duration {
	seconds := c.TimeoutSeconds
	if seconds <= 0 {
		seconds = DefaultTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}

// ProviderTable maps provider kinds to their configuration. It is immutable
// after construction.
type ProviderTable struct {
	configs map[domain.ProviderKind]ProviderConfig
}

// NewProviderTable builds a table from explicit entries, resolving API keys
// from the environment and validating every entry. Unknown provider kinds
// are rejected so a typo in configuration fails at startup rather than at
// request time.
func NewProviderTable(entries map[domain.ProviderKind]ProviderConfig) (*ProviderTable, error) {
	configs := make(map[domain.ProviderKind]ProviderConfig, len(entries))

	for kind, cfg := range entries {
		if !kind.IsValid() {
			return nil, fmt.Errorf("unknown provider %q in configuration", kind)
		}
		if err := configValidate.Struct(cfg); err != nil {
			return nil, fmt.Errorf("provider %s configuration: %w", kind, err)
		}

		if cfg.APIKeyEnv != "" {
			cfg.APIKey = os.Getenv(cfg.APIKeyEnv)
			if cfg.APIKey == "" {
				return nil, fmt.Errorf("%s environment variable not set for provider %s", cfg.APIKeyEnv, kind)
			}
		}
		if cfg.MaxOutputTokens == 0 {
			cfg.MaxOutputTokens = DefaultMaxOutputTokens
		}

		configs[kind] = cfg
	}

	if len(configs) == 0 {
		return nil, fmt.Errorf("provider table is empty")
	}

	return &ProviderTable{configs: configs}, nil
}

// LoadProviderTable reads a YAML provider table from path. Entries are keyed
// by provider name (openai, gemini, deepseek, grok, lmstudio, ollama).
func LoadProviderTable(path string) (*ProviderTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider configuration: %w", err)
	}

	var raw map[string]ProviderConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse provider configuration: %w", err)
	}

	entries := make(map[domain.ProviderKind]ProviderConfig, len(raw))
	for name, cfg := range raw {
		entries[domain.ProviderKind(name)] = cfg
	}

	return NewProviderTable(entries)
}

// Config returns the configuration for a provider kind.
func (t *ProviderTable) Config(kind domain.ProviderKind) (ProviderConfig, bool) {
	cfg, ok := t.configs[kind]
	return cfg, ok
}

// Kinds returns the configured provider kinds.
func (t *ProviderTable) Kinds() []domain.ProviderKind {
	kinds := make([]domain.ProviderKind, 0, len(t.configs))
	for kind := range t.configs {
		kinds = append(kinds, kind)
	}
	return kinds
}
