package application

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// AppConfig is the service-level configuration loaded at startup. Provider
// settings live in their own file referenced by ProvidersPath.
type AppConfig struct {
	// ListenAddr is the host:port the HTTP server binds to.
	ListenAddr string `yaml:"listen_addr" validate:"required"`
	// AllowedOrigins configures CORS for browser clients. Empty means no
	// cross-origin access.
	AllowedOrigins []string `yaml:"allowed_origins"`
	// LogLevel selects the zerolog level (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	// ProvidersPath points at the provider table YAML file.
	ProvidersPath string `yaml:"providers_path" validate:"required"`
	// PromptsDir optionally overrides the built-in prompt templates.
	PromptsDir string `yaml:"prompts_dir"`
	// BatchConcurrency bounds concurrent submissions per batch call.
	// Zero selects the default.
	BatchConcurrency int `yaml:"batch_concurrency" validate:"min=0,max=64"`
}

// LoadAppConfig reads and validates the service configuration from a YAML
// file. Any structural problem is a fatal startup error.
func LoadAppConfig(path string) (*AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	config := &AppConfig{
		ListenAddr: ":8000",
		LogLevel:   "info",
	}
	if err := yaml.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}
