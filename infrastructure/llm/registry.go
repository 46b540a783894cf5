package llm

import (
	"fmt"

	"github.com/code-scoring/engine/internal/domain"
	"github.com/code-scoring/engine/internal/ports"
)

var _ ports.AdapterRegistry = (*Registry)(nil)

// Registry holds one adapter per configured provider kind. The set is closed:
// adapters are built from the provider table at startup and the registry is
// immutable afterwards, so concurrent grading calls can share it freely.
type Registry struct {
	adapters map[domain.ProviderKind]ports.ProviderAdapter
}

// NewRegistry builds adapters for every provider in the table. Each kind maps
// to one of three wire families: the Gemini generateContent shape, the
// OpenAI chat-completions shape (openai, deepseek, grok, lmstudio), and the
// Ollama generate shape.
func NewRegistry(table *ProviderTable) (*Registry, error) {
	adapters := make(map[domain.ProviderKind]ports.ProviderAdapter)

	for _, kind := range table.Kinds() {
		config, _ := table.Config(kind)

		switch kind {
		case domain.ProviderGemini:
			adapters[kind] = newGeminiAdapter(config)
		case domain.ProviderOpenAI, domain.ProviderDeepSeek, domain.ProviderGrok, domain.ProviderLMStudio:
			adapters[kind] = newOpenAICompatAdapter(kind, config)
		case domain.ProviderOllama:
			adapters[kind] = newOllamaAdapter(config)
		default:
			return nil, fmt.Errorf("no adapter implementation for provider %q", kind)
		}
	}

	return &Registry{adapters: adapters}, nil
}

// Adapter returns the adapter for a provider kind and true when one is
// configured.
func (r *Registry) Adapter(kind domain.ProviderKind) (ports.ProviderAdapter, bool) {
	adapter, ok := r.adapters[kind]
	return adapter, ok
}
