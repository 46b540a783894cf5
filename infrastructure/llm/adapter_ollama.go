package llm

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/code-scoring/engine/internal/domain"
	"github.com/code-scoring/engine/internal/ports"
)

var _ ports.ProviderAdapter = (*ollamaAdapter)(nil)

// ollamaAdapter encodes the Ollama /api/generate wire shape.
type ollamaAdapter struct {
	config ProviderConfig
}

// newOllamaAdapter creates the adapter for a local Ollama backend.
func newOllamaAdapter(config ProviderConfig) *ollamaAdapter {
	return &ollamaAdapter{config: config}
}

// ollamaOptions carries the generation parameters Ollama nests under
// "options".
type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ollamaGenerateRequest is the /api/generate request body.
type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

// Provider returns the Ollama provider kind.
func (a *ollamaAdapter) Provider() domain.ProviderKind { return domain.ProviderOllama }

// Endpoint composes the generate URL. The model is addressed in the body.
func (a *ollamaAdapter) Endpoint(baseURL, _ string) string {
	return baseURL + "/api/generate"
}

// BuildRequest produces headers and a non-streaming generate body for the
// prompt. Local Ollama endpoints require no API key.
func (a *ollamaAdapter) BuildRequest(prompt, model string) (http.Header, []byte, error) {
	if model == "" {
		model = a.config.Model
	}

	req := ollamaGenerateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: a.config.Temperature,
			TopP:        a.config.TopP,
			TopK:        a.config.TopK,
			NumPredict:  a.config.MaxOutputTokens,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	return headers, body, nil
}

// ExtractCompletionText tries the known Ollama response shapes in priority
// order: the generate shape ({"response": ...}), the chat shape
// (message.content), and the OpenAI-compatible choices shape newer servers
// also expose.
func (a *ollamaAdapter) ExtractCompletionText(body []byte) (string, error) {
	var generate struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &generate); err == nil && generate.Response != "" {
		return generate.Response, nil
	}

	var chat struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &chat); err == nil && chat.Message.Content != "" {
		return chat.Message.Content, nil
	}

	var compat struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &compat); err == nil && len(compat.Choices) > 0 {
		if content := compat.Choices[0].Message.Content; content != "" {
			return content, nil
		}
	}

	return "", ports.NewUnexpectedProviderShapeError(domain.ProviderOllama,
		"no completion text in generate, chat, or choices shapes")
}
