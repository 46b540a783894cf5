package llm

import (
	"encoding/json"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/code-scoring/engine/internal/domain"
	"github.com/code-scoring/engine/internal/ports"
)

var _ ports.ProviderAdapter = (*geminiAdapter)(nil)

// geminiAdapter encodes the Gemini generateContent wire shape.
type geminiAdapter struct {
	config ProviderConfig
}

// newGeminiAdapter creates the adapter for the Gemini backend.
func newGeminiAdapter(config ProviderConfig) *geminiAdapter {
	return &geminiAdapter{config: config}
}

// geminiGenerationConfig carries the generation parameters in the
// generateContent body's camelCase wire form.
type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// geminiGenerateRequest is the generateContent request body. Contents reuse
// the genai SDK's wire types.
type geminiGenerateRequest struct {
	Contents         []*genai.Content       `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

// Provider returns the Gemini provider kind.
func (a *geminiAdapter) Provider() domain.ProviderKind { return domain.ProviderGemini }

// Endpoint composes the model-addressed generateContent URL.
func (a *geminiAdapter) Endpoint(baseURL, model string) string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", baseURL, model)
}

// BuildRequest produces headers and a generateContent body for the prompt.
// Authentication uses the x-goog-api-key header.
func (a *geminiAdapter) BuildRequest(prompt, model string) (http.Header, []byte, error) {
	req := geminiGenerateRequest{
		Contents: []*genai.Content{
			genai.NewContentFromText(prompt, genai.RoleUser),
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     a.config.Temperature,
			TopP:            a.config.TopP,
			TopK:            a.config.TopK,
			MaxOutputTokens: a.config.MaxOutputTokens,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("x-goog-api-key", a.config.APIKey)

	return headers, body, nil
}

// ExtractCompletionText tries the known generateContent response shapes in
// priority order: the current candidates[0].content.parts[*].text shape,
// then the older candidates[0].output shape.
func (a *geminiAdapter) ExtractCompletionText(body []byte) (string, error) {
	var resp genai.GenerateContentResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		if text := candidateText(&resp); text != "" {
			return text, nil
		}
	}

	var legacy struct {
		Candidates []struct {
			Output string `json:"output"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &legacy); err == nil && len(legacy.Candidates) > 0 {
		if legacy.Candidates[0].Output != "" {
			return legacy.Candidates[0].Output, nil
		}
	}

	return "", ports.NewUnexpectedProviderShapeError(domain.ProviderGemini,
		"no completion text in candidates parts or output shapes")
}

// candidateText concatenates the text parts of the first candidate.
func candidateText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	return text
}
