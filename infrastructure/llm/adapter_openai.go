package llm

import (
	"encoding/json"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/code-scoring/engine/internal/domain"
	"github.com/code-scoring/engine/internal/ports"
)

var _ ports.ProviderAdapter = (*openAICompatAdapter)(nil)

// openAICompatAdapter encodes the OpenAI chat-completions wire family. It
// serves every backend that speaks that dialect: the hosted OpenAI API,
// DeepSeek, Grok, and local LM Studio endpoints.
type openAICompatAdapter struct {
	kind   domain.ProviderKind
	config ProviderConfig
}

// newOpenAICompatAdapter creates an adapter for one OpenAI-compatible
// backend identified by kind.
func newOpenAICompatAdapter(kind domain.ProviderKind, config ProviderConfig) *openAICompatAdapter {
	return &openAICompatAdapter{kind: kind, config: config}
}

// Provider returns the backend this adapter encodes.
func (a *openAICompatAdapter) Provider() domain.ProviderKind { return a.kind }

// Endpoint composes the chat-completions URL. The model is addressed in the
// request body, not the URL.
func (a *openAICompatAdapter) Endpoint(baseURL, _ string) string {
	return baseURL + "/v1/chat/completions"
}

// BuildRequest produces headers and a chat-completion body for the prompt.
// Local backends without an API key get no Authorization header.
func (a *openAICompatAdapter) BuildRequest(prompt, model string) (http.Header, []byte, error) {
	if model == "" {
		model = a.config.Model
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(a.config.Temperature),
		TopP:        float32(a.config.TopP),
		MaxTokens:   a.config.MaxOutputTokens,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal %s request: %w", a.kind, err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	if a.config.APIKey != "" {
		headers.Set("Authorization", "Bearer "+a.config.APIKey)
	}

	return headers, body, nil
}

// ExtractCompletionText tries the family's known response shapes in priority
// order: the chat-completions shape (choices[0].message.content), the legacy
// completions shape (choices[0].text), and the bare generate shapes some
// local servers emit ({"response": ...} or {"text": ...}).
func (a *openAICompatAdapter) ExtractCompletionText(body []byte) (string, error) {
	var chat openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &chat); err == nil && len(chat.Choices) > 0 {
		if content := chat.Choices[0].Message.Content; content != "" {
			return content, nil
		}
	}

	var legacy struct {
		Choices []struct {
			Text string `json:"text"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &legacy); err == nil && len(legacy.Choices) > 0 {
		if legacy.Choices[0].Text != "" {
			return legacy.Choices[0].Text, nil
		}
	}

	var generate struct {
		Response string `json:"response"`
		Text     string `json:"text"`
	}
	if err := json.Unmarshal(body, &generate); err == nil {
		if generate.Response != "" {
			return generate.Response, nil
		}
		if generate.Text != "" {
			return generate.Text, nil
		}
	}

	return "", ports.NewUnexpectedProviderShapeError(a.kind,
		"no completion text in chat, legacy, or generate shapes")
}
