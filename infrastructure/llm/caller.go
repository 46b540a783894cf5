package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/code-scoring/engine/internal/ports"
)

// maxErrorBodyBytes caps how much of an error response body is carried in a
// transport error for diagnostics.
const maxErrorBodyBytes = 4096

// Middleware wraps a CompletionCaller to add cross-cutting behavior such as
// retries, rate limiting, metrics, or tracing without touching transport
// logic.
type Middleware func(ports.CompletionCaller) ports.CompletionCaller

// HTTPCaller performs the outbound completion call over HTTP. It owns the
// per-provider timeout; the grading core above it has no retry loop or
// transport knowledge of its own.
type HTTPCaller struct {
	table  *ProviderTable
	client *http.Client
}

var _ ports.CompletionCaller = (*HTTPCaller)(nil)

// NewHTTPCaller creates the transport with the given provider table and
// wraps it with middleware, applied so the first middleware is outermost.
func NewHTTPCaller(table *ProviderTable, client *http.Client, middleware ...Middleware) ports.CompletionCaller {
	if client == nil {
		client = &http.Client{}
	}

	var caller ports.CompletionCaller = &HTTPCaller{table: table, client: client}
	for i := len(middleware) - 1; i >= 0; i-- {
		caller = middleware[i](caller)
	}
	return caller
}

// Call builds the request via the adapter, POSTs it to the provider's
// endpoint, and extracts the completion text from a 2xx body. A non-2xx
// status or network fault yields a *ports.ProviderTransportError carrying
// status and body for diagnostics.
func (c *HTTPCaller) Call(ctx context.Context, adapter ports.ProviderAdapter, prompt, model string) (string, error) {
	kind := adapter.Provider()

	config, ok := c.table.Config(kind)
	if !ok {
		return "", ports.ErrProviderNotConfigured
	}
	if model == "" {
		model = config.Model
	}

	headers, body, err := adapter.BuildRequest(prompt, model)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, config.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		adapter.Endpoint(config.BaseURL, model), bytes.NewReader(body))
	if err != nil {
		return "", &ports.ProviderTransportError{Provider: kind, Err: err}
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &ports.ProviderTransportError{Provider: kind, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ports.ProviderTransportError{Provider: kind, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ports.ProviderTransportError{
			Provider:   kind,
			StatusCode: resp.StatusCode,
			Body:       errorDetail(respBody),
		}
	}

	text, err := adapter.ExtractCompletionText(respBody)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ports.ErrEmptyCompletion
	}
	return text, nil
}

// errorDetail extracts a readable message from an error response body. Most
// backends wrap failures as {"error": {...}}; that envelope decodes into a
// googleapi.Error for Gemini and for OpenAI-dialect backends alike. Bodies
// that don't match are passed through truncated.
func errorDetail(body []byte) string {
	var envelope struct {
		Error *googleapi.Error `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil &&
		envelope.Error != nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}

	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}
	return string(body)
}
