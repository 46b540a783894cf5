// Package ports defines the interfaces between the grading core and its
// collaborators: provider adapters that bridge backend-specific wire shapes
// into raw text, the transport that performs the outbound HTTP call, and
// operational concerns like metrics.
package ports

import (
	"context"
	"net/http"
	"time"

	"github.com/code-scoring/engine/internal/domain"
)

// ProviderAdapter bridges one LLM backend's wire shape into the common raw
// text the response normalizer consumes. Adapters never perform scoring
// logic; they only build outbound requests and extract completion text.
type ProviderAdapter interface {
	// Provider returns the backend this adapter encodes.
	Provider() domain.ProviderKind

	// Endpoint composes the full request URL from the configured base URL
	// and the model being addressed.
	Endpoint(baseURL, model string) string

	// BuildRequest produces the headers and JSON body for an outbound
	// completion call with the given prompt and model.
	BuildRequest(prompt, model string) (http.Header, []byte, error)

	// ExtractCompletionText pulls the raw completion text out of a 2xx
	// response body, trying the backend family's known shapes in a fixed
	// priority order. Returns an *UnexpectedProviderShapeError when no known
	// shape matches; that indicates adapter/backend version drift rather than
	// a transport failure.
	ExtractCompletionText(body []byte) (string, error)
}

// AdapterRegistry resolves the adapter for a provider kind. The provider set
// is closed and fixed at deployment.
type AdapterRegistry interface {
	Adapter(kind domain.ProviderKind) (ProviderAdapter, bool)
}

// CompletionCaller performs the outbound LLM call for one grading attempt:
// build the request via the adapter, POST it, and hand the extracted
// completion text back. Implementations own timeout and retry behavior; the
// grading core has no retry loop of its own.
type CompletionCaller interface {
	Call(ctx context.Context, adapter ProviderAdapter, prompt, model string) (string, error)
}

// MetricsCollector records operational metrics for grading calls.
// Implementations integrate with Prometheus or similar systems.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
