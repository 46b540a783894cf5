package llm

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/code-scoring/engine/internal/ports"
)

// WithMetrics records call latency and outcome counters per provider on the
// given collector.
func WithMetrics(collector ports.MetricsCollector) Middleware {
	return func(next ports.CompletionCaller) ports.CompletionCaller {
		return &metricsCaller{next: next, collector: collector}
	}
}

type metricsCaller struct {
	next      ports.CompletionCaller
	collector ports.MetricsCollector
}

func (c *metricsCaller) Call(ctx context.Context, adapter ports.ProviderAdapter, prompt, model string) (string, error) {
	provider := adapter.Provider().String()
	start := time.Now()

	text, err := c.next.Call(ctx, adapter, prompt, model)

	c.collector.RecordLatency("llm_call_duration_seconds", time.Since(start),
		map[string]string{"provider": provider})
	c.collector.RecordCounter("llm_calls_total", 1,
		map[string]string{"provider": provider, "status": callStatus(err)})

	return text, err
}

// callStatus maps the call outcome to a metric label: "ok", the HTTP status
// code for provider-side failures, or "error" for everything else.
func callStatus(err error) string {
	if err == nil {
		return "ok"
	}

	var transportErr *ports.ProviderTransportError
	if errors.As(err, &transportErr) && transportErr.StatusCode != 0 {
		return strconv.Itoa(transportErr.StatusCode)
	}
	return "error"
}
