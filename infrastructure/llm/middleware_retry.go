package llm

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/code-scoring/engine/internal/ports"
)

// Retry policy defaults. Delays grow exponentially from the base and are
// jittered to avoid synchronized retry storms against a provider.
const (
	retryBaseDelay    = 500 * time.Millisecond
	retryMaxDelay     = 10 * time.Second
	retryJitterFactor = 0.25
)

// WithRetry retries transient provider failures with exponential backoff.
// Only transport errors reporting IsRetryable (429, 5xx, network faults) are
// retried; malformed completions and client errors surface immediately. The
// attempt budget comes from each provider's MaxRetries setting.
func WithRetry(table *ProviderTable, logger zerolog.Logger) Middleware {
	return func(next ports.CompletionCaller) ports.CompletionCaller {
		return &retryCaller{next: next, table: table, logger: logger}
	}
}

type retryCaller struct {
	next   ports.CompletionCaller
	table  *ProviderTable
	logger zerolog.Logger
}

func (c *retryCaller) Call(ctx context.Context, adapter ports.ProviderAdapter, prompt, model string) (string, error) {
	kind := adapter.Provider()

	maxRetries := DefaultMaxRetries
	if config, ok := c.table.Config(kind); ok {
		maxRetries = config.MaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryDelay(attempt)
			c.logger.Debug().
				Str("provider", kind.String()).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("retrying provider call")

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		text, err := c.next.Call(ctx, adapter, prompt, model)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return "", err
		}
	}

	return "", lastErr
}

// retryDelay computes the jittered backoff for the given attempt number
// (1-based for the first retry).
func retryDelay(attempt int) time.Duration {
	delay := float64(retryBaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(retryMaxDelay) {
		delay = float64(retryMaxDelay)
	}

	jitter := 1 + retryJitterFactor*(2*rand.Float64()-1)
	return time.Duration(delay * jitter)
}

// isRetryable reports whether the error is a transient transport failure.
func isRetryable(err error) bool {
	var transportErr *ports.ProviderTransportError
	if errors.As(err, &transportErr) {
		return transportErr.IsRetryable()
	}
	return false
}
