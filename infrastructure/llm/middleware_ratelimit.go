package llm

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/code-scoring/engine/internal/domain"
	"github.com/code-scoring/engine/internal/ports"
)

// WithRateLimit throttles outbound calls per provider using a token bucket.
// Providers with RequestsPerSecond unset (zero) are not throttled. Waiting
// respects the caller's context, so a cancelled grading request stops
// queueing immediately.
func WithRateLimit(table *ProviderTable) Middleware {
	limiters := make(map[domain.ProviderKind]*rate.Limiter)
	for _, kind := range table.Kinds() {
		config, _ := table.Config(kind)
		if config.RequestsPerSecond > 0 {
			limiters[kind] = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
		}
	}

	return func(next ports.CompletionCaller) ports.CompletionCaller {
		return &rateLimitCaller{next: next, limiters: limiters}
	}
}

type rateLimitCaller struct {
	next     ports.CompletionCaller
	limiters map[domain.ProviderKind]*rate.Limiter
}

func (c *rateLimitCaller) Call(ctx context.Context, adapter ports.ProviderAdapter, prompt, model string) (string, error) {
	if limiter, ok := c.limiters[adapter.Provider()]; ok {
		if err := limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	return c.next.Call(ctx, adapter, prompt, model)
}
