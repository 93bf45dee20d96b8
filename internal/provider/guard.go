package provider

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
)

// GuardConfig configures Guard.
type GuardConfig struct {
	// Timeout bounds a single model call. Zero disables it.
	Timeout time.Duration
	// BreakerThreshold is the number of consecutive retryable failures that
	// open the circuit. Zero disables the breaker.
	BreakerThreshold int
	// BreakerCooldown is how long the circuit stays open.
	BreakerCooldown time.Duration
}

// Guard decorates a Provider with a per-call timeout and a circuit breaker.
// Only retryable failures count towards opening the circuit; auth and
// request errors are passed through untouched. Place it inside Retrying so
// every attempt is bounded.
type Guard struct {
	next    Provider
	timeout time.Duration
	breaker circuitbreaker.CircuitBreaker[*Response]
}

func NewGuard(next Provider, cfg GuardConfig) *Guard {
	g := &Guard{next: next, timeout: cfg.Timeout}
	if cfg.BreakerThreshold > 0 {
		threshold := uint32(cfg.BreakerThreshold) // #nosec G115 -- checked positive
		g.breaker = circuitbreaker.New[*Response](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    cfg.BreakerCooldown,
			Timeout:     cfg.BreakerCooldown,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
		})
	}
	return g
}

// Generate implements Provider.
func (g *Guard) Generate(ctx context.Context, req *Request) (*Response, error) {
	if g.breaker == nil {
		return g.call(ctx, req)
	}

	var (
		resp    *Response
		callErr error
		called  bool
	)
	_, err := g.breaker.Execute(ctx, func(ctx context.Context) (*Response, error) {
		called = true
		resp, callErr = g.call(ctx, req)
		if callErr != nil && IsRetryable(callErr) {
			return nil, callErr
		}
		return resp, nil
	})
	if called {
		return resp, callErr
	}
	if err != nil {
		return nil, &ProviderError{Code: ErrorCodeUnavailable, Message: "model backend circuit is open", Underlying: err}
	}
	return resp, callErr
}

func (g *Guard) call(ctx context.Context, req *Request) (*Response, error) {
	if g.timeout <= 0 {
		return g.next.Generate(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.next.Generate(ctx, req)
}
