package provider

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/Cyclone1070/turnkit/internal/logging"
)

// errPermanent tags failures that must not be retried.
var errPermanent = errors.New("permanent provider failure")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string   { return e.err.Error() }
func (e *permanentError) Unwrap() []error { return []error{errPermanent, e.err} }

// RetryConfig configures Retrying.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// Retrying decorates a Provider, retrying failures whose ProviderError is
// marked Retryable with exponential backoff. Other failures, including
// partial responses, are returned after the first attempt.
type Retrying struct {
	next    Provider
	retrier retry.Retry[*Response]
}

// NewRetrying wraps next.
func NewRetrying(next Provider, cfg RetryConfig) *Retrying {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Retrying{
		next: next,
		retrier: retry.New[*Response](retry.Config{
			MaxAttempts:        cfg.MaxAttempts,
			InitialDelay:       cfg.InitialDelay,
			BackoffPolicy:      retry.BackoffExponential,
			Multiplier:         2.0,
			NonRetryableErrors: []error{errPermanent},
		}),
	}
}

// Generate implements Provider.
func (r *Retrying) Generate(ctx context.Context, req *Request) (*Response, error) {
	var (
		partial *Response
		attempt int
	)

	resp, err := r.retrier.Do(ctx, func(ctx context.Context) (*Response, error) {
		attempt++
		resp, err := r.next.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		partial = resp
		if !IsRetryable(err) || ctx.Err() != nil {
			return nil, &permanentError{err: err}
		}
		logging.Warn().With(logging.Attempt(attempt), logging.Err(err)).Msg("retrying model call")
		return nil, err
	})
	if err != nil {
		var perm *permanentError
		if errors.As(err, &perm) {
			err = perm.err
		}
		return partial, err
	}
	return resp, nil
}
