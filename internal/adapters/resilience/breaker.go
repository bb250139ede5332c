// Package resilience wraps repositories with circuit breakers so a failing store is
// rejected quickly instead of holding every request for the full store timeout.
package resilience

import (
	"context"
	"errors"

	"github.com/medilink/backend/internal/infrastructure/observability"
	"github.com/medilink/backend/pkg/config"
	apperrors "github.com/medilink/backend/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Breaker guards calls to one backing store
type Breaker struct {
	name    string
	cb      *gobreaker.CircuitBreaker
	metrics *observability.Metrics
}

// NewBreaker creates a breaker named after the store it guards. metrics may be nil.
func NewBreaker(name string, cfg config.BreakerConfig, metrics *observability.Metrics) *Breaker {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			event := log.Info()
			if to == gobreaker.StateOpen {
				event = log.Warn()
			}
			event.Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
		IsSuccessful: isSuccessful,
	}

	return &Breaker{
		name:    name,
		cb:      gobreaker.NewCircuitBreaker(st),
		metrics: metrics,
	}
}

// State reports the current breaker state
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// isSuccessful treats caller mistakes and missing rows as healthy store responses
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeNotFound, apperrors.ErrorTypeInvalidParameter:
		return true
	}
	return errors.Is(err, context.Canceled)
}

func execute[T any](ctx context.Context, b *Breaker, fn func() (T, error)) (T, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			observability.RecordBreakerRejection(ctx, b.metrics, b.name)
			return zero, apperrors.NewStoreUnavailableError(b.name+" store temporarily unavailable", err)
		}
		return zero, err
	}
	return out.(T), nil
}
