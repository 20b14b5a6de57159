package backend

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"posterminal/internal/config"
	apperrors "posterminal/internal/errors"
)

const breakerName = "inventory-backend"

func newBreaker(cfg config.BreakerConfig, logger *zap.Logger, recorder Recorder) *gobreaker.CircuitBreaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}

	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			recorder.SetCircuitBreakerState(name, int(to))
		},
	}

	recorder.SetCircuitBreakerState(breakerName, int(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker(settings)
}

// countsAsSuccess keeps client errors (4xx, rejected payloads) from tripping
// the breaker: the backend answered, so it is healthy. A call the caller
// cancelled says nothing about the backend either.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	if se, ok := apperrors.IsServerError(err); ok {
		return se.StatusCode < 500
	}
	return errors.Is(err, ErrUnexpectedShape)
}
