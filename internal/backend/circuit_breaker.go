// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/shelfmark/internal/config"
	"github.com/tomtom215/shelfmark/internal/logging"
	"github.com/tomtom215/shelfmark/internal/metrics"
	"github.com/tomtom215/shelfmark/internal/models"
)

// BreakerName labels the backend breaker in logs and metrics.
const BreakerName = "catalogue-backend"

// CircuitBreakerClient wraps an API with the circuit breaker pattern so a
// failing backend is not hammered by every page load and live search.
//
// Only failures to serve count against the breaker: transport errors, 5xx and
// exhausted 429 retries. 404s and validation rejections count as successful
// round trips; caller cancellation is not counted at all.
type CircuitBreakerClient struct {
	client API
	cb     *gobreaker.CircuitBreaker[any]
	name   string
}

// NewCircuitBreakerClient wraps client with a breaker configured from cfg:
// MaxRequests probes while half-open, counts reset every Interval while
// closed, Timeout spent open before probing, and tripping once at least
// MinRequests were seen with a failure ratio >= FailureRate.
func NewCircuitBreakerClient(client API, cfg config.BreakerConfig) *CircuitBreakerClient {
	cbName := BreakerName

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRate
			if shouldTrip {
				logging.Warn().
					Str("breaker", cbName).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},

		IsSuccessful: isSuccessful,
		IsExcluded:   isExcluded,
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// New builds the backend API from configuration, wrapping the HTTP client in
// a circuit breaker unless it is disabled.
func New(cfg *config.BackendConfig) (API, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.Breaker.Enabled {
		return client, nil
	}
	return NewCircuitBreakerClient(client, cfg.Breaker), nil
}

// isExcluded drops requests that never tested the backend's health.
func isExcluded(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, ErrUnknownResource) || errors.Is(err, ErrInvalidID)
}

// isSuccessful counts backend rejections of the request itself as healthy
// round trips.
func isSuccessful(err error) bool {
	if err == nil || isExcluded(err) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.IsClientError()
	}
	return false
}

// execute wraps a backend call with circuit breaker protection.
func (cbc *CircuitBreakerClient) execute(fn func() (any, error)) (any, error) {
	result, err := cbc.cb.Execute(fn)

	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Str("breaker", cbc.name).Msg("[CIRCUIT BREAKER] Request rejected")
		case isSuccessful(err):
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
		default:
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
			counts := cbc.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(float64(counts.ConsecutiveFailures))
		}
		return result, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)
	return result, nil
}

// castResult type-casts the breaker result. The zero value is returned
// alongside any error.
func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// State returns the breaker state as "closed", "half-open" or "open".
func (cbc *CircuitBreakerClient) State() string {
	return stateToString(cbc.cb.State())
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// List fetches a collection with circuit breaker protection.
func (cbc *CircuitBreakerClient) List(ctx context.Context, resource string, params url.Values) ([]models.Record, error) {
	return castResult[[]models.Record](cbc.execute(func() (any, error) {
		return cbc.client.List(ctx, resource, params)
	}))
}

// Get fetches one record with circuit breaker protection.
func (cbc *CircuitBreakerClient) Get(ctx context.Context, resource string, id int64) (models.Record, error) {
	return castResult[models.Record](cbc.execute(func() (any, error) {
		return cbc.client.Get(ctx, resource, id)
	}))
}

// Create posts a record with circuit breaker protection.
func (cbc *CircuitBreakerClient) Create(ctx context.Context, resource string, body map[string]any) (models.Record, error) {
	return castResult[models.Record](cbc.execute(func() (any, error) {
		return cbc.client.Create(ctx, resource, body)
	}))
}

// Update replaces a record with circuit breaker protection.
func (cbc *CircuitBreakerClient) Update(ctx context.Context, resource string, id int64, body map[string]any) (models.Record, error) {
	return castResult[models.Record](cbc.execute(func() (any, error) {
		return cbc.client.Update(ctx, resource, id, body)
	}))
}

// Patch partially updates a record with circuit breaker protection.
func (cbc *CircuitBreakerClient) Patch(ctx context.Context, resource string, id int64, partial map[string]any) (models.Record, error) {
	return castResult[models.Record](cbc.execute(func() (any, error) {
		return cbc.client.Patch(ctx, resource, id, partial)
	}))
}

// Delete removes a record with circuit breaker protection.
func (cbc *CircuitBreakerClient) Delete(ctx context.Context, resource string, id int64) error {
	_, err := cbc.execute(func() (any, error) {
		return nil, cbc.client.Delete(ctx, resource, id)
	})
	return err
}

// Ping checks backend reachability with circuit breaker protection. An open
// breaker fails the ping without contacting the backend.
func (cbc *CircuitBreakerClient) Ping(ctx context.Context) error {
	_, err := cbc.execute(func() (any, error) {
		return nil, cbc.client.Ping(ctx)
	})
	return err
}
