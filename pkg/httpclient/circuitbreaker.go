package httpclient

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

// CircuitBreakerConfig holds configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies this breaker in metrics and logs.
	Name string

	// MaxRequests is how many requests may pass while half-open.
	MaxRequests uint32

	// Interval clears counts while closed. 0 never clears.
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration

	// FailureRatio trips the breaker once reached.
	FailureRatio float64

	// MinRequests must be seen before FailureRatio is evaluated.
	MinRequests uint32
}

// DefaultCircuitBreakerConfig returns defaults for a payment-provider breaker.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

var circuitBreakerState = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
	},
	[]string{"name"},
)

func init() {
	prometheus.MustRegister(circuitBreakerState)
}

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

// ErrCircuitOpen is returned when the breaker rejects a call.
var ErrCircuitOpen = gobreaker.ErrOpenState

// IsOpen reports whether err is a rejection by an open or saturated
// half-open breaker.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// Breaker guards calls to a flaky dependency.
type Breaker[T any] struct {
	cb     *gobreaker.CircuitBreaker[T]
	logger *slog.Logger
	name   string
}

// NewBreaker creates a breaker. isFailure decides which errors count
// against the dependency; nil counts every error.
func NewBreaker[T any](cfg CircuitBreakerConfig, isFailure func(error) bool, logger *slog.Logger) *Breaker[T] {
	if logger == nil {
		logger = slog.Default()
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			circuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}
	if isFailure != nil {
		settings.IsSuccessful = func(err error) bool { return err == nil || !isFailure(err) }
	}

	circuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	return &Breaker[T]{
		cb:     gobreaker.NewCircuitBreaker[T](settings),
		logger: logger,
		name:   cfg.Name,
	}
}

// Execute runs fn through the breaker. A canceled ctx short-circuits
// without touching the counts.
func (b *Breaker[T]) Execute(ctx context.Context, fn func() (T, error)) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	res, err := b.cb.Execute(fn)
	if IsOpen(err) {
		b.logger.WarnContext(ctx, "circuit breaker rejected call", slog.String("breaker", b.name))
	}
	return res, err
}

// State returns the current breaker state.
func (b *Breaker[T]) State() gobreaker.State {
	return b.cb.State()
}
