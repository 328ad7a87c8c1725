package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/yungbote/cementplant-backend/internal/platform/logger"
)

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

var ErrOpen = errors.New("circuit breaker is open; fast-fail")

type Config struct {
	MaxFailures  int
	ResetTimeout time.Duration
}

// Breaker opens after MaxFailures consecutive failures and lets a single trial
// call through once ResetTimeout has passed.
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func New(name string, cfg Config, log *logger.Logger) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	blog := log.With("component", "CircuitBreaker", "breaker", name)
	maxFailures := uint32(cfg.MaxFailures)
	return &Breaker{
		name: name,
		cb: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     cfg.ResetTimeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= maxFailures
			},
			// Caller cancellation is not an upstream failure.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(_ string, from, to gobreaker.State) {
				if to == gobreaker.StateOpen {
					blog.Warn("Breaker opened", "from", fromLib(from).String())
					return
				}
				blog.Info("Breaker state changed", "from", fromLib(from).String(), "to", fromLib(to).String())
			},
		}),
	}
}

func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrOpen
	}
	return err
}

func (b *Breaker) State() State {
	return fromLib(b.cb.State())
}

func fromLib(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return Open
	case gobreaker.StateHalfOpen:
		return HalfOpen
	default:
		return Closed
	}
}
