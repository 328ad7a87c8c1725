package shutdown

import (
	"context"
	"os/signal"
	"syscall"
	"time"
)

// DefaultGrace bounds how long Close may take after a signal.
const DefaultGrace = 15 * time.Second

func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// GraceContext is a fresh context for cleanup once the signal context is done.
func GraceContext(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultGrace
	}
	return context.WithTimeout(context.Background(), d)
}
