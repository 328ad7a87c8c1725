package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/cementplant-backend/internal/platform/logger"
)

var errUpstream = errors.New("upstream 503")

func fail(context.Context) error { return errUpstream }
func ok(context.Context) error   { return nil }

func TestBreakerOpensAndRecovers(t *testing.T) {
	reset := 50 * time.Millisecond
	b := New("test", Config{MaxFailures: 2, ResetTimeout: reset}, logger.NewNop())

	for i := 0; i < 2; i++ {
		if err := b.Execute(context.Background(), fail); !errors.Is(err, errUpstream) {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	if b.State() != Open {
		t.Fatalf("expected open, got %s", b.State())
	}

	called := false
	err := b.Execute(context.Background(), func(context.Context) error { called = true; return nil })
	if !errors.Is(err, ErrOpen) || called {
		t.Fatalf("open breaker must fast-fail without calling op (err=%v called=%v)", err, called)
	}

	time.Sleep(2 * reset)
	if b.State() != HalfOpen {
		t.Fatalf("expected half_open after reset timeout, got %s", b.State())
	}
	if err := b.Execute(context.Background(), fail); !errors.Is(err, errUpstream) {
		t.Fatalf("trial call: %v", err)
	}
	if b.State() != Open {
		t.Fatalf("failed trial should reopen, got %s", b.State())
	}

	time.Sleep(2 * reset)
	if err := b.Execute(context.Background(), ok); err != nil {
		t.Fatalf("trial call: %v", err)
	}
	if b.State() != Closed {
		t.Fatalf("successful trial should close, got %s", b.State())
	}
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	b := New("test", Config{MaxFailures: 1}, logger.NewNop())
	_ = b.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	if b.State() != Closed {
		t.Fatalf("cancellation should not open the breaker")
	}
}

type stubText struct {
	calls int
	err   error
}

func (s *stubText) GenerateText(context.Context, string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "text", nil
}

func TestWrapText(t *testing.T) {
	stub := &stubText{err: errUpstream}
	g := WrapText(stub, New("gemini", Config{MaxFailures: 1, ResetTimeout: time.Hour}, logger.NewNop()))
	if _, err := g.GenerateText(context.Background(), "p"); !errors.Is(err, errUpstream) {
		t.Fatalf("first call: %v", err)
	}
	if _, err := g.GenerateText(context.Background(), "p"); !errors.Is(err, ErrOpen) {
		t.Fatalf("second call should fast-fail: %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("upstream called %d times", stub.calls)
	}
}
