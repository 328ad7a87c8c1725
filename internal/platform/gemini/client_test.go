package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/cementplant-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, srv *httptest.Server, retries int) *Client {
	t.Helper()
	c, err := NewClient(logger.NewNop(), Config{APIKey: "k&ey", Model: "gemini-test", BaseURL: srv.URL, MaxRetries: retries, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.backoff = time.Millisecond
	return c
}

func TestGenerateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1beta/models/gemini-test:generateContent" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "k&ey" {
			t.Errorf("api key header = %q", got)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("api key must not be in the query: %q", r.URL.RawQuery)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("unexpected body %+v", req)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"RECOMMENDATION: "},{"text":"raise TSR"}]}}]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv, 0).GenerateText(context.Background(), "hello")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "RECOMMENDATION: raise TSR" {
		t.Fatalf("got %q", got)
	}
}

func TestGenerateTextRetriesOn503(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv, 2).GenerateText(context.Background(), "p")
	if err != nil || got != "ok" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestGenerateTextDoesNotRetry4xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, 3).GenerateText(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected 400 error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestGenerateTextNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, 0).GenerateText(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "SAFETY") {
		t.Fatalf("expected block reason, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(logger.NewNop(), Config{}); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestGenerateTextErrorsDoNotLeakKey(t *testing.T) {
	c, err := NewClient(logger.NewNop(), Config{APIKey: "AIzaSECRET123", BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = c.GenerateText(context.Background(), "hello")
	if err == nil {
		t.Fatalf("expected a transport error")
	}
	if strings.Contains(err.Error(), "AIzaSECRET123") {
		t.Fatalf("error leaks api key: %v", err)
	}
}

func TestGenerateTextRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", maxResponseBytes+1)))
	}))
	defer srv.Close()
	c := newTestClient(t, srv, 0)
	if _, err := c.GenerateText(context.Background(), "hello"); err == nil {
		t.Fatalf("oversized body should fail")
	}
}
