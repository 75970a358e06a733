package logging

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCompactHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With("component", "routes")

	log.Info("route found", "tag", "payment_route", "hops", 3, "note", "two words")

	line := buf.String()
	if !strings.HasPrefix(line, "[INFO]  ") {
		t.Errorf("Expected INFO prefix, got %q", line)
	}
	if !strings.Contains(line, "[routes] route found |") {
		t.Errorf("Expected component before message, got %q", line)
	}
	if !strings.Contains(line, "tag=payment_route hops=3") {
		t.Errorf("Expected key=value attributes, got %q", line)
	}
	if !strings.Contains(line, `note="two words"`) {
		t.Errorf("Expected quoted value, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Errorf("Component should not be repeated as attribute: %q", line)
	}
}

func TestCompactHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	h := NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Debug should be disabled at info level")
	}
	if !h.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("Warn should be enabled at info level")
	}

	trace := NewCompactHandler(&buf, &slog.HandlerOptions{Level: LevelTrace})
	slog.New(trace).Log(context.Background(), LevelTrace, "visiting node")
	if !strings.HasPrefix(buf.String(), "[TRACE] ") {
		t.Errorf("Expected TRACE prefix, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace": LevelTrace,
		"DEBUG": slog.LevelDebug,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range tests {
		got, err := ParseLevel(name)
		if err != nil {
			t.Errorf("ParseLevel(%q) unexpected error: %v", name, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestMiddlewareRequestID(t *testing.T) {
	var (
		observed   bool
		statusSeen int
		idSeen     string
	)
	handler := Middleware(func(r *http.Request, status int, d time.Duration) {
		observed = true
		statusSeen = status
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idSeen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/routes", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if idSeen != "abc-123" {
		t.Errorf("Expected request ID to propagate, got %q", idSeen)
	}
	if rec.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("Expected request ID response header, got %q", rec.Header().Get("X-Request-ID"))
	}
	if !observed || statusSeen != http.StatusTeapot {
		t.Errorf("Observer saw status %d (called=%v)", statusSeen, observed)
	}
}

func TestMiddlewareGeneratesRequestID(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(rec.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("Expected generated UUID request ID, got %q", rec.Header().Get("X-Request-ID"))
	}
}
