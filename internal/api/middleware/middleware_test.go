package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/logger"
)

func TestRecovery(t *testing.T) {
	h := Recovery(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Internal server error") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf)

	var seenID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		reqLog := logger.FromContext(r.Context())
		reqLog.Info().Msg("inside")
		w.WriteHeader(http.StatusTeapot)
	})
	h := RequestID(Logger(log)(inner))

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seenID != "req-123" {
		t.Errorf("request ID = %q, want req-123", seenID)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID header = %q", got)
	}
	out := buf.String()
	if strings.Count(out, `"request_id":"req-123"`) != 2 {
		t.Errorf("expected request_id on both log lines, got %s", out)
	}
	if !strings.Contains(out, `"status":418`) {
		t.Errorf("expected status in access log, got %s", out)
	}
}

func TestRequestID_Generated(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request ID")
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/transactions", nil))

	if rec.Code != http.StatusNoContent || called {
		t.Errorf("preflight status = %d, next called = %v", rec.Code, called)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing Access-Control-Allow-Origin")
	}
}
