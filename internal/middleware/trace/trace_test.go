package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "finboard/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	m := NewMiddleware(applog.Discard())
	var seen string
	var logger *applog.Logger
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		logger = applog.FromContext(r.Context())
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("expected generated request id, got %q", seen)
	}
	if rr.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("expected request id echoed in header")
	}
	if logger == nil || logger.Component() != applog.ComponentTrace {
		t.Fatalf("expected request logger in context")
	}
	if got := m.GetMetrics(); got.TotalRequests != 1 || got.ServerErrors != 1 {
		t.Fatalf("unexpected metrics %+v", got)
	}
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	m := NewMiddleware(applog.Discard())
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get(RequestIDHeader) != "abc" {
		t.Fatalf("expected incoming id to be kept")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Fatalf("expected remote host, got %q", got)
	}
	req.Header.Set("X-Real-IP", "10.0.0.2")
	if got := ClientIP(req); got != "10.0.0.2" {
		t.Fatalf("expected X-Real-IP, got %q", got)
	}
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.3")
	if got := ClientIP(req); got != "1.2.3.4" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}
	req.Header.Set("X-Forwarded-For", "2001:db8::1")
	if got := ClientIP(req); got != "2001:db8::1" {
		t.Fatalf("expected IPv6 forwarded hop, got %q", got)
	}
}

func TestClientIPIgnoresMalformedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	for _, junk := range []string{"junk-1", "not an ip", "1.2.3.4.5", "<script>"} {
		req.Header.Set("X-Forwarded-For", junk)
		req.Header.Set("X-Real-IP", junk)
		if got := ClientIP(req); got != "10.0.0.1" {
			t.Fatalf("X-Forwarded-For %q: expected remote host, got %q", junk, got)
		}
	}
	req.Header.Set("X-Forwarded-For", "junk")
	req.Header.Set("X-Real-IP", "10.0.0.2")
	if got := ClientIP(req); got != "10.0.0.2" {
		t.Fatalf("expected valid X-Real-IP after malformed forwarded hop, got %q", got)
	}
}
