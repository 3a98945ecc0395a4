package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowWindow(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 2})
	defer rl.Stop()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a", ClassCreate) || !rl.Allow("a", ClassCreate) {
		t.Fatalf("first two requests must pass")
	}
	if rl.Allow("a", ClassCreate) {
		t.Fatalf("third request in window must be rejected")
	}
	if !rl.Allow("a", ClassDelete) {
		t.Fatalf("classes have separate budgets")
	}
	if !rl.Allow("b", ClassCreate) {
		t.Fatalf("other clients are independent")
	}
	now = now.Add(61 * time.Second)
	if !rl.Allow("a", ClassCreate) {
		t.Fatalf("new window must reset the counter")
	}
	if got := rl.Rejected(); got[ClassCreate] != 1 || got[ClassDelete] != 0 {
		t.Fatalf("unexpected rejections %v", got)
	}
	if rl.ActiveClients() != 2 {
		t.Fatalf("expected 2 clients, got %d", rl.ActiveClients())
	}

	now = now.Add(11 * time.Minute)
	rl.cleanupStaleEntries()
	if rl.ActiveClients() != 0 {
		t.Fatalf("expected stale entries removed")
	}
}

func TestTransactionMutations(t *testing.T) {
	tests := []struct {
		method, path string
		want         string
	}{
		{http.MethodGet, "/", ""},
		{http.MethodGet, "/history", ""},
		{http.MethodPost, "/transactions", ClassCreate},
		{http.MethodPost, "/transactions/delete", ClassDelete},
		{http.MethodDelete, "/transactions", ClassDelete},
		{http.MethodPost, "/other", ClassOther},
		{http.MethodPut, "/transactions", ClassOther},
	}
	for _, tt := range tests {
		if got := TransactionMutations(httptest.NewRequest(tt.method, tt.path, nil)); got != tt.want {
			t.Errorf("%s %s = %q, want %q", tt.method, tt.path, got, tt.want)
		}
	}
}

func TestMiddlewareOnlyLimitsMutations(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	defer rl.Stop()
	h := rl.Middleware(func(*http.Request) string { return "x" }, TransactionMutations)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("GET must not be limited, got %d", rr.Code)
		}
	}
	codes := []int{}
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/transactions", nil))
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/transactions/delete", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("delete budget is separate from create, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "" {
		t.Fatalf("Retry-After only set on rejection")
	}
}
