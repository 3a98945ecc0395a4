package ratelimit

import (
	"net/http"
	"sync"
	"time"
)

// Classes of transaction mutations with separate budgets.
const (
	ClassCreate = "create"
	ClassDelete = "delete"
	ClassOther  = "mutation"
)

// Classifier names the budget a request draws from. An empty class is not
// limited.
type Classifier func(*http.Request) string

// Limiter counts requests per client and class in fixed one-minute windows.
type Limiter struct {
	mu           sync.Mutex
	windows      map[windowKey]*window
	rejected     map[string]int64
	stopCleanup  chan struct{}
	shutdownOnce sync.Once

	requestsPerMinute int
	cleanupInterval   time.Duration
	idleTimeout       time.Duration
	now               func() time.Time
}

type windowKey struct {
	client string
	class  string
}

type window struct {
	start    time.Time
	lastSeen time.Time
	count    int
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
	IdleTimeout       time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
		IdleTimeout:       10 * time.Minute,
	}
}

// NewLimiter creates a limiter and starts its cleanup goroutine; call Stop
// to release it.
func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = def.IdleTimeout
	}
	rl := &Limiter{
		windows:           make(map[windowKey]*window),
		rejected:          make(map[string]int64),
		stopCleanup:       make(chan struct{}),
		requestsPerMinute: config.RequestsPerMinute,
		cleanupInterval:   config.CleanupInterval,
		idleTimeout:       config.IdleTimeout,
		now:               time.Now,
	}
	go rl.startCleanup()
	return rl
}

// Allow records one request from client against class and reports whether
// it fits the current window.
func (rl *Limiter) Allow(client, class string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	key := windowKey{client: client, class: class}
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) > time.Minute {
		rl.windows[key] = &window{start: now, lastSeen: now, count: 1}
		return true
	}

	w.count++
	w.lastSeen = now
	if w.count > rl.requestsPerMinute {
		rl.rejected[class]++
		return false
	}
	return true
}

func (rl *Limiter) startCleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries drops windows idle longer than the idle timeout.
func (rl *Limiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idleTimeout)
	for key, w := range rl.windows {
		if w.lastSeen.Before(cutoff) {
			delete(rl.windows, key)
		}
	}
}

// ActiveClients returns the number of distinct clients with a live window.
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	seen := make(map[string]struct{}, len(rl.windows))
	for key := range rl.windows {
		seen[key.client] = struct{}{}
	}
	return len(seen)
}

// Rejected returns refused requests per class.
func (rl *Limiter) Rejected() map[string]int64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	out := make(map[string]int64, len(rl.rejected))
	for class, n := range rl.rejected {
		out[class] = n
	}
	return out
}

// Stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// Middleware limits requests that classify names a class. Unclassified
// requests pass straight through.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string, classify Classifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if class := classify(r); class != "" && !rl.Allow(extractIP(r), class) {
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TransactionMutations classifies form submissions and deletions of
// transactions. Reads are not limited.
func TransactionMutations(r *http.Request) string {
	switch r.Method {
	case http.MethodPost:
		switch r.URL.Path {
		case "/transactions":
			return ClassCreate
		case "/transactions/delete":
			return ClassDelete
		}
		return ClassOther
	case http.MethodDelete:
		return ClassDelete
	case http.MethodPut, http.MethodPatch:
		return ClassOther
	default:
		return ""
	}
}
