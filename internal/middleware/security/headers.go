package security

import (
	"fmt"
	"net/http"
	"strings"
)

// ChartCDN serves the Chart.js bundle the dashboard page loads.
const ChartCDN = "https://cdn.jsdelivr.net"

// Directive is one Content-Security-Policy directive with its sources.
type Directive struct {
	Name    string
	Sources []string
}

// Policy renders directives in order, separated by "; ".
func Policy(directives ...Directive) string {
	parts := make([]string, 0, len(directives))
	for _, d := range directives {
		if len(d.Sources) == 0 {
			parts = append(parts, d.Name)
			continue
		}
		parts = append(parts, d.Name+" "+strings.Join(d.Sources, " "))
	}
	return strings.Join(parts, "; ")
}

// DashboardPolicy allows the page's own assets, inline chart styles and
// the chart bundle from scriptOrigins.
func DashboardPolicy(scriptOrigins ...string) string {
	return Policy(
		Directive{"default-src", []string{"'self'"}},
		Directive{"script-src", append([]string{"'self'"}, scriptOrigins...)},
		Directive{"style-src", []string{"'self'", "'unsafe-inline'"}},
		Directive{"img-src", []string{"'self'", "data:"}},
		Directive{"connect-src", []string{"'self'"}},
		Directive{"object-src", []string{"'none'"}},
		Directive{"frame-ancestors", []string{"'none'"}},
		Directive{"base-uri", []string{"'self'"}},
		Directive{"form-action", []string{"'self'"}},
	)
}

// HeadersConfig holds security headers configuration. Empty values are
// not sent.
type HeadersConfig struct {
	CSP string

	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	PermissionsPolicy   string
	CrossOriginOpener   string
	CrossOriginResource string

	// PageCacheControl is sent on every response that does not set its own
	// Cache-Control, so rendered ledgers are always refetched.
	PageCacheControl string
}

// DefaultHeadersConfig returns defaults for the dashboard pages.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: DashboardPolicy(ChartCDN),

		HSTSMaxAge:            31536000, // 1 year
		HSTSIncludeSubdomains: true,

		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "strict-origin-when-cross-origin",
		PermissionsPolicy:   "geolocation=(), microphone=(), camera=(), payment=()",
		CrossOriginOpener:   "same-origin",
		CrossOriginResource: "same-origin",

		PageCacheControl: "no-store",
	}
}

// HeadersMiddleware applies security headers to responses
type HeadersMiddleware struct {
	config HeadersConfig
}

func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	return &HeadersMiddleware{config: config}
}

// Middleware sets the configured headers before next runs. Handlers may
// still override Cache-Control.
func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		for name, value := range h.static() {
			if value != "" {
				headers.Set(name, value)
			}
		}
		if hsts := h.hsts(r); hsts != "" {
			headers.Set("Strict-Transport-Security", hsts)
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HeadersMiddleware) static() map[string]string {
	return map[string]string{
		"Content-Security-Policy":      h.config.CSP,
		"X-Content-Type-Options":       h.config.XContentTypeOptions,
		"X-Frame-Options":              h.config.XFrameOptions,
		"Referrer-Policy":              h.config.ReferrerPolicy,
		"Permissions-Policy":           h.config.PermissionsPolicy,
		"Cross-Origin-Opener-Policy":   h.config.CrossOriginOpener,
		"Cross-Origin-Resource-Policy": h.config.CrossOriginResource,
		"Cache-Control":                h.config.PageCacheControl,
	}
}

// hsts is empty over plain HTTP.
func (h *HeadersMiddleware) hsts(r *http.Request) string {
	if r.TLS == nil || h.config.HSTSMaxAge <= 0 {
		return ""
	}
	v := fmt.Sprintf("max-age=%d", h.config.HSTSMaxAge)
	if h.config.HSTSIncludeSubdomains {
		v += "; includeSubDomains"
	}
	return v
}

// StaticAssetMiddleware replaces the page cache policy with a public max-age
// for embedded assets.
func StaticAssetMiddleware(maxAge int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
			}
			next.ServeHTTP(w, r)
		})
	}
}
