package handlers

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/ppchow/pettington-product-navigator/internal/observability"
)

// Product images are served from the Shopify CDN.
const contentSecurityPolicy = "default-src 'self'; img-src 'self' https: data:; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; form-action 'self'; frame-ancestors 'none'"

var securityHeaders = map[string]string{
	"X-Content-Type-Options":       "nosniff",
	"X-Frame-Options":              "DENY",
	"Referrer-Policy":              "strict-origin-when-cross-origin",
	"Cross-Origin-Opener-Policy":   "same-origin",
	"Cross-Origin-Resource-Policy": "same-origin",
	"Content-Security-Policy":      contentSecurityPolicy,
}

func (h *Handlers) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		for name, value := range securityHeaders {
			headers.Set(name, value)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSameOrigin rejects form posts whose Origin or Referer names another
// host. Every catalog mutation is a POST from our own pages.
func (h *Handlers) RequireSameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requestMutatesState(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		meter := observability.MeterFromContext(r.Context())
		meter.Count("navigator.same_origin.checked", 1)

		if reason := h.crossOriginReason(r); reason != "" {
			meter.Count("navigator.same_origin.blocked", 1, sentry.WithAttributes(attribute.String("reason", reason)))
			h.loggerFromContext(r.Context()).Warn("blocked cross-origin request",
				"reason", reason,
				"origin", r.Header.Get("Origin"),
				"referer", r.Header.Get("Referer"),
			)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// crossOriginReason returns why r must be rejected, or "" when it is allowed.
func (h *Handlers) crossOriginReason(r *http.Request) string {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	referer := strings.TrimSpace(r.Header.Get("Referer"))
	if origin == "" && referer == "" {
		return "missing_origin_and_referer"
	}

	allowed := h.allowedHosts(r)
	if origin != "" && !allowed[hostOf(origin)] {
		return "invalid_origin"
	}
	if referer != "" && !allowed[hostOf(referer)] {
		return "invalid_referer"
	}
	return ""
}

func requestMutatesState(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// allowedHosts holds the request's own host and the BASE_URL host.
func (h *Handlers) allowedHosts(r *http.Request) map[string]bool {
	allowed := make(map[string]bool, 2)
	if host := requestHost(r.Host); host != "" {
		allowed[host] = true
	}
	if h.config != nil {
		if host := hostOf(h.config.BaseURL); host != "" {
			allowed[host] = true
		}
	}
	return allowed
}

func requestHost(hostport string) string {
	hostport = strings.TrimSpace(hostport)
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		hostport = host
	}
	return strings.ToLower(hostport)
}

// hostOf returns the lowercased hostname of rawURL, or "" when it has none.
func hostOf(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
