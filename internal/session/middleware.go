package session

import (
	"context"
	"net/http"

	"github.com/ppchow/pettington-product-navigator/internal/navigator"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const ctxKey contextKey = "browser"

// Middleware attaches the session's browser to the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		browser, _ := m.Browser(w, r)
		next.ServeHTTP(w, r.WithContext(WithBrowser(r.Context(), browser)))
	})
}

func WithBrowser(ctx context.Context, browser *navigator.Browser) context.Context {
	return context.WithValue(ctx, ctxKey, browser)
}

// BrowserFromContext retrieves the browser stored by Middleware.
func BrowserFromContext(ctx context.Context) *navigator.Browser {
	if ctx == nil {
		return nil
	}
	browser, ok := ctx.Value(ctxKey).(*navigator.Browser)
	if !ok {
		return nil
	}
	return browser
}
