package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppchow/pettington-product-navigator/internal/session"
)

func TestRequestLogger_LogsSessionFromManagerCookie(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.do(env.handlers.Catalog, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	if len(env.cookies) != 1 || env.cookies[0].Name != session.CookieName {
		t.Fatalf("expected a %s cookie, got %+v", session.CookieName, env.cookies)
	}
	sessionID := env.cookies[0].Value

	var buf bytes.Buffer
	env.handlers.logger = slog.New(slog.NewJSONHandler(&buf, nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(env.cookies[0])
	rec := httptest.NewRecorder()
	env.handlers.RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rec, req)

	out := buf.String()
	if !strings.Contains(out, `"session_id":"`+sessionID+`"`) {
		t.Fatalf("expected session_id %q in log, got %s", sessionID, out)
	}
	if !strings.Contains(out, `"status":204`) || rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected completed request log with request ID, got %s", out)
	}
}
