package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppchow/pettington-product-navigator/internal/catalog"
	"github.com/ppchow/pettington-product-navigator/internal/config"
	"github.com/ppchow/pettington-product-navigator/internal/export"
	"github.com/ppchow/pettington-product-navigator/internal/handlers"
	"github.com/ppchow/pettington-product-navigator/internal/navigator"
	"github.com/ppchow/pettington-product-navigator/internal/session"
)

type stubCatalog struct {
	navigation   *catalog.Navigation
	connectivity *navigator.Connectivity
}

func (s stubCatalog) Collections(context.Context) (navigator.CollectionList, error) {
	return navigator.CollectionList{}, nil
}

func (s stubCatalog) FallbackCollections() []catalog.Collection { return nil }

func (s stubCatalog) LoadCollection(_ context.Context, handle string) (navigator.CollectionLoad, error) {
	return navigator.CollectionLoad{Handle: handle}, nil
}

func (s stubCatalog) Navigation() *catalog.Navigation { return s.navigation }

func (s stubCatalog) ClearCache(context.Context) error { return nil }

func (s stubCatalog) Connectivity() *navigator.Connectivity { return s.connectivity }

type stubRenderer struct{}

func (stubRenderer) RenderPDF(context.Context, []byte) ([]byte, error) { return []byte("%PDF"), nil }

func (stubRenderer) Render(context.Context, export.Document) ([]byte, error) {
	return []byte("%PDF"), nil
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	navigationConfig, err := catalog.DefaultNavigationConfig()
	if err != nil {
		t.Fatalf("DefaultNavigationConfig: %v", err)
	}
	stub := stubCatalog{
		navigation:   catalog.NewNavigation(navigationConfig),
		connectivity: navigator.NewConnectivity(0, logger, nil),
	}

	manager, err := session.NewManager(func() *navigator.Browser {
		return navigator.NewBrowser(stub, logger)
	}, session.Config{}, logger)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { _ = manager.Close() })

	cfg := &config.Config{Port: "8080", BaseURL: "http://localhost:8080"}
	h, err := handlers.New(handlers.Dependencies{
		Config:         cfg,
		Catalog:        stub,
		SessionManager: manager,
		PDFRenderer:    stubRenderer{},
		CompactPDF:     stubRenderer{},
		Logger:         logger,
	})
	if err != nil {
		t.Fatalf("handlers.New: %v", err)
	}

	srv, err := New(cfg, logger, h)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv.Handler()
}

func TestNew_RequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, slog.Default(), &handlers.Handlers{}); err == nil {
		t.Fatalf("expected config error")
	}
	if _, err := New(&config.Config{}, nil, &handlers.Handlers{}); err == nil {
		t.Fatalf("expected logger error")
	}
	if _, err := New(&config.Config{}, slog.Default(), nil); err == nil {
		t.Fatalf("expected handlers error")
	}
}

func TestRouter(t *testing.T) {
	t.Parallel()

	router := newTestServer(t)

	tests := []struct {
		name     string
		method   string
		target   string
		wantCode int
		wantBody string
	}{
		{name: "health", method: http.MethodGet, target: "/health", wantCode: http.StatusOK, wantBody: `"status":"healthy"`},
		{name: "catalog page", method: http.MethodGet, target: "/", wantCode: http.StatusOK},
		{name: "catalog json", method: http.MethodGet, target: "/api/catalog", wantCode: http.StatusOK, wantBody: `"collection":"prescription-diet-cats-dogs"`},
		{name: "stylesheet", method: http.MethodGet, target: "/assets/css/app.css", wantCode: http.StatusOK},
		{name: "metrics", method: http.MethodGet, target: "/metrics", wantCode: http.StatusOK},
		{name: "unknown page", method: http.MethodGet, target: "/admin", wantCode: http.StatusNotFound},
		{name: "wrong method", method: http.MethodGet, target: "/cache/clear", wantCode: http.StatusMethodNotAllowed},
		{
			name:     "escaped product id reaches the handler",
			method:   http.MethodPost,
			target:   "/print-select/products/gid:%2F%2Fshopify%2FProduct%2F1/toggle",
			wantCode: http.StatusNotFound,
			wantBody: "Unknown product",
		},
		{name: "unknown collection", method: http.MethodPost, target: "/collections/dog-toys", wantCode: http.StatusNotFound, wantBody: "Unknown collection"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.method == http.MethodPost {
				req.Header.Set("Origin", "http://localhost:8080")
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Fatalf("expected body to contain %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRouter_RejectsCrossOriginPosts(t *testing.T) {
	t.Parallel()

	router := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/cache/clear", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
