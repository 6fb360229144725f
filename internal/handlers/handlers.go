package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppchow/pettington-product-navigator/internal/config"
	"github.com/ppchow/pettington-product-navigator/internal/export"
	"github.com/ppchow/pettington-product-navigator/internal/logging"
	"github.com/ppchow/pettington-product-navigator/internal/navigator"
	"github.com/ppchow/pettington-product-navigator/internal/observability"
	"github.com/ppchow/pettington-product-navigator/internal/session"
)

// CatalogService is the shared data side behind every session's browser.
type CatalogService interface {
	ClearCache(ctx context.Context) error
	Connectivity() *navigator.Connectivity
}

type PDFRenderer interface {
	RenderPDF(ctx context.Context, html []byte) ([]byte, error)
}

type CompactRenderer interface {
	Render(ctx context.Context, doc export.Document) ([]byte, error)
}

// Handlers provides HTTP request handlers for the product navigator.
type Handlers struct {
	config         *config.Config
	catalog        CatalogService
	sessionManager *session.Manager
	pdfRenderer    PDFRenderer
	compactPDF     CompactRenderer
	metrics        *observability.Metrics
	gatherer       prometheus.Gatherer
	logger         *slog.Logger
}

type Dependencies struct {
	Config         *config.Config
	Catalog        CatalogService
	SessionManager *session.Manager
	PDFRenderer    PDFRenderer
	CompactPDF     CompactRenderer
	Metrics        *observability.Metrics
	Gatherer       prometheus.Gatherer
	Logger         *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("handlers dependencies: catalog is required")
	}
	if deps.SessionManager == nil {
		return nil, fmt.Errorf("handlers dependencies: sessionManager is required")
	}
	if deps.PDFRenderer == nil {
		return nil, fmt.Errorf("handlers dependencies: pdfRenderer is required")
	}
	if deps.CompactPDF == nil {
		return nil, fmt.Errorf("handlers dependencies: compactPDF is required")
	}

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Handlers{
		config:         deps.Config,
		catalog:        deps.Catalog,
		sessionManager: deps.SessionManager,
		pdfRenderer:    deps.PDFRenderer,
		compactPDF:     deps.CompactPDF,
		metrics:        deps.Metrics,
		gatherer:       gatherer,
		logger:         logger.With("component", "handlers"),
	}, nil
}

// Health reports the process as healthy and the storefront connectivity.
// An unreachable storefront degrades the status without failing the check.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	connectivity := h.catalog.Connectivity().Status()
	status := "healthy"
	if !connectivity.Online {
		status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status":     status,
		"storefront": connectivity,
		"sessions":   h.sessionManager.Len(),
	}); err != nil {
		logger.Error("failed to encode health response", "error", err)
	}
}

// SessionMiddleware attaches the operator's browser to the request context.
func (h *Handlers) SessionMiddleware(next http.Handler) http.Handler {
	return h.sessionManager.Middleware(next)
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func SecureCookiesFromConfig(cfg *config.Config) bool {
	if cfg == nil {
		return false
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL != "" {
		if parsed, err := url.Parse(baseURL); err == nil {
			return strings.EqualFold(parsed.Scheme, "https")
		}
	}

	return cfg.Port == "443" || cfg.Port == "8443"
}
