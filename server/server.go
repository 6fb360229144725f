package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ppchow/pettington-product-navigator/internal/config"
	"github.com/ppchow/pettington-product-navigator/internal/handlers"
	uiassets "github.com/ppchow/pettington-product-navigator/ui/assets"
	"github.com/ppchow/pettington-product-navigator/ui/views"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// PDF exports start a headless browser and fetch product images.
		WriteTimeout:   90 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	// Shopify IDs contain slashes and travel path-escaped.
	r.UseEncodedPath()
	r.Use(h.RequestLogger)
	r.Use(h.MetricsContext)
	r.Use(h.SecurityHeaders)
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")
	r.Handle("/metrics", h.Metrics()).Methods("GET").Name("metrics")

	// 404 handler - must be last
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		if err := views.NotFoundPage().Render(r.Context(), w); err != nil {
			http.Error(w, "Not Found", http.StatusNotFound)
		}
	})

	// Static assets - must be before the catalog router
	r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", http.FileServer(http.FS(uiassets.FS)))).Name("assets")

	// Browsing routes share the operator's session
	catalogRouter := r.NewRoute().Subrouter()
	catalogRouter.Use(h.SessionMiddleware)
	catalogRouter.Use(h.RequireSameOrigin)
	catalogRouter.HandleFunc("/", h.Catalog).Methods("GET").Name("catalog")
	catalogRouter.HandleFunc("/api/catalog", h.CatalogJSON).Methods("GET").Name("api.catalog")
	catalogRouter.HandleFunc("/collections/{handle}", h.SelectCollection).Methods("POST").Name("collections.select")
	catalogRouter.HandleFunc("/reload", h.Reload).Methods("POST").Name("collections.reload")
	catalogRouter.HandleFunc("/filters/clear", h.ClearFilters).Methods("POST").Name("filters.clear")
	catalogRouter.HandleFunc("/filters/{dimension}", h.ToggleFilter).Methods("POST").Name("filters.toggle")
	catalogRouter.HandleFunc("/banner/dismiss", h.DismissBanner).Methods("POST").Name("banner.dismiss")
	catalogRouter.HandleFunc("/cache/clear", h.ClearCache).Methods("POST").Name("cache.clear")

	catalogRouter.HandleFunc("/print-select", h.PrintSelect).Methods("GET").Name("print.select")
	catalogRouter.HandleFunc("/print-select", h.SavePrintSelection).Methods("POST").Name("print.select.save")
	catalogRouter.HandleFunc("/print-select/clear", h.ClearPrintSelection).Methods("POST").Name("print.select.clear")
	catalogRouter.HandleFunc("/print-select/products/{id}/toggle", h.TogglePrintProduct).Methods("POST").Name("print.select.toggle")
	catalogRouter.HandleFunc("/print", h.Print).Methods("GET").Name("print")
	catalogRouter.HandleFunc("/export/docx", h.ExportDOCX).Methods("GET").Name("export.docx")
	catalogRouter.HandleFunc("/export/pdf", h.ExportPDF).Methods("GET").Name("export.pdf")

	return r
}
