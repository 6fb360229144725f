package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ppchow/pettington-product-navigator/internal/cache"
	"github.com/ppchow/pettington-product-navigator/internal/catalog"
	"github.com/ppchow/pettington-product-navigator/internal/config"
	"github.com/ppchow/pettington-product-navigator/internal/db"
	"github.com/ppchow/pettington-product-navigator/internal/export"
	"github.com/ppchow/pettington-product-navigator/internal/handlers"
	"github.com/ppchow/pettington-product-navigator/internal/logging"
	"github.com/ppchow/pettington-product-navigator/internal/navigator"
	"github.com/ppchow/pettington-product-navigator/internal/observability"
	"github.com/ppchow/pettington-product-navigator/internal/session"
	"github.com/ppchow/pettington-product-navigator/internal/shopify"
)

const thumbnailTimeout = 10 * time.Second

type App struct {
	Config         *config.Config
	Logger         *slog.Logger
	DB             *pgxpool.Pool
	CacheProvider  cache.Provider
	SessionManager *session.Manager
	Handlers       *handlers.Handlers

	logFile       io.Closer
	sentryEnabled bool
}

func New() (*App, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, logFile, err := logging.New(os.Stdout, logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: logger, logFile: logFile}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
		}); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize sentry: %w", err)
		}
		a.sentryEnabled = true
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	if cfg.CacheProvider == "postgres" {
		database, err := db.Connect(startupCtx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.DB = database
	}

	cacheProvider, err := cache.NewProvider(startupCtx, cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
		Pool:                  a.DB,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}
	a.CacheProvider = cacheProvider

	navigation, err := loadNavigation(cfg.NavigationConfigPath)
	if err != nil {
		a.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	shopifyClient, err := shopify.NewClient(shopify.Config{
		StoreDomain:     cfg.ShopifyStoreDomain,
		AccessToken:     cfg.ShopifyAccessToken,
		APIVersion:      cfg.ShopifyAPIVersion,
		PageSize:        cfg.ShopifyPageSize,
		VariantPageSize: cfg.ShopifyVariantPageSize,
		SettingsType:    cfg.DiscountMetaobjectType,
		SettingsHandle:  cfg.DiscountMetaobjectHandle,
	}, observability.NewHTTPClient(cfg.ShopifyTimeout, cfg.ShopifyStoreDomain), logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize shopify client: %w", err)
	}
	if !cfg.DiscountSettingsConfigured() {
		logger.Warn("discount metaobject not configured, all discount rules stay disabled")
	}

	service, err := navigator.NewService(navigator.Dependencies{
		Source:       shopifyClient.WithObserver(metrics),
		Provider:     cacheProvider,
		Navigation:   navigation,
		Connectivity: navigator.NewConnectivity(0, logger, metrics.SetOnline),
		Metrics:      metrics,
		Config: navigator.Config{
			DiscountTTL:   cfg.DiscountCacheTTL,
			ProductTTL:    cfg.ProductCacheTTL,
			CollectionTTL: cfg.CollectionCacheTTL,
		},
		Retention: cfg.CacheRetention,
		Logger:    logger,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize navigator: %w", err)
	}

	sessionManager, err := session.NewManager(func() *navigator.Browser {
		return navigator.NewBrowser(service, logger)
	}, session.Config{
		TTL:      cfg.SessionTTL,
		Capacity: cfg.SessionCapacity,
		Secure:   handlers.SecureCookiesFromConfig(cfg),
	}, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}
	a.SessionManager = sessionManager

	thumbnailer := export.NewThumbnailer(observability.NewHTTPClient(thumbnailTimeout), logger)

	h, err := handlers.New(handlers.Dependencies{
		Config:         cfg,
		Catalog:        service,
		SessionManager: sessionManager,
		PDFRenderer:    export.NewChromeRenderer(cfg.ChromePath, logger),
		CompactPDF:     export.NewCompactPDF(thumbnailer, cfg.PDFFontPath),
		Metrics:        metrics,
		Gatherer:       registry,
		Logger:         logger,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}
	a.Handlers = h

	logger.Info("navigator ready",
		"store", cfg.ShopifyStoreDomain,
		"cache_provider", cfg.CacheProvider,
		"default_collection", navigation.DefaultCollection(),
	)
	return a, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.SessionManager != nil {
		closeSessionManager(a.Logger, a.SessionManager)
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
	if a.sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// loadNavigation reads the navigation config from path, or the embedded
// default when path is empty.
func loadNavigation(path string) (*catalog.Navigation, error) {
	var (
		navigationConfig *catalog.NavigationConfig
		err              error
	)
	if path == "" {
		navigationConfig, err = catalog.DefaultNavigationConfig()
	} else {
		var content []byte
		content, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read navigation config: %w", err)
		}
		navigationConfig, err = catalog.NewParser().Parse(content)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load navigation config: %w", err)
	}

	if err := catalog.NewValidator().Validate(navigationConfig); err != nil {
		return nil, fmt.Errorf("invalid navigation config: %w", err)
	}
	return catalog.NewNavigation(navigationConfig), nil
}

func closeSessionManager(logger *slog.Logger, manager *session.Manager) {
	if manager == nil {
		return
	}
	if err := manager.Close(); err != nil && logger != nil {
		logger.Warn("failed to close session manager", "error", err)
	}
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
