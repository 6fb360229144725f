package navigator

// Package navigator assembles the catalog view: it resolves collections,
// discount settings and product lists from the storefront or the cache,
// prices products, and keeps per-session browsing state.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ppchow/pettington-product-navigator/internal/cache"
	"github.com/ppchow/pettington-product-navigator/internal/catalog"
	"github.com/ppchow/pettington-product-navigator/internal/logging"
	"github.com/ppchow/pettington-product-navigator/internal/observability"
	"github.com/ppchow/pettington-product-navigator/internal/shopify"
)

// Source is the storefront the service reads from.
type Source interface {
	Collections(ctx context.Context) ([]catalog.Collection, error)
	ProductsByCollection(ctx context.Context, handle string) ([]catalog.Product, error)
	DiscountSettings(ctx context.Context) (catalog.DiscountSettings, error)
}

// DataSource names where a result came from.
type DataSource string

const (
	SourceNetwork DataSource = "network"
	SourceCache   DataSource = "cache"
	SourceDefault DataSource = "default"
)

const (
	DefaultDiscountTTL   = 5 * time.Minute
	DefaultProductTTL    = 5 * time.Minute
	DefaultCollectionTTL = time.Hour
)

type Config struct {
	DiscountTTL   time.Duration
	ProductTTL    time.Duration
	CollectionTTL time.Duration
}

type CollectionList struct {
	Collections []catalog.Collection
	Source      DataSource
	StoredAt    time.Time
	Offline     bool
	// FetchError is set when cached collections were served because the
	// storefront request failed.
	FetchError error
}

type SettingsResult struct {
	Settings catalog.DiscountSettings
	Source   DataSource
	StoredAt time.Time
}

// CollectionLoad is a priced product list for one collection.
type CollectionLoad struct {
	Handle         string
	Products       []catalog.Product
	Vendors        []string
	Settings       catalog.DiscountSettings
	ProductsSource DataSource
	SettingsSource DataSource
	StoredAt       time.Time
	// Offline is set when the storefront could not be reached.
	Offline bool
	// FetchError is set when cached products were served because the
	// storefront request failed.
	FetchError error
	// PricingError joins the variants whose price could not be parsed.
	PricingError error
}

type Dependencies struct {
	Source       Source
	Provider     cache.Provider
	Navigation   *catalog.Navigation
	Pricer       *catalog.Pricer
	Connectivity *Connectivity
	Metrics      *observability.Metrics
	Config       Config
	Retention    time.Duration
	Logger       *slog.Logger
}

type Service struct {
	source       Source
	navigation   *catalog.Navigation
	pricer       *catalog.Pricer
	connectivity *Connectivity
	metrics      *observability.Metrics
	config       Config
	collections  *cache.Store[[]catalog.Collection]
	settings     *cache.Store[catalog.DiscountSettings]
	products     *cache.Store[[]catalog.Product]
	group        singleflight.Group
	logger       *slog.Logger
	now          func() time.Time
}

func NewService(deps Dependencies) (*Service, error) {
	if deps.Source == nil {
		return nil, fmt.Errorf("navigator dependencies: source is required")
	}
	if deps.Provider == nil {
		return nil, fmt.Errorf("navigator dependencies: cache provider is required")
	}
	if deps.Navigation == nil {
		return nil, fmt.Errorf("navigator dependencies: navigation is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pricer := deps.Pricer
	if pricer == nil {
		pricer = catalog.NewPricer(deps.Navigation.Markers())
	}
	connectivity := deps.Connectivity
	if connectivity == nil {
		connectivity = NewConnectivity(0, logger, deps.Metrics.SetOnline)
	}

	cfg := deps.Config
	if cfg.DiscountTTL <= 0 {
		cfg.DiscountTTL = DefaultDiscountTTL
	}
	if cfg.ProductTTL <= 0 {
		cfg.ProductTTL = DefaultProductTTL
	}
	if cfg.CollectionTTL <= 0 {
		cfg.CollectionTTL = DefaultCollectionTTL
	}

	return &Service{
		source:       deps.Source,
		navigation:   deps.Navigation,
		pricer:       pricer,
		connectivity: connectivity,
		metrics:      deps.Metrics,
		config:       cfg,
		collections:  cache.NewStore[[]catalog.Collection](deps.Provider, deps.Retention),
		settings:     cache.NewStore[catalog.DiscountSettings](deps.Provider, deps.Retention),
		products:     cache.NewStore[[]catalog.Product](deps.Provider, deps.Retention),
		logger:       logger.With("component", "navigator"),
		now:          time.Now,
	}, nil
}

func (s *Service) Navigation() *catalog.Navigation {
	return s.navigation
}

func (s *Service) Connectivity() *Connectivity {
	return s.connectivity
}

// Collections returns the allowed collections in display order.
func (s *Service) Collections(ctx context.Context) (CollectionList, error) {
	result, err := resolve(ctx, s, "collections", s.collections, cache.CollectionsKey(), s.config.CollectionTTL,
		func(ctx context.Context) ([]catalog.Collection, error) {
			collections, err := s.source.Collections(ctx)
			if err != nil {
				return nil, err
			}
			return s.navigation.Collections(collections), nil
		})
	if err != nil {
		return CollectionList{}, err
	}
	return CollectionList{
		Collections: result.value,
		Source:      result.source,
		StoredAt:    result.storedAt,
		Offline:     result.offline,
		FetchError:  result.fetchErr,
	}, nil
}

// FallbackCollections lists the allowed collections by handle, for when no
// collection data is available at all.
func (s *Service) FallbackCollections() []catalog.Collection {
	handles := s.navigation.AllowedHandles()
	collections := make([]catalog.Collection, 0, len(handles))
	for _, handle := range handles {
		collections = append(collections, catalog.Collection{Handle: handle, Title: s.navigation.TitleForHandle(handle)})
	}
	return s.navigation.Collections(collections)
}

// DiscountSettings resolves the settings from a fresh cache entry, then the
// storefront, then a stale cache entry, then the all-disabled default. Only
// context cancellation is returned as an error.
func (s *Service) DiscountSettings(ctx context.Context) (SettingsResult, error) {
	ch := s.group.DoChan("discount-settings", func() (any, error) {
		return s.resolveSettings(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return SettingsResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return SettingsResult{}, res.Err
		}
		return res.Val.(SettingsResult), nil
	}
}

func (s *Service) resolveSettings(ctx context.Context) (SettingsResult, error) {
	logger := logging.FromContext(ctx, s.logger)

	result, err := resolve(ctx, s, "discount_settings", s.settings, cache.DiscountSettingsKey(), s.config.DiscountTTL, s.source.DiscountSettings)
	if err == nil {
		if result.fetchErr != nil {
			logger.Warn("using cached discount settings", "error", result.fetchErr, "stored_at", result.storedAt)
		}
		return SettingsResult{Settings: result.value, Source: result.source, StoredAt: result.storedAt}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return SettingsResult{}, ctxErr
	}

	if errors.Is(err, shopify.ErrSettingsNotFound) || errors.Is(err, catalog.ErrInvalidSettings) {
		logger.Warn("discount settings unavailable, discounts disabled", "error", fmt.Errorf("%w: %w", ErrMissingConfiguration, err))
	} else {
		logger.Warn("discount settings fetch failed, discounts disabled", "error", err)
	}
	return SettingsResult{Settings: catalog.DefaultDiscountSettings(), Source: SourceDefault}, nil
}

// LoadCollection fetches the product list and discount settings concurrently
// and prices the products once both are available.
func (s *Service) LoadCollection(ctx context.Context, handle string) (CollectionLoad, error) {
	if !s.navigation.IsAllowed(handle) {
		return CollectionLoad{}, fmt.Errorf("%w: %s", ErrUnknownCollection, handle)
	}

	span := sentry.StartSpan(
		ctx,
		"navigator.load_collection",
		sentry.WithOpName("navigator"),
		sentry.WithDescription("LoadCollection"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := logging.FromContext(ctx, s.logger).With("collection", handle)

	var (
		products lookupResult[[]catalog.Product]
		settings SettingsResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = resolve(gctx, s, "products", s.products, cache.ProductsKey(handle), s.config.ProductTTL,
			func(ctx context.Context) ([]catalog.Product, error) {
				return s.source.ProductsByCollection(ctx, handle)
			})
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = s.DiscountSettings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.metrics.ObserveCollectionLoad("unavailable")
		observability.Count(ctx, "navigator.collection.failed", attribute.String("collection", handle))
		logger.Error("failed to load collection", "error", err)
		return CollectionLoad{}, err
	}

	priced, pricingErr := s.pricer.PriceProducts(products.value, settings.Settings)
	if pricingErr != nil {
		failures := countUnavailable(priced)
		s.metrics.AddPricingFailures(failures)
		logger.Warn("some variant prices could not be parsed", "variants", failures, "error", pricingErr)
	}
	if products.fetchErr != nil {
		logger.Warn("serving cached products", "error", products.fetchErr, "stored_at", products.storedAt)
	}

	s.metrics.ObserveCollectionLoad(string(products.source))
	observability.Count(ctx, "navigator.collection.loaded",
		attribute.String("collection", handle),
		attribute.String("source", string(products.source)),
	)
	logger.Debug("collection loaded", "products", len(priced), "source", products.source, "settings_source", settings.Source)

	return CollectionLoad{
		Handle:         handle,
		Products:       priced,
		Vendors:        catalog.DistinctVendors(priced),
		Settings:       settings.Settings,
		ProductsSource: products.source,
		SettingsSource: settings.Source,
		StoredAt:       products.storedAt,
		Offline:        products.offline,
		FetchError:     products.fetchErr,
		PricingError:   pricingErr,
	}, nil
}

// ClearCache drops cached collections, discount settings and every allowed
// collection's product list.
func (s *Service) ClearCache(ctx context.Context) error {
	errs := []error{
		s.collections.Delete(ctx, cache.CollectionsKey()),
		s.settings.Delete(ctx, cache.DiscountSettingsKey()),
	}
	for _, handle := range s.navigation.AllowedHandles() {
		errs = append(errs, s.products.Delete(ctx, cache.ProductsKey(handle)))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	logging.FromContext(ctx, s.logger).Info("catalog cache cleared")
	return nil
}

type lookupResult[T any] struct {
	value    T
	source   DataSource
	storedAt time.Time
	offline  bool
	fetchErr error
}

// resolve serves a fresh snapshot from store, otherwise fetches and stores the
// value, falling back to a stale snapshot when the fetch fails. While offline
// a stale snapshot is served without contacting the storefront until the next
// retry is due.
func resolve[T any](
	ctx context.Context,
	s *Service,
	kind string,
	store *cache.Store[T],
	key string,
	ttl time.Duration,
	fetch func(context.Context) (T, error),
) (lookupResult[T], error) {
	logger := logging.FromContext(ctx, s.logger)

	snapshot, cacheErr := store.Get(ctx, key)
	cached := cacheErr == nil
	if cacheErr != nil && !errors.Is(cacheErr, cache.ErrNotFound) {
		logger.Warn("ignoring unreadable cache entry", "key", key, "error", cacheErr)
	}

	if cached && !snapshot.IsExpired(ttl, s.now()) {
		s.metrics.ObserveCacheLookup(kind, observability.CacheHit)
		return lookupResult[T]{value: snapshot.Value, source: SourceCache, storedAt: snapshot.StoredAt}, nil
	}

	if cached && !s.connectivity.ShouldFetch() {
		s.metrics.ObserveCacheLookup(kind, observability.CacheStale)
		return lookupResult[T]{
			value:    snapshot.Value,
			source:   SourceCache,
			storedAt: snapshot.StoredAt,
			offline:  true,
		}, nil
	}

	value, err := fetch(ctx)
	if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
		return lookupResult[T]{}, ctxErr
	}
	s.connectivity.Record(err)

	if err == nil {
		stored, setErr := store.Set(ctx, key, value)
		if setErr != nil {
			logger.Warn("failed to cache fetched data", "key", key, "error", setErr)
			stored.StoredAt = s.now()
		}
		if cached {
			s.metrics.ObserveCacheLookup(kind, observability.CacheStale)
		} else {
			s.metrics.ObserveCacheLookup(kind, observability.CacheMiss)
		}
		return lookupResult[T]{value: value, source: SourceNetwork, storedAt: stored.StoredAt}, nil
	}

	if cached {
		s.metrics.ObserveCacheLookup(kind, observability.CacheStale)
		return lookupResult[T]{
			value:    snapshot.Value,
			source:   SourceCache,
			storedAt: snapshot.StoredAt,
			offline:  shopify.IsUnreachable(err),
			fetchErr: fmt.Errorf("%w: %w", ErrFetchFailure, err),
		}, nil
	}

	s.metrics.ObserveCacheLookup(kind, observability.CacheMiss)
	if shopify.IsUnreachable(err) {
		return lookupResult[T]{}, fmt.Errorf("%s: %w: %w", kind, ErrOfflineUnavailable, err)
	}
	return lookupResult[T]{}, fmt.Errorf("%s: %w: %w", kind, ErrFetchFailure, err)
}

func countUnavailable(products []catalog.Product) int {
	count := 0
	for _, product := range products {
		for _, variant := range product.Variants {
			if variant.PriceUnavailable {
				count++
			}
		}
	}
	return count
}
