package navigator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ppchow/pettington-product-navigator/internal/cache"
	"github.com/ppchow/pettington-product-navigator/internal/catalog"
	"github.com/ppchow/pettington-product-navigator/internal/shopify"
)

const prescriptionHandle = "prescription-diet-cats-dogs"

var errUnreachable = fmt.Errorf("%w: dial tcp: connection refused", shopify.ErrUnreachable)

type fakeSource struct {
	mu              sync.Mutex
	collections     []catalog.Collection
	products        map[string][]catalog.Product
	settings        catalog.DiscountSettings
	collectionsErr  error
	productsErr     error
	settingsErr     error
	collectionCalls int
	productCalls    int
	settingsCalls   int
}

func (f *fakeSource) Collections(context.Context) ([]catalog.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collectionCalls++
	if f.collectionsErr != nil {
		return nil, f.collectionsErr
	}
	return f.collections, nil
}

func (f *fakeSource) ProductsByCollection(_ context.Context, handle string) ([]catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.productCalls++
	if f.productsErr != nil {
		return nil, f.productsErr
	}
	return f.products[handle], nil
}

func (f *fakeSource) DiscountSettings(context.Context) (catalog.DiscountSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settingsCalls++
	if f.settingsErr != nil {
		return catalog.DiscountSettings{}, f.settingsErr
	}
	return f.settings, nil
}

func (f *fakeSource) set(fn func(f *fakeSource)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeSource) calls() (collections, products, settings int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collectionCalls, f.productCalls, f.settingsCalls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scenarioSource() *fakeSource {
	return &fakeSource{
		collections: []catalog.Collection{
			{ID: "4", Handle: "wellness-1", Title: "Wellness"},
			{ID: "9", Handle: "frontpage", Title: "Home"},
			{ID: "1", Handle: prescriptionHandle, Title: "Prescription"},
			{ID: "2", Handle: "pet-supplements", Title: "Supplements"},
		},
		products: map[string][]catalog.Product{
			prescriptionHandle: {
				{ID: "P1", Vendor: "A", Tags: []string{"處方糧"}, Variants: []catalog.Variant{{ID: "V1", Price: "100"}}},
				{ID: "P2", Vendor: "B", Tags: []string{"驅蟲除蚤產品"}, Variants: []catalog.Variant{{ID: "V2", Price: "200"}}},
				{ID: "P3", Vendor: "A", Tags: []string{}, Variants: []catalog.Variant{{ID: "V3", Price: "50"}}},
			},
		},
		settings: catalog.DiscountSettings{
			Prescription: catalog.DiscountRule{Enabled: true, Percentage: decimal.NewFromInt(10)},
			Parasite:     catalog.DiscountRule{Enabled: true, Percentage: decimal.NewFromInt(20)},
		},
	}
}

func testNavigation(t *testing.T) *catalog.Navigation {
	t.Helper()
	cfg, err := catalog.DefaultNavigationConfig()
	if err != nil {
		t.Fatalf("DefaultNavigationConfig: %v", err)
	}
	return catalog.NewNavigation(cfg)
}

func newTestService(t *testing.T, source Source) *Service {
	t.Helper()

	provider, err := cache.NewMemoryProvider(100)
	if err != nil {
		t.Fatalf("NewMemoryProvider: %v", err)
	}
	service, err := NewService(Dependencies{
		Source:     source,
		Provider:   provider,
		Navigation: testNavigation(t),
		Retention:  24 * time.Hour,
		Logger:     discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return service
}

func TestService_LoadCollection(t *testing.T) {
	t.Parallel()

	source := scenarioSource()
	service := newTestService(t, source)

	load, err := service.LoadCollection(context.Background(), prescriptionHandle)
	if err != nil {
		t.Fatalf("LoadCollection: %v", err)
	}
	if load.ProductsSource != SourceNetwork || load.SettingsSource != SourceNetwork {
		t.Fatalf("expected network sources, got %s/%s", load.ProductsSource, load.SettingsSource)
	}

	want := map[string]string{"P1": "HK$90", "P2": "HK$160"}
	for _, product := range load.Products {
		variant := product.Variants[0]
		if price, ok := want[product.ID]; ok {
			if !variant.HasDiscount() || *variant.DiscountedPrice != price {
				t.Fatalf("%s: expected %s, got %+v", product.ID, price, variant)
			}
			continue
		}
		if variant.HasDiscount() {
			t.Fatalf("%s: expected no discount", product.ID)
		}
	}
	if len(load.Vendors) != 2 || load.Vendors[0] != "A" || load.Vendors[1] != "B" {
		t.Fatalf("unexpected vendors %v", load.Vendors)
	}

	again, err := service.LoadCollection(context.Background(), prescriptionHandle)
	if err != nil {
		t.Fatalf("LoadCollection: %v", err)
	}
	if again.ProductsSource != SourceCache || again.SettingsSource != SourceCache {
		t.Fatalf("expected fresh cache to be used, got %s/%s", again.ProductsSource, again.SettingsSource)
	}
	if _, products, settings := source.calls(); products != 1 || settings != 1 {
		t.Fatalf("expected one fetch each, got products=%d settings=%d", products, settings)
	}
	if *again.Products[0].Variants[0].DiscountedPrice != "HK$90" {
		t.Fatal("cached products must be priced again")
	}
}

func TestService_LoadCollectionUnknown(t *testing.T) {
	t.Parallel()

	service := newTestService(t, scenarioSource())
	if _, err := service.LoadCollection(context.Background(), "frontpage"); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestService_LoadCollectionFallsBackToCache(t *testing.T) {
	t.Parallel()

	source := scenarioSource()
	service := newTestService(t, source)
	ctx := context.Background()

	if _, err := service.LoadCollection(ctx, prescriptionHandle); err != nil {
		t.Fatalf("LoadCollection: %v", err)
	}

	service.now = func() time.Time { return time.Now().Add(time.Hour) }
	source.set(func(f *fakeSource) {
		f.productsErr = &shopify.APIError{StatusCode: 502}
	})

	load, err := service.LoadCollection(ctx, prescriptionHandle)
	if err != nil {
		t.Fatalf("expected cached fallback, got %v", err)
	}
	if load.ProductsSource != SourceCache || !errors.Is(load.FetchError, ErrFetchFailure) {
		t.Fatalf("expected cache source with fetch failure, got %s / %v", load.ProductsSource, load.FetchError)
	}
	if load.Offline {
		t.Fatal("an HTTP error must not be reported as offline")
	}
	if len(load.Products) != 3 {
		t.Fatalf("expected cached products, got %d", len(load.Products))
	}
	if !service.Connectivity().Online() {
		t.Fatal("an HTTP error response must keep the storefront online")
	}
}

func TestService_LoadCollectionErrorsWithoutCache(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "unreachable", err: errUnreachable, wantErr: ErrOfflineUnavailable},
		{name: "api error", err: &shopify.APIError{StatusCode: 500}, wantErr: ErrFetchFailure},
		{name: "graphql error", err: &shopify.GraphQLError{Operation: "CollectionProducts", Messages: []string{"x"}}, wantErr: ErrFetchFailure},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			source := scenarioSource()
			source.productsErr = tt.err
			service := newTestService(t, source)

			_, err := service.LoadCollection(context.Background(), prescriptionHandle)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestService_OfflineServesCacheWithoutFetching(t *testing.T) {
	t.Parallel()

	source := scenarioSource()
	service := newTestService(t, source)
	ctx := context.Background()

	if _, err := service.LoadCollection(ctx, prescriptionHandle); err != nil {
		t.Fatalf("LoadCollection: %v", err)
	}

	later := time.Now().Add(time.Hour)
	service.now = func() time.Time { return later }
	service.connectivity.now = func() time.Time { return later }
	source.set(func(f *fakeSource) {
		f.productsErr = errUnreachable
		f.settingsErr = errUnreachable
	})

	load, err := service.LoadCollection(ctx, prescriptionHandle)
	if err != nil {
		t.Fatalf("LoadCollection while offline: %v", err)
	}
	if !load.Offline || service.Connectivity().Online() {
		t.Fatal("expected offline state after unreachable storefront")
	}
	_, productsBefore, _ := source.calls()

	load, err = service.LoadCollection(ctx, prescriptionHandle)
	if err != nil {
		t.Fatalf("second LoadCollection while offline: %v", err)
	}
	if !load.Offline || load.ProductsSource != SourceCache {
		t.Fatalf("expected cached offline load, got %+v", load)
	}
	if _, productsAfter, _ := source.calls(); productsAfter != productsBefore {
		t.Fatal("storefront must not be contacted again before the retry interval")
	}
	if *load.Products[1].Variants[0].DiscountedPrice != "HK$160" {
		t.Fatal("cached discount settings must still apply while offline")
	}
}

func TestService_DiscountSettingsResolution(t *testing.T) {
	t.Parallel()

	t.Run("missing configuration uses disabled default", func(t *testing.T) {
		t.Parallel()

		source := scenarioSource()
		source.settingsErr = fmt.Errorf("%w: discount_settings/default", shopify.ErrSettingsNotFound)
		service := newTestService(t, source)

		result, err := service.DiscountSettings(context.Background())
		if err != nil {
			t.Fatalf("DiscountSettings: %v", err)
		}
		if result.Source != SourceDefault || result.Settings.Prescription.Enabled || result.Settings.Default.Enabled {
			t.Fatalf("expected disabled default settings, got %+v", result)
		}

		load, err := service.LoadCollection(context.Background(), prescriptionHandle)
		if err != nil {
			t.Fatalf("LoadCollection: %v", err)
		}
		for _, product := range load.Products {
			if product.Variants[0].HasDiscount() {
				t.Fatalf("%s: no discount expected with default settings", product.ID)
			}
		}
	})

	t.Run("fetch failure falls back to stale cache", func(t *testing.T) {
		t.Parallel()

		source := scenarioSource()
		service := newTestService(t, source)
		if _, err := service.DiscountSettings(context.Background()); err != nil {
			t.Fatalf("DiscountSettings: %v", err)
		}

		service.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
		source.set(func(f *fakeSource) {
			f.settingsErr = &shopify.APIError{StatusCode: 503}
		})

		result, err := service.DiscountSettings(context.Background())
		if err != nil {
			t.Fatalf("DiscountSettings: %v", err)
		}
		if result.Source != SourceCache || !result.Settings.Parasite.Enabled {
			t.Fatalf("expected last known good settings, got %+v", result)
		}
		if _, _, settings := source.calls(); settings != 2 {
			t.Fatalf("expected expired settings to be refetched, calls = %d", settings)
		}
	})
}

func TestService_Collections(t *testing.T) {
	t.Parallel()

	source := scenarioSource()
	service := newTestService(t, source)

	list, err := service.Collections(context.Background())
	if err != nil {
		t.Fatalf("Collections: %v", err)
	}
	got := []string{}
	for _, c := range list.Collections {
		got = append(got, c.Handle)
	}
	want := []string{prescriptionHandle, "pet-supplements", "wellness-1"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("collections = %v, want %v", got, want)
	}

	fallback := service.FallbackCollections()
	if len(fallback) != len(testNavigation(t).AllowedHandles()) || fallback[0].Handle != prescriptionHandle {
		t.Fatalf("unexpected fallback collections %+v", fallback)
	}
}

func TestService_ClearCache(t *testing.T) {
	t.Parallel()

	source := scenarioSource()
	service := newTestService(t, source)
	ctx := context.Background()

	if _, err := service.Collections(ctx); err != nil {
		t.Fatalf("Collections: %v", err)
	}
	if _, err := service.LoadCollection(ctx, prescriptionHandle); err != nil {
		t.Fatalf("LoadCollection: %v", err)
	}
	if err := service.ClearCache(ctx); err != nil {
		t.Fatalf("ClearCache: %v", err)
	}
	if _, err := service.Collections(ctx); err != nil {
		t.Fatalf("Collections: %v", err)
	}
	if _, err := service.LoadCollection(ctx, prescriptionHandle); err != nil {
		t.Fatalf("LoadCollection: %v", err)
	}

	collections, products, settings := source.calls()
	if collections != 2 || products != 2 || settings != 2 {
		t.Fatalf("expected every resource to be refetched, got %d/%d/%d", collections, products, settings)
	}
}

func TestService_PricingFailureIsReported(t *testing.T) {
	t.Parallel()

	source := scenarioSource()
	source.products[prescriptionHandle] = append(source.products[prescriptionHandle],
		catalog.Product{ID: "P4", Vendor: "C", Variants: []catalog.Variant{{ID: "V4", Price: "call us"}}})
	service := newTestService(t, source)

	load, err := service.LoadCollection(context.Background(), prescriptionHandle)
	if err != nil {
		t.Fatalf("LoadCollection: %v", err)
	}
	if !errors.Is(load.PricingError, catalog.ErrInvalidAmount) {
		t.Fatalf("expected pricing error, got %v", load.PricingError)
	}
	if !load.Products[3].Variants[0].PriceUnavailable {
		t.Fatal("expected variant to be flagged as price unavailable")
	}
}
