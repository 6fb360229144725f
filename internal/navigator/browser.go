package navigator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ppchow/pettington-product-navigator/internal/catalog"
)

type Status string

const (
	StatusIdle               Status = "idle"
	StatusLoading            Status = "loading"
	StatusReady              Status = "ready"
	StatusFailed             Status = "failed"
	StatusOfflineUnavailable Status = "offline-unavailable"
)

type Dimension string

const (
	DimensionVendor  Dimension = "vendor"
	DimensionTag     Dimension = "tag"
	DimensionPetType Dimension = "pet-type"
)

func ParseDimension(value string) (Dimension, error) {
	switch Dimension(value) {
	case DimensionVendor, DimensionTag, DimensionPetType:
		return Dimension(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDimension, value)
	}
}

// Catalog is the data side a Browser loads from.
type Catalog interface {
	Collections(ctx context.Context) (CollectionList, error)
	FallbackCollections() []catalog.Collection
	LoadCollection(ctx context.Context, handle string) (CollectionLoad, error)
	Navigation() *catalog.Navigation
}

// Browser is the catalog state of one operator session. Collection changes
// are versioned by a generation counter; a load that completes after a newer
// collection change is discarded.
type Browser struct {
	mu         sync.Mutex
	catalog    Catalog
	navigation *catalog.Navigation
	logger     *slog.Logger

	generation     uint64
	collection     string
	status         Status
	products       []catalog.Product
	vendors        []string
	selection      catalog.Selection
	banner         string
	source         DataSource
	settingsSource DataSource
	storedAt       time.Time
	offline        bool
	print          *catalog.PrintSelection
	printOptions   catalog.PrintOptions
}

func NewBrowser(c Catalog, logger *slog.Logger) *Browser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Browser{
		catalog:      c,
		navigation:   c.Navigation(),
		logger:       logger.With("component", "browser"),
		status:       StatusIdle,
		selection:    catalog.NewSelection(),
		print:        catalog.NewPrintSelection(),
		printOptions: catalog.PrintOptions{ShowDiscountPrice: true},
	}
}

// Ensure loads the default collection the first time the browser is used.
func (b *Browser) Ensure(ctx context.Context) error {
	b.mu.Lock()
	idle := b.status == StatusIdle
	b.mu.Unlock()
	if !idle {
		return nil
	}
	return b.SelectCollection(ctx, b.navigation.DefaultCollection())
}

// SelectCollection switches to handle, clearing filters and the print
// selection, and loads its products.
func (b *Browser) SelectCollection(ctx context.Context, handle string) error {
	if !b.navigation.IsAllowed(handle) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, handle)
	}
	generation := b.begin(handle, true)
	load, err := b.catalog.LoadCollection(ctx, handle)
	b.complete(generation, load, err)
	return nil
}

// Reload fetches the current collection again, keeping filters and the print
// selection.
func (b *Browser) Reload(ctx context.Context) error {
	b.mu.Lock()
	handle := b.collection
	b.mu.Unlock()
	if handle == "" {
		return b.Ensure(ctx)
	}

	generation := b.begin(handle, false)
	load, err := b.catalog.LoadCollection(ctx, handle)
	b.complete(generation, load, err)
	return nil
}

func (b *Browser) begin(handle string, reset bool) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.generation++
	if reset || handle != b.collection {
		b.selection = catalog.NewSelection()
		b.print.Clear()
		b.products = nil
		b.vendors = nil
	}
	b.collection = handle
	b.status = StatusLoading
	b.banner = ""
	return b.generation
}

// complete applies a load result unless a newer load has started since.
func (b *Browser) complete(generation uint64, load CollectionLoad, err error) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if generation != b.generation {
		b.logger.Debug("discarding stale collection load", "collection", load.Handle, "generation", generation, "current", b.generation)
		return false
	}

	if err != nil {
		b.products = nil
		b.vendors = nil
		b.source = ""
		b.storedAt = time.Time{}
		if errors.Is(err, ErrOfflineUnavailable) {
			b.status = StatusOfflineUnavailable
			b.offline = true
			b.banner = "This collection is not available offline."
		} else {
			b.status = StatusFailed
			b.banner = "Failed to load products. Please try again."
		}
		return true
	}

	b.status = StatusReady
	b.products = load.Products
	b.vendors = load.Vendors
	b.source = load.ProductsSource
	b.settingsSource = load.SettingsSource
	b.storedAt = load.StoredAt
	b.offline = load.Offline
	switch {
	case load.Offline:
		b.banner = "You are offline. Showing saved products."
	case load.FetchError != nil:
		b.banner = "Failed to refresh products. Showing saved products."
	}
	b.dropUnknownPrintSelections()
	return true
}

func (b *Browser) dropUnknownPrintSelections() {
	if b.print.Count() == 0 {
		return
	}
	kept := catalog.NewPrintSelection()
	for _, item := range b.print.Items(b.products) {
		for _, variant := range item.Variants {
			kept.ToggleVariant(item.Product.ID, variant.ID)
		}
	}
	b.print = kept
}

// ToggleFilter flips value in the given dimension. No data is fetched.
func (b *Browser) ToggleFilter(dimension Dimension, value string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch dimension {
	case DimensionVendor:
		return b.selection.Vendors.Toggle(value), nil
	case DimensionTag:
		return b.selection.Tags.Toggle(value), nil
	case DimensionPetType:
		return b.selection.PetTypes.Toggle(value), nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownDimension, dimension)
	}
}

func (b *Browser) ClearFilters() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selection = catalog.NewSelection()
}

func (b *Browser) DismissBanner() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.banner = ""
}

func (b *Browser) TogglePrintVariant(productID, variantID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	product, ok := b.findProduct(productID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	if _, ok := product.FindVariant(variantID); !ok {
		return false, fmt.Errorf("%w: variant %s of %s", ErrUnknownProduct, variantID, productID)
	}
	return b.print.ToggleVariant(productID, variantID), nil
}

func (b *Browser) TogglePrintProduct(productID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	product, ok := b.findProduct(productID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	return b.print.ToggleProduct(product), nil
}

// SetPrintSelection replaces the print selection with the given variant IDs
// per product ID, ignoring unknown products and variants.
func (b *Browser) SetPrintSelection(selected map[string][]string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := catalog.NewPrintSelection()
	for _, product := range b.products {
		for _, variantID := range selected[product.ID] {
			if _, ok := product.FindVariant(variantID); ok && !next.IsSelected(product.ID, variantID) {
				next.ToggleVariant(product.ID, variantID)
			}
		}
	}
	b.print = next
}

func (b *Browser) SetPrintOptions(options catalog.PrintOptions) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.printOptions = options
}

func (b *Browser) ClearPrintSelection() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.print.Clear()
}

// PrintItems returns the selected products and variants in list order.
func (b *Browser) PrintItems() ([]catalog.PrintItem, catalog.PrintOptions) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.print.Items(b.products), b.printOptions
}

func (b *Browser) findProduct(productID string) (catalog.Product, bool) {
	for _, product := range b.products {
		if product.ID == productID {
			return product, true
		}
	}
	return catalog.Product{}, false
}
