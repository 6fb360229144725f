package navigator

import (
	"context"
	"time"

	"github.com/ppchow/pettington-product-navigator/internal/catalog"
)

type CollectionOption struct {
	Handle   string `json:"handle"`
	Title    string `json:"title"`
	Selected bool   `json:"selected"`
}

type FilterOption struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// View is an immutable snapshot of a Browser for rendering.
type View struct {
	Collection       string               `json:"collection"`
	CollectionTitle  string               `json:"collection_title"`
	Collections      []CollectionOption   `json:"collections"`
	Status           Status               `json:"status"`
	Banner           string               `json:"banner,omitempty"`
	Offline          bool                 `json:"offline"`
	Source           DataSource           `json:"source,omitempty"`
	SettingsSource   DataSource           `json:"settings_source,omitempty"`
	StoredAt         time.Time            `json:"stored_at,omitzero"`
	Products         []catalog.Product    `json:"products"`
	TotalProducts    int                  `json:"total_products"`
	ShowVendorFilter bool                 `json:"show_vendor_filter"`
	Vendors          []FilterOption       `json:"vendors"`
	Tags             []FilterOption       `json:"tags"`
	PetTypes         []FilterOption       `json:"pet_types"`
	ActiveFilters    int                  `json:"active_filters"`
	SelectedTags     []string             `json:"selected_tags"`
	PrintCount       int                  `json:"print_count"`
	PrintOptions     catalog.PrintOptions `json:"print_options"`
	print            *catalog.PrintSelection
}

func (v View) IsVariantSelected(productID, variantID string) bool {
	return v.print != nil && v.print.IsSelected(productID, variantID)
}

func (v View) IsProductSelected(product catalog.Product) bool {
	return v.print != nil && v.print.AllSelected(product)
}

// View returns the current state with the filtered product list. Collections
// come from the catalog, falling back to the configured handles.
func (b *Browser) View(ctx context.Context) View {
	collections := b.catalog.FallbackCollections()
	collectionsOffline := false
	if list, err := b.catalog.Collections(ctx); err != nil {
		b.logger.Warn("failed to load collections", "error", err)
	} else if len(list.Collections) > 0 {
		collections = list.Collections
		collectionsOffline = list.Offline
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	view := View{
		Collection:       b.collection,
		CollectionTitle:  b.navigation.TitleForHandle(b.collection),
		Status:           b.status,
		Banner:           b.banner,
		Offline:          b.offline || collectionsOffline,
		Source:           b.source,
		SettingsSource:   b.settingsSource,
		StoredAt:         b.storedAt,
		Products:         catalog.FilterProducts(b.products, b.selection),
		TotalProducts:    len(b.products),
		ShowVendorFilter: b.navigation.ShowVendorFilter(b.collection),
		Vendors:          options(b.vendors, b.selection.Vendors),
		Tags:             options(b.navigation.TagChips(b.collection), b.selection.Tags),
		PetTypes:         options(b.navigation.PetTypes(), b.selection.PetTypes),
		ActiveFilters:    b.selection.Count(),
		SelectedTags:     b.selection.Tags.Values(),
		PrintCount:       b.print.Count(),
		PrintOptions:     b.printOptions,
		print:            b.print.Clone(),
	}

	view.Collections = make([]CollectionOption, 0, len(collections))
	for _, collection := range collections {
		title := b.navigation.DisplayTitle(collection)
		if collection.Handle == b.collection {
			view.CollectionTitle = title
		}
		view.Collections = append(view.Collections, CollectionOption{
			Handle:   collection.Handle,
			Title:    title,
			Selected: collection.Handle == b.collection,
		})
	}
	return view
}

func options(values []string, selected catalog.Set) []FilterOption {
	opts := make([]FilterOption, 0, len(values))
	for _, value := range values {
		opts = append(opts, FilterOption{Value: value, Selected: selected.Has(value)})
	}
	return opts
}
