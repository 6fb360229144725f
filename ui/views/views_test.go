package views

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ppchow/pettington-product-navigator/internal/catalog"
	"github.com/ppchow/pettington-product-navigator/internal/export"
	"github.com/ppchow/pettington-product-navigator/internal/navigator"
)

func renderString(t *testing.T, render func(*strings.Builder) error) string {
	t.Helper()
	var b strings.Builder
	if err := render(&b); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func readyView() navigator.View {
	price := "HK$90"
	pct := decimal.NewFromInt(10)
	return navigator.View{
		Collection:      "prescription-diet-cats-dogs",
		CollectionTitle: "獸醫處方糧",
		Collections: []navigator.CollectionOption{
			{Handle: "prescription-diet-cats-dogs", Title: "獸醫處方糧", Selected: true},
			{Handle: "pet-supplements", Title: "保健品及補充品"},
		},
		Status:           navigator.StatusReady,
		TotalProducts:    2,
		ShowVendorFilter: true,
		Vendors:          []navigator.FilterOption{{Value: "Royal Canin", Selected: true}, {Value: "Hill's"}},
		PetTypes:         []navigator.FilterOption{{Value: "Dog 狗"}},
		ActiveFilters:    1,
		Products: []catalog.Product{{
			ID:     "gid://shopify/Product/1",
			Title:  "Renal <Support>",
			Vendor: "Royal Canin",
			Variants: []catalog.Variant{
				{ID: "gid://shopify/ProductVariant/1", Title: "2kg", Price: "100", DiscountedPrice: &price, DiscountPercentage: &pct},
			},
		}},
	}
}

func TestCatalogPage(t *testing.T) {
	t.Parallel()

	out := renderString(t, func(b *strings.Builder) error {
		return CatalogPage(readyView()).Render(context.Background(), b)
	})

	for _, want := range []string{
		`action="/collections/pet-supplements"`,
		`class="chip chip-active"`,
		`action="/filters/vendor"`,
		`value="Royal Canin"`,
		"Renal &lt;Support&gt;",
		`<span class="price-original">HK$100</span>`,
		"-10%",
		"Clear filters (1)",
		"1 of 2 products",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in catalog page", want)
		}
	}
}

func TestCatalogPageStates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*navigator.View)
		want   string
		absent string
	}{
		{
			name:   "vendor filter hidden",
			mutate: func(v *navigator.View) { v.ShowVendorFilter = false },
			absent: `action="/filters/vendor"`,
		},
		{
			name: "failed",
			mutate: func(v *navigator.View) {
				v.Status = navigator.StatusFailed
				v.Banner = "Failed to load products. Please try again."
			},
			want: "banner banner-error",
		},
		{
			name:   "offline unavailable",
			mutate: func(v *navigator.View) { v.Status = navigator.StatusOfflineUnavailable },
			want:   "not been saved for offline use",
		},
		{
			name: "offline badge",
			mutate: func(v *navigator.View) {
				v.Offline = true
				v.Banner = "You are offline. Showing saved products."
			},
			want: `<span class="badge">Offline</span>`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			view := readyView()
			tt.mutate(&view)
			out := renderString(t, func(b *strings.Builder) error {
				return CatalogPage(view).Render(context.Background(), b)
			})
			if tt.want != "" && !strings.Contains(out, tt.want) {
				t.Fatalf("expected %q", tt.want)
			}
			if tt.absent != "" && strings.Contains(out, tt.absent) {
				t.Fatalf("unexpected %q", tt.absent)
			}
		})
	}
}

func TestPrintSelectPage(t *testing.T) {
	t.Parallel()

	out := renderString(t, func(b *strings.Builder) error {
		return PrintSelectPage(readyView()).Render(context.Background(), b)
	})
	for _, want := range []string{
		`action="/print-select/products/gid:%2F%2Fshopify%2FProduct%2F1/toggle"`,
		`name="variant" value="gid://shopify/Product/1|gid://shopify/ProductVariant/1"`,
		`name="show_discount_price"`,
		`href="/export/docx?layout=compact"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in print select page", want)
		}
	}
}

func TestPrintPage(t *testing.T) {
	t.Parallel()

	view := readyView()
	doc := export.Document{
		Items:   []catalog.PrintItem{{Product: view.Products[0], Variants: view.Products[0].Variants}},
		Options: catalog.PrintOptions{ShowDiscountPrice: true},
	}
	out := renderString(t, func(b *strings.Builder) error {
		return PrintPage(doc).Render(context.Background(), b)
	})
	if !strings.Contains(out, `class="print-sheet"`) || !strings.Contains(out, "print-card placeholder") {
		t.Fatalf("expected print sheet with placeholder")
	}

	empty := renderString(t, func(b *strings.Builder) error {
		return PrintPage(export.Document{}).Render(context.Background(), b)
	})
	if !strings.Contains(empty, "Nothing selected for printing.") {
		t.Fatalf("expected empty state")
	}
}

func TestChipClass(t *testing.T) {
	t.Parallel()

	if got := ChipClass(false); got != "chip" {
		t.Fatalf("unexpected class %q", got)
	}
	if got := ChipClass(true, "tab"); got != "chip chip-active tab" {
		t.Fatalf("unexpected class %q", got)
	}
}

func TestNotFoundPage(t *testing.T) {
	t.Parallel()

	out := renderString(t, func(b *strings.Builder) error {
		return NotFoundPage().Render(context.Background(), b)
	})
	if !strings.Contains(out, "Page not found") {
		t.Fatalf("expected not found message")
	}
}

func TestCatalogPage_PriceUnavailable(t *testing.T) {
	t.Parallel()

	view := readyView()
	price := "HK$90"
	pct := decimal.NewFromInt(10)
	view.Products[0].Variants = []catalog.Variant{
		{ID: "v-empty", Title: "Empty", Price: ""},
		{ID: "v-text", Title: "Text", Price: "abc"},
		{ID: "v-flagged", Title: "Flagged", Price: "100", PriceUnavailable: true, DiscountedPrice: &price, DiscountPercentage: &pct},
	}
	out := renderString(t, func(b *strings.Builder) error {
		return CatalogPage(view).Render(context.Background(), b)
	})

	const want = `<span class="price-current price-unavailable">Price unavailable</span>`
	if got := strings.Count(out, want); got != 3 {
		t.Fatalf("expected 3 unavailable prices, got %d", got)
	}
	if strings.Contains(out, "-10%") || strings.Contains(out, "price-original") {
		t.Fatalf("unavailable prices must not show a discount")
	}
}

func TestCatalogPage_SanitizesImageURL(t *testing.T) {
	t.Parallel()

	view := readyView()
	view.Products[0].Images = []catalog.Image{{URL: "javascript:alert(1)"}}
	out := renderString(t, func(b *strings.Builder) error {
		return CatalogPage(view).Render(context.Background(), b)
	})
	if strings.Contains(out, "javascript:") {
		t.Fatalf("expected unsafe image URL to be replaced")
	}
	if !strings.Contains(out, `src="about:invalid#TemplFailedSanitizationURL"`) {
		t.Fatalf("expected sanitised src attribute")
	}
	if !strings.Contains(out, `alt="Renal &lt;Support&gt;"`) {
		t.Fatalf("expected alt text to fall back to the product title")
	}
}
