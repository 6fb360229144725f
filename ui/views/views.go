package views

//go:generate templ generate

import (
	"fmt"
	"net/url"

	twmerge "github.com/Oudwins/tailwind-merge-go"

	"github.com/ppchow/pettington-product-navigator/internal/catalog"
	"github.com/ppchow/pettington-product-navigator/internal/navigator"
)

// ChipClass merges the chip base classes with the active state.
func ChipClass(active bool, extra ...string) string {
	classes := []string{"chip"}
	if active {
		classes = append(classes, "chip-active")
	}
	return twmerge.Merge(append(classes, extra...)...)
}

// VariantFieldValue joins IDs for the print-select checkbox value.
func VariantFieldValue(productID, variantID string) string {
	return productID + "|" + variantID
}

func catalogTitle(view navigator.View) string {
	if view.CollectionTitle == "" {
		return "Catalog"
	}
	return view.CollectionTitle
}

func collectionAction(handle string) string {
	return "/collections/" + url.PathEscape(handle)
}

func toggleProductAction(productID string) string {
	return "/print-select/products/" + url.PathEscape(productID) + "/toggle"
}

func toggleProductLabel(view navigator.View, product catalog.Product) string {
	if view.IsProductSelected(product) {
		return "Clear: " + product.Title
	}
	return "Select all: " + product.Title
}

func bannerClass(status navigator.Status) string {
	if status == navigator.StatusFailed || status == navigator.StatusOfflineUnavailable {
		return "banner banner-error"
	}
	return "banner"
}

func productCount(view navigator.View) string {
	count := fmt.Sprintf("%d of %d products", len(view.Products), view.TotalProducts)
	if view.Source == navigator.SourceCache && !view.StoredAt.IsZero() {
		count += " · saved " + view.StoredAt.Local().Format("2006-01-02 15:04")
	}
	return count
}
