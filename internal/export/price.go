package export

import "github.com/ppchow/pettington-product-navigator/internal/catalog"

// PriceUnavailableLabel replaces prices that could not be parsed.
const PriceUnavailableLabel = "Price unavailable"

// PriceDisplay is a variant price as exported. Original is the struck-through
// list price and is only set when a discounted price is shown.
type PriceDisplay struct {
	Current     string
	Original    string
	Unavailable bool
}

func (p PriceDisplay) Discounted() bool {
	return p.Original != ""
}

// CurrentClass is the CSS class of the current price span.
func (p PriceDisplay) CurrentClass() string {
	switch {
	case p.Unavailable:
		return "price-current price-unavailable"
	case p.Discounted():
		return "price-current discounted"
	default:
		return "price-current"
	}
}

func DisplayPrice(variant catalog.Variant, options catalog.PrintOptions) PriceDisplay {
	if variant.PriceUnavailable {
		return PriceDisplay{Current: PriceUnavailableLabel, Unavailable: true}
	}
	list, err := catalog.FormatPrice(variant.Price)
	if err != nil {
		return PriceDisplay{Current: PriceUnavailableLabel, Unavailable: true}
	}
	if options.ShowDiscountPrice && variant.HasDiscount() {
		return PriceDisplay{Current: *variant.DiscountedPrice, Original: list}
	}
	return PriceDisplay{Current: list}
}

// SKU returns the variant SKU when SKUs are shown.
func SKU(variant catalog.Variant, options catalog.PrintOptions) string {
	if !options.ShowSKU {
		return ""
	}
	return variant.SKU
}
