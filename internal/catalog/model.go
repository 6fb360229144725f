package catalog

// Package catalog holds the catalog data model and the pure pricing,
// filtering and collection ordering logic.

import (
	"encoding/json"
	"slices"

	"github.com/shopspring/decimal"
)

type Image struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// Variant is one purchasable unit of a product. DiscountedPrice and
// DiscountPercentage are both set or both nil.
type Variant struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	SKU                string           `json:"sku"`
	Price              string           `json:"price"`
	CompareAtPrice     string           `json:"compare_at_price,omitempty"`
	Available          bool             `json:"available"`
	DiscountedPrice    *string          `json:"discounted_price"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	PriceUnavailable   bool             `json:"price_unavailable,omitempty"`
}

func (v Variant) HasDiscount() bool {
	return v.DiscountedPrice != nil && v.DiscountPercentage != nil
}

// MarshalJSON writes discount_percentage as a bare number instead of the
// quoted string decimal.Decimal produces.
func (v Variant) MarshalJSON() ([]byte, error) {
	type variantJSON Variant
	out := struct {
		variantJSON
		DiscountPercentage *json.Number `json:"discount_percentage"`
	}{variantJSON: variantJSON(v)}
	if v.DiscountPercentage != nil {
		pct := json.Number(v.DiscountPercentage.String())
		out.DiscountPercentage = &pct
	}
	return json.Marshal(out)
}

type Product struct {
	ID          string    `json:"id"`
	Handle      string    `json:"handle"`
	Title       string    `json:"title"`
	Vendor      string    `json:"vendor"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Collection  string    `json:"collection"`
	Images      []Image   `json:"images"`
	Variants    []Variant `json:"variants"`
}

// Clone returns a copy that shares no slices or discount pointers with p.
func (p Product) Clone() Product {
	cloned := p
	cloned.Tags = slices.Clone(p.Tags)
	cloned.Images = slices.Clone(p.Images)
	cloned.Variants = make([]Variant, len(p.Variants))
	for i, variant := range p.Variants {
		if variant.DiscountedPrice != nil {
			price := *variant.DiscountedPrice
			variant.DiscountedPrice = &price
		}
		if variant.DiscountPercentage != nil {
			pct := *variant.DiscountPercentage
			variant.DiscountPercentage = &pct
		}
		cloned.Variants[i] = variant
	}
	return cloned
}

func (p Product) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

func (p Product) FeaturedImage() (Image, bool) {
	if len(p.Images) == 0 || p.Images[0].URL == "" {
		return Image{}, false
	}
	return p.Images[0], true
}

func (p Product) FindVariant(id string) (Variant, bool) {
	for _, variant := range p.Variants {
		if variant.ID == id {
			return variant, true
		}
	}
	return Variant{}, false
}

type Collection struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Title  string `json:"title"`
}
