package catalog

// PrintItem is one product chosen for printing or export, restricted to the
// selected variants.
type PrintItem struct {
	Product  Product   `json:"product"`
	Variants []Variant `json:"variants"`
}

type PrintOptions struct {
	ShowDiscountPrice bool `json:"show_discount_price"`
	ShowSKU           bool `json:"show_sku"`
}

// PrintSelection tracks selected variant IDs per product ID.
type PrintSelection struct {
	variants map[string]Set
}

func NewPrintSelection() *PrintSelection {
	return &PrintSelection{variants: make(map[string]Set)}
}

func (s *PrintSelection) ToggleVariant(productID, variantID string) bool {
	selected, ok := s.variants[productID]
	if !ok {
		selected = NewSet()
		s.variants[productID] = selected
	}
	on := selected.Toggle(variantID)
	if selected.Len() == 0 {
		delete(s.variants, productID)
	}
	return on
}

// ToggleProduct selects every variant of product unless all of them are
// already selected, in which case it clears the product.
func (s *PrintSelection) ToggleProduct(product Product) bool {
	if len(product.Variants) == 0 {
		return false
	}
	if s.AllSelected(product) {
		delete(s.variants, product.ID)
		return false
	}
	selected := NewSet()
	for _, variant := range product.Variants {
		selected[variant.ID] = struct{}{}
	}
	s.variants[product.ID] = selected
	return true
}

func (s *PrintSelection) IsSelected(productID, variantID string) bool {
	return s.variants[productID].Has(variantID)
}

func (s *PrintSelection) AllSelected(product Product) bool {
	if len(product.Variants) == 0 {
		return false
	}
	selected := s.variants[product.ID]
	for _, variant := range product.Variants {
		if !selected.Has(variant.ID) {
			return false
		}
	}
	return true
}

// Count is the number of selected variants.
func (s *PrintSelection) Count() int {
	total := 0
	for _, selected := range s.variants {
		total += selected.Len()
	}
	return total
}

func (s *PrintSelection) Clear() {
	clear(s.variants)
}

func (s *PrintSelection) Clone() *PrintSelection {
	cloned := NewPrintSelection()
	for productID, selected := range s.variants {
		cloned.variants[productID] = selected.Clone()
	}
	return cloned
}

// Items lists the selected variants of products, in product and variant order.
// Selections that no longer match a product or variant are skipped.
func (s *PrintSelection) Items(products []Product) []PrintItem {
	items := make([]PrintItem, 0, len(s.variants))
	for _, product := range products {
		selected, ok := s.variants[product.ID]
		if !ok {
			continue
		}
		variants := make([]Variant, 0, selected.Len())
		for _, variant := range product.Variants {
			if selected.Has(variant.ID) {
				variants = append(variants, variant)
			}
		}
		if len(variants) == 0 {
			continue
		}
		items = append(items, PrintItem{Product: product, Variants: variants})
	}
	return items
}
