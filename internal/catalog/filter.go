package catalog

import (
	"slices"
	"sort"
)

// Set is a set of filter values. Use NewSet; the zero value is read-only.
type Set map[string]struct{}

func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, value := range values {
		s[value] = struct{}{}
	}
	return s
}

func (s Set) Has(value string) bool {
	_, ok := s[value]
	return ok
}

// Toggle adds value when absent and removes it otherwise. It reports whether
// value is present afterwards.
func (s Set) Toggle(value string) bool {
	if s.Has(value) {
		delete(s, value)
		return false
	}
	s[value] = struct{}{}
	return true
}

func (s Set) Len() int {
	return len(s)
}

func (s Set) Values() []string {
	values := make([]string, 0, len(s))
	for value := range s {
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}

func (s Set) Clone() Set {
	return NewSet(s.Values()...)
}

func (s Set) intersects(values []string) bool {
	for _, value := range values {
		if s.Has(value) {
			return true
		}
	}
	return false
}

type Selection struct {
	Vendors  Set
	Tags     Set
	PetTypes Set
}

func NewSelection() Selection {
	return Selection{
		Vendors:  NewSet(),
		Tags:     NewSet(),
		PetTypes: NewSet(),
	}
}

func (s Selection) Clone() Selection {
	return Selection{
		Vendors:  s.Vendors.Clone(),
		Tags:     s.Tags.Clone(),
		PetTypes: s.PetTypes.Clone(),
	}
}

func (s Selection) Count() int {
	return s.Vendors.Len() + s.Tags.Len() + s.PetTypes.Len()
}

func (s Selection) IsEmpty() bool {
	return s.Count() == 0
}

// Matches applies OR within each dimension and AND across dimensions. Pet
// types are matched against product tags.
func (s Selection) Matches(product Product) bool {
	if s.Vendors.Len() > 0 && !s.Vendors.Has(product.Vendor) {
		return false
	}
	if s.Tags.Len() > 0 && !s.Tags.intersects(product.Tags) {
		return false
	}
	if s.PetTypes.Len() > 0 && !s.PetTypes.intersects(product.Tags) {
		return false
	}
	return true
}

// FilterProducts keeps the products matching selection in input order.
func FilterProducts(products []Product, selection Selection) []Product {
	if selection.IsEmpty() {
		return slices.Clone(products)
	}

	filtered := make([]Product, 0, len(products))
	for _, product := range products {
		if selection.Matches(product) {
			filtered = append(filtered, product)
		}
	}
	return filtered
}

// DistinctVendors lists vendors in first-seen order.
func DistinctVendors(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	vendors := make([]string, 0)
	for _, product := range products {
		if product.Vendor == "" {
			continue
		}
		if _, ok := seen[product.Vendor]; ok {
			continue
		}
		seen[product.Vendor] = struct{}{}
		vendors = append(vendors, product.Vendor)
	}
	return vendors
}
