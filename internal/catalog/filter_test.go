package catalog

import (
	"reflect"
	"testing"
)

func filterFixture() []Product {
	return []Product{
		{ID: "P1", Vendor: "Hill's", Tags: []string{"Dog 狗", "腎臟處方糧"}},
		{ID: "P2", Vendor: "Royal Canin", Tags: []string{"Cat 貓", "腸胃處方糧"}},
		{ID: "P3", Vendor: "Hill's", Tags: []string{"Cat 貓", "泌尿道處方糧"}},
		{ID: "P4", Vendor: "Specific", Tags: []string{"Dog 狗", "Cat 貓", "低敏處方糧"}},
		{ID: "P5", Vendor: "", Tags: nil},
	}
}

func productIDs(products []Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestFilterProducts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		selection Selection
		want      []string
	}{
		{
			name:      "empty selection is identity",
			selection: NewSelection(),
			want:      []string{"P1", "P2", "P3", "P4", "P5"},
		},
		{
			name:      "zero value selection is identity",
			selection: Selection{},
			want:      []string{"P1", "P2", "P3", "P4", "P5"},
		},
		{
			name:      "single vendor",
			selection: Selection{Vendors: NewSet("Hill's")},
			want:      []string{"P1", "P3"},
		},
		{
			name:      "vendors are OR-ed",
			selection: Selection{Vendors: NewSet("Hill's", "Specific")},
			want:      []string{"P1", "P3", "P4"},
		},
		{
			name:      "tags are OR-ed",
			selection: Selection{Tags: NewSet("腎臟處方糧", "低敏處方糧")},
			want:      []string{"P1", "P4"},
		},
		{
			name:      "tags use exact match",
			selection: Selection{Tags: NewSet("處方糧")},
			want:      []string{},
		},
		{
			name:      "pet type matches tags",
			selection: Selection{PetTypes: NewSet("Cat 貓")},
			want:      []string{"P2", "P3", "P4"},
		},
		{
			name:      "dimensions are AND-ed",
			selection: Selection{Vendors: NewSet("Hill's"), PetTypes: NewSet("Cat 貓")},
			want:      []string{"P3"},
		},
		{
			name: "all three dimensions",
			selection: Selection{
				Vendors:  NewSet("Hill's", "Specific"),
				Tags:     NewSet("低敏處方糧", "泌尿道處方糧"),
				PetTypes: NewSet("Dog 狗"),
			},
			want: []string{"P4"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := productIDs(FilterProducts(filterFixture(), tt.selection))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterProducts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterProducts_ResultIsSubset(t *testing.T) {
	t.Parallel()

	products := filterFixture()
	selection := Selection{Vendors: NewSet("Royal Canin", "Specific")}
	for _, product := range FilterProducts(products, selection) {
		if !selection.Matches(product) {
			t.Fatalf("product %s does not match selection", product.ID)
		}
	}
}

func TestSet_Toggle(t *testing.T) {
	t.Parallel()

	s := NewSet()
	if !s.Toggle("Dog 狗") || !s.Has("Dog 狗") {
		t.Fatal("expected value to be added")
	}
	if s.Toggle("Dog 狗") || s.Has("Dog 狗") {
		t.Fatal("expected value to be removed")
	}

	s = NewSet("b", "a")
	clone := s.Clone()
	clone.Toggle("c")
	if s.Has("c") {
		t.Fatal("clone must not share storage")
	}
	if !reflect.DeepEqual(clone.Values(), []string{"a", "b", "c"}) {
		t.Fatalf("unexpected values %v", clone.Values())
	}
}

func TestSelection_Count(t *testing.T) {
	t.Parallel()

	selection := NewSelection()
	if !selection.IsEmpty() {
		t.Fatal("new selection must be empty")
	}
	selection.Vendors.Toggle("Hill's")
	selection.Tags.Toggle("關節保健")
	if selection.Count() != 2 {
		t.Fatalf("expected 2 active filters, got %d", selection.Count())
	}
}

func TestDistinctVendors(t *testing.T) {
	t.Parallel()

	got := DistinctVendors(filterFixture())
	want := []string{"Hill's", "Royal Canin", "Specific"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DistinctVendors() = %v, want %v", got, want)
	}
}
