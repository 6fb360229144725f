package catalog

import (
	"reflect"
	"testing"
)

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name: "valid config",
			yaml: `
default_collection: wellness-1
allowed_collections:
  - pet-supplements
  - wellness-1
collection_order:
  - wellness-1
  - pet-supplements
collection_titles:
  wellness-1: Wellness
collection_tags:
  wellness-1:
    - Dry Food 乾糧
hide_vendor_filter:
  - wellness-1
pet_types:
  - Dog 狗
discount_markers:
  prescription: Rx
  parasite: Flea
`,
			wantErr: false,
		},
		{
			name:    "invalid yaml",
			yaml:    "invalid: yaml: content:",
			wantErr: true,
		},
	}

	parser := NewParser()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := parser.ParseFromString(tt.yaml)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if config == nil {
				t.Error("expected config but got nil")
				return
			}

			if config.DefaultCollection != "wellness-1" {
				t.Errorf("expected default collection 'wellness-1', got '%s'", config.DefaultCollection)
			}

			if len(config.AllowedCollections) != 2 {
				t.Errorf("expected 2 allowed collections, got %d", len(config.AllowedCollections))
			}

			if config.DiscountMarkers.Prescription != "Rx" {
				t.Errorf("expected prescription marker 'Rx', got '%s'", config.DiscountMarkers.Prescription)
			}
		})
	}
}

func TestDefaultNavigationConfig(t *testing.T) {
	t.Parallel()

	config, err := DefaultNavigationConfig()
	if err != nil {
		t.Fatalf("failed to parse embedded navigation: %v", err)
	}
	if err := NewValidator().Validate(config); err != nil {
		t.Fatalf("embedded navigation is invalid: %v", err)
	}

	nav := NewNavigation(config)
	if nav.DefaultCollection() != "prescription-diet-cats-dogs" {
		t.Fatalf("unexpected default collection %q", nav.DefaultCollection())
	}
	if nav.Markers().Prescription != DefaultPrescriptionMarker || nav.Markers().Parasite != DefaultParasiteMarker {
		t.Fatalf("unexpected markers %+v", nav.Markers())
	}
}

func TestNavigation(t *testing.T) {
	t.Parallel()

	nav := NewNavigation(&NavigationConfig{
		AllowedCollections: []string{"pet-supplements", "stella-chewys", "prescription-diet-cats-dogs", "pet-grooming"},
		CollectionOrder:    []string{"prescription-diet-cats-dogs", "pet-supplements", "stella-chewys"},
		CollectionTitles:   map[string]string{"pet-supplements": "保健品及補充品"},
		CollectionTags:     map[string][]string{"stella-chewys": {"Dry Food 乾糧"}},
		HideVendorFilter:   []string{"stella-chewys"},
		PetTypes:           []string{"Dog 狗", "Cat 貓"},
	})

	if nav.DefaultCollection() != "pet-supplements" {
		t.Fatalf("expected first allowed collection as default, got %q", nav.DefaultCollection())
	}

	collections := []Collection{
		{ID: "1", Handle: "pet-grooming", Title: "Grooming"},
		{ID: "2", Handle: "stella-chewys", Title: "Stella"},
		{ID: "3", Handle: "frontpage", Title: "Home"},
		{ID: "4", Handle: "pet-supplements", Title: "Supplements"},
		{ID: "5", Handle: "prescription-diet-cats-dogs", Title: "Prescription"},
	}
	got := []string{}
	for _, c := range nav.Collections(collections) {
		got = append(got, c.Handle)
	}
	want := []string{"prescription-diet-cats-dogs", "pet-supplements", "stella-chewys", "pet-grooming"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("collections = %v, want %v", got, want)
	}

	if title := nav.DisplayTitle(collections[3]); title != "保健品及補充品" {
		t.Fatalf("expected override title, got %q", title)
	}
	if title := nav.DisplayTitle(collections[1]); title != "Stella" {
		t.Fatalf("expected platform title, got %q", title)
	}
	if title := nav.TitleForHandle("pet-grooming"); title != "pet-grooming" {
		t.Fatalf("expected handle as title, got %q", title)
	}

	if nav.ShowVendorFilter("stella-chewys") {
		t.Fatal("expected vendor filter to be hidden for stella-chewys")
	}
	if !nav.ShowVendorFilter("prescription-diet-cats-dogs") {
		t.Fatal("expected vendor filter to be shown")
	}
	if chips := nav.TagChips("stella-chewys"); len(chips) != 1 {
		t.Fatalf("expected 1 tag chip, got %v", chips)
	}
	if chips := nav.TagChips("pet-grooming"); len(chips) != 0 {
		t.Fatalf("expected no tag chips, got %v", chips)
	}
	if !nav.IsAllowed("pet-grooming") || nav.IsAllowed("frontpage") {
		t.Fatal("unexpected allow-list result")
	}
}
