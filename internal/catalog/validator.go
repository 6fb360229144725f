package catalog

// Package catalog provides navigation config validation.

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

var collectionHandleRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// IsValidHandle validates a collection handle (lowercase words joined by single hyphens).
func IsValidHandle(handle string) bool {
	return collectionHandleRegex.MatchString(handle)
}

func (v *Validator) Validate(config *NavigationConfig) error {
	if config == nil {
		return fmt.Errorf("navigation config is required")
	}

	if len(config.AllowedCollections) == 0 {
		return fmt.Errorf("at least one allowed collection is required")
	}

	allowed := make(map[string]bool)
	for i, handle := range config.AllowedCollections {
		if !IsValidHandle(handle) {
			return fmt.Errorf("allowed collection %d has invalid handle %q", i, handle)
		}
		if allowed[handle] {
			return fmt.Errorf("duplicate allowed collection: %s", handle)
		}
		allowed[handle] = true
	}

	if config.DefaultCollection != "" && !allowed[config.DefaultCollection] {
		return fmt.Errorf("default collection %s is not an allowed collection", config.DefaultCollection)
	}

	ordered := make(map[string]bool)
	for _, handle := range config.CollectionOrder {
		if ordered[handle] {
			return fmt.Errorf("duplicate collection in collection_order: %s", handle)
		}
		ordered[handle] = true
	}

	if err := v.validateKeys("collection_titles", keysOf(config.CollectionTitles), allowed); err != nil {
		return err
	}
	if err := v.validateKeys("collection_tags", keysOf(config.CollectionTags), allowed); err != nil {
		return err
	}
	if err := v.validateKeys("hide_vendor_filter", config.HideVendorFilter, allowed); err != nil {
		return err
	}

	for handle, tags := range config.CollectionTags {
		if err := validateChips(tags); err != nil {
			return fmt.Errorf("collection_tags %s: %w", handle, err)
		}
	}

	if err := validateChips(config.PetTypes); err != nil {
		return fmt.Errorf("pet_types: %w", err)
	}

	if err := v.validateMarkers(config.DiscountMarkers); err != nil {
		return fmt.Errorf("discount_markers validation failed: %w", err)
	}

	return nil
}

func (v *Validator) validateKeys(section string, handles []string, allowed map[string]bool) error {
	for _, handle := range handles {
		if !allowed[handle] {
			return fmt.Errorf("%s references collection %s which is not allowed", section, handle)
		}
	}
	return nil
}

func (v *Validator) validateMarkers(markers Markers) error {
	if markers.Prescription != "" && strings.TrimSpace(markers.Prescription) == "" {
		return fmt.Errorf("prescription marker cannot be blank")
	}
	if markers.Parasite != "" && strings.TrimSpace(markers.Parasite) == "" {
		return fmt.Errorf("parasite marker cannot be blank")
	}
	if markers.Prescription != "" && markers.Prescription == markers.Parasite {
		return fmt.Errorf("prescription and parasite markers must differ")
	}
	return nil
}

func validateChips(values []string) error {
	seen := make(map[string]bool, len(values))
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("chip values cannot be empty")
		}
		if seen[value] {
			return fmt.Errorf("duplicate chip value: %s", value)
		}
		seen[value] = true
	}
	return nil
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
