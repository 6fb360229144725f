package catalog

import (
	"cmp"
	"slices"
	"strings"
)

// SortCollections orders collections by their handle's position in priority.
// Collections missing from priority keep their relative order after the
// prioritized ones.
func SortCollections(collections []Collection, priority []string) []Collection {
	rank := make(map[string]int, len(priority))
	for i, handle := range priority {
		if _, exists := rank[handle]; !exists {
			rank[handle] = i
		}
	}
	rankOf := func(c Collection) int {
		if r, ok := rank[c.Handle]; ok {
			return r
		}
		return len(priority)
	}

	sorted := slices.Clone(collections)
	slices.SortStableFunc(sorted, func(a, b Collection) int {
		return cmp.Compare(rankOf(a), rankOf(b))
	})
	return sorted
}

// DisplayTitle prefers the override for the collection's handle over the
// title delivered by the platform.
func DisplayTitle(collection Collection, overrides map[string]string) string {
	if title, ok := overrides[collection.Handle]; ok && strings.TrimSpace(title) != "" {
		return title
	}
	return collection.Title
}

// FilterAllowed keeps collections whose handle is in allowed, in input order.
func FilterAllowed(collections []Collection, allowed []string) []Collection {
	filtered := make([]Collection, 0, len(collections))
	for _, collection := range collections {
		if slices.Contains(allowed, collection.Handle) {
			filtered = append(filtered, collection)
		}
	}
	return filtered
}
