package navigator

import "errors"

var (
	// ErrFetchFailure wraps a storefront failure that could not be covered by
	// cached data.
	ErrFetchFailure = errors.New("failed to fetch catalog data")

	// ErrMissingConfiguration is logged when the discount settings record is
	// absent or unusable and no cached copy exists.
	ErrMissingConfiguration = errors.New("discount settings are not configured")

	ErrOfflineUnavailable = errors.New("not available offline")
	ErrUnknownCollection  = errors.New("unknown collection")
	ErrUnknownDimension   = errors.New("unknown filter dimension")
	ErrUnknownProduct     = errors.New("unknown product")
)
