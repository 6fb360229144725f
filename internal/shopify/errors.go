package shopify

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnreachable marks failures where no response was received from the
	// storefront (DNS, refused connection, timeout).
	ErrUnreachable = errors.New("storefront unreachable")

	ErrCollectionNotFound = errors.New("collection not found")
	ErrSettingsNotFound   = errors.New("discount settings metaobject not found")
	ErrInvalidResponse    = errors.New("invalid storefront response")
)

// APIError is a non-2xx HTTP response from the Storefront API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("storefront API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("storefront API returned status %d: %s", e.StatusCode, e.Body)
}

// GraphQLError carries the errors array of a GraphQL response envelope.
type GraphQLError struct {
	Operation string
	Messages  []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("graphql error in %s: %s", e.Operation, strings.Join(e.Messages, "; "))
}

// IsUnreachable reports whether err means the storefront could not be reached.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}
