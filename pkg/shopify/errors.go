package shopify

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNetwork is returned when the Storefront API cannot be reached or
	// answers with an unexpected status. Safe to retry.
	ErrNetwork = errors.New("storefront network error")

	// ErrCartNotFound is returned when a cart ID no longer resolves to a
	// remote cart (expired or deleted). The caller must discard the ID and
	// create a new cart.
	ErrCartNotFound = errors.New("remote cart not found")

	// ErrBackendUnavailable is returned when Shopify reports a billing or
	// availability outage for the storefront (HTTP 402). Not retried.
	ErrBackendUnavailable = errors.New("storefront unavailable: shop requires an active billing plan")

	// ErrInvalidConfig is returned when the client configuration is incomplete
	ErrInvalidConfig = errors.New("invalid shopify configuration")
)

// LineRejection is a single user-facing error Shopify attached to a cart line.
type LineRejection struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// LineRejectedError reports that the request itself succeeded but the backend
// rejected one or more lines (sold out, unavailable variant). The rejections
// are per-line so the caller can surface each one.
type LineRejectedError struct {
	Rejections []LineRejection
}

func (e *LineRejectedError) Error() string {
	msgs := make([]string, len(e.Rejections))
	for i, r := range e.Rejections {
		msgs[i] = r.Message
	}
	return fmt.Sprintf("cart lines rejected: %s", strings.Join(msgs, "; "))
}
