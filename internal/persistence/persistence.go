package persistence

import (
	"context"
	"errors"

	"github.com/valorin/storefront-backend/internal/app/model"
)

// ErrCorruptRecord is returned when a stored record cannot be decoded or its
// schema version is unknown. Callers recover by resetting to empty state; it
// is never fatal.
var ErrCorruptRecord = errors.New("stored record is corrupt or incompatible")

// CartPersistence stores the serialized cart state across sessions. Transient
// flags are not part of the record.
type CartPersistence interface {
	SaveCart(ctx context.Context, state model.CartState) error
	LoadCart(ctx context.Context) (model.CartState, error)
}

// WishlistPersistence stores the wishlist across sessions.
type WishlistPersistence interface {
	SaveWishlist(ctx context.Context, items []model.WishlistItem) error
	LoadWishlist(ctx context.Context) ([]model.WishlistItem, error)
}
