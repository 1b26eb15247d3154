package model

import "time"

// WishlistItem is a saved product. The wishlist is a local cache only; it has
// no remote counterpart and never syncs.
type WishlistItem struct {
	ProductID string    `json:"product_id"`
	Title     string    `json:"title"`
	Handle    string    `json:"handle"`
	ImageURL  string    `json:"image_url,omitempty"`
	Price     Money     `json:"price"`
	AddedAt   time.Time `json:"added_at"`
}
