package persistence

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/valorin/storefront-backend/internal/app/model"
)

// MemoryStore is an in-process persistence adapter used in tests and local
// development without Redis. Values round-trip through JSON so serialization
// behaves the same as the Redis-backed store.
type MemoryStore struct {
	mu       sync.Mutex
	cart     []byte
	wishlist []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SaveCart(ctx context.Context, state model.CartState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = data
	return nil
}

func (s *MemoryStore) LoadCart(ctx context.Context) (model.CartState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return model.CartState{}, nil
	}
	var state model.CartState
	if err := json.Unmarshal(s.cart, &state); err != nil {
		return model.CartState{}, ErrCorruptRecord
	}
	return state, nil
}

func (s *MemoryStore) SaveWishlist(ctx context.Context, items []model.WishlistItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wishlist = data
	return nil
}

func (s *MemoryStore) LoadWishlist(ctx context.Context) ([]model.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wishlist == nil {
		return nil, nil
	}
	var items []model.WishlistItem
	if err := json.Unmarshal(s.wishlist, &items); err != nil {
		return nil, ErrCorruptRecord
	}
	return items, nil
}
