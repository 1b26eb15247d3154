package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/valorin/storefront-backend/internal/app/model"
	"github.com/valorin/storefront-backend/internal/persistence"
	"github.com/valorin/storefront-backend/pkg/logger"
)

var ErrWishlistItemExists = errors.New("product already in wishlist")

// WishlistSubscriber receives the full wishlist after every change.
type WishlistSubscriber interface {
	WishlistUpdated(items []model.WishlistItem)
}

// WishlistStore is a persisted local cache of saved products. Unlike the
// cart it has no remote counterpart and never syncs.
type WishlistStore struct {
	mu      sync.Mutex
	items   []model.WishlistItem
	persist persistence.WishlistPersistence

	subMu sync.RWMutex
	subs  []WishlistSubscriber
}

func NewWishlistStore(persist persistence.WishlistPersistence) *WishlistStore {
	return &WishlistStore{persist: persist}
}

// Subscribe registers a listener for wishlist changes.
func (s *WishlistStore) Subscribe(sub WishlistSubscriber) {
	s.subMu.Lock()
	s.subs = append(s.subs, sub)
	s.subMu.Unlock()
}

func (s *WishlistStore) notify(items []model.WishlistItem) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, sub := range s.subs {
		sub.WishlistUpdated(items)
	}
}

func (s *WishlistStore) listLocked() []model.WishlistItem {
	items := make([]model.WishlistItem, len(s.items))
	copy(items, s.items)
	return items
}

// Restore loads the persisted wishlist. Corrupt records fall back to an
// empty list.
func (s *WishlistStore) Restore(ctx context.Context) error {
	items, err := s.persist.LoadWishlist(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrCorruptRecord) {
			logger.Warn("Stored wishlist is unreadable, starting empty", map[string]interface{}{
				"error": err.Error(),
			})
			items = nil
		} else {
			return err
		}
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	logger.Info("Wishlist restored", map[string]interface{}{
		"count": len(items),
	})
	return nil
}

func (s *WishlistStore) persistLocked(ctx context.Context) {
	if err := s.persist.SaveWishlist(ctx, s.items); err != nil {
		logger.Warn("Failed to persist wishlist", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Add saves a product. Adding a product that is already saved returns
// ErrWishlistItemExists.
func (s *WishlistStore) Add(ctx context.Context, item model.WishlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.ProductID == item.ProductID {
			return ErrWishlistItemExists
		}
	}

	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	s.items = append(s.items, item)
	s.persistLocked(ctx)
	s.notify(s.listLocked())
	return nil
}

// Remove deletes a saved product. Removing an unknown product is a no-op.
func (s *WishlistStore) Remove(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persistLocked(ctx)
			s.notify(s.listLocked())
			return
		}
	}
}

// Contains reports whether the product is saved.
func (s *WishlistStore) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// List returns a copy of the saved products in insertion order.
func (s *WishlistStore) List() []model.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

// Clear removes every saved product.
func (s *WishlistStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persistLocked(ctx)
	s.notify(nil)
}
