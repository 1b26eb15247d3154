package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/valorin/storefront-backend/internal/app/model"
	"github.com/valorin/storefront-backend/internal/persistence"
	"github.com/valorin/storefront-backend/pkg/logger"
	"github.com/valorin/storefront-backend/pkg/shopify"
	"golang.org/x/sync/singleflight"
)

var (
	ErrLineItemNotFound = errors.New("line item not found")
	ErrInvalidLineItem  = errors.New("line item must have a variant id")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
)

// Gateway is the remote cart surface the store mirrors itself to.
type Gateway interface {
	CreateCart(ctx context.Context, lines []shopify.CartLineInput) (*shopify.RemoteCart, error)
	AddLines(ctx context.Context, cartID string, lines []shopify.CartLineInput) (*shopify.RemoteCart, error)
	UpdateLines(ctx context.Context, cartID string, updates []shopify.LineUpdateInput) (*shopify.RemoteCart, error)
	RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*shopify.RemoteCart, error)
	GetCart(ctx context.Context, cartID string) (*shopify.RemoteCart, error)
}

// Subscriber receives a cart snapshot after every observable state change.
type Subscriber interface {
	CartUpdated(state model.CartState)
}

// CartStore is the single source of truth for cart contents and sync status.
// Local state is ground truth for intent; the remote cart is a derived mirror
// that exists to produce a checkout URL. All mutations are optimistic: local
// state updates first and is retained even when the remote push fails.
type CartStore struct {
	mu      sync.Mutex
	state   model.CartState
	gateway Gateway
	persist persistence.CartPersistence

	flight singleflight.Group

	subMu sync.RWMutex
	subs  []Subscriber
}

func NewCartStore(gateway Gateway, persist persistence.CartPersistence) *CartStore {
	return &CartStore{
		gateway: gateway,
		persist: persist,
	}
}

// Restore loads the persisted cart state. Corrupt or missing records fall
// back to an empty cart; transient flags always reset to their zero values.
func (s *CartStore) Restore(ctx context.Context) error {
	state, err := s.persist.LoadCart(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrCorruptRecord) {
			logger.Warn("Stored cart is unreadable, starting with an empty cart", map[string]interface{}{
				"error": err.Error(),
			})
			state = model.CartState{}
		} else {
			return err
		}
	}

	state.IsOpen = false
	state.IsLoading = false
	state.IsSyncing = false
	normalize(&state)

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	logger.Info("Cart state restored", map[string]interface{}{
		"line_items":     len(state.LineItems),
		"remote_cart_id": state.RemoteCartID,
	})
	return nil
}

// normalize drops entries that would violate cart invariants: duplicate
// variant IDs and non-positive quantities.
func normalize(state *model.CartState) {
	seen := make(map[string]bool, len(state.LineItems))
	items := state.LineItems[:0]
	for _, item := range state.LineItems {
		if item.VariantID == "" || item.Quantity < 1 || seen[item.VariantID] {
			continue
		}
		seen[item.VariantID] = true
		items = append(items, item)
	}
	state.LineItems = items
}

// Subscribe registers a subscriber for cart change notifications.
func (s *CartStore) Subscribe(sub Subscriber) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, sub)
}

func (s *CartStore) notify() {
	snap := s.Snapshot()
	s.subMu.RLock()
	subs := make([]Subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.RUnlock()
	for _, sub := range subs {
		sub.CartUpdated(snap)
	}
}

// Snapshot returns a copy of the current cart state.
func (s *CartStore) Snapshot() model.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *CartStore) snapshotLocked() model.CartState {
	snap := s.state
	snap.LineItems = make([]model.LineItem, len(s.state.LineItems))
	copy(snap.LineItems, s.state.LineItems)
	return snap
}

// persistLocked writes through to durable storage. Persistence failures are
// logged and never fail the cart operation itself.
func (s *CartStore) persistLocked(ctx context.Context) {
	if err := s.persist.SaveCart(ctx, s.state); err != nil {
		logger.Warn("Failed to persist cart state", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *CartStore) findLocked(variantID string) int {
	for i := range s.state.LineItems {
		if s.state.LineItems[i].VariantID == variantID {
			return i
		}
	}
	return -1
}

func (s *CartStore) clearLoading() {
	s.mu.Lock()
	s.state.IsLoading = false
	s.mu.Unlock()
	s.notify()
}

// clearRemoteRefs forgets the remote cart after it has expired. Local line
// items are untouched; only the derived remote identifiers are dropped.
func (s *CartStore) clearRemoteRefs(ctx context.Context) {
	s.mu.Lock()
	s.state.RemoteCartID = ""
	s.state.CheckoutURL = ""
	for i := range s.state.LineItems {
		s.state.LineItems[i].RemoteLineID = ""
	}
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// applyRemoteCart pulls the remote-authoritative values (cart ID, checkout
// URL, line IDs) into local state. Local quantities are never overwritten:
// the remote cart mirrors local intent, not the other way around. Matching
// happens against freshly read state, not a snapshot captured before the
// gateway call.
func (s *CartStore) applyRemoteCart(ctx context.Context, remote *shopify.RemoteCart) {
	if remote == nil {
		return
	}
	s.mu.Lock()
	if remote.ID != "" {
		s.state.RemoteCartID = remote.ID
	}
	if remote.CheckoutURL != "" {
		s.state.CheckoutURL = remote.CheckoutURL
	}
	byVariant := make(map[string]string, len(remote.Lines))
	for _, line := range remote.Lines {
		byVariant[line.VariantID] = line.ID
	}
	for i := range s.state.LineItems {
		if lineID, ok := byVariant[s.state.LineItems[i].VariantID]; ok {
			s.state.LineItems[i].RemoteLineID = lineID
		}
	}
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

func lineInputs(items []model.LineItem) []shopify.CartLineInput {
	lines := make([]shopify.CartLineInput, 0, len(items))
	for _, item := range items {
		lines = append(lines, shopify.CartLineInput{
			MerchandiseID: item.VariantID,
			Quantity:      item.Quantity,
		})
	}
	return lines
}

// createRemoteFromLocal creates a remote cart mirroring the current local
// lines and applies the returned identifiers.
func (s *CartStore) createRemoteFromLocal(ctx context.Context) (*shopify.RemoteCart, error) {
	snap := s.Snapshot()
	remote, err := s.gateway.CreateCart(ctx, lineInputs(snap.LineItems))
	if remote != nil {
		s.applyRemoteCart(ctx, remote)
	}
	return remote, err
}

// AddItem inserts a line item, or increments quantity when the variant is
// already in the cart, then mirrors the change to the remote cart. On gateway
// failure the local update is retained and the error is returned for
// user-facing notification.
func (s *CartStore) AddItem(ctx context.Context, item model.LineItem) error {
	if item.VariantID == "" {
		return ErrInvalidLineItem
	}
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	s.state.IsLoading = true
	cartID := s.state.RemoteCartID
	var lineID string
	var newQuantity int
	if idx := s.findLocked(item.VariantID); idx >= 0 {
		s.state.LineItems[idx].Quantity += item.Quantity
		newQuantity = s.state.LineItems[idx].Quantity
		lineID = s.state.LineItems[idx].RemoteLineID
	} else {
		item.RemoteLineID = ""
		s.state.LineItems = append(s.state.LineItems, item)
		newQuantity = item.Quantity
	}
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()

	defer s.clearLoading()

	logger.Debug("Adding item to cart", map[string]interface{}{
		"variant_id": item.VariantID,
		"quantity":   item.Quantity,
	})

	var remote *shopify.RemoteCart
	var err error
	switch {
	case cartID == "":
		remote, err = s.createRemoteFromLocal(ctx)
	case lineID != "":
		remote, err = s.gateway.UpdateLines(ctx, cartID, []shopify.LineUpdateInput{
			{ID: lineID, Quantity: newQuantity},
		})
	default:
		// No known remote line means earlier pushes for this variant never
		// landed, so the absolute quantity is what converges the mirror.
		remote, err = s.gateway.AddLines(ctx, cartID, []shopify.CartLineInput{
			{MerchandiseID: item.VariantID, Quantity: newQuantity},
		})
	}

	return s.finishMutation(ctx, "add", item.VariantID, remote, err)
}

// UpdateQuantity sets the quantity of an existing line item. A quantity of
// zero or less removes the line item instead.
func (s *CartStore) UpdateQuantity(ctx context.Context, variantID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, variantID)
	}

	s.mu.Lock()
	idx := s.findLocked(variantID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrLineItemNotFound
	}
	s.state.IsLoading = true
	s.state.LineItems[idx].Quantity = quantity
	cartID := s.state.RemoteCartID
	lineID := s.state.LineItems[idx].RemoteLineID
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()

	defer s.clearLoading()

	logger.Debug("Updating cart item quantity", map[string]interface{}{
		"variant_id": variantID,
		"quantity":   quantity,
	})

	var remote *shopify.RemoteCart
	var err error
	switch {
	case cartID == "":
		remote, err = s.createRemoteFromLocal(ctx)
	case lineID != "":
		remote, err = s.gateway.UpdateLines(ctx, cartID, []shopify.LineUpdateInput{
			{ID: lineID, Quantity: quantity},
		})
	default:
		remote, err = s.gateway.AddLines(ctx, cartID, []shopify.CartLineInput{
			{MerchandiseID: variantID, Quantity: quantity},
		})
	}

	return s.finishMutation(ctx, "update", variantID, remote, err)
}

// RemoveItem deletes the line item and the mirroring remote line. Removing a
// variant that is not in the cart is a successful no-op.
func (s *CartStore) RemoveItem(ctx context.Context, variantID string) error {
	s.mu.Lock()
	idx := s.findLocked(variantID)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	s.state.IsLoading = true
	cartID := s.state.RemoteCartID
	lineID := s.state.LineItems[idx].RemoteLineID
	s.state.LineItems = append(s.state.LineItems[:idx], s.state.LineItems[idx+1:]...)
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()

	defer s.clearLoading()

	logger.Debug("Removing cart item", map[string]interface{}{
		"variant_id": variantID,
	})

	if cartID == "" || lineID == "" {
		return nil
	}

	remote, err := s.gateway.RemoveLines(ctx, cartID, []string{lineID})
	if errors.Is(err, shopify.ErrCartNotFound) {
		// Nothing left to remove remotely; the next sync recreates the cart.
		s.clearRemoteRefs(ctx)
		return nil
	}
	return s.finishMutation(ctx, "remove", variantID, remote, err)
}

// Clear empties the cart locally and remotely. The remote cart ID is kept so
// the same remote cart can be reused for future items.
func (s *CartStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.state.IsLoading = true
	cartID := s.state.RemoteCartID
	var lineIDs []string
	for _, item := range s.state.LineItems {
		if item.RemoteLineID != "" {
			lineIDs = append(lineIDs, item.RemoteLineID)
		}
	}
	s.state.LineItems = nil
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()

	defer s.clearLoading()

	logger.Info("Clearing cart", map[string]interface{}{
		"remote_cart_id": cartID,
	})

	if cartID == "" || len(lineIDs) == 0 {
		return nil
	}

	remote, err := s.gateway.RemoveLines(ctx, cartID, lineIDs)
	if errors.Is(err, shopify.ErrCartNotFound) {
		s.clearRemoteRefs(ctx)
		return nil
	}
	return s.finishMutation(ctx, "clear", "", remote, err)
}

// finishMutation applies the remote result of a mutation, handling an expired
// remote cart by recreating it from local truth. Partial successes still
// return the rejection error after applying what the backend accepted.
func (s *CartStore) finishMutation(ctx context.Context, op, variantID string, remote *shopify.RemoteCart, err error) error {
	if errors.Is(err, shopify.ErrCartNotFound) {
		logger.Warn("Remote cart expired, recreating from local state", map[string]interface{}{
			"operation": op,
		})
		s.clearRemoteRefs(ctx)
		_, err = s.createRemoteFromLocal(ctx)
		remote = nil
	}
	if remote != nil {
		s.applyRemoteCart(ctx, remote)
	}
	if err != nil {
		logger.Error("Failed to mirror cart mutation to storefront", err, map[string]interface{}{
			"operation":  op,
			"variant_id": variantID,
		})
		return err
	}
	return nil
}

// CheckoutURL returns the current checkout URL, or empty when no remote cart
// exists yet. Never triggers network activity.
func (s *CartStore) CheckoutURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CheckoutURL
}

// TotalItems sums quantities across line items.
func (s *CartStore) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalItems()
}

// TotalPrice returns the advisory subtotal and its currency code.
func (s *CartStore) TotalPrice() (float64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalPrice()
}

// SetOpen sets the drawer visibility flag. Transitioning to open triggers a
// background sync that does not depend on the caller's lifetime.
func (s *CartStore) SetOpen(open bool) {
	s.mu.Lock()
	wasOpen := s.state.IsOpen
	s.state.IsOpen = open
	s.mu.Unlock()
	s.notify()

	if open && !wasOpen {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.Sync(ctx); err != nil {
				logger.Warn("Cart sync on open failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}()
	}
}
