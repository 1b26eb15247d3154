package store

import (
	"context"
	"errors"

	"github.com/valorin/storefront-backend/pkg/logger"
	"github.com/valorin/storefront-backend/pkg/shopify"
)

// Sync runs the reconciliation routine. Overlapping invocations (the cart
// being re-opened quickly, the background scheduler firing mid-open) are
// collapsed into a single flight so at most one remote cart is ever created
// for the same local state.
func (s *CartStore) Sync(ctx context.Context) error {
	_, err, _ := s.flight.Do("cart-sync", func() (interface{}, error) {
		return nil, s.reconcile(ctx)
	})
	return err
}

// reconcile brings the remote cart into agreement with local intent. Local
// line items are the intended state; only the cart ID and checkout URL are
// remote-authoritative. Gateway errors leave local state unchanged apart from
// clearing the syncing flag.
func (s *CartStore) reconcile(ctx context.Context) error {
	s.mu.Lock()
	s.state.IsSyncing = true
	s.mu.Unlock()
	s.notify()

	defer func() {
		s.mu.Lock()
		s.state.IsSyncing = false
		s.mu.Unlock()
		s.notify()
	}()

	snap := s.Snapshot()
	cartID := snap.RemoteCartID

	var remote *shopify.RemoteCart
	if cartID != "" {
		var err error
		remote, err = s.gateway.GetCart(ctx, cartID)
		switch {
		case errors.Is(err, shopify.ErrCartNotFound):
			logger.Warn("Remote cart no longer exists, recreating from local state", map[string]interface{}{
				"remote_cart_id": cartID,
			})
			s.clearRemoteRefs(ctx)
			cartID = ""
		case err != nil:
			logger.Error("Cart sync failed to fetch remote cart", err, map[string]interface{}{
				"remote_cart_id": cartID,
			})
			return err
		}
	}

	if cartID == "" {
		snap = s.Snapshot()
		if len(snap.LineItems) == 0 {
			// Defer remote cart creation to the first add.
			return nil
		}
		created, err := s.gateway.CreateCart(ctx, lineInputs(snap.LineItems))
		if created != nil {
			s.applyRemoteCart(ctx, created)
		}
		if err != nil {
			logger.Error("Cart sync failed to create remote cart", err, nil)
			return err
		}
		logger.Info("Cart synced to new remote cart", map[string]interface{}{
			"remote_cart_id": created.ID,
			"lines":          len(created.Lines),
		})
		return nil
	}

	s.applyRemoteCart(ctx, remote)
	return s.pushLines(ctx, cartID, remote)
}

// pushLines diffs local line items against the remote lines and issues the
// adds, updates and removes needed to make the remote cart mirror local
// state.
func (s *CartStore) pushLines(ctx context.Context, cartID string, remote *shopify.RemoteCart) error {
	local := s.Snapshot()

	remoteByVariant := make(map[string]shopify.RemoteLine, len(remote.Lines))
	for _, line := range remote.Lines {
		remoteByVariant[line.VariantID] = line
	}
	localVariants := make(map[string]bool, len(local.LineItems))

	var adds []shopify.CartLineInput
	var updates []shopify.LineUpdateInput
	var removes []string

	for _, item := range local.LineItems {
		localVariants[item.VariantID] = true
		line, ok := remoteByVariant[item.VariantID]
		if !ok {
			adds = append(adds, shopify.CartLineInput{
				MerchandiseID: item.VariantID,
				Quantity:      item.Quantity,
			})
			continue
		}
		if line.Quantity != item.Quantity {
			updates = append(updates, shopify.LineUpdateInput{
				ID:       line.ID,
				Quantity: item.Quantity,
			})
		}
	}
	for _, line := range remote.Lines {
		if !localVariants[line.VariantID] {
			removes = append(removes, line.ID)
		}
	}

	if len(adds) == 0 && len(updates) == 0 && len(removes) == 0 {
		logger.Debug("Cart already in sync", map[string]interface{}{
			"remote_cart_id": cartID,
		})
		return nil
	}

	logger.Info("Repairing cart divergence", map[string]interface{}{
		"remote_cart_id": cartID,
		"adds":           len(adds),
		"updates":        len(updates),
		"removes":        len(removes),
	})

	if len(removes) > 0 {
		recreated, err := s.pushStep(ctx, cartID, func() (*shopify.RemoteCart, error) {
			return s.gateway.RemoveLines(ctx, cartID, removes)
		})
		if err != nil || recreated {
			return err
		}
	}
	if len(updates) > 0 {
		recreated, err := s.pushStep(ctx, cartID, func() (*shopify.RemoteCart, error) {
			return s.gateway.UpdateLines(ctx, cartID, updates)
		})
		if err != nil || recreated {
			return err
		}
	}
	if len(adds) > 0 {
		if _, err := s.pushStep(ctx, cartID, func() (*shopify.RemoteCart, error) {
			return s.gateway.AddLines(ctx, cartID, adds)
		}); err != nil {
			return err
		}
	}
	return nil
}

// pushStep runs one remote mutation during reconciliation. An expired cart
// mid-sync falls back to recreating the remote cart from local truth, which
// already mirrors every local line, so the caller skips any remaining steps.
func (s *CartStore) pushStep(ctx context.Context, cartID string, call func() (*shopify.RemoteCart, error)) (bool, error) {
	remote, err := call()
	if errors.Is(err, shopify.ErrCartNotFound) {
		logger.Warn("Remote cart expired mid-sync, recreating", map[string]interface{}{
			"remote_cart_id": cartID,
		})
		s.clearRemoteRefs(ctx)
		_, err = s.createRemoteFromLocal(ctx)
		return true, err
	}
	if remote != nil {
		s.applyRemoteCart(ctx, remote)
	}
	if err != nil {
		logger.Error("Cart sync push failed", err, map[string]interface{}{
			"remote_cart_id": cartID,
		})
		return false, err
	}
	return false, nil
}
