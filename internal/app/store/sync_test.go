package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valorin/storefront-backend/internal/app/model"
	"github.com/valorin/storefront-backend/internal/persistence"
	"github.com/valorin/storefront-backend/pkg/shopify"
)

func seedLocalCart(t *testing.T, items ...model.LineItem) (*CartStore, *fakeGateway) {
	t.Helper()
	mem := persistence.NewMemoryStore()
	require.NoError(t, mem.SaveCart(context.Background(), model.CartState{LineItems: items}))

	gateway := newFakeGateway()
	cartStore := NewCartStore(gateway, mem)
	require.NoError(t, cartStore.Restore(context.Background()))
	return cartStore, gateway
}

func TestCartStore_Sync_EmptyCartCreatesNothing(t *testing.T) {
	cartStore, gateway := seedLocalCart(t)

	require.NoError(t, cartStore.Sync(context.Background()))

	assert.Equal(t, 0, gateway.createCalls)
	assert.Empty(t, cartStore.Snapshot().RemoteCartID)
}

func TestCartStore_Sync_CreatesRemoteCartFromLocalLines(t *testing.T) {
	cartStore, gateway := seedLocalCart(t,
		testLineItem("gid://shopify/ProductVariant/1", 2),
		testLineItem("gid://shopify/ProductVariant/2", 1),
	)

	require.NoError(t, cartStore.Sync(context.Background()))

	snap := cartStore.Snapshot()
	assert.NotEmpty(t, snap.RemoteCartID)
	assert.NotEmpty(t, snap.CheckoutURL)
	for _, item := range snap.LineItems {
		assert.NotEmpty(t, item.RemoteLineID, "variant %s", item.VariantID)
	}
	assert.Len(t, gateway.remoteLines(), 2)
}

func TestCartStore_Sync_ConcurrentCallsCreateOneCart(t *testing.T) {
	cartStore, gateway := seedLocalCart(t, testLineItem("gid://shopify/ProductVariant/1", 1))
	gateway.createDelay = 50 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, cartStore.Sync(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, gateway.createCalls)
}

func TestCartStore_Sync_RecreatesExpiredCart(t *testing.T) {
	cartStore, gateway := seedLocalCart(t)
	require.NoError(t, cartStore.AddItem(context.Background(), testLineItem("gid://shopify/ProductVariant/1", 3)))

	oldCartID := cartStore.Snapshot().RemoteCartID
	require.NotEmpty(t, oldCartID)
	gateway.dropCart()

	require.NoError(t, cartStore.Sync(context.Background()))

	snap := cartStore.Snapshot()
	assert.NotEmpty(t, snap.RemoteCartID)
	assert.NotEqual(t, oldCartID, snap.RemoteCartID)
	require.Len(t, snap.LineItems, 1)
	assert.Equal(t, 3, snap.LineItems[0].Quantity)

	remote := gateway.remoteLines()
	require.Len(t, remote, 1)
	assert.Equal(t, 3, remote[0].Quantity)
}

func TestCartStore_Sync_PushesLocalDiff(t *testing.T) {
	cartStore, gateway := seedLocalCart(t)
	require.NoError(t, cartStore.AddItem(context.Background(), testLineItem("gid://shopify/ProductVariant/1", 2)))
	require.NoError(t, cartStore.AddItem(context.Background(), testLineItem("gid://shopify/ProductVariant/2", 1)))

	// Diverge the remote cart behind the store's back: wrong quantity on one
	// line, an extra line the user never asked for.
	gateway.mu.Lock()
	for i := range gateway.lines {
		if gateway.lines[i].VariantID == "gid://shopify/ProductVariant/1" {
			gateway.lines[i].Quantity = 9
		}
	}
	gateway.lines = append(gateway.lines, shopify.RemoteLine{
		ID:        "gid://shopify/CartLine/999",
		VariantID: "gid://shopify/ProductVariant/999",
		Quantity:  1,
	})
	gateway.mu.Unlock()

	require.NoError(t, cartStore.Sync(context.Background()))

	// Local intent wins: quantities restored, the foreign line removed.
	remote := gateway.remoteLines()
	require.Len(t, remote, 2)
	byVariant := make(map[string]int, len(remote))
	for _, line := range remote {
		byVariant[line.VariantID] = line.Quantity
	}
	assert.Equal(t, 2, byVariant["gid://shopify/ProductVariant/1"])
	assert.Equal(t, 1, byVariant["gid://shopify/ProductVariant/2"])
}

func TestCartStore_Sync_NetworkErrorLeavesStateUntouched(t *testing.T) {
	cartStore, gateway := seedLocalCart(t, testLineItem("gid://shopify/ProductVariant/1", 2))
	gateway.failWith = fmt.Errorf("request failed: %w", shopify.ErrNetwork)

	err := cartStore.Sync(context.Background())
	assert.ErrorIs(t, err, shopify.ErrNetwork)

	snap := cartStore.Snapshot()
	require.Len(t, snap.LineItems, 1)
	assert.Equal(t, 2, snap.LineItems[0].Quantity)
	assert.False(t, snap.IsSyncing)
}

func TestCartStore_SetOpen_TriggersBackgroundSync(t *testing.T) {
	cartStore, gateway := seedLocalCart(t, testLineItem("gid://shopify/ProductVariant/1", 1))

	cartStore.SetOpen(true)

	require.Eventually(t, func() bool {
		return cartStore.Snapshot().RemoteCartID != ""
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, gateway.createCount())
	assert.True(t, cartStore.Snapshot().IsOpen)

	// Closing and reopening syncs again but reuses the existing cart.
	cartStore.SetOpen(false)
	cartStore.SetOpen(true)
	require.Eventually(t, func() bool {
		gateway.mu.Lock()
		defer gateway.mu.Unlock()
		return gateway.getCalls >= 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, gateway.createCount())
}
