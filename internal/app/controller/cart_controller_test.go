package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valorin/storefront-backend/internal/app/store"
	"github.com/valorin/storefront-backend/internal/persistence"
	"github.com/valorin/storefront-backend/pkg/shopify"
)

// stubGateway is an in-memory stand-in for the storefront backend.
type stubGateway struct {
	mu      sync.Mutex
	cartID  string
	nextID  int
	lines   []shopify.RemoteLine
	failErr error
}

func (g *stubGateway) snapshot() *shopify.RemoteCart {
	lines := make([]shopify.RemoteLine, len(g.lines))
	copy(lines, g.lines)
	return &shopify.RemoteCart{
		ID:          g.cartID,
		CheckoutURL: "https://shop.example/checkout/" + g.cartID,
		Lines:       lines,
	}
}

func (g *stubGateway) CreateCart(ctx context.Context, lines []shopify.CartLineInput) (*shopify.RemoteCart, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return nil, g.failErr
	}
	g.nextID++
	g.cartID = fmt.Sprintf("gid://shopify/Cart/%d", g.nextID)
	g.lines = nil
	for _, line := range lines {
		g.nextID++
		g.lines = append(g.lines, shopify.RemoteLine{
			ID:        fmt.Sprintf("gid://shopify/CartLine/%d", g.nextID),
			VariantID: line.MerchandiseID,
			Quantity:  line.Quantity,
		})
	}
	return g.snapshot(), nil
}

func (g *stubGateway) AddLines(ctx context.Context, cartID string, lines []shopify.CartLineInput) (*shopify.RemoteCart, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return nil, g.failErr
	}
	for _, line := range lines {
		g.nextID++
		g.lines = append(g.lines, shopify.RemoteLine{
			ID:        fmt.Sprintf("gid://shopify/CartLine/%d", g.nextID),
			VariantID: line.MerchandiseID,
			Quantity:  line.Quantity,
		})
	}
	return g.snapshot(), nil
}

func (g *stubGateway) UpdateLines(ctx context.Context, cartID string, updates []shopify.LineUpdateInput) (*shopify.RemoteCart, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return nil, g.failErr
	}
	for _, update := range updates {
		for i := range g.lines {
			if g.lines[i].ID == update.ID {
				g.lines[i].Quantity = update.Quantity
			}
		}
	}
	return g.snapshot(), nil
}

func (g *stubGateway) RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*shopify.RemoteCart, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return nil, g.failErr
	}
	removed := make(map[string]bool, len(lineIDs))
	for _, id := range lineIDs {
		removed[id] = true
	}
	kept := g.lines[:0]
	for _, line := range g.lines {
		if !removed[line.ID] {
			kept = append(kept, line)
		}
	}
	g.lines = kept
	return g.snapshot(), nil
}

func (g *stubGateway) GetCart(ctx context.Context, cartID string) (*shopify.RemoteCart, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return nil, g.failErr
	}
	if cartID != g.cartID {
		return nil, shopify.ErrCartNotFound
	}
	return g.snapshot(), nil
}

func setupCartControllerTest(t *testing.T) (*gin.Engine, *store.CartStore, *stubGateway) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gateway := &stubGateway{}
	cartStore := store.NewCartStore(gateway, persistence.NewMemoryStore())
	require.NoError(t, cartStore.Restore(context.Background()))

	ctrl := NewCartController(cartStore)
	router := gin.New()
	router.GET("/cart", ctrl.GetCart)
	router.DELETE("/cart", ctrl.ClearCart)
	router.POST("/cart/items", ctrl.AddItem)
	router.PUT("/cart/items", ctrl.UpdateQuantity)
	router.DELETE("/cart/items", ctrl.RemoveItem)
	router.PUT("/cart/open", ctrl.SetOpen)
	router.POST("/cart/sync", ctrl.SyncCart)
	router.GET("/cart/checkout-url", ctrl.GetCheckoutURL)

	return router, cartStore, gateway
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func addItemBody(variantID string, quantity int) map[string]interface{} {
	return map[string]interface{}{
		"variant_id": variantID,
		"quantity":   quantity,
		"product": map[string]interface{}{
			"product_id": "gid://shopify/Product/1",
			"title":      "Test Product",
			"handle":     "test-product",
		},
		"unit_price": map[string]interface{}{
			"amount":        "25.00",
			"currency_code": "EUR",
		},
	}
}

func TestCartController_GetCart_Empty(t *testing.T) {
	router, _, _ := setupCartControllerTest(t)

	w := doJSON(t, router, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, float64(0), response["total_items"])
	assert.Empty(t, response["line_items"])
}

func TestCartController_AddItem_Success(t *testing.T) {
	router, _, _ := setupCartControllerTest(t)

	w := doJSON(t, router, http.MethodPost, "/cart/items", addItemBody("gid://shopify/ProductVariant/1", 2))
	assert.Equal(t, http.StatusCreated, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, float64(2), response["total_items"])
	assert.NotEmpty(t, response["remote_cart_id"])
	assert.NotEmpty(t, response["checkout_url"])
	assert.Equal(t, false, response["is_loading"])
}

func TestCartController_AddItem_InvalidBody(t *testing.T) {
	router, _, _ := setupCartControllerTest(t)

	w := doJSON(t, router, http.MethodPost, "/cart/items", map[string]interface{}{"quantity": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, "VALIDATION_INVALID_INPUT", response["error"])
}

func TestCartController_AddItem_GatewayDown(t *testing.T) {
	router, _, gateway := setupCartControllerTest(t)
	gateway.failErr = fmt.Errorf("request failed: %w", shopify.ErrNetwork)

	w := doJSON(t, router, http.MethodPost, "/cart/items", addItemBody("gid://shopify/ProductVariant/1", 2))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, "CART_SYNC_FAILED", response["error"])

	// The optimistic local update survives the failed mirror.
	getResp := decodeBody(t, doJSON(t, router, http.MethodGet, "/cart", nil))
	assert.Equal(t, float64(2), getResp["total_items"])
}

func TestCartController_UpdateQuantity_Success(t *testing.T) {
	router, _, _ := setupCartControllerTest(t)
	doJSON(t, router, http.MethodPost, "/cart/items", addItemBody("gid://shopify/ProductVariant/1", 2))

	w := doJSON(t, router, http.MethodPut, "/cart/items", map[string]interface{}{
		"variant_id": "gid://shopify/ProductVariant/1",
		"quantity":   5,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), decodeBody(t, w)["total_items"])
}

func TestCartController_UpdateQuantity_ZeroRemoves(t *testing.T) {
	router, _, _ := setupCartControllerTest(t)
	doJSON(t, router, http.MethodPost, "/cart/items", addItemBody("gid://shopify/ProductVariant/1", 2))

	w := doJSON(t, router, http.MethodPut, "/cart/items", map[string]interface{}{
		"variant_id": "gid://shopify/ProductVariant/1",
		"quantity":   0,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, float64(0), response["total_items"])
	assert.Empty(t, response["line_items"])
}

func TestCartController_UpdateQuantity_NotFound(t *testing.T) {
	router, _, _ := setupCartControllerTest(t)

	w := doJSON(t, router, http.MethodPut, "/cart/items", map[string]interface{}{
		"variant_id": "gid://shopify/ProductVariant/404",
		"quantity":   3,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CART_LINE_NOT_FOUND", decodeBody(t, w)["error"])
}

func TestCartController_RemoveItem_RequiresVariantID(t *testing.T) {
	router, _, _ := setupCartControllerTest(t)

	w := doJSON(t, router, http.MethodDelete, "/cart/items", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_INVALID_ID", decodeBody(t, w)["error"])
}

func TestCartController_RemoveItem_Success(t *testing.T) {
	router, _, _ := setupCartControllerTest(t)
	doJSON(t, router, http.MethodPost, "/cart/items", addItemBody("gid://shopify/ProductVariant/1", 2))

	w := doJSON(t, router, http.MethodDelete, "/cart/items?variant_id=gid://shopify/ProductVariant/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeBody(t, w)["total_items"])
}

func TestCartController_ClearCart(t *testing.T) {
	router, _, _ := setupCartControllerTest(t)
	doJSON(t, router, http.MethodPost, "/cart/items", addItemBody("gid://shopify/ProductVariant/1", 2))
	doJSON(t, router, http.MethodPost, "/cart/items", addItemBody("gid://shopify/ProductVariant/2", 1))

	w := doJSON(t, router, http.MethodDelete, "/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, float64(0), response["total_items"])
	// The remote cart is kept for reuse.
	assert.NotEmpty(t, response["remote_cart_id"])
}

func TestCartController_SyncCart_BackendUnavailable(t *testing.T) {
	router, _, gateway := setupCartControllerTest(t)
	doJSON(t, router, http.MethodPost, "/cart/items", addItemBody("gid://shopify/ProductVariant/1", 2))
	gateway.failErr = shopify.ErrBackendUnavailable

	w := doJSON(t, router, http.MethodPost, "/cart/sync", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "BACKEND_UNAVAILABLE", decodeBody(t, w)["error"])
}

func TestCartController_GetCheckoutURL(t *testing.T) {
	router, _, _ := setupCartControllerTest(t)

	w := doJSON(t, router, http.MethodGet, "/cart/checkout-url", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	doJSON(t, router, http.MethodPost, "/cart/items", addItemBody("gid://shopify/ProductVariant/1", 1))

	w = doJSON(t, router, http.MethodGet, "/cart/checkout-url", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["checkout_url"])
}

func TestCartController_SetOpen(t *testing.T) {
	router, _, _ := setupCartControllerTest(t)

	w := doJSON(t, router, http.MethodPut, "/cart/open", map[string]interface{}{"open": true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["is_open"])

	w = doJSON(t, router, http.MethodPut, "/cart/open", map[string]interface{}{"open": false})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["is_open"])
}
