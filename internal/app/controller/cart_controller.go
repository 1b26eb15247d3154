package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/valorin/storefront-backend/internal/app/model"
	"github.com/valorin/storefront-backend/internal/app/store"
	apperrors "github.com/valorin/storefront-backend/internal/errors"
	"github.com/valorin/storefront-backend/internal/middleware"
	"github.com/valorin/storefront-backend/pkg/shopify"
)

type CartController struct {
	cart *store.CartStore
}

func NewCartController(cart *store.CartStore) *CartController {
	return &CartController{cart: cart}
}

type AddItemRequest struct {
	VariantID       string                 `json:"variant_id" binding:"required"`
	Quantity        int                    `json:"quantity" binding:"required,gt=0"`
	Product         model.ProductRef       `json:"product"`
	SelectedOptions []model.SelectedOption `json:"selected_options"`
	UnitPrice       model.Money            `json:"unit_price"`
}

type UpdateQuantityRequest struct {
	VariantID string `json:"variant_id" binding:"required"`
	// Quantity is a pointer so that an explicit zero (remove) survives
	// required-field validation.
	Quantity *int `json:"quantity" binding:"required"`
}

type SetOpenRequest struct {
	Open *bool `json:"open" binding:"required"`
}

// cartResponse renders the cart snapshot with derived totals for the UI.
func cartResponse(snap model.CartState) gin.H {
	total, currency := snap.TotalPrice()
	lineItems := snap.LineItems
	if lineItems == nil {
		lineItems = []model.LineItem{}
	}
	return gin.H{
		"line_items":     lineItems,
		"remote_cart_id": snap.RemoteCartID,
		"checkout_url":   snap.CheckoutURL,
		"total_items":    snap.TotalItems(),
		"total_price":    total,
		"currency":       currency,
		"is_open":        snap.IsOpen,
		"is_loading":     snap.IsLoading,
		"is_syncing":     snap.IsSyncing,
	}
}

// respondCartError maps cart core errors to user-facing responses. Gateway
// failures never blank out the cart: the local optimistic state is retained
// and the UI keeps rendering it.
func respondCartError(c *gin.Context, err error) {
	log := middleware.GetLoggerFromContext(c)

	var rejected *shopify.LineRejectedError
	switch {
	case errors.Is(err, store.ErrInvalidLineItem), errors.Is(err, store.ErrInvalidQuantity):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
	case errors.Is(err, store.ErrLineItemNotFound):
		apperrors.NotFound(c, apperrors.CartLineNotFound, "Item is not in your cart")
	case errors.As(err, &rejected):
		log.Warn("Storefront rejected cart lines", map[string]interface{}{
			"rejections": len(rejected.Rejections),
		})
		c.JSON(http.StatusConflict, gin.H{
			"error":      apperrors.CartLinesRejected,
			"message":    "Some items could not be added to the cart",
			"rejections": rejected.Rejections,
		})
	case errors.Is(err, shopify.ErrBackendUnavailable):
		log.Warn("Storefront backend unavailable", nil)
		apperrors.ServiceUnavailable(c, "")
	default:
		log.Error("Cart operation failed", err, nil)
		apperrors.BadGateway(c, apperrors.CartSyncFailed, "")
	}
}

// GetCart returns the current cart snapshot
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, cartResponse(ctrl.cart.Snapshot()))
}

// AddItem adds an item to the cart
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add item request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	item := model.LineItem{
		VariantID:       req.VariantID,
		Product:         req.Product,
		SelectedOptions: req.SelectedOptions,
		UnitPrice:       req.UnitPrice,
		Quantity:        req.Quantity,
	}

	if err := ctrl.cart.AddItem(c.Request.Context(), item); err != nil {
		respondCartError(c, err)
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"variant_id": req.VariantID,
		"quantity":   req.Quantity,
	})
	c.JSON(http.StatusCreated, cartResponse(ctrl.cart.Snapshot()))
}

// UpdateQuantity updates a line item's quantity; zero removes it
// PUT /api/v1/cart/items
func (ctrl *CartController) UpdateQuantity(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update quantity request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	if err := ctrl.cart.UpdateQuantity(c.Request.Context(), req.VariantID, *req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}

	log.Info("Cart item quantity updated", map[string]interface{}{
		"variant_id": req.VariantID,
		"quantity":   *req.Quantity,
	})
	c.JSON(http.StatusOK, cartResponse(ctrl.cart.Snapshot()))
}

// RemoveItem removes a line item
// DELETE /api/v1/cart/items?variant_id=...
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	variantID := c.Query("variant_id")
	if variantID == "" {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "variant_id is required")
		return
	}

	if err := ctrl.cart.RemoveItem(c.Request.Context(), variantID); err != nil {
		respondCartError(c, err)
		return
	}

	log.Info("Cart item removed", map[string]interface{}{
		"variant_id": variantID,
	})
	c.JSON(http.StatusOK, cartResponse(ctrl.cart.Snapshot()))
}

// ClearCart empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := ctrl.cart.Clear(c.Request.Context()); err != nil {
		respondCartError(c, err)
		return
	}

	log.Info("Cart cleared", nil)
	c.JSON(http.StatusOK, cartResponse(ctrl.cart.Snapshot()))
}

// SetOpen sets drawer visibility; opening triggers a background sync
// PUT /api/v1/cart/open
func (ctrl *CartController) SetOpen(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SetOpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	ctrl.cart.SetOpen(*req.Open)

	log.Debug("Cart drawer visibility changed", map[string]interface{}{
		"open": *req.Open,
	})
	c.JSON(http.StatusOK, cartResponse(ctrl.cart.Snapshot()))
}

// SyncCart runs reconciliation against the remote cart
// POST /api/v1/cart/sync
func (ctrl *CartController) SyncCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := ctrl.cart.Sync(c.Request.Context()); err != nil {
		respondCartError(c, err)
		return
	}

	log.Info("Cart synced", nil)
	c.JSON(http.StatusOK, cartResponse(ctrl.cart.Snapshot()))
}

// GetCheckoutURL returns the checkout redirect target
// GET /api/v1/cart/checkout-url
func (ctrl *CartController) GetCheckoutURL(c *gin.Context) {
	url := ctrl.cart.CheckoutURL()
	if url == "" {
		apperrors.NotFound(c, apperrors.CartNoCheckout, "Cart has not been synced yet")
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout_url": url})
}
