package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/valorin/storefront-backend/internal/app/model"
	"github.com/valorin/storefront-backend/internal/app/store"
	apperrors "github.com/valorin/storefront-backend/internal/errors"
	"github.com/valorin/storefront-backend/internal/middleware"
)

type WishlistController struct {
	wishlist *store.WishlistStore
}

func NewWishlistController(wishlist *store.WishlistStore) *WishlistController {
	return &WishlistController{wishlist: wishlist}
}

type AddWishlistItemRequest struct {
	ProductID string      `json:"product_id" binding:"required"`
	Title     string      `json:"title" binding:"required"`
	Handle    string      `json:"handle"`
	ImageURL  string      `json:"image_url"`
	Price     model.Money `json:"price"`
}

// GetWishlist returns the saved products
// GET /api/v1/wishlist
func (ctrl *WishlistController) GetWishlist(c *gin.Context) {
	items := ctrl.wishlist.List()
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// AddToWishlist saves a product
// POST /api/v1/wishlist
func (ctrl *WishlistController) AddToWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AddWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid wishlist request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	item := model.WishlistItem{
		ProductID: req.ProductID,
		Title:     req.Title,
		Handle:    req.Handle,
		ImageURL:  req.ImageURL,
		Price:     req.Price,
		AddedAt:   time.Now(),
	}

	if err := ctrl.wishlist.Add(c.Request.Context(), item); err != nil {
		if errors.Is(err, store.ErrWishlistItemExists) {
			apperrors.Conflict(c, apperrors.WishlistDuplicate, "Product is already in your wishlist")
			return
		}
		log.Error("Failed to add wishlist item", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Product added to wishlist", map[string]interface{}{
		"product_id": req.ProductID,
	})
	c.JSON(http.StatusCreated, gin.H{"items": ctrl.wishlist.List()})
}

// RemoveFromWishlist deletes a saved product; unknown products are a no-op
// DELETE /api/v1/wishlist?product_id=...
func (ctrl *WishlistController) RemoveFromWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID := c.Query("product_id")
	if productID == "" {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "product_id is required")
		return
	}

	ctrl.wishlist.Remove(c.Request.Context(), productID)

	log.Info("Product removed from wishlist", map[string]interface{}{
		"product_id": productID,
	})
	c.JSON(http.StatusOK, gin.H{"items": ctrl.wishlist.List()})
}

// ClearWishlist removes every saved product
// DELETE /api/v1/wishlist/all
func (ctrl *WishlistController) ClearWishlist(c *gin.Context) {
	ctrl.wishlist.Clear(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"items": []model.WishlistItem{}})
}
