package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/valorin/storefront-backend/internal/app/service"
	apperrors "github.com/valorin/storefront-backend/internal/errors"
	"github.com/valorin/storefront-backend/internal/middleware"
	"github.com/valorin/storefront-backend/pkg/shopify"
)

const defaultPageSize = 20

type CatalogController struct {
	catalog service.CatalogService
}

func NewCatalogController(catalog service.CatalogService) *CatalogController {
	return &CatalogController{catalog: catalog}
}

func respondCatalogError(c *gin.Context, err error) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.CatalogProductNotFound, "Product not found")
	case errors.Is(err, shopify.ErrBackendUnavailable):
		apperrors.ServiceUnavailable(c, "")
	default:
		log.Error("Catalog fetch failed", err, nil)
		apperrors.BadGateway(c, apperrors.CatalogFetchFailed, "Failed to load products")
	}
}

// GetProducts lists products, optionally filtered by a search query
// GET /api/v1/products?first=20&query=...
func (ctrl *CatalogController) GetProducts(c *gin.Context) {
	first, err := strconv.Atoi(c.DefaultQuery("first", strconv.Itoa(defaultPageSize)))
	if err != nil || first <= 0 || first > 100 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "first must be between 1 and 100")
		return
	}

	products, err := ctrl.catalog.ListProducts(c.Request.Context(), first, c.Query("query"))
	if err != nil {
		respondCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProductByHandle returns a single product
// GET /api/v1/products/:handle
func (ctrl *CatalogController) GetProductByHandle(c *gin.Context) {
	handle := c.Param("handle")
	if handle == "" {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "handle is required")
		return
	}

	product, err := ctrl.catalog.GetProductByHandle(c.Request.Context(), handle)
	if err != nil {
		respondCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// GetCollections lists collections
// GET /api/v1/collections?first=20
func (ctrl *CatalogController) GetCollections(c *gin.Context) {
	first, err := strconv.Atoi(c.DefaultQuery("first", strconv.Itoa(defaultPageSize)))
	if err != nil || first <= 0 || first > 100 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "first must be between 1 and 100")
		return
	}

	collections, err := ctrl.catalog.ListCollections(c.Request.Context(), first)
	if err != nil {
		respondCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"collections": collections,
		"count":       len(collections),
	})
}
