package controller

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/valorin/storefront-backend/internal/app/model"
	"github.com/valorin/storefront-backend/internal/app/service"
)

type stubCatalogService struct {
	products    []model.Product
	collections []model.Collection
	err         error
}

func (s *stubCatalogService) ListProducts(ctx context.Context, first int, query string) ([]model.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

func (s *stubCatalogService) GetProductByHandle(ctx context.Context, handle string) (*model.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.products {
		if s.products[i].Handle == handle {
			return &s.products[i], nil
		}
	}
	return nil, service.ErrProductNotFound
}

func (s *stubCatalogService) ListCollections(ctx context.Context, first int) ([]model.Collection, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.collections, nil
}

func setupCatalogControllerTest(svc service.CatalogService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewCatalogController(svc)
	router := gin.New()
	router.GET("/products", ctrl.GetProducts)
	router.GET("/products/:handle", ctrl.GetProductByHandle)
	router.GET("/collections", ctrl.GetCollections)
	return router
}

func TestCatalogController_GetProducts(t *testing.T) {
	router := setupCatalogControllerTest(&stubCatalogService{
		products: []model.Product{
			{ID: "gid://shopify/Product/1", Title: "Linen Shirt", Handle: "linen-shirt"},
		},
	})

	w := doJSON(t, router, http.MethodGet, "/products", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["count"])
}

func TestCatalogController_GetProducts_InvalidPageSize(t *testing.T) {
	router := setupCatalogControllerTest(&stubCatalogService{})

	w := doJSON(t, router, http.MethodGet, "/products?first=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/products?first=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogController_GetProductByHandle_NotFound(t *testing.T) {
	router := setupCatalogControllerTest(&stubCatalogService{})

	w := doJSON(t, router, http.MethodGet, "/products/no-such-handle", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CATALOG_PRODUCT_NOT_FOUND", decodeBody(t, w)["error"])
}

func TestCatalogController_GetProductByHandle_Found(t *testing.T) {
	router := setupCatalogControllerTest(&stubCatalogService{
		products: []model.Product{
			{ID: "gid://shopify/Product/1", Title: "Linen Shirt", Handle: "linen-shirt"},
		},
	})

	w := doJSON(t, router, http.MethodGet, "/products/linen-shirt", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCatalogController_GetCollections(t *testing.T) {
	router := setupCatalogControllerTest(&stubCatalogService{
		collections: []model.Collection{
			{ID: "gid://shopify/Collection/1", Title: "Summer", Handle: "summer"},
		},
	})

	w := doJSON(t, router, http.MethodGet, "/collections", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["count"])
}
