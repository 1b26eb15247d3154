package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valorin/storefront-backend/pkg/shopify"
)

type fakeCatalog struct {
	products    []shopify.ProductNode
	collections []shopify.CollectionNode
	err         error
}

func (f *fakeCatalog) ListProducts(ctx context.Context, first int, query string) ([]shopify.ProductNode, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeCatalog) GetProductByHandle(ctx context.Context, handle string) (*shopify.ProductNode, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.products {
		if f.products[i].Handle == handle {
			return &f.products[i], nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) ListCollections(ctx context.Context, first int) ([]shopify.CollectionNode, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.collections, nil
}

func testProductNode() shopify.ProductNode {
	altText := "Front view"
	node := shopify.ProductNode{
		ID:          "gid://shopify/Product/1",
		Title:       "Linen Shirt",
		Description: "A plain linen shirt",
		Handle:      "linen-shirt",
		ProductType: "Shirts",
		Tags:        []string{"linen", "summer"},
	}
	node.PriceRange.MinVariantPrice = shopify.PriceNode{Amount: "49.00", CurrencyCode: "EUR"}
	node.Images.Edges = []struct {
		Node shopify.ImageNode `json:"node"`
	}{
		{Node: shopify.ImageNode{URL: "https://cdn.example/shirt.jpg", AltText: &altText}},
	}
	node.Variants.Edges = []struct {
		Node shopify.VariantNode `json:"node"`
	}{
		{Node: shopify.VariantNode{
			ID:               "gid://shopify/ProductVariant/11",
			Title:            "M",
			Price:            shopify.PriceNode{Amount: "49.00", CurrencyCode: "EUR"},
			AvailableForSale: true,
			SelectedOptions: []shopify.SelectedOptionNode{
				{Name: "Size", Value: "M"},
			},
		}},
	}
	node.Options = []shopify.ProductOptionNode{
		{Name: "Size", Values: []string{"S", "M", "L"}},
	}
	return node
}

func TestCatalogService_ListProducts_FlattensNodes(t *testing.T) {
	svc := NewCatalogService(&fakeCatalog{products: []shopify.ProductNode{testProductNode()}})

	products, err := svc.ListProducts(context.Background(), 20, "")
	require.NoError(t, err)
	require.Len(t, products, 1)

	product := products[0]
	assert.Equal(t, "Linen Shirt", product.Title)
	assert.Equal(t, "linen-shirt", product.Handle)
	assert.Equal(t, "49.00", product.MinPrice.Amount)
	assert.Equal(t, "EUR", product.MinPrice.CurrencyCode)

	require.Len(t, product.Images, 1)
	assert.Equal(t, "Front view", product.Images[0].AltText)

	require.Len(t, product.Variants, 1)
	assert.Equal(t, "gid://shopify/ProductVariant/11", product.Variants[0].ID)
	assert.True(t, product.Variants[0].AvailableForSale)
	require.Len(t, product.Variants[0].SelectedOptions, 1)
	assert.Equal(t, "Size", product.Variants[0].SelectedOptions[0].Name)

	require.Len(t, product.Options, 1)
	assert.Equal(t, []string{"S", "M", "L"}, product.Options[0].Values)
}

func TestCatalogService_GetProductByHandle_NotFound(t *testing.T) {
	svc := NewCatalogService(&fakeCatalog{products: []shopify.ProductNode{testProductNode()}})

	_, err := svc.GetProductByHandle(context.Background(), "no-such-handle")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogService_GetProductByHandle_Found(t *testing.T) {
	svc := NewCatalogService(&fakeCatalog{products: []shopify.ProductNode{testProductNode()}})

	product, err := svc.GetProductByHandle(context.Background(), "linen-shirt")
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Product/1", product.ID)
}

func TestCatalogService_ListProducts_PropagatesGatewayError(t *testing.T) {
	gatewayErr := errors.New("boom")
	svc := NewCatalogService(&fakeCatalog{err: gatewayErr})

	_, err := svc.ListProducts(context.Background(), 20, "")
	assert.ErrorIs(t, err, gatewayErr)
}

func TestCatalogService_ListCollections_Flattens(t *testing.T) {
	description := "Seasonal picks"
	svc := NewCatalogService(&fakeCatalog{collections: []shopify.CollectionNode{
		{
			ID:          "gid://shopify/Collection/1",
			Title:       "Summer",
			Handle:      "summer",
			Description: &description,
			Image:       &shopify.ImageNode{URL: "https://cdn.example/summer.jpg"},
		},
		{
			ID:     "gid://shopify/Collection/2",
			Title:  "Basics",
			Handle: "basics",
		},
	}})

	collections, err := svc.ListCollections(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, collections, 2)
	assert.Equal(t, "Seasonal picks", collections[0].Description)
	assert.Equal(t, "https://cdn.example/summer.jpg", collections[0].ImageURL)
	assert.Empty(t, collections[1].Description)
}
