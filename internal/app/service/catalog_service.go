package service

import (
	"context"
	"errors"

	"github.com/valorin/storefront-backend/internal/app/model"
	"github.com/valorin/storefront-backend/pkg/logger"
	"github.com/valorin/storefront-backend/pkg/shopify"
)

var ErrProductNotFound = errors.New("product not found")

// Catalog is the read-only slice of the storefront gateway the catalog
// service needs.
type Catalog interface {
	ListProducts(ctx context.Context, first int, query string) ([]shopify.ProductNode, error)
	GetProductByHandle(ctx context.Context, handle string) (*shopify.ProductNode, error)
	ListCollections(ctx context.Context, first int) ([]shopify.CollectionNode, error)
}

type CatalogService interface {
	ListProducts(ctx context.Context, first int, query string) ([]model.Product, error)
	GetProductByHandle(ctx context.Context, handle string) (*model.Product, error)
	ListCollections(ctx context.Context, first int) ([]model.Collection, error)
}

type catalogService struct {
	catalog Catalog
}

func NewCatalogService(catalog Catalog) CatalogService {
	return &catalogService{catalog: catalog}
}

func (s *catalogService) ListProducts(ctx context.Context, first int, query string) ([]model.Product, error) {
	logger.Debug("Fetching products", map[string]interface{}{
		"first": first,
		"query": query,
	})

	nodes, err := s.catalog.ListProducts(ctx, first, query)
	if err != nil {
		logger.Error("Failed to fetch products", err, map[string]interface{}{
			"query": query,
		})
		return nil, err
	}

	products := make([]model.Product, 0, len(nodes))
	for i := range nodes {
		products = append(products, flattenProduct(&nodes[i]))
	}

	logger.Info("Products fetched successfully", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (s *catalogService) GetProductByHandle(ctx context.Context, handle string) (*model.Product, error) {
	logger.Debug("Fetching product by handle", map[string]interface{}{
		"handle": handle,
	})

	node, err := s.catalog.GetProductByHandle(ctx, handle)
	if err != nil {
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"handle": handle,
		})
		return nil, err
	}
	if node == nil {
		logger.Warn("Product not found", map[string]interface{}{
			"handle": handle,
		})
		return nil, ErrProductNotFound
	}

	product := flattenProduct(node)
	return &product, nil
}

func (s *catalogService) ListCollections(ctx context.Context, first int) ([]model.Collection, error) {
	nodes, err := s.catalog.ListCollections(ctx, first)
	if err != nil {
		logger.Error("Failed to fetch collections", err, nil)
		return nil, err
	}

	collections := make([]model.Collection, 0, len(nodes))
	for _, node := range nodes {
		collection := model.Collection{
			ID:     node.ID,
			Title:  node.Title,
			Handle: node.Handle,
		}
		if node.Description != nil {
			collection.Description = *node.Description
		}
		if node.Image != nil {
			collection.ImageURL = node.Image.URL
		}
		collections = append(collections, collection)
	}
	return collections, nil
}

func flattenProduct(node *shopify.ProductNode) model.Product {
	product := model.Product{
		ID:          node.ID,
		Title:       node.Title,
		Description: node.Description,
		Handle:      node.Handle,
		ProductType: node.ProductType,
		Tags:        node.Tags,
		MinPrice:    toMoney(node.PriceRange.MinVariantPrice),
	}
	if node.CompareAtPriceRange != nil {
		compareAt := toMoney(node.CompareAtPriceRange.MinVariantPrice)
		product.CompareAtMinPrice = &compareAt
	}
	for _, edge := range node.Images.Edges {
		image := model.ProductImage{URL: edge.Node.URL}
		if edge.Node.AltText != nil {
			image.AltText = *edge.Node.AltText
		}
		product.Images = append(product.Images, image)
	}
	for _, edge := range node.Variants.Edges {
		variant := model.ProductVariant{
			ID:               edge.Node.ID,
			Title:            edge.Node.Title,
			Price:            toMoney(edge.Node.Price),
			AvailableForSale: edge.Node.AvailableForSale,
		}
		if edge.Node.CompareAtPrice != nil {
			compareAt := toMoney(*edge.Node.CompareAtPrice)
			variant.CompareAtPrice = &compareAt
		}
		for _, opt := range edge.Node.SelectedOptions {
			variant.SelectedOptions = append(variant.SelectedOptions, model.SelectedOption{
				Name:  opt.Name,
				Value: opt.Value,
			})
		}
		product.Variants = append(product.Variants, variant)
	}
	for _, opt := range node.Options {
		product.Options = append(product.Options, model.ProductOption{
			Name:   opt.Name,
			Values: opt.Values,
		})
	}
	return product
}

func toMoney(p shopify.PriceNode) model.Money {
	return model.Money{
		Amount:       p.Amount,
		CurrencyCode: p.CurrencyCode,
	}
}
