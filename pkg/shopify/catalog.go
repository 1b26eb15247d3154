package shopify

import (
	"context"
	"fmt"

	"github.com/valorin/storefront-backend/pkg/logger"
)

// Wire shapes for catalog queries. These mirror the Storefront API's
// edges/node structure; the catalog service flattens them into model types.

type PriceNode struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type SelectedOptionNode struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type VariantNode struct {
	ID               string               `json:"id"`
	Title            string               `json:"title"`
	Price            PriceNode            `json:"price"`
	CompareAtPrice   *PriceNode           `json:"compareAtPrice"`
	AvailableForSale bool                 `json:"availableForSale"`
	SelectedOptions  []SelectedOptionNode `json:"selectedOptions"`
}

type ImageNode struct {
	URL     string  `json:"url"`
	AltText *string `json:"altText"`
}

type ProductOptionNode struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type ProductNode struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Handle      string   `json:"handle"`
	ProductType string   `json:"productType"`
	Tags        []string `json:"tags"`
	PriceRange  struct {
		MinVariantPrice PriceNode `json:"minVariantPrice"`
	} `json:"priceRange"`
	CompareAtPriceRange *struct {
		MinVariantPrice PriceNode `json:"minVariantPrice"`
	} `json:"compareAtPriceRange"`
	Images struct {
		Edges []struct {
			Node ImageNode `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []struct {
			Node VariantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	Options []ProductOptionNode `json:"options"`
}

type CollectionNode struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Handle      string     `json:"handle"`
	Description *string    `json:"description"`
	Image       *ImageNode `json:"image"`
}

// ListProducts fetches up to first products, optionally filtered by a search
// query.
func (c *Client) ListProducts(ctx context.Context, first int, query string) ([]ProductNode, error) {
	vars := map[string]interface{}{"first": first}
	if query != "" {
		vars["query"] = query
	}

	var resp struct {
		Products struct {
			Edges []struct {
				Node ProductNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	if err := c.execute(ctx, productsQuery, vars, &resp, false); err != nil {
		return nil, fmt.Errorf("products fetch failed: %w", err)
	}

	products := make([]ProductNode, 0, len(resp.Products.Edges))
	for _, edge := range resp.Products.Edges {
		products = append(products, edge.Node)
	}

	logger.Debug("Fetched storefront products", map[string]interface{}{
		"count": len(products),
		"query": query,
	})
	return products, nil
}

// GetProductByHandle fetches a single product by its URL handle. Returns
// (nil, nil) when no product matches.
func (c *Client) GetProductByHandle(ctx context.Context, handle string) (*ProductNode, error) {
	var resp struct {
		ProductByHandle *ProductNode `json:"productByHandle"`
	}
	vars := map[string]interface{}{"handle": handle}
	if err := c.execute(ctx, productByHandleQuery, vars, &resp, false); err != nil {
		return nil, fmt.Errorf("product fetch failed: %w", err)
	}
	return resp.ProductByHandle, nil
}

// ListCollections fetches up to first collections.
func (c *Client) ListCollections(ctx context.Context, first int) ([]CollectionNode, error) {
	var resp struct {
		Collections struct {
			Edges []struct {
				Node CollectionNode `json:"node"`
			} `json:"edges"`
		} `json:"collections"`
	}
	vars := map[string]interface{}{"first": first}
	if err := c.execute(ctx, collectionsQuery, vars, &resp, false); err != nil {
		return nil, fmt.Errorf("collections fetch failed: %w", err)
	}

	collections := make([]CollectionNode, 0, len(resp.Collections.Edges))
	for _, edge := range resp.Collections.Edges {
		collections = append(collections, edge.Node)
	}
	return collections, nil
}
