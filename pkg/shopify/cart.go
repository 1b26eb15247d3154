package shopify

import (
	"context"
	"fmt"

	"github.com/valorin/storefront-backend/pkg/logger"
)

// CartLineInput is a variant/quantity pair sent to cart mutations.
type CartLineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// LineUpdateInput changes the quantity of an existing remote cart line.
type LineUpdateInput struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// RemoteLine is one line of the remote cart as Shopify reports it.
type RemoteLine struct {
	ID        string
	VariantID string
	Quantity  int
}

// RemoteCart is the normalized result of a cart mutation or fetch.
type RemoteCart struct {
	ID          string
	CheckoutURL string
	Lines       []RemoteLine
}

// Wire shapes for cart payloads.

type cartNode struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
	Lines         struct {
		Edges []struct {
			Node struct {
				ID          string `json:"id"`
				Quantity    int    `json:"quantity"`
				Merchandise struct {
					ID string `json:"id"`
				} `json:"merchandise"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"lines"`
}

type cartMutationPayload struct {
	Cart       *cartNode       `json:"cart"`
	UserErrors []LineRejection `json:"userErrors"`
}

func (n *cartNode) toRemoteCart() *RemoteCart {
	cart := &RemoteCart{
		ID:          n.ID,
		CheckoutURL: n.CheckoutURL,
	}
	for _, edge := range n.Lines.Edges {
		cart.Lines = append(cart.Lines, RemoteLine{
			ID:        edge.Node.ID,
			VariantID: edge.Node.Merchandise.ID,
			Quantity:  edge.Node.Quantity,
		})
	}
	return cart
}

// resolvePayload turns a cart mutation payload into a RemoteCart and, when
// Shopify attached userErrors, a LineRejectedError. A partial success (cart
// present alongside rejected lines) returns both so the caller can keep the
// cart and still report the rejections.
func resolvePayload(op string, payload cartMutationPayload) (*RemoteCart, error) {
	if len(payload.UserErrors) > 0 {
		rejErr := &LineRejectedError{Rejections: payload.UserErrors}
		logger.Warn("Storefront rejected cart lines", map[string]interface{}{
			"operation":  op,
			"rejections": len(payload.UserErrors),
		})
		if payload.Cart != nil {
			return payload.Cart.toRemoteCart(), rejErr
		}
		return nil, rejErr
	}
	if payload.Cart == nil {
		// Mutations against an expired cart come back with a null cart and
		// no userErrors.
		return nil, ErrCartNotFound
	}
	return payload.Cart.toRemoteCart(), nil
}

// CreateCart creates a new remote cart with the given initial lines and
// returns its ID and checkout URL.
func (c *Client) CreateCart(ctx context.Context, lines []CartLineInput) (*RemoteCart, error) {
	logger.Debug("Creating remote cart", map[string]interface{}{
		"lines": len(lines),
	})

	input := map[string]interface{}{}
	if len(lines) > 0 {
		input["lines"] = lines
	}

	var resp struct {
		CartCreate cartMutationPayload `json:"cartCreate"`
	}
	if err := c.execute(ctx, cartCreateMutation, map[string]interface{}{"input": input}, &resp, true); err != nil {
		return nil, fmt.Errorf("cart create failed: %w", err)
	}

	cart, err := resolvePayload("cartCreate", resp.CartCreate)
	if err != nil && cart == nil {
		return nil, err
	}
	if cart != nil {
		logger.Info("Remote cart created", map[string]interface{}{
			"cart_id": cart.ID,
			"lines":   len(cart.Lines),
		})
	}
	return cart, err
}

// AddLines adds or merges the given lines into the remote cart.
func (c *Client) AddLines(ctx context.Context, cartID string, lines []CartLineInput) (*RemoteCart, error) {
	logger.Debug("Adding remote cart lines", map[string]interface{}{
		"cart_id": cartID,
		"lines":   len(lines),
	})

	var resp struct {
		CartLinesAdd cartMutationPayload `json:"cartLinesAdd"`
	}
	vars := map[string]interface{}{"cartId": cartID, "lines": lines}
	if err := c.execute(ctx, cartLinesAddMutation, vars, &resp, true); err != nil {
		return nil, fmt.Errorf("cart lines add failed: %w", err)
	}

	return resolvePayload("cartLinesAdd", resp.CartLinesAdd)
}

// UpdateLines updates quantities of existing remote cart lines.
func (c *Client) UpdateLines(ctx context.Context, cartID string, updates []LineUpdateInput) (*RemoteCart, error) {
	logger.Debug("Updating remote cart lines", map[string]interface{}{
		"cart_id": cartID,
		"lines":   len(updates),
	})

	var resp struct {
		CartLinesUpdate cartMutationPayload `json:"cartLinesUpdate"`
	}
	vars := map[string]interface{}{"cartId": cartID, "lines": updates}
	if err := c.execute(ctx, cartLinesUpdateMutation, vars, &resp, true); err != nil {
		return nil, fmt.Errorf("cart lines update failed: %w", err)
	}

	return resolvePayload("cartLinesUpdate", resp.CartLinesUpdate)
}

// RemoveLines removes the given line IDs from the remote cart.
func (c *Client) RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*RemoteCart, error) {
	logger.Debug("Removing remote cart lines", map[string]interface{}{
		"cart_id": cartID,
		"lines":   len(lineIDs),
	})

	var resp struct {
		CartLinesRemove cartMutationPayload `json:"cartLinesRemove"`
	}
	vars := map[string]interface{}{"cartId": cartID, "lineIds": lineIDs}
	if err := c.execute(ctx, cartLinesRemoveMutation, vars, &resp, true); err != nil {
		return nil, fmt.Errorf("cart lines remove failed: %w", err)
	}

	return resolvePayload("cartLinesRemove", resp.CartLinesRemove)
}

// GetCart fetches the remote cart's current state. Returns ErrCartNotFound
// when the ID no longer resolves.
func (c *Client) GetCart(ctx context.Context, cartID string) (*RemoteCart, error) {
	var resp struct {
		Cart *cartNode `json:"cart"`
	}
	vars := map[string]interface{}{"id": cartID}
	if err := c.execute(ctx, cartQuery, vars, &resp, false); err != nil {
		return nil, fmt.Errorf("cart fetch failed: %w", err)
	}

	if resp.Cart == nil {
		return nil, ErrCartNotFound
	}
	return resp.Cart.toRemoteCart(), nil
}
