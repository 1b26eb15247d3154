package model

import "strconv"

// Money is an amount/currency pair as the Storefront API reports it. The
// amount stays a decimal string; it is only parsed for the advisory subtotal.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

// Float returns the amount as a float64 for display math. Authoritative
// pricing is whatever checkout computes, never this value.
func (m Money) Float() float64 {
	f, err := strconv.ParseFloat(m.Amount, 64)
	if err != nil {
		return 0
	}
	return f
}

// SelectedOption is one (name, value) pair describing a variant, e.g. Size=M.
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductRef is a denormalized product snapshot captured at add-time so the
// cart can render offline. Not authoritative for price or availability.
type ProductRef struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Handle    string `json:"handle"`
	ImageURL  string `json:"image_url,omitempty"`
}

// LineItem is one purchasable unit in the cart, keyed by VariantID.
type LineItem struct {
	VariantID       string           `json:"variant_id"`
	Product         ProductRef       `json:"product"`
	SelectedOptions []SelectedOption `json:"selected_options,omitempty"`
	UnitPrice       Money            `json:"unit_price"`
	Quantity        int              `json:"quantity"`

	// RemoteLineID is the ID of the mirroring line in the remote cart,
	// learned from gateway responses. Empty until the line has synced.
	RemoteLineID string `json:"remote_line_id,omitempty"`
}

// CartState is the aggregate cart snapshot. LineItems keeps insertion order
// and holds at most one entry per VariantID. The flags are transient UI state
// and are never persisted.
type CartState struct {
	LineItems    []LineItem `json:"line_items"`
	RemoteCartID string     `json:"remote_cart_id,omitempty"`
	CheckoutURL  string     `json:"checkout_url,omitempty"`

	IsOpen    bool `json:"-"`
	IsLoading bool `json:"-"`
	IsSyncing bool `json:"-"`
}

// TotalItems sums quantities across all line items.
func (s CartState) TotalItems() int {
	total := 0
	for _, item := range s.LineItems {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums unit price x quantity across line items, in the currency of
// the first line item. Advisory only; multi-currency carts are not supported.
func (s CartState) TotalPrice() (float64, string) {
	var total float64
	currency := ""
	for _, item := range s.LineItems {
		if currency == "" {
			currency = item.UnitPrice.CurrencyCode
		}
		total += item.UnitPrice.Float() * float64(item.Quantity)
	}
	return total, currency
}
