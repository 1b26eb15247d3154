package model

// Catalog types returned to UI consumers. These are flattened views of the
// Storefront API's edges/node payloads; the catalog never writes anything.

type ProductVariant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Price            Money            `json:"price"`
	CompareAtPrice   *Money           `json:"compare_at_price,omitempty"`
	AvailableForSale bool             `json:"available_for_sale"`
	SelectedOptions  []SelectedOption `json:"selected_options,omitempty"`
}

type ProductImage struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

type ProductOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type Product struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Handle            string           `json:"handle"`
	ProductType       string           `json:"product_type,omitempty"`
	Tags              []string         `json:"tags,omitempty"`
	MinPrice          Money            `json:"min_price"`
	CompareAtMinPrice *Money           `json:"compare_at_min_price,omitempty"`
	Images            []ProductImage   `json:"images,omitempty"`
	Variants          []ProductVariant `json:"variants,omitempty"`
	Options           []ProductOption  `json:"options,omitempty"`
}

type Collection struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}
