package errors

// Error code constants returned to the storefront UI.
// Format: CATEGORY_SPECIFIC_DETAIL
// The frontend maps these codes to notification messages.

const (
	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // malformed request body
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // malformed identifier

	// ==================== Cart (CART_) ====================
	CartLineNotFound  = "CART_LINE_NOT_FOUND"  // no such line item in the cart
	CartSyncFailed    = "CART_SYNC_FAILED"     // could not reach the storefront backend
	CartLinesRejected = "CART_LINES_REJECTED"  // backend rejected one or more lines
	CartNoCheckout    = "CART_NO_CHECKOUT_URL" // no checkout URL yet (cart never synced)

	// ==================== Backend (BACKEND_) ====================
	BackendUnavailable = "BACKEND_UNAVAILABLE" // shop billing/availability outage

	// ==================== Catalog (CATALOG_) ====================
	CatalogProductNotFound = "CATALOG_PRODUCT_NOT_FOUND" // unknown product handle
	CatalogFetchFailed     = "CATALOG_FETCH_FAILED"      // could not load catalog data

	// ==================== Wishlist (WISHLIST_) ====================
	WishlistDuplicate = "WISHLIST_DUPLICATE" // product already saved

	// ==================== Internal ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
)
