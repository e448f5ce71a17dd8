package models

import "errors"

// Sentinel errors shared by repositories, services and handlers.
// Repositories and services wrap these with fmt.Errorf("...: %w", ...) so
// callers can classify failures with errors.Is while logs keep the detail.
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrVariantNotFound  = errors.New("variant not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrBrandNotFound    = errors.New("brand not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")

	// ErrInsufficientStock means the conditional decrement matched no row
	// even though the variant exists. Must stay distinguishable from
	// ErrVariantNotFound.
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrEmptyOrder           = errors.New("order must contain at least one item")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrNotCancellable       = errors.New("order can no longer be cancelled")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrForbidden            = errors.New("not allowed")
	ErrDuplicateSKU         = errors.New("duplicate variant sku")
	ErrNoVariants           = errors.New("product must have at least one variant")
	ErrInvalidVariant       = errors.New("invalid variant")
)
