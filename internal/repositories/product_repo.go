package repositories

import (
	"github.com/minhdang03/server/internal/models"
)

// ProductQuery carries the paging and filter options for product listings.
type ProductQuery struct {
	Search     string // matches name, description or variant SKU
	CategoryID string
	BrandID    string
	Page       int
	Limit      int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(q ProductQuery) ([]models.Product, int64, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}

// VariantCatalog is the read-only variant lookup the order workflow builds
// against.
type VariantCatalog interface {
	FindVariant(productID, variantID string) (*models.Variant, error)
}

// InventoryLedger is the only component permitted to mutate variant stock.
// Reserve must be a single conditional decrement against the store, never a
// read-then-write pair, so concurrent checkouts on the same variant cannot
// both take the last unit.
type InventoryLedger interface {
	// Reserve atomically checks stock >= quantity and decrements it.
	// Returns models.ErrInsufficientStock when the variant exists but does
	// not cover the quantity, models.ErrVariantNotFound when it is absent.
	Reserve(productID, variantID string, quantity int) error
	// Release atomically increments stock. The caller is responsible for
	// invoking it exactly once per reserved line.
	Release(productID, variantID string, quantity int) error
}
