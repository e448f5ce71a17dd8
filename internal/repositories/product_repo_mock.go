package repositories

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/minhdang03/server/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository,
// VariantCatalog and InventoryLedger. The single mutex makes Reserve's
// check-and-decrement indivisible, matching the conditional update the GORM
// implementation issues.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns a page of products matching the query.
func (r *MockProductRepository) GetAll(q ProductQuery) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if q.CategoryID != "" && p.CategoryID != q.CategoryID {
			continue
		}
		if q.BrandID != "" && p.BrandID != q.BrandID {
			continue
		}
		if q.Search != "" && !productMatches(p, q.Search) {
			continue
		}
		matched = append(matched, p)
	}

	total := int64(len(matched))
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.Product{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func productMatches(p models.Product, search string) bool {
	s := strings.ToLower(search)
	if strings.Contains(strings.ToLower(p.Name), s) ||
		strings.Contains(strings.ToLower(p.Description), s) {
		return true
	}
	for _, v := range p.Variants {
		if strings.Contains(strings.ToLower(v.SKU), s) {
			return true
		}
	}
	return false
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, models.ErrProductNotFound)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	for i := range product.Variants {
		if product.Variants[i].ID == "" {
			product.Variants[i].ID = uuid.New().String()
		}
		product.Variants[i].ProductID = product.ID
	}
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("product %s: %w", product.ID, models.ErrProductNotFound)
	}
	for i := range product.Variants {
		if product.Variants[i].ID == "" {
			product.Variants[i].ID = uuid.New().String()
		}
		product.Variants[i].ProductID = product.ID
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, models.ErrProductNotFound)
	}
	delete(r.products, id)
	return nil
}

// FindVariant looks up one variant of a product.
func (r *MockProductRepository) FindVariant(productID, variantID string) (*models.Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", productID, models.ErrProductNotFound)
	}
	for _, v := range product.Variants {
		if v.ID == variantID {
			variant := v
			return &variant, nil
		}
	}
	return nil, fmt.Errorf("variant %s: %w", variantID, models.ErrVariantNotFound)
}

// Reserve checks and decrements stock under the write lock.
func (r *MockProductRepository) Reserve(productID, variantID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok {
		return fmt.Errorf("variant %s: %w", variantID, models.ErrVariantNotFound)
	}
	for i := range product.Variants {
		if product.Variants[i].ID != variantID {
			continue
		}
		if product.Variants[i].Stock < quantity {
			return fmt.Errorf("variant %s: %w", variantID, models.ErrInsufficientStock)
		}
		product.Variants[i].Stock -= quantity
		r.products[productID] = product
		return nil
	}
	return fmt.Errorf("variant %s: %w", variantID, models.ErrVariantNotFound)
}

// Release increments stock under the write lock.
func (r *MockProductRepository) Release(productID, variantID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok {
		return fmt.Errorf("variant %s: %w", variantID, models.ErrVariantNotFound)
	}
	for i := range product.Variants {
		if product.Variants[i].ID != variantID {
			continue
		}
		product.Variants[i].Stock += quantity
		r.products[productID] = product
		return nil
	}
	return fmt.Errorf("variant %s: %w", variantID, models.ErrVariantNotFound)
}
