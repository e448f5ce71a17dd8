package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhdang03/server/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository,
// VariantCatalog and InventoryLedger.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves a page of products matching the query.
func (r *GORMProductRepository) GetAll(q ProductQuery) ([]models.Product, int64, error) {
	tx := r.db.Model(&models.Product{})

	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		tx = tx.Where(
			"name LIKE ? OR description LIKE ? OR id IN (?)",
			pattern, pattern,
			r.db.Model(&models.Variant{}).Select("product_id").Where("sku LIKE ?", pattern),
		)
	}
	if q.CategoryID != "" {
		tx = tx.Where("category_id = ?", q.CategoryID)
	}
	if q.BrandID != "" {
		tx = tx.Where("brand_id = ?", q.BrandID)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}

	var products []models.Product
	if err := tx.Preload("Variants").
		Offset((page - 1) * limit).Limit(limit).
		Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get products: %w", err)
	}
	return products, total, nil
}

// GetByID retrieves a single product with its variants.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Variants").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, models.ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product together with its variants.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	for i := range product.Variants {
		if product.Variants[i].ID == "" {
			product.Variants[i].ID = uuid.New().String()
		}
		product.Variants[i].ProductID = product.ID
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product and replaces its variants.
func (r *GORMProductRepository) Update(product *models.Product) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Omit("Variants").Save(product)
		if res.Error != nil {
			return fmt.Errorf("failed to update product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product %s: %w", product.ID, models.ErrProductNotFound)
		}

		// Replace the variant set. Stock values in the payload overwrite
		// whatever the ledger left behind; admin edits are authoritative.
		// The delete must bypass soft deletion, otherwise the old rows keep
		// their SKUs under the unique index and re-inserting them fails.
		if err := tx.Unscoped().Where("product_id = ?", product.ID).Delete(&models.Variant{}).Error; err != nil {
			return fmt.Errorf("failed to clear variants: %w", err)
		}
		for i := range product.Variants {
			if product.Variants[i].ID == "" {
				product.Variants[i].ID = uuid.New().String()
			}
			product.Variants[i].ProductID = product.ID
		}
		if len(product.Variants) > 0 {
			if err := tx.Create(&product.Variants).Error; err != nil {
				return fmt.Errorf("failed to update variants: %w", err)
			}
		}
		return nil
	})
}

// Delete deletes a product and its variants by product ID.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, models.ErrProductNotFound)
	}
	// Variants go for good so their SKUs become reusable; the product row
	// itself stays soft-deleted.
	if err := r.db.Unscoped().Where("product_id = ?", id).Delete(&models.Variant{}).Error; err != nil {
		return fmt.Errorf("failed to delete variants of product %s: %w", id, err)
	}
	return nil
}

// FindVariant looks up one variant of a product.
func (r *GORMProductRepository) FindVariant(productID, variantID string) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.First(&variant, "id = ? AND product_id = ?", variantID, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Distinguish a missing product from a missing variant so the
			// order workflow can name the offending id.
			var count int64
			if err := r.db.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
				return nil, fmt.Errorf("failed to look up product %s: %w", productID, err)
			}
			if count == 0 {
				return nil, fmt.Errorf("product %s: %w", productID, models.ErrProductNotFound)
			}
			return nil, fmt.Errorf("variant %s: %w", variantID, models.ErrVariantNotFound)
		}
		return nil, fmt.Errorf("failed to find variant %s: %w", variantID, err)
	}
	return &variant, nil
}

// Reserve performs the compare-and-decrement. The WHERE clause carries the
// stock guard, so the check and the write are one statement at the store.
func (r *GORMProductRepository) Reserve(productID, variantID string, quantity int) error {
	res := r.db.Model(&models.Variant{}).
		Where("id = ? AND product_id = ? AND stock >= ?", variantID, productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("failed to reserve stock for variant %s: %w", variantID, res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the variant is gone or its stock no longer covers the
		// request; a second read disambiguates.
		var count int64
		if err := r.db.Model(&models.Variant{}).
			Where("id = ? AND product_id = ?", variantID, productID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up variant %s: %w", variantID, err)
		}
		if count == 0 {
			return fmt.Errorf("variant %s: %w", variantID, models.ErrVariantNotFound)
		}
		return fmt.Errorf("variant %s: %w", variantID, models.ErrInsufficientStock)
	}
	return nil
}

// Release atomically returns quantity units to a variant's stock.
func (r *GORMProductRepository) Release(productID, variantID string, quantity int) error {
	res := r.db.Model(&models.Variant{}).
		Where("id = ? AND product_id = ?", variantID, productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("failed to release stock for variant %s: %w", variantID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("variant %s: %w", variantID, models.ErrVariantNotFound)
	}
	return nil
}
