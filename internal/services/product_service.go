package services

import (
	"fmt"

	"github.com/minhdang03/server/internal/models"
	"github.com/minhdang03/server/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetProducts retrieves a page of products matching the query.
func (s *ProductService) GetProducts(q repositories.ProductQuery) ([]models.Product, int64, error) {
	return s.repo.GetAll(q)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct creates a new product. A product needs at least one
// variant, and SKUs must not repeat within the payload; cross-product SKU
// uniqueness is enforced by the store's unique index.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := checkVariants(product); err != nil {
		return err
	}
	return s.repo.Create(product)
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if err := checkVariants(product); err != nil {
		return err
	}
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

func checkVariants(product *models.Product) error {
	if len(product.Variants) == 0 {
		return fmt.Errorf("product %s: %w", product.Name, models.ErrNoVariants)
	}
	seen := make(map[string]bool, len(product.Variants))
	for _, v := range product.Variants {
		if v.SKU == "" {
			return fmt.Errorf("variant without sku: %w", models.ErrInvalidVariant)
		}
		if seen[v.SKU] {
			return fmt.Errorf("sku %s: %w", v.SKU, models.ErrDuplicateSKU)
		}
		seen[v.SKU] = true
		if v.Price < 0 || v.CostPrice < 0 {
			return fmt.Errorf("sku %s has a negative price: %w", v.SKU, models.ErrInvalidVariant)
		}
		if v.Stock < 0 {
			return fmt.Errorf("sku %s has negative stock: %w", v.SKU, models.ErrInvalidVariant)
		}
	}
	return nil
}
