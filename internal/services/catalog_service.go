package services

import (
	"github.com/minhdang03/server/internal/models"
	"github.com/minhdang03/server/internal/repositories"
)

// CatalogService handles brand and category management.
type CatalogService struct {
	brandRepo    repositories.BrandRepository
	categoryRepo repositories.CategoryRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(brandRepo repositories.BrandRepository, categoryRepo repositories.CategoryRepository) *CatalogService {
	return &CatalogService{
		brandRepo:    brandRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *CatalogService) GetBrands() ([]models.Brand, error) {
	return s.brandRepo.GetAll()
}

func (s *CatalogService) GetFeaturedBrands() ([]models.Brand, error) {
	return s.brandRepo.GetFeatured()
}

func (s *CatalogService) GetBrandByID(id string) (*models.Brand, error) {
	return s.brandRepo.GetByID(id)
}

func (s *CatalogService) CreateBrand(brand *models.Brand) error {
	return s.brandRepo.Create(brand)
}

func (s *CatalogService) UpdateBrand(brand *models.Brand) error {
	return s.brandRepo.Update(brand)
}

func (s *CatalogService) DeleteBrand(id string) error {
	return s.brandRepo.Delete(id)
}

func (s *CatalogService) GetCategories() ([]models.Category, error) {
	return s.categoryRepo.GetAll()
}

func (s *CatalogService) GetCategoryByID(id string) (*models.Category, error) {
	return s.categoryRepo.GetByID(id)
}

// CreateCategory creates a category, checking that the parent, if set,
// exists.
func (s *CatalogService) CreateCategory(category *models.Category) error {
	if category.ParentID != nil && *category.ParentID != "" {
		if _, err := s.categoryRepo.GetByID(*category.ParentID); err != nil {
			return err
		}
	}
	return s.categoryRepo.Create(category)
}

func (s *CatalogService) UpdateCategory(category *models.Category) error {
	if category.ParentID != nil && *category.ParentID != "" {
		if _, err := s.categoryRepo.GetByID(*category.ParentID); err != nil {
			return err
		}
	}
	return s.categoryRepo.Update(category)
}

func (s *CatalogService) DeleteCategory(id string) error {
	return s.categoryRepo.Delete(id)
}
