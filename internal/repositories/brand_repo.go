package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhdang03/server/internal/models"
)

// BrandRepository defines the interface for brand data access.
type BrandRepository interface {
	GetAll() ([]models.Brand, error)
	GetFeatured() ([]models.Brand, error)
	GetByID(id string) (*models.Brand, error)
	Create(brand *models.Brand) error
	Update(brand *models.Brand) error
	Delete(id string) error
}

// GORMBrandRepository is a GORM implementation of BrandRepository.
type GORMBrandRepository struct {
	db *gorm.DB
}

func NewGORMBrandRepository(db *gorm.DB) *GORMBrandRepository {
	return &GORMBrandRepository{db: db}
}

func (r *GORMBrandRepository) GetAll() ([]models.Brand, error) {
	var brands []models.Brand
	if err := r.db.Order("name").Find(&brands).Error; err != nil {
		return nil, fmt.Errorf("failed to get all brands: %w", err)
	}
	return brands, nil
}

func (r *GORMBrandRepository) GetFeatured() ([]models.Brand, error) {
	var brands []models.Brand
	if err := r.db.Where("featured = ?", true).Order("name").Find(&brands).Error; err != nil {
		return nil, fmt.Errorf("failed to get featured brands: %w", err)
	}
	return brands, nil
}

func (r *GORMBrandRepository) GetByID(id string) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.First(&brand, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("brand %s: %w", id, models.ErrBrandNotFound)
		}
		return nil, fmt.Errorf("failed to get brand by ID %s: %w", id, err)
	}
	return &brand, nil
}

func (r *GORMBrandRepository) Create(brand *models.Brand) error {
	if brand.ID == "" {
		brand.ID = uuid.New().String()
	}
	if err := r.db.Create(brand).Error; err != nil {
		return fmt.Errorf("failed to create brand: %w", err)
	}
	return nil
}

func (r *GORMBrandRepository) Update(brand *models.Brand) error {
	res := r.db.Save(brand)
	if res.Error != nil {
		return fmt.Errorf("failed to update brand: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("brand %s: %w", brand.ID, models.ErrBrandNotFound)
	}
	return nil
}

func (r *GORMBrandRepository) Delete(id string) error {
	res := r.db.Delete(&models.Brand{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete brand: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("brand %s: %w", id, models.ErrBrandNotFound)
	}
	return nil
}
