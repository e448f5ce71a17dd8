package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhdang03/server/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves a page of orders matching the filter, newest first.
func (r *GORMOrderRepository) GetAll(f OrderFilter) ([]models.Order, int64, error) {
	tx := r.db.Model(&models.Order{})

	if f.UserID != "" {
		tx = tx.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if f.Phone != "" {
		tx = tx.Where("customer_phone LIKE ?", "%"+f.Phone+"%")
	}
	if f.FromDate != nil {
		tx = tx.Where("created_at >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		tx = tx.Where("created_at <= ?", *f.ToDate)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}

	var orders []models.Order
	if err := tx.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, total, nil
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, models.ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create persists a new order together with its items.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// Update persists status, payment and shipping mutations. Items are
// immutable after creation and deliberately not touched.
func (r *GORMOrderRepository) Update(order *models.Order) error {
	res := r.db.Omit("Items").Save(order)
	if res.Error != nil {
		return fmt.Errorf("failed to update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", order.ID, models.ErrOrderNotFound)
	}
	return nil
}

// StatsByStatus groups orders by status with counts and revenue.
func (r *GORMOrderRepository) StatsByStatus() ([]StatusStat, error) {
	var stats []StatusStat
	err := r.db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count, SUM(total_amount) AS total_amount").
		Group("status").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate order stats: %w", err)
	}
	return stats, nil
}
