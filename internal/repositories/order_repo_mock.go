package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/minhdang03/server/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetAll returns a page of orders matching the filter, newest first.
func (r *MockOrderRepository) GetAll(f OrderFilter) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if f.UserID != "" && order.UserID != f.UserID {
			continue
		}
		if f.Status != "" && order.Status != f.Status {
			continue
		}
		if f.Phone != "" && !strings.Contains(order.CustomerInfo.Phone, f.Phone) {
			continue
		}
		if f.FromDate != nil && order.CreatedAt.Before(*f.FromDate) {
			continue
		}
		if f.ToDate != nil && order.CreatedAt.After(*f.ToDate) {
			continue
		}
		matched = append(matched, order)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.Order{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrOrderNotFound)
	}
	return &order, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// Update replaces a stored order.
func (r *MockOrderRepository) Update(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; !ok {
		return fmt.Errorf("order %s: %w", order.ID, models.ErrOrderNotFound)
	}
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// StatsByStatus groups orders by status with counts and revenue.
func (r *MockOrderRepository) StatsByStatus() ([]StatusStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byStatus := make(map[string]*StatusStat)
	for _, order := range r.orders {
		stat, ok := byStatus[order.Status]
		if !ok {
			stat = &StatusStat{Status: order.Status}
			byStatus[order.Status] = stat
		}
		stat.Count++
		stat.TotalAmount += order.TotalAmount
	}

	stats := make([]StatusStat, 0, len(byStatus))
	for _, stat := range byStatus {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Status < stats[j].Status })
	return stats, nil
}
