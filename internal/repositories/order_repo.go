package repositories

import (
	"time"

	"github.com/minhdang03/server/internal/models"
)

// OrderFilter carries the admin listing filters.
type OrderFilter struct {
	UserID   string
	Status   string
	Phone    string // substring match on the customer phone
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	Limit    int
}

// StatusStat is one row of the order statistics aggregation.
type StatusStat struct {
	Status      string  `json:"status"`
	Count       int64   `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}

// OrderRepository defines the interface for order data access. Orders are
// never deleted; cancellation is a status transition.
type OrderRepository interface {
	GetAll(f OrderFilter) ([]models.Order, int64, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	Update(order *models.Order) error
	StatsByStatus() ([]StatusStat, error)
}
