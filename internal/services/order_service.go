package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minhdang03/server/internal/models"
	"github.com/minhdang03/server/internal/repositories"
)

// EventPublisher publishes order lifecycle events. Satisfied by
// *rabbitmq.Client; may be nil, in which case publication is skipped.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderLineRequest is one requested (variant, quantity) pair in a cart.
type OrderLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest is the validated input for order creation. UserID is
// set for customer checkouts; admin-entered orders carry CustomerInfo only.
type CreateOrderRequest struct {
	UserID          string
	CustomerInfo    models.CustomerInfo
	Items           []OrderLineRequest
	ShippingAddress string
	PaymentMethod   string
}

// OrderService handles order creation and the order status lifecycle. It is
// the only caller of the inventory ledger, so a release happens exactly once
// per reserved line.
type OrderService struct {
	orderRepo repositories.OrderRepository
	catalog   repositories.VariantCatalog
	inventory repositories.InventoryLedger
	events    EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, catalog repositories.VariantCatalog, inventory repositories.InventoryLedger, events EventPublisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		catalog:   catalog,
		inventory: inventory,
		events:    events,
	}
}

// CreateOrder validates the cart, reserves stock for every line and
// persists the order. All-or-nothing: any failure releases whatever was
// already reserved and leaves no order behind.
func (s *OrderService) CreateOrder(req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, models.ErrEmptyOrder
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentCOD
	}
	if paymentMethod != models.PaymentCOD && paymentMethod != models.PaymentBankTransfer {
		return nil, fmt.Errorf("%s: %w", paymentMethod, models.ErrInvalidPaymentMethod)
	}

	// Build the lines first: look up each variant, snapshot its price and
	// compute the line total. The stock comparison here is only an early
	// rejection; the authoritative check is the conditional decrement below.
	var totalAmount float64
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("variant %s: %w", line.VariantID, models.ErrInvalidQuantity)
		}

		variant, err := s.catalog.FindVariant(line.ProductID, line.VariantID)
		if err != nil {
			return nil, err
		}
		if variant.Stock < line.Quantity {
			return nil, fmt.Errorf("variant %s (requested: %d, available: %d): %w",
				variant.SKU, line.Quantity, variant.Stock, models.ErrInsufficientStock)
		}

		lineTotal := variant.Price * float64(line.Quantity)
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Name:      variant.Name,
			Quantity:  line.Quantity,
			Price:     variant.Price,
			Total:     lineTotal,
		})
		totalAmount += lineTotal
	}

	customerInfo := req.CustomerInfo
	if req.ShippingAddress != "" {
		customerInfo.Address = req.ShippingAddress
	}

	newOrder := &models.Order{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		CustomerInfo:  customerInfo,
		Items:         items,
		TotalAmount:   totalAmount,
		Status:        models.StatusPending,
		PaymentMethod: paymentMethod,
		PaymentStatus: models.PaymentUnpaid,
		TrackingCode:  newTrackingCode(),
	}

	// Reserve stock line by line, in the submitted order. If line k fails,
	// lines 1..k-1 must be released before surfacing the error, otherwise
	// their reservations leak stock permanently.
	for i, item := range items {
		if err := s.inventory.Reserve(item.ProductID, item.VariantID, item.Quantity); err != nil {
			s.releaseItems(items[:i])
			return nil, err
		}
	}

	if err := s.orderRepo.Create(newOrder); err != nil {
		s.releaseItems(items)
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.publish("order.created", map[string]interface{}{
		"order_id": newOrder.ID,
		"user_id":  newOrder.UserID,
		"status":   newOrder.Status,
		"total":    newOrder.TotalAmount,
	})

	return newOrder, nil
}

// releaseItems returns the reserved stock of the given lines. Failures are
// logged and the remaining lines are still attempted.
func (s *OrderService) releaseItems(items []models.OrderItem) {
	for _, item := range items {
		if err := s.inventory.Release(item.ProductID, item.VariantID, item.Quantity); err != nil {
			log.Printf("Failed to release %d x variant %s during rollback: %v", item.Quantity, item.VariantID, err)
		}
	}
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// GetOrderForUser retrieves an order only if it belongs to the given user.
// A foreign order is reported as not found, not as forbidden.
func (s *OrderService) GetOrderForUser(id, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrOrderNotFound)
	}
	return order, nil
}

// GetMyOrders lists a user's orders, newest first.
func (s *OrderService) GetMyOrders(userID string, page, limit int) ([]models.Order, int64, error) {
	return s.orderRepo.GetAll(repositories.OrderFilter{UserID: userID, Page: page, Limit: limit})
}

// ListOrders lists orders for the admin view.
func (s *OrderService) ListOrders(f repositories.OrderFilter) ([]models.Order, int64, error) {
	return s.orderRepo.GetAll(f)
}

// GetStats aggregates order counts and revenue by status.
func (s *OrderService) GetStats() ([]repositories.StatusStat, error) {
	return s.orderRepo.StatsByStatus()
}

// CancelOrder cancels a customer's own pending order and returns its stock.
// Any status other than pending is rejected with ErrNotCancellable.
func (s *OrderService) CancelOrder(id, userID string) (*models.Order, error) {
	order, err := s.GetOrderForUser(id, userID)
	if err != nil {
		return nil, err
	}
	return s.cancel(order)
}

func (s *OrderService) cancel(order *models.Order) (*models.Order, error) {
	if order.Status != models.StatusPending {
		return nil, fmt.Errorf("order %s is %s: %w", order.ID, order.Status, models.ErrNotCancellable)
	}
	return s.cancelAny(order)
}

// cancelAny performs the cancellation transition. The order is marked
// cancelled first, then stock is released once per line.
func (s *OrderService) cancelAny(order *models.Order) (*models.Order, error) {
	now := time.Now()
	order.Status = models.StatusCancelled
	order.CancelledAt = &now

	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("failed to cancel order %s: %w", order.ID, err)
	}
	s.releaseItems(order.Items)

	s.publish("order.cancelled", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})

	return order, nil
}

// UpdateOrderStatus applies an admin status change. Statuses outside the
// enumerated set are rejected, and terminal orders are never reopened: a
// cancelled order's stock has already been released and a resurrected order
// would desync the ledger. Between non-terminal states the set is a direct
// overwrite, as the admin tooling expects.
func (s *OrderService) UpdateOrderStatus(id, status string) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%s: %w", status, models.ErrInvalidStatus)
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if models.TerminalStatus(order.Status) {
		return nil, fmt.Errorf("order %s is already %s: %w", order.ID, order.Status, models.ErrInvalidStatus)
	}

	if status == models.StatusCancelled {
		return s.cancelAny(order)
	}

	now := time.Now()
	order.Status = status
	switch status {
	case models.StatusConfirmed:
		order.ConfirmedAt = &now
	case models.StatusShipping:
		order.ShippedAt = &now
	case models.StatusCompleted:
		order.CompletedAt = &now
	}

	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}

	s.publish("order.status_updated", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})

	return order, nil
}

// UpdatePaymentStatus applies an admin payment status change.
func (s *OrderService) UpdatePaymentStatus(id, paymentStatus string) (*models.Order, error) {
	if !models.ValidPaymentStatus(paymentStatus) {
		return nil, fmt.Errorf("%s: %w", paymentStatus, models.ErrInvalidPaymentStatus)
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	order.PaymentStatus = paymentStatus

	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("failed to update payment status for order %s: %w", id, err)
	}
	return order, nil
}

// UpdateShippingInfo attaches tracking details to an order.
func (s *OrderService) UpdateShippingInfo(id, trackingCode, shippingUnit string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	order.TrackingCode = trackingCode
	order.ShippingUnit = shippingUnit

	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("failed to update shipping info for order %s: %w", id, err)
	}
	return order, nil
}

// publish sends a lifecycle event. Event delivery is best-effort: a broker
// failure must not fail the order operation that triggered it.
func (s *OrderService) publish(routingKey string, payload map[string]interface{}) {
	if s.events == nil {
		log.Println("Event publisher is not initialized. Skipping message publication.")
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.events.Publish(routingKey, body); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", routingKey, err)
	}
}

// newTrackingCode generates an opaque tracking reference for a new order.
func newTrackingCode() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "TRK" + suffix[:9]
}
