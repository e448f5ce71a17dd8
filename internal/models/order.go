package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusShipping  = "shipping"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Payment methods.
const (
	PaymentCOD          = "COD"
	PaymentBankTransfer = "bank_transfer"
)

// Payment statuses.
const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// ValidStatus reports whether s is one of the enumerated order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipping, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// TerminalStatus reports whether no transition may leave s.
func TerminalStatus(s string) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ValidPaymentStatus reports whether s is one of the enumerated payment statuses.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// CustomerInfo carries the contact details of admin-entered orders, or a
// snapshot of the customer's shipping details for account orders.
type CustomerInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Note    string `json:"note"`
}

// OrderItem is a single line within an order. Price is a snapshot of the
// variant price at the time the order was built; later catalog edits never
// touch historical orders.
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string  `json:"-" gorm:"index;type:varchar(36)"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36)"`
	VariantID string  `json:"variant_id" gorm:"type:varchar(36)"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`
}

// Order represents a customer order. Orders are never hard-deleted, only
// transitioned to cancelled.
type Order struct {
	ID            string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string       `json:"user_id" gorm:"index;type:varchar(36)"`
	CustomerInfo  CustomerInfo `json:"customer_info" gorm:"embedded;embeddedPrefix:customer_"`
	Items         []OrderItem  `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount   float64      `json:"total_amount"`
	Status        string       `json:"status" gorm:"index;type:varchar(20);default:pending"`
	PaymentMethod string       `json:"payment_method" gorm:"type:varchar(20);default:COD"`
	PaymentStatus string       `json:"payment_status" gorm:"type:varchar(20);default:unpaid"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	TrackingCode string `json:"tracking_code"`
	ShippingUnit string `json:"shipping_unit"`

	gorm.Model
}
