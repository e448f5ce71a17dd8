package models

import "gorm.io/gorm"

// Roles recognised by the admin gate.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User represents an account in the store.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	FullName   string `json:"full_name" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	Password   string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role       string `json:"role" gorm:"type:varchar(20);default:customer" validate:"omitempty,oneof=admin customer"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
