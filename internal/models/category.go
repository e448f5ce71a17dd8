package models

import "gorm.io/gorm"

// Category represents a product category. Categories may be nested one
// level deep via ParentID.
type Category struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string  `json:"name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=1,max=100"`
	ParentID    *string `json:"parent_id" gorm:"type:varchar(36)" validate:"omitempty,uuid"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	gorm.Model
}
