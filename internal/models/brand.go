package models

import "gorm.io/gorm"

// Brand represents a product brand.
type Brand struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string `json:"name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Featured    bool   `json:"featured"`
	gorm.Model
}
