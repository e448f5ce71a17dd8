package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// AttributeMap holds a variant's attributes (e.g. SIZE -> "42"). It is
// stored as a JSON column.
type AttributeMap map[string]string

// Value implements driver.Valuer so GORM can persist the map.
func (m AttributeMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attributes: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *AttributeMap) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = AttributeMap{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported attribute column type %T", src)
	}
	return json.Unmarshal(data, m)
}

// Variant is a purchasable SKU-level unit of a product with its own price
// and stock. Stock is only mutated through the inventory ledger.
type Variant struct {
	ID         string       `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ProductID  string       `json:"product_id" gorm:"index;type:varchar(36)"`
	SKU        string       `json:"sku" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=1,max=100"`
	Name       string       `json:"name" validate:"omitempty,max=255"`
	Image      string       `json:"image" validate:"omitempty,max=500"`
	Attributes AttributeMap `json:"attributes" gorm:"type:text"`
	Price      float64      `json:"price" validate:"gte=0"`
	CostPrice  float64      `json:"cost_price" validate:"gte=0"`
	Stock      int          `json:"stock" gorm:"default:0" validate:"gte=0"`
	gorm.Model
}

// Product represents a product in the store. A product always carries at
// least one variant.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string    `json:"name" validate:"required,min=1,max=255"`
	Description string    `json:"description" validate:"omitempty,max=2000"`
	BrandID     string    `json:"brand_id" gorm:"index;type:varchar(36)" validate:"required"`
	CategoryID  string    `json:"category_id" gorm:"index;type:varchar(36)" validate:"required"`
	Images      ImageList `json:"images" gorm:"type:text"`
	Variants    []Variant `json:"variants" gorm:"foreignKey:ProductID" validate:"required,min=1,dive"`
	gorm.Model
}

// ImageList is a JSON-encoded list of image URLs.
type ImageList []string

func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal images: %w", err)
	}
	return string(b), nil
}

func (l *ImageList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = ImageList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported image column type %T", src)
	}
	return json.Unmarshal(data, l)
}
