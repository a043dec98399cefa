package models

import (
	"time"
)

// Product model kinds. A model tagged RAW_MATERIAL can only be referenced by
// raw materials, FINISHED_PRODUCT only by finished products.
const (
	KindRawMaterial     = "RAW_MATERIAL"
	KindFinishedProduct = "FINISHED_PRODUCT"
)

// Family represents a material category used to namespace raw material codes
// (e.g. "01" Wood, "02" Consumables)
type Family struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"uniqueIndex;not null;size:10" json:"code"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Active      bool      `gorm:"not null" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Family model
func (Family) TableName() string {
	return "families"
}

// ProductModel represents a named product line (e.g. "MARTINA"), tagged with
// the inventory kind it applies to
type ProductModel struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"uniqueIndex;not null;size:20" json:"code"`
	Name        string    `gorm:"not null" json:"name"`
	Kind        string    `gorm:"not null" json:"kind"` // RAW_MATERIAL or FINISHED_PRODUCT
	Description string    `json:"description"`
	Active      bool      `gorm:"not null" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the ProductModel model
func (ProductModel) TableName() string {
	return "product_models"
}

// ValidKind reports whether k is one of the supported model kinds
func ValidKind(k string) bool {
	return k == KindRawMaterial || k == KindFinishedProduct
}
