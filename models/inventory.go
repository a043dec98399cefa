package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Units of measure for raw materials
var Units = []string{"KG", "M", "M2", "M3", "L", "UN"}

// ValidUnit reports whether u is a supported unit of measure
func ValidUnit(u string) bool {
	for _, v := range Units {
		if v == u {
			return true
		}
	}
	return false
}

// RawMaterial represents a raw material tracked in stock. Its code is derived
// from the family and model codes on first save and never changes afterwards.
type RawMaterial struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	FamilyID     *uint           `gorm:"index" json:"family_id"`
	Family       *Family         `gorm:"foreignKey:FamilyID" json:"family,omitempty"`
	ModelID      *uint           `gorm:"index" json:"model_id"`
	Model        *ProductModel   `gorm:"foreignKey:ModelID" json:"model,omitempty"`
	Code         string          `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Name         string          `gorm:"not null" json:"name"`
	Description  string          `json:"description"`
	Unit         string          `gorm:"not null;default:'KG'" json:"unit"` // KG, M, M2, M3, L, UN
	StockLevel   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"stock_level"`
	ReorderLevel decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"reorder_level"`
	UnitCost     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"unit_cost"`
	Supplier     string          `json:"supplier"`
	Active       bool            `gorm:"not null" json:"active"`
	LowStock     bool            `gorm:"-" json:"low_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the RawMaterial model
func (RawMaterial) TableName() string {
	return "raw_materials"
}

// IsLowStock reports whether the stock level is at or below the reorder level
func (m *RawMaterial) IsLowStock() bool {
	return m.StockLevel.LessThanOrEqual(m.ReorderLevel)
}

// AfterFind populates the computed low-stock flag
func (m *RawMaterial) AfterFind(tx *gorm.DB) error {
	m.LowStock = m.IsLowStock()
	return nil
}

// AfterSave keeps the computed low-stock flag consistent on writes
func (m *RawMaterial) AfterSave(tx *gorm.DB) error {
	m.LowStock = m.IsLowStock()
	return nil
}

// Product represents a finished product built by the workshop. Stock is
// counted in whole units.
type Product struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ModelID        *uint           `gorm:"index" json:"model_id"`
	Model          *ProductModel   `gorm:"foreignKey:ModelID" json:"model,omitempty"`
	Code           string          `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Name           string          `gorm:"not null" json:"name"`
	Description    string          `json:"description"`
	StockLevel     int             `gorm:"not null;default:0" json:"stock_level"`
	ReorderLevel   int             `gorm:"not null;default:0" json:"reorder_level"`
	SalePrice      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"sale_price"`
	BuildTimeHours int             `gorm:"not null;default:0" json:"build_time_hours"`
	Active         bool            `gorm:"not null" json:"active"`
	LowStock       bool            `gorm:"-" json:"low_stock"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// IsLowStock reports whether the stock level is at or below the reorder level
func (p *Product) IsLowStock() bool {
	return p.StockLevel <= p.ReorderLevel
}

// AfterFind populates the computed low-stock flag
func (p *Product) AfterFind(tx *gorm.DB) error {
	p.LowStock = p.IsLowStock()
	return nil
}

// AfterSave keeps the computed low-stock flag consistent on writes
func (p *Product) AfterSave(tx *gorm.DB) error {
	p.LowStock = p.IsLowStock()
	return nil
}

// CodeSequence tracks the last code suffix handed out for a catalog scope
// ("01-MARTINA" for raw materials, "MARTINA" for products). Codes are derived
// from an atomic increment on this row rather than a max-string probe, so the
// sequence stays numerically correct past 999.
type CodeSequence struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Scope    string `gorm:"uniqueIndex;not null;size:60" json:"scope"`
	LastUsed int    `gorm:"not null;default:0" json:"last_used"`
}

// TableName specifies the table name for the CodeSequence model
func (CodeSequence) TableName() string {
	return "code_sequences"
}
