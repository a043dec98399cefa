package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses
const (
	StatusPending      = "pending"
	StatusInProduction = "in_production"
	StatusProduced     = "produced"
	StatusDelivered    = "delivered"
	StatusCancelled    = "cancelled"
)

// OrderStatuses lists every valid order status
var OrderStatuses = []string{
	StatusPending,
	StatusInProduction,
	StatusProduced,
	StatusDelivered,
	StatusCancelled,
}

// ValidStatus reports whether s is a supported order status
func ValidStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Order represents a customer order. Total is derived from the owned lines
// and must never be written directly by callers.
type Order struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	OrderNumber       string          `gorm:"uniqueIndex;not null;size:20" json:"order_number"`
	CustomerID        uint            `gorm:"not null;index" json:"customer_id"`
	Customer          Customer        `gorm:"foreignKey:CustomerID" json:"customer"`
	OrderDate         time.Time       `gorm:"not null" json:"order_date"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery"`
	Status            string          `gorm:"not null;default:'pending'" json:"status"`
	Notes             string          `json:"notes"`
	Total             decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total"`
	Lines             []OrderLine     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderLine represents a single product position on an order. Subtotal is
// derived (quantity x unit price) and recomputed on every write.
type OrderLine struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	Product     *Product        `gorm:"foreignKey:ProductID" json:"-"`
	ProductName string          `gorm:"-" json:"product_name"`
	ProductCode string          `gorm:"-" json:"product_code"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"subtotal"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the OrderLine model
func (OrderLine) TableName() string {
	return "order_lines"
}

// AfterFind copies the denormalized product name and code when the product
// relation was preloaded
func (l *OrderLine) AfterFind(tx *gorm.DB) error {
	if l.Product != nil {
		l.ProductName = l.Product.Name
		l.ProductCode = l.Product.Code
	}
	return nil
}
