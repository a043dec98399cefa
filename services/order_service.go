package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/martagon-studio/workshop-api/models"
)

// SaveLine recomputes the line subtotal, persists the line and refreshes the
// parent order total, all in one transaction so a failed order update can
// never leave a stale total behind a committed line.
func SaveLine(db *gorm.DB, line *models.OrderLine) error {
	return db.Transaction(func(tx *gorm.DB) error {
		line.Subtotal = decimal.NewFromInt(int64(line.Quantity)).Mul(line.UnitPrice)
		if err := tx.Save(line).Error; err != nil {
			return err
		}
		return recalculateTotal(tx, line.OrderID)
	})
}

// DeleteLine removes a line and refreshes the parent order total. Deletions
// trigger the same recomputation as writes; a removed line must not keep
// counting towards the total.
func DeleteLine(db *gorm.DB, line *models.OrderLine) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(line).Error; err != nil {
			return err
		}
		return recalculateTotal(tx, line.OrderID)
	})
}

// RecalculateTotal re-sums the order's lines and persists the result
func RecalculateTotal(db *gorm.DB, orderID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return recalculateTotal(tx, orderID)
	})
}

func recalculateTotal(tx *gorm.DB, orderID uint) error {
	var lines []models.OrderLine
	if err := tx.Where("order_id = ?", orderID).Find(&lines).Error; err != nil {
		return err
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}

	return tx.Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("total", total).Error
}
