package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/martagon-studio/workshop-api/models"
)

// RawMaterialAdjustment is one row of a bulk raw-material stock adjustment.
// Quantity is a signed delta.
type RawMaterialAdjustment struct {
	ID       uint            `json:"id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ProductAdjustment is one row of a bulk product stock adjustment. Finished
// products are counted in whole units.
type ProductAdjustment struct {
	ID       uint `json:"id" binding:"required"`
	Quantity int  `json:"quantity"`
}

// AdjustRawMaterialStock applies each delta to the matching raw material with
// an atomic in-database increment, so two concurrent batches touching the
// same row cannot lose an update. Unknown ids never fail the batch; they are
// reported back in skipped.
func AdjustRawMaterialStock(db *gorm.DB, items []RawMaterialAdjustment) (updated []models.RawMaterial, skipped []uint, err error) {
	for _, item := range items {
		res := db.Model(&models.RawMaterial{}).
			Where("id = ?", item.ID).
			Update("stock_level", gorm.Expr("stock_level + ?", item.Quantity))
		if res.Error != nil {
			return nil, nil, res.Error
		}
		if res.RowsAffected == 0 {
			skipped = append(skipped, item.ID)
			continue
		}

		var material models.RawMaterial
		if err := db.First(&material, item.ID).Error; err != nil {
			return nil, nil, err
		}
		updated = append(updated, material)
	}
	return updated, skipped, nil
}

// AdjustProductStock applies each delta to the matching product. Same
// semantics as AdjustRawMaterialStock.
func AdjustProductStock(db *gorm.DB, items []ProductAdjustment) (updated []models.Product, skipped []uint, err error) {
	for _, item := range items {
		res := db.Model(&models.Product{}).
			Where("id = ?", item.ID).
			Update("stock_level", gorm.Expr("stock_level + ?", item.Quantity))
		if res.Error != nil {
			return nil, nil, res.Error
		}
		if res.RowsAffected == 0 {
			skipped = append(skipped, item.ID)
			continue
		}

		var product models.Product
		if err := db.First(&product, item.ID).Error; err != nil {
			return nil, nil, err
		}
		updated = append(updated, product)
	}
	return updated, skipped, nil
}
