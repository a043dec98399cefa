package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/martagon-studio/workshop-api/models"
)

// RawMaterialReport builds an xlsx workbook listing every raw material with
// its stock situation. The caller owns the returned file and must Close it.
func RawMaterialReport(db *gorm.DB) (*excelize.File, error) {
	var materials []models.RawMaterial
	if err := db.Preload("Family").Preload("Model").
		Order("code").Find(&materials).Error; err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"code", "name", "family", "model", "unit",
		"stock_level", "reorder_level", "unit_cost", "supplier", "low_stock",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}

	row := 2
	for _, m := range materials {
		familyName := ""
		if m.Family != nil {
			familyName = m.Family.Name
		}
		modelName := ""
		if m.Model != nil {
			modelName = m.Model.Name
		}
		values := []interface{}{
			m.Code,
			m.Name,
			familyName,
			modelName,
			m.Unit,
			m.StockLevel.String(),
			m.ReorderLevel.String(),
			m.UnitCost.String(),
			m.Supplier,
			m.IsLowStock(),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write report row: %w", err)
		}
		row++
	}

	return f, nil
}

// ProductReport builds an xlsx workbook listing every finished product with
// its stock situation. The caller owns the returned file and must Close it.
func ProductReport(db *gorm.DB) (*excelize.File, error) {
	var products []models.Product
	if err := db.Preload("Model").
		Order("code").Find(&products).Error; err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"code", "name", "model",
		"stock_level", "reorder_level", "sale_price", "build_time_hours", "low_stock",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}

	row := 2
	for _, p := range products {
		modelName := ""
		if p.Model != nil {
			modelName = p.Model.Name
		}
		values := []interface{}{
			p.Code,
			p.Name,
			modelName,
			p.StockLevel,
			p.ReorderLevel,
			p.SalePrice.String(),
			p.BuildTimeHours,
			p.IsLowStock(),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write report row: %w", err)
		}
		row++
	}

	return f, nil
}
