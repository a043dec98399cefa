package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/martagon-studio/workshop-api/models"
)

func setupReportTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Family{},
		&models.ProductModel{},
		&models.RawMaterial{},
		&models.Product{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func TestRawMaterialReport(t *testing.T) {
	db := setupReportTestDB(t)

	family := models.Family{Code: "01", Name: "Wood", Active: true}
	require.NoError(t, db.Create(&family).Error)
	model := models.ProductModel{Code: "MARTINA", Name: "Martina", Kind: models.KindRawMaterial, Active: true}
	require.NoError(t, db.Create(&model).Error)

	require.NoError(t, db.Create(&models.RawMaterial{
		FamilyID:     &family.ID,
		ModelID:      &model.ID,
		Code:         "01-MARTINA-001",
		Name:         "Oak board",
		Unit:         "M2",
		StockLevel:   decimal.NewFromInt(3),
		ReorderLevel: decimal.NewFromInt(10),
	}).Error)
	require.NoError(t, db.Create(&models.RawMaterial{
		Code:       "01-MARTINA-002",
		Name:       "Grey fabric",
		Unit:       "M",
		StockLevel: decimal.NewFromInt(40),
	}).Error)

	f, err := RawMaterialReport(db)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per material")

	assert.Equal(t, "code", rows[0][0])
	assert.Equal(t, "01-MARTINA-001", rows[1][0])
	assert.Equal(t, "Oak board", rows[1][1])
	assert.Equal(t, "Wood", rows[1][2])
	assert.Equal(t, "Martina", rows[1][3])
	assert.Equal(t, "M2", rows[1][4])
	assert.Equal(t, "3", rows[1][5])

	// Second material has no catalog refs; names stay blank
	assert.Equal(t, "01-MARTINA-002", rows[2][0])
	assert.Equal(t, "", rows[2][2])
}

func TestProductReport(t *testing.T) {
	db := setupReportTestDB(t)

	model := models.ProductModel{Code: "MARTINA", Name: "Martina", Kind: models.KindFinishedProduct, Active: true}
	require.NoError(t, db.Create(&model).Error)

	require.NoError(t, db.Create(&models.Product{
		ModelID:      &model.ID,
		Code:         "MARTINA-001",
		Name:         "Grey chair",
		StockLevel:   4,
		ReorderLevel: 5,
		SalePrice:    decimal.NewFromFloat(150.50),
	}).Error)

	f, err := ProductReport(db)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "MARTINA-001", rows[1][0])
	assert.Equal(t, "Grey chair", rows[1][1])
	assert.Equal(t, "Martina", rows[1][2])
	assert.Equal(t, "4", rows[1][3])
	assert.Equal(t, "150.5", rows[1][5])
}

func TestRawMaterialReportEmpty(t *testing.T) {
	db := setupReportTestDB(t)

	f, err := RawMaterialReport(db)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
