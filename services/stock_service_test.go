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

func setupStockTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(&models.RawMaterial{}, &models.Product{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func TestAdjustRawMaterialStock(t *testing.T) {
	db := setupStockTestDB(t)

	fabric := models.RawMaterial{Code: "01-MARTINA-001", Name: "Grey fabric", Unit: "M", StockLevel: decimal.NewFromInt(100)}
	require.NoError(t, db.Create(&fabric).Error)
	wood := models.RawMaterial{Code: "01-MARTINA-002", Name: "Oak board", Unit: "M2", StockLevel: decimal.NewFromInt(20)}
	require.NoError(t, db.Create(&wood).Error)

	updated, skipped, err := AdjustRawMaterialStock(db, []RawMaterialAdjustment{
		{ID: fabric.ID, Quantity: decimal.NewFromInt(50)},
		{ID: wood.ID, Quantity: decimal.NewFromInt(-10)},
	})
	require.NoError(t, err)

	require.Len(t, updated, 2)
	assert.Empty(t, skipped)
	assert.True(t, updated[0].StockLevel.Equal(decimal.NewFromInt(150)), "got %s", updated[0].StockLevel)
	assert.True(t, updated[1].StockLevel.Equal(decimal.NewFromInt(10)), "got %s", updated[1].StockLevel)
}

func TestAdjustRawMaterialStockSkipsUnknownIDs(t *testing.T) {
	db := setupStockTestDB(t)

	fabric := models.RawMaterial{Code: "01-MARTINA-001", Name: "Grey fabric", Unit: "M", StockLevel: decimal.NewFromInt(100)}
	require.NoError(t, db.Create(&fabric).Error)

	updated, skipped, err := AdjustRawMaterialStock(db, []RawMaterialAdjustment{
		{ID: fabric.ID, Quantity: decimal.NewFromInt(5)},
		{ID: 9999, Quantity: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)

	require.Len(t, updated, 1)
	assert.Equal(t, []uint{9999}, skipped)
	assert.True(t, updated[0].StockLevel.Equal(decimal.NewFromInt(105)))
}

func TestAdjustRawMaterialStockFractionalDelta(t *testing.T) {
	db := setupStockTestDB(t)

	varnish := models.RawMaterial{Code: "02-MARIA-001", Name: "Varnish", Unit: "L", StockLevel: decimal.NewFromFloat(7.25)}
	require.NoError(t, db.Create(&varnish).Error)

	updated, skipped, err := AdjustRawMaterialStock(db, []RawMaterialAdjustment{
		{ID: varnish.ID, Quantity: decimal.NewFromFloat(-2.5)},
	})
	require.NoError(t, err)

	require.Len(t, updated, 1)
	assert.Empty(t, skipped)
	assert.True(t, updated[0].StockLevel.Equal(decimal.NewFromFloat(4.75)), "got %s", updated[0].StockLevel)
}

func TestAdjustProductStock(t *testing.T) {
	db := setupStockTestDB(t)

	chair := models.Product{Code: "MARTINA-001", Name: "Grey chair", StockLevel: 12}
	require.NoError(t, db.Create(&chair).Error)

	updated, skipped, err := AdjustProductStock(db, []ProductAdjustment{
		{ID: chair.ID, Quantity: -4},
		{ID: 4242, Quantity: 10},
	})
	require.NoError(t, err)

	require.Len(t, updated, 1)
	assert.Equal(t, []uint{4242}, skipped)
	assert.Equal(t, 8, updated[0].StockLevel)
}

func TestAdjustProductStockEmptyBatch(t *testing.T) {
	db := setupStockTestDB(t)

	updated, skipped, err := AdjustProductStock(db, nil)
	require.NoError(t, err)
	assert.Empty(t, updated)
	assert.Empty(t, skipped)
}
