package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/martagon-studio/workshop-api/models"
)

func setupCodegenTestDB(t *testing.T) *gorm.DB {
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
		&models.CodeSequence{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func TestRawMaterialScope(t *testing.T) {
	family := &models.Family{Code: "01"}
	model := &models.ProductModel{Code: "MARTINA"}

	scope, err := RawMaterialScope(family, model)
	require.NoError(t, err)
	assert.Equal(t, "01-MARTINA", scope)

	_, err = RawMaterialScope(nil, model)
	assert.ErrorIs(t, err, ErrMissingCatalogRefs)

	_, err = RawMaterialScope(family, nil)
	assert.ErrorIs(t, err, ErrMissingCatalogRefs)
}

func TestProductScope(t *testing.T) {
	scope, err := ProductScope(&models.ProductModel{Code: "MARTINA"})
	require.NoError(t, err)
	assert.Equal(t, "MARTINA", scope)

	_, err = ProductScope(nil)
	assert.ErrorIs(t, err, ErrMissingCatalogRefs)
}

func TestNextCodeStartsAtOne(t *testing.T) {
	db := setupCodegenTestDB(t)

	code, err := NextCode(db, "01-MARTINA", "raw_materials")
	require.NoError(t, err)
	assert.Equal(t, "01-MARTINA-001", code)
}

func TestNextCodeIncrementsPerScope(t *testing.T) {
	db := setupCodegenTestDB(t)

	first, err := NextCode(db, "01-MARTINA", "raw_materials")
	require.NoError(t, err)
	second, err := NextCode(db, "01-MARTINA", "raw_materials")
	require.NoError(t, err)
	assert.Equal(t, "01-MARTINA-001", first)
	assert.Equal(t, "01-MARTINA-002", second)

	// A different scope has its own independent sequence
	other, err := NextCode(db, "02-MARIA", "raw_materials")
	require.NoError(t, err)
	assert.Equal(t, "02-MARIA-001", other)
}

func TestNextCodeSeedsFromExistingRows(t *testing.T) {
	db := setupCodegenTestDB(t)

	// Pre-existing materials without a counter row, e.g. migrated data
	for _, code := range []string{"01-MARTINA-003", "01-MARTINA-007", "01-MARTINA-001"} {
		require.NoError(t, db.Create(&models.RawMaterial{
			Code: code,
			Name: "seeded",
			Unit: "KG",
		}).Error)
	}

	code, err := NextCode(db, "01-MARTINA", "raw_materials")
	require.NoError(t, err)
	assert.Equal(t, "01-MARTINA-008", code)
}

func TestNextCodeStaysNumericPastPadding(t *testing.T) {
	db := setupCodegenTestDB(t)

	// Once the suffix outgrows its zero padding, the lexicographic max
	// ("999") diverges from the numeric max (1000). The sequence must keep
	// counting numerically.
	for _, code := range []string{"MARTINA-999", "MARTINA-1000"} {
		require.NoError(t, db.Create(&models.Product{
			Code: code,
			Name: "seeded",
		}).Error)
	}

	code, err := NextCode(db, "MARTINA", "products")
	require.NoError(t, err)
	assert.Equal(t, "MARTINA-1001", code)
}

func TestNextCodeIgnoresOtherScopes(t *testing.T) {
	db := setupCodegenTestDB(t)

	require.NoError(t, db.Create(&models.RawMaterial{
		Code: "01-MARTINA-005",
		Name: "seeded",
		Unit: "KG",
	}).Error)

	// "01-MART" is a prefix of "01-MARTINA" but a different scope
	code, err := NextCode(db, "01-MART", "raw_materials")
	require.NoError(t, err)
	assert.Equal(t, "01-MART-001", code)
}

func TestNextCodeRollsBackWithTransaction(t *testing.T) {
	db := setupCodegenTestDB(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		code, err := NextCode(tx, "01-MARTINA", "raw_materials")
		require.NoError(t, err)
		assert.Equal(t, "01-MARTINA-001", code)
		return gorm.ErrInvalidData // force rollback
	})
	require.Error(t, err)

	// The failed insert must not burn a sequence number
	code, err := NextCode(db, "01-MARTINA", "raw_materials")
	require.NoError(t, err)
	assert.Equal(t, "01-MARTINA-001", code)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(gorm.ErrRecordNotFound))
	assert.True(t, IsUniqueViolation(assertError("UNIQUE constraint failed: families.code")))
	assert.True(t, IsUniqueViolation(assertError(`duplicate key value violates unique constraint "idx_customers_tax_id"`)))
}

type assertError string

func (e assertError) Error() string { return string(e) }
