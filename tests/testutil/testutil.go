// Package testutil carries shared helpers for the integration suites.
package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/martagon-studio/workshop-api/models"
)

// SetTestEnvironment pins GO_ENV to test for the duration of the test so
// config.Load never picks up a development database by accident.
func SetTestEnvironment(t *testing.T) {
	t.Helper()
	t.Setenv("GO_ENV", "test")
}

// OpenTestDB returns a migrated in-memory database holding the full schema
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Family{},
		&models.ProductModel{},
		&models.RawMaterial{},
		&models.Product{},
		&models.Order{},
		&models.OrderLine{},
		&models.CodeSequence{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}
