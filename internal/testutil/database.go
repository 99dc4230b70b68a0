// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"testing"

	"vaultbook/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// allModels is the list of all GORM models to auto-migrate in tests.
var allModels = []interface{}{
	&models.User{},
	&models.Vault{},
	&models.Category{},
	&models.Unit{},
	&models.Transaction{},
	&models.Loan{},
}

// SetupTestDB creates an in-memory SQLite database with all models migrated
// and the default categories and units seeded.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	for _, name := range models.DefaultCategories {
		if err := db.Where(models.Category{Name: name}).FirstOrCreate(&models.Category{Name: name}).Error; err != nil {
			t.Fatalf("failed to seed category %q: %v", name, err)
		}
	}
	for _, name := range models.DefaultUnits {
		if err := db.Where(models.Unit{Name: name}).FirstOrCreate(&models.Unit{Name: name}).Error; err != nil {
			t.Fatalf("failed to seed unit %q: %v", name, err)
		}
	}

	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
