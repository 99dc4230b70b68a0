package testutil_test

import (
	"testing"

	"vaultbook/internal/errors"
	"vaultbook/internal/models"
	"vaultbook/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "vaults", "categories", "units", "transactions", "loans"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}

	// Defaults are seeded.
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count categories: %v", err)
	}
	if count != int64(len(models.DefaultCategories)) {
		t.Errorf("expected %d seeded categories, got %d", len(models.DefaultCategories), count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == 0 {
		t.Fatal("user should have a non-zero ID")
	}
	if !user.CanLogIn() {
		t.Error("fixture user should hold a credential")
	}

	// Every fixture user gets a Main vault.
	var vault models.Vault
	if err := db.Where("user_id = ? AND name = ?", user.ID, models.MainVaultName).First(&vault).Error; err != nil {
		t.Fatalf("expected Main vault for fixture user: %v", err)
	}
	if !vault.Balance.IsZero() {
		t.Errorf("expected zero starting balance, got %s", vault.Balance)
	}

	savings := testutil.CreateTestVault(t, db, user.ID, "savings", "25.50")
	if savings.Name != "Savings" {
		t.Errorf("expected canonical vault name Savings, got %q", savings.Name)
	}

	testutil.FundVault(t, db, user.ID, "Main", "100")
	if err := db.Where("user_id = ? AND name = ?", user.ID, models.MainVaultName).First(&vault).Error; err != nil {
		t.Fatalf("failed to reload vault: %v", err)
	}
	testutil.AssertDecimalEqual(t, "100", vault.Balance)
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrVaultNotFound, "custom message")
	testutil.AssertAppError(t, err, "VAULT_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
