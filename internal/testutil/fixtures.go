package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"vaultbook/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// UniqueUsername returns a canonical username no other fixture has used.
func UniqueUsername() string {
	return models.CanonicalName(fmt.Sprintf("user%d", nextID()))
}

// CreateTestUser creates a user with a hashed password, a unique canonical
// username, and the mandatory Main vault.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithName(t, db, UniqueUsername())
}

// CreateTestUserWithName creates a user with the given name. The name is
// canonicalized before storage, matching the store boundary. Every user
// gets a Main vault so the fixture never violates the vault invariant.
func CreateTestUserWithName(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	credential := string(hash)

	user := &models.User{
		Username: models.CanonicalName(name),
		Password: &credential,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	vault := &models.Vault{
		UserID:  user.ID,
		Name:    models.MainVaultName,
		Balance: decimal.Zero,
	}
	if err := db.Create(vault).Error; err != nil {
		t.Fatalf("failed to create Main vault: %v", err)
	}

	return user
}

// CreateTestVault creates a named vault with the given starting balance.
func CreateTestVault(t *testing.T, db *gorm.DB, userID uint, name, balance string) *models.Vault {
	t.Helper()

	amount, err := decimal.NewFromString(balance)
	if err != nil {
		t.Fatalf("invalid balance %q: %v", balance, err)
	}

	vault := &models.Vault{
		UserID:  userID,
		Name:    models.CanonicalName(name),
		Balance: amount,
	}
	if err := db.Create(vault).Error; err != nil {
		t.Fatalf("failed to create test vault: %v", err)
	}
	return vault
}

// FundVault sets the balance of a user's vault directly, bypassing the
// transaction log. Useful for arranging balances in tests.
func FundVault(t *testing.T, db *gorm.DB, userID uint, vaultName, balance string) {
	t.Helper()

	amount, err := decimal.NewFromString(balance)
	if err != nil {
		t.Fatalf("invalid balance %q: %v", balance, err)
	}

	result := db.Model(&models.Vault{}).
		Where("user_id = ? AND name = ?", userID, models.CanonicalName(vaultName)).
		Update("balance", amount)
	if result.Error != nil {
		t.Fatalf("failed to fund vault: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		t.Fatalf("no vault %q for user %d", vaultName, userID)
	}
}
