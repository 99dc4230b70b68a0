package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MainVaultName is the vault every user owns. It is created atomically with
// the user and can never be deleted.
const MainVaultName = "Main"

// Vault is a named sub-account holding a signed balance.
//
// Balance is a fixed-point decimal, never a binary float: balances
// accumulate indefinitely and all arithmetic on them happens in Go through
// the store's credit/debit primitives, which are the only writers.
type Vault struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	UserID    uint            `gorm:"not null;uniqueIndex:idx_vault_user_name" json:"user_id"`
	Name      string          `gorm:"not null;uniqueIndex:idx_vault_user_name" json:"name"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"balance"`

	User         *User         `gorm:"foreignKey:UserID" json:"-"`
	Transactions []Transaction `gorm:"foreignKey:VaultID" json:"transactions,omitempty"`
}
