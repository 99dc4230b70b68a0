package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vaultbook/internal/uuid"
)

// TransactionType represents the kind of a ledger transaction.
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "Deposit"
	TransactionTypeWithdraw TransactionType = "Withdraw"
	TransactionTypeTransfer TransactionType = "Transfer"
	TransactionTypeLoan     TransactionType = "Loan"
)

// ParseTransactionType maps a case-insensitive kind name to its
// TransactionType. The second return value is false for unknown kinds.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch TransactionType(CanonicalName(s)) {
	case TransactionTypeDeposit:
		return TransactionTypeDeposit, true
	case TransactionTypeWithdraw:
		return TransactionTypeWithdraw, true
	case TransactionTypeTransfer:
		return TransactionTypeTransfer, true
	case TransactionTypeLoan:
		return TransactionTypeLoan, true
	}
	return "", false
}

// Transaction is one immutable row of the transaction log. Rows are only
// ever appended: there is no update or delete path anywhere in the codebase.
//
// Amount is signed; the sign encodes direction (positive inflow, negative
// outflow). A transfer produces exactly two rows, one per side, while a
// deposit or withdrawal produces exactly one.
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	Reference   string          `gorm:"uniqueIndex;not null" json:"reference"`
	VaultID     uint            `gorm:"not null" json:"vault_id"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	CategoryID  *uint           `json:"category_id,omitempty"`
	Description string          `gorm:"not null" json:"description"`
	Quantity    *float64        `json:"quantity,omitempty"`
	UnitID      *uint           `json:"unit_id,omitempty"`
	Date        time.Time       `gorm:"not null" json:"date"`

	Vault    Vault     `gorm:"foreignKey:VaultID" json:"vault"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Unit     *Unit     `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
}

// BeforeCreate hook assigns a UUIDv7 reference to new rows.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.Reference == "" {
		t.Reference = uuid.New()
	}
	return nil
}
