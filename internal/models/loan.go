package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan is the aggregate ledger of money owed between an ordered pair of
// vaults. The ordered pair is the primary key: repeated loans between the
// same lender and borrower accumulate into one row, but a loan in the
// opposite direction gets its own row and is never netted against this one.
type Loan struct {
	LenderVaultID   uint            `gorm:"primaryKey;autoIncrement:false" json:"lender_vault_id"`
	BorrowerVaultID uint            `gorm:"primaryKey;autoIncrement:false" json:"borrower_vault_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	UpdatedAt       time.Time       `json:"updated_at"`

	LenderVault   Vault `gorm:"foreignKey:LenderVaultID" json:"-"`
	BorrowerVault Vault `gorm:"foreignKey:BorrowerVaultID" json:"-"`
}
