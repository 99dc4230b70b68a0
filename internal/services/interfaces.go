package services

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionResult reports a successful ledger operation to the caller.
// Failures are reported as *errors.AppError values with codes from the
// closed taxonomy, so the two together form the operation's tagged result.
type TransactionResult struct {
	Amount  decimal.Decimal `json:"amount"`
	Message string          `json:"message"`
}

// TransactionServicer defines the contract for the four user-facing ledger
// operations. Implementations validate policy (positive amounts, sufficient
// funds, no self-same-vault transfer) and keep balance mutations and the
// transaction log consistent within one storage transaction.
type TransactionServicer interface {
	Deposit(username, vault string, amount decimal.Decimal, category, description string, quantity *float64, unit string, date time.Time) (*TransactionResult, error)
	Withdraw(username, vault string, amount decimal.Decimal, category, description string, quantity *float64, unit string, date time.Time) (*TransactionResult, error)
	Transfer(fromUser, fromVault, toUser, toVault string, amount decimal.Decimal, reason string, date time.Time) (*TransactionResult, error)
	Loan(fromUser, fromVault, toUser, toVault string, amount decimal.Decimal, reason string, date time.Time) (*TransactionResult, error)
}

// LedgerView is the read-only slice of the ledger store the bulk validator
// depends on. It never exposes a mutation.
type LedgerView interface {
	VaultBalances(username string) (map[string]decimal.Decimal, error)
	VaultExists(username, vaultName string) (bool, error)
	UserExists(username string) (bool, error)
	ListCategories() ([]string, error)
	ListUnits() ([]string, error)
}
