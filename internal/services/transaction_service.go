package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "vaultbook/internal/errors"
	"vaultbook/internal/ledger"
	"vaultbook/internal/models"
)

// transactionService composes ledger store primitives into the four
// user-facing operations. The store moves money without judgment; this
// layer owns the policy.
type transactionService struct {
	db    *gorm.DB
	store *ledger.Store
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, store *ledger.Store) TransactionServicer {
	return &transactionService{db: db, store: store}
}

// Deposit credits a vault and records a Deposit transaction with a positive
// amount. Inflows must be strictly positive.
func (s *transactionService) Deposit(username, vault string, amount decimal.Decimal, category, description string, quantity *float64, unit string, date time.Time) (*TransactionResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.ErrInvalidAmount
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.store.Credit(tx, username, vault, amount); err != nil {
			return err
		}
		_, err := s.store.RecordTransaction(tx, ledger.TransactionRecord{
			Username:    username,
			Vault:       vault,
			Type:        models.TransactionTypeDeposit,
			Amount:      amount,
			Category:    category,
			Description: description,
			Quantity:    quantity,
			Unit:        unit,
			Date:        date,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return &TransactionResult{Amount: amount, Message: "Deposit successful"}, nil
}

// Withdraw debits a vault and records a Withdraw transaction with a
// negative amount. The sufficiency check shares the storage transaction
// with the debit it guards.
func (s *transactionService) Withdraw(username, vault string, amount decimal.Decimal, category, description string, quantity *float64, unit string, date time.Time) (*TransactionResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.ErrInvalidAmount
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		balance, err := s.store.Balance(tx, username, vault)
		if err != nil {
			return err
		}
		if balance.LessThan(amount) {
			return insufficientFunds(balance, amount)
		}
		if err := s.store.Debit(tx, username, vault, amount); err != nil {
			return err
		}
		_, err = s.store.RecordTransaction(tx, ledger.TransactionRecord{
			Username:    username,
			Vault:       vault,
			Type:        models.TransactionTypeWithdraw,
			Amount:      amount.Neg(),
			Category:    category,
			Description: description,
			Quantity:    quantity,
			Unit:        unit,
			Date:        date,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return &TransactionResult{Amount: amount, Message: "Withdrawal successful"}, nil
}

// Transfer moves money between two vaults and records one transaction row
// per side. Debit, credit, and both rows are one storage transaction: a
// reader must never observe money that left the source without landing at
// the destination.
func (s *transactionService) Transfer(fromUser, fromVault, toUser, toVault string, amount decimal.Decimal, reason string, date time.Time) (*TransactionResult, error) {
	var result *TransactionResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.transferTx(tx, fromUser, fromVault, toUser, toVault, amount, reason, date, models.TransactionTypeTransfer)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Loan performs a transfer tagged as a Loan and then updates the loan
// aggregate for the ordered (lender vault, borrower vault) pair, all within
// one storage transaction: the aggregate is bookkeeping strictly downstream
// of a successful money movement. A destination user who does not exist yet
// is created implicitly as a loan-only counterparty.
func (s *transactionService) Loan(fromUser, fromVault, toUser, toVault string, amount decimal.Decimal, reason string, date time.Time) (*TransactionResult, error) {
	exists, err := s.store.UserExists(toUser)
	if err != nil {
		return nil, err
	}
	if !exists {
		if _, err := s.store.CreateUser(toUser, nil); err != nil {
			return nil, err
		}
	}

	var result *TransactionResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.transferTx(tx, fromUser, fromVault, toUser, toVault, amount, reason, date, models.TransactionTypeLoan)
		if txErr != nil {
			return txErr
		}
		return s.store.RecordLoan(tx, fromUser, fromVault, toUser, toVault, amount)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// transferTx runs the shared transfer/loan sequence inside the caller's
// storage transaction: validate, debit source, credit destination, append
// both log rows. The category is fixed to the catch-all bucket because it
// is not user-selectable for these kinds.
func (s *transactionService) transferTx(tx *gorm.DB, fromUser, fromVault, toUser, toVault string, amount decimal.Decimal, reason string, date time.Time, kind models.TransactionType) (*TransactionResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.ErrInvalidAmount
	}
	if models.CanonicalName(fromUser) == models.CanonicalName(toUser) &&
		models.CanonicalName(fromVault) == models.CanonicalName(toVault) {
		return nil, apperrors.ErrSameVaultTransfer
	}

	balance, err := s.store.Balance(tx, fromUser, fromVault)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(amount) {
		return nil, insufficientFunds(balance, amount)
	}

	if reason == "" {
		reason = fmt.Sprintf("%sing money", kind)
	}

	if err := s.store.Debit(tx, fromUser, fromVault, amount); err != nil {
		return nil, err
	}
	if err := s.store.Credit(tx, toUser, toVault, amount); err != nil {
		return nil, err
	}

	if _, err := s.store.RecordTransaction(tx, ledger.TransactionRecord{
		Username:    fromUser,
		Vault:       fromVault,
		Type:        kind,
		Amount:      amount.Neg(),
		Category:    models.FallbackCategoryName,
		Description: reason,
		Date:        date,
	}); err != nil {
		return nil, err
	}
	if _, err := s.store.RecordTransaction(tx, ledger.TransactionRecord{
		Username:    toUser,
		Vault:       toVault,
		Type:        kind,
		Amount:      amount,
		Category:    models.FallbackCategoryName,
		Description: reason,
		Date:        date,
	}); err != nil {
		return nil, err
	}

	return &TransactionResult{Amount: amount, Message: fmt.Sprintf("%s successful", kind)}, nil
}

// insufficientFunds builds the INSUFFICIENT_FUNDS failure with both numbers
// formatted to two decimals, so the message is directly presentable.
func insufficientFunds(balance, required decimal.Decimal) *apperrors.AppError {
	return apperrors.WithMessage(apperrors.ErrInsufficientFunds,
		fmt.Sprintf("Insufficient funds. Balance: %s, Required: %s", balance.StringFixed(2), required.StringFixed(2)))
}
