package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "vaultbook/internal/errors"
	"vaultbook/internal/ledger"
	"vaultbook/internal/models"
	"vaultbook/internal/testutil"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}

func setupService(t *testing.T) (*gorm.DB, *ledger.Store, TransactionServicer) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := ledger.NewStore(db)
	return db, store, NewTransactionService(db, store)
}

func createUser(t *testing.T, store *ledger.Store, name string) {
	t.Helper()
	hash := "not-a-real-hash"
	if _, err := store.CreateUser(name, &hash); err != nil {
		t.Fatalf("failed to create user %q: %v", name, err)
	}
}

func TestDeposit(t *testing.T) {
	t.Run("increases_balance", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		result, err := svc.Deposit("alice", "Main", dec(t, "100.50"), "Salary", "Monthly pay", nil, "", time.Time{})
		testutil.AssertNoError(t, err)
		if result.Message != "Deposit successful" {
			t.Errorf("unexpected message %q", result.Message)
		}
		testutil.AssertDecimalEqual(t, "100.50", result.Amount)

		balance, err := store.VaultBalance("alice", "Main")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, "100.50", balance)
	})

	t.Run("zero_amount", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		_, err := svc.Deposit("alice", "Main", decimal.Zero, "Salary", "pay", nil, "", time.Time{})
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})

	t.Run("negative_amount", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		_, err := svc.Deposit("alice", "Main", dec(t, "-5"), "Salary", "pay", nil, "", time.Time{})
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})

	t.Run("unknown_vault", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		_, err := svc.Deposit("alice", "Savings", dec(t, "10"), "Salary", "pay", nil, "", time.Time{})
		testutil.AssertAppError(t, err, "VAULT_NOT_FOUND")

		// The failed deposit must leave no trace in the log.
		transactions, err := store.ListTransactions("alice")
		testutil.AssertNoError(t, err)
		if len(transactions) != 0 {
			t.Errorf("expected empty transaction log, got %d rows", len(transactions))
		}
	})
}

func TestWithdraw(t *testing.T) {
	t.Run("exact_balance_succeeds", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		_, err := svc.Deposit("alice", "Main", dec(t, "50"), "Salary", "pay", nil, "", time.Time{})
		testutil.AssertNoError(t, err)

		result, err := svc.Withdraw("alice", "Main", dec(t, "50"), "Food", "groceries", nil, "", time.Time{})
		testutil.AssertNoError(t, err)
		if result.Message != "Withdrawal successful" {
			t.Errorf("unexpected message %q", result.Message)
		}

		balance, err := store.VaultBalance("alice", "Main")
		testutil.AssertNoError(t, err)
		if !balance.IsZero() {
			t.Errorf("expected zero balance, got %s", balance)
		}
	})

	t.Run("one_cent_over_fails", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		_, err := svc.Deposit("alice", "Main", dec(t, "50"), "Salary", "pay", nil, "", time.Time{})
		testutil.AssertNoError(t, err)

		_, err = svc.Withdraw("alice", "Main", dec(t, "50.01"), "Food", "groceries", nil, "", time.Time{})
		testutil.AssertAppError(t, err, "INSUFFICIENT_FUNDS")

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			t.Fatalf("expected AppError, got %T", err)
		}
		if appErr.Message != "Insufficient funds. Balance: 50.00, Required: 50.01" {
			t.Errorf("unexpected message %q", appErr.Message)
		}

		// Balance untouched by the failed withdrawal.
		balance, err := store.VaultBalance("alice", "Main")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, "50", balance)
	})

	t.Run("decimal_round_trip", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		_, err := svc.Deposit("alice", "Main", dec(t, "10.10"), "Salary", "pay", nil, "", time.Time{})
		testutil.AssertNoError(t, err)
		_, err = svc.Withdraw("alice", "Main", dec(t, "10.10"), "Food", "snacks", nil, "", time.Time{})
		testutil.AssertNoError(t, err)

		balance, err := store.VaultBalance("alice", "Main")
		testutil.AssertNoError(t, err)
		if !balance.IsZero() {
			t.Errorf("expected exactly zero after 10.10 round trip, got %s", balance)
		}
	})

	t.Run("records_negative_amount_with_quantity", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		_, err := svc.Deposit("alice", "Main", dec(t, "100"), "Salary", "pay", nil, "", time.Time{})
		testutil.AssertNoError(t, err)

		quantity := 2.0
		_, err = svc.Withdraw("alice", "Main", dec(t, "12.50"), "Food", "Apples", &quantity, "kg", time.Time{})
		testutil.AssertNoError(t, err)

		transactions, err := store.ListTransactions("alice")
		testutil.AssertNoError(t, err)
		last := transactions[len(transactions)-1]
		testutil.AssertDecimalEqual(t, "-12.50", last.Amount)
		if last.Description != "apples" {
			t.Errorf("expected lower-cased description, got %q", last.Description)
		}
		if last.Quantity == nil || *last.Quantity != 2.0 {
			t.Error("expected quantity 2.0 on the log row")
		}
		if last.Unit == nil || last.Unit.Name != "kg" {
			t.Error("expected unit kg on the log row")
		}
	})
}

func TestTransfer(t *testing.T) {
	t.Run("conserves_money", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		_, err := store.CreateVault("alice", "Savings")
		testutil.AssertNoError(t, err)
		_, err = svc.Deposit("alice", "Main", dec(t, "100"), "Salary", "pay", nil, "", time.Time{})
		testutil.AssertNoError(t, err)

		result, err := svc.Transfer("alice", "Main", "alice", "Savings", dec(t, "40"), "rainy day", time.Time{})
		testutil.AssertNoError(t, err)
		if result.Message != "Transfer successful" {
			t.Errorf("unexpected message %q", result.Message)
		}

		mainBalance, err := store.VaultBalance("alice", "Main")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, "60", mainBalance)

		savingsBalance, err := store.VaultBalance("alice", "Savings")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, "40", savingsBalance)

		total, err := store.TotalBalance("alice")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, "100", total)
	})

	t.Run("writes_one_row_per_side", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")
		createUser(t, store, "bob")

		_, err := svc.Deposit("alice", "Main", dec(t, "100"), "Salary", "pay", nil, "", time.Time{})
		testutil.AssertNoError(t, err)
		_, err = svc.Transfer("alice", "Main", "bob", "Main", dec(t, "25"), "", time.Time{})
		testutil.AssertNoError(t, err)

		aliceTx, err := store.ListTransactions("alice")
		testutil.AssertNoError(t, err)
		bobTx, err := store.ListTransactions("bob")
		testutil.AssertNoError(t, err)

		if len(aliceTx) != 2 || len(bobTx) != 1 {
			t.Fatalf("expected 2 rows for alice and 1 for bob, got %d and %d", len(aliceTx), len(bobTx))
		}

		outgoing := aliceTx[len(aliceTx)-1]
		testutil.AssertDecimalEqual(t, "-25", outgoing.Amount)
		if outgoing.Type != models.TransactionTypeTransfer {
			t.Errorf("expected Transfer type, got %q", outgoing.Type)
		}
		// Blank reason falls back to the default.
		if outgoing.Description != "transfering money" {
			t.Errorf("unexpected default reason %q", outgoing.Description)
		}
		if outgoing.Category == nil || outgoing.Category.Name != models.FallbackCategoryName {
			t.Error("expected fallback category on transfer rows")
		}

		testutil.AssertDecimalEqual(t, "25", bobTx[0].Amount)
	})

	t.Run("same_vault_rejected", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		_, err := svc.Deposit("alice", "Main", dec(t, "100"), "Salary", "pay", nil, "", time.Time{})
		testutil.AssertNoError(t, err)

		// Case differences do not make it a different vault.
		_, err = svc.Transfer("alice", "main", "ALICE", "Main", dec(t, "10"), "", time.Time{})
		testutil.AssertAppError(t, err, "SAME_VAULT_TRANSFER")
	})

	t.Run("same_vault_name_different_user_allowed", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")
		createUser(t, store, "bob")

		_, err := svc.Deposit("alice", "Main", dec(t, "100"), "Salary", "pay", nil, "", time.Time{})
		testutil.AssertNoError(t, err)

		_, err = svc.Transfer("alice", "Main", "bob", "Main", dec(t, "10"), "", time.Time{})
		testutil.AssertNoError(t, err)
	})

	t.Run("insufficient_funds", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")
		createUser(t, store, "bob")

		_, err := svc.Transfer("alice", "Main", "bob", "Main", dec(t, "10"), "", time.Time{})
		testutil.AssertAppError(t, err, "INSUFFICIENT_FUNDS")

		// Neither side moved.
		bobBalance, err := store.VaultBalance("bob", "Main")
		testutil.AssertNoError(t, err)
		if !bobBalance.IsZero() {
			t.Errorf("expected untouched destination, got %s", bobBalance)
		}
	})
}

func TestLoan(t *testing.T) {
	t.Run("creates_counterparty_implicitly", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		_, err := svc.Deposit("alice", "Main", dec(t, "100"), "Salary", "pay", nil, "", time.Time{})
		testutil.AssertNoError(t, err)

		result, err := svc.Loan("alice", "Main", "charlie", "Main", dec(t, "30"), "", time.Time{})
		testutil.AssertNoError(t, err)
		if result.Message != "Loan successful" {
			t.Errorf("unexpected message %q", result.Message)
		}

		charlie, err := store.FindUser("charlie")
		testutil.AssertNoError(t, err)
		if charlie.CanLogIn() {
			t.Error("implicitly created counterparty must not be able to log in")
		}

		balance, err := store.VaultBalance("charlie", "Main")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, "30", balance)
	})

	t.Run("aggregate_accumulates", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		_, err := svc.Deposit("alice", "Main", dec(t, "100"), "Salary", "pay", nil, "", time.Time{})
		testutil.AssertNoError(t, err)

		_, err = svc.Loan("alice", "Main", "bob", "Main", dec(t, "30"), "", time.Time{})
		testutil.AssertNoError(t, err)
		_, err = svc.Loan("alice", "Main", "bob", "Main", dec(t, "20"), "", time.Time{})
		testutil.AssertNoError(t, err)

		summaries, err := store.AggregateLoans("alice")
		testutil.AssertNoError(t, err)
		if len(summaries) != 1 {
			t.Fatalf("expected one aggregated loan, got %d", len(summaries))
		}
		testutil.AssertDecimalEqual(t, "50", summaries[0].Amount)
	})

	t.Run("failed_loan_leaves_no_aggregate", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		_, err := svc.Loan("alice", "Main", "bob", "Main", dec(t, "30"), "", time.Time{})
		testutil.AssertAppError(t, err, "INSUFFICIENT_FUNDS")

		summaries, err := store.AggregateLoans("alice")
		testutil.AssertNoError(t, err)
		if len(summaries) != 0 {
			t.Errorf("expected no loan rows after failed loan, got %d", len(summaries))
		}
	})
}
