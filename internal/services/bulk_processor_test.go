package services

import (
	"testing"
	"time"

	"vaultbook/internal/testutil"
)

func TestBulkProcess(t *testing.T) {
	t.Run("applies_rows_in_order", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")
		createUser(t, store, "bob")

		rows := []TransactionRow{
			{RowNumber: 1, Type: "deposit", Vault: "Main", Amount: amount(t, "100"), Category: "Salary", Description: "pay"},
			{RowNumber: 2, Type: "withdraw", Vault: "Main", Amount: amount(t, "30"), Category: "Food", Description: "shop"},
			{RowNumber: 3, Type: "transfer", Vault: "Main", Amount: amount(t, "20"), Description: "rent", ToUser: "bob", ToVault: "Main"},
		}

		succeeded, failed := NewBulkProcessor(svc).Process(rows, "alice")
		if succeeded != 3 || failed != 0 {
			t.Fatalf("expected 3 succeeded / 0 failed, got %d/%d", succeeded, failed)
		}

		aliceBalance, err := store.VaultBalance("alice", "Main")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, "50", aliceBalance)

		bobBalance, err := store.VaultBalance("bob", "Main")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, "20", bobBalance)
	})

	t.Run("failed_row_does_not_abort_batch", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		rows := []TransactionRow{
			{RowNumber: 1, Type: "deposit", Vault: "Main", Amount: amount(t, "10"), Category: "Salary", Description: "pay"},
			{RowNumber: 2, Type: "withdraw", Vault: "Main", Amount: amount(t, "999"), Category: "Food", Description: "too much"},
			{RowNumber: 3, Type: "deposit", Vault: "Main", Amount: amount(t, "5"), Category: "Salary", Description: "bonus"},
		}

		succeeded, failed := NewBulkProcessor(svc).Process(rows, "alice")
		if succeeded != 2 || failed != 1 {
			t.Fatalf("expected 2 succeeded / 1 failed, got %d/%d", succeeded, failed)
		}

		// Rows 1 and 3 committed; the failed row 2 left nothing behind.
		balance, err := store.VaultBalance("alice", "Main")
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, "15", balance)
	})

	t.Run("skips_empty_rows", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		rows := []TransactionRow{
			{RowNumber: 1},
			{RowNumber: 2, Type: "deposit", Vault: "Main", Amount: amount(t, "10"), Category: "Salary", Description: "pay"},
			{RowNumber: 3},
		}

		succeeded, failed := NewBulkProcessor(svc).Process(rows, "alice")
		if succeeded != 1 || failed != 0 {
			t.Fatalf("expected 1 succeeded / 0 failed, got %d/%d", succeeded, failed)
		}
	})

	t.Run("unknown_type_fails_row", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		rows := []TransactionRow{
			{RowNumber: 1, Type: "gift", Vault: "Main", Amount: amount(t, "10"), Category: "Salary", Description: "x"},
		}

		succeeded, failed := NewBulkProcessor(svc).Process(rows, "alice")
		if succeeded != 0 || failed != 1 {
			t.Fatalf("expected 0 succeeded / 1 failed, got %d/%d", succeeded, failed)
		}
	})

	t.Run("nil_amount_fails_row", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		rows := []TransactionRow{
			{RowNumber: 1, Type: "deposit", Vault: "Main", Description: "no amount", Category: "Salary"},
		}

		succeeded, failed := NewBulkProcessor(svc).Process(rows, "alice")
		if succeeded != 0 || failed != 1 {
			t.Fatalf("expected 0 succeeded / 1 failed, got %d/%d", succeeded, failed)
		}
	})

	t.Run("row_date_is_applied", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		rows := []TransactionRow{
			{RowNumber: 1, Type: "deposit", Vault: "Main", Amount: amount(t, "10"), Category: "Salary", Description: "pay", Date: "2026-03-15"},
		}

		succeeded, failed := NewBulkProcessor(svc).Process(rows, "alice")
		if succeeded != 1 || failed != 0 {
			t.Fatalf("expected 1 succeeded / 0 failed, got %d/%d", succeeded, failed)
		}

		transactions, err := store.ListTransactions("alice")
		testutil.AssertNoError(t, err)
		if len(transactions) != 1 {
			t.Fatalf("expected one log row, got %d", len(transactions))
		}
		got := transactions[0].Date
		want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local)
		if got.Year() != want.Year() || got.Month() != want.Month() || got.Day() != want.Day() {
			t.Errorf("expected date on 2026-03-15, got %s", got)
		}
	})
}
