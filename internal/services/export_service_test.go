package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"vaultbook/internal/testutil"
)

func TestBuildExport(t *testing.T) {
	t.Run("flattens_history_and_loans", func(t *testing.T) {
		db, store, svc := setupService(t)
		defer testutil.TeardownTestDB(t, db)
		createUser(t, store, "alice")

		_, err := svc.Deposit("alice", "Main", dec(t, "100"), "Salary", "pay", nil, "", time.Time{})
		testutil.AssertNoError(t, err)
		_, err = svc.Withdraw("alice", "Main", dec(t, "25.50"), "Food", "groceries", nil, "", time.Time{})
		testutil.AssertNoError(t, err)
		_, err = svc.Loan("alice", "Main", "bob", "Main", dec(t, "30"), "", time.Time{})
		testutil.AssertNoError(t, err)

		exportSvc := NewExportService(store)
		export, err := exportSvc.BuildExport("alice")
		testutil.AssertNoError(t, err)

		if export.Username != "Alice" {
			t.Errorf("expected username Alice, got %q", export.Username)
		}
		// Deposit, withdraw, and the outgoing loan side.
		if len(export.Transactions) != 3 {
			t.Fatalf("expected 3 transaction rows, got %d", len(export.Transactions))
		}
		if export.Transactions[0].Vault != "Main" || export.Transactions[0].Type != "Deposit" {
			t.Errorf("unexpected first row: %+v", export.Transactions[0])
		}
		testutil.AssertDecimalEqual(t, "-25.50", export.Transactions[1].Amount)
		if export.Transactions[1].Category != "Food" {
			t.Errorf("expected category Food, got %q", export.Transactions[1].Category)
		}

		if len(export.Loans) != 1 {
			t.Fatalf("expected 1 loan row, got %d", len(export.Loans))
		}
		if export.Loans[0].Lender != "Alice" || export.Loans[0].Borrower != "Bob" {
			t.Errorf("unexpected loan pair: %+v", export.Loans[0])
		}
		testutil.AssertDecimalEqual(t, "30", export.Loans[0].Amount)
	})

	t.Run("unknown_user", func(t *testing.T) {
		db, store, _ := setupService(t)
		defer testutil.TeardownTestDB(t, db)

		_, err := NewExportService(store).BuildExport("nobody")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestWriteXLSX(t *testing.T) {
	db, store, svc := setupService(t)
	defer testutil.TeardownTestDB(t, db)
	createUser(t, store, "alice")

	_, err := svc.Deposit("alice", "Main", dec(t, "100"), "Salary", "pay", nil, "", time.Time{})
	testutil.AssertNoError(t, err)
	_, err = svc.Loan("alice", "Main", "bob", "Main", dec(t, "30"), "", time.Time{})
	testutil.AssertNoError(t, err)

	exportSvc := NewExportService(store)
	export, err := exportSvc.BuildExport("alice")
	testutil.AssertNoError(t, err)

	var buf bytes.Buffer
	testutil.AssertNoError(t, exportSvc.WriteXLSX(export, &buf))

	workbook, err := excelize.OpenReader(&buf)
	testutil.AssertNoError(t, err)
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Transactions" || sheets[1] != "Loans" {
		t.Fatalf("expected [Transactions Loans] sheets, got %v", sheets)
	}

	header, err := workbook.GetCellValue("Transactions", "A1")
	testutil.AssertNoError(t, err)
	if header != "vault" {
		t.Errorf("expected header cell 'vault', got %q", header)
	}

	vault, err := workbook.GetCellValue("Transactions", "A2")
	testutil.AssertNoError(t, err)
	if vault != "Main" {
		t.Errorf("expected first data row vault Main, got %q", vault)
	}

	lender, err := workbook.GetCellValue("Loans", "A2")
	testutil.AssertNoError(t, err)
	if lender != "Alice" {
		t.Errorf("expected loan lender Alice, got %q", lender)
	}
}
