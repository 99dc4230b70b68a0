package services

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apperrors "vaultbook/internal/errors"
	"vaultbook/internal/ledger"
)

// Sheet and column layout of the XLSX export. The column order is a
// compatibility surface: external tooling reads these sheets by position.
const (
	transactionsSheet = "Transactions"
	loansSheet        = "Loans"
)

var transactionColumns = []interface{}{"vault", "type", "amount", "category", "description", "quantity", "unit", "date"}
var loanColumns = []interface{}{"from_user", "to_user", "total_amount"}

// TransactionExportRow is one flattened transaction-log row.
type TransactionExportRow struct {
	Vault       string          `json:"vault"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Quantity    *float64        `json:"quantity,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Date        time.Time       `json:"date"`
}

// LedgerExport is the two-table projection of one user's ledger.
type LedgerExport struct {
	Username     string                 `json:"username"`
	Transactions []TransactionExportRow `json:"transactions"`
	Loans        []ledger.LoanSummary   `json:"loans"`
}

// ExportService builds tabular ledger projections and renders them as
// spreadsheets.
type ExportService struct {
	store *ledger.Store
}

// NewExportService creates a new ExportService.
func NewExportService(store *ledger.Store) *ExportService {
	return &ExportService{store: store}
}

// BuildExport flattens a user's full transaction history and aggregated
// loans into the two export tables.
func (s *ExportService) BuildExport(username string) (*LedgerExport, error) {
	user, err := s.store.FindUser(username)
	if err != nil {
		return nil, err
	}

	transactions, err := s.store.ListTransactions(user.Username)
	if err != nil {
		return nil, err
	}

	loans, err := s.store.AggregateLoans(user.Username)
	if err != nil {
		return nil, err
	}

	rows := make([]TransactionExportRow, 0, len(transactions))
	for _, t := range transactions {
		row := TransactionExportRow{
			Vault:       t.Vault.Name,
			Type:        string(t.Type),
			Amount:      t.Amount,
			Description: t.Description,
			Quantity:    t.Quantity,
			Date:        t.Date,
		}
		if t.Category != nil {
			row.Category = t.Category.Name
		}
		if t.Unit != nil {
			row.Unit = t.Unit.Name
		}
		rows = append(rows, row)
	}

	return &LedgerExport{
		Username:     user.Username,
		Transactions: rows,
		Loans:        loans,
	}, nil
}

// WriteXLSX renders the export as a workbook with a Transactions sheet and
// a Loans sheet.
func (s *ExportService) WriteXLSX(export *LedgerExport, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := f.SetSheetRow(transactionsSheet, "A1", &transactionColumns); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i, row := range export.Transactions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		var quantity interface{}
		if row.Quantity != nil {
			quantity = *row.Quantity
		}
		values := []interface{}{
			row.Vault,
			row.Type,
			row.Amount.InexactFloat64(),
			row.Category,
			row.Description,
			quantity,
			row.Unit,
			row.Date.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(transactionsSheet, cell, &values); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	if _, err := f.NewSheet(loansSheet); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := f.SetSheetRow(loansSheet, "A1", &loanColumns); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i, loan := range export.Loans {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		values := []interface{}{loan.Lender, loan.Borrower, loan.Amount.InexactFloat64()}
		if err := f.SetSheetRow(loansSheet, cell, &values); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	if err := f.Write(w); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
