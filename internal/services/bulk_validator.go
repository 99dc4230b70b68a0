package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vaultbook/internal/models"
)

// RowErrorKind identifies a class of bulk-entry validation failure.
type RowErrorKind string

const (
	RowErrorEmptyBatch           RowErrorKind = "empty_batch"
	RowErrorInvalidAmount        RowErrorKind = "invalid_amount"
	RowErrorInsufficientFunds    RowErrorKind = "insufficient_funds"
	RowErrorInvalidVault         RowErrorKind = "invalid_vault"
	RowErrorInvalidCategory      RowErrorKind = "invalid_category"
	RowErrorInvalidUnit          RowErrorKind = "invalid_unit"
	RowErrorInvalidDate          RowErrorKind = "invalid_date"
	RowErrorMissingRequiredField RowErrorKind = "missing_required_field"
	RowErrorSameVaultTransfer    RowErrorKind = "same_vault_transfer"
	RowErrorInvalidUser          RowErrorKind = "invalid_user"
)

// bulkDateLayout is the only accepted date format for bulk-entry rows.
const bulkDateLayout = "2006-01-02"

// TransactionRow is an in-memory, possibly incomplete draft of one ledger
// operation, as staged by a bulk-entry grid. It carries every field any
// operation kind might need; nothing here is persisted.
type TransactionRow struct {
	RowNumber   int              `json:"row_number"`
	Type        string           `json:"transaction_type"`
	Vault       string           `json:"vault"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Quantity    *float64         `json:"quantity,omitempty"`
	Unit        string           `json:"unit,omitempty"`
	ToUser      string           `json:"to_user,omitempty"`
	ToVault     string           `json:"to_vault,omitempty"`
	Date        string           `json:"date,omitempty"`
}

// IsEmpty reports whether the row carries no data at all: no type, no
// vault, no amount, no category, and no description. Fully empty rows are
// discarded, not flagged.
func (r *TransactionRow) IsEmpty() bool {
	return r.Type == "" &&
		r.Vault == "" &&
		r.Amount == nil &&
		r.Category == "" &&
		r.Description == ""
}

// RowError is one validation failure, keyed by row and field.
type RowError struct {
	Row     int          `json:"row"`
	Field   string       `json:"field"`
	Kind    RowErrorKind `json:"kind"`
	Message string       `json:"message"`
}

// ValidationReport aggregates the outcome of validating one batch.
type ValidationReport struct {
	IsValid    bool       `json:"is_valid"`
	Errors     []RowError `json:"errors"`
	ValidCount int        `json:"valid_count"`
	TotalCount int        `json:"total_count"`
}

// ErrorSummary returns a human-readable one-line summary.
func (r *ValidationReport) ErrorSummary() string {
	if r.IsValid {
		return fmt.Sprintf("All %d transactions are valid", r.TotalCount)
	}
	return fmt.Sprintf("Found %d errors in %d transactions", len(r.Errors), r.TotalCount)
}

// BulkValidator statically validates a batch of proposed rows against a
// snapshot of the user's vault balances, without mutating anything.
//
// The snapshot is taken once, then replayed in-memory strictly in input
// order: row 3 sees the simulated effect of rows 1 and 2. Balances are
// never re-read from storage mid-batch — doing so would both miss earlier
// rows' effects and race against concurrent mutation.
type BulkValidator struct {
	view LedgerView
}

// NewBulkValidator creates a validator over a read-only ledger view.
func NewBulkValidator(view LedgerView) *BulkValidator {
	return &BulkValidator{view: view}
}

// Validate checks every row of the batch for the current user and returns
// a structured report. It returns a non-nil error only when the ledger view
// itself fails; business failures always land in the report.
func (v *BulkValidator) Validate(rows []TransactionRow, currentUser string) (*ValidationReport, error) {
	nonEmpty := make([]TransactionRow, 0, len(rows))
	for _, row := range rows {
		if !row.IsEmpty() {
			nonEmpty = append(nonEmpty, row)
		}
	}

	if len(nonEmpty) == 0 {
		return &ValidationReport{
			IsValid: false,
			Errors: []RowError{{
				Row:     0,
				Field:   "batch",
				Kind:    RowErrorEmptyBatch,
				Message: "No transactions to process",
			}},
		}, nil
	}

	// One snapshot for the whole batch. VaultBalances already returns a
	// fresh map, safe to mutate as the running balance.
	running, err := v.view.VaultBalances(currentUser)
	if err != nil {
		return nil, err
	}

	categories, err := nameSet(v.view.ListCategories)
	if err != nil {
		return nil, err
	}
	units, err := nameSet(v.view.ListUnits)
	if err != nil {
		return nil, err
	}

	ctx := &batchContext{
		currentUser: models.CanonicalName(currentUser),
		running:     running,
		categories:  categories,
		units:       units,
	}

	var errs []RowError
	for i := range nonEmpty {
		rowErrs, err := v.validateRow(&nonEmpty[i], ctx)
		if err != nil {
			return nil, err
		}
		errs = append(errs, rowErrs...)

		// Only a clean row contributes its effect to the simulation.
		if len(rowErrs) == 0 {
			applyRunningBalance(&nonEmpty[i], ctx.running)
		}
	}

	errorRows := make(map[int]struct{})
	for _, e := range errs {
		errorRows[e.Row] = struct{}{}
	}

	return &ValidationReport{
		IsValid:    len(errs) == 0,
		Errors:     errs,
		ValidCount: len(nonEmpty) - len(errorRows),
		TotalCount: len(nonEmpty),
	}, nil
}

// batchContext carries the per-batch state shared across row validations.
type batchContext struct {
	currentUser string
	running     map[string]decimal.Decimal
	categories  map[string]struct{}
	units       map[string]struct{}
}

func (v *BulkValidator) validateRow(row *TransactionRow, ctx *batchContext) ([]RowError, error) {
	if row.Type == "" {
		// Without a type no further checks make sense for this row.
		return []RowError{{
			Row:     row.RowNumber,
			Field:   "transaction_type",
			Kind:    RowErrorMissingRequiredField,
			Message: "Transaction type is required",
		}}, nil
	}

	errs, err := v.validateCommonFields(row, ctx)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(row.Type) {
	case "deposit":
		errs = append(errs, v.validateCategory(row, ctx)...)
	case "withdraw":
		errs = append(errs, v.validateCategory(row, ctx)...)
		errs = append(errs, v.validateUnit(row, ctx)...)
		errs = append(errs, validateSufficientFunds(row, ctx.running)...)
	case "transfer":
		transferErrs, err := v.validateTransferTarget(row, ctx)
		if err != nil {
			return nil, err
		}
		errs = append(errs, transferErrs...)
		errs = append(errs, validateSufficientFunds(row, ctx.running)...)
	}

	return errs, nil
}

func (v *BulkValidator) validateCommonFields(row *TransactionRow, ctx *batchContext) ([]RowError, error) {
	var errs []RowError

	if row.Vault == "" {
		errs = append(errs, RowError{
			Row:     row.RowNumber,
			Field:   "vault",
			Kind:    RowErrorMissingRequiredField,
			Message: "Vault is required",
		})
	} else if _, ok := ctx.running[models.CanonicalName(row.Vault)]; !ok {
		// The snapshot holds every vault of the current user, so a miss
		// means the vault does not exist.
		errs = append(errs, RowError{
			Row:     row.RowNumber,
			Field:   "vault",
			Kind:    RowErrorInvalidVault,
			Message: fmt.Sprintf("Vault '%s' does not exist", row.Vault),
		})
	}

	if row.Amount == nil {
		errs = append(errs, RowError{
			Row:     row.RowNumber,
			Field:   "amount",
			Kind:    RowErrorMissingRequiredField,
			Message: "Amount is required",
		})
	} else if row.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, RowError{
			Row:     row.RowNumber,
			Field:   "amount",
			Kind:    RowErrorInvalidAmount,
			Message: "Amount must be positive",
		})
	}

	if row.Description == "" {
		errs = append(errs, RowError{
			Row:     row.RowNumber,
			Field:   "description",
			Kind:    RowErrorMissingRequiredField,
			Message: "Description is required",
		})
	}

	if row.Date != "" {
		if _, err := time.Parse(bulkDateLayout, row.Date); err != nil {
			errs = append(errs, RowError{
				Row:     row.RowNumber,
				Field:   "date",
				Kind:    RowErrorInvalidDate,
				Message: "Date must be in YYYY-MM-DD format",
			})
		}
	}

	return errs, nil
}

func (v *BulkValidator) validateCategory(row *TransactionRow, ctx *batchContext) []RowError {
	if row.Category == "" {
		return []RowError{{
			Row:     row.RowNumber,
			Field:   "category",
			Kind:    RowErrorMissingRequiredField,
			Message: "Category is required",
		}}
	}
	if _, ok := ctx.categories[row.Category]; !ok {
		return []RowError{{
			Row:     row.RowNumber,
			Field:   "category",
			Kind:    RowErrorInvalidCategory,
			Message: fmt.Sprintf("Category '%s' does not exist", row.Category),
		}}
	}
	return nil
}

func (v *BulkValidator) validateUnit(row *TransactionRow, ctx *batchContext) []RowError {
	// A unit only becomes required once a positive quantity is given.
	if row.Quantity == nil || *row.Quantity <= 0 {
		return nil
	}
	if row.Unit == "" {
		return []RowError{{
			Row:     row.RowNumber,
			Field:   "unit",
			Kind:    RowErrorMissingRequiredField,
			Message: "Unit is required when quantity is specified",
		}}
	}
	if _, ok := ctx.units[row.Unit]; !ok {
		return []RowError{{
			Row:     row.RowNumber,
			Field:   "unit",
			Kind:    RowErrorInvalidUnit,
			Message: fmt.Sprintf("Unit '%s' does not exist", row.Unit),
		}}
	}
	return nil
}

func (v *BulkValidator) validateTransferTarget(row *TransactionRow, ctx *batchContext) ([]RowError, error) {
	var errs []RowError

	if row.ToUser == "" {
		errs = append(errs, RowError{
			Row:     row.RowNumber,
			Field:   "to_user",
			Kind:    RowErrorMissingRequiredField,
			Message: "Destination user is required",
		})
	} else {
		exists, err := v.view.UserExists(row.ToUser)
		if err != nil {
			return nil, err
		}
		if !exists {
			errs = append(errs, RowError{
				Row:     row.RowNumber,
				Field:   "to_user",
				Kind:    RowErrorInvalidUser,
				Message: fmt.Sprintf("User '%s' does not exist", row.ToUser),
			})
		}
	}

	if row.ToVault == "" {
		errs = append(errs, RowError{
			Row:     row.RowNumber,
			Field:   "to_vault",
			Kind:    RowErrorMissingRequiredField,
			Message: "Destination vault is required",
		})
	} else if row.ToUser != "" {
		exists, err := v.view.VaultExists(row.ToUser, row.ToVault)
		if err != nil {
			return nil, err
		}
		if !exists {
			errs = append(errs, RowError{
				Row:     row.RowNumber,
				Field:   "to_vault",
				Kind:    RowErrorInvalidVault,
				Message: fmt.Sprintf("Vault '%s' does not exist for user '%s'", row.ToVault, row.ToUser),
			})
		}
	}

	if models.CanonicalName(row.Vault) == models.CanonicalName(row.ToVault) &&
		models.CanonicalName(row.ToUser) == ctx.currentUser {
		errs = append(errs, RowError{
			Row:     row.RowNumber,
			Field:   "to_vault",
			Kind:    RowErrorSameVaultTransfer,
			Message: "Cannot transfer to the same vault",
		})
	}

	return errs, nil
}

// validateSufficientFunds checks the withdrawal or transfer amount against
// the running balance, which already reflects earlier rows in the batch.
func validateSufficientFunds(row *TransactionRow, running map[string]decimal.Decimal) []RowError {
	if row.Vault == "" || row.Amount == nil {
		return nil
	}
	balance := running[models.CanonicalName(row.Vault)]
	if balance.LessThan(*row.Amount) {
		return []RowError{{
			Row:     row.RowNumber,
			Field:   "amount",
			Kind:    RowErrorInsufficientFunds,
			Message: fmt.Sprintf("Insufficient funds. Balance: %s, Required: %s", balance.StringFixed(2), row.Amount.StringFixed(2)),
		}}
	}
	return nil
}

// applyRunningBalance folds a clean row's effect into the simulation. A
// transfer only debits the source vault: the destination may belong to
// another user who is not in the snapshot at all.
func applyRunningBalance(row *TransactionRow, running map[string]decimal.Decimal) {
	if row.Vault == "" || row.Amount == nil {
		return
	}
	vault := models.CanonicalName(row.Vault)
	switch strings.ToLower(row.Type) {
	case "deposit":
		running[vault] = running[vault].Add(*row.Amount)
	case "withdraw", "transfer":
		running[vault] = running[vault].Sub(*row.Amount)
	}
}

func nameSet(list func() ([]string, error)) (map[string]struct{}, error) {
	names, err := list()
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set, nil
}
