package services

import (
	"fmt"
	"strings"
	"time"

	apperrors "vaultbook/internal/errors"
	"vaultbook/internal/logger"
)

// BulkProcessor replays a batch of rows through the transaction service,
// one row at a time. One row's failure never rolls back or skips the rows
// after it: the caller is expected to have validated the batch first, but
// the processor tolerates and reports partial failure rather than aborting.
type BulkProcessor struct {
	service TransactionServicer
}

// NewBulkProcessor creates a processor that dispatches rows to the given
// transaction service.
func NewBulkProcessor(service TransactionServicer) *BulkProcessor {
	return &BulkProcessor{service: service}
}

// Process dispatches every non-empty row in order and returns how many
// succeeded and how many failed.
func (p *BulkProcessor) Process(rows []TransactionRow, currentUser string) (succeeded, failed int) {
	log := logger.Get()

	for i := range rows {
		row := &rows[i]
		if row.IsEmpty() {
			continue
		}

		if err := p.processRow(row, currentUser); err != nil {
			log.Warnw("bulk row failed",
				"row", row.RowNumber,
				"type", row.Type,
				"error", err.Error(),
			)
			failed++
			continue
		}
		succeeded++
	}

	return succeeded, failed
}

// processRow dispatches a single row. A panic from a malformed row is
// converted into that row's failure so it cannot abort the batch.
func (p *BulkProcessor) processRow(row *TransactionRow, currentUser string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.WithMessage(apperrors.ErrInternalServer, fmt.Sprintf("row %d: %v", row.RowNumber, r))
		}
	}()

	if row.Amount == nil {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount is required")
	}

	date, err := rowDate(row.Date)
	if err != nil {
		return err
	}

	switch strings.ToLower(row.Type) {
	case "deposit":
		_, err = p.service.Deposit(currentUser, row.Vault, *row.Amount, row.Category, row.Description, row.Quantity, row.Unit, date)
	case "withdraw":
		_, err = p.service.Withdraw(currentUser, row.Vault, *row.Amount, row.Category, row.Description, row.Quantity, row.Unit, date)
	case "transfer":
		_, err = p.service.Transfer(currentUser, row.Vault, row.ToUser, row.ToVault, *row.Amount, row.Description, date)
	default:
		err = apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown transaction type '%s'", row.Type))
	}
	return err
}

// rowDate resolves a row's date string. An empty string yields the zero
// time, which the store defaults to now; a given day is combined with the
// current wall-clock time so same-day entries keep their relative order.
func rowDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	day, err := time.Parse(bulkDateLayout, raw)
	if err != nil {
		return time.Time{}, apperrors.ErrInvalidDate
	}
	now := time.Now()
	return time.Date(day.Year(), day.Month(), day.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.Local), nil
}
