// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"vaultbook/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("transaction_kind", validateTransactionKind)
		_ = v.RegisterValidation("ledger_date", validateLedgerDate)
	}
}

// validateTransactionKind accepts the four operation kinds, case-insensitively.
func validateTransactionKind(fl validator.FieldLevel) bool {
	_, ok := models.ParseTransactionType(fl.Field().String())
	return ok
}

// validateLedgerDate accepts an empty string or a YYYY-MM-DD date.
func validateLedgerDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}
