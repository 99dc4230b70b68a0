// Package errors provides custom error types for the Vaultbook ledger.
// All service-layer errors should use AppError so callers can branch on a
// closed set of error codes instead of string matching, and so the HTTP
// facade never leaks internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password", StatusCode: http.StatusUnauthorized}
	ErrUsernameExists     = &AppError{Code: "USERNAME_EXISTS", Message: "Username already exists", StatusCode: http.StatusConflict}
	ErrPasswordMismatch   = &AppError{Code: "PASSWORD_MISMATCH", Message: "Passwords must match", StatusCode: http.StatusBadRequest}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User and vault errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateUser  = &AppError{Code: "DUPLICATE_USER", Message: "A user with this name already exists", StatusCode: http.StatusConflict}
	ErrVaultNotFound  = &AppError{Code: "VAULT_NOT_FOUND", Message: "Vault not found", StatusCode: http.StatusNotFound}
	ErrDuplicateVault = &AppError{Code: "DUPLICATE_VAULT", Message: "A vault with this name already exists", StatusCode: http.StatusConflict}
)

// Reference-data errors.
var (
	ErrCategoryNotFound  = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategory = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name already exists", StatusCode: http.StatusConflict}
	ErrUnitNotFound      = &AppError{Code: "UNIT_NOT_FOUND", Message: "Unit not found", StatusCode: http.StatusNotFound}
	ErrDuplicateUnit     = &AppError{Code: "DUPLICATE_UNIT", Message: "A unit with this name already exists", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrInvalidAmount     = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be positive", StatusCode: http.StatusBadRequest}
	ErrInsufficientFunds = &AppError{Code: "INSUFFICIENT_FUNDS", Message: "Insufficient funds", StatusCode: http.StatusBadRequest}
	ErrSameVaultTransfer = &AppError{Code: "SAME_VAULT_TRANSFER", Message: "Cannot transfer to the same vault", StatusCode: http.StatusBadRequest}
	ErrInvalidDate       = &AppError{Code: "INVALID_DATE", Message: "Date must be in YYYY-MM-DD format", StatusCode: http.StatusBadRequest}
)
