package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"vaultbook/internal/ledger"
	"vaultbook/internal/pagination"
	"vaultbook/internal/services"
)

type entryOp func(username, vault string, amount decimal.Decimal, category, description string, quantity *float64, unit string, date time.Time) (*services.TransactionResult, error)

type movementOp func(fromUser, fromVault, toUser, toVault string, amount decimal.Decimal, reason string, date time.Time) (*services.TransactionResult, error)

// TransactionHandler exposes the four ledger operations and the
// transaction history.
type TransactionHandler struct {
	service services.TransactionServicer
	store   *ledger.Store
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(service services.TransactionServicer, store *ledger.Store) *TransactionHandler {
	return &TransactionHandler{service: service, store: store}
}

// EntryRequest is the payload for deposits and withdrawals.
type EntryRequest struct {
	Vault       string          `json:"vault" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Quantity    *float64        `json:"quantity,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Date        string          `json:"date,omitempty" binding:"ledger_date"`
}

// MovementRequest is the payload for transfers and loans.
type MovementRequest struct {
	FromVault string          `json:"from_vault" binding:"required"`
	ToUser    string          `json:"to_user" binding:"required"`
	ToVault   string          `json:"to_vault" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reason    string          `json:"reason,omitempty"`
	Date      string          `json:"date,omitempty" binding:"ledger_date"`
}

// Deposit adds money to one of the user's vaults.
func (h *TransactionHandler) Deposit(c *gin.Context) {
	h.entry(c, h.service.Deposit)
}

// Withdraw removes money from one of the user's vaults.
func (h *TransactionHandler) Withdraw(c *gin.Context) {
	h.entry(c, h.service.Withdraw)
}

// Transfer moves money between two vaults.
func (h *TransactionHandler) Transfer(c *gin.Context) {
	h.movement(c, h.service.Transfer)
}

// Loan moves money to another user's vault and records the debt.
func (h *TransactionHandler) Loan(c *gin.Context) {
	h.movement(c, h.service.Loan)
}

func (h *TransactionHandler) entry(c *gin.Context, op entryOp) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := op(username, req.Vault, req.Amount, req.Category, req.Description, req.Quantity, req.Unit, date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *TransactionHandler) movement(c *gin.Context, op movementOp) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := op(username, req.FromVault, req.ToUser, req.ToVault, req.Amount, req.Reason, date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// History returns the user's transaction log, newest first, paginated.
func (h *TransactionHandler) History(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page.Defaults()

	response, err := h.store.UserTransactions(username, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
