package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vaultbook/internal/services"
)

// BulkHandler exposes bulk-entry validation and processing.
type BulkHandler struct {
	validator *services.BulkValidator
	processor *services.BulkProcessor
}

// NewBulkHandler creates a new BulkHandler.
func NewBulkHandler(validator *services.BulkValidator, processor *services.BulkProcessor) *BulkHandler {
	return &BulkHandler{validator: validator, processor: processor}
}

// BulkRequest carries a batch of staged transaction rows.
type BulkRequest struct {
	Rows []services.TransactionRow `json:"rows" binding:"required"`
}

// Validate checks the batch without touching stored state and returns the
// full per-row error report.
func (h *BulkHandler) Validate(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.validator.Validate(req.Rows, username)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":  report,
		"summary": report.ErrorSummary(),
	})
}

// Process applies the batch row by row. Each row commits independently;
// a failing row is counted and skipped, not rolled back with the rest.
func (h *BulkHandler) Process(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	succeeded, failed := h.processor.Process(req.Rows, username)

	c.JSON(http.StatusOK, gin.H{
		"succeeded": succeeded,
		"failed":    failed,
	})
}
