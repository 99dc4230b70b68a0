package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vaultbook/internal/ledger"
)

// ReferenceHandler exposes the shared reference tables: categories, units,
// and known usernames for transfer and loan targets.
type ReferenceHandler struct {
	store *ledger.Store
}

// NewReferenceHandler creates a new ReferenceHandler.
func NewReferenceHandler(store *ledger.Store) *ReferenceHandler {
	return &ReferenceHandler{store: store}
}

// NameRequest is the payload for creating a category or unit.
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListCategories returns all category names.
func (h *ReferenceHandler) ListCategories(c *gin.Context) {
	names, err := h.store.ListCategories()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": names})
}

// CreateCategory adds a new spending category.
func (h *ReferenceHandler) CreateCategory(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.store.CreateCategory(req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": category.Name})
}

// ListUnits returns all measurement unit names.
func (h *ReferenceHandler) ListUnits(c *gin.Context) {
	names, err := h.store.ListUnits()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": names})
}

// CreateUnit adds a new measurement unit.
func (h *ReferenceHandler) CreateUnit(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	unit, err := h.store.CreateUnit(req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": unit.Name})
}

// ListUsers returns all known usernames, including loan-only counterparties.
func (h *ReferenceHandler) ListUsers(c *gin.Context) {
	names, err := h.store.ListUsernames()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": names})
}
