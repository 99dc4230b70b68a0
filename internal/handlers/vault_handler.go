package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vaultbook/internal/ledger"
)

// VaultHandler exposes vault management and balance projections.
type VaultHandler struct {
	store *ledger.Store
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(store *ledger.Store) *VaultHandler {
	return &VaultHandler{store: store}
}

// CreateVaultRequest is the payload for creating a named vault.
type CreateVaultRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create adds a new empty vault for the authenticated user.
func (h *VaultHandler) Create(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateVaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vault, err := h.store.CreateVault(username, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"name":    vault.Name,
		"balance": vault.Balance,
	})
}

// List returns the authenticated user's vaults with their balances.
func (h *VaultHandler) List(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balances, err := h.store.VaultBalances(username)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"vaults": balances})
}

// Names returns the user's vault names in creation order.
func (h *VaultHandler) Names(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	names, err := h.store.VaultNames(username)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"names": names})
}

// TotalBalance returns the sum of all the user's vault balances.
func (h *VaultHandler) TotalBalance(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	total, err := h.store.TotalBalance(username)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"total_balance": total})
}
