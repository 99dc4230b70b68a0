package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vaultbook/internal/ledger"
	"vaultbook/internal/middleware"
	"vaultbook/internal/services"
)

// AuthHandler exposes signup and login over HTTP. Each request runs
// through a fresh Session; the issued token carries the resulting login
// state to later requests.
type AuthHandler struct {
	store *ledger.Store
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store *ledger.Store) *AuthHandler {
	return &AuthHandler{store: store}
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Password        string `json:"password" binding:"required,min=4"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new user and returns a session token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := services.NewSession(h.store)
	user, err := session.Signup(req.Username, req.Password, req.ConfirmPassword)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.GenerateSessionToken(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"username": user.Username,
		"token":    token,
	})
}

// Login authenticates a user and returns a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := services.NewSession(h.store)
	user, err := session.Login(req.Username, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.GenerateSessionToken(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username": user.Username,
		"token":    token,
	})
}
