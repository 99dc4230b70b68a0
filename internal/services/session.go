package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	apperrors "vaultbook/internal/errors"
	"vaultbook/internal/ledger"
	"vaultbook/internal/models"
)

// Session tracks the current login state and answers current-user
// projections. It replaces the hidden mutable "current user" field the
// store could otherwise grow: login state lives here and nowhere else, so
// the core stays reusable when several sessions coexist.
type Session struct {
	store    *ledger.Store
	username string
}

// NewSession creates a logged-out session over the given store.
func NewSession(store *ledger.Store) *Session {
	return &Session{store: store}
}

// Signup creates a new user with a bcrypt-hashed credential and logs the
// session in as that user.
func (s *Session) Signup(username, password, confirmPassword string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username and password are required")
	}
	if password != confirmPassword {
		return nil, apperrors.ErrPasswordMismatch
	}

	exists, err := s.store.UserExists(username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrUsernameExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	credential := string(hash)

	user, err := s.store.CreateUser(username, &credential)
	if err != nil {
		return nil, err
	}

	s.username = user.Username
	return user, nil
}

// Login verifies the credential and logs the session in. Loan-only
// counterparties hold no credential and can never log in; a missing user
// and a wrong password are indistinguishable to the caller.
func (s *Session) Login(username, password string) (*models.User, error) {
	user, err := s.store.FindUser(username)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrUserNotFound.Code {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.CanLogIn() {
		return nil, apperrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	s.username = user.Username
	return user, nil
}

// Logout clears the login state.
func (s *Session) Logout() {
	s.username = ""
}

// Username returns the logged-in username, or "" when logged out.
func (s *Session) Username() string {
	return s.username
}

// LoggedIn reports whether a user is logged in.
func (s *Session) LoggedIn() bool {
	return s.username != ""
}

// VaultNames lists the current user's vault names.
func (s *Session) VaultNames() ([]string, error) {
	if !s.LoggedIn() {
		return nil, apperrors.ErrUnauthorized
	}
	return s.store.VaultNames(s.username)
}

// Vaults returns the current user's vault balances keyed by name.
func (s *Session) Vaults() (map[string]decimal.Decimal, error) {
	if !s.LoggedIn() {
		return nil, apperrors.ErrUnauthorized
	}
	return s.store.VaultBalances(s.username)
}

// VaultBalance returns one vault balance for the current user.
func (s *Session) VaultBalance(vaultName string) (decimal.Decimal, error) {
	if !s.LoggedIn() {
		return decimal.Zero, apperrors.ErrUnauthorized
	}
	return s.store.VaultBalance(s.username, vaultName)
}

// TotalBalance sums all vault balances of the current user.
func (s *Session) TotalBalance() (decimal.Decimal, error) {
	if !s.LoggedIn() {
		return decimal.Zero, apperrors.ErrUnauthorized
	}
	return s.store.TotalBalance(s.username)
}
