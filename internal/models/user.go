package models

import "time"

// User represents an account holder in the ledger.
//
// Password holds a bcrypt hash. A nil Password marks a loan-only
// counterparty: someone the current user lends to or borrows from, created
// implicitly the first time they appear in a loan, who can never log in.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  *string   `json:"-"`

	Vaults []Vault `gorm:"foreignKey:UserID" json:"vaults,omitempty"`
}

// CanLogIn reports whether the user holds a credential.
func (u *User) CanLogIn() bool {
	return u.Password != nil
}
