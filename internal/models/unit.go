package models

import "time"

// Unit is a flat reference table of measurement units ("kg", "pcs").
// Units are only meaningful on withdrawals that record a quantity.
type Unit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
}

// DefaultUnits are seeded at schema creation.
var DefaultUnits = []string{"kg", "g", "l", "pcs"}
