package models

import "time"

// FallbackCategoryName is the catch-all category assigned to transfer and
// loan transactions, for which the category is not user-selectable.
const FallbackCategoryName = "Others"

// Category is a flat reference table of unique spending/income buckets.
// Categories are looked up by exact name and never deleted.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
}

// DefaultCategories are seeded at schema creation so a fresh ledger is
// usable immediately. FallbackCategoryName must always be present.
var DefaultCategories = []string{
	"Food",
	"Transport",
	"Bills",
	"Entertainment",
	"Health",
	"Salary",
	FallbackCategoryName,
}
