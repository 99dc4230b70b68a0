package models

import (
	"strings"
	"unicode"
)

// CanonicalName normalizes a user or vault name to its stored form:
// leading/trailing whitespace trimmed, first rune upper-cased, the rest
// lower-cased ("aLiCe" -> "Alice").
//
// It is applied exactly once, at the boundary where a name enters the core
// (the ledger store for persisted names, the bulk validator for lookups).
// Internal code always works with already-canonical names and must not
// re-apply it.
func CanonicalName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	runes := []rune(strings.ToLower(name))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
