package models

import "testing"

func TestCanonicalName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"alice", "Alice"},
		{"ALICE", "Alice"},
		{"aLiCe", "Alice"},
		{"  bob  ", "Bob"},
		{"main", "Main"},
		{"savings account", "Savings account"},
		{"", ""},
		{"x", "X"},
	}

	for _, c := range cases {
		if got := CanonicalName(c.in); got != c.want {
			t.Errorf("CanonicalName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalNameIdempotent(t *testing.T) {
	for _, name := range []string{"Alice", "Bob", "Main", "Savings"} {
		if got := CanonicalName(CanonicalName(name)); got != name {
			t.Errorf("CanonicalName not idempotent for %q: got %q", name, got)
		}
	}
}

func TestParseTransactionType(t *testing.T) {
	cases := []struct {
		in   string
		want TransactionType
		ok   bool
	}{
		{"deposit", TransactionTypeDeposit, true},
		{"DEPOSIT", TransactionTypeDeposit, true},
		{"Withdraw", TransactionTypeWithdraw, true},
		{"transfer", TransactionTypeTransfer, true},
		{"loan", TransactionTypeLoan, true},
		{"withdrawal", "", false},
		{"", "", false},
		{"gift", "", false},
	}

	for _, c := range cases {
		got, ok := ParseTransactionType(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseTransactionType(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}
