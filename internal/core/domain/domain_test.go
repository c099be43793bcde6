package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccount_CanDebit(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		limit   int64
		amount  int64
		want    bool
	}{
		{"well within limit", 0, 100000, 50000, true},
		{"exactly to the floor", 0, 1000, 1000, true},
		{"one past the floor", 0, 1000, 1001, false},
		{"already at the floor", -1000, 1000, 1, false},
		{"positive balance no limit", 500, 0, 500, true},
		{"positive balance past zero with zero limit", 500, 0, 501, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{Balance: tt.balance, Limit: tt.limit}
			assert.Equal(t, tt.want, a.CanDebit(tt.amount))
		})
	}
}

func TestEntryKind_IsValid(t *testing.T) {
	assert.True(t, EntryKindCredit.IsValid())
	assert.True(t, EntryKindDebit.IsValid())
	assert.False(t, EntryKind("").IsValid())
	assert.False(t, EntryKind("transfer").IsValid())
	assert.False(t, EntryKind("CREDIT").IsValid())
}

func TestEntryKind_Signed(t *testing.T) {
	assert.Equal(t, int64(100), EntryKindCredit.Signed(100))
	assert.Equal(t, int64(-100), EntryKindDebit.Signed(100))
}

func TestValidateEntryInput(t *testing.T) {
	tests := []struct {
		name        string
		amount      int64
		kind        EntryKind
		description string
		wantReason  bool
	}{
		{"valid credit", 1000, EntryKindCredit, "salary", false},
		{"valid debit", 1, EntryKindDebit, "x", false},
		{"ten char description", 1, EntryKindDebit, strings.Repeat("a", 10), false},
		{"zero amount", 0, EntryKindCredit, "ok", true},
		{"negative amount", -5, EntryKindDebit, "ok", true},
		{"unknown kind", 10, EntryKind("swap"), "ok", true},
		{"empty description", 10, EntryKindCredit, "", true},
		{"eleven char description", 10, EntryKindCredit, strings.Repeat("a", 11), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := ValidateEntryInput(tt.amount, tt.kind, tt.description)
			if tt.wantReason {
				assert.NotEmpty(t, reason)
			} else {
				assert.Empty(t, reason)
			}
		})
	}
}
