package domain

import "time"

// EntryKind is the direction of a journal entry.
type EntryKind string

const (
	EntryKindCredit EntryKind = "credit"
	EntryKindDebit  EntryKind = "debit"
)

// IsValid reports whether the kind is one of the two known values.
func (k EntryKind) IsValid() bool {
	return k == EntryKindCredit || k == EntryKindDebit
}

// Signed returns amount with the sign implied by the kind.
func (k EntryKind) Signed(amount int64) int64 {
	if k == EntryKindDebit {
		return -amount
	}
	return amount
}

// MaxDescriptionLen bounds the free-text label on a journal entry.
const MaxDescriptionLen = 10

// JournalEntry is one immutable record in an account's append-only journal.
// Amount is always a positive magnitude; the sign is implied by Kind.
// OccurredAt is assigned server-side at the moment the entry is committed.
type JournalEntry struct {
	ID          int64     `json:"id"`
	AccountID   int       `json:"account_id"`
	Amount      int64     `json:"amount"`
	Kind        EntryKind `json:"kind"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// ValidateEntryInput checks the structural validity of apply-transaction
// input before any stored state is touched. Returns a human-readable
// reason for the first violation found, or "" if the input is valid.
func ValidateEntryInput(amount int64, kind EntryKind, description string) string {
	if amount <= 0 {
		return "amount must be a positive integer"
	}
	if !kind.IsValid() {
		return "kind must be \"credit\" or \"debit\""
	}
	if description == "" || len(description) > MaxDescriptionLen {
		return "description must be 1 to 10 characters"
	}
	return ""
}
