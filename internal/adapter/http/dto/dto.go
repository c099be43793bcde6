package dto

import (
	"encoding/json"
	"strconv"

	"ledger-service/internal/core/domain"
)

// TransactionRequest is the request body for applying a transaction.
// Amount is decoded as json.Number so a fractional value like 1.5 can be
// rejected as a validation error instead of being silently truncated.
type TransactionRequest struct {
	Amount      json.Number `json:"amount"`
	Kind        string      `json:"kind"`
	Description string      `json:"description"`
}

// AmountInt64 parses the amount strictly: only an integral JSON number is
// accepted. Validation of positivity happens in the domain.
func (r TransactionRequest) AmountInt64() (int64, error) {
	return strconv.ParseInt(r.Amount.String(), 10, 64)
}

// EntryKind maps the wire kind to the domain kind. The canonical values
// are "credit" and "debit"; the single-letter forms "c" and "d" are
// accepted as wire aliases. Unknown values map through unchanged and are
// rejected by domain validation.
func (r TransactionRequest) EntryKind() domain.EntryKind {
	switch r.Kind {
	case "c":
		return domain.EntryKindCredit
	case "d":
		return domain.EntryKindDebit
	default:
		return domain.EntryKind(r.Kind)
	}
}

// TransactionResponse is the success payload of an apply: the account's
// limit and the post-transaction balance.
type TransactionResponse struct {
	Limit   int64 `json:"limit"`
	Balance int64 `json:"balance"`
}

// StatementBalanceResponse is the balance block of a statement.
type StatementBalanceResponse struct {
	Total int64  `json:"total"`
	Limit int64  `json:"limit"`
	AsOf  string `json:"as_of"`
}

// JournalEntryResponse is one journal entry in a statement.
type JournalEntryResponse struct {
	Amount      int64  `json:"amount"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	OccurredAt  string `json:"occurred_at"`
}

// StatementResponse is the response body for a statement query.
type StatementResponse struct {
	Balance       StatementBalanceResponse `json:"balance"`
	RecentEntries []JournalEntryResponse   `json:"recent_entries"`
}
