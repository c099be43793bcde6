package ports

import (
	"context"
	"time"

	"ledger-service/internal/core/domain"
)

//go:generate mockgen -source=services.go -destination=mocks/services.go -package=mocks

// ApplyRequest carries one validated-or-not apply-transaction call.
type ApplyRequest struct {
	AccountID   int
	Amount      int64
	Kind        domain.EntryKind
	Description string
}

// ApplyResult is the success payload of an apply: the account's limit and
// the post-transaction balance.
type ApplyResult struct {
	Limit   int64 `json:"limit"`
	Balance int64 `json:"balance"`
}

// StatementBalance is the balance block of a statement.
type StatementBalance struct {
	Total int64     `json:"total"`
	Limit int64     `json:"limit"`
	AsOf  time.Time `json:"as_of"`
}

// Statement is a point-in-time view of an account: balance, limit, and
// the most recent journal window, newest first.
type Statement struct {
	Balance       StatementBalance      `json:"balance"`
	RecentEntries []domain.JournalEntry `json:"recent_entries"`
}

// LedgerService applies a single debit or credit against one account,
// enforcing the limit invariant atomically under concurrent callers.
type LedgerService interface {
	Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error)
}

// StatementService assembles a consistent statement for one account.
type StatementService interface {
	Statement(ctx context.Context, accountID int) (*Statement, error)
}
