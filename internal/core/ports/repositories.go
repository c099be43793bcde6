package ports

import (
	"context"
	"time"

	"ledger-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories.go -package=mocks

// AccountRepository defines persistence operations for account state.
// Methods accepting pgx.Tx run inside a transaction block; GetForUpdate
// takes the per-account row lock that serializes concurrent applies.
type AccountRepository interface {
	// GetForUpdate fetches an account with a pessimistic row lock.
	// Returns (nil, nil) when the account does not exist.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int) (*domain.Account, error)
	// GetSnapshot fetches an account without locking, inside a snapshot
	// transaction opened by DBTransactor.BeginSnapshot.
	GetSnapshot(ctx context.Context, tx pgx.Tx, id int) (*domain.Account, error)
	// UpdateBalance writes the new balance within the same transaction
	// that holds the row lock.
	UpdateBalance(ctx context.Context, tx pgx.Tx, id int, balance int64) error
}

// JournalRepository defines persistence for the append-only journal.
type JournalRepository interface {
	// Append inserts one entry within a transaction and fills entry.ID.
	Append(ctx context.Context, tx pgx.Tx, entry *domain.JournalEntry) error
	// ListRecent returns up to n entries for the account, newest first,
	// read inside the supplied transaction.
	ListRecent(ctx context.Context, tx pgx.Tx, accountID int, n int) ([]domain.JournalEntry, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	// Begin starts a read-write transaction for the apply path.
	Begin(ctx context.Context) (pgx.Tx, error)
	// BeginSnapshot starts a read-only repeatable-read transaction so a
	// statement observes the balance and the journal window at one
	// consistent point.
	BeginSnapshot(ctx context.Context) (pgx.Tx, error)
}

// StatementCache caches rendered statements as opaque blobs. A whole
// statement is cached as one unit so the cached view stays internally
// consistent. Get returns (nil, nil) on a miss.
type StatementCache interface {
	Get(ctx context.Context, accountID int) ([]byte, error)
	Set(ctx context.Context, accountID int, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, accountID int) error
}

// EventPublisher emits post-commit journal events. Implementations must
// be best-effort: a publish failure never affects the committed apply.
type EventPublisher interface {
	PublishEntryCreated(ctx context.Context, entry *domain.JournalEntry, balance int64) error
}
