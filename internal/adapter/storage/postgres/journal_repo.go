package postgres

import (
	"context"
	"fmt"

	"ledger-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// JournalRepo implements ports.JournalRepository.
type JournalRepo struct {
	pool Pool
}

// NewJournalRepo creates a new JournalRepo.
func NewJournalRepo(pool Pool) *JournalRepo {
	return &JournalRepo{pool: pool}
}

// Append inserts one journal entry within a transaction and fills entry.ID.
// Entries are never updated or deleted; the table is the audit trail.
func (r *JournalRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.JournalEntry) error {
	query := `INSERT INTO journal_entries (account_id, amount, kind, description, occurred_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := tx.QueryRow(ctx, query,
		e.AccountID, e.Amount, e.Kind, e.Description, e.OccurredAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// ListRecent returns up to n entries for the account, newest first. It reads
// inside the supplied transaction so the window matches the balance read in
// the same snapshot.
func (r *JournalRepo) ListRecent(ctx context.Context, tx pgx.Tx, accountID int, n int) ([]domain.JournalEntry, error) {
	query := `SELECT id, account_id, amount, kind, description, occurred_at
		FROM journal_entries WHERE account_id = $1
		ORDER BY id DESC LIMIT $2`

	rows, err := tx.Query(ctx, query, accountID, n)
	if err != nil {
		return nil, fmt.Errorf("list recent journal entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var e domain.JournalEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Amount, &e.Kind, &e.Description, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}
