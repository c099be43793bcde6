package postgres

import (
	"context"
	"errors"
	"fmt"

	"ledger-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// GetForUpdate fetches an account with a pessimistic row lock.
// This MUST be called within a transaction; the lock is held until commit
// or rollback and serializes concurrent applies on the same account.
func (r *AccountRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id int) (*domain.Account, error) {
	query := `SELECT id, credit_limit, balance, updated_at
		FROM accounts WHERE id = $1 FOR UPDATE`

	a := &domain.Account{}
	err := tx.QueryRow(ctx, query, id).Scan(&a.ID, &a.Limit, &a.Balance, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account for update: %w", err)
	}
	return a, nil
}

// GetSnapshot fetches an account without locking, inside a snapshot
// transaction, for statement assembly.
func (r *AccountRepo) GetSnapshot(ctx context.Context, tx pgx.Tx, id int) (*domain.Account, error) {
	query := `SELECT id, credit_limit, balance, updated_at
		FROM accounts WHERE id = $1`

	a := &domain.Account{}
	err := tx.QueryRow(ctx, query, id).Scan(&a.ID, &a.Limit, &a.Balance, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account snapshot: %w", err)
	}
	return a, nil
}

// UpdateBalance writes the new balance within the transaction that holds
// the row lock taken by GetForUpdate.
func (r *AccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id int, balance int64) error {
	query := `UPDATE accounts SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance, id)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %d", id)
	}
	return nil
}
