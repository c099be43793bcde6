package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ledger-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ledgerStore is an in-memory stand-in for PostgreSQL. Per-account
// serialization works the way the row lock does in production: GetForUpdate
// acquires the account's mutex and the transaction's Commit or Rollback
// releases it, so read-validate-write sequences on one account never
// interleave.
type ledgerStore struct {
	mu       sync.RWMutex
	accounts map[int]*domain.Account
	journal  map[int][]domain.JournalEntry
	nextID   int64
	locks    map[int]*sync.Mutex
}

func newLedgerStore(limits map[int]int64) *ledgerStore {
	s := &ledgerStore{
		accounts: make(map[int]*domain.Account),
		journal:  make(map[int][]domain.JournalEntry),
		locks:    make(map[int]*sync.Mutex),
	}
	for id, limit := range limits {
		s.accounts[id] = &domain.Account{ID: id, Limit: limit, UpdatedAt: time.Now().UTC()}
		s.locks[id] = &sync.Mutex{}
	}
	return s
}

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	store *ledgerStore
}

func newInMemoryAccountRepo(store *ledgerStore) *inMemoryAccountRepo {
	return &inMemoryAccountRepo{store: store}
}

func (r *inMemoryAccountRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id int) (*domain.Account, error) {
	lock, ok := r.store.locks[id]
	if !ok {
		return nil, nil
	}
	mtx, ok := tx.(*memTx)
	if !ok {
		return nil, fmt.Errorf("GetForUpdate requires a memTx, got %T", tx)
	}
	lock.Lock()
	mtx.onClose(lock.Unlock)

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	a := *r.store.accounts[id]
	return &a, nil
}

func (r *inMemoryAccountRepo) GetSnapshot(ctx context.Context, tx pgx.Tx, id int) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	account, ok := r.store.accounts[id]
	if !ok {
		return nil, nil
	}
	a := *account
	return &a, nil
}

func (r *inMemoryAccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id int, balance int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	account, ok := r.store.accounts[id]
	if !ok {
		return fmt.Errorf("account %d not found", id)
	}
	account.Balance = balance
	account.UpdatedAt = time.Now().UTC()
	return nil
}

// --- In-Memory Journal Repo ---

type inMemoryJournalRepo struct {
	store *ledgerStore
}

func newInMemoryJournalRepo(store *ledgerStore) *inMemoryJournalRepo {
	return &inMemoryJournalRepo{store: store}
}

func (r *inMemoryJournalRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.JournalEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextID++
	e.ID = r.store.nextID
	r.store.journal[e.AccountID] = append(r.store.journal[e.AccountID], *e)
	return nil
}

func (r *inMemoryJournalRepo) ListRecent(ctx context.Context, tx pgx.Tx, accountID int, n int) ([]domain.JournalEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	entries := r.store.journal[accountID]
	if len(entries) < n {
		n = len(entries)
	}
	// Newest first.
	out := make([]domain.JournalEntry, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

// --- In-Memory Transactor ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &memTx{}, nil
}

func (t *inMemoryTransactor) BeginSnapshot(ctx context.Context) (pgx.Tx, error) {
	return &memTx{}, nil
}

// memTx is a pgx.Tx implementation that tracks lock releases so held
// account locks survive until Commit or Rollback, like row locks do.
type memTx struct {
	mu       sync.Mutex
	closers  []func()
	finished bool
}

func (t *memTx) onClose(f func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closers = append(t.closers, f)
}

func (t *memTx) close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished {
		return
	}
	t.finished = true
	for _, f := range t.closers {
		f()
	}
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) Commit(ctx context.Context) error          { t.close(); return nil }
func (t *memTx) Rollback(ctx context.Context) error        { t.close(); return nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }
