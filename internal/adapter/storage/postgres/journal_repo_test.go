package postgres

import (
	"context"
	"testing"
	"time"

	"ledger-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func journalColumns() []string {
	return []string{"id", "account_id", "amount", "kind", "description", "occurred_at"}
}

func TestJournalRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)
	e := &domain.JournalEntry{
		AccountID:   1,
		Amount:      1000,
		Kind:        domain.EntryKindDebit,
		Description: "teste",
		OccurredAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO journal_entries").
		WithArgs(e.AccountID, e.Amount, e.Kind, e.Description, e.OccurredAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Append(context.Background(), tx, e)
	require.NoError(t, err)
	assert.Equal(t, int64(7), e.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepo_ListRecent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)

	rows := pgxmock.NewRows(journalColumns()).
		AddRow(int64(3), 1, int64(500), domain.EntryKindDebit, "lunch", now).
		AddRow(int64(2), 1, int64(9000), domain.EntryKindCredit, "salary", now.Add(-time.Minute))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM journal_entries WHERE account_id .+ ORDER BY id DESC LIMIT").
		WithArgs(1, 10).
		WillReturnRows(rows)

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	entries, err := repo.ListRecent(context.Background(), tx, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(3), entries[0].ID, "newest first")
	assert.Equal(t, domain.EntryKindDebit, entries[0].Kind)
	assert.Equal(t, "salary", entries[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepo_ListRecent_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM journal_entries WHERE account_id").
		WithArgs(2, 10).
		WillReturnRows(pgxmock.NewRows(journalColumns()))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	entries, err := repo.ListRecent(context.Background(), tx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_BeginSnapshot(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tr := NewTransactor(mock)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})

	tx, err := tr.BeginSnapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.NoError(t, mock.ExpectationsWereMet())
}
