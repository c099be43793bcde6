package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"
	"ledger-service/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type statementTestDeps struct {
	svc         *StatementServiceImpl
	accountRepo *mocks.MockAccountRepository
	journalRepo *mocks.MockJournalRepository
	transactor  *mocks.MockDBTransactor
	cache       *mocks.MockStatementCache
	ctrl        *gomock.Controller
}

func setupStatementService(t *testing.T) *statementTestDeps {
	ctrl := gomock.NewController(t)
	d := &statementTestDeps{
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		journalRepo: mocks.NewMockJournalRepository(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		cache:       mocks.NewMockStatementCache(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewStatementService(
		d.accountRepo, d.journalRepo, d.transactor, d.cache,
		2*time.Second, 10, testAccountCount, zerolog.Nop(),
	)
	return d
}

func TestStatementService_Statement_FromStorage(t *testing.T) {
	d := setupStatementService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	now := time.Now().UTC()

	entries := []domain.JournalEntry{
		{ID: 2, AccountID: 1, Amount: 500, Kind: domain.EntryKindDebit, Description: "lunch", OccurredAt: now},
		{ID: 1, AccountID: 1, Amount: 9000, Kind: domain.EntryKindCredit, Description: "salary", OccurredAt: now.Add(-time.Hour)},
	}

	d.cache.EXPECT().Get(ctx, 1).Return(nil, nil)
	d.transactor.EXPECT().BeginSnapshot(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetSnapshot(ctx, tx, 1).Return(&domain.Account{
		ID: 1, Limit: 100000, Balance: 8500,
	}, nil)
	d.journalRepo.EXPECT().ListRecent(ctx, tx, 1, 10).Return(entries, nil)
	d.cache.EXPECT().Set(ctx, 1, gomock.Any(), 2*time.Second).Return(nil)

	before := time.Now().UTC()
	st, err := d.svc.Statement(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(8500), st.Balance.Total)
	assert.Equal(t, int64(100000), st.Balance.Limit)
	assert.False(t, st.Balance.AsOf.Before(before), "as_of is the read time")
	require.Len(t, st.RecentEntries, 2)
	assert.Equal(t, int64(2), st.RecentEntries[0].ID, "newest first")
}

func TestStatementService_Statement_CacheHit(t *testing.T) {
	d := setupStatementService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	cached := &ports.Statement{
		Balance:       ports.StatementBalance{Total: -100, Limit: 1000, AsOf: time.Now().UTC()},
		RecentEntries: []domain.JournalEntry{},
	}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)

	// Cache hit: storage is never touched.
	d.cache.EXPECT().Get(ctx, 2).Return(payload, nil)

	st, err := d.svc.Statement(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(-100), st.Balance.Total)
	assert.Equal(t, int64(1000), st.Balance.Limit)
}

func TestStatementService_Statement_CacheErrorFallsThrough(t *testing.T) {
	d := setupStatementService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.cache.EXPECT().Get(ctx, 1).Return(nil, errors.New("redis down"))
	d.transactor.EXPECT().BeginSnapshot(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetSnapshot(ctx, tx, 1).Return(&domain.Account{
		ID: 1, Limit: 100000, Balance: 0,
	}, nil)
	d.journalRepo.EXPECT().ListRecent(ctx, tx, 1, 10).Return(nil, nil)
	d.cache.EXPECT().Set(ctx, 1, gomock.Any(), 2*time.Second).Return(nil)

	st, err := d.svc.Statement(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, st.RecentEntries, "empty window serializes as [], not null")
	assert.Empty(t, st.RecentEntries)
}

func TestStatementService_Statement_OutOfRange(t *testing.T) {
	d := setupStatementService(t)
	defer d.ctrl.Finish()

	for _, id := range []int{0, -3, 6, 99} {
		_, err := d.svc.Statement(context.Background(), id)
		requireAppError(t, err, "LED_003", http.StatusNotFound)
	}
}

func TestStatementService_Statement_AccountMissingInStore(t *testing.T) {
	d := setupStatementService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.cache.EXPECT().Get(ctx, 5).Return(nil, nil)
	d.transactor.EXPECT().BeginSnapshot(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetSnapshot(ctx, tx, 5).Return(nil, nil)

	_, err := d.svc.Statement(ctx, 5)
	requireAppError(t, err, "LED_003", http.StatusNotFound)
}

func TestStatementService_Statement_NoCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountRepo := mocks.NewMockAccountRepository(ctrl)
	journalRepo := mocks.NewMockJournalRepository(ctrl)
	transactor := mocks.NewMockDBTransactor(ctrl)
	svc := NewStatementService(accountRepo, journalRepo, transactor, nil,
		0, 10, testAccountCount, zerolog.Nop())

	ctx := context.Background()
	tx := &mockTx{}

	transactor.EXPECT().BeginSnapshot(ctx).Return(tx, nil)
	accountRepo.EXPECT().GetSnapshot(ctx, tx, 3).Return(&domain.Account{
		ID: 3, Limit: 1000000, Balance: 12,
	}, nil)
	journalRepo.EXPECT().ListRecent(ctx, tx, 3, 10).Return(nil, nil)

	st, err := svc.Statement(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(12), st.Balance.Total)
}
