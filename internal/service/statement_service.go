package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"
	"ledger-service/pkg/apperror"

	"github.com/rs/zerolog"
)

// StatementServiceImpl implements ports.StatementService.
//
// The balance and the journal window are read inside one repeatable-read
// transaction, so the returned balance never reflects an entry missing
// from the window and vice versa. Statements bypass the apply path's row
// lock entirely and never queue behind writers.
type StatementServiceImpl struct {
	accountRepo  ports.AccountRepository
	journalRepo  ports.JournalRepository
	transactor   ports.DBTransactor
	cache        ports.StatementCache // nil = caching disabled
	cacheTTL     time.Duration
	windowSize   int
	accountCount int
	log          zerolog.Logger
}

// NewStatementService creates a new StatementServiceImpl.
func NewStatementService(
	accountRepo ports.AccountRepository,
	journalRepo ports.JournalRepository,
	transactor ports.DBTransactor,
	cache ports.StatementCache,
	cacheTTL time.Duration,
	windowSize int,
	accountCount int,
	log zerolog.Logger,
) *StatementServiceImpl {
	return &StatementServiceImpl{
		accountRepo:  accountRepo,
		journalRepo:  journalRepo,
		transactor:   transactor,
		cache:        cache,
		cacheTTL:     cacheTTL,
		windowSize:   windowSize,
		accountCount: accountCount,
		log:          log,
	}
}

// Statement assembles a point-in-time view of one account.
func (s *StatementServiceImpl) Statement(ctx context.Context, accountID int) (*ports.Statement, error) {
	if accountID < 1 || accountID > s.accountCount {
		return nil, apperror.ErrAccountNotFound()
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, accountID); err != nil {
			s.log.Warn().Err(err).Int("account_id", accountID).Msg("statement cache read failed, reading storage")
		} else if cached != nil {
			var st ports.Statement
			if err := json.Unmarshal(cached, &st); err == nil {
				return &st, nil
			}
			s.log.Warn().Int("account_id", accountID).Msg("discarding malformed cached statement")
		}
	}

	st, err := s.readSnapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(st); err == nil {
			if err := s.cache.Set(ctx, accountID, payload, s.cacheTTL); err != nil {
				s.log.Warn().Err(err).Int("account_id", accountID).Msg("statement cache write failed")
			}
		}
	}

	return st, nil
}

// readSnapshot reads balance, limit and the recent journal window at one
// consistent point.
func (s *StatementServiceImpl) readSnapshot(ctx context.Context, accountID int) (*ports.Statement, error) {
	dbTx, err := s.transactor.BeginSnapshot(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin snapshot tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	account, err := s.accountRepo.GetSnapshot(ctx, dbTx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("read account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound()
	}

	entries, err := s.journalRepo.ListRecent(ctx, dbTx, accountID, s.windowSize)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("read journal window: %w", err))
	}
	if entries == nil {
		entries = []domain.JournalEntry{}
	}

	return &ports.Statement{
		Balance: ports.StatementBalance{
			Total: account.Balance,
			Limit: account.Limit,
			AsOf:  time.Now().UTC(),
		},
		RecentEntries: entries,
	}, nil
}
