package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"
	"ledger-service/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// LedgerServiceImpl implements ports.LedgerService.
//
// Per-account serialization comes from the row lock taken by
// AccountRepository.GetForUpdate: the read-validate-write sequence runs
// inside one database transaction holding that lock, so two applies on the
// same account cannot interleave while applies on different accounts run in
// parallel. Storage-level serialization conflicts are retried here with a
// bounded backoff and never surface to the caller.
type LedgerServiceImpl struct {
	accountRepo  ports.AccountRepository
	journalRepo  ports.JournalRepository
	transactor   ports.DBTransactor
	cache        ports.StatementCache // nil = caching disabled
	publisher    ports.EventPublisher // nil = events disabled
	accountCount int
	maxRetries   int
	retryBackoff time.Duration
	log          zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl. Accounts are
// provisioned with ids 1..accountCount; anything outside is not-found
// before storage is touched.
func NewLedgerService(
	accountRepo ports.AccountRepository,
	journalRepo ports.JournalRepository,
	transactor ports.DBTransactor,
	cache ports.StatementCache,
	publisher ports.EventPublisher,
	accountCount int,
	maxRetries int,
	retryBackoff time.Duration,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accountRepo:  accountRepo,
		journalRepo:  journalRepo,
		transactor:   transactor,
		cache:        cache,
		publisher:    publisher,
		accountCount: accountCount,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
		log:          log,
	}
}

// Apply validates and atomically applies a single debit or credit.
func (s *LedgerServiceImpl) Apply(ctx context.Context, req ports.ApplyRequest) (*ports.ApplyResult, error) {
	if reason := domain.ValidateEntryInput(req.Amount, req.Kind, req.Description); reason != "" {
		return nil, apperror.ErrValidation(reason)
	}

	if req.AccountID < 1 || req.AccountID > s.accountCount {
		return nil, apperror.ErrAccountNotFound()
	}

	var (
		result *ports.ApplyResult
		entry  *domain.JournalEntry
	)

	backoff := retry.WithMaxRetries(uint64(s.maxRetries), retry.NewExponential(s.retryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, ent, err := s.applyOnce(ctx, req)
		if err != nil {
			if isSerializationFailure(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		result, entry = res, ent
		return nil
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		if isSerializationFailure(err) {
			s.log.Warn().Err(err).Int("account_id", req.AccountID).Msg("apply retry budget exhausted")
			return nil, apperror.ErrContention(err)
		}
		return nil, apperror.InternalError(err)
	}

	// Post-commit: both best-effort, the apply is already durable.
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, req.AccountID); err != nil {
			s.log.Warn().Err(err).Int("account_id", req.AccountID).Msg("statement cache invalidation failed")
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishEntryCreated(ctx, entry, result.Balance); err != nil {
			s.log.Warn().Err(err).Int("account_id", req.AccountID).Msg("journal event publish failed")
		}
	}

	s.log.Info().
		Int("account_id", req.AccountID).
		Int64("amount", req.Amount).
		Str("kind", string(req.Kind)).
		Int64("balance", result.Balance).
		Msg("transaction applied")

	return result, nil
}

// applyOnce runs one read-validate-write attempt inside a database
// transaction. Business rejections come back as *apperror.AppError;
// storage failures come back raw so the caller can classify conflicts.
func (s *LedgerServiceImpl) applyOnce(ctx context.Context, req ports.ApplyRequest) (*ports.ApplyResult, *domain.JournalEntry, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & read account state
	account, err := s.accountRepo.GetForUpdate(ctx, dbTx, req.AccountID)
	if err != nil {
		return nil, nil, fmt.Errorf("lock account: %w", err)
	}
	if account == nil {
		return nil, nil, apperror.ErrAccountNotFound()
	}

	// Business rule: a debit may not push the balance below -limit.
	// The rejection leaves balance and journal untouched.
	if req.Kind == domain.EntryKindDebit && !account.CanDebit(req.Amount) {
		return nil, nil, apperror.ErrLimitExceeded()
	}

	newBalance := account.Balance + req.Kind.Signed(req.Amount)

	entry := &domain.JournalEntry{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Kind:        req.Kind,
		Description: req.Description,
		OccurredAt:  time.Now().UTC(),
	}

	// Persist: balance update and journal append succeed or fail together.
	if err := s.accountRepo.UpdateBalance(ctx, dbTx, req.AccountID, newBalance); err != nil {
		return nil, nil, fmt.Errorf("update balance: %w", err)
	}
	if err := s.journalRepo.Append(ctx, dbTx, entry); err != nil {
		return nil, nil, fmt.Errorf("append journal entry: %w", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit tx: %w", err)
	}

	return &ports.ApplyResult{Limit: account.Limit, Balance: newBalance}, entry, nil
}

// isSerializationFailure reports whether err is a storage-level write
// conflict worth retrying: serialization_failure (40001) or
// deadlock_detected (40P01).
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
