package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peerrank/backend/internal/domain/ledger"
	"github.com/peerrank/backend/internal/domain/shared"
)

// BalanceCache caches derived balances. The ledger stays the source of
// truth: every post invalidates the affected user's entry.
type BalanceCache interface {
	Get(ctx context.Context, projectID uuid.UUID, userID string) (int64, bool, error)
	Set(ctx context.Context, projectID uuid.UUID, userID string, balance int64) error
	Invalidate(ctx context.Context, projectID uuid.UUID, userID string) error
}

// Service exposes the ledger operations: appending entries, deriving
// balances, and reversing individual entries.
type Service struct {
	repo   ledger.Repository
	cache  BalanceCache
	logger *zap.Logger
}

// NewService creates a ledger service. The cache is optional.
func NewService(repo ledger.Repository, cache BalanceCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Post appends one entry after validating its linkage rules
func (s *Service) Post(ctx context.Context, tx *ledger.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, tx); err != nil {
		return err
	}
	s.invalidate(ctx, tx)
	s.logger.Debug("ledger entry posted",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("user_id", tx.UserID),
		zap.String("type", string(tx.Type)),
		zap.Int64("amount", tx.Amount),
	)
	return nil
}

// BalanceOf sums the user's signed amounts within the project. Point-in-
// time queries bypass the cache; live queries go through it.
func (s *Service) BalanceOf(ctx context.Context, projectID uuid.UUID, userID string, asOf *time.Time) (int64, error) {
	if asOf == nil && s.cache != nil {
		if balance, ok, err := s.cache.Get(ctx, projectID, userID); err == nil && ok {
			return balance, nil
		}
	}
	balance, err := s.repo.SumByUser(ctx, projectID, userID, asOf)
	if err != nil {
		return 0, err
	}
	if asOf == nil && s.cache != nil {
		if err := s.cache.Set(ctx, projectID, userID, balance); err != nil {
			s.logger.Warn("balance cache set failed", zap.Error(err))
		}
	}
	return balance, nil
}

// Reverse posts the compensating entry for a prior transaction. It
// fails with NOT_FOUND when the original is missing and ALREADY_REVERSED
// when a reversal already references it.
func (s *Service) Reverse(ctx context.Context, originalID uuid.UUID, reason string) (*ledger.Transaction, error) {
	original, err := s.repo.FindByID(ctx, originalID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, shared.ErrNotFound
	}
	existing, err := s.repo.FindReversalOf(ctx, originalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.ErrAlreadyReversed
	}
	rev, err := ledger.NewReversalTransaction(original, reason)
	if err != nil {
		return nil, err
	}
	if err := s.Post(ctx, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

// Transactions returns the user's entries, newest first
func (s *Service) Transactions(ctx context.Context, projectID uuid.UUID, userID string, filter shared.Filter) (shared.Paginated[ledger.Transaction], error) {
	return s.repo.FindByUser(ctx, projectID, userID, filter)
}

func (s *Service) invalidate(ctx context.Context, tx *ledger.Transaction) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tx.ProjectID, tx.UserID); err != nil {
		s.logger.Warn("balance cache invalidation failed",
			zap.String("user_id", tx.UserID),
			zap.Error(err),
		)
	}
}
