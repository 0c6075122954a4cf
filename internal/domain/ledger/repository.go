package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/peerrank/backend/internal/domain/shared"
)

// Repository is the append-only store of ledger entries. There is no
// update or delete: corrections happen through new reversal entries.
type Repository interface {
	Save(ctx context.Context, tx *Transaction) error
	SaveBatch(ctx context.Context, txs []*Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindBySettlement(ctx context.Context, settlementID uuid.UUID) ([]Transaction, error)
	FindByUser(ctx context.Context, projectID uuid.UUID, userID string, filter shared.Filter) (shared.Paginated[Transaction], error)
	// SumByUser sums signed amounts for the user within the project,
	// optionally bounded by time
	SumByUser(ctx context.Context, projectID uuid.UUID, userID string, asOf *time.Time) (int64, error)
	// FindReversalOf returns the reversal entry pointing at the given
	// transaction, or nil when it has not been reversed
	FindReversalOf(ctx context.Context, originalID uuid.UUID) (*Transaction, error)
}
