package settlement

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists settlement records. Records are append-only.
type Repository interface {
	Save(ctx context.Context, r *Record) error
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)
	// FindByStage returns all records of a stage, newest first
	FindByStage(ctx context.Context, stageID uuid.UUID) ([]Record, error)
	// FindLatestSettlement returns the most recent non-reversal record
	// of a stage, or nil when the stage was never settled
	FindLatestSettlement(ctx context.Context, stageID uuid.UUID) (*Record, error)
	// FindReversalOf returns the reversal record pointing at the given
	// settlement, or nil when it has not been reversed
	FindReversalOf(ctx context.Context, settlementID uuid.UUID) (*Record, error)
}
