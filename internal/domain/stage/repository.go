package stage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists stages. The settlement lock primitives are
// conditional updates on the stage row: they succeed for at most one
// caller, which is what makes settlement single-flight per stage.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Stage, error)
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]Stage, error)
	Save(ctx context.Context, s *Stage) error

	// ClaimSettling sets SettlingTime iff it is currently null. The claim
	// is a pure mutex: it is taken both for settlement (on a voting
	// stage) and for reversal (on a completed one). Returns false when
	// another caller already holds it.
	ClaimSettling(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// ReleaseSettling clears SettlingTime after a failed or rolled-back run
	ReleaseSettling(ctx context.Context, id uuid.UUID) error

	// MarkSettled records a completed settlement, clearing the claim
	MarkSettled(ctx context.Context, id uuid.UUID, operatorID string, at time.Time) error

	// ClearSettlement clears the settlement fields during an explicit
	// stage reopen, returning the stage to voting status. Reversal never
	// calls this: a reversed stage stays completed until reopened.
	ClearSettlement(ctx context.Context, id uuid.UUID) error

	// ReleaseStaleClaims clears settling claims older than the cutoff and
	// returns how many were released. Used by the lock janitor.
	ReleaseStaleClaims(ctx context.Context, olderThan time.Time) (int64, error)
}
