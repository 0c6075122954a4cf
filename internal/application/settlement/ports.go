package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/peerrank/backend/internal/domain/ranking"
	"github.com/peerrank/backend/internal/domain/settlement"
)

// StageDirectory supplies the platform data settlement consumes but
// does not own: the rankable items of a stage, group member shares, and
// the optional supervisor override ranking.
type StageDirectory interface {
	// Items returns the rankable items of a stage for one category
	Items(ctx context.Context, stageID uuid.UUID, category ranking.Category) ([]settlement.Item, error)
	// MemberShares returns the declared participation split of a group's
	// submission. Percentages sum to 100; an empty slice means the item
	// author receives the whole amount.
	MemberShares(ctx context.Context, stageID, groupID uuid.UUID) ([]settlement.MemberShare, error)
	// SupervisorRanking returns the supervisor's override ranking for a
	// category, or an empty slice when none was submitted
	SupervisorRanking(ctx context.Context, stageID uuid.UUID, category ranking.Category) ([]ranking.RankedItem, time.Time, error)
}
