package ranking

import (
	"context"

	"github.com/google/uuid"
)

// ProposalRepository persists ranking proposals
type ProposalRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Proposal, error)
	// FindByStage returns all proposals for a stage and category, newest first
	FindByStage(ctx context.Context, stageID uuid.UUID, category Category) ([]Proposal, error)
	// FindLiveByGroup returns the most recent non-withdrawn proposal of a
	// group for the stage and category, or nil when the group has none
	FindLiveByGroup(ctx context.Context, stageID, groupID uuid.UUID, category Category) (*Proposal, error)
	Save(ctx context.Context, p *Proposal) error
	// MarkSettled stamps every live proposal of the stage in one statement
	MarkSettled(ctx context.Context, stageID uuid.UUID, operatorID string) error
	// ClearSettled removes the settle mark during a stage reopen
	ClearSettled(ctx context.Context, stageID uuid.UUID) error
}

// BallotRepository persists ballots. Upsert keyed by (proposal, voter)
// keeps the one-live-ballot-per-voter invariant at the storage level.
type BallotRepository interface {
	FindByProposal(ctx context.Context, proposalID uuid.UUID) ([]Ballot, error)
	FindByVoter(ctx context.Context, proposalID uuid.UUID, voterID string) (*Ballot, error)
	Upsert(ctx context.Context, b *Ballot) error
}
