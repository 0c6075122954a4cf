package ranking

import (
	"time"

	"github.com/google/uuid"

	"github.com/peerrank/backend/internal/domain/shared"
)

// Category distinguishes what kind of items a proposal ranks
type Category string

const (
	CategoryReport  Category = "report"
	CategoryComment Category = "comment"
)

// DisplayStatus is derived from the proposal's nullable timestamps,
// checked in priority order. It is never stored.
type DisplayStatus string

const (
	StatusSettled   DisplayStatus = "settled"
	StatusWithdrawn DisplayStatus = "withdrawn"
	StatusReset     DisplayStatus = "reset"
	StatusPending   DisplayStatus = "pending"
)

// RankedItem is one entry of a proposed ordering
type RankedItem struct {
	ItemID uuid.UUID `json:"itemId"`
	Rank   int       `json:"rank"`
}

// Proposal is one group's proposed ordering of items for a stage.
// A group may submit several proposals over time; the most recent
// non-withdrawn one is live. Older proposals are kept for audit.
type Proposal struct {
	shared.BaseEntity
	StageID       uuid.UUID
	GroupID       uuid.UUID
	ProposerID    string
	Category      Category
	Items         []RankedItem
	SettleTime    *time.Time
	WithdrawnTime *time.Time
	WithdrawnBy   string
	ResetTime     *time.Time
	ResetReason   string
}

// NewProposal creates a proposal after validating the ranking payload
func NewProposal(stageID, groupID uuid.UUID, proposerID string, category Category, items []RankedItem) (*Proposal, error) {
	if proposerID == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Proposer identity is required")
	}
	if category != CategoryReport && category != CategoryComment {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown ranking category")
	}
	if err := ValidateItems(items); err != nil {
		return nil, err
	}
	return &Proposal{
		BaseEntity: shared.NewBaseEntity(),
		StageID:    stageID,
		GroupID:    groupID,
		ProposerID: proposerID,
		Category:   category,
		Items:      items,
	}, nil
}

// ValidateItems checks a ranking payload: non-empty, ranks start at 1,
// no duplicate items, no duplicate ranks.
func ValidateItems(items []RankedItem) error {
	if len(items) == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Ranking must contain at least one item")
	}
	seenItems := make(map[uuid.UUID]struct{}, len(items))
	seenRanks := make(map[int]struct{}, len(items))
	for _, it := range items {
		if it.ItemID == uuid.Nil {
			return shared.NewDomainError("VALIDATION_ERROR", "Ranking contains an empty item id")
		}
		if it.Rank < 1 {
			return shared.NewDomainError("VALIDATION_ERROR", "Ranks must be 1 or greater")
		}
		if _, ok := seenItems[it.ItemID]; ok {
			return shared.NewDomainError("VALIDATION_ERROR", "Ranking contains a duplicate item")
		}
		if _, ok := seenRanks[it.Rank]; ok {
			return shared.NewDomainError("VALIDATION_ERROR", "Ranking contains a duplicate rank")
		}
		seenItems[it.ItemID] = struct{}{}
		seenRanks[it.Rank] = struct{}{}
	}
	return nil
}

// Status derives the display status. Priority: settled > withdrawn > reset > pending.
func (p *Proposal) Status() DisplayStatus {
	switch {
	case p.SettleTime != nil:
		return StatusSettled
	case p.WithdrawnTime != nil:
		return StatusWithdrawn
	case p.ResetTime != nil:
		return StatusReset
	default:
		return StatusPending
	}
}

// IsLive reports whether the proposal can still take part in consensus
func (p *Proposal) IsLive() bool {
	return p.WithdrawnTime == nil && p.SettleTime == nil
}

// Withdraw marks the proposal withdrawn. Withdrawn proposals are
// excluded from consensus but never deleted.
func (p *Proposal) Withdraw(actorID string) error {
	if p.SettleTime != nil {
		return shared.ErrAlreadySettled
	}
	if p.WithdrawnTime != nil {
		return shared.ErrInvalidState
	}
	now := time.Now()
	p.WithdrawnTime = &now
	p.WithdrawnBy = actorID
	p.UpdatedAt = now
	return nil
}

// ResetVotes invalidates all ballots cast so far. Ballots stay stored
// for audit; the tally only counts ballots cast after the reset mark.
func (p *Proposal) ResetVotes(reason string) error {
	if p.SettleTime != nil {
		return shared.ErrAlreadySettled
	}
	if p.WithdrawnTime != nil {
		return shared.ErrInvalidState
	}
	now := time.Now()
	p.ResetTime = &now
	p.ResetReason = reason
	p.UpdatedAt = now
	return nil
}

// MarkSettled stamps the proposal as part of a completed settlement
func (p *Proposal) MarkSettled(at time.Time) {
	p.SettleTime = &at
	p.UpdatedAt = at
}
