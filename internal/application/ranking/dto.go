package ranking

import (
	"time"

	"github.com/google/uuid"

	"github.com/peerrank/backend/internal/domain/ranking"
)

// ProposalView is a proposal with its derived status and live tally
type ProposalView struct {
	ID            uuid.UUID             `json:"id"`
	StageID       uuid.UUID             `json:"stageId"`
	GroupID       uuid.UUID             `json:"groupId"`
	ProposerID    string                `json:"proposerId"`
	Category      ranking.Category      `json:"category"`
	Items         []ranking.RankedItem  `json:"items"`
	Status        ranking.DisplayStatus `json:"status"`
	Tally         ranking.Tally         `json:"tally"`
	CreatedAt     time.Time             `json:"createdAt"`
	WithdrawnTime *time.Time            `json:"withdrawnTime,omitempty"`
	ResetTime     *time.Time            `json:"resetTime,omitempty"`
	SettleTime    *time.Time            `json:"settleTime,omitempty"`
}

// NewProposalView assembles the view of one proposal
func NewProposalView(p *ranking.Proposal, tally ranking.Tally) ProposalView {
	return ProposalView{
		ID:            p.ID,
		StageID:       p.StageID,
		GroupID:       p.GroupID,
		ProposerID:    p.ProposerID,
		Category:      p.Category,
		Items:         p.Items,
		Status:        p.Status(),
		Tally:         tally,
		CreatedAt:     p.CreatedAt,
		WithdrawnTime: p.WithdrawnTime,
		ResetTime:     p.ResetTime,
		SettleTime:    p.SettleTime,
	}
}
