package ranking

import (
	"github.com/google/uuid"

	"github.com/peerrank/backend/internal/domain/shared"
)

// Agreement values carried by a ballot
const (
	Agree    = 1
	Disagree = -1
)

// Ballot is one voter's judgment on a proposal. A voter has at most one
// live ballot per proposal: casting again replaces the previous one.
type Ballot struct {
	shared.BaseEntity
	ProposalID uuid.UUID
	VoterID    string
	Agreement  int
	Comment    string
}

// NewBallot creates a ballot, validating the agreement value
func NewBallot(proposalID uuid.UUID, voterID string, agreement int, comment string) (*Ballot, error) {
	if voterID == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Voter identity is required")
	}
	if agreement != Agree && agreement != Disagree {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Agreement must be +1 or -1")
	}
	return &Ballot{
		BaseEntity: shared.NewBaseEntity(),
		ProposalID: proposalID,
		VoterID:    voterID,
		Agreement:  agreement,
		Comment:    comment,
	}, nil
}

// Tally is the live vote count for a proposal
type Tally struct {
	AgreeVotes    int `json:"agreeVotes"`
	DisagreeVotes int `json:"disagreeVotes"`
	VoteScore     int `json:"voteScore"`
}

// TallyBallots computes the tally from the ballots of one proposal.
// Ballots cast at or before the proposal's reset mark do not count.
func TallyBallots(p *Proposal, ballots []Ballot) Tally {
	var t Tally
	for _, b := range ballots {
		if p.ResetTime != nil && !b.CreatedAt.After(*p.ResetTime) {
			continue
		}
		if b.Agreement > 0 {
			t.AgreeVotes++
		} else {
			t.DisagreeVotes++
		}
	}
	t.VoteScore = t.AgreeVotes - t.DisagreeVotes
	return t
}
