package ranking

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peerrank/backend/internal/domain/ranking"
	"github.com/peerrank/backend/internal/domain/shared"
	"github.com/peerrank/backend/internal/domain/stage"
)

// Eligibility answers group-membership questions. Group rosters live in
// the surrounding platform; this port is how the service reaches them.
type Eligibility interface {
	IsGroupMember(ctx context.Context, groupID uuid.UUID, userID string) (bool, error)
}

// ProposalService handles ranking proposals and the ballots cast on them
type ProposalService struct {
	stageRepo    stage.Repository
	proposalRepo ranking.ProposalRepository
	ballotRepo   ranking.BallotRepository
	eligibility  Eligibility
	logger       *zap.Logger
}

// NewProposalService creates a proposal service
func NewProposalService(
	stageRepo stage.Repository,
	proposalRepo ranking.ProposalRepository,
	ballotRepo ranking.BallotRepository,
	eligibility Eligibility,
	logger *zap.Logger,
) *ProposalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProposalService{
		stageRepo:    stageRepo,
		proposalRepo: proposalRepo,
		ballotRepo:   ballotRepo,
		eligibility:  eligibility,
		logger:       logger,
	}
}

// SubmitProposal creates a new live proposal for the group. Earlier
// proposals of the same group are superseded by recency, not deleted.
func (s *ProposalService) SubmitProposal(ctx context.Context, stageID, groupID uuid.UUID, proposerID string, category ranking.Category, items []ranking.RankedItem) (*ranking.Proposal, error) {
	st, err := s.findStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if err := st.AcceptsBallots(); err != nil {
		return nil, err
	}
	if err := s.requireMembership(ctx, groupID, proposerID); err != nil {
		return nil, err
	}

	p, err := ranking.NewProposal(stageID, groupID, proposerID, category, items)
	if err != nil {
		return nil, err
	}
	if err := s.proposalRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("ranking proposal submitted",
		zap.String("proposal_id", p.ID.String()),
		zap.String("stage_id", stageID.String()),
		zap.String("group_id", groupID.String()),
		zap.String("proposer", proposerID),
	)
	return p, nil
}

// CastVote upserts the voter's single live ballot on a proposal.
// Proposers cannot vote on their own proposal, and voters must belong
// to the proposal's group.
func (s *ProposalService) CastVote(ctx context.Context, proposalID uuid.UUID, voterID string, agreement int, comment string) (ranking.Tally, error) {
	p, err := s.findProposal(ctx, proposalID)
	if err != nil {
		return ranking.Tally{}, err
	}
	if !p.IsLive() {
		return ranking.Tally{}, shared.ErrInvalidState
	}
	st, err := s.findStage(ctx, p.StageID)
	if err != nil {
		return ranking.Tally{}, err
	}
	if err := st.AcceptsBallots(); err != nil {
		return ranking.Tally{}, err
	}
	if voterID == p.ProposerID {
		return ranking.Tally{}, shared.ErrInvalidVoter
	}
	if err := s.requireVoter(ctx, p.GroupID, voterID); err != nil {
		return ranking.Tally{}, err
	}

	b, err := ranking.NewBallot(proposalID, voterID, agreement, comment)
	if err != nil {
		return ranking.Tally{}, err
	}
	if err := s.ballotRepo.Upsert(ctx, b); err != nil {
		return ranking.Tally{}, err
	}
	return s.tally(ctx, p)
}

// Withdraw excludes a proposal from consensus, keeping it for audit
func (s *ProposalService) Withdraw(ctx context.Context, proposalID uuid.UUID, actorID string) (*ranking.Proposal, error) {
	p, err := s.findProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if err := p.Withdraw(actorID); err != nil {
		return nil, err
	}
	if err := s.proposalRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ResetVotes invalidates all ballots cast so far on the proposal.
// Stored ballots survive for audit; only the tally window moves.
func (s *ProposalService) ResetVotes(ctx context.Context, proposalID uuid.UUID, reason string) (*ranking.Proposal, error) {
	p, err := s.findProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if err := p.ResetVotes(reason); err != nil {
		return nil, err
	}
	if err := s.proposalRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("proposal votes reset",
		zap.String("proposal_id", proposalID.String()),
		zap.String("reason", reason),
	)
	return p, nil
}

// Tally returns the live vote counts of a proposal
func (s *ProposalService) Tally(ctx context.Context, proposalID uuid.UUID) (ranking.Tally, error) {
	p, err := s.findProposal(ctx, proposalID)
	if err != nil {
		return ranking.Tally{}, err
	}
	return s.tally(ctx, p)
}

// ListByStage returns all proposals of a stage with derived status and
// current tallies, newest first.
func (s *ProposalService) ListByStage(ctx context.Context, stageID uuid.UUID, category ranking.Category) ([]ProposalView, error) {
	proposals, err := s.proposalRepo.FindByStage(ctx, stageID, category)
	if err != nil {
		return nil, err
	}
	views := make([]ProposalView, 0, len(proposals))
	for i := range proposals {
		p := &proposals[i]
		tally, err := s.tally(ctx, p)
		if err != nil {
			return nil, err
		}
		views = append(views, NewProposalView(p, tally))
	}
	return views, nil
}

func (s *ProposalService) tally(ctx context.Context, p *ranking.Proposal) (ranking.Tally, error) {
	ballots, err := s.ballotRepo.FindByProposal(ctx, p.ID)
	if err != nil {
		return ranking.Tally{}, err
	}
	return ranking.TallyBallots(p, ballots), nil
}

func (s *ProposalService) findStage(ctx context.Context, stageID uuid.UUID) (*stage.Stage, error) {
	st, err := s.stageRepo.FindByID(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, shared.ErrNotFound
	}
	return st, nil
}

func (s *ProposalService) findProposal(ctx context.Context, proposalID uuid.UUID) (*ranking.Proposal, error) {
	p, err := s.proposalRepo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (s *ProposalService) requireMembership(ctx context.Context, groupID uuid.UUID, userID string) error {
	ok, err := s.eligibility.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden
	}
	return nil
}

func (s *ProposalService) requireVoter(ctx context.Context, groupID uuid.UUID, voterID string) error {
	ok, err := s.eligibility.IsGroupMember(ctx, groupID, voterID)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrInvalidVoter
	}
	return nil
}
