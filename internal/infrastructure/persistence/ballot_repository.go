package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/peerrank/backend/internal/domain/ranking"
	"github.com/peerrank/backend/internal/infrastructure/persistence/models"
)

// GormBallotRepository implements ranking.BallotRepository using GORM.
// The one-ballot-per-voter invariant lives in the unique index on
// (proposal_id, voter_id); Upsert rides on it with ON CONFLICT.
type GormBallotRepository struct {
	db *gorm.DB
}

// NewGormBallotRepository creates a new GormBallotRepository
func NewGormBallotRepository(db *gorm.DB) *GormBallotRepository {
	return &GormBallotRepository{db: db}
}

// FindByProposal finds all ballots cast on a proposal
func (r *GormBallotRepository) FindByProposal(ctx context.Context, proposalID uuid.UUID) ([]ranking.Ballot, error) {
	var ballotModels []models.BallotModel
	if err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("created_at ASC").
		Find(&ballotModels).Error; err != nil {
		return nil, err
	}
	ballots := make([]ranking.Ballot, len(ballotModels))
	for i := range ballotModels {
		ballots[i] = *ballotModels[i].ToDomain()
	}
	return ballots, nil
}

// FindByVoter finds a voter's ballot on a proposal, or nil when the
// voter has not voted
func (r *GormBallotRepository) FindByVoter(ctx context.Context, proposalID uuid.UUID, voterID string) (*ranking.Ballot, error) {
	var model models.BallotModel
	if err := r.db.WithContext(ctx).
		Where("proposal_id = ? AND voter_id = ?", proposalID, voterID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert inserts the ballot or, when the voter already voted on this
// proposal, overwrites the agreement and comment in place
func (r *GormBallotRepository) Upsert(ctx context.Context, b *ranking.Ballot) error {
	var model models.BallotModel
	model.FromDomain(b)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "proposal_id"}, {Name: "voter_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"agreement", "comment", "updated_at"}),
		}).
		Create(&model).Error
}

// Ensure GormBallotRepository implements ranking.BallotRepository
var _ ranking.BallotRepository = (*GormBallotRepository)(nil)
