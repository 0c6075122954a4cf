package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/peerrank/backend/internal/domain/ranking"
	"github.com/peerrank/backend/internal/infrastructure/persistence/models"
)

// GormProposalRepository implements ranking.ProposalRepository using GORM
type GormProposalRepository struct {
	db *gorm.DB
}

// NewGormProposalRepository creates a new GormProposalRepository
func NewGormProposalRepository(db *gorm.DB) *GormProposalRepository {
	return &GormProposalRepository{db: db}
}

// FindByID finds a proposal by ID, or nil when it does not exist
func (r *GormProposalRepository) FindByID(ctx context.Context, id uuid.UUID) (*ranking.Proposal, error) {
	var model models.ProposalModel
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStage finds all proposals for a stage and category, newest first
func (r *GormProposalRepository) FindByStage(ctx context.Context, stageID uuid.UUID, category ranking.Category) ([]ranking.Proposal, error) {
	var proposalModels []models.ProposalModel
	if err := r.db.WithContext(ctx).
		Where("stage_id = ? AND category = ?", stageID, category).
		Order("created_at DESC").
		Find(&proposalModels).Error; err != nil {
		return nil, err
	}
	proposals := make([]ranking.Proposal, len(proposalModels))
	for i := range proposalModels {
		proposals[i] = *proposalModels[i].ToDomain()
	}
	return proposals, nil
}

// FindLiveByGroup finds the most recent non-withdrawn proposal of a
// group for the stage and category, or nil when the group has none
func (r *GormProposalRepository) FindLiveByGroup(ctx context.Context, stageID, groupID uuid.UUID, category ranking.Category) (*ranking.Proposal, error) {
	var model models.ProposalModel
	if err := r.db.WithContext(ctx).
		Where("stage_id = ? AND group_id = ? AND category = ? AND withdrawn_time IS NULL", stageID, groupID, category).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a proposal
func (r *GormProposalRepository) Save(ctx context.Context, p *ranking.Proposal) error {
	var model models.ProposalModel
	model.FromDomain(p)
	return r.db.WithContext(ctx).Save(&model).Error
}

// MarkSettled stamps every live proposal of the stage in one statement
func (r *GormProposalRepository) MarkSettled(ctx context.Context, stageID uuid.UUID, operatorID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.ProposalModel{}).
		Where("stage_id = ? AND withdrawn_time IS NULL AND settle_time IS NULL", stageID).
		Updates(map[string]interface{}{
			"settle_time": now,
			"updated_at":  now,
		}).Error
}

// ClearSettled removes the settle mark during a stage reopen
func (r *GormProposalRepository) ClearSettled(ctx context.Context, stageID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ProposalModel{}).
		Where("stage_id = ? AND settle_time IS NOT NULL", stageID).
		Updates(map[string]interface{}{
			"settle_time": nil,
			"updated_at":  time.Now(),
		}).Error
}

// Ensure GormProposalRepository implements ranking.ProposalRepository
var _ ranking.ProposalRepository = (*GormProposalRepository)(nil)
