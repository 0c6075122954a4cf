package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/peerrank/backend/internal/domain/stage"
	"github.com/peerrank/backend/internal/infrastructure/persistence/models"
)

// GormStageRepository implements stage.Repository using GORM. The
// settlement lock primitives are conditional single-row updates: the
// WHERE clause carries the expected state and RowsAffected tells the
// caller whether it won.
type GormStageRepository struct {
	db *gorm.DB
}

// NewGormStageRepository creates a new GormStageRepository
func NewGormStageRepository(db *gorm.DB) *GormStageRepository {
	return &GormStageRepository{db: db}
}

// FindByID finds a stage by ID, or nil when it does not exist
func (r *GormStageRepository) FindByID(ctx context.Context, id uuid.UUID) (*stage.Stage, error) {
	var model models.StageModel
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

// FindByProject finds all stages of a project, oldest first
func (r *GormStageRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]stage.Stage, error) {
	var stageModels []models.StageModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&stageModels).Error; err != nil {
		return nil, err
	}
	stages := make([]stage.Stage, len(stageModels))
	for i := range stageModels {
		stages[i] = *stageModels[i].ToDomain()
	}
	return stages, nil
}

// Save creates or updates a stage
func (r *GormStageRepository) Save(ctx context.Context, s *stage.Stage) error {
	var model models.StageModel
	model.FromDomain(s)
	return r.db.WithContext(ctx).Save(&model).Error
}

// ClaimSettling sets settling_time iff it is currently null. At most
// one concurrent caller sees RowsAffected == 1.
func (r *GormStageRepository) ClaimSettling(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StageModel{}).
		Where("id = ? AND settling_time IS NULL", id).
		Updates(map[string]interface{}{
			"settling_time": at,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseSettling clears the settling claim after a failed run
func (r *GormStageRepository) ReleaseSettling(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.StageModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"settling_time": nil,
			"updated_at":    time.Now(),
		}).Error
}

// MarkSettled records a completed settlement and releases the claim
func (r *GormStageRepository) MarkSettled(ctx context.Context, id uuid.UUID, operatorID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.StageModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"settling_time": nil,
			"settled_time":  at,
			"settled_by":    operatorID,
			"updated_at":    time.Now(),
		}).Error
}

// ClearSettlement clears the settlement fields during a stage reopen
func (r *GormStageRepository) ClearSettlement(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.StageModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"settling_time": nil,
			"settled_time":  nil,
			"settled_by":    "",
			"updated_at":    time.Now(),
		}).Error
}

// ReleaseStaleClaims clears settling claims older than the cutoff that
// never completed, and returns how many rows were released.
func (r *GormStageRepository) ReleaseStaleClaims(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StageModel{}).
		Where("settling_time IS NOT NULL AND settling_time < ? AND settled_time IS NULL", olderThan).
		Updates(map[string]interface{}{
			"settling_time": nil,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Ensure GormStageRepository implements stage.Repository
var _ stage.Repository = (*GormStageRepository)(nil)
