package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/peerrank/backend/internal/domain/settlement"
	"github.com/peerrank/backend/internal/infrastructure/persistence/models"
)

// GormSettlementRepository implements settlement.Repository using GORM
type GormSettlementRepository struct {
	db *gorm.DB
}

// NewGormSettlementRepository creates a new GormSettlementRepository
func NewGormSettlementRepository(db *gorm.DB) *GormSettlementRepository {
	return &GormSettlementRepository{db: db}
}

// Save appends one settlement record
func (r *GormSettlementRepository) Save(ctx context.Context, rec *settlement.Record) error {
	var model models.RecordModel
	model.FromDomain(rec)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByID finds a record by ID, or nil when it does not exist
func (r *GormSettlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Record, error) {
	var model models.RecordModel
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

// FindByStage finds all records of a stage, newest first
func (r *GormSettlementRepository) FindByStage(ctx context.Context, stageID uuid.UUID) ([]settlement.Record, error) {
	var recordModels []models.RecordModel
	if err := r.db.WithContext(ctx).
		Where("stage_id = ?", stageID).
		Order("settled_at DESC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	records := make([]settlement.Record, len(recordModels))
	for i := range recordModels {
		records[i] = *recordModels[i].ToDomain()
	}
	return records, nil
}

// FindLatestSettlement finds the most recent non-reversal record of a
// stage, or nil when the stage was never settled
func (r *GormSettlementRepository) FindLatestSettlement(ctx context.Context, stageID uuid.UUID) (*settlement.Record, error) {
	var model models.RecordModel
	if err := r.db.WithContext(ctx).
		Where("stage_id = ? AND type <> ?", stageID, settlement.RecordReversal).
		Order("settled_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindReversalOf finds the reversal record pointing at the given
// settlement, or nil when it has not been reversed
func (r *GormSettlementRepository) FindReversalOf(ctx context.Context, settlementID uuid.UUID) (*settlement.Record, error) {
	var model models.RecordModel
	if err := r.db.WithContext(ctx).
		Where("reversed_settlement_id = ?", settlementID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormSettlementRepository implements settlement.Repository
var _ settlement.Repository = (*GormSettlementRepository)(nil)
