package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	appsettlement "github.com/peerrank/backend/internal/application/settlement"
	"github.com/peerrank/backend/internal/domain/ranking"
	"github.com/peerrank/backend/internal/domain/settlement"
	"github.com/peerrank/backend/internal/infrastructure/persistence/models"
)

// GormStageDirectory implements the StageDirectory port over the
// platform tables the settlement subsystem reads but does not own.
type GormStageDirectory struct {
	db *gorm.DB
}

// NewGormStageDirectory creates a new GormStageDirectory
func NewGormStageDirectory(db *gorm.DB) *GormStageDirectory {
	return &GormStageDirectory{db: db}
}

// Items returns the rankable items of a stage for one category
func (d *GormStageDirectory) Items(ctx context.Context, stageID uuid.UUID, category ranking.Category) ([]settlement.Item, error) {
	var itemModels []models.StageItemModel
	if err := d.db.WithContext(ctx).
		Where("stage_id = ? AND category = ?", stageID, category).
		Order("created_at ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	items := make([]settlement.Item, len(itemModels))
	for i, m := range itemModels {
		items[i] = settlement.Item{
			ID:       m.ID,
			GroupID:  m.GroupID,
			AuthorID: m.AuthorID,
		}
	}
	return items, nil
}

// MemberShares returns the declared participation split of a group's
// submission. An empty slice means the item author receives the whole
// amount.
func (d *GormStageDirectory) MemberShares(ctx context.Context, stageID, groupID uuid.UUID) ([]settlement.MemberShare, error) {
	var shareModels []models.MemberShareModel
	if err := d.db.WithContext(ctx).
		Where("stage_id = ? AND group_id = ?", stageID, groupID).
		Order("user_id ASC").
		Find(&shareModels).Error; err != nil {
		return nil, err
	}
	shares := make([]settlement.MemberShare, len(shareModels))
	for i, m := range shareModels {
		shares[i] = settlement.MemberShare{
			UserID:  m.UserID,
			Percent: m.Percent,
		}
	}
	return shares, nil
}

// SupervisorRanking returns the supervisor's override ranking for a
// category, or an empty slice when none was submitted
func (d *GormStageDirectory) SupervisorRanking(ctx context.Context, stageID uuid.UUID, category ranking.Category) ([]ranking.RankedItem, time.Time, error) {
	var model models.SupervisorRankingModel
	if err := d.db.WithContext(ctx).
		Where("stage_id = ? AND category = ?", stageID, category).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, err
	}
	return model.Items, model.RankedAt, nil
}

// Ensure GormStageDirectory implements the StageDirectory port
var _ appsettlement.StageDirectory = (*GormStageDirectory)(nil)
