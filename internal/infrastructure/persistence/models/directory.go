package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/peerrank/backend/internal/domain/ranking"
)

// StageItemModel is one rankable deliverable registered for a stage.
// Items are written by the platform when submissions and comments come
// in; settlement only reads them.
type StageItemModel struct {
	BaseModel
	StageID  uuid.UUID        `gorm:"type:uuid;not null;index:idx_stage_items_stage_category"`
	Category ranking.Category `gorm:"type:varchar(20);not null;index:idx_stage_items_stage_category"`
	GroupID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	AuthorID string           `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (StageItemModel) TableName() string {
	return "stage_items"
}

// MemberShareModel is one member's declared participation percentage in
// a group's submission for a stage. Percentages of one group sum to 100.
type MemberShareModel struct {
	BaseModel
	StageID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_member_shares_stage_group_user,priority:1"`
	GroupID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_member_shares_stage_group_user,priority:2"`
	UserID  string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_member_shares_stage_group_user,priority:3"`
	Percent decimal.Decimal `gorm:"type:decimal(5,2);not null"`
}

// TableName returns the table name for GORM
func (MemberShareModel) TableName() string {
	return "member_shares"
}

// SupervisorRankingModel is the supervisor's override ranking for one
// category of a stage. At most one row per (stage, category); a resubmit
// replaces the items and bumps RankedAt.
type SupervisorRankingModel struct {
	BaseModel
	StageID      uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_supervisor_rankings_stage_category,priority:1"`
	Category     ranking.Category     `gorm:"type:varchar(20);not null;uniqueIndex:idx_supervisor_rankings_stage_category,priority:2"`
	SupervisorID string               `gorm:"type:varchar(100);not null"`
	Items        []ranking.RankedItem `gorm:"type:jsonb;not null;serializer:json"`
	RankedAt     time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SupervisorRankingModel) TableName() string {
	return "supervisor_rankings"
}
