package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/peerrank/backend/internal/domain/settlement"
)

// RecordModel is the persistence model for settlement records. The
// ranking and score snapshots are stored as jsonb documents so the
// audit trail survives later changes to the live data.
type RecordModel struct {
	BaseModel
	StageID              uuid.UUID               `gorm:"type:uuid;not null;index"`
	ProjectID            uuid.UUID               `gorm:"type:uuid;not null;index"`
	Type                 settlement.RecordType   `gorm:"type:varchar(20);not null"`
	FinalRankings        map[uuid.UUID]int       `gorm:"type:jsonb;serializer:json"`
	Scores               []settlement.GroupScore `gorm:"type:jsonb;serializer:json"`
	CommentRankings      map[uuid.UUID]int       `gorm:"type:jsonb;serializer:json"`
	CommentScores        []settlement.GroupScore `gorm:"type:jsonb;serializer:json"`
	TotalRewardsAwarded  int64                   `gorm:"not null"`
	ParticipantCount     int                     `gorm:"not null"`
	ExcludedGroups       []uuid.UUID             `gorm:"type:jsonb;serializer:json"`
	ForceSettled         bool                    `gorm:"not null;default:false"`
	OperatorID           string                  `gorm:"type:varchar(100);not null"`
	Reason               string                  `gorm:"type:varchar(500)"`
	ReversedSettlementID *uuid.UUID              `gorm:"type:uuid;index"`
	SettledAt            time.Time               `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (RecordModel) TableName() string {
	return "settlement_records"
}

// ToDomain converts the persistence model to a domain Record
func (m *RecordModel) ToDomain() *settlement.Record {
	return &settlement.Record{
		BaseEntity:           m.BaseModel.ToDomain(),
		StageID:              m.StageID,
		ProjectID:            m.ProjectID,
		Type:                 m.Type,
		FinalRankings:        m.FinalRankings,
		Scores:               m.Scores,
		CommentRankings:      m.CommentRankings,
		CommentScores:        m.CommentScores,
		TotalRewardsAwarded:  m.TotalRewardsAwarded,
		ParticipantCount:     m.ParticipantCount,
		ExcludedGroups:       m.ExcludedGroups,
		ForceSettled:         m.ForceSettled,
		OperatorID:           m.OperatorID,
		Reason:               m.Reason,
		ReversedSettlementID: m.ReversedSettlementID,
		SettledAt:            m.SettledAt,
	}
}

// FromDomain populates the persistence model from a domain Record
func (m *RecordModel) FromDomain(r *settlement.Record) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.StageID = r.StageID
	m.ProjectID = r.ProjectID
	m.Type = r.Type
	m.FinalRankings = r.FinalRankings
	m.Scores = r.Scores
	m.CommentRankings = r.CommentRankings
	m.CommentScores = r.CommentScores
	m.TotalRewardsAwarded = r.TotalRewardsAwarded
	m.ParticipantCount = r.ParticipantCount
	m.ExcludedGroups = r.ExcludedGroups
	m.ForceSettled = r.ForceSettled
	m.OperatorID = r.OperatorID
	m.Reason = r.Reason
	m.ReversedSettlementID = r.ReversedSettlementID
	m.SettledAt = r.SettledAt
}
