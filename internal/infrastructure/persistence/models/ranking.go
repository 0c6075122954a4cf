package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/peerrank/backend/internal/domain/ranking"
)

// ProposalModel is the persistence model for ranking proposals. The
// ranked items are stored as a jsonb document; proposals are append-only
// apart from the withdraw/reset/settle marks.
type ProposalModel struct {
	BaseModel
	StageID       uuid.UUID            `gorm:"type:uuid;not null;index:idx_proposals_stage_category"`
	GroupID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	ProposerID    string               `gorm:"type:varchar(100);not null"`
	Category      ranking.Category     `gorm:"type:varchar(20);not null;index:idx_proposals_stage_category"`
	Items         []ranking.RankedItem `gorm:"type:jsonb;not null;serializer:json"`
	SettleTime    *time.Time
	WithdrawnTime *time.Time
	WithdrawnBy   string `gorm:"type:varchar(100)"`
	ResetTime     *time.Time
	ResetReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ProposalModel) TableName() string {
	return "ranking_proposals"
}

// ToDomain converts the persistence model to a domain Proposal
func (m *ProposalModel) ToDomain() *ranking.Proposal {
	return &ranking.Proposal{
		BaseEntity:    m.BaseModel.ToDomain(),
		StageID:       m.StageID,
		GroupID:       m.GroupID,
		ProposerID:    m.ProposerID,
		Category:      m.Category,
		Items:         m.Items,
		SettleTime:    m.SettleTime,
		WithdrawnTime: m.WithdrawnTime,
		WithdrawnBy:   m.WithdrawnBy,
		ResetTime:     m.ResetTime,
		ResetReason:   m.ResetReason,
	}
}

// FromDomain populates the persistence model from a domain Proposal
func (m *ProposalModel) FromDomain(p *ranking.Proposal) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.StageID = p.StageID
	m.GroupID = p.GroupID
	m.ProposerID = p.ProposerID
	m.Category = p.Category
	m.Items = p.Items
	m.SettleTime = p.SettleTime
	m.WithdrawnTime = p.WithdrawnTime
	m.WithdrawnBy = p.WithdrawnBy
	m.ResetTime = p.ResetTime
	m.ResetReason = p.ResetReason
}

// BallotModel is the persistence model for ballots. The unique index on
// (proposal_id, voter_id) backs the one-live-ballot-per-voter upsert.
type BallotModel struct {
	BaseModel
	ProposalID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ballots_proposal_voter,priority:1"`
	VoterID    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_ballots_proposal_voter,priority:2"`
	Agreement  int       `gorm:"not null"`
	Comment    string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (BallotModel) TableName() string {
	return "ranking_ballots"
}

// ToDomain converts the persistence model to a domain Ballot
func (m *BallotModel) ToDomain() *ranking.Ballot {
	return &ranking.Ballot{
		BaseEntity: m.BaseModel.ToDomain(),
		ProposalID: m.ProposalID,
		VoterID:    m.VoterID,
		Agreement:  m.Agreement,
		Comment:    m.Comment,
	}
}

// FromDomain populates the persistence model from a domain Ballot
func (m *BallotModel) FromDomain(b *ranking.Ballot) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.ProposalID = b.ProposalID
	m.VoterID = b.VoterID
	m.Agreement = b.Agreement
	m.Comment = b.Comment
}
