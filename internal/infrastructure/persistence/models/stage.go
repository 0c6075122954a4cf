package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/peerrank/backend/internal/domain/stage"
)

// StageModel is the persistence model for the Stage aggregate. The
// lifecycle timestamps are stored as nullable columns; status is never
// persisted.
type StageModel struct {
	BaseModel
	ProjectID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Name              string    `gorm:"type:varchar(200);not null"`
	Description       string    `gorm:"type:text"`
	ReportRewardPool  int64     `gorm:"not null;default:0"`
	CommentRewardPool int64     `gorm:"not null;default:0"`
	StartTime         *time.Time
	VotingTime        *time.Time
	PausedTime        *time.Time
	SettlingTime      *time.Time `gorm:"index"`
	SettledTime       *time.Time
	SettledBy         string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (StageModel) TableName() string {
	return "stages"
}

// ToDomain converts the persistence model to a domain Stage
func (m *StageModel) ToDomain() *stage.Stage {
	return &stage.Stage{
		BaseEntity:        m.BaseModel.ToDomain(),
		ProjectID:         m.ProjectID,
		Name:              m.Name,
		Description:       m.Description,
		ReportRewardPool:  m.ReportRewardPool,
		CommentRewardPool: m.CommentRewardPool,
		StartTime:         m.StartTime,
		VotingTime:        m.VotingTime,
		PausedTime:        m.PausedTime,
		SettlingTime:      m.SettlingTime,
		SettledTime:       m.SettledTime,
		SettledBy:         m.SettledBy,
	}
}

// FromDomain populates the persistence model from a domain Stage
func (m *StageModel) FromDomain(s *stage.Stage) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.ProjectID = s.ProjectID
	m.Name = s.Name
	m.Description = s.Description
	m.ReportRewardPool = s.ReportRewardPool
	m.CommentRewardPool = s.CommentRewardPool
	m.StartTime = s.StartTime
	m.VotingTime = s.VotingTime
	m.PausedTime = s.PausedTime
	m.SettlingTime = s.SettlingTime
	m.SettledTime = s.SettledTime
	m.SettledBy = s.SettledBy
}
