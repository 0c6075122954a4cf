package stage

import (
	"time"

	"github.com/google/uuid"

	"github.com/peerrank/backend/internal/domain/shared"
)

// Status is the lifecycle status of a stage. It is never stored: it is
// derived from the nullable timestamp fields so the status and the fields
// that justify it cannot drift apart.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusVoting    Status = "voting"
	StatusPaused    Status = "paused"
	StatusSettling  Status = "settling"
	StatusCompleted Status = "completed"
)

// Stage is a time-boxed unit of work within a project. It owns the two
// reward pools consumed by settlement and the timestamps the lifecycle is
// derived from. SettlingTime doubles as the per-stage settlement lock:
// it is only ever claimed through a conditional update in the repository.
type Stage struct {
	shared.BaseEntity
	ProjectID         uuid.UUID
	Name              string
	Description       string
	ReportRewardPool  int64
	CommentRewardPool int64
	StartTime         *time.Time
	VotingTime        *time.Time
	PausedTime        *time.Time
	SettlingTime      *time.Time
	SettledTime       *time.Time
	SettledBy         string
}

// NewStage creates a draft stage with the given reward pools
func NewStage(projectID uuid.UUID, name string, reportPool, commentPool int64) (*Stage, error) {
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Stage name is required")
	}
	if reportPool < 0 || commentPool < 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Reward pools must be non-negative")
	}
	return &Stage{
		BaseEntity:        shared.NewBaseEntity(),
		ProjectID:         projectID,
		Name:              name,
		ReportRewardPool:  reportPool,
		CommentRewardPool: commentPool,
	}, nil
}

// Status derives the lifecycle status from the timestamp fields.
// Priority: completed > settling > paused > voting > active > draft.
func (s *Stage) Status() Status {
	switch {
	case s.SettledTime != nil:
		return StatusCompleted
	case s.SettlingTime != nil:
		return StatusSettling
	case s.PausedTime != nil:
		return StatusPaused
	case s.VotingTime != nil:
		return StatusVoting
	case s.StartTime != nil:
		return StatusActive
	default:
		return StatusDraft
	}
}

// Activate moves a draft stage into the active phase
func (s *Stage) Activate() error {
	if s.Status() != StatusDraft {
		return shared.ErrInvalidState
	}
	now := time.Now()
	s.StartTime = &now
	s.UpdatedAt = now
	return nil
}

// OpenVoting opens the voting window for an active stage
func (s *Stage) OpenVoting() error {
	if s.Status() != StatusActive {
		return shared.ErrInvalidState
	}
	now := time.Now()
	s.VotingTime = &now
	s.UpdatedAt = now
	return nil
}

// Pause suspends a stage that has not entered settlement
func (s *Stage) Pause() error {
	switch s.Status() {
	case StatusActive, StatusVoting:
		now := time.Now()
		s.PausedTime = &now
		s.UpdatedAt = now
		return nil
	default:
		return shared.ErrInvalidState
	}
}

// Resume clears a pause
func (s *Stage) Resume() error {
	if s.Status() != StatusPaused {
		return shared.ErrInvalidState
	}
	s.PausedTime = nil
	s.Touch()
	return nil
}

// CanSettle reports whether the stage is in a state settlement may start
// from, returning the domain error a settle attempt would fail with.
func (s *Stage) CanSettle() error {
	switch s.Status() {
	case StatusVoting:
		return nil
	case StatusSettling:
		return shared.ErrSettlementInProgress
	case StatusCompleted:
		return shared.ErrAlreadySettled
	default:
		return shared.NewDomainError("VALIDATION_ERROR", "Stage must be in voting status to settle")
	}
}

// AcceptsBallots reports whether proposals and votes may still be written.
// During the settlement lock window writes are rejected, not queued.
func (s *Stage) AcceptsBallots() error {
	switch s.Status() {
	case StatusVoting:
		return nil
	case StatusSettling:
		return shared.ErrStageSettling
	case StatusCompleted:
		return shared.ErrAlreadySettled
	default:
		return shared.ErrInvalidState
	}
}
