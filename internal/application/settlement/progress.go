package settlement

import (
	"github.com/google/uuid"

	"github.com/peerrank/backend/internal/domain/shared"
)

// Event types published on the event bus during settlement
const (
	EventTypeProgress = "settlement.progress"
	EventTypeReversed = "settlement.reversed"
)

// Settlement steps, in delivery order. Observers receive one progress
// message per step; a failure message takes the place of the next
// expected step.
const (
	StepInitializing               = "initializing"
	StepLockAcquired               = "lock_acquired"
	StepVotesCalculated            = "votes_calculated"
	StepDistributingReportRewards  = "distributing_report_rewards"
	StepDistributingCommentRewards = "distributing_comment_rewards"
	StepCompleted                  = "completed"
	StepFailed                     = "failed"
)

var stepProgress = map[string]int{
	StepInitializing:               0,
	StepLockAcquired:               10,
	StepVotesCalculated:            30,
	StepDistributingReportRewards:  60,
	StepDistributingCommentRewards: 80,
	StepCompleted:                  100,
}

// ProgressEvent is the per-step progress message broadcast to observers.
// Delivery is best-effort: the settlement outcome never depends on it.
type ProgressEvent struct {
	shared.BaseDomainEvent
	StageID  uuid.UUID              `json:"stageId"`
	Step     string                 `json:"step"`
	Progress int                    `json:"progress"`
	Message  string                 `json:"message"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// NewProgressEvent creates the progress event for one step
func NewProgressEvent(stageID uuid.UUID, step, message string, details map[string]interface{}) *ProgressEvent {
	return &ProgressEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProgress, "stage", stageID),
		StageID:         stageID,
		Step:            step,
		Progress:        stepProgress[step],
		Message:         message,
		Details:         details,
	}
}

// NewFailureEvent creates the progress message emitted in place of the
// next step when a settlement attempt fails.
func NewFailureEvent(stageID uuid.UUID, message string, details map[string]interface{}) *ProgressEvent {
	return &ProgressEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProgress, "stage", stageID),
		StageID:         stageID,
		Step:            StepFailed,
		Progress:        0,
		Message:         message,
		Details:         details,
	}
}

// ReversedEvent announces a completed reversal
type ReversedEvent struct {
	shared.BaseDomainEvent
	StageID      uuid.UUID `json:"stageId"`
	SettlementID uuid.UUID `json:"settlementId"`
	ReversalID   uuid.UUID `json:"reversalId"`
}

// NewReversedEvent creates the reversal announcement
func NewReversedEvent(stageID, settlementID, reversalID uuid.UUID) *ReversedEvent {
	return &ReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReversed, "stage", stageID),
		StageID:         stageID,
		SettlementID:    settlementID,
		ReversalID:      reversalID,
	}
}
