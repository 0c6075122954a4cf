package settlement

import (
	"time"

	"github.com/google/uuid"

	"github.com/peerrank/backend/internal/domain/ledger"
	"github.com/peerrank/backend/internal/domain/settlement"
)

// Check severities in a validation report
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Check is one pre-settlement validation outcome
type Check struct {
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message"`
}

// ValidationReport is the outcome of a dry-run settlement validation.
// Errors block settlement; warnings are informational and can be
// bypassed with forceSettle.
type ValidationReport struct {
	StageID        uuid.UUID   `json:"stageId"`
	CanSettle      bool        `json:"canSettle"`
	Checks         []Check     `json:"checks"`
	ExcludedGroups []uuid.UUID `json:"excludedGroups,omitempty"`
}

func (r *ValidationReport) addCheck(name, severity string, passed bool, message string) {
	r.Checks = append(r.Checks, Check{Name: name, Severity: severity, Passed: passed, Message: message})
	if severity == SeverityError && !passed {
		r.CanSettle = false
	}
}

// Result is the settlement-result view assembled from the record and
// its stage.
type Result struct {
	StageID                uuid.UUID               `json:"stageId"`
	StageName              string                  `json:"stageName"`
	SettlementID           uuid.UUID               `json:"settlementId"`
	Type                   settlement.RecordType   `json:"type"`
	Status                 string                  `json:"status"`
	FinalRankings          map[uuid.UUID]int       `json:"finalRankings"`
	ScoringResults         []settlement.GroupScore `json:"scoringResults"`
	CommentRankings        map[uuid.UUID]int       `json:"commentRankings,omitempty"`
	CommentScores          []settlement.GroupScore `json:"commentScores,omitempty"`
	TotalPointsDistributed int64                   `json:"totalPointsDistributed"`
	ParticipantCount       int                     `json:"participantCount"`
	ExcludedGroups         []uuid.UUID             `json:"excludedGroups,omitempty"`
	ForceSettled           bool                    `json:"forceSettled"`
	SettledTime            time.Time               `json:"settledTime"`
}

// Record statuses surfaced in views. Records themselves are immutable;
// reversed is derived from the existence of a reversal record.
const (
	RecordStatusActive   = "active"
	RecordStatusReversed = "reversed"
)

// NewResult assembles the result view of one settlement record
func NewResult(r *settlement.Record, stageName string, reversed bool) Result {
	status := RecordStatusActive
	if reversed {
		status = RecordStatusReversed
	}
	return Result{
		StageID:                r.StageID,
		StageName:              stageName,
		SettlementID:           r.ID,
		Type:                   r.Type,
		Status:                 status,
		FinalRankings:          r.FinalRankings,
		ScoringResults:         r.Scores,
		CommentRankings:        r.CommentRankings,
		CommentScores:          r.CommentScores,
		TotalPointsDistributed: r.TotalRewardsAwarded,
		ParticipantCount:       r.ParticipantCount,
		ExcludedGroups:         r.ExcludedGroups,
		ForceSettled:           r.ForceSettled,
		SettledTime:            r.SettledAt,
	}
}

// UserImpact is the aggregated balance change of one user in a reversal
type UserImpact struct {
	UserID string `json:"userId"`
	Amount int64  `json:"amount"`
}

// ReversalPreview is the read-only dry run of a reversal
type ReversalPreview struct {
	StageID      uuid.UUID    `json:"stageId"`
	SettlementID uuid.UUID    `json:"settlementId"`
	Impacts      []UserImpact `json:"impacts"`
	TotalChange  int64        `json:"totalChange"`
	Transactions int          `json:"transactions"`
}

// Details is one settlement record together with its ledger entries
type Details struct {
	Result
	Entries []ledger.Transaction `json:"entries"`
}
