package settlement

import (
	"time"

	"github.com/google/uuid"

	"github.com/peerrank/backend/internal/domain/shared"
)

// RecordType classifies a settlement run
type RecordType string

const (
	RecordReport   RecordType = "report"
	RecordComment  RecordType = "comment"
	RecordReversal RecordType = "reversal"
)

// Record is the immutable audit record of one settlement or reversal
// run. It is never updated after creation: a reversal produces a new
// record pointing at the original through ReversedSettlementID, and
// "already reversed" is detected by the existence of such a record.
type Record struct {
	shared.BaseEntity
	StageID              uuid.UUID
	ProjectID            uuid.UUID
	Type                 RecordType
	FinalRankings        map[uuid.UUID]int
	Scores               []GroupScore
	CommentRankings      map[uuid.UUID]int
	CommentScores        []GroupScore
	TotalRewardsAwarded  int64
	ParticipantCount     int
	ExcludedGroups       []uuid.UUID
	ForceSettled         bool
	OperatorID           string
	Reason               string
	ReversedSettlementID *uuid.UUID
	SettledAt            time.Time
}

// NewRecord creates the record of a completed settlement run. The type
// is report when a report pool was distributed, comment when only the
// comment pool was.
func NewRecord(stageID, projectID uuid.UUID, operatorID string, report, comment Distribution, excluded []uuid.UUID, forced bool) *Record {
	recordType := RecordReport
	if len(report.Scores) == 0 && len(comment.Scores) > 0 {
		recordType = RecordComment
	}

	participants := make(map[string]struct{})
	for _, p := range report.Postings {
		participants[p.UserID] = struct{}{}
	}
	for _, p := range comment.Postings {
		participants[p.UserID] = struct{}{}
	}

	r := &Record{
		BaseEntity:          shared.NewBaseEntity(),
		StageID:             stageID,
		ProjectID:           projectID,
		Type:                recordType,
		FinalRankings:       scoresToRankings(report.Scores),
		Scores:              report.Scores,
		CommentRankings:     scoresToRankings(comment.Scores),
		CommentScores:       comment.Scores,
		TotalRewardsAwarded: report.Total + comment.Total,
		ParticipantCount:    len(participants),
		ExcludedGroups:      excluded,
		ForceSettled:        forced,
		OperatorID:          operatorID,
		SettledAt:           time.Now(),
	}
	return r
}

// NewReversalRecord creates the record of a reversal run. The total is
// the negated sum of the reversed postings so the per-stage totals
// cancel out across the two records.
func NewReversalRecord(original *Record, operatorID, reason string, reversedTotal int64) *Record {
	originalID := original.ID
	return &Record{
		BaseEntity:           shared.NewBaseEntity(),
		StageID:              original.StageID,
		ProjectID:            original.ProjectID,
		Type:                 RecordReversal,
		TotalRewardsAwarded:  reversedTotal,
		ParticipantCount:     original.ParticipantCount,
		OperatorID:           operatorID,
		Reason:               reason,
		ReversedSettlementID: &originalID,
		SettledAt:            time.Now(),
	}
}

// IsReversal reports whether the record documents a reversal run
func (r *Record) IsReversal() bool {
	return r.Type == RecordReversal
}

func scoresToRankings(scores []GroupScore) map[uuid.UUID]int {
	if len(scores) == 0 {
		return nil
	}
	out := make(map[uuid.UUID]int, len(scores))
	for _, s := range scores {
		out[s.ItemID] = s.Rank
	}
	return out
}
