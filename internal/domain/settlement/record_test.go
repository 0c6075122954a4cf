package settlement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	stageID, projectID := uuid.New(), uuid.New()
	itemID := uuid.New()

	report := Distribution{
		Scores:   []GroupScore{{GroupID: uuid.New(), ItemID: itemID, Rank: 1, Amount: 100}},
		Postings: []Posting{{UserID: "a@example.com", Amount: 70}, {UserID: "b@example.com", Amount: 30}},
		Total:    100,
	}
	comment := Distribution{
		Scores:   []GroupScore{{GroupID: uuid.New(), ItemID: uuid.New(), Rank: 1, Amount: 20}},
		Postings: []Posting{{UserID: "a@example.com", Amount: 20}},
		Total:    20,
	}

	r := NewRecord(stageID, projectID, "op@example.com", report, comment, nil, false)
	assert.Equal(t, RecordReport, r.Type)
	assert.Equal(t, int64(120), r.TotalRewardsAwarded)
	assert.Equal(t, 2, r.ParticipantCount)
	assert.Equal(t, map[uuid.UUID]int{itemID: 1}, r.FinalRankings)
	assert.False(t, r.IsReversal())
}

func TestNewRecord_CommentOnly(t *testing.T) {
	comment := Distribution{
		Scores:   []GroupScore{{GroupID: uuid.New(), ItemID: uuid.New(), Rank: 1, Amount: 50}},
		Postings: []Posting{{UserID: "a@example.com", Amount: 50}},
		Total:    50,
	}
	r := NewRecord(uuid.New(), uuid.New(), "op@example.com", Distribution{}, comment, nil, false)
	assert.Equal(t, RecordComment, r.Type)
}

func TestNewReversalRecord(t *testing.T) {
	original := NewRecord(uuid.New(), uuid.New(), "op@example.com", Distribution{Total: 100}, Distribution{}, nil, false)

	rev := NewReversalRecord(original, "admin@example.com", "scores disputed", -100)
	assert.Equal(t, RecordReversal, rev.Type)
	assert.True(t, rev.IsReversal())
	assert.Equal(t, int64(-100), rev.TotalRewardsAwarded)
	require.NotNil(t, rev.ReversedSettlementID)
	assert.Equal(t, original.ID, *rev.ReversedSettlementID)
	assert.Equal(t, original.StageID, rev.StageID)
}
