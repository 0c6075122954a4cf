package ranking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(n int) []RankedItem {
	out := make([]RankedItem, n)
	for i := range out {
		out[i] = RankedItem{ItemID: uuid.New(), Rank: i + 1}
	}
	return out
}

func TestNewProposal(t *testing.T) {
	p, err := NewProposal(uuid.New(), uuid.New(), "alice@example.com", CategoryReport, items(3))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status())
	assert.True(t, p.IsLive())
}

func TestValidateItems(t *testing.T) {
	id := uuid.New()

	assert.Error(t, ValidateItems(nil))
	assert.Error(t, ValidateItems([]RankedItem{{ItemID: id, Rank: 0}}))
	assert.Error(t, ValidateItems([]RankedItem{{ItemID: uuid.Nil, Rank: 1}}))
	assert.Error(t, ValidateItems([]RankedItem{
		{ItemID: id, Rank: 1},
		{ItemID: id, Rank: 2},
	}))
	assert.Error(t, ValidateItems([]RankedItem{
		{ItemID: uuid.New(), Rank: 1},
		{ItemID: uuid.New(), Rank: 1},
	}))
	assert.NoError(t, ValidateItems(items(4)))
}

func TestProposal_StatusPriority(t *testing.T) {
	now := time.Now()
	p, err := NewProposal(uuid.New(), uuid.New(), "alice@example.com", CategoryReport, items(2))
	require.NoError(t, err)

	p.ResetTime = &now
	assert.Equal(t, StatusReset, p.Status())

	p.WithdrawnTime = &now
	assert.Equal(t, StatusWithdrawn, p.Status())

	p.SettleTime = &now
	assert.Equal(t, StatusSettled, p.Status())
}

func TestProposal_Withdraw(t *testing.T) {
	p, err := NewProposal(uuid.New(), uuid.New(), "alice@example.com", CategoryReport, items(2))
	require.NoError(t, err)

	require.NoError(t, p.Withdraw("bob@example.com"))
	assert.Equal(t, StatusWithdrawn, p.Status())
	assert.Equal(t, "bob@example.com", p.WithdrawnBy)
	assert.False(t, p.IsLive())

	assert.Error(t, p.Withdraw("bob@example.com"))
}

func TestProposal_WithdrawAfterSettle(t *testing.T) {
	p, err := NewProposal(uuid.New(), uuid.New(), "alice@example.com", CategoryReport, items(2))
	require.NoError(t, err)
	p.MarkSettled(time.Now())

	assert.Error(t, p.Withdraw("bob@example.com"))
	assert.Error(t, p.ResetVotes("dispute"))
}

func TestTallyBallots(t *testing.T) {
	p, err := NewProposal(uuid.New(), uuid.New(), "alice@example.com", CategoryReport, items(2))
	require.NoError(t, err)

	var ballots []Ballot
	for _, agreement := range []int{Agree, Agree, Agree, Disagree} {
		b, err := NewBallot(p.ID, uuid.NewString(), agreement, "")
		require.NoError(t, err)
		ballots = append(ballots, *b)
	}

	tally := TallyBallots(p, ballots)
	assert.Equal(t, 3, tally.AgreeVotes)
	assert.Equal(t, 1, tally.DisagreeVotes)
	assert.Equal(t, 2, tally.VoteScore)
}

func TestTallyBallots_ExcludesPreReset(t *testing.T) {
	p, err := NewProposal(uuid.New(), uuid.New(), "alice@example.com", CategoryReport, items(2))
	require.NoError(t, err)

	old, err := NewBallot(p.ID, "carol@example.com", Agree, "")
	require.NoError(t, err)
	old.CreatedAt = time.Now().Add(-time.Hour)

	require.NoError(t, p.ResetVotes("re-vote after dispute"))

	fresh, err := NewBallot(p.ID, "dave@example.com", Agree, "")
	require.NoError(t, err)
	fresh.CreatedAt = time.Now().Add(time.Minute)

	tally := TallyBallots(p, []Ballot{*old, *fresh})
	assert.Equal(t, 1, tally.AgreeVotes)
	assert.Equal(t, 0, tally.DisagreeVotes)
	assert.Equal(t, 1, tally.VoteScore)
}

func TestNewBallot_Validation(t *testing.T) {
	_, err := NewBallot(uuid.New(), "", Agree, "")
	assert.Error(t, err)

	_, err = NewBallot(uuid.New(), "alice@example.com", 0, "")
	assert.Error(t, err)

	_, err = NewBallot(uuid.New(), "alice@example.com", 2, "")
	assert.Error(t, err)
}
