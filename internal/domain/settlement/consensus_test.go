package settlement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerrank/backend/internal/domain/ranking"
	"github.com/peerrank/backend/internal/domain/shared"
)

func acceptedCandidate(t *testing.T, stageID, groupID uuid.UUID, createdAt time.Time, items []ranking.RankedItem) Candidate {
	t.Helper()
	p, err := ranking.NewProposal(stageID, groupID, "proposer@example.com", ranking.CategoryReport, items)
	require.NoError(t, err)
	p.BaseEntity = shared.BaseEntity{ID: p.ID, CreatedAt: createdAt, UpdatedAt: createdAt}
	return Candidate{Proposal: p, Tally: ranking.Tally{AgreeVotes: 3, DisagreeVotes: 1, VoteScore: 2}}
}

func rejectedCandidate(t *testing.T, stageID, groupID uuid.UUID, items []ranking.RankedItem) Candidate {
	t.Helper()
	p, err := ranking.NewProposal(stageID, groupID, "proposer@example.com", ranking.CategoryReport, items)
	require.NoError(t, err)
	return Candidate{Proposal: p, Tally: ranking.Tally{AgreeVotes: 1, DisagreeVotes: 2, VoteScore: -1}}
}

func TestResolveConsensus_PeerConsensus(t *testing.T) {
	stageID := uuid.New()
	groupA, groupB := uuid.New(), uuid.New()
	itemA := Item{ID: uuid.New(), GroupID: groupA, AuthorID: "a@example.com"}
	itemB := Item{ID: uuid.New(), GroupID: groupB, AuthorID: "b@example.com"}

	earlier := time.Now().Add(-time.Hour)
	later := time.Now()

	result := ResolveConsensus(ConsensusInput{
		Items: []Item{itemA, itemB},
		Candidates: map[uuid.UUID]Candidate{
			groupA: acceptedCandidate(t, stageID, groupA, earlier, []ranking.RankedItem{
				{ItemID: itemA.ID, Rank: 1},
				{ItemID: itemB.ID, Rank: 2},
			}),
			groupB: acceptedCandidate(t, stageID, groupB, later, []ranking.RankedItem{
				{ItemID: itemB.ID, Rank: 1},
				{ItemID: itemA.ID, Rank: 2},
			}),
		},
	})

	require.Len(t, result.Entries, 2)
	assert.Empty(t, result.ExcludedGroups)
	assert.ElementsMatch(t, []uuid.UUID{groupA, groupB}, result.AcceptedGroups)

	// Both items claim source rank 1; the earlier proposal wins the tie
	assert.Equal(t, itemA.ID, result.Entries[0].ItemID)
	assert.Equal(t, 1, result.Entries[0].Rank)
	assert.Equal(t, itemB.ID, result.Entries[1].ItemID)
	assert.Equal(t, 2, result.Entries[1].Rank)
	assert.False(t, result.Entries[0].FromSupervisor)
	require.NotNil(t, result.Entries[0].PeerRank)
	assert.Equal(t, 1, *result.Entries[0].PeerRank)
}

func TestResolveConsensus_SupervisorFallback(t *testing.T) {
	stageID := uuid.New()
	groupA, groupB := uuid.New(), uuid.New()
	itemA := Item{ID: uuid.New(), GroupID: groupA, AuthorID: "a@example.com"}
	itemB := Item{ID: uuid.New(), GroupID: groupB, AuthorID: "b@example.com"}

	result := ResolveConsensus(ConsensusInput{
		Items: []Item{itemA, itemB},
		Candidates: map[uuid.UUID]Candidate{
			groupA: acceptedCandidate(t, stageID, groupA, time.Now(), []ranking.RankedItem{
				{ItemID: itemA.ID, Rank: 1},
			}),
			groupB: rejectedCandidate(t, stageID, groupB, []ranking.RankedItem{
				{ItemID: itemB.ID, Rank: 1},
			}),
		},
		SupervisorRanking: []ranking.RankedItem{
			{ItemID: itemA.ID, Rank: 1},
			{ItemID: itemB.ID, Rank: 2},
		},
		SupervisorRankedAt: time.Now(),
	})

	require.Len(t, result.Entries, 2)
	assert.Empty(t, result.ExcludedGroups)

	var supervisorEntry *ConsensusEntry
	for i := range result.Entries {
		if result.Entries[i].GroupID == groupB {
			supervisorEntry = &result.Entries[i]
		}
	}
	require.NotNil(t, supervisorEntry)
	assert.True(t, supervisorEntry.FromSupervisor)
	assert.Nil(t, supervisorEntry.PeerRank)
	require.NotNil(t, supervisorEntry.SupervisorRank)
	assert.Equal(t, 2, *supervisorEntry.SupervisorRank)
}

func TestResolveConsensus_ExcludedGroup(t *testing.T) {
	stageID := uuid.New()
	groupA, groupB := uuid.New(), uuid.New()
	itemA := Item{ID: uuid.New(), GroupID: groupA, AuthorID: "a@example.com"}
	itemB := Item{ID: uuid.New(), GroupID: groupB, AuthorID: "b@example.com"}

	result := ResolveConsensus(ConsensusInput{
		Items: []Item{itemA, itemB},
		Candidates: map[uuid.UUID]Candidate{
			groupA: acceptedCandidate(t, stageID, groupA, time.Now(), []ranking.RankedItem{
				{ItemID: itemA.ID, Rank: 1},
			}),
			groupB: rejectedCandidate(t, stageID, groupB, []ranking.RankedItem{
				{ItemID: itemB.ID, Rank: 1},
			}),
		},
	})

	assert.True(t, result.HasExclusions())
	assert.Equal(t, []uuid.UUID{groupB}, result.ExcludedGroups)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, itemA.ID, result.Entries[0].ItemID)
}

func TestResolveConsensus_MissingItemGetsWorstRank(t *testing.T) {
	stageID := uuid.New()
	groupA := uuid.New()
	item1 := Item{ID: uuid.New(), GroupID: groupA, AuthorID: "a@example.com"}
	item2 := Item{ID: uuid.New(), GroupID: groupA, AuthorID: "a@example.com"}

	// The accepted proposal only ranks item1
	result := ResolveConsensus(ConsensusInput{
		Items: []Item{item1, item2},
		Candidates: map[uuid.UUID]Candidate{
			groupA: acceptedCandidate(t, stageID, groupA, time.Now(), []ranking.RankedItem{
				{ItemID: item1.ID, Rank: 1},
			}),
		},
	})

	require.Len(t, result.Entries, 2)
	assert.Equal(t, item1.ID, result.Entries[0].ItemID)
	assert.Equal(t, item2.ID, result.Entries[1].ItemID)
	assert.Nil(t, result.Entries[1].PeerRank)
}

func TestResolveConsensus_Deterministic(t *testing.T) {
	stageID := uuid.New()
	groupA, groupB := uuid.New(), uuid.New()
	itemA := Item{ID: uuid.New(), GroupID: groupA, AuthorID: "a@example.com"}
	itemB := Item{ID: uuid.New(), GroupID: groupB, AuthorID: "b@example.com"}
	at := time.Now()

	in := ConsensusInput{
		Items: []Item{itemA, itemB},
		Candidates: map[uuid.UUID]Candidate{
			groupA: acceptedCandidate(t, stageID, groupA, at, []ranking.RankedItem{{ItemID: itemA.ID, Rank: 1}}),
			groupB: acceptedCandidate(t, stageID, groupB, at, []ranking.RankedItem{{ItemID: itemB.ID, Rank: 1}}),
		},
	}

	first := ResolveConsensus(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first.Entries, ResolveConsensus(in).Entries)
	}
}

func TestConsensusResult_Rankings(t *testing.T) {
	itemID := uuid.New()
	r := ConsensusResult{Entries: []ConsensusEntry{{ItemID: itemID, Rank: 1}}}
	assert.Equal(t, map[uuid.UUID]int{itemID: 1}, r.Rankings())
}
