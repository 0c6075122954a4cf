package settlement

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/peerrank/backend/internal/domain/ranking"
)

// Item is one rankable deliverable (a submission or a comment) owned by
// a group and authored by a user.
type Item struct {
	ID       uuid.UUID
	GroupID  uuid.UUID
	AuthorID string
}

// Candidate pairs a group's live proposal with its current tally
type Candidate struct {
	Proposal *ranking.Proposal
	Tally    ranking.Tally
}

// Accepted reports whether the proposal carries strict positive net
// agreement among its voters.
func (c Candidate) Accepted() bool {
	return c.Proposal != nil && c.Tally.VoteScore > 0
}

// ConsensusInput is everything the resolver needs for one category of
// one stage: the items, each group's live proposal with tally, and the
// optional supervisor override ranking.
type ConsensusInput struct {
	Items              []Item
	Candidates         map[uuid.UUID]Candidate
	SupervisorRanking  []ranking.RankedItem
	SupervisorRankedAt time.Time
}

// ConsensusEntry is one item of the finalized ranking. PeerRank and
// SupervisorRank keep both source ranks when both exist so reward
// computation can blend them.
type ConsensusEntry struct {
	ItemID         uuid.UUID
	GroupID        uuid.UUID
	AuthorID       string
	Rank           int
	PeerRank       *int
	SupervisorRank *int
	FromSupervisor bool
}

// ConsensusResult is the finalized ranking plus the groups that could
// not be resolved. Exclusions are reported, not treated as errors: the
// orchestrator decides whether they abort the settlement.
type ConsensusResult struct {
	Entries        []ConsensusEntry
	AcceptedGroups []uuid.UUID
	ExcludedGroups []uuid.UUID
}

// HasExclusions reports whether any group lacks an authoritative ranking
func (r ConsensusResult) HasExclusions() bool {
	return len(r.ExcludedGroups) > 0
}

// Rankings returns the item-to-rank map of the finalized ranking
func (r ConsensusResult) Rankings() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(r.Entries))
	for _, e := range r.Entries {
		out[e.ItemID] = e.Rank
	}
	return out
}

// ResolveConsensus produces exactly one finalized ranking from the live
// proposals of a stage. Per group: an accepted proposal (voteScore > 0)
// is authoritative for that group's items; otherwise the supervisor
// ranking substitutes; otherwise the group is excluded. Items missing
// from their authoritative source get the worst rank (item count + 1).
// Ties are broken by earliest source time, then group id, then item id,
// so the result is deterministic for identical input.
func ResolveConsensus(in ConsensusInput) ConsensusResult {
	itemsByGroup := make(map[uuid.UUID][]Item)
	groupOrder := make([]uuid.UUID, 0)
	for _, it := range in.Items {
		if _, seen := itemsByGroup[it.GroupID]; !seen {
			groupOrder = append(groupOrder, it.GroupID)
		}
		itemsByGroup[it.GroupID] = append(itemsByGroup[it.GroupID], it)
	}
	sort.Slice(groupOrder, func(i, j int) bool {
		return groupOrder[i].String() < groupOrder[j].String()
	})

	supervisorRanks := rankIndex(in.SupervisorRanking)
	worstRank := len(in.Items) + 1

	type pending struct {
		entry        ConsensusEntry
		proposedRank int
		sourceTime   time.Time
	}

	var result ConsensusResult
	var entries []pending

	for _, groupID := range groupOrder {
		candidate := in.Candidates[groupID]

		var peerRanks map[uuid.UUID]int
		if candidate.Accepted() {
			peerRanks = rankIndex(candidate.Proposal.Items)
		}

		switch {
		case peerRanks != nil:
			result.AcceptedGroups = append(result.AcceptedGroups, groupID)
			for _, it := range itemsByGroup[groupID] {
				e := ConsensusEntry{ItemID: it.ID, GroupID: groupID, AuthorID: it.AuthorID}
				proposed := worstRank
				if r, ok := peerRanks[it.ID]; ok {
					proposed = r
					e.PeerRank = intPtr(r)
				}
				if r, ok := supervisorRanks[it.ID]; ok {
					e.SupervisorRank = intPtr(r)
				}
				entries = append(entries, pending{
					entry:        e,
					proposedRank: proposed,
					sourceTime:   candidate.Proposal.CreatedAt,
				})
			}
		case len(supervisorRanks) > 0:
			for _, it := range itemsByGroup[groupID] {
				e := ConsensusEntry{ItemID: it.ID, GroupID: groupID, AuthorID: it.AuthorID, FromSupervisor: true}
				proposed := worstRank
				if r, ok := supervisorRanks[it.ID]; ok {
					proposed = r
					e.SupervisorRank = intPtr(r)
				}
				entries = append(entries, pending{
					entry:        e,
					proposedRank: proposed,
					sourceTime:   in.SupervisorRankedAt,
				})
			}
		default:
			result.ExcludedGroups = append(result.ExcludedGroups, groupID)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.proposedRank != b.proposedRank {
			return a.proposedRank < b.proposedRank
		}
		if !a.sourceTime.Equal(b.sourceTime) {
			return a.sourceTime.Before(b.sourceTime)
		}
		if a.entry.GroupID != b.entry.GroupID {
			return a.entry.GroupID.String() < b.entry.GroupID.String()
		}
		return a.entry.ItemID.String() < b.entry.ItemID.String()
	})

	result.Entries = make([]ConsensusEntry, len(entries))
	for i, p := range entries {
		p.entry.Rank = i + 1
		result.Entries[i] = p.entry
	}
	return result
}

func rankIndex(items []ranking.RankedItem) map[uuid.UUID]int {
	if len(items) == 0 {
		return nil
	}
	out := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		out[it.ItemID] = it.Rank
	}
	return out
}

func intPtr(v int) *int {
	return &v
}
