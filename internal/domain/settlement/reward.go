package settlement

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/peerrank/backend/internal/domain/shared"
)

// MemberShare is a member's declared participation percentage in the
// group's submission. Percentages of one item must sum to 100.
type MemberShare struct {
	UserID  string
	Percent decimal.Decimal
}

// RewardEntry is one finalized-ranking entry enriched with the member
// shares needed to split the item's reward. Entries without members
// (comments) pay the item author directly.
type RewardEntry struct {
	ItemID         uuid.UUID
	GroupID        uuid.UUID
	AuthorID       string
	Rank           int
	PeerRank       *int
	SupervisorRank *int
	FromSupervisor bool
	Members        []MemberShare
}

// GroupScore is the audited score of one item in a distribution
type GroupScore struct {
	GroupID        uuid.UUID       `json:"groupId"`
	ItemID         uuid.UUID       `json:"itemId"`
	Rank           int             `json:"rank"`
	WeightedScore  decimal.Decimal `json:"weightedScore"`
	Amount         int64           `json:"amount"`
	FromSupervisor bool            `json:"fromSupervisor"`
}

// Posting is one ledger-bound reward: user, signed amount, provenance
type Posting struct {
	UserID       string
	Amount       int64
	GroupID      uuid.UUID
	SourceItemID uuid.UUID
	Rank         int
	Percent      decimal.Decimal
}

// Distribution is the complete outcome of one pool distribution. The
// posting amounts always sum to exactly Total, and Total equals the
// pool whenever any entry scored above zero.
type Distribution struct {
	Scores   []GroupScore
	Postings []Posting
	Total    int64
}

// rankWeight maps a source rank to a raw score: n - rank + 1, floored
// at zero. Strictly decreasing over ranks 1..n, and rank n+1 (the worst
// rank given to unranked items) scores nothing.
func rankWeight(rank, n int) decimal.Decimal {
	w := n - rank + 1
	if w < 0 {
		w = 0
	}
	return decimal.NewFromInt(int64(w))
}

// blendedScore combines the peer and supervisor scores of one entry.
// With both sources present the configured weights apply; a single
// source counts with full weight.
func blendedScore(e RewardEntry, n int, cfg ScoringConfig) decimal.Decimal {
	switch {
	case e.PeerRank != nil && e.SupervisorRank != nil:
		peer := rankWeight(*e.PeerRank, n)
		sup := rankWeight(*e.SupervisorRank, n)
		return cfg.StudentWeight.Mul(peer).Add(cfg.TeacherWeight.Mul(sup))
	case e.PeerRank != nil:
		return rankWeight(*e.PeerRank, n)
	case e.SupervisorRank != nil:
		return rankWeight(*e.SupervisorRank, n)
	default:
		return decimal.Zero
	}
}

// CalculateRewards distributes a pool over the finalized-ranking
// entries. Weighted scores are normalized so the rounded amounts sum to
// exactly the pool: the rounding remainder goes to the highest-ranked
// entry. Each entry's amount is then split among its members by their
// declared shares, with the member remainder going to the member with
// the largest fractional share.
func CalculateRewards(pool int64, cfg ScoringConfig, entries []RewardEntry) (Distribution, error) {
	if pool < 0 {
		return Distribution{}, shared.NewDomainError("VALIDATION_ERROR", "Reward pool must be non-negative")
	}
	for _, e := range entries {
		if err := validateShares(e.Members); err != nil {
			return Distribution{}, err
		}
	}

	ordered := make([]RewardEntry, len(entries))
	copy(ordered, entries)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Rank < ordered[j].Rank })

	n := len(ordered)
	scores := make([]decimal.Decimal, n)
	totalWeight := decimal.Zero
	for i, e := range ordered {
		scores[i] = blendedScore(e, n, cfg)
		totalWeight = totalWeight.Add(scores[i])
	}

	dist := Distribution{}
	if pool == 0 || n == 0 || totalWeight.IsZero() {
		for i, e := range ordered {
			dist.Scores = append(dist.Scores, GroupScore{
				GroupID:        e.GroupID,
				ItemID:         e.ItemID,
				Rank:           e.Rank,
				WeightedScore:  scoreOrZero(scores, i),
				FromSupervisor: e.FromSupervisor,
			})
		}
		return dist, nil
	}

	poolDec := decimal.NewFromInt(pool)
	amounts := make([]int64, n)
	var allocated int64
	for i := range ordered {
		exact := poolDec.Mul(scores[i]).Div(totalWeight)
		amounts[i] = exact.Round(0).IntPart()
		allocated += amounts[i]
	}
	// Rounding remainder lands on the highest-ranked entry
	amounts[0] += pool - allocated

	for i, e := range ordered {
		dist.Scores = append(dist.Scores, GroupScore{
			GroupID:        e.GroupID,
			ItemID:         e.ItemID,
			Rank:           e.Rank,
			WeightedScore:  scores[i],
			Amount:         amounts[i],
			FromSupervisor: e.FromSupervisor,
		})
		dist.Postings = append(dist.Postings, splitAmount(e, amounts[i])...)
		dist.Total += amounts[i]
	}
	return dist, nil
}

// splitAmount divides an entry's amount among its members, or pays the
// author when no shares are declared. Zero amounts produce no postings.
func splitAmount(e RewardEntry, amount int64) []Posting {
	if amount == 0 {
		return nil
	}
	if len(e.Members) == 0 {
		return []Posting{{
			UserID:       e.AuthorID,
			Amount:       amount,
			GroupID:      e.GroupID,
			SourceItemID: e.ItemID,
			Rank:         e.Rank,
			Percent:      decimal.NewFromInt(100),
		}}
	}

	amountDec := decimal.NewFromInt(amount)
	hundred := decimal.NewFromInt(100)
	shares := make([]int64, len(e.Members))
	fractions := make([]decimal.Decimal, len(e.Members))
	var allocated int64
	for i, m := range e.Members {
		exact := amountDec.Mul(m.Percent).Div(hundred)
		shares[i] = exact.Round(0).IntPart()
		fractions[i] = exact.Sub(exact.Floor())
		allocated += shares[i]
	}

	if remainder := amount - allocated; remainder != 0 {
		largest := 0
		for i := 1; i < len(fractions); i++ {
			if fractions[i].GreaterThan(fractions[largest]) {
				largest = i
			}
		}
		shares[largest] += remainder
	}

	postings := make([]Posting, 0, len(e.Members))
	for i, m := range e.Members {
		if shares[i] == 0 {
			continue
		}
		postings = append(postings, Posting{
			UserID:       m.UserID,
			Amount:       shares[i],
			GroupID:      e.GroupID,
			SourceItemID: e.ItemID,
			Rank:         e.Rank,
			Percent:      m.Percent,
		})
	}
	return postings
}

// CalculateCommentRewards restricts the distribution to the comments
// whose rank falls within the configured cutoff, then distributes the
// pool over that subset. Comments outside the cutoff receive zero.
func CalculateCommentRewards(pool int64, cfg ScoringConfig, entries []RewardEntry) (Distribution, error) {
	authors := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		authors[e.AuthorID] = struct{}{}
	}
	limit := cfg.CommentLimit(len(authors))

	ordered := make([]RewardEntry, len(entries))
	copy(ordered, entries)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Rank < ordered[j].Rank })

	eligible := ordered
	if len(ordered) > limit {
		eligible = ordered[:limit]
	}
	return CalculateRewards(pool, cfg, eligible)
}

func validateShares(members []MemberShare) error {
	if len(members) == 0 {
		return nil
	}
	hundred := decimal.NewFromInt(100)
	sum := decimal.Zero
	for _, m := range members {
		if m.UserID == "" {
			return shared.NewDomainError("VALIDATION_ERROR", "Member identity is required")
		}
		if m.Percent.IsNegative() {
			return shared.NewDomainError("VALIDATION_ERROR", "Participation share must be non-negative")
		}
		sum = sum.Add(m.Percent)
	}
	if sum.Sub(hundred).Abs().GreaterThan(shareTolerance) {
		return shared.NewDomainError("VALIDATION_ERROR", "Participation shares must sum to 100")
	}
	return nil
}

// shareTolerance bounds how far member percentages may drift from 100
var shareTolerance = decimal.NewFromFloat(0.01)

func scoreOrZero(scores []decimal.Decimal, i int) decimal.Decimal {
	if i < len(scores) {
		return scores[i]
	}
	return decimal.Zero
}
