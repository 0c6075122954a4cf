package settlement

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/peerrank/backend/internal/domain/shared"
)

// weightTolerance bounds how far the blend weights may drift from 1.0
var weightTolerance = decimal.NewFromFloat(0.001)

// ScoringConfig carries the tunable parameters of reward computation.
// Loaded from configuration, validated once at startup.
type ScoringConfig struct {
	// StudentWeight and TeacherWeight blend peer and supervisor scores.
	// They must sum to 1 within a small tolerance.
	StudentWeight decimal.Decimal
	TeacherWeight decimal.Decimal
	// CommentRewardPercentile selects the top share of comment authors
	// eligible for comment rewards. Zero disables the percentile rule.
	CommentRewardPercentile int
	// MaxCommentSelections is the eligible comment count when the
	// percentile rule is disabled.
	MaxCommentSelections int
}

// DefaultScoringConfig mirrors the standard 70/30 peer/supervisor blend
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		StudentWeight:           decimal.NewFromFloat(0.7),
		TeacherWeight:           decimal.NewFromFloat(0.3),
		CommentRewardPercentile: 0,
		MaxCommentSelections:    3,
	}
}

// Validate checks weight bounds and the blend sum
func (c ScoringConfig) Validate() error {
	one := decimal.NewFromInt(1)
	for _, w := range []decimal.Decimal{c.StudentWeight, c.TeacherWeight} {
		if w.IsNegative() || w.GreaterThan(one) {
			return shared.NewDomainError("VALIDATION_ERROR", "Blend weights must be between 0 and 1")
		}
	}
	if c.StudentWeight.Add(c.TeacherWeight).Sub(one).Abs().GreaterThan(weightTolerance) {
		return shared.NewDomainError("VALIDATION_ERROR", "Blend weights must sum to 1")
	}
	if c.CommentRewardPercentile < 0 || c.CommentRewardPercentile > 100 {
		return shared.NewDomainError("VALIDATION_ERROR", "Comment reward percentile must be between 0 and 100")
	}
	if c.MaxCommentSelections < 1 {
		return shared.NewDomainError("VALIDATION_ERROR", "Max comment selections must be at least 1")
	}
	return nil
}

// CommentLimit returns how many top-ranked comments are eligible for
// rewards given the number of distinct comment authors. With the
// percentile rule active the cutoff is ceil(percentile% of authors),
// never below one; otherwise the fixed selection cap applies.
func (c ScoringConfig) CommentLimit(uniqueAuthors int) int {
	if uniqueAuthors <= 0 {
		return 0
	}
	if c.CommentRewardPercentile > 0 {
		n := int(math.Ceil(float64(uniqueAuthors) * float64(c.CommentRewardPercentile) / 100.0))
		if n < 1 {
			n = 1
		}
		return n
	}
	return c.MaxCommentSelections
}
