package ledger

import (
	"github.com/google/uuid"

	"github.com/peerrank/backend/internal/domain/shared"
)

// Type classifies a point movement
type Type string

const (
	TypeAward    Type = "award"
	TypeDeduct   Type = "deduct"
	TypeReversal Type = "reversal"
)

// Transaction is one point movement in the ledger. Entries are
// write-once: a correction is always a new entry linked through
// RelatedTransactionID, never an edit or delete. A user's balance is the
// sum of their entries, so the ledger can be replayed independently of
// any cache.
type Transaction struct {
	shared.BaseEntity
	ProjectID            uuid.UUID
	UserID               string
	StageID              uuid.UUID
	SettlementID         *uuid.UUID
	Type                 Type
	Amount               int64
	RelatedSubmissionID  *uuid.UUID
	RelatedCommentID     *uuid.UUID
	RelatedTransactionID *uuid.UUID
	Reason               string
	Metadata             map[string]interface{}
}

// NewAwardTransaction creates a positive point movement
func NewAwardTransaction(projectID uuid.UUID, userID string, stageID uuid.UUID, amount int64) (*Transaction, error) {
	if err := validateParties(projectID, userID); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Award amount must be positive")
	}
	return &Transaction{
		BaseEntity: shared.NewBaseEntity(),
		ProjectID:  projectID,
		UserID:     userID,
		StageID:    stageID,
		Type:       TypeAward,
		Amount:     amount,
	}, nil
}

// NewDeductTransaction creates a negative point movement
func NewDeductTransaction(projectID uuid.UUID, userID string, stageID uuid.UUID, amount int64) (*Transaction, error) {
	if err := validateParties(projectID, userID); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Deduct amount must be positive")
	}
	return &Transaction{
		BaseEntity: shared.NewBaseEntity(),
		ProjectID:  projectID,
		UserID:     userID,
		StageID:    stageID,
		Type:       TypeDeduct,
		Amount:     -amount,
	}, nil
}

// NewReversalTransaction creates the compensating entry for a prior
// transaction: same parties, negated amount, linked to the original.
func NewReversalTransaction(original *Transaction, reason string) (*Transaction, error) {
	if original == nil {
		return nil, shared.ErrNotFound
	}
	if original.Type == TypeReversal {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "A reversal cannot be reversed")
	}
	originalID := original.ID
	tx := &Transaction{
		BaseEntity:           shared.NewBaseEntity(),
		ProjectID:            original.ProjectID,
		UserID:               original.UserID,
		StageID:              original.StageID,
		SettlementID:         original.SettlementID,
		Type:                 TypeReversal,
		Amount:               -original.Amount,
		RelatedSubmissionID:  original.RelatedSubmissionID,
		RelatedCommentID:     original.RelatedCommentID,
		RelatedTransactionID: &originalID,
		Reason:               reason,
		Metadata: map[string]interface{}{
			"reversedTransactionId": originalID.String(),
			"originalAmount":        original.Amount,
		},
	}
	return tx, nil
}

func validateParties(projectID uuid.UUID, userID string) error {
	if projectID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_ERROR", "Project id is required")
	}
	if userID == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "User identity is required")
	}
	return nil
}

// Validate enforces the write-once linkage rules before an append:
// award/deduct entries carry no reversal link, reversal entries must.
func (t *Transaction) Validate() error {
	switch t.Type {
	case TypeAward, TypeDeduct:
		if t.RelatedTransactionID != nil {
			return shared.NewDomainError("VALIDATION_ERROR", "Award and deduct entries must not reference another transaction")
		}
	case TypeReversal:
		if t.RelatedTransactionID == nil {
			return shared.NewDomainError("VALIDATION_ERROR", "Reversal entries must reference the transaction being reversed")
		}
	default:
		return shared.NewDomainError("VALIDATION_ERROR", "Unknown transaction type")
	}
	if t.Amount == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Transaction amount must not be zero")
	}
	return nil
}

// WithSettlement links the entry to a settlement run
func (t *Transaction) WithSettlement(settlementID uuid.UUID) *Transaction {
	t.SettlementID = &settlementID
	return t
}

// WithSubmission links the entry to the submission it rewards
func (t *Transaction) WithSubmission(submissionID uuid.UUID) *Transaction {
	t.RelatedSubmissionID = &submissionID
	return t
}

// WithComment links the entry to the comment it rewards
func (t *Transaction) WithComment(commentID uuid.UUID) *Transaction {
	t.RelatedCommentID = &commentID
	return t
}

// WithReason attaches a human-readable reason
func (t *Transaction) WithReason(reason string) *Transaction {
	t.Reason = reason
	return t
}

// WithMetadata attaches audit metadata (rank, share, original amounts)
func (t *Transaction) WithMetadata(metadata map[string]interface{}) *Transaction {
	t.Metadata = metadata
	return t
}
