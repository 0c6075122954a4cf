package models

import (
	"github.com/google/uuid"

	"github.com/peerrank/backend/internal/domain/ledger"
)

// TransactionModel is the persistence model for ledger entries. Rows
// are insert-only; there is no update path through the repository.
type TransactionModel struct {
	BaseModel
	ProjectID            uuid.UUID              `gorm:"type:uuid;not null;index:idx_ledger_project_user"`
	UserID               string                 `gorm:"type:varchar(100);not null;index:idx_ledger_project_user"`
	StageID              uuid.UUID              `gorm:"type:uuid;not null;index"`
	SettlementID         *uuid.UUID             `gorm:"type:uuid;index"`
	Type                 ledger.Type            `gorm:"type:varchar(20);not null"`
	Amount               int64                  `gorm:"not null"`
	RelatedSubmissionID  *uuid.UUID             `gorm:"type:uuid"`
	RelatedCommentID     *uuid.UUID             `gorm:"type:uuid"`
	RelatedTransactionID *uuid.UUID             `gorm:"type:uuid;uniqueIndex:idx_ledger_reversal_of,where:related_transaction_id IS NOT NULL"`
	Reason               string                 `gorm:"type:varchar(500)"`
	Metadata             map[string]interface{} `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "ledger_transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	return &ledger.Transaction{
		BaseEntity:           m.BaseModel.ToDomain(),
		ProjectID:            m.ProjectID,
		UserID:               m.UserID,
		StageID:              m.StageID,
		SettlementID:         m.SettlementID,
		Type:                 m.Type,
		Amount:               m.Amount,
		RelatedSubmissionID:  m.RelatedSubmissionID,
		RelatedCommentID:     m.RelatedCommentID,
		RelatedTransactionID: m.RelatedTransactionID,
		Reason:               m.Reason,
		Metadata:             m.Metadata,
	}
}

// FromDomain populates the persistence model from a domain Transaction
func (m *TransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.ProjectID = t.ProjectID
	m.UserID = t.UserID
	m.StageID = t.StageID
	m.SettlementID = t.SettlementID
	m.Type = t.Type
	m.Amount = t.Amount
	m.RelatedSubmissionID = t.RelatedSubmissionID
	m.RelatedCommentID = t.RelatedCommentID
	m.RelatedTransactionID = t.RelatedTransactionID
	m.Reason = t.Reason
	m.Metadata = t.Metadata
}
