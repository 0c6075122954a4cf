package persistence

import (
	"context"

	"gorm.io/gorm"

	appsettlement "github.com/peerrank/backend/internal/application/settlement"
	"github.com/peerrank/backend/internal/domain/ledger"
	"github.com/peerrank/backend/internal/domain/ranking"
	"github.com/peerrank/backend/internal/domain/settlement"
	"github.com/peerrank/backend/internal/domain/stage"
)

// GormTransactionScope implements TransactionScope using GORM
// transactions. The ledger batch, the settlement record, and the
// stage/proposal marks of one run commit or roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction. An
// error from the function rolls the transaction back; success commits.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appsettlement.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories scoped to the
// current transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// StageRepo returns the stage repository scoped to the current transaction
func (r *gormTransactionalRepositories) StageRepo() stage.Repository {
	return NewGormStageRepository(r.tx)
}

// ProposalRepo returns the proposal repository scoped to the current transaction
func (r *gormTransactionalRepositories) ProposalRepo() ranking.ProposalRepository {
	return NewGormProposalRepository(r.tx)
}

// LedgerRepo returns the ledger repository scoped to the current transaction
func (r *gormTransactionalRepositories) LedgerRepo() ledger.Repository {
	return NewGormLedgerRepository(r.tx)
}

// SettlementRepo returns the settlement record repository scoped to the current transaction
func (r *gormTransactionalRepositories) SettlementRepo() settlement.Repository {
	return NewGormSettlementRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appsettlement.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appsettlement.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
