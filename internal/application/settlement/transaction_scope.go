package settlement

import (
	"context"

	"github.com/peerrank/backend/internal/domain/ledger"
	"github.com/peerrank/backend/internal/domain/ranking"
	"github.com/peerrank/backend/internal/domain/settlement"
	"github.com/peerrank/backend/internal/domain/stage"
)

// TransactionScope runs a function with repositories bound to one
// database transaction. The ledger postings, the settlement record, and
// the stage/proposal settle marks of one run commit or roll back as a
// unit, so no partial settlement state is ever observable.
type TransactionScope interface {
	// Execute runs fn inside a transaction. An error from fn rolls the
	// transaction back; success commits it.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories is the set of repositories sharing one
// transaction during a settlement or reversal commit.
type TransactionalRepositories interface {
	StageRepo() stage.Repository
	ProposalRepo() ranking.ProposalRepository
	LedgerRepo() ledger.Repository
	SettlementRepo() settlement.Repository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in tests where the repositories are in-memory fakes.
type NoOpTransactionScope struct {
	stageRepo      stage.Repository
	proposalRepo   ranking.ProposalRepository
	ledgerRepo     ledger.Repository
	settlementRepo settlement.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	stageRepo stage.Repository,
	proposalRepo ranking.ProposalRepository,
	ledgerRepo ledger.Repository,
	settlementRepo settlement.Repository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stageRepo:      stageRepo,
		proposalRepo:   proposalRepo,
		ledgerRepo:     ledgerRepo,
		settlementRepo: settlementRepo,
	}
}

// Execute runs the function directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StageRepo returns the stage repository
func (s *NoOpTransactionScope) StageRepo() stage.Repository { return s.stageRepo }

// ProposalRepo returns the proposal repository
func (s *NoOpTransactionScope) ProposalRepo() ranking.ProposalRepository { return s.proposalRepo }

// LedgerRepo returns the ledger repository
func (s *NoOpTransactionScope) LedgerRepo() ledger.Repository { return s.ledgerRepo }

// SettlementRepo returns the settlement record repository
func (s *NoOpTransactionScope) SettlementRepo() settlement.Repository { return s.settlementRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
