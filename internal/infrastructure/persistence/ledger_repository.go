package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/peerrank/backend/internal/domain/ledger"
	"github.com/peerrank/backend/internal/domain/shared"
	"github.com/peerrank/backend/internal/infrastructure/persistence/models"
)

// GormLedgerRepository implements ledger.Repository using GORM. The
// table is insert-only; nothing here issues an UPDATE or DELETE.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Save appends one ledger entry
func (r *GormLedgerRepository) Save(ctx context.Context, tx *ledger.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	var model models.TransactionModel
	model.FromDomain(tx)
	return r.db.WithContext(ctx).Create(&model).Error
}

// SaveBatch appends all entries in one INSERT so a mid-batch failure
// leaves nothing behind
func (r *GormLedgerRepository) SaveBatch(ctx context.Context, txs []*ledger.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	transactionModels := make([]models.TransactionModel, len(txs))
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return err
		}
		transactionModels[i].FromDomain(tx)
	}
	return r.db.WithContext(ctx).Create(&transactionModels).Error
}

// FindByID finds a ledger entry by ID, or nil when it does not exist
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySettlement finds all entries written by one settlement run
func (r *GormLedgerRepository) FindBySettlement(ctx context.Context, settlementID uuid.UUID) ([]ledger.Transaction, error) {
	var transactionModels []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("settlement_id = ?", settlementID).
		Order("created_at ASC").
		Find(&transactionModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(transactionModels), nil
}

// FindByUser finds a user's entries within a project, newest first
func (r *GormLedgerRepository) FindByUser(ctx context.Context, projectID uuid.UUID, userID string, filter shared.Filter) (shared.Paginated[ledger.Transaction], error) {
	var transactionModels []models.TransactionModel
	var total int64

	base := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("project_id = ? AND user_id = ?", projectID, userID)

	if err := base.Count(&total).Error; err != nil {
		return shared.Paginated[ledger.Transaction]{}, err
	}

	if err := base.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&transactionModels).Error; err != nil {
		return shared.Paginated[ledger.Transaction]{}, err
	}

	return shared.NewPaginated(toDomainTransactions(transactionModels), total, filter.Page, filter.PageSize), nil
}

// SumByUser sums signed amounts for the user within the project,
// optionally bounded by time
func (r *GormLedgerRepository) SumByUser(ctx context.Context, projectID uuid.UUID, userID string, asOf *time.Time) (int64, error) {
	var result struct {
		Total int64
	}

	query := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("project_id = ? AND user_id = ?", projectID, userID)
	if asOf != nil {
		query = query.Where("created_at <= ?", *asOf)
	}

	if err := query.Scan(&result).Error; err != nil {
		return 0, err
	}
	return result.Total, nil
}

// FindReversalOf finds the reversal entry pointing at the given
// transaction, or nil when it has not been reversed
func (r *GormLedgerRepository) FindReversalOf(ctx context.Context, originalID uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("related_transaction_id = ? AND type = ?", originalID, ledger.TypeReversal).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func toDomainTransactions(transactionModels []models.TransactionModel) []ledger.Transaction {
	transactions := make([]ledger.Transaction, len(transactionModels))
	for i := range transactionModels {
		transactions[i] = *transactionModels[i].ToDomain()
	}
	return transactions
}

// Ensure GormLedgerRepository implements ledger.Repository
var _ ledger.Repository = (*GormLedgerRepository)(nil)
