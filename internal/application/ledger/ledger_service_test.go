package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/peerrank/backend/internal/domain/ledger"
	"github.com/peerrank/backend/internal/domain/shared"
)

// memoryRepo is an in-memory ledger for service tests
type memoryRepo struct {
	entries []*ledger.Transaction
}

func (m *memoryRepo) Save(_ context.Context, tx *ledger.Transaction) error {
	m.entries = append(m.entries, tx)
	return nil
}

func (m *memoryRepo) SaveBatch(ctx context.Context, txs []*ledger.Transaction) error {
	for _, tx := range txs {
		if err := m.Save(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	for _, tx := range m.entries {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, nil
}

func (m *memoryRepo) FindBySettlement(_ context.Context, settlementID uuid.UUID) ([]ledger.Transaction, error) {
	var out []ledger.Transaction
	for _, tx := range m.entries {
		if tx.SettlementID != nil && *tx.SettlementID == settlementID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (m *memoryRepo) FindByUser(_ context.Context, projectID uuid.UUID, userID string, filter shared.Filter) (shared.Paginated[ledger.Transaction], error) {
	var out []ledger.Transaction
	for _, tx := range m.entries {
		if tx.ProjectID == projectID && tx.UserID == userID {
			out = append(out, *tx)
		}
	}
	return shared.NewPaginated(out, int64(len(out)), filter.Page, filter.PageSize), nil
}

func (m *memoryRepo) SumByUser(_ context.Context, projectID uuid.UUID, userID string, asOf *time.Time) (int64, error) {
	var sum int64
	for _, tx := range m.entries {
		if tx.ProjectID != projectID || tx.UserID != userID {
			continue
		}
		if asOf != nil && tx.CreatedAt.After(*asOf) {
			continue
		}
		sum += tx.Amount
	}
	return sum, nil
}

func (m *memoryRepo) FindReversalOf(_ context.Context, originalID uuid.UUID) (*ledger.Transaction, error) {
	for _, tx := range m.entries {
		if tx.Type == ledger.TypeReversal && tx.RelatedTransactionID != nil && *tx.RelatedTransactionID == originalID {
			return tx, nil
		}
	}
	return nil, nil
}

func newTestService() (*Service, *memoryRepo) {
	repo := &memoryRepo{}
	return NewService(repo, nil, zap.NewNop()), repo
}

func TestService_PostAndBalance(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	projectID, stageID := uuid.New(), uuid.New()

	award, err := ledger.NewAwardTransaction(projectID, "alice@example.com", stageID, 70)
	require.NoError(t, err)
	require.NoError(t, svc.Post(ctx, award))

	deduct, err := ledger.NewDeductTransaction(projectID, "alice@example.com", stageID, 20)
	require.NoError(t, err)
	require.NoError(t, svc.Post(ctx, deduct))

	balance, err := svc.BalanceOf(ctx, projectID, "alice@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	other, err := svc.BalanceOf(ctx, projectID, "bob@example.com", nil)
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestService_Post_RejectsInvalidLinkage(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	award, err := ledger.NewAwardTransaction(uuid.New(), "alice@example.com", uuid.New(), 10)
	require.NoError(t, err)
	bogus := uuid.New()
	award.RelatedTransactionID = &bogus

	assert.Error(t, svc.Post(ctx, award))
	assert.Empty(t, repo.entries)
}

func TestService_Reverse(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	projectID := uuid.New()

	award, err := ledger.NewAwardTransaction(projectID, "alice@example.com", uuid.New(), 100)
	require.NoError(t, err)
	require.NoError(t, svc.Post(ctx, award))

	rev, err := svc.Reverse(ctx, award.ID, "settlement reversed")
	require.NoError(t, err)
	assert.Equal(t, int64(-100), rev.Amount)

	balance, err := svc.BalanceOf(ctx, projectID, "alice@example.com", nil)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestService_Reverse_NotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Reverse(context.Background(), uuid.New(), "nothing there")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_Reverse_AlreadyReversed(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	award, err := ledger.NewAwardTransaction(uuid.New(), "alice@example.com", uuid.New(), 100)
	require.NoError(t, err)
	require.NoError(t, svc.Post(ctx, award))

	_, err = svc.Reverse(ctx, award.ID, "first")
	require.NoError(t, err)

	before := len(repo.entries)
	_, err = svc.Reverse(ctx, award.ID, "second")
	assert.ErrorIs(t, err, shared.ErrAlreadyReversed)
	assert.Len(t, repo.entries, before)
}

func TestService_BalanceOf_AsOf(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	projectID := uuid.New()

	old, err := ledger.NewAwardTransaction(projectID, "alice@example.com", uuid.New(), 40)
	require.NoError(t, err)
	old.CreatedAt = time.Now().Add(-2 * time.Hour)
	repo.entries = append(repo.entries, old)

	recent, err := ledger.NewAwardTransaction(projectID, "alice@example.com", uuid.New(), 60)
	require.NoError(t, err)
	require.NoError(t, svc.Post(ctx, recent))

	cutoff := time.Now().Add(-time.Hour)
	balance, err := svc.BalanceOf(ctx, projectID, "alice@example.com", &cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(40), balance)
}
