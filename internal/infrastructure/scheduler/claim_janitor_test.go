package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReleaser struct {
	released int64
	budget   time.Duration
	err      error
	calls    int
}

func (f *fakeReleaser) ReleaseStaleClaims(_ context.Context, budget time.Duration) (int64, error) {
	f.calls++
	f.budget = budget
	return f.released, f.err
}

func TestClaimJanitor_Sweep(t *testing.T) {
	releaser := &fakeReleaser{released: 2}
	janitor := NewClaimJanitor(releaser, "*/5 * * * *", 10*time.Minute, zap.NewNop())

	released, err := janitor.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), released)
	assert.Equal(t, 10*time.Minute, releaser.budget)
	assert.Equal(t, 1, releaser.calls)
}

func TestClaimJanitor_SweepError(t *testing.T) {
	releaser := &fakeReleaser{err: errors.New("db down")}
	janitor := NewClaimJanitor(releaser, "*/5 * * * *", 10*time.Minute, zap.NewNop())

	_, err := janitor.Sweep(context.Background())
	assert.Error(t, err)
}

func TestClaimJanitor_StartRejectsBadSchedule(t *testing.T) {
	janitor := NewClaimJanitor(&fakeReleaser{}, "not a schedule", 10*time.Minute, zap.NewNop())
	assert.Error(t, janitor.Start())
}

func TestClaimJanitor_StartAndStop(t *testing.T) {
	janitor := NewClaimJanitor(&fakeReleaser{}, "*/5 * * * *", 10*time.Minute, zap.NewNop())
	require.NoError(t, janitor.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, janitor.Stop(ctx))
}
