package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StaleClaimReleaser releases settlement claims older than the budget
// and reports how many were released.
type StaleClaimReleaser interface {
	ReleaseStaleClaims(ctx context.Context, budget time.Duration) (int64, error)
}

// ClaimJanitor periodically releases settlement claims left behind by
// crashed runs. A wedged claim blocks a stage from ever settling, so
// the janitor is the recovery path when no process is alive to release
// it.
type ClaimJanitor struct {
	releaser   StaleClaimReleaser
	staleAfter time.Duration
	schedule   string
	logger     *zap.Logger
	cron       *cron.Cron
}

// NewClaimJanitor creates a janitor that runs on the given cron
// schedule and releases claims older than staleAfter.
func NewClaimJanitor(releaser StaleClaimReleaser, schedule string, staleAfter time.Duration, logger *zap.Logger) *ClaimJanitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaimJanitor{
		releaser:   releaser,
		staleAfter: staleAfter,
		schedule:   schedule,
		logger:     logger,
	}
}

// Start registers the cron entry and starts the scheduler
func (j *ClaimJanitor) Start() error {
	j.cron = cron.New()
	if _, err := j.cron.AddFunc(j.schedule, j.sweep); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("claim janitor started",
		zap.String("schedule", j.schedule),
		zap.Duration("stale_after", j.staleAfter),
	)
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (j *ClaimJanitor) Stop(ctx context.Context) error {
	if j.cron == nil {
		return nil
	}
	done := j.cron.Stop()
	select {
	case <-done.Done():
		j.logger.Info("claim janitor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sweep releases stale claims once. Exposed for manual triggering.
func (j *ClaimJanitor) Sweep(ctx context.Context) (int64, error) {
	return j.releaser.ReleaseStaleClaims(ctx, j.staleAfter)
}

func (j *ClaimJanitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	released, err := j.Sweep(ctx)
	if err != nil {
		j.logger.Error("stale claim sweep failed", zap.Error(err))
		return
	}
	if released > 0 {
		j.logger.Warn("released stale settlement claims", zap.Int64("count", released))
	}
}
