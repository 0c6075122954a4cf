package stage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peerrank/backend/internal/domain/shared"
	"github.com/peerrank/backend/internal/domain/stage"
)

// Service covers the minimal stage administration the settlement
// lifecycle depends on: creating stages, opening voting, and reading
// stages with their derived status.
type Service struct {
	repo   stage.Repository
	logger *zap.Logger
}

// NewService creates a stage service
func NewService(repo stage.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Create creates a draft stage with its reward pools
func (s *Service) Create(ctx context.Context, projectID uuid.UUID, name, description string, reportPool, commentPool int64) (*stage.Stage, error) {
	st, err := stage.NewStage(projectID, name, reportPool, commentPool)
	if err != nil {
		return nil, err
	}
	st.Description = description
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}
	s.logger.Info("stage created",
		zap.String("stage_id", st.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.Int64("report_pool", reportPool),
		zap.Int64("comment_pool", commentPool),
	)
	return st, nil
}

// Activate opens an existing draft stage
func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*stage.Stage, error) {
	return s.transition(ctx, id, (*stage.Stage).Activate)
}

// OpenVoting opens the voting window of an active stage
func (s *Service) OpenVoting(ctx context.Context, id uuid.UUID) (*stage.Stage, error) {
	return s.transition(ctx, id, (*stage.Stage).OpenVoting)
}

// Pause suspends a stage
func (s *Service) Pause(ctx context.Context, id uuid.UUID) (*stage.Stage, error) {
	return s.transition(ctx, id, (*stage.Stage).Pause)
}

// Resume clears a pause
func (s *Service) Resume(ctx context.Context, id uuid.UUID) (*stage.Stage, error) {
	return s.transition(ctx, id, (*stage.Stage).Resume)
}

// Get returns a stage by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*stage.Stage, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, shared.ErrNotFound
	}
	return st, nil
}

// ListByProject returns all stages of a project
func (s *Service) ListByProject(ctx context.Context, projectID uuid.UUID) ([]stage.Stage, error) {
	return s.repo.FindByProject(ctx, projectID)
}

// ReleaseStaleClaims clears settlement claims older than the budget.
// Invoked by the lock janitor so a crashed run cannot wedge a stage.
func (s *Service) ReleaseStaleClaims(ctx context.Context, budget time.Duration) (int64, error) {
	released, err := s.repo.ReleaseStaleClaims(ctx, time.Now().Add(-budget))
	if err != nil {
		return 0, err
	}
	if released > 0 {
		s.logger.Warn("released stale settlement claims", zap.Int64("count", released))
	}
	return released, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, fn func(*stage.Stage) error) (*stage.Stage, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}
