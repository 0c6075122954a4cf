package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	stageapp "github.com/peerrank/backend/internal/application/stage"
	"github.com/peerrank/backend/internal/domain/stage"
)

// StageHandler handles stage lifecycle HTTP requests
type StageHandler struct {
	BaseHandler
	stageService *stageapp.Service
}

// NewStageHandler creates a new StageHandler
func NewStageHandler(stageService *stageapp.Service) *StageHandler {
	return &StageHandler{stageService: stageService}
}

// CreateStageRequest represents the HTTP request body for creating a stage
type CreateStageRequest struct {
	ProjectID         string `json:"project_id" binding:"required,uuid"`
	Name              string `json:"name" binding:"required,min=1,max=200"`
	Description       string `json:"description,omitempty" binding:"max=2000"`
	ReportRewardPool  int64  `json:"report_reward_pool" binding:"min=0"`
	CommentRewardPool int64  `json:"comment_reward_pool" binding:"min=0"`
}

// StageResponse represents a stage in API responses
type StageResponse struct {
	ID                uuid.UUID  `json:"id"`
	ProjectID         uuid.UUID  `json:"project_id"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	Status            string     `json:"status"`
	ReportRewardPool  int64      `json:"report_reward_pool"`
	CommentRewardPool int64      `json:"comment_reward_pool"`
	StartTime         *time.Time `json:"start_time,omitempty"`
	VotingTime        *time.Time `json:"voting_time,omitempty"`
	SettlingTime      *time.Time `json:"settling_time,omitempty"`
	SettledTime       *time.Time `json:"settled_time,omitempty"`
	SettledBy         string     `json:"settled_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toStageResponse(s *stage.Stage) StageResponse {
	return StageResponse{
		ID:                s.ID,
		ProjectID:         s.ProjectID,
		Name:              s.Name,
		Description:       s.Description,
		Status:            string(s.Status()),
		ReportRewardPool:  s.ReportRewardPool,
		CommentRewardPool: s.CommentRewardPool,
		StartTime:         s.StartTime,
		VotingTime:        s.VotingTime,
		SettlingTime:      s.SettlingTime,
		SettledTime:       s.SettledTime,
		SettledBy:         s.SettledBy,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

// CreateStage godoc
//
//	@Summary	Create a new stage
//	@Tags		stages
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateStageRequest	true	"Stage creation request"
//	@Success	201		{object}	dto.Response{data=StageResponse}
//	@Failure	400		{object}	dto.Response{error=dto.ErrorInfo}
//	@Security	BearerAuth
//	@Router		/stages [post]
func (h *StageHandler) CreateStage(c *gin.Context) {
	var req CreateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	st, err := h.stageService.Create(c.Request.Context(), projectID, req.Name, req.Description,
		req.ReportRewardPool, req.CommentRewardPool)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toStageResponse(st))
}

// GetStage godoc
//
//	@Summary	Get stage by ID
//	@Tags		stages
//	@Produce	json
//	@Param		id	path		string	true	"Stage ID"
//	@Success	200	{object}	dto.Response{data=StageResponse}
//	@Failure	404	{object}	dto.Response{error=dto.ErrorInfo}
//	@Security	BearerAuth
//	@Router		/stages/{id} [get]
func (h *StageHandler) GetStage(c *gin.Context) {
	stageID, ok := h.parseStageID(c)
	if !ok {
		return
	}

	st, err := h.stageService.Get(c.Request.Context(), stageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toStageResponse(st))
}

// ListStages godoc
//
//	@Summary	List stages of a project
//	@Tags		stages
//	@Produce	json
//	@Param		project_id	query		string	true	"Project ID"
//	@Success	200			{object}	dto.Response{data=[]StageResponse}
//	@Security	BearerAuth
//	@Router		/stages [get]
func (h *StageHandler) ListStages(c *gin.Context) {
	projectID, err := uuid.Parse(c.Query("project_id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	stages, err := h.stageService.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]StageResponse, 0, len(stages))
	for i := range stages {
		views = append(views, toStageResponse(&stages[i]))
	}
	h.Success(c, views)
}

// ActivateStage moves a draft stage into the active phase
func (h *StageHandler) ActivateStage(c *gin.Context) {
	h.transition(c, h.stageService.Activate)
}

// OpenVoting moves an active stage into the voting phase
func (h *StageHandler) OpenVoting(c *gin.Context) {
	h.transition(c, h.stageService.OpenVoting)
}

// PauseStage pauses an active or voting stage
func (h *StageHandler) PauseStage(c *gin.Context) {
	h.transition(c, h.stageService.Pause)
}

// ResumeStage resumes a paused stage
func (h *StageHandler) ResumeStage(c *gin.Context) {
	h.transition(c, h.stageService.Resume)
}

func (h *StageHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*stage.Stage, error)) {
	stageID, ok := h.parseStageID(c)
	if !ok {
		return
	}

	st, err := fn(c.Request.Context(), stageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toStageResponse(st))
}

func (h *StageHandler) parseStageID(c *gin.Context) (uuid.UUID, bool) {
	stageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid stage ID")
		return uuid.Nil, false
	}
	return stageID, true
}

// RegisterRoutes registers all stage routes
func (h *StageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stages := rg.Group("/stages")
	{
		stages.POST("", h.CreateStage)
		stages.GET("", h.ListStages)
		stages.GET("/:id", h.GetStage)
		stages.POST("/:id/activate", h.ActivateStage)
		stages.POST("/:id/open-voting", h.OpenVoting)
		stages.POST("/:id/pause", h.PauseStage)
		stages.POST("/:id/resume", h.ResumeStage)
	}
}
