package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	settlementapp "github.com/peerrank/backend/internal/application/settlement"
)

// SettlementHandler handles settlement execution and reversal HTTP requests
type SettlementHandler struct {
	BaseHandler
	orchestrator *settlementapp.Orchestrator
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(orchestrator *settlementapp.Orchestrator) *SettlementHandler {
	return &SettlementHandler{orchestrator: orchestrator}
}

// SettleRequest represents the HTTP request body for executing a settlement
type SettleRequest struct {
	// Force bypasses warning-level validation failures. Error-level
	// failures still block the settlement.
	Force bool `json:"force"`
}

// ReverseSettlementRequest represents the HTTP request body for reversing a settlement
type ReverseSettlementRequest struct {
	SettlementID string `json:"settlement_id" binding:"required,uuid"`
	Reason       string `json:"reason" binding:"required,min=5,max=500"`
}

// PreviewReversalRequest represents the HTTP request body for previewing a reversal
type PreviewReversalRequest struct {
	SettlementID string `json:"settlement_id" binding:"required,uuid"`
}

// ValidateSettlement godoc
//
//	@Summary	Dry-run validation of a stage settlement
//	@Tags		settlements
//	@Produce	json
//	@Param		id	path		string	true	"Stage ID"
//	@Success	200	{object}	dto.Response
//	@Failure	404	{object}	dto.Response{error=dto.ErrorInfo}
//	@Security	BearerAuth
//	@Router		/stages/{id}/settlement/validate [post]
func (h *SettlementHandler) ValidateSettlement(c *gin.Context) {
	stageID, ok := h.parseStageID(c)
	if !ok {
		return
	}

	report, err := h.orchestrator.Validate(c.Request.Context(), stageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// Settle godoc
//
//	@Summary	Execute the settlement of a stage
//	@Tags		settlements
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Stage ID"
//	@Param		request	body		SettleRequest	false	"Settlement options"
//	@Success	200		{object}	dto.Response
//	@Failure	409		{object}	dto.Response{error=dto.ErrorInfo}
//	@Security	BearerAuth
//	@Router		/stages/{id}/settlement [post]
func (h *SettlementHandler) Settle(c *gin.Context) {
	stageID, ok := h.parseStageID(c)
	if !ok {
		return
	}

	var req SettleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindingError(c, err)
			return
		}
	}

	operatorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Operator identity required")
		return
	}

	result, err := h.orchestrator.Settle(c.Request.Context(), stageID, operatorID, req.Force)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ReverseSettlement godoc
//
//	@Summary	Reverse an active settlement
//	@Tags		settlements
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Stage ID"
//	@Param		request	body		ReverseSettlementRequest	true	"Reversal request"
//	@Success	200		{object}	dto.Response
//	@Failure	409		{object}	dto.Response{error=dto.ErrorInfo}
//	@Security	BearerAuth
//	@Router		/stages/{id}/settlement/reverse [post]
func (h *SettlementHandler) ReverseSettlement(c *gin.Context) {
	stageID, ok := h.parseStageID(c)
	if !ok {
		return
	}

	var req ReverseSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	operatorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Operator identity required")
		return
	}

	settlementID := uuid.MustParse(req.SettlementID)

	result, err := h.orchestrator.ReverseSettlement(c.Request.Context(), stageID, settlementID,
		operatorID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ReopenStage returns a completed stage whose settlement has been
// reversed to the voting phase
func (h *SettlementHandler) ReopenStage(c *gin.Context) {
	stageID, ok := h.parseStageID(c)
	if !ok {
		return
	}

	operatorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Operator identity required")
		return
	}

	st, err := h.orchestrator.ReopenStage(c.Request.Context(), stageID, operatorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toStageResponse(st))
}

// PreviewReversal returns the balance impact a reversal would have,
// without writing anything
func (h *SettlementHandler) PreviewReversal(c *gin.Context) {
	stageID, ok := h.parseStageID(c)
	if !ok {
		return
	}

	var req PreviewReversalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	settlementID := uuid.MustParse(req.SettlementID)

	preview, err := h.orchestrator.PreviewReversal(c.Request.Context(), stageID, settlementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, preview)
}

// GetResult returns the latest settlement result of a stage
func (h *SettlementHandler) GetResult(c *gin.Context) {
	stageID, ok := h.parseStageID(c)
	if !ok {
		return
	}

	result, err := h.orchestrator.Result(c.Request.Context(), stageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetHistory returns all settlement and reversal records of a stage
func (h *SettlementHandler) GetHistory(c *gin.Context) {
	stageID, ok := h.parseStageID(c)
	if !ok {
		return
	}

	history, err := h.orchestrator.History(c.Request.Context(), stageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, history)
}

// GetDetails returns one settlement record with its ledger entries
func (h *SettlementHandler) GetDetails(c *gin.Context) {
	settlementID, err := uuid.Parse(c.Param("settlementId"))
	if err != nil {
		h.BadRequest(c, "Invalid settlement ID")
		return
	}

	details, err := h.orchestrator.Details(c.Request.Context(), settlementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, details)
}

func (h *SettlementHandler) parseStageID(c *gin.Context) (uuid.UUID, bool) {
	stageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid stage ID")
		return uuid.Nil, false
	}
	return stageID, true
}

// RegisterRoutes registers all settlement routes
func (h *SettlementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stages := rg.Group("/stages/:id/settlement")
	{
		stages.POST("", h.Settle)
		stages.POST("/validate", h.ValidateSettlement)
		stages.POST("/reverse", h.ReverseSettlement)
		stages.POST("/reopen", h.ReopenStage)
		stages.POST("/preview-reversal", h.PreviewReversal)
		stages.GET("/result", h.GetResult)
		stages.GET("/history", h.GetHistory)
	}
	rg.GET("/settlements/:settlementId", h.GetDetails)
}
