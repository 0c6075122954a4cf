package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	rankingapp "github.com/peerrank/backend/internal/application/ranking"
	"github.com/peerrank/backend/internal/domain/ranking"
)

// ProposalHandler handles ranking proposal and ballot HTTP requests
type ProposalHandler struct {
	BaseHandler
	proposalService *rankingapp.ProposalService
}

// NewProposalHandler creates a new ProposalHandler
func NewProposalHandler(proposalService *rankingapp.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService}
}

// SubmitProposalRequest represents the HTTP request body for submitting a ranking proposal
type SubmitProposalRequest struct {
	StageID  string           `json:"stage_id" binding:"required,uuid"`
	GroupID  string           `json:"group_id" binding:"required,uuid"`
	Category string           `json:"category" binding:"required,oneof=report comment"`
	Items    []RankedItemBody `json:"items" binding:"required,min=1,dive"`
}

// RankedItemBody is one item/rank pair in a proposal submission
type RankedItemBody struct {
	ItemID string `json:"item_id" binding:"required,uuid"`
	Rank   int    `json:"rank" binding:"required,min=1"`
}

// CastVoteRequest represents the HTTP request body for voting on a proposal
type CastVoteRequest struct {
	Agreement int    `json:"agreement" binding:"required,oneof=-1 1"`
	Comment   string `json:"comment,omitempty" binding:"max=1000"`
}

// ResetVotesRequest represents the HTTP request body for resetting a proposal's votes
type ResetVotesRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// SubmitProposal godoc
//
//	@Summary	Submit a ranking proposal for a group
//	@Tags		proposals
//	@Accept		json
//	@Produce	json
//	@Param		request	body		SubmitProposalRequest	true	"Proposal submission"
//	@Success	201		{object}	dto.Response
//	@Failure	400		{object}	dto.Response{error=dto.ErrorInfo}
//	@Failure	409		{object}	dto.Response{error=dto.ErrorInfo}
//	@Security	BearerAuth
//	@Router		/proposals [post]
func (h *ProposalHandler) SubmitProposal(c *gin.Context) {
	var req SubmitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	proposerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	// Formats are enforced by the binding tags
	stageID := uuid.MustParse(req.StageID)
	groupID := uuid.MustParse(req.GroupID)

	items := make([]ranking.RankedItem, 0, len(req.Items))
	for _, it := range req.Items {
		itemID, err := uuid.Parse(it.ItemID)
		if err != nil {
			h.BadRequest(c, "Invalid item ID")
			return
		}
		items = append(items, ranking.RankedItem{ItemID: itemID, Rank: it.Rank})
	}

	p, err := h.proposalService.SubmitProposal(c.Request.Context(), stageID, groupID,
		proposerID, ranking.Category(req.Category), items)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, rankingapp.NewProposalView(p, ranking.Tally{}))
}

// CastVote godoc
//
//	@Summary	Cast or change a vote on a proposal
//	@Tags		proposals
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Proposal ID"
//	@Param		request	body		CastVoteRequest	true	"Vote"
//	@Success	200		{object}	dto.Response
//	@Failure	422		{object}	dto.Response{error=dto.ErrorInfo}
//	@Security	BearerAuth
//	@Router		/proposals/{id}/votes [post]
func (h *ProposalHandler) CastVote(c *gin.Context) {
	proposalID, ok := h.parseProposalID(c)
	if !ok {
		return
	}

	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	voterID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	tally, err := h.proposalService.CastVote(c.Request.Context(), proposalID, voterID,
		req.Agreement, req.Comment)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tally)
}

// WithdrawProposal withdraws a live proposal so the group can submit a new one
func (h *ProposalHandler) WithdrawProposal(c *gin.Context) {
	proposalID, ok := h.parseProposalID(c)
	if !ok {
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	p, err := h.proposalService.Withdraw(c.Request.Context(), proposalID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	tally, err := h.proposalService.Tally(c.Request.Context(), proposalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rankingapp.NewProposalView(p, tally))
}

// ResetVotes godoc
//
//	@Summary	Void all existing votes on a proposal
//	@Tags		proposals
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Proposal ID"
//	@Param		request	body		ResetVotesRequest	true	"Reset reason"
//	@Success	200		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/proposals/{id}/reset-votes [post]
func (h *ProposalHandler) ResetVotes(c *gin.Context) {
	proposalID, ok := h.parseProposalID(c)
	if !ok {
		return
	}

	var req ResetVotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	p, err := h.proposalService.ResetVotes(c.Request.Context(), proposalID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rankingapp.NewProposalView(p, ranking.Tally{}))
}

// GetTally returns the current vote tally of a proposal
func (h *ProposalHandler) GetTally(c *gin.Context) {
	proposalID, ok := h.parseProposalID(c)
	if !ok {
		return
	}

	tally, err := h.proposalService.Tally(c.Request.Context(), proposalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tally)
}

// ListProposals godoc
//
//	@Summary	List proposals of a stage
//	@Tags		proposals
//	@Produce	json
//	@Param		stage_id	query		string	true	"Stage ID"
//	@Param		category	query		string	true	"Ranking category"	Enums(report, comment)
//	@Success	200			{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/proposals [get]
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	stageID, err := uuid.Parse(c.Query("stage_id"))
	if err != nil {
		h.BadRequest(c, "Invalid stage ID")
		return
	}

	category := ranking.Category(c.Query("category"))
	if category != ranking.CategoryReport && category != ranking.CategoryComment {
		h.BadRequest(c, "Unknown ranking category")
		return
	}

	views, err := h.proposalService.ListByStage(c.Request.Context(), stageID, category)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, views)
}

func (h *ProposalHandler) parseProposalID(c *gin.Context) (uuid.UUID, bool) {
	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid proposal ID")
		return uuid.Nil, false
	}
	return proposalID, true
}

// RegisterRoutes registers all proposal routes
func (h *ProposalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	proposals := rg.Group("/proposals")
	{
		proposals.POST("", h.SubmitProposal)
		proposals.GET("", h.ListProposals)
		proposals.POST("/:id/votes", h.CastVote)
		proposals.POST("/:id/withdraw", h.WithdrawProposal)
		proposals.POST("/:id/reset-votes", h.ResetVotes)
		proposals.GET("/:id/tally", h.GetTally)
	}
}
