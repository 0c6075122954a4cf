package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/peerrank/backend/internal/application/ledger"
	"github.com/peerrank/backend/internal/domain/shared"
	"github.com/peerrank/backend/internal/interfaces/http/dto"
)

// LedgerHandler handles point balance and transaction HTTP requests
type LedgerHandler struct {
	BaseHandler
	ledgerService *ledgerapp.Service
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *ledgerapp.Service) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// BalanceQuery represents the query parameters for a balance lookup
type BalanceQuery struct {
	ProjectID string `form:"project_id" binding:"required,uuid"`
	UserID    string `form:"user_id" binding:"required"`
	// AsOf returns the balance as of this instant (RFC 3339). Empty
	// means current balance.
	AsOf string `form:"as_of" binding:"omitempty"`
}

// BalanceResponse represents a user's point balance
type BalanceResponse struct {
	ProjectID uuid.UUID  `json:"project_id"`
	UserID    string     `json:"user_id"`
	Balance   int64      `json:"balance"`
	AsOf      *time.Time `json:"as_of,omitempty"`
}

// ReverseTransactionRequest represents the HTTP request body for reversing one transaction
type ReverseTransactionRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// GetBalance godoc
//
//	@Summary	Get a user's point balance
//	@Tags		ledger
//	@Produce	json
//	@Param		project_id	query		string	true	"Project ID"
//	@Param		user_id		query		string	true	"User ID"
//	@Param		as_of		query		string	false	"Balance as of this RFC 3339 instant"
//	@Success	200			{object}	dto.Response{data=BalanceResponse}
//	@Security	BearerAuth
//	@Router		/ledger/balance [get]
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	var q BalanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindingError(c, err)
		return
	}

	projectID := uuid.MustParse(q.ProjectID)

	var asOf *time.Time
	if q.AsOf != "" {
		t, err := time.Parse(time.RFC3339, q.AsOf)
		if err != nil {
			h.BadRequest(c, "Invalid as_of timestamp, expected RFC 3339")
			return
		}
		asOf = &t
	}

	balance, err := h.ledgerService.BalanceOf(c.Request.Context(), projectID, q.UserID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, BalanceResponse{
		ProjectID: projectID,
		UserID:    q.UserID,
		Balance:   balance,
		AsOf:      asOf,
	})
}

// ListTransactions godoc
//
//	@Summary	List a user's ledger transactions
//	@Tags		ledger
//	@Produce	json
//	@Param		project_id	query		string	true	"Project ID"
//	@Param		user_id		query		string	true	"User ID"
//	@Param		page		query		int		false	"Page number"	default(1)
//	@Param		page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Success	200			{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/ledger/transactions [get]
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	projectID, err := uuid.Parse(c.Query("project_id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}
	userID := c.Query("user_id")
	if userID == "" {
		h.BadRequest(c, "user_id is required")
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BindingError(c, err)
		return
	}
	if listReq.Page <= 0 {
		listReq.Page = 1
	}
	if listReq.PageSize <= 0 {
		listReq.PageSize = 20
	}

	filter := shared.Filter{Page: listReq.Page, PageSize: listReq.PageSize}
	page, err := h.ledgerService.Transactions(c.Request.Context(), projectID, userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ReverseTransaction godoc
//
//	@Summary	Reverse one ledger transaction
//	@Tags		ledger
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Transaction ID"
//	@Param		request	body		ReverseTransactionRequest	true	"Reversal reason"
//	@Success	201		{object}	dto.Response
//	@Failure	409		{object}	dto.Response{error=dto.ErrorInfo}
//	@Security	BearerAuth
//	@Router		/ledger/transactions/{id}/reverse [post]
func (h *LedgerHandler) ReverseTransaction(c *gin.Context) {
	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	var req ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	reversal, err := h.ledgerService.Reverse(c.Request.Context(), transactionID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, reversal)
}

// RegisterRoutes registers all ledger routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ledger := rg.Group("/ledger")
	{
		ledger.GET("/balance", h.GetBalance)
		ledger.GET("/transactions", h.ListTransactions)
		ledger.POST("/transactions/:id/reverse", h.ReverseTransaction)
	}
}
