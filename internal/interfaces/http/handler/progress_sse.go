package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	settlementapp "github.com/peerrank/backend/internal/application/settlement"
	"github.com/peerrank/backend/internal/domain/shared"
	"github.com/peerrank/backend/internal/interfaces/http/middleware"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID     string
	UserID string
	// StageID filters the stream to one stage. uuid.Nil receives
	// events for every stage.
	StageID uuid.UUID
	Chan    chan SSEMessage
	Done    chan struct{}
}

// SSEMessage represents a message to be sent to SSE clients
type SSEMessage struct {
	Event   string    `json:"event"`
	Data    string    `json:"data"`
	ID      string    `json:"id,omitempty"`
	StageID uuid.UUID `json:"-"`
}

// SettlementProgressSSEHandler streams settlement progress and reversal
// events to connected clients. It subscribes to the in-process event bus;
// delivery is best-effort and never blocks the settlement itself.
type SettlementProgressSSEHandler struct {
	BaseHandler
	bus       shared.EventSubscriber
	logger    *zap.Logger
	clients   sync.Map // map[string]*SSEClient
	ctx       context.Context
	cancel    context.CancelFunc
	heartbeat time.Duration
	started   bool
	startMu   sync.Mutex
	maxClients int
}

// SSEOption is a functional option for configuring the handler
type SSEOption func(*SettlementProgressSSEHandler)

// WithSSELogger sets the logger for the handler
func WithSSELogger(logger *zap.Logger) SSEOption {
	return func(h *SettlementProgressSSEHandler) {
		h.logger = logger
	}
}

// WithSSEHeartbeat sets the heartbeat interval
func WithSSEHeartbeat(interval time.Duration) SSEOption {
	return func(h *SettlementProgressSSEHandler) {
		h.heartbeat = interval
	}
}

// WithSSEMaxClients sets the maximum number of concurrent SSE clients
func WithSSEMaxClients(max int) SSEOption {
	return func(h *SettlementProgressSSEHandler) {
		h.maxClients = max
	}
}

// NewSettlementProgressSSEHandler creates a new SSE handler for settlement progress
func NewSettlementProgressSSEHandler(bus shared.EventSubscriber, opts ...SSEOption) *SettlementProgressSSEHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &SettlementProgressSSEHandler{
		bus:        bus,
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		heartbeat:  30 * time.Second,
		maxClients: 1000,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Start subscribes to the event bus and begins sending heartbeats
func (h *SettlementProgressSSEHandler) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	if h.started {
		return fmt.Errorf("SSE handler already started")
	}

	h.bus.Subscribe(h, settlementapp.EventTypeProgress, settlementapp.EventTypeReversed)
	go h.sendHeartbeats()

	h.started = true
	h.logger.Info("settlement progress SSE handler started")
	return nil
}

// Stop unsubscribes from the event bus and disconnects all clients
func (h *SettlementProgressSSEHandler) Stop() {
	h.bus.Unsubscribe(h)
	h.cancel()

	h.clients.Range(func(key, value any) bool {
		if client, ok := value.(*SSEClient); ok {
			close(client.Done)
		}
		return true
	})

	h.logger.Info("settlement progress SSE handler stopped")
}

// EventTypes implements shared.EventHandler
func (h *SettlementProgressSSEHandler) EventTypes() []string {
	return []string{settlementapp.EventTypeProgress, settlementapp.EventTypeReversed}
}

// Handle implements shared.EventHandler. It converts bus events into SSE
// messages and fans them out to the connected clients.
func (h *SettlementProgressSSEHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	msg, ok := h.toMessage(event)
	if !ok {
		return nil
	}
	h.broadcast(msg)
	return nil
}

func (h *SettlementProgressSSEHandler) toMessage(event shared.DomainEvent) (SSEMessage, bool) {
	switch e := event.(type) {
	case *settlementapp.ProgressEvent:
		data, err := json.Marshal(e)
		if err != nil {
			h.logger.Error("failed to marshal progress event", zap.Error(err))
			return SSEMessage{}, false
		}
		return SSEMessage{
			Event:   "settlement_progress",
			Data:    string(data),
			ID:      e.EventID().String(),
			StageID: e.StageID,
		}, true
	case *settlementapp.ReversedEvent:
		data, err := json.Marshal(e)
		if err != nil {
			h.logger.Error("failed to marshal reversed event", zap.Error(err))
			return SSEMessage{}, false
		}
		return SSEMessage{
			Event:   "settlement_reversed",
			Data:    string(data),
			ID:      e.EventID().String(),
			StageID: e.StageID,
		}, true
	default:
		return SSEMessage{}, false
	}
}

// broadcast sends a message to every client subscribed to its stage
func (h *SettlementProgressSSEHandler) broadcast(msg SSEMessage) {
	h.clients.Range(func(key, value any) bool {
		client, ok := value.(*SSEClient)
		if !ok {
			return true
		}
		if client.StageID != uuid.Nil && msg.StageID != uuid.Nil && client.StageID != msg.StageID {
			return true
		}

		select {
		case client.Chan <- msg:
		default:
			// Channel full, client is slow; drop rather than block
			h.logger.Warn("client channel full, dropping message",
				zap.String("client_id", client.ID))
		}
		return true
	})
}

// sendHeartbeats periodically sends heartbeat messages to keep connections alive
func (h *SettlementProgressSSEHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.broadcast(SSEMessage{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
		}
	}
}

// Stream godoc
//
//	@Summary		Subscribe to settlement progress via SSE
//	@Description	Establishes a Server-Sent Events connection for real-time settlement progress
//	@Tags			settlements
//	@Produce		text/event-stream
//	@Param			id	path		string	true	"Stage ID"
//	@Success		200	{string}	string	"SSE stream"
//	@Failure		503	{object}	dto.Response{error=dto.ErrorInfo}
//	@Security		BearerAuth
//	@Router			/stages/{id}/settlement/progress [get]
func (h *SettlementProgressSSEHandler) Stream(c *gin.Context) {
	if h.maxClients > 0 && h.GetClientCount() >= h.maxClients {
		c.JSON(503, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ERR_MAX_CONNECTIONS",
				"message": "Maximum number of SSE connections reached",
			},
		})
		return
	}

	stageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid stage ID")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	userID := middleware.GetJWTUserID(c)

	// Buffer size allows messages to queue without blocking broadcast
	const sseMessageBufferSize = 100
	client := &SSEClient{
		ID:      uuid.New().String(),
		UserID:  userID,
		StageID: stageID,
		Chan:    make(chan SSEMessage, sseMessageBufferSize),
		Done:    make(chan struct{}),
	}

	h.clients.Store(client.ID, client)
	// The channel is never closed: a broadcast racing the disconnect may
	// still hold a reference, and sending on a closed channel panics.
	// Deregistering is enough; the buffered channel is then unreachable.
	defer h.clients.Delete(client.ID)

	h.logger.Info("SSE client connected",
		zap.String("client_id", client.ID),
		zap.String("user_id", userID),
		zap.String("stage_id", stageID.String()))

	h.sendEvent(c.Writer, SSEMessage{
		Event: "connected",
		Data:  fmt.Sprintf(`{"client_id":"%s","timestamp":%d}`, client.ID, time.Now().Unix()),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()

	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("SSE client disconnected",
				zap.String("client_id", client.ID))
			return
		case <-client.Done:
			return
		case <-h.ctx.Done():
			return
		case msg := <-client.Chan:
			h.sendEvent(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

// sendEvent writes an SSE event to the response writer
func (h *SettlementProgressSSEHandler) sendEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}

// GetClientCount returns the number of connected SSE clients
func (h *SettlementProgressSSEHandler) GetClientCount() int {
	count := 0
	h.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// RegisterRoutes registers the SSE stream route
func (h *SettlementProgressSSEHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stages/:id/settlement/progress", h.Stream)
}
