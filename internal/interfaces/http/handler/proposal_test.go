package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newProposalTestEngine() *gin.Engine {
	// Binding failures are rejected before the service is reached, so a
	// nil service is fine for these tests.
	h := NewProposalHandler(nil)
	engine := gin.New()
	api := engine.Group("/api/v1")
	h.RegisterRoutes(api)
	return engine
}

func TestProposalHandler_SubmitRejectsInvalidBody(t *testing.T) {
	engine := newProposalTestEngine()

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "missing stage",
			body: map[string]any{
				"group_id": uuid.NewString(),
				"category": "report",
				"items":    []map[string]any{{"item_id": uuid.NewString(), "rank": 1}},
			},
		},
		{
			name: "unknown category",
			body: map[string]any{
				"stage_id": uuid.NewString(),
				"group_id": uuid.NewString(),
				"category": "bonus",
				"items":    []map[string]any{{"item_id": uuid.NewString(), "rank": 1}},
			},
		},
		{
			name: "empty items",
			body: map[string]any{
				"stage_id": uuid.NewString(),
				"group_id": uuid.NewString(),
				"category": "report",
				"items":    []map[string]any{},
			},
		},
		{
			name: "zero rank",
			body: map[string]any{
				"stage_id": uuid.NewString(),
				"group_id": uuid.NewString(),
				"category": "report",
				"items":    []map[string]any{{"item_id": uuid.NewString(), "rank": 0}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(t, engine, http.MethodPost, "/api/v1/proposals", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestProposalHandler_SubmitRequiresIdentity(t *testing.T) {
	engine := newProposalTestEngine()

	w := performJSON(t, engine, http.MethodPost, "/api/v1/proposals", map[string]any{
		"stage_id": uuid.NewString(),
		"group_id": uuid.NewString(),
		"category": "report",
		"items":    []map[string]any{{"item_id": uuid.NewString(), "rank": 1}},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProposalHandler_CastVoteRejectsInvalidAgreement(t *testing.T) {
	engine := newProposalTestEngine()

	w := performJSON(t, engine, http.MethodPost, "/api/v1/proposals/"+uuid.NewString()+"/votes", map[string]any{
		"agreement": 5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProposalHandler_ListRequiresKnownCategory(t *testing.T) {
	engine := newProposalTestEngine()

	w := performJSON(t, engine, http.MethodGet,
		"/api/v1/proposals?stage_id="+uuid.NewString()+"&category=bonus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
