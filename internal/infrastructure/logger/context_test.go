package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	log := zap.NewNop()
	ctx := WithContext(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
}

func TestFromContext_MissingOrWrongType(t *testing.T) {
	// Both cases fall back to a usable nop logger
	assert.NotPanics(t, func() {
		FromContext(context.Background()).Info("ping")
	})

	ctx := context.WithValue(context.Background(), loggerKey, "not a logger")
	assert.NotPanics(t, func() {
		FromContext(ctx).Info("ping")
	})
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, log := WithRequestID(context.Background(), zap.New(core), "req-42")
	assert.Equal(t, "req-42", GetRequestID(ctx))

	log.Info("ping")
	assert.Equal(t, "req-42", recorded.All()[0].ContextMap()["request_id"])

	// The enriched logger rides along in the context
	FromContext(ctx).Info("from context")
	assert.Equal(t, "req-42", recorded.All()[1].ContextMap()["request_id"])
}

func TestWithUserID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, log := WithUserID(context.Background(), zap.New(core), "alice@example.com")
	assert.Equal(t, "alice@example.com", GetUserID(ctx))

	log.Info("ping")
	assert.Equal(t, "alice@example.com", recorded.All()[0].ContextMap()["user_id"])
}

func TestContextChaining(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	ctx, log = WithRequestID(ctx, log, "req-1")
	ctx, _ = WithUserID(ctx, log, "user-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))

	// A later request id replaces the earlier one
	ctx, _ = WithRequestID(ctx, log, "req-2")
	assert.Equal(t, "req-2", GetRequestID(ctx))
}

func TestGetters_EmptyContext(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetUserID(context.Background()))
}
