package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newGormTestLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func TestNewGormLogger(t *testing.T) {
	gl, _ := newGormTestLogger(gormlogger.Info)
	assert.Equal(t, gormlogger.Info, gl.level)
	assert.Equal(t, defaultSlowThreshold, gl.slowThreshold)

	gl, _ = newGormTestLogger(gormlogger.Warn, WithSlowThreshold(time.Second), WithNotFoundLogging())
	assert.Equal(t, time.Second, gl.slowThreshold)
	assert.True(t, gl.logNotFound)
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := newGormTestLogger(gormlogger.Info)

	quieter := gl.LogMode(gormlogger.Error)
	assert.Equal(t, gormlogger.Error, quieter.(*GormLogger).level)
	// The original keeps its level
	assert.Equal(t, gormlogger.Info, gl.level)
}

func TestGormLogger_TraceQuery(t *testing.T) {
	gl, recorded := newGormTestLogger(gormlogger.Info)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM stages", 3
	}, nil)

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sql query", entries[0].Message)
	assert.Equal(t, int64(3), entries[0].ContextMap()["rows"])
}

func TestGormLogger_TraceError(t *testing.T) {
	gl, recorded := newGormTestLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "INSERT INTO ledger_transactions", 0
	}, errors.New("duplicate key"))

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sql error", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestGormLogger_SuppressesNotFound(t *testing.T) {
	gl, recorded := newGormTestLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM stages WHERE id = ?", 0
	}, gormlogger.ErrRecordNotFound)
	assert.Empty(t, recorded.All())

	gl, recorded = newGormTestLogger(gormlogger.Error, WithNotFoundLogging())
	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM stages WHERE id = ?", 0
	}, gormlogger.ErrRecordNotFound)
	assert.Len(t, recorded.All(), 1)
}

func TestGormLogger_TraceSlowQuery(t *testing.T) {
	gl, recorded := newGormTestLogger(gormlogger.Warn, WithSlowThreshold(time.Nanosecond))

	begin := time.Now().Add(-time.Millisecond)
	gl.Trace(context.Background(), begin, func() (string, int64) {
		return "SELECT * FROM ranking_ballots", 100
	}, nil)

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "slow sql", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestGormLogger_SilentLogsNothing(t *testing.T) {
	gl, recorded := newGormTestLogger(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)
	gl.Info(context.Background(), "info %s", "x")
	gl.Warn(context.Background(), "warn %s", "x")
	gl.Error(context.Background(), "error %s", "x")

	assert.Empty(t, recorded.All())
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("anything"))
}
