package logger

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"chartfeed/internal/errors"
)

func observed(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return FromZap(zap.New(core)), logs
}

func TestLogger_ContextAddsRequestID(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)
	ctx := WithRequestID(context.Background(), "req-1")

	log.InfoContext(ctx, "history served", NewField("symbol", "R_100"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "history served", entries[0].Message)
	assert.Equal(t, "R_100", fields["symbol"])
	assert.Equal(t, "req-1", fields["request_id"])
}

func TestLogger_WithoutRequestID(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)
	log.WarnContext(context.Background(), "no id")

	require.Len(t, logs.All(), 1)
	_, ok := logs.All()[0].ContextMap()["request_id"]
	assert.False(t, ok)
}

func TestLogger_ErrorUsesTracerStack(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)

	log.Error(errors.TracerFromError(stderrors.New("boom")))
	log.Error(nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].Message)
	assert.Contains(t, entries[0].Stack, "TestLogger_ErrorUsesTracerStack")
}

func TestLogger_WithAndLevel(t *testing.T) {
	log, logs := observed(zapcore.InfoLevel)
	child := log.With(NewField("component", "streamer"))

	child.Debug("dropped")
	child.Info("kept")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "streamer", entries[0].ContextMap()["component"])
}

func TestWithRequestID_GeneratesWhenEmpty(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	assert.Len(t, RequestID(ctx), 36)
	assert.Empty(t, RequestID(context.Background()))
}

func TestLevel_zapLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, Level("DEBUG").zapLevel())
	assert.Equal(t, zapcore.ErrorLevel, ErrorLevel.zapLevel())
	assert.Equal(t, zapcore.InfoLevel, Level("verbose").zapLevel())
}

func TestNew(t *testing.T) {
	log, err := New(WithLevel(WarnLevel), WithOutputPaths("stderr"))
	require.NoError(t, err)
	require.NotNil(t, log)
	NewNop().Info("discarded")
}
