package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(t *testing.T) (Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_ValidConfigs(t *testing.T) {
	tests := []LogConfig{
		{Level: "debug", Format: "console"},
		{Level: "info", Format: "json"},
		{Level: "warn", Format: "json"},
		{Level: "error", Format: "console"},
	}
	for _, cfg := range tests {
		logger, err := NewLogger(cfg)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}

func TestLogger_EmitsFields(t *testing.T) {
	logger, logs := newObservedLogger(t)

	logger.Info("archive ingested",
		String("url", "u/a.zip"),
		Int("records", 42),
		Duration("elapsed", time.Second),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "archive ingested", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "u/a.zip", fields["url"])
	assert.EqualValues(t, 42, fields["records"])
}

func TestLogger_WithAddsPersistentFields(t *testing.T) {
	logger, logs := newObservedLogger(t)

	child := logger.With(String("dialect", "aps"))
	child.Debug("entry extracted")
	logger.Debug("no dialect here")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "aps", entries[0].ContextMap()["dialect"])
	assert.NotContains(t, entries[1].ContextMap(), "dialect")
}

func TestLogger_Named(t *testing.T) {
	logger, logs := newObservedLogger(t)

	logger.Named("ledger").Info("ledger reset")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ledger", entries[0].LoggerName)
}

func TestErrField(t *testing.T) {
	logger, logs := newObservedLogger(t)

	logger.Error("request failed", Err(assert.AnError))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap(), "error")
}

func TestNopLogger_DoesNothing(t *testing.T) {
	logger := NewNopLogger()

	assert.NotPanics(t, func() {
		logger.Info("ignored", String("k", "v"))
		logger.With(Int("n", 1)).Named("x").Error("ignored")
	})
}

func TestSetDefault(t *testing.T) {
	logger, logs := newObservedLogger(t)
	SetDefault(logger)

	Default().Info("via default")

	require.Len(t, logs.All(), 1)
}
