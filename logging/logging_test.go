package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })
	return logs
}

func TestLogDefaultsToInfo(t *testing.T) {
	logs := observe(t)

	require.NoError(t, Log("world copied"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "world copied", entries[0].Message)
}

func TestLogLevels(t *testing.T) {
	logs := observe(t)

	require.NoError(t, Log("a", "Debug"))
	require.NoError(t, Log("b", "warn"))
	require.NoError(t, Log("c", "ERROR"))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestLogUnknownLevel(t *testing.T) {
	logs := observe(t)

	err := Log("Test", "Non-Existing-Level")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Non-Existing-Level")
	assert.Zero(t, logs.Len())
}

func TestInit(t *testing.T) {
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	require.NoError(t, Init("Debug", "console", ""))
	require.NoError(t, Init("Info", "json", ""))

	err := Init("loud", "console", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
