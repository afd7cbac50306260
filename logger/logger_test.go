package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestInit_SetsProcessLogger(t *testing.T) {
	original := L()
	defer Set(original)

	built, err := Init("warn", "development")
	require.NoError(t, err)
	assert.Same(t, built, L())
	assert.False(t, L().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, L().Core().Enabled(zapcore.WarnLevel))
}

func TestSet_ObservedLogger(t *testing.T) {
	original := L()
	defer Set(original)

	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))

	L().Info("order transitioned", zap.Int("order_id", 7))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "order transitioned", entry.Message)
	assert.Equal(t, int64(7), entry.ContextMap()["order_id"].(int64))
}
