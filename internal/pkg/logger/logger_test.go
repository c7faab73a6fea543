package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	level, ok := ParseLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, zapcore.DebugLevel, level)

	level, ok = ParseLevel(" Warning ")
	assert.True(t, ok)
	assert.Equal(t, zapcore.WarnLevel, level)

	level, ok = ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, zapcore.InfoLevel, level)
}

func TestInitAndAdapter(t *testing.T) {
	zl, err := Init("error", true)
	require.NoError(t, err)
	require.NotNil(t, zl)
	assert.Same(t, zl, Zap())
	assert.False(t, zl.Core().Enabled(zapcore.InfoLevel))

	l := NewSlogAdapter().With("component", "test")
	assert.NotPanics(t, func() {
		l.Debug("debug")
		l.Info("info", "k", 1)
		l.With("nested", true).Error("error")
	})

	nop := NewNop()
	assert.Equal(t, nop, nop.With("k", "v"))
}
