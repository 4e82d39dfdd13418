package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log, zl, err := NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, zl.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.V(1).Enabled())
}

func TestNewLogger_FromEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	log, zl, err := NewLogger("")
	require.NoError(t, err)
	assert.False(t, zl.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Enabled())
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, _, err := NewLogger("chatty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chatty")
}
