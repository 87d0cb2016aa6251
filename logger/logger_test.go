package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestNew_Levels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"unknown": zapcore.InfoLevel,
	}
	for levelStr, want := range cases {
		l, err := New(levelStr, "json")
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(want), levelStr)
		if want > zapcore.DebugLevel {
			assert.False(t, l.Core().Enabled(want-1), levelStr)
		}
	}
}

func TestSet_NilFallsBackToNop(t *testing.T) {
	defer Set(nil)

	Set(zaptest.NewLogger(t))
	assert.NotNil(t, L())

	Set(nil)
	assert.NotNil(t, L())
	assert.False(t, L().Core().Enabled(zapcore.ErrorLevel))
}
