package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user_id", "u1", "password", "hunter2", "Authorization", "Bearer x", "dangling"})
	require.Len(t, out, 7)
	assert.Equal(t, "u1", out[1])
	assert.Equal(t, redacted, out[3])
	assert.Equal(t, redacted, out[5])
	assert.Equal(t, "dangling", out[6])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

func TestNewDevelopmentLogger(t *testing.T) {
	log, err := New("development", "info")
	require.NoError(t, err)
	log.With("service", "test").Info("hello", "k", "v")
}
