package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetLoggerBeforeInit(t *testing.T) {
	mu.Lock()
	logger = nil
	mu.Unlock()

	l := GetLogger()
	require.NotNil(t, l)
	l.Info("dropped")
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger("debug", "json"))
	assert.True(t, GetLogger().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, InitLogger("INFO", "console"))
	assert.False(t, GetLogger().Core().Enabled(zapcore.DebugLevel))
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger("chatty", "console")
	assert.Error(t, err)
}
