package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputPaths(t *testing.T) {
	assert.Equal(t, []string{"stdout"}, outputPaths(""))
	assert.Equal(t, []string{"stderr", "logs/app.log"}, outputPaths(" stderr, logs/app.log ,"))
	assert.True(t, toTerminal([]string{"stdout", "stderr"}))
	assert.False(t, toTerminal([]string{"stdout", "logs/app.log"}))
}

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "claimflow.log")

	logger, err := NewLogger(LoggerConfig{Level: "nonsense", OutputPath: path, Format: "json", Service: "claimflow"})
	require.NoError(t, err)

	logger.Debug("hidden at the info fallback level")
	logger.Info("Claim created")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"Claim created"`)
	assert.Contains(t, out, `"service":"claimflow"`)
	assert.Contains(t, out, `"timestamp"`)
	assert.NotContains(t, out, "hidden")
}
