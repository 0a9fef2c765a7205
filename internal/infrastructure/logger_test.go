package infrastructure

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battlab/internal/config"
)

func TestInitializeLoggerConsole(t *testing.T) {
	logger, closer, err := InitializeLogger(config.LoggingConfig{
		Level:  "debug",
		Format: "json",
		Output: "stderr",
	})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.NoError(t, closer())
}

func TestInitializeLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "battlab.log")
	logger, closer, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	logger.Info("ingestion started", "channel", 3)
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"ingestion started"`))
	assert.True(t, strings.Contains(string(data), `"channel":3`))
}

func TestInitializeLoggerFileWithoutPath(t *testing.T) {
	_, _, err := InitializeLogger(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "file",
	})
	assert.Error(t, err)
}
