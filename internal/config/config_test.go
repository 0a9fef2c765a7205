package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battlab/internal/cycler"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "battlab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, 2.5, cfg.Battery.NominalCapacityAh)
	assert.Empty(t, cfg.Steps.Filter())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
paths:
  data_dir: /mnt/raws
  eis_dir: /mnt/eis
steps:
  characterization: [6, 7, 10]
  degradation: [25]
battery:
  nominal_capacity_ah: 1.1
  nominal_energy_wh: 4.0
campaign:
  channels: [1, 2]
  cells: [11, 12]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/mnt/raws", cfg.Paths.DataDir)
	assert.Equal(t, "/mnt/eis", cfg.Paths.EISDir)
	assert.Equal(t, 1.1, cfg.Battery.NominalCapacityAh)
	assert.Equal(t, []int{1, 2}, cfg.Campaign.Channels)

	filter := cfg.Steps.Filter()
	require.Len(t, filter, 2)
	assert.Equal(t, []int{6, 7, 10}, filter[cycler.StepCharacterization])
	assert.Equal(t, []int{25}, filter[cycler.StepDegradation])
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: debug\n")
	t.Setenv("BATTLAB_LOGGING_LEVEL", "warn")
	t.Setenv("BATTLAB_STEPS_DEGRADATION", "25,26")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, []int{25, 26}, cfg.Steps.Degradation)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults pass",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
		{
			name:    "zero nominal capacity",
			mutate:  func(c *Config) { c.Battery.NominalCapacityAh = 0 },
			wantErr: true,
		},
		{
			name:    "negative step index",
			mutate:  func(c *Config) { c.Steps.Degradation = []int{-1} },
			wantErr: true,
		},
		{
			name: "mismatched campaign lists",
			mutate: func(c *Config) {
				c.Campaign.Channels = []int{1, 2}
				c.Campaign.Cells = []int{11}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LoggingConfig{Level: tt.level}.SlogLevel())
	}
}
