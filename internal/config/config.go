// Package config loads ingestion configuration from an optional YAML file
// with environment-variable overrides (BATTLAB_ prefix). Environment values
// win over file values; both win over the built-in defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"battlab/internal/cellbuilder"
	"battlab/internal/cycler"
)

// envPrefix namespaces the environment variables, e.g. BATTLAB_LOGGING_LEVEL.
const envPrefix = "BATTLAB"

// Config is the complete ingestion configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Steps    StepsConfig    `yaml:"steps" envconfig:"STEPS"`
	Battery  BatteryConfig  `yaml:"battery" envconfig:"BATTERY"`
	Campaign CampaignConfig `yaml:"campaign" envconfig:"CAMPAIGN"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stderr file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// SlogLevel maps the configured level name onto slog's scale.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// PathsConfig locates the raw data and the export destination.
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	EISDir    string `yaml:"eis_dir" envconfig:"EIS_DIR"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
}

// StepsConfig is the schedule classification table: which step indices of
// the cycler schedule belong to which phase. Indices absent from all three
// lists are dropped during parsing.
type StepsConfig struct {
	Initialization   []int `yaml:"initialization" envconfig:"INITIALIZATION" validate:"dive,gt=0"`
	Characterization []int `yaml:"characterization" envconfig:"CHARACTERIZATION" validate:"dive,gt=0"`
	Degradation      []int `yaml:"degradation" envconfig:"DEGRADATION" validate:"dive,gt=0"`
}

// Filter converts the table into the parser's retention filter. Empty
// phases are left out.
func (s StepsConfig) Filter() cellbuilder.StepFilter {
	filter := make(cellbuilder.StepFilter)
	if len(s.Initialization) > 0 {
		filter[cycler.StepInitialization] = s.Initialization
	}
	if len(s.Characterization) > 0 {
		filter[cycler.StepCharacterization] = s.Characterization
	}
	if len(s.Degradation) > 0 {
		filter[cycler.StepDegradation] = s.Degradation
	}
	return filter
}

// BatteryConfig carries the nameplate ratings the health and energy
// calculations divide by.
type BatteryConfig struct {
	NominalCapacityAh float64 `yaml:"nominal_capacity_ah" envconfig:"NOMINAL_CAPACITY_AH" validate:"gt=0"`
	NominalEnergyWh   float64 `yaml:"nominal_energy_wh" envconfig:"NOMINAL_ENERGY_WH" validate:"gt=0"`
}

// CampaignConfig names the channels to load and the cell each channel
// holds, positionally paired.
type CampaignConfig struct {
	Channels []int `yaml:"channels" envconfig:"CHANNELS" validate:"dive,gt=0"`
	Cells    []int `yaml:"cells" envconfig:"CELLS" validate:"dive,gt=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stderr",
			FilePath: "logs/battlab.log",
		},
		Paths: PathsConfig{
			DataDir:   "data",
			OutputDir: "out",
		},
		Battery: BatteryConfig{
			NominalCapacityAh: 2.5,
			NominalEnergyWh:   9.0,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path when
// it exists (an empty path skips the file), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env and defaults
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks field constraints and cross-field consistency.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if len(c.Campaign.Channels) != len(c.Campaign.Cells) {
		return fmt.Errorf("campaign lists %d channels but %d cells; they pair positionally",
			len(c.Campaign.Channels), len(c.Campaign.Cells))
	}
	return c.Steps.Filter().Validate()
}
