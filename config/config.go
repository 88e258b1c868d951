// Package config loads the admission matcher settings from an optional .env
// file, an optional config.yaml and the environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nonsonwune/admission_match/importer"
	"github.com/nonsonwune/admission_match/logger"
	"github.com/nonsonwune/admission_match/models"
	"github.com/nonsonwune/admission_match/requirements"
)

const DefaultDataFile = "data/admission_plan.csv"

// Config holds the application configuration
type Config struct {
	DataFile        string `mapstructure:"admission_plan_file"`
	Workers         int    `mapstructure:"workers"`
	MetricsTextfile string `mapstructure:"metrics_textfile"`

	Log LogConfig `mapstructure:"log"`

	ExamConjunction    string   `mapstructure:"exam_conjunction"`
	ForeignLanguageKey string   `mapstructure:"foreign_language_key"`
	ExtraMarkers       []string `mapstructure:"extra_markers"`
	DefaultUnit        string   `mapstructure:"default_unit"`

	Columns importer.Columns `mapstructure:"column"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ValidationError reports an invalid configuration value
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Load reads the configuration. Environment variables use the upper-case key
// with dots replaced by underscores: LOG_LEVEL, COLUMN_EXAMS, EXTRA_MARKERS
// (comma separated) and so on.
func Load() (*Config, error) {
	// Missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("admission_plan_file", DefaultDataFile)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("metrics_textfile", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("exam_conjunction", requirements.DefaultConjunction)
	v.SetDefault("foreign_language_key", requirements.DefaultForeignLanguageKey)
	v.SetDefault("extra_markers", requirements.DefaultExtraMarkers)
	v.SetDefault("default_unit", models.DefaultUnit)

	cols := importer.DefaultColumns()
	v.SetDefault("column.unit", cols.Unit)
	v.SetDefault("column.code", cols.Code)
	v.SetDefault("column.name", cols.Name)
	v.SetDefault("column.exams", cols.Exams)
	v.SetDefault("column.full_time_budget", cols.FullTimeBudget)
	v.SetDefault("column.full_time_paid", cols.FullTimePaid)
	v.SetDefault("column.part_time_budget", cols.PartTimeBudget)
	v.SetDefault("column.part_time_paid", cols.PartTimePaid)
	v.SetDefault("column.correspondence_budget", cols.CorrespondenceBudget)
	v.SetDefault("column.correspondence_paid", cols.CorrespondencePaid)
}

func (c *Config) normalize() {
	c.DataFile = strings.TrimSpace(c.DataFile)
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))

	markers := make([]string, 0, len(c.ExtraMarkers))
	for _, m := range c.ExtraMarkers {
		if m = strings.TrimSpace(m); m != "" {
			markers = append(markers, m)
		}
	}
	c.ExtraMarkers = markers

	c.ForeignLanguageKey = strings.TrimSpace(c.ForeignLanguageKey)
	c.DefaultUnit = strings.TrimSpace(c.DefaultUnit)
	if c.DefaultUnit == "" {
		c.DefaultUnit = models.DefaultUnit
	}
}

// MatchPolicy returns the matcher settings.
func (c *Config) MatchPolicy() requirements.MatchPolicy {
	return requirements.MatchPolicy{
		ExtraMarkers:       c.ExtraMarkers,
		ForeignLanguageKey: c.ForeignLanguageKey,
	}
}

// Validate checks the configuration and reports every problem it finds.
func (c *Config) Validate() error {
	var errs []error

	if c.DataFile == "" {
		errs = append(errs, &ValidationError{Field: "ADMISSION_PLAN_FILE", Message: "is required"})
	}
	if c.Workers < 1 {
		errs = append(errs, &ValidationError{Field: "WORKERS", Message: fmt.Sprintf("must be at least 1, got %d", c.Workers)})
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, &ValidationError{Field: "LOG_LEVEL", Message: err.Error()})
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, &ValidationError{Field: "LOG_FORMAT", Message: fmt.Sprintf("must be json or console, got %q", c.Log.Format)})
	}
	if strings.TrimSpace(c.Columns.Exams) == "" {
		errs = append(errs, &ValidationError{Field: "COLUMN_EXAMS", Message: "exam requirement column is required"})
	}
	if len(c.ExtraMarkers) == 0 {
		errs = append(errs, &ValidationError{Field: "EXTRA_MARKERS", Message: "at least one marker is required"})
	}
	if c.ForeignLanguageKey == "" {
		errs = append(errs, &ValidationError{Field: "FOREIGN_LANGUAGE_KEY", Message: "is required"})
	}

	return errors.Join(errs...)
}
