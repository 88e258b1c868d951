package config

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonsonwune/admission_match/importer"
	"github.com/nonsonwune/admission_match/models"
	"github.com/nonsonwune/admission_match/requirements"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultDataFile, cfg.DataFile)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Empty(t, cfg.MetricsTextfile)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, requirements.DefaultConjunction, cfg.ExamConjunction)
	assert.Equal(t, requirements.DefaultForeignLanguageKey, cfg.ForeignLanguageKey)
	assert.Equal(t, requirements.DefaultExtraMarkers, cfg.ExtraMarkers)
	assert.Equal(t, models.DefaultUnit, cfg.DefaultUnit)
	assert.Equal(t, importer.DefaultColumns(), cfg.Columns)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ADMISSION_PLAN_FILE", "/tmp/plan.csv")
	t.Setenv("WORKERS", "3")
	t.Setenv("METRICS_TEXTFILE", "/tmp/admission.prom")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("EXAM_CONJUNCTION", "or")
	t.Setenv("EXTRA_MARKERS", "creative, interview ,")
	t.Setenv("DEFAULT_UNIT", "Other")
	t.Setenv("COLUMN_EXAMS", "Exams")
	t.Setenv("COLUMN_FULL_TIME_BUDGET", "FT budget")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/plan.csv", cfg.DataFile)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "/tmp/admission.prom", cfg.MetricsTextfile)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "or", cfg.ExamConjunction)
	assert.Equal(t, []string{"creative", "interview"}, cfg.ExtraMarkers)
	assert.Equal(t, "Other", cfg.DefaultUnit)
	assert.Equal(t, "Exams", cfg.Columns.Exams)
	assert.Equal(t, "FT budget", cfg.Columns.FullTimeBudget)
	assert.Equal(t, importer.DefaultColumns().Code, cfg.Columns.Code)

	policy := cfg.MatchPolicy()
	assert.Equal(t, []string{"creative", "interview"}, policy.ExtraMarkers)
	assert.Equal(t, requirements.DefaultForeignLanguageKey, policy.ForeignLanguageKey)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("WORKERS", "0")
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, err.Error(), "WORKERS")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DataFile:           "plan.csv",
			Workers:            2,
			Log:                LogConfig{Level: "info", Format: "console"},
			ExtraMarkers:       []string{"собеседование"},
			ForeignLanguageKey: "Иностранный язык",
			Columns:            importer.DefaultColumns(),
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing data file", func(c *Config) { c.DataFile = "" }, "ADMISSION_PLAN_FILE"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "WORKERS"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "LOG_LEVEL"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "LOG_FORMAT"},
		{"no exam column", func(c *Config) { c.Columns.Exams = " " }, "COLUMN_EXAMS"},
		{"no markers", func(c *Config) { c.ExtraMarkers = nil }, "EXTRA_MARKERS"},
		{"no foreign key", func(c *Config) { c.ForeignLanguageKey = "" }, "FOREIGN_LANGUAGE_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
