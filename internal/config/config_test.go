package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, "A4", cfg.PaperSize)
	assert.Equal(t, "portrait", cfg.Orientation)
	assert.Equal(t, "monday", cfg.WeekStart)
	assert.Equal(t, 1, cfg.Months)
	assert.True(t, cfg.Legend)
}

func TestValidateRejectsBadEnums(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.PaperSize = "B4" },
		func(c *Config) { c.Orientation = "diagonal" },
		func(c *Config) { c.WeekStart = "tuesday" },
		func(c *Config) { c.LogLevel = "trace" },
		func(c *Config) { c.Months = 0 },
		func(c *Config) { c.Months = 25 },
		func(c *Config) { c.MarginMM = 51 },
	}
	for i, mutate := range cases {
		cfg := DefaultConfig()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), "case %d", i)
	}
}

func TestValidateSources(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sources = []SourceConfig{{ID: "work", URL: "https://example.com/work.ics", Color: "#3366cc"}}
	assert.NoError(t, cfg.Validate())

	cfg.Sources[0].URL = "not a url"
	assert.Error(t, cfg.Validate())

	cfg.Sources[0].URL = "https://example.com/work.ics"
	cfg.Sources[0].Color = "blue"
	assert.Error(t, cfg.Validate())

	cfg.Sources[0].Color = ""
	assert.NoError(t, cfg.Validate())

	cfg.Sources = append(cfg.Sources, SourceConfig{URL: "https://example.com/b.ics"})
	assert.Error(t, cfg.Validate(), "source without id")
}

func TestNormalizeFillsMissing(t *testing.T) {
	cfg := &Config{PaperSize: "A3"}
	cfg.Normalize()

	assert.Equal(t, "A3", cfg.PaperSize, "explicit values survive")
	assert.Equal(t, "portrait", cfg.Orientation)
	assert.Equal(t, "monday", cfg.WeekStart)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1, cfg.Months)
	assert.NotNil(t, cfg.Sources)
}

func TestNormalizeNeverRepairsEnums(t *testing.T) {
	cfg := &Config{PaperSize: "B4"}
	cfg.Normalize()
	assert.Equal(t, "B4", cfg.PaperSize)
	assert.Error(t, cfg.Validate())
}

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.PaperSize = "Letter"
	cfg.Orientation = "landscape"
	cfg.Months = 3
	cfg.Sources = []SourceConfig{{ID: "work", URL: "https://example.com/work.ics", Name: "Work", Color: "#3366cc"}}
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paper_size: B9\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("months: 2\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Months)
	assert.Equal(t, "A4", cfg.PaperSize)
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Orientation = "diagonal"
	err := Save(filepath.Join(t.TempDir(), "config.yaml"), cfg)
	assert.Error(t, err)
}
