package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() loads from .scribe/config.yml when present and merges with defaults
// - Load() reads durations ("90s") into time.Duration
// - Environment variables override config file values
// - NewFileLoader reads an explicit file and fails when it is missing
// - Load() returns error for malformed YAML
// - Load() returns error for invalid configuration values
// - Validate() rejects inverted thresholds, bad timeouts, bad weights,
//   unknown providers, a command provider without argv, unknown formats
// - Validate() returns every sentinel through errors.Is for multiple failures

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	cfgDir := filepath.Join(dir, DirName)
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yml"), []byte(content), 0o644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, 1000, cfg.Thresholds.LargeLines)
	assert.Equal(t, 50, cfg.Thresholds.LargeSymbols)
	assert.Equal(t, 3000, cfg.Thresholds.SuperLargeLines)
	assert.Equal(t, 150, cfg.Thresholds.SuperLargeSymbols)
	assert.Equal(t, 60*time.Second, cfg.Synthesis.RoundTimeout)
	assert.Equal(t, 32, cfg.Resolution.MaxDepth)
	assert.Equal(t, "none", cfg.LLM.Provider)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 30, cfg.Scoring.Public)
	assert.Greater(t, cfg.Scoring.Public, cfg.Scoring.Private)
	assert.Contains(t, cfg.Scoring.FrameworkMarkers, "Controller")
	assert.NotEmpty(t, cfg.Paths.Code)
	assert.NotEmpty(t, cfg.Paths.Ignore)

	assert.NoError(t, Validate(cfg))
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Thresholds, cfg.Thresholds)
	assert.Equal(t, d.Synthesis, cfg.Synthesis)
	assert.Equal(t, d.Resolution, cfg.Resolution)
	assert.Equal(t, d.Output, cfg.Output)
	assert.Equal(t, d.Paths.Code, cfg.Paths.Code)
	assert.Equal(t, d.Scoring.FrameworkMarkers, cfg.Scoring.FrameworkMarkers)
	assert.Equal(t, d.Scoring.Public, cfg.Scoring.Public)
	assert.Equal(t, d.LLM.Provider, cfg.LLM.Provider)
	assert.Equal(t, d.LLM.MaxTokens, cfg.LLM.MaxTokens)
}

func TestLoad_MergesConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `
thresholds:
  large_lines: 500
  super_large_lines: 2000
synthesis:
  round_timeout: 90s
  top_n: 10
scoring:
  framework_markers: [Get, Post]
llm:
  provider: command
  command: ["./gen.sh", "--fast"]
output:
  format: yaml
`)

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Thresholds.LargeLines)
	assert.Equal(t, 2000, cfg.Thresholds.SuperLargeLines)
	assert.Equal(t, 50, cfg.Thresholds.LargeSymbols, "unset keys keep defaults")
	assert.Equal(t, 90*time.Second, cfg.Synthesis.RoundTimeout)
	assert.Equal(t, 10, cfg.Synthesis.TopN)
	assert.Equal(t, []string{"Get", "Post"}, cfg.Scoring.FrameworkMarkers)
	assert.Equal(t, "command", cfg.LLM.Provider)
	assert.Equal(t, []string{"./gen.sh", "--fast"}, cfg.LLM.Command)
	assert.Equal(t, "yaml", cfg.Output.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	// Not parallel: mutates process environment.
	dir := t.TempDir()
	writeConfig(t, dir, `
thresholds:
  large_lines: 500
`)

	t.Setenv("SCRIBE_THRESHOLDS_LARGE_LINES", "700")
	t.Setenv("SCRIBE_LLM_PROVIDER", "anthropic")
	t.Setenv("SCRIBE_OUTPUT_DATABASE", "/tmp/scribe.db")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, 700, cfg.Thresholds.LargeLines)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "/tmp/scribe.db", cfg.Output.Database)
}

func TestFileLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resolution:\n  max_depth: 8\n"), 0o644))

	cfg, err := NewFileLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Resolution.MaxDepth)

	_, err = NewFileLoader(filepath.Join(dir, "missing.yaml")).Load()
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "thresholds: [unterminated\n")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `
output:
  format: xml
`)

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"inverted lines", func(c *Config) { c.Thresholds.SuperLargeLines = 10 }, ErrInvalidThresholds},
		{"inverted symbols", func(c *Config) { c.Thresholds.SuperLargeSymbols = 1 }, ErrInvalidThresholds},
		{"zero threshold", func(c *Config) { c.Thresholds.LargeSymbols = 0 }, ErrInvalidThresholds},
		{"zero timeout", func(c *Config) { c.Synthesis.RoundTimeout = 0 }, ErrInvalidTimeout},
		{"zero top_k", func(c *Config) { c.Synthesis.TopK = 0 }, ErrInvalidSynthesis},
		{"negative weight", func(c *Config) { c.Scoring.Private = -1 }, ErrInvalidWeights},
		{"huge weight", func(c *Config) { c.Scoring.EntryPoint = 101 }, ErrInvalidWeights},
		{"zero depth", func(c *Config) { c.Resolution.MaxDepth = 0 }, ErrInvalidDepth},
		{"negative workers", func(c *Config) { c.Indexer.Workers = -2 }, ErrInvalidWorkers},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "gemini" }, ErrInvalidProvider},
		{"command without argv", func(c *Config) { c.LLM.Provider = "command" }, ErrEmptyCommand},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }, ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Output.Format = "xml"
	cfg.Resolution.MaxDepth = -1
	cfg.LLM.Provider = "bogus"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed:")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.ErrorIs(t, err, ErrInvalidDepth)
	assert.ErrorIs(t, err, ErrInvalidProvider)
}
