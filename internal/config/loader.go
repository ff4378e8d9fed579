package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DirName is the per-project configuration directory.
const DirName = ".scribe"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads an explicit config file instead
// of searching .scribe/ under a root directory.
func NewFileLoader(path string) Loader {
	return &loader{
		configFile: path,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (SCRIBE_*)
// 2. Config file (.scribe/config.yml or .scribe/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, DirName))
	}

	// Replace . with _ in env var names (e.g., SCRIBE_THRESHOLDS_LARGE_LINES)
	v.SetEnvPrefix("SCRIBE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// envKeys are bound explicitly so Unmarshal sees env-only values.
var envKeys = []string{
	"indexer.workers",
	"indexer.max_file_size",

	"thresholds.large_lines",
	"thresholds.large_symbols",
	"thresholds.super_large_lines",
	"thresholds.super_large_symbols",

	"synthesis.round_timeout",
	"synthesis.top_n",
	"synthesis.top_k",
	"synthesis.max_symbols_per_container",
	"synthesis.cache_size",

	"resolution.max_depth",

	"llm.provider",
	"llm.model",
	"llm.api_key",
	"llm.base_url",
	"llm.max_tokens",

	"output.format",
	"output.database",
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("paths.code", d.Paths.Code)
	v.SetDefault("paths.ignore", d.Paths.Ignore)

	v.SetDefault("indexer.workers", d.Indexer.Workers)
	v.SetDefault("indexer.max_file_size", d.Indexer.MaxFileSize)

	v.SetDefault("thresholds.large_lines", d.Thresholds.LargeLines)
	v.SetDefault("thresholds.large_symbols", d.Thresholds.LargeSymbols)
	v.SetDefault("thresholds.super_large_lines", d.Thresholds.SuperLargeLines)
	v.SetDefault("thresholds.super_large_symbols", d.Thresholds.SuperLargeSymbols)

	v.SetDefault("synthesis.round_timeout", d.Synthesis.RoundTimeout)
	v.SetDefault("synthesis.top_n", d.Synthesis.TopN)
	v.SetDefault("synthesis.top_k", d.Synthesis.TopK)
	v.SetDefault("synthesis.max_symbols_per_container", d.Synthesis.MaxSymbolsPerContainer)
	v.SetDefault("synthesis.cache_size", d.Synthesis.CacheSize)

	v.SetDefault("scoring.public", d.Scoring.Public)
	v.SetDefault("scoring.protected", d.Scoring.Protected)
	v.SetDefault("scoring.package_private", d.Scoring.PackagePrivate)
	v.SetDefault("scoring.private", d.Scoring.Private)
	v.SetDefault("scoring.abstract", d.Scoring.Abstract)
	v.SetDefault("scoring.framework_marker", d.Scoring.FrameworkMarker)
	v.SetDefault("scoring.entry_point", d.Scoring.EntryPoint)
	v.SetDefault("scoring.doc_comment", d.Scoring.DocComment)
	v.SetDefault("scoring.small_container", d.Scoring.SmallContainer)
	v.SetDefault("scoring.type_kind", d.Scoring.TypeKind)
	v.SetDefault("scoring.function_kind", d.Scoring.FunctionKind)
	v.SetDefault("scoring.accessor_penalty", d.Scoring.AccessorPenalty)
	v.SetDefault("scoring.trivial_penalty", d.Scoring.TrivialPenalty)
	v.SetDefault("scoring.test_path_penalty", d.Scoring.TestPathPenalty)
	v.SetDefault("scoring.framework_markers", d.Scoring.FrameworkMarkers)
	v.SetDefault("scoring.test_paths", d.Scoring.TestPaths)

	v.SetDefault("resolution.max_depth", d.Resolution.MaxDepth)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.command", d.LLM.Command)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.database", d.Output.Database)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
