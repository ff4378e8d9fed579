package config

import (
	"time"
)

// Config represents the complete scribe configuration.
// It can be loaded from .scribe/config.yml with environment variable overrides.
type Config struct {
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Indexer    IndexerConfig    `yaml:"indexer" mapstructure:"indexer"`
	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
	Synthesis  SynthesisConfig  `yaml:"synthesis" mapstructure:"synthesis"`
	Scoring    ScoringConfig    `yaml:"scoring" mapstructure:"scoring"`
	Resolution ResolutionConfig `yaml:"resolution" mapstructure:"resolution"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
}

// PathsConfig defines which files to extract and which to ignore.
type PathsConfig struct {
	Code   []string `yaml:"code" mapstructure:"code"`     // glob patterns for source files
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns to ignore
}

// IndexerConfig controls the extraction pipeline.
type IndexerConfig struct {
	Workers     int   `yaml:"workers" mapstructure:"workers"`             // 0 means runtime.NumCPU(), capped at 32
	MaxFileSize int64 `yaml:"max_file_size" mapstructure:"max_file_size"` // bytes; larger files are skipped
}

// ThresholdsConfig holds the two size threshold pairs used to pick a synthesis strategy.
// A file is "large" when it has more lines OR more symbols than the large pair,
// and "super-large" likewise for the super-large pair. Comparisons are strict.
type ThresholdsConfig struct {
	LargeLines        int `yaml:"large_lines" mapstructure:"large_lines"`
	LargeSymbols      int `yaml:"large_symbols" mapstructure:"large_symbols"`
	SuperLargeLines   int `yaml:"super_large_lines" mapstructure:"super_large_lines"`
	SuperLargeSymbols int `yaml:"super_large_symbols" mapstructure:"super_large_symbols"`
}

// SynthesisConfig configures documentation synthesis.
type SynthesisConfig struct {
	RoundTimeout           time.Duration `yaml:"round_timeout" mapstructure:"round_timeout"`                         // per round, not per file
	TopN                   int           `yaml:"top_n" mapstructure:"top_n"`                                         // symbols in the round 1 overview
	TopK                   int           `yaml:"top_k" mapstructure:"top_k"`                                         // symbols per group in round 2
	MaxSymbolsPerContainer int           `yaml:"max_symbols_per_container" mapstructure:"max_symbols_per_container"` // hierarchical truncation
	CacheSize              int           `yaml:"cache_size" mapstructure:"cache_size"`                               // memoized documents; 0 disables
}

// ScoringConfig is the symbol importance weight table.
type ScoringConfig struct {
	Public           int      `yaml:"public" mapstructure:"public"`
	Protected        int      `yaml:"protected" mapstructure:"protected"`
	PackagePrivate   int      `yaml:"package_private" mapstructure:"package_private"`
	Private          int      `yaml:"private" mapstructure:"private"`
	Abstract         int      `yaml:"abstract" mapstructure:"abstract"`                 // interfaces and abstract declarations
	FrameworkMarker  int      `yaml:"framework_marker" mapstructure:"framework_marker"` // annotation in FrameworkMarkers
	EntryPoint       int      `yaml:"entry_point" mapstructure:"entry_point"`
	DocComment       int      `yaml:"doc_comment" mapstructure:"doc_comment"`
	SmallContainer   int      `yaml:"small_container" mapstructure:"small_container"`
	TypeKind         int      `yaml:"type_kind" mapstructure:"type_kind"`
	FunctionKind     int      `yaml:"function_kind" mapstructure:"function_kind"`
	AccessorPenalty  int      `yaml:"accessor_penalty" mapstructure:"accessor_penalty"`
	TrivialPenalty   int      `yaml:"trivial_penalty" mapstructure:"trivial_penalty"`
	TestPathPenalty  int      `yaml:"test_path_penalty" mapstructure:"test_path_penalty"`
	FrameworkMarkers []string `yaml:"framework_markers" mapstructure:"framework_markers"`
	TestPaths        []string `yaml:"test_paths" mapstructure:"test_paths"` // glob patterns
}

// ResolutionConfig bounds call resolution.
type ResolutionConfig struct {
	MaxDepth int `yaml:"max_depth" mapstructure:"max_depth"` // ancestor walk bound
}

// LLMConfig selects the text-generation backend.
type LLMConfig struct {
	Provider  string   `yaml:"provider" mapstructure:"provider"` // "none", "anthropic", "openai" or "command"
	Model     string   `yaml:"model" mapstructure:"model"`
	APIKey    string   `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string   `yaml:"base_url" mapstructure:"base_url"`
	Command   []string `yaml:"command" mapstructure:"command"` // argv for the "command" provider; prompt on stdin
	MaxTokens int      `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OutputConfig controls how results are written.
type OutputConfig struct {
	Format   string `yaml:"format" mapstructure:"format"`     // "json" or "yaml"
	Database string `yaml:"database" mapstructure:"database"` // SQLite path; empty disables persistence
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Code: []string{
				"**/*.java",
				"**/*.py",
				"**/*.php",
				"**/*.ts",
				"**/*.tsx",
				"**/*.js",
				"**/*.jsx",
				"**/*.rb",
			},
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
				".venv/**",
				"*.min.js",
			},
		},
		Indexer: IndexerConfig{
			Workers:     0,
			MaxFileSize: 2 << 20,
		},
		Thresholds: ThresholdsConfig{
			LargeLines:        1000,
			LargeSymbols:      50,
			SuperLargeLines:   3000,
			SuperLargeSymbols: 150,
		},
		Synthesis: SynthesisConfig{
			RoundTimeout:           60 * time.Second,
			TopN:                   20,
			TopK:                   5,
			MaxSymbolsPerContainer: 15,
			CacheSize:              1024,
		},
		Scoring: DefaultScoring(),
		Resolution: ResolutionConfig{
			MaxDepth: 32,
		},
		LLM: LLMConfig{
			Provider:  "none",
			MaxTokens: 4096,
		},
		Output: OutputConfig{
			Format: "json",
		},
	}
}

// DefaultScoring returns the default weight table.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Public:          30,
		Protected:       20,
		PackagePrivate:  15,
		Private:         5,
		Abstract:        15,
		FrameworkMarker: 20,
		EntryPoint:      25,
		DocComment:      5,
		SmallContainer:  5,
		TypeKind:        10,
		FunctionKind:    5,
		AccessorPenalty: 15,
		TrivialPenalty:  20,
		TestPathPenalty: 10,
		FrameworkMarkers: []string{
			"Controller",
			"RestController",
			"Service",
			"Component",
			"Repository",
			"Entity",
			"Configuration",
			"Bean",
			"RequestMapping",
			"GetMapping",
			"PostMapping",
			"Route",
			"Injectable",
			"app.route",
			"router.get",
			"router.post",
			"pytest.fixture",
		},
		TestPaths: []string{
			"**/test/**",
			"**/tests/**",
			"**/__tests__/**",
			"**/*_test.*",
			"**/*Test.java",
			"**/test_*.py",
			"**/*.spec.*",
			"**/*.test.*",
			"**/spec/**",
		},
	}
}
