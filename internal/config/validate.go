package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mvp-joe/project-scribe/internal/pathglob"
)

var (
	// ErrInvalidThresholds indicates a non-positive or inverted threshold pair
	ErrInvalidThresholds = errors.New("invalid thresholds")

	// ErrInvalidTimeout indicates a non-positive round timeout
	ErrInvalidTimeout = errors.New("invalid round timeout")

	// ErrInvalidSynthesis indicates invalid synthesis limits
	ErrInvalidSynthesis = errors.New("invalid synthesis settings")

	// ErrInvalidWeights indicates a negative scoring weight
	ErrInvalidWeights = errors.New("invalid scoring weights")

	// ErrInvalidDepth indicates a non-positive resolution depth bound
	ErrInvalidDepth = errors.New("invalid resolution depth")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrInvalidProvider indicates an unsupported text-generation provider
	ErrInvalidProvider = errors.New("invalid llm provider")

	// ErrEmptyCommand indicates the command provider has no argv
	ErrEmptyCommand = errors.New("empty llm command")

	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")
)

// Providers lists the accepted llm.provider values.
var Providers = []string{"none", "anthropic", "openai", "command"}

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	for _, validate := range []func(*Config) error{
		validatePaths,
		validateIndexer,
		validateThresholds,
		validateSynthesis,
		validateScoring,
		validateResolution,
		validateLLM,
		validateOutput,
	} {
		if err := validate(cfg); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *Config) error {
	var errs []error
	for _, list := range [][]string{cfg.Paths.Code, cfg.Paths.Ignore, cfg.Scoring.TestPaths} {
		for _, p := range list {
			if _, err := pathglob.Compile([]string{p}); err != nil {
				errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err))
			}
		}
	}
	return joinErrors(errs)
}

func validateIndexer(cfg *Config) error {
	var errs []error
	if cfg.Indexer.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidWorkers, cfg.Indexer.Workers))
	}
	if cfg.Indexer.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_size cannot be negative, got %d", ErrInvalidWorkers, cfg.Indexer.MaxFileSize))
	}
	return joinErrors(errs)
}

func validateThresholds(cfg *Config) error {
	var errs []error
	t := cfg.Thresholds

	if t.LargeLines <= 0 || t.LargeSymbols <= 0 || t.SuperLargeLines <= 0 || t.SuperLargeSymbols <= 0 {
		errs = append(errs, fmt.Errorf("%w: all thresholds must be positive", ErrInvalidThresholds))
	}
	if t.SuperLargeLines < t.LargeLines {
		errs = append(errs, fmt.Errorf("%w: super_large_lines (%d) must be >= large_lines (%d)", ErrInvalidThresholds, t.SuperLargeLines, t.LargeLines))
	}
	if t.SuperLargeSymbols < t.LargeSymbols {
		errs = append(errs, fmt.Errorf("%w: super_large_symbols (%d) must be >= large_symbols (%d)", ErrInvalidThresholds, t.SuperLargeSymbols, t.LargeSymbols))
	}

	return joinErrors(errs)
}

func validateSynthesis(cfg *Config) error {
	var errs []error
	s := cfg.Synthesis

	if s.RoundTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %s", ErrInvalidTimeout, s.RoundTimeout))
	}
	if s.TopN <= 0 || s.TopK <= 0 || s.MaxSymbolsPerContainer <= 0 {
		errs = append(errs, fmt.Errorf("%w: top_n, top_k and max_symbols_per_container must be positive", ErrInvalidSynthesis))
	}
	if s.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidSynthesis, s.CacheSize))
	}

	return joinErrors(errs)
}

func validateScoring(cfg *Config) error {
	s := cfg.Scoring
	weights := map[string]int{
		"public":            s.Public,
		"protected":         s.Protected,
		"package_private":   s.PackagePrivate,
		"private":           s.Private,
		"abstract":          s.Abstract,
		"framework_marker":  s.FrameworkMarker,
		"entry_point":       s.EntryPoint,
		"doc_comment":       s.DocComment,
		"small_container":   s.SmallContainer,
		"type_kind":         s.TypeKind,
		"function_kind":     s.FunctionKind,
		"accessor_penalty":  s.AccessorPenalty,
		"trivial_penalty":   s.TrivialPenalty,
		"test_path_penalty": s.TestPathPenalty,
	}

	var bad []string
	for name, w := range weights {
		if w < 0 || w > 100 {
			bad = append(bad, fmt.Sprintf("%s=%d", name, w))
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("%w: weights must be within [0,100]: %s", ErrInvalidWeights, strings.Join(bad, ", "))
	}
	return nil
}

func validateResolution(cfg *Config) error {
	if cfg.Resolution.MaxDepth <= 0 {
		return fmt.Errorf("%w: max_depth must be positive, got %d", ErrInvalidDepth, cfg.Resolution.MaxDepth)
	}
	return nil
}

func validateLLM(cfg *Config) error {
	var errs []error
	provider := strings.ToLower(cfg.LLM.Provider)

	valid := false
	for _, p := range Providers {
		if provider == p {
			valid = true
			break
		}
	}
	if !valid {
		errs = append(errs, fmt.Errorf("%w: must be one of %s, got '%s'", ErrInvalidProvider, strings.Join(Providers, ", "), cfg.LLM.Provider))
	}

	if provider == "command" && len(cfg.LLM.Command) == 0 {
		errs = append(errs, fmt.Errorf("%w: llm.command is required for the command provider", ErrEmptyCommand))
	}
	if cfg.LLM.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("%w: max_tokens cannot be negative, got %d", ErrInvalidProvider, cfg.LLM.MaxTokens))
	}

	return joinErrors(errs)
}

func validateOutput(cfg *Config) error {
	switch strings.ToLower(cfg.Output.Format) {
	case "json", "yaml":
		return nil
	}
	return fmt.Errorf("%w: must be 'json' or 'yaml', got '%s'", ErrInvalidFormat, cfg.Output.Format)
}

// joinErrors combines multiple errors into a single error with clear formatting.
// Every sentinel stays reachable through errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return &multiError{errs: errs}
}

type multiError struct {
	errs []error
}

func (m *multiError) Error() string {
	msgs := make([]string, 0, len(m.errs))
	for _, err := range m.errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (m *multiError) Unwrap() []error {
	return m.errs
}
