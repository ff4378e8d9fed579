package synthesis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/maypok86/otter"

	"github.com/mvp-joe/project-scribe/internal/config"
	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
	"github.com/mvp-joe/project-scribe/internal/llm"
)

// Fallback names the path that produced a document when the selected
// strategy did not complete.
type Fallback string

const (
	FallbackNone     Fallback = ""
	FallbackStandard Fallback = "standard"
	FallbackTemplate Fallback = "template"
)

// Result is the outcome of synthesizing one file.
type Result struct {
	// Unit is a copy of the input with synthesis diagnostics filled in.
	Unit     *extraction.ParseUnit
	Document string
	Strategy Strategy
	Fallback Fallback
	Cached   bool
}

// Synthesizer drives the synthesis state machine for one file at a time.
// It is safe for concurrent use across files.
type Synthesizer struct {
	gen        llm.Generator
	thresholds config.ThresholdsConfig
	cfg        config.SynthesisConfig
	logger     *slog.Logger

	cache    otter.Cache[uint64, string]
	useCache bool
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithLogger sets the logger used for round failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Synthesizer. A nil generator produces template documents only.
func New(gen llm.Generator, thresholds config.ThresholdsConfig, cfg config.SynthesisConfig, opts ...Option) (*Synthesizer, error) {
	s := &Synthesizer{
		gen:        gen,
		thresholds: thresholds,
		cfg:        cfg,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.CacheSize > 0 {
		cache, err := otter.MustBuilder[uint64, string](cfg.CacheSize).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build synthesis cache: %w", err)
		}
		s.cache = cache
		s.useCache = true
	}

	return s, nil
}

// Close releases the result cache.
func (s *Synthesizer) Close() {
	if s.useCache {
		s.cache.Close()
	}
}

// Synthesize documents u. It never fails: every failure is recorded in the
// returned unit's diagnostics and recovered by a lower-fidelity path.
func (s *Synthesizer) Synthesize(ctx context.Context, u *extraction.ParseUnit) *Result {
	out := u.Clone()
	sel := SelectStrategy(u.Lines, len(u.Symbols), s.thresholds)

	out.Diagnostics.Strategy = string(sel.Strategy)
	out.Diagnostics.Triggers = sel.Triggers
	out.Diagnostics.Oversized = sel.Strategy != StrategyStandard
	out.Diagnostics.RoundFailures = nil

	res := &Result{Unit: out, Strategy: sel.Strategy}

	var prompt string
	switch sel.Strategy {
	case StrategyStandard:
		prompt = standardPrompt(out, "")
	case StrategyHierarchical:
		prompt, out.Diagnostics.Truncated = hierarchicalPrompt(out, s.cfg.MaxSymbolsPerContainer)
	case StrategyMultiRound:
		prompt = overviewPrompt(out, s.cfg.TopN)
	}

	if s.gen == nil {
		res.Document = Template(out, "", "")
		res.Fallback = FallbackTemplate
		return res
	}

	key := cacheKey(out, sel.Strategy)
	if s.useCache {
		if doc, ok := s.cache.Get(key); ok {
			res.Document = doc
			res.Cached = true
			return res
		}
	}

	if sel.Strategy == StrategyMultiRound {
		res.Document, res.Fallback = s.multiRound(ctx, out, prompt)
	} else {
		doc, err := s.invoke(ctx, RoundSingle, prompt, nil)
		if err != nil {
			s.recordFailure(out, err)
			doc = Template(out, "", "")
			res.Fallback = FallbackTemplate
		}
		res.Document = doc
	}

	if s.useCache && len(out.Diagnostics.RoundFailures) == 0 {
		s.cache.Set(key, res.Document)
	}
	return res
}

// roundState is the multi-round state machine position.
type roundState int

const (
	stateOverview roundState = iota
	stateComponents
	stateSynthesis
	stateStandard
	stateTemplate
	stateDone
)

// roundOutputs holds the text each completed round produced.
type roundOutputs struct {
	overview   *string
	components *string
}

func (o roundOutputs) text() (overview, components string) {
	if o.overview != nil {
		overview = *o.overview
	}
	if o.components != nil {
		components = *o.components
	}
	return overview, components
}

// multiRound runs overview → components → synthesis. Round 1 or 2 failing
// falls back to one Standard prompt (with the overview as context when there
// is one); round 3 or that Standard prompt failing falls back to the template.
func (s *Synthesizer) multiRound(ctx context.Context, u *extraction.ParseUnit, overviewPrompt string) (string, Fallback) {
	groups := GroupSymbols(u.Symbols)

	var (
		outputs  roundOutputs
		doc      string
		fallback Fallback
	)

	for state := stateOverview; state != stateDone; {
		switch state {
		case stateOverview:
			text, err := s.invoke(ctx, RoundOverview, overviewPrompt, groups)
			if err != nil {
				s.recordFailure(u, err)
				state = stateStandard
				continue
			}
			outputs.overview = &text
			state = stateComponents

		case stateComponents:
			text, err := s.invoke(ctx, RoundComponents, componentsPrompt(u, *outputs.overview, groups, s.cfg.TopK), groups)
			if err != nil {
				s.recordFailure(u, err)
				state = stateStandard
				continue
			}
			outputs.components = &text
			state = stateSynthesis

		case stateSynthesis:
			overview, components := outputs.text()
			text, err := s.invoke(ctx, RoundSynthesis, synthesisPrompt(u, overview, components), groups)
			if err != nil {
				s.recordFailure(u, err)
				state = stateTemplate
				continue
			}
			doc = text
			state = stateDone

		case stateStandard:
			fallback = FallbackStandard
			overview, _ := outputs.text()
			text, err := s.invoke(ctx, RoundSingle, standardPrompt(u, overview), groups)
			if err != nil {
				s.recordFailure(u, err)
				state = stateTemplate
				continue
			}
			doc = text
			state = stateDone

		case stateTemplate:
			fallback = FallbackTemplate
			overview, components := outputs.text()
			doc = Template(u, overview, components)
			state = stateDone
		}
	}

	return doc, fallback
}

// invoke runs one round with its own timeout and validates the reply. Failed
// rounds are not retried.
func (s *Synthesizer) invoke(ctx context.Context, r Round, prompt string, groups []Group) (string, error) {
	text, err := s.gen.Invoke(ctx, prompt, s.cfg.RoundTimeout)
	if err == nil {
		err = validateRound(r, text, groups)
	}
	if err != nil {
		return "", &RoundError{Round: r, Err: err}
	}
	return text, nil
}

func (s *Synthesizer) recordFailure(u *extraction.ParseUnit, err error) {
	var re *RoundError
	if !errors.As(err, &re) {
		re = &RoundError{Round: RoundSingle, Err: err}
	}

	reason := "process"
	switch {
	case errors.Is(err, llm.ErrTimeout):
		reason = "timeout"
	case errors.Is(err, llm.ErrMalformedOutput):
		reason = "malformed_output"
	}

	u.Diagnostics.RoundFailures = append(u.Diagnostics.RoundFailures, extraction.RoundFailure{
		Round:  int(re.Round),
		Reason: reason,
	})
	s.logger.Warn("synthesis round failed",
		"path", u.Path,
		"round", re.Round.String(),
		"reason", reason,
		"error", re.Err)
}

// cacheKey hashes everything a prompt is built from.
func cacheKey(u *extraction.ParseUnit, strategy Strategy) uint64 {
	d := xxhash.New()
	write := func(s string) {
		_, _ = d.WriteString(s)
		_, _ = d.WriteString("\x00")
	}

	write(u.Path)
	write(string(strategy))
	write(string(u.Language))
	write(u.Namespace)
	write(strconv.Itoa(u.Lines))
	for _, imp := range u.Imports {
		write(imp.ImportedPath)
	}
	for _, e := range u.Inheritance {
		write(e.Child + " " + string(e.Kind) + " " + e.Parent)
	}
	for _, sym := range u.Symbols {
		write(sym.QualifiedName)
		write(string(sym.Kind))
		write(string(sym.Visibility))
		write(sym.Signature)
		write(sym.Container)
		write(strconv.Itoa(sym.Score))
		if sym.DocComment != nil {
			write(*sym.DocComment)
		}
	}
	return d.Sum64()
}
