// Package indexer runs the project pipeline: discover source files, extract
// each one concurrently, build the project-wide inheritance and member
// tables, then resolve and score every unit against them.
package indexer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/project-scribe/internal/config"
	"github.com/mvp-joe/project-scribe/internal/graph"
	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
	"github.com/mvp-joe/project-scribe/internal/indexer/parsers"
	"github.com/mvp-joe/project-scribe/internal/resolver"
	"github.com/mvp-joe/project-scribe/internal/scoring"
	"github.com/mvp-joe/project-scribe/internal/synthesis"
)

// MaxWorkers caps the worker pool regardless of configuration.
const MaxWorkers = 32

// Indexer extracts and resolves the source files of one project root.
// It holds no per-run state and may be reused.
type Indexer struct {
	rootDir  string
	cfg      *config.Config
	scorer   *scoring.Scorer
	workers  int
	logger   *slog.Logger
	progress ProgressReporter
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// WithProgress sets the progress reporter.
func WithProgress(p ProgressReporter) Option {
	return func(ix *Indexer) {
		if p != nil {
			ix.progress = p
		}
	}
}

// New creates an Indexer for rootDir. A nil cfg uses config.Default().
func New(rootDir string, cfg *config.Config, opts ...Option) (*Indexer, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	scorer, err := scoring.New(cfg.Scoring)
	if err != nil {
		return nil, fmt.Errorf("failed to create scorer: %w", err)
	}

	ix := &Indexer{
		rootDir:  rootDir,
		cfg:      cfg,
		scorer:   scorer,
		workers:  Workers(cfg.Indexer.Workers),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		progress: &NoOpProgressReporter{},
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix, nil
}

// Workers returns the pool size for a configured worker count: NumCPU when
// n is not positive, never more than MaxWorkers.
func Workers(n int) int {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return min(max(n, 1), MaxWorkers)
}

// Run discovers every matching file under the root and extracts it.
func (ix *Indexer) Run(ctx context.Context) (*Result, error) {
	ix.progress.OnDiscoveryStart()

	discovery, err := NewFileDiscovery(ix.rootDir, ix.cfg.Paths.Code, ix.cfg.Paths.Ignore)
	if err != nil {
		return nil, err
	}
	files, err := discovery.DiscoverFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	ix.progress.OnDiscoveryComplete(len(files))
	return ix.Extract(ctx, files)
}

// Extract processes the given files. Paths may be absolute or relative to
// the root; units carry the root-relative, slash-separated form. The error is
// non-nil only when ctx ends the run.
func (ix *Indexer) Extract(ctx context.Context, files []string) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString(), Skipped: []SkippedFile{}}
	logger := ix.logger.With("run", res.RunID)

	type slot struct {
		unit *extraction.ParseUnit
		skip *SkippedFile
	}
	slots := make([]slot, len(files))

	ix.progress.OnExtractionStart(len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)
	for i, file := range files {
		g.Go(func() error {
			rel := ix.relative(file)
			u, reason, err := ix.extractFile(gctx, rel, logger)
			if err != nil {
				return err
			}
			if u == nil {
				logger.Warn("skipping file", "path", rel, "reason", reason)
				slots[i].skip = &SkippedFile{Path: rel, Reason: reason}
			} else {
				slots[i].unit = u
			}
			ix.progress.OnFileExtracted(rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	units := make([]*extraction.ParseUnit, 0, len(files))
	for _, s := range slots {
		if s.skip != nil {
			res.Skipped = append(res.Skipped, *s.skip)
			continue
		}
		units = append(units, s.unit)
	}

	members := resolver.BuildMemberIndex(units)
	res.Parents = linkInheritance(units, members)
	r := resolver.New(res.Parents, members,
		resolver.WithMaxDepth(ix.cfg.Resolution.MaxDepth),
		resolver.WithLogger(logger))

	ix.progress.OnResolutionStart(len(units))
	res.Units = make([]*extraction.ParseUnit, len(units))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res.Units[i] = ix.scorer.ScoreUnit(r.ResolveUnit(u))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, u := range res.Units {
		res.Stats.add(u)
	}
	res.Stats.Skipped = len(res.Skipped)
	res.Stats.Duration = time.Since(start)

	logger.Info("extraction complete",
		"files", res.Stats.Files,
		"skipped", res.Stats.Skipped,
		"symbols", res.Stats.Symbols,
		"calls", res.Stats.Calls,
		"unresolved", res.Stats.Unresolved,
		"duration", res.Stats.Duration)
	ix.progress.OnComplete(&res.Stats)
	return res, nil
}

// extractFile reads and parses one file. A nil unit with a reason means the
// file was skipped; an error is returned only for cancellation.
func (ix *Indexer) extractFile(ctx context.Context, rel string, logger *slog.Logger) (*extraction.ParseUnit, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	lang, ok := DetectLanguage(rel)
	if !ok {
		return nil, "unsupported language", nil
	}

	abs := filepath.Join(ix.rootDir, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err.Error(), nil
	}
	if limit := ix.cfg.Indexer.MaxFileSize; limit > 0 && info.Size() > limit {
		return nil, fmt.Sprintf("file too large (%d bytes)", info.Size()), nil
	}

	source, err := os.ReadFile(abs)
	if err != nil {
		return nil, err.Error(), nil
	}

	u, err := parsers.ExtractFile(ctx, lang, rel, source, parsers.WithLogger(logger))
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, err.Error(), nil
	}
	return u, "", nil
}

// relative converts a path to the root-relative, slash-separated form used
// as the unit path.
func (ix *Indexer) relative(file string) string {
	if filepath.IsAbs(file) {
		if rel, err := filepath.Rel(ix.rootDir, file); err == nil && !strings.HasPrefix(rel, "..") {
			file = rel
		}
	}
	return filepath.ToSlash(filepath.Clean(file))
}

// linkInheritance qualifies each unit's raw parent names and builds the
// ParentMap from the result. Units are still private to the run here, so
// their edges are replaced in place.
func linkInheritance(units []*extraction.ParseUnit, members resolver.MemberIndex) *graph.ParentMap {
	var edges []extraction.InheritanceEdge
	for _, u := range units {
		aliases := resolver.BuildAliasMap(u.Imports)
		u.Inheritance = resolver.QualifyInheritance(u, aliases, members)
		edges = append(edges, u.Inheritance...)
	}
	return graph.BuildParentMap(edges)
}

// Document synthesizes a document for every unit. Synthesis never fails per
// file; the error is non-nil only when ctx ends the run.
func (ix *Indexer) Document(ctx context.Context, units []*extraction.ParseUnit, synth *synthesis.Synthesizer) ([]*synthesis.Result, error) {
	results := make([]*synthesis.Result, len(units))

	ix.progress.OnSynthesisStart(len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = synth.Synthesize(gctx, u)
			ix.progress.OnFileDocumented(u.Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
