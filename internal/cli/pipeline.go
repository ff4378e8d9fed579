package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/mvp-joe/project-scribe/internal/config"
	"github.com/mvp-joe/project-scribe/internal/indexer"
	"github.com/mvp-joe/project-scribe/internal/output"
)

// runOptions are the flags shared by extract and document.
type runOptions struct {
	rootDir string
	paths   []string
	out     string
	format  string
	db      string
	quiet   bool
}

// session is the loaded state one command run works with.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	ix       *indexer.Indexer
	format   output.Format
	database string
}

func newSession(opts runOptions, stderr io.Writer) (*session, error) {
	logger, err := newLogger(stderr, logLevel)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(opts.rootDir)
	if err != nil {
		return nil, err
	}

	format := opts.format
	if format == "" {
		format = cfg.Output.Format
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	database := opts.db
	if database == "" {
		database = cfg.Output.Database
	}
	if database != "" && !filepath.IsAbs(database) {
		database = filepath.Join(opts.rootDir, database)
	}

	ix, err := indexer.New(opts.rootDir, cfg,
		indexer.WithLogger(logger),
		indexer.WithProgress(NewCLIProgressReporter(stderr, opts.quiet)))
	if err != nil {
		return nil, fmt.Errorf("failed to create indexer: %w", err)
	}

	return &session{cfg: cfg, logger: logger, ix: ix, format: f, database: database}, nil
}

// extract runs the pipeline over the whole root when no paths are given,
// otherwise over the named files and directories.
func (s *session) extract(ctx context.Context, opts runOptions) (*indexer.Result, error) {
	if len(opts.paths) == 0 {
		return s.ix.Run(ctx)
	}
	files, err := collectFiles(ctx, opts.rootDir, opts.paths, s.cfg)
	if err != nil {
		return nil, err
	}
	return s.ix.Extract(ctx, files)
}

// collectFiles expands directory arguments through discovery. Plain files
// are passed through so unsupported ones are reported as skipped.
func collectFiles(ctx context.Context, rootDir string, paths []string, cfg *config.Config) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(rootDir, p)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			add(abs)
			continue
		}

		discovery, err := indexer.NewFileDiscovery(abs, cfg.Paths.Code, cfg.Paths.Ignore)
		if err != nil {
			return nil, err
		}
		found, err := discovery.DiscoverFiles(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to discover files in %s: %w", p, err)
		}
		for _, rel := range found {
			add(filepath.Join(abs, filepath.FromSlash(rel)))
		}
	}

	sort.Strings(files)
	return files, nil
}

// writeOutput encodes v to the --out file, or to stdout when none is given.
func writeOutput(stdout io.Writer, path string, format output.Format, v any) error {
	if path == "" {
		return output.Write(stdout, format, v)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := output.Write(f, format, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func workingDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}
