package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
	"github.com/mvp-joe/project-scribe/internal/llm"
	"github.com/mvp-joe/project-scribe/internal/output"
	"github.com/mvp-joe/project-scribe/internal/storage"
	"github.com/mvp-joe/project-scribe/internal/synthesis"
)

var documentOpts runOptions

// documentCmd represents the document command
var documentCmd = &cobra.Command{
	Use:   "document [paths...]",
	Short: "Synthesize a document for each source file",
	Long: `Document extracts the given files and produces one document per file.

The synthesis strategy is chosen from the file's size: small files are
documented in one pass, large files from a per-container symbol summary, and
very large files in three sequential rounds. Any failed round falls back to a
simpler path; with llm.provider set to "none" a template document is written.

Examples:
  # Document one file with the configured generator
  scribe document src/billing/invoice.rb

  # Store documents next to the extraction results
  scribe document src --db .scribe/scribe.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := workingDir()
		if err != nil {
			return err
		}
		opts := documentOpts
		opts.rootDir = root
		opts.paths = args

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		return runDocument(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(documentCmd)
	documentCmd.Flags().StringVarP(&documentOpts.out, "out", "o", "", "write output to a file instead of stdout")
	documentCmd.Flags().StringVarP(&documentOpts.format, "format", "f", "", "output format: json or yaml (default from config)")
	documentCmd.Flags().StringVar(&documentOpts.db, "db", "", "SQLite database to store documents in (default from config)")
	documentCmd.Flags().BoolVarP(&documentOpts.quiet, "quiet", "q", false, "disable progress output")
}

func runDocument(ctx context.Context, opts runOptions, stdout, stderr io.Writer) error {
	s, err := newSession(opts, stderr)
	if err != nil {
		return err
	}

	gen, err := llm.New(s.cfg.LLM, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}
	synth, err := synthesis.New(gen, s.cfg.Thresholds, s.cfg.Synthesis, synthesis.WithLogger(s.logger))
	if err != nil {
		return err
	}
	defer synth.Close()

	res, err := s.extract(ctx, opts)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("extraction cancelled")
		}
		return fmt.Errorf("extraction failed: %w", err)
	}

	results, err := s.ix.Document(ctx, res.Units, synth)
	if err != nil {
		return fmt.Errorf("synthesis cancelled: %w", err)
	}

	docs := make([]output.Document, 0, len(results))
	for _, r := range results {
		docs = append(docs, output.NewDocument(r))
	}

	if s.database != "" {
		if err := storeDocuments(ctx, s.database, res.RunID, results); err != nil {
			return err
		}
	}

	return writeOutput(stdout, opts.out, s.format, docs)
}

func storeDocuments(ctx context.Context, database, runID string, results []*synthesis.Result) error {
	store, err := storage.Open(database)
	if err != nil {
		return err
	}
	defer store.Close()

	units := make([]*extraction.ParseUnit, 0, len(results))
	for _, r := range results {
		units = append(units, r.Unit)
	}
	if err := store.Save(ctx, runID, units); err != nil {
		return fmt.Errorf("failed to store results: %w", err)
	}
	for _, r := range results {
		if err := store.SaveDocument(ctx, storage.DocumentRecord{
			FilePath: r.Unit.Path,
			Strategy: string(r.Strategy),
			Fallback: string(r.Fallback),
			Content:  r.Document,
		}); err != nil {
			return err
		}
	}
	return nil
}
