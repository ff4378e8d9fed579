package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-scribe/internal/output"
	"github.com/mvp-joe/project-scribe/internal/storage"
)

var extractOpts runOptions

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [paths...]",
	Short: "Extract symbols, imports, inheritance and resolved calls",
	Long: `Extract parses source files and writes one structural record per file:
symbols, imports, inheritance edges and every call classified and resolved
to a qualified target where possible.

Without arguments the whole working directory is scanned using the code and
ignore patterns from the configuration.

Examples:
  # Extract the current project as JSON on stdout
  scribe extract

  # Extract one directory as YAML into a file
  scribe extract src/billing --format yaml --out billing.yaml

  # Persist results for graph queries
  scribe extract --db .scribe/scribe.db --quiet
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := workingDir()
		if err != nil {
			return err
		}
		opts := extractOpts
		opts.rootDir = root
		opts.paths = args

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		return runExtract(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractOpts.out, "out", "o", "", "write output to a file instead of stdout")
	extractCmd.Flags().StringVarP(&extractOpts.format, "format", "f", "", "output format: json or yaml (default from config)")
	extractCmd.Flags().StringVar(&extractOpts.db, "db", "", "SQLite database to store results in (default from config)")
	extractCmd.Flags().BoolVarP(&extractOpts.quiet, "quiet", "q", false, "disable progress output")
}

func runExtract(ctx context.Context, opts runOptions, stdout, stderr io.Writer) error {
	s, err := newSession(opts, stderr)
	if err != nil {
		return err
	}

	res, err := s.extract(ctx, opts)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("extraction cancelled")
		}
		return fmt.Errorf("extraction failed: %w", err)
	}

	if s.database != "" {
		store, err := storage.Open(s.database)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Save(ctx, res.RunID, res.Units); err != nil {
			return fmt.Errorf("failed to store results: %w", err)
		}
		s.logger.Info("results stored", "database", s.database, "files", len(res.Units))
	}

	return writeOutput(stdout, opts.out, s.format, output.NewReport(res))
}
