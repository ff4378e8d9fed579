package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-scribe/internal/config"
	"github.com/mvp-joe/project-scribe/internal/graph"
	"github.com/mvp-joe/project-scribe/internal/output"
	"github.com/mvp-joe/project-scribe/internal/storage"
)

// DefaultDatabase is the store used by graph queries when neither --db nor
// output.database is set.
const DefaultDatabase = "scribe.db"

var (
	graphDB     string
	graphDepth  int
	graphFormat string
)

// graphCmd groups call-graph queries over a stored extraction.
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Query the call graph of a stored extraction",
	Long: `Graph answers caller and callee questions from the SQLite store written by
"scribe extract --db". Only resolved calls are edges; depth bounds the
transitive walk.

Examples:
  scribe graph callers com.acme.Calculator.multiply
  scribe graph callees App.Admin.Admin.getPermissions --depth 2
`,
}

var graphCallersCmd = &cobra.Command{
	Use:   "callers <qualified-name>",
	Short: "List symbols that call the target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGraphCommand(cmd, "callers", args[0])
	},
}

var graphCalleesCmd = &cobra.Command{
	Use:   "callees <qualified-name>",
	Short: "List symbols the target calls",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGraphCommand(cmd, "callees", args[0])
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.AddCommand(graphCallersCmd, graphCalleesCmd)
	graphCmd.PersistentFlags().StringVar(&graphDB, "db", "", "SQLite database written by extract (default .scribe/scribe.db)")
	graphCmd.PersistentFlags().IntVarP(&graphDepth, "depth", "d", graph.DefaultDepth, "maximum traversal depth")
	graphCmd.PersistentFlags().StringVarP(&graphFormat, "format", "f", "", "output format: json or yaml (default from config)")
}

func runGraphCommand(cmd *cobra.Command, direction, target string) error {
	root, err := workingDir()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	database := graphDB
	if database == "" {
		database = cfg.Output.Database
	}
	if database == "" {
		database = filepath.Join(config.DirName, DefaultDatabase)
	}
	if !filepath.IsAbs(database) {
		database = filepath.Join(root, database)
	}

	format := graphFormat
	if format == "" {
		format = cfg.Output.Format
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}

	results, err := queryGraph(cmd.Context(), database, direction, target, graphDepth)
	if err != nil {
		return err
	}
	return output.Write(cmd.OutOrStdout(), f, results)
}

// queryGraph loads every resolved call from the store and walks it from target.
func queryGraph(ctx context.Context, database, direction, target string, depth int) ([]graph.Result, error) {
	store, err := storage.Open(database)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	calls, err := store.AllCalls(ctx)
	if err != nil {
		return nil, err
	}
	edges := make([]graph.Edge, 0, len(calls))
	for _, c := range calls {
		if c.ResolvedCallee == nil {
			continue
		}
		edges = append(edges, graph.Edge{From: c.Caller, To: *c.ResolvedCallee})
	}
	cg := graph.NewCallGraphFromEdges(edges)

	var results []graph.Result
	switch direction {
	case "callers":
		results = cg.Callers(target, depth)
	case "callees":
		results = cg.Callees(target, depth)
	default:
		return nil, fmt.Errorf("unknown direction %q", direction)
	}
	if results == nil {
		results = []graph.Result{}
	}
	return results, nil
}
