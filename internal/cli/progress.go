package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/project-scribe/internal/indexer"
)

// CLIProgressReporter implements indexer.ProgressReporter with progress bars.
type CLIProgressReporter struct {
	out     io.Writer
	quiet   bool
	fileBar *progressbar.ProgressBar
	docBar  *progressbar.ProgressBar
	started time.Time
}

// NewCLIProgressReporter creates a reporter writing to out, usually stderr.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{out: out, quiet: quiet, started: time.Now()}
}

func (c *CLIProgressReporter) newBar(total int, description, its string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString(its),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	fmt.Fprintln(c.out, "Discovering files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "Found %d source files\n", files)
}

func (c *CLIProgressReporter) OnExtractionStart(totalFiles int) {
	if c.quiet || totalFiles == 0 {
		return
	}
	c.fileBar = c.newBar(totalFiles, "Extracting", "files/s")
}

func (c *CLIProgressReporter) OnFileExtracted(path string) {
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnResolutionStart(totalFiles int) {
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "Resolving calls across %d files...\n", totalFiles)
}

func (c *CLIProgressReporter) OnSynthesisStart(totalFiles int) {
	if c.quiet || totalFiles == 0 {
		return
	}
	c.docBar = c.newBar(totalFiles, "Documenting", "files/s")
}

func (c *CLIProgressReporter) OnFileDocumented(path string) {
	if c.docBar != nil {
		c.docBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(stats *indexer.Stats) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "✓ Extraction complete: %d files in %.1fs\n", stats.Files, stats.Duration.Seconds())
	fmt.Fprintf(c.out, "  Symbols:    %d\n", stats.Symbols)
	fmt.Fprintf(c.out, "  Calls:      %d (%d unresolved, %d low confidence)\n", stats.Calls, stats.Unresolved, stats.LowConfidence)
	if stats.Skipped > 0 {
		fmt.Fprintf(c.out, "  Skipped:    %d\n", stats.Skipped)
	}
	if stats.Unsupported > 0 {
		fmt.Fprintf(c.out, "  Unsupported constructs: %d\n", stats.Unsupported)
	}
}
