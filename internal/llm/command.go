package llm

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/mvp-joe/project-scribe/internal/config"
)

// commandWaitDelay bounds how long a killed process may hold its pipes open.
const commandWaitDelay = 2 * time.Second

// CommandGenerator runs an external process, writes the prompt to its stdin
// and reads the document from its stdout.
type CommandGenerator struct {
	argv   []string
	logger *slog.Logger
}

// NewCommandGenerator creates a generator for argv.
func NewCommandGenerator(argv []string, logger *slog.Logger) (*CommandGenerator, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, config.ErrEmptyCommand
	}
	return &CommandGenerator{
		argv:   append([]string(nil), argv...),
		logger: orDiscard(logger),
	}, nil
}

// Invoke runs the command once. A non-zero exit is ErrProcess, a killed
// process after the deadline is ErrTimeout, and blank stdout is ErrMalformedOutput.
func (g *CommandGenerator) Invoke(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.argv[0], g.argv[1:]...)
	cmd.Stdin = strings.NewReader(prompt)
	cmd.WaitDelay = commandWaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w (%s)", err, msg)
		}
		return "", classify(ctx, "command", err)
	}

	g.logger.Debug("command generation complete",
		"command", g.argv[0],
		"bytes", stdout.Len(),
		"elapsed", time.Since(start))

	return checkOutput("command", stdout.String())
}
