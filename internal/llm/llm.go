// Package llm invokes external text-generation services for documentation synthesis.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mvp-joe/project-scribe/internal/config"
)

var (
	// ErrTimeout indicates the invocation did not finish before its deadline
	// or its context was cancelled.
	ErrTimeout = errors.New("generation timed out")

	// ErrProcess indicates the provider or external process failed.
	ErrProcess = errors.New("generation process failed")

	// ErrMalformedOutput indicates the provider answered with unusable text.
	ErrMalformedOutput = errors.New("malformed generation output")
)

// SystemPrompt frames every request sent to a hosted provider.
const SystemPrompt = "You write concise technical documentation for source files. " +
	"Answer in Markdown. Do not invent symbols that are not listed in the prompt."

// Generator produces text for a prompt. Implementations must honour ctx and
// timeout, and return errors wrapping ErrTimeout, ErrProcess or ErrMalformedOutput.
type Generator interface {
	Invoke(ctx context.Context, prompt string, timeout time.Duration) (string, error)
}

// InvocationError records which provider failed and how.
type InvocationError struct {
	Provider string
	Kind     error // one of ErrTimeout, ErrProcess, ErrMalformedOutput
	Err      error
}

func (e *InvocationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Provider, e.Kind, e.Err)
}

func (e *InvocationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New builds the generator selected by cfg.Provider. It returns a nil
// Generator for provider "none".
func New(cfg config.LLMConfig, logger *slog.Logger) (Generator, error) {
	logger = orDiscard(logger)

	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return nil, nil
	case "anthropic":
		return NewAnthropicGenerator(cfg, logger), nil
	case "openai":
		return NewOpenAIGenerator(cfg, logger), nil
	case "command":
		g, err := NewCommandGenerator(cfg.Command, logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidProvider, cfg.Provider)
	}
}

// withTimeout derives the per-invocation context. A non-positive timeout
// leaves the parent deadline in place.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// classify maps a provider error onto the sentinel kinds. Cancellation is
// treated like a timeout.
func classify(ctx context.Context, provider string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &InvocationError{Provider: provider, Kind: ErrTimeout, Err: err}
	}
	return &InvocationError{Provider: provider, Kind: ErrProcess, Err: err}
}

// checkOutput rejects blank responses.
func checkOutput(provider, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &InvocationError{Provider: provider, Kind: ErrMalformedOutput, Err: errors.New("empty response")}
	}
	return text, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}
