// Package output renders extraction and synthesis results as JSON or YAML.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/project-scribe/internal/indexer"
	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
	"github.com/mvp-joe/project-scribe/internal/synthesis"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for a format other than json or yaml.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat maps a flag or config value to a Format. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Report is the document written by the extract command.
type Report struct {
	RunID   string                  `json:"run_id" yaml:"run_id"`
	Files   []*extraction.ParseUnit `json:"files" yaml:"files"`
	Skipped []indexer.SkippedFile   `json:"skipped" yaml:"skipped"`
	Stats   indexer.Stats           `json:"stats" yaml:"stats"`
}

// NewReport builds a Report from an extraction result.
func NewReport(res *indexer.Result) *Report {
	r := &Report{
		RunID:   res.RunID,
		Files:   res.Units,
		Skipped: res.Skipped,
		Stats:   res.Stats,
	}
	if r.Files == nil {
		r.Files = []*extraction.ParseUnit{}
	}
	if r.Skipped == nil {
		r.Skipped = []indexer.SkippedFile{}
	}
	return r
}

// Document is one synthesized file document with its diagnostics.
type Document struct {
	Path        string                 `json:"path" yaml:"path"`
	Strategy    synthesis.Strategy     `json:"strategy" yaml:"strategy"`
	Fallback    synthesis.Fallback     `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	Cached      bool                   `json:"cached,omitempty" yaml:"cached,omitempty"`
	Content     string                 `json:"content" yaml:"content"`
	Diagnostics extraction.Diagnostics `json:"diagnostics" yaml:"diagnostics"`
}

// NewDocument converts a synthesis result.
func NewDocument(res *synthesis.Result) Document {
	return Document{
		Path:        res.Unit.Path,
		Strategy:    res.Strategy,
		Fallback:    res.Fallback,
		Cached:      res.Cached,
		Content:     res.Document,
		Diagnostics: res.Unit.Diagnostics,
	}
}

// Write encodes v to w in the given format.
func Write(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
