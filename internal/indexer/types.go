package indexer

import (
	"time"

	"github.com/mvp-joe/project-scribe/internal/graph"
	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// Result is the outcome of one extraction run.
type Result struct {
	// RunID identifies the run in logs and in the storage layer.
	RunID string

	// Units holds one resolved, scored unit per extracted file, in input order.
	Units []*extraction.ParseUnit

	// Skipped lists files that could not be extracted. A skipped file never
	// fails the run.
	Skipped []SkippedFile

	// Parents is the project-wide inheritance table built for resolution.
	Parents *graph.ParentMap

	Stats Stats
}

// SkippedFile is a file left out of a run and the reason why.
type SkippedFile struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Stats summarizes a run.
type Stats struct {
	Files         int           `json:"files" yaml:"files"`
	Skipped       int           `json:"skipped" yaml:"skipped"`
	Symbols       int           `json:"symbols" yaml:"symbols"`
	Calls         int           `json:"calls" yaml:"calls"`
	Unresolved    int           `json:"unresolved" yaml:"unresolved"`
	LowConfidence int           `json:"low_confidence" yaml:"low_confidence"`
	Unsupported   int           `json:"unsupported" yaml:"unsupported"`
	Duration      time.Duration `json:"duration" yaml:"duration"`
}

func (s *Stats) add(u *extraction.ParseUnit) {
	s.Files++
	s.Symbols += len(u.Symbols)
	s.Calls += len(u.Calls)
	s.Unresolved += u.Diagnostics.Unresolved
	s.LowConfidence += u.Diagnostics.LowConfidence
	s.Unsupported += len(u.Diagnostics.Unsupported)
}
