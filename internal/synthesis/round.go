package synthesis

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/project-scribe/internal/llm"
)

// Round identifies one exchange with the generator.
type Round int

const (
	// RoundSingle is the only exchange of Standard and Hierarchical synthesis,
	// and of the Standard fallback.
	RoundSingle Round = iota
	RoundOverview
	RoundComponents
	RoundSynthesis
)

func (r Round) String() string {
	switch r {
	case RoundSingle:
		return "single"
	case RoundOverview:
		return "overview"
	case RoundComponents:
		return "components"
	case RoundSynthesis:
		return "synthesis"
	}
	return fmt.Sprintf("round(%d)", int(r))
}

// RoundError is a failed exchange. Err wraps llm.ErrTimeout, llm.ErrProcess
// or llm.ErrMalformedOutput.
type RoundError struct {
	Round Round
	Err   error
}

func (e *RoundError) Error() string {
	return fmt.Sprintf("round %d (%s): %v", int(e.Round), e.Round, e.Err)
}

func (e *RoundError) Unwrap() error {
	return e.Err
}

// validateRound checks the shape each round is expected to return. Blank
// replies are rejected in every round.
func validateRound(r Round, text string, groups []Group) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: %s round returned no text", llm.ErrMalformedOutput, r)
	}
	switch r {
	case RoundComponents:
		if len(groups) == 0 {
			return nil
		}
		lower := strings.ToLower(text)
		for _, g := range groups {
			name := strings.ToLower(strings.Trim(g.Name, "*"))
			if name != "" && strings.Contains(lower, name) {
				return nil
			}
		}
		return fmt.Errorf("%w: component analysis names none of the %d groups", llm.ErrMalformedOutput, len(groups))
	case RoundSynthesis:
		if !hasHeading(text) {
			return fmt.Errorf("%w: final document has no Markdown heading", llm.ErrMalformedOutput)
		}
	}
	return nil
}

func hasHeading(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			return true
		}
	}
	return false
}
