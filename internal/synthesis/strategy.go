// Package synthesis turns a resolved ParseUnit into a Markdown document by
// prompting a text generator, choosing how many passes to make from the size
// of the file.
package synthesis

import (
	"github.com/mvp-joe/project-scribe/internal/config"
	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// Strategy is the synthesis state chosen for a file.
type Strategy string

const (
	// StrategyStandard sends every symbol in one prompt.
	StrategyStandard Strategy = "standard"
	// StrategyHierarchical sends one prompt with the top symbols of each container.
	StrategyHierarchical Strategy = "hierarchical"
	// StrategyMultiRound runs the overview, component and synthesis rounds.
	StrategyMultiRound Strategy = "multi_round"
)

// Selection is the outcome of SelectStrategy.
type Selection struct {
	Strategy Strategy
	Triggers []extraction.Trigger
}

// SelectStrategy picks a strategy from the line and symbol counts. Both
// comparisons are strict: a file exactly at a threshold stays below it. The
// super-large pair is checked first; Triggers lists the counts that fired for
// the selected tier.
func SelectStrategy(lines, symbols int, t config.ThresholdsConfig) Selection {
	if triggers := exceeded(lines, symbols, t.SuperLargeLines, t.SuperLargeSymbols); len(triggers) > 0 {
		return Selection{Strategy: StrategyMultiRound, Triggers: triggers}
	}
	if triggers := exceeded(lines, symbols, t.LargeLines, t.LargeSymbols); len(triggers) > 0 {
		return Selection{Strategy: StrategyHierarchical, Triggers: triggers}
	}
	return Selection{Strategy: StrategyStandard}
}

func exceeded(lines, symbols, maxLines, maxSymbols int) []extraction.Trigger {
	var triggers []extraction.Trigger
	if lines > maxLines {
		triggers = append(triggers, extraction.TriggerExcessiveLines)
	}
	if symbols > maxSymbols {
		triggers = append(triggers, extraction.TriggerExcessiveSymbols)
	}
	return triggers
}
