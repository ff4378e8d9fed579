// Package scoring ranks symbols by how much they matter to a reader of the file.
package scoring

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mvp-joe/project-scribe/internal/config"
	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
	"github.com/mvp-joe/project-scribe/internal/pathglob"
)

// MaxScore is the upper bound of every score.
const MaxScore = 100

// smallContainerSiblings is the sibling count at or below which a container counts as small.
const smallContainerSiblings = 3

// Context is the per-symbol information that is not on the Symbol itself.
type Context struct {
	Path         string
	SiblingCount int // symbols sharing the same container
}

// Scorer computes deterministic importance scores in [0, MaxScore].
// It is immutable and safe for concurrent use.
type Scorer struct {
	weights   config.ScoringConfig
	markers   map[string]bool
	testPaths *pathglob.Set
}

// New creates a Scorer from a weight table.
func New(weights config.ScoringConfig) (*Scorer, error) {
	testPaths, err := pathglob.Compile(weights.TestPaths)
	if err != nil {
		return nil, fmt.Errorf("failed to compile test path patterns: %w", err)
	}

	markers := make(map[string]bool, len(weights.FrameworkMarkers))
	for _, m := range weights.FrameworkMarkers {
		markers[normalizeAnnotation(m)] = true
	}

	return &Scorer{
		weights:   weights,
		markers:   markers,
		testPaths: testPaths,
	}, nil
}

// Score returns the weighted importance of sym.
func (s *Scorer) Score(sym extraction.Symbol, ctx Context) int {
	w := s.weights
	score := 0

	switch sym.Visibility {
	case extraction.VisibilityPublic:
		score += w.Public
	case extraction.VisibilityProtected:
		score += w.Protected
	case extraction.VisibilityPackagePrivate:
		score += w.PackagePrivate
	case extraction.VisibilityPrivate:
		score += w.Private
	}

	switch sym.Kind {
	case extraction.KindClass, extraction.KindInterface, extraction.KindEnum:
		score += w.TypeKind
	case extraction.KindFunction:
		score += w.FunctionKind
	}

	if sym.Kind == extraction.KindInterface || sym.HasModifier("abstract") {
		score += w.Abstract
	}

	if s.hasFrameworkMarker(sym.Annotations) {
		score += w.FrameworkMarker
	}

	if sym.Kind == extraction.KindMethod || sym.Kind == extraction.KindFunction {
		if isAccessor(sym.Name) {
			score -= w.AccessorPenalty
		}
		if trivialOverrides[sym.Name] {
			score -= w.TrivialPenalty
		}
		if entryPoints[strings.ToLower(sym.Name)] {
			score += w.EntryPoint
		}
	}

	if sym.DocComment != nil && strings.TrimSpace(*sym.DocComment) != "" {
		score += w.DocComment
	}

	if ctx.SiblingCount > 0 && ctx.SiblingCount <= smallContainerSiblings {
		score += w.SmallContainer
	}

	if ctx.Path != "" && s.testPaths.Match(ctx.Path) {
		score -= w.TestPathPenalty
	}

	return clamp(score)
}

// ScoreUnit returns a copy of u whose symbols carry their scores. Siblings are
// symbols sharing a container; module-level symbols are siblings of each other.
func (s *Scorer) ScoreUnit(u *extraction.ParseUnit) *extraction.ParseUnit {
	out := u.Clone()

	siblings := make(map[string]int)
	for _, sym := range u.Symbols {
		siblings[sym.Container]++
	}

	for i := range out.Symbols {
		sym := &out.Symbols[i]
		sym.Score = s.Score(*sym, Context{
			Path:         u.Path,
			SiblingCount: siblings[sym.Container] - 1,
		})
	}
	return out
}

// Rank returns symbols sorted by descending score. Ties keep declaration order.
func Rank(symbols []extraction.Symbol) []extraction.Symbol {
	out := append([]extraction.Symbol(nil), symbols...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Top returns the n highest-ranked symbols.
func Top(symbols []extraction.Symbol, n int) []extraction.Symbol {
	ranked := Rank(symbols)
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func (s *Scorer) hasFrameworkMarker(annotations []string) bool {
	for _, a := range annotations {
		name := normalizeAnnotation(a)
		if s.markers[name] {
			return true
		}
		if i := strings.LastIndexByte(name, '.'); i >= 0 && s.markers[name[i+1:]] {
			return true
		}
	}
	return false
}

// normalizeAnnotation reduces "@app.route('/x')" or "#[Route('/x')]" to "app.route" / "Route".
func normalizeAnnotation(a string) string {
	a = strings.TrimSpace(a)
	a = strings.TrimPrefix(a, "#[")
	a = strings.TrimPrefix(a, "@")
	if i := strings.IndexAny(a, "(]"); i >= 0 {
		a = a[:i]
	}
	a = strings.ReplaceAll(a, `\`, ".")
	return strings.Trim(a, ". ")
}

var trivialOverrides = map[string]bool{
	"toString":   true,
	"equals":     true,
	"hashCode":   true,
	"__str__":    true,
	"__repr__":   true,
	"__eq__":     true,
	"__hash__":   true,
	"__toString": true,
	"to_s":       true,
	"inspect":    true,
	"==":         true,
	"hash":       true,
}

var entryPoints = map[string]bool{
	"main":     true,
	"__main__": true,
	"handle":   true,
	"run":      true,
}

// isAccessor matches getName, setName, isValid, get_name, set_name, is_valid.
func isAccessor(name string) bool {
	for _, prefix := range []string{"get", "set", "is"} {
		if !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
			continue
		}
		r, _ := utf8.DecodeRuneInString(name[len(prefix):])
		if r == '_' || unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
