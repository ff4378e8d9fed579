// Package resolver maps the raw names a file uses onto project-qualified names:
// import aliases, inheritance parents, and call targets.
package resolver

import (
	"sort"
	"strings"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// AliasEntry is one binding in an AliasMap.
type AliasEntry struct {
	Target string // fully qualified path, "." separated
	Module bool   // binds a whole module rather than a symbol
}

// AliasMap translates locally used short names to qualified names.
// It is immutable once built.
type AliasMap struct {
	entries   map[string]AliasEntry
	targets   []string // bound targets, sorted
	wildcards []string
}

// BuildAliasMap binds each import's local alias, or the last segment of its
// path when unaliased, to the qualified path. Wildcard imports add no entry and
// are only recorded. When two imports bind the same name the later one wins.
func BuildAliasMap(imports []extraction.Import) *AliasMap {
	m := &AliasMap{entries: make(map[string]AliasEntry)}

	for _, imp := range imports {
		path := QualifiedImportPath(imp)
		if imp.IsWildcard {
			if path != "" {
				m.wildcards = append(m.wildcards, path)
			}
			continue
		}

		target := path
		if imp.ImportedSymbol != nil && *imp.ImportedSymbol != "" {
			target = joinQualified(path, NormalizeName(*imp.ImportedSymbol))
		}
		if target == "" {
			continue
		}

		local := ""
		if imp.LocalAlias != nil {
			local = *imp.LocalAlias
		}
		if local == "" {
			local = LastSegment(target)
		}
		if local == "" {
			continue
		}

		m.entries[local] = AliasEntry{
			Target: target,
			Module: imp.IsModule && imp.ImportedSymbol == nil,
		}
	}

	seen := make(map[string]bool, len(m.entries))
	for _, e := range m.entries {
		if !seen[e.Target] {
			seen[e.Target] = true
			m.targets = append(m.targets, e.Target)
		}
	}
	sort.Strings(m.targets)
	sort.Strings(m.wildcards)

	return m
}

// Lookup returns the binding for a local name.
func (m *AliasMap) Lookup(local string) (AliasEntry, bool) {
	if m == nil {
		return AliasEntry{}, false
	}
	e, ok := m.entries[local]
	return e, ok
}

// Len returns the number of bindings.
func (m *AliasMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Wildcards returns the modules imported with a wildcard, sorted.
func (m *AliasMap) Wildcards() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.wildcards...)
}

// ResolveAlias substitutes the leading segment of expr when it is bound in m.
// Otherwise expr is returned unchanged.
//
// An expr that already starts with a bound target is treated as resolved and
// returned unchanged, so ResolveAlias(ResolveAlias(x, m), m) == ResolveAlias(x, m)
// for every map.
func ResolveAlias(expr string, m *AliasMap) string {
	if m == nil || expr == "" {
		return expr
	}

	head, rest := splitHead(expr)
	e, ok := m.entries[head]
	if !ok {
		return expr
	}
	if m.qualified(expr) {
		return expr
	}
	return e.Target + rest
}

// qualified reports whether expr starts, segment-wise, with a bound target.
func (m *AliasMap) qualified(expr string) bool {
	for _, t := range m.targets {
		if hasSegmentPrefix(expr, t) {
			return true
		}
	}
	return false
}

// QualifiedImportPath returns the "." separated form of an import's path.
// Adapters store an already-qualified path in QualifiedPath when the raw text
// needs context (relative imports); otherwise the raw path is normalized.
func QualifiedImportPath(imp extraction.Import) string {
	if imp.QualifiedPath != "" {
		return imp.QualifiedPath
	}
	return NormalizeName(imp.ImportedPath)
}

// NormalizeName converts namespace separators (`\`, `::`, `/`) to "." and
// trims leading separators.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, "::", ".")
	name = strings.ReplaceAll(name, `\`, ".")
	name = strings.ReplaceAll(name, "/", ".")
	return strings.Trim(name, ".")
}

// LastSegment returns the part of a qualified name after the final ".".
func LastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func splitHead(expr string) (string, string) {
	if i := strings.IndexByte(expr, '.'); i >= 0 {
		return expr[:i], expr[i:]
	}
	return expr, ""
}

func hasSegmentPrefix(s, prefix string) bool {
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	return len(s) == len(prefix) || s[len(prefix)] == '.'
}

func joinQualified(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	return b.String()
}
