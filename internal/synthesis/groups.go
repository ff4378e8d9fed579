package synthesis

import (
	"strings"
	"unicode"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
	"github.com/mvp-joe/project-scribe/internal/resolver"
)

// ModuleGroup collects module-level declarations that share no name stem.
const ModuleGroup = "module"

// Group is a set of symbols that appear to share a responsibility.
type Group struct {
	Name    string
	Symbols []extraction.Symbol
}

// GroupSymbols clusters symbols by responsibility. Members go with their
// enclosing type. Types without members are clustered by CamelCase suffix
// ("UserController", "OrderController" → "*Controller"), module-level
// functions by name prefix ("parse_header", "parse_body" → "parse*").
// Singleton stems fall back to ModuleGroup. Groups are ordered by first
// appearance and members keep declaration order.
func GroupSymbols(symbols []extraction.Symbol) []Group {
	type slot struct {
		key, name string
	}

	keys := make([]slot, len(symbols))
	sizes := make(map[string]int)
	for i, sym := range symbols {
		switch {
		case sym.Container != "":
			keys[i] = slot{"type:" + sym.Container, resolver.LastSegment(sym.Container)}
		case sym.IsType():
			keys[i] = slot{"type:" + sym.QualifiedName, sym.Name}
		default:
			p := namePrefix(sym.Name)
			keys[i] = slot{"prefix:" + p, p + "*"}
		}
		sizes[keys[i].key]++
	}

	// Re-cluster singleton groups.
	suffixSizes := make(map[string]int)
	for i, sym := range symbols {
		if sizes[keys[i].key] > 1 {
			continue
		}
		if sym.IsType() {
			s := nameSuffix(sym.Name)
			keys[i] = slot{"suffix:" + s, "*" + s}
			suffixSizes[keys[i].key]++
		} else {
			keys[i] = slot{"module", ModuleGroup}
		}
	}
	for i, sym := range symbols {
		if strings.HasPrefix(keys[i].key, "suffix:") && suffixSizes[keys[i].key] == 1 {
			keys[i] = slot{"type:" + sym.QualifiedName, sym.Name}
		}
	}

	var groups []Group
	index := make(map[string]int)
	for i, sym := range symbols {
		k := keys[i]
		gi, ok := index[k.key]
		if !ok {
			gi = len(groups)
			index[k.key] = gi
			groups = append(groups, Group{Name: k.name})
		}
		groups[gi].Symbols = append(groups[gi].Symbols, sym)
	}
	return groups
}

// namePrefix returns the lowercased first word of a snake_case or camelCase name.
func namePrefix(name string) string {
	trimmed := strings.TrimLeft(name, "_$")
	if trimmed == "" {
		return strings.ToLower(name)
	}
	if i := strings.IndexByte(trimmed, '_'); i > 0 {
		return strings.ToLower(trimmed[:i])
	}
	for i, r := range trimmed {
		if i > 0 && unicode.IsUpper(r) {
			return strings.ToLower(trimmed[:i])
		}
	}
	return strings.ToLower(trimmed)
}

// nameSuffix returns the last word of a CamelCase or snake_case name.
func nameSuffix(name string) string {
	if i := strings.LastIndexByte(name, '_'); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	runes := []rune(name)
	for i := len(runes) - 1; i > 0; i-- {
		if !unicode.IsUpper(runes[i]) {
			continue
		}
		// "HTTPServer": the S starts a word because a lowercase letter follows it.
		if !unicode.IsUpper(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1])) {
			return string(runes[i:])
		}
	}
	return name
}
