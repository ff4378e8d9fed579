package extraction

import "slices"

// Language identifies the grammar a ParseUnit was produced from.
type Language string

const (
	LanguageJava       Language = "java"
	LanguagePython     Language = "python"
	LanguagePHP        Language = "php"
	LanguageTypeScript Language = "typescript"
	LanguageJavaScript Language = "javascript"
	LanguageRuby       Language = "ruby"
)

// ModuleScope is the caller name used for calls made outside any declaration.
const ModuleScope = "<module>"

// ConstructorMarker is appended to a type's qualified name to name its constructor.
// Every language uses the same marker so consumers only need one convention.
const ConstructorMarker = "<init>"

// Span is a 1-indexed, inclusive line range within a file.
type Span struct {
	File      string `json:"file" yaml:"file"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
}

// Valid reports whether the span is non-empty and ordered.
func (s Span) Valid() bool {
	return s.StartLine >= 1 && s.StartLine <= s.EndLine
}

// Symbol is a named declaration.
type Symbol struct {
	Name          string     `json:"name" yaml:"name"`
	QualifiedName string     `json:"qualified_name" yaml:"qualified_name"`
	Kind          SymbolKind `json:"kind" yaml:"kind"`
	Visibility    Visibility `json:"visibility" yaml:"visibility"`
	Signature     string     `json:"signature" yaml:"signature"`
	DocComment    *string    `json:"doc_comment" yaml:"doc_comment"`
	Span          Span       `json:"span" yaml:"span"`
	Annotations   []string   `json:"annotations" yaml:"annotations"`
	Modifiers     []string   `json:"modifiers" yaml:"modifiers"`
	Container     string     `json:"container,omitempty" yaml:"container,omitempty"` // qualified name of the enclosing type
	Score         int        `json:"score" yaml:"score"`
}

// HasModifier reports whether the symbol carries the given modifier keyword.
func (s *Symbol) HasModifier(m string) bool {
	for _, mod := range s.Modifiers {
		if mod == m {
			return true
		}
	}
	return false
}

// IsType reports whether the symbol declares a type (class, interface or enum).
func (s *Symbol) IsType() bool {
	return s.Kind == KindClass || s.Kind == KindInterface || s.Kind == KindEnum
}

// Import is a name binding from an external or sibling module.
type Import struct {
	ImportedPath   string  `json:"imported_path" yaml:"imported_path"`
	LocalAlias     *string `json:"local_alias" yaml:"local_alias"`
	IsRelative     bool    `json:"is_relative" yaml:"is_relative"`
	ImportedSymbol *string `json:"imported_symbol,omitempty" yaml:"imported_symbol,omitempty"`
	IsWildcard     bool    `json:"is_wildcard,omitempty" yaml:"is_wildcard,omitempty"`
	IsModule       bool    `json:"-" yaml:"-"` // whole-module import (python `import x`, ts `* as x`)
	QualifiedPath  string  `json:"-" yaml:"-"` // "." separated path with relative segments resolved
	Line           int     `json:"-" yaml:"-"`
}

// InheritanceEdge is a directed child → parent relation.
type InheritanceEdge struct {
	Child  string          `json:"child" yaml:"child"`
	Parent string          `json:"parent" yaml:"parent"`
	Kind   InheritanceKind `json:"kind" yaml:"kind"`
}

// Call is one resolved call expression.
type Call struct {
	Caller           string     `json:"caller" yaml:"caller"`
	CalleeExpression string     `json:"callee_expression" yaml:"callee_expression"`
	ResolvedCallee   *string    `json:"resolved_callee" yaml:"resolved_callee"`
	CallType         CallType   `json:"call_type" yaml:"call_type"`
	ArgumentCount    int        `json:"argument_count" yaml:"argument_count"`
	Span             Span       `json:"span" yaml:"span"`
	Confidence       Confidence `json:"confidence" yaml:"confidence"`
}

// Resolved returns the resolved callee or "" when unresolved.
func (c Call) Resolved() string {
	if c.ResolvedCallee == nil {
		return ""
	}
	return *c.ResolvedCallee
}

// ParseUnit is the per-file aggregate produced by an adapter and completed by
// the resolution pass. It is not mutated once handed to the orchestrator.
type ParseUnit struct {
	Path        string            `json:"path" yaml:"path"`
	Language    Language          `json:"language" yaml:"language"`
	Namespace   string            `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Lines       int               `json:"lines" yaml:"lines"`
	Symbols     []Symbol          `json:"symbols" yaml:"symbols"`
	Imports     []Import          `json:"imports" yaml:"imports"`
	Inheritance []InheritanceEdge `json:"inheritance" yaml:"inheritance"`
	CallSites   []CallSite        `json:"-" yaml:"-"`
	Calls       []Call            `json:"calls" yaml:"calls"`
	Diagnostics Diagnostics       `json:"diagnostics" yaml:"diagnostics"`
}

// Symbol looks up a symbol by qualified name.
func (u *ParseUnit) Symbol(qualifiedName string) (*Symbol, bool) {
	for i := range u.Symbols {
		if u.Symbols[i].QualifiedName == qualifiedName {
			return &u.Symbols[i], true
		}
	}
	return nil, false
}

// Clone returns a copy whose slices can be modified without touching u.
func (u *ParseUnit) Clone() *ParseUnit {
	c := *u
	c.Symbols = slices.Clone(u.Symbols)
	c.Imports = slices.Clone(u.Imports)
	c.Inheritance = slices.Clone(u.Inheritance)
	c.CallSites = slices.Clone(u.CallSites)
	c.Calls = slices.Clone(u.Calls)
	c.Diagnostics = u.Diagnostics.clone()
	return &c
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
