// Package parsers maps tree-sitter syntax trees onto the language-neutral
// extraction model: symbols, imports, inheritance edges and raw call sites.
package parsers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// ErrUnsupportedLanguage indicates no adapter exists for a language tag.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Adapter turns one parsed file into a ParseUnit with unresolved call sites.
// Implementations hold no mutable state and are safe for concurrent use.
type Adapter interface {
	Language() extraction.Language
	Extract(tree *sitter.Tree, source []byte, path string) *extraction.ParseUnit
}

// UnsupportedConstructError describes syntax an adapter could not map. It is
// logged and recorded in the unit's diagnostics; extraction continues.
type UnsupportedConstructError struct {
	Language  extraction.Language
	Path      string
	Construct string
	Line      int
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("%s:%d: unsupported %s construct: %s", e.Path, e.Line, e.Language, e.Construct)
}

// Option configures an adapter.
type Option func(*treeSitterParser)

// WithLogger sets the logger unsupported constructs are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(p *treeSitterParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// ForLanguage returns the adapter for lang.
func ForLanguage(lang extraction.Language, opts ...Option) (Adapter, error) {
	switch lang {
	case extraction.LanguageJava:
		return NewJavaParser(opts...), nil
	case extraction.LanguagePython:
		return NewPythonParser(opts...), nil
	case extraction.LanguagePHP:
		return NewPHPParser(opts...), nil
	case extraction.LanguageTypeScript, extraction.LanguageJavaScript:
		return NewTypeScriptParser(lang, opts...), nil
	case extraction.LanguageRuby:
		return NewRubyParser(opts...), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
}

// Grammar returns the tree-sitter grammar used for lang. JavaScript is parsed
// with the TypeScript grammar; tsx selects the TSX variant for JSX sources.
func Grammar(lang extraction.Language, tsx bool) (*sitter.Language, error) {
	switch lang {
	case extraction.LanguageJava:
		return sitter.NewLanguage(java.Language()), nil
	case extraction.LanguagePython:
		return sitter.NewLanguage(python.Language()), nil
	case extraction.LanguagePHP:
		return sitter.NewLanguage(php.LanguagePHP()), nil
	case extraction.LanguageTypeScript, extraction.LanguageJavaScript:
		if tsx {
			return sitter.NewLanguage(typescript.LanguageTSX()), nil
		}
		return sitter.NewLanguage(typescript.LanguageTypescript()), nil
	case extraction.LanguageRuby:
		return sitter.NewLanguage(ruby.Language()), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
}

// Parse runs the grammar for lang over source. The caller owns the returned
// tree and must Close it.
func Parse(ctx context.Context, lang extraction.Language, source []byte) (*sitter.Tree, error) {
	return parse(ctx, lang, false, source)
}

// ParseTSX is Parse with the TSX grammar.
func ParseTSX(ctx context.Context, lang extraction.Language, source []byte) (*sitter.Tree, error) {
	return parse(ctx, lang, true, source)
}

func parse(ctx context.Context, lang extraction.Language, tsx bool, source []byte) (*sitter.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grammar, err := Grammar(lang, tsx)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(grammar); err != nil {
		return nil, fmt.Errorf("failed to load %s grammar: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source", lang)
	}
	return tree, nil
}

// ExtractFile parses source and runs the adapter for lang over it.
func ExtractFile(ctx context.Context, lang extraction.Language, path string, source []byte, opts ...Option) (*extraction.ParseUnit, error) {
	adapter, err := ForLanguage(lang, opts...)
	if err != nil {
		return nil, err
	}

	tree, err := parse(ctx, lang, isJSXPath(path), source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	return adapter.Extract(tree, source, path), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
