// Command debug-extract runs a single adapter over one file and prints what
// it extracted, before any cross-file resolution.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/mvp-joe/project-scribe/internal/indexer"
	"github.com/mvp-joe/project-scribe/internal/indexer/parsers"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: debug-extract <file>")
	}
	path := os.Args[1]

	lang, ok := indexer.DetectLanguage(path)
	if !ok {
		log.Fatalf("unsupported file type: %s", path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	u, err := parsers.ExtractFile(context.Background(), lang, path, source, parsers.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s (%s) namespace=%q lines=%d\n", u.Path, u.Language, u.Namespace, u.Lines)

	fmt.Println("\n=== SYMBOLS ===")
	fmt.Printf("Count: %d\n", len(u.Symbols))
	for _, s := range u.Symbols {
		fmt.Printf("  %-10s %-9s %s (line %d-%d) - %s\n", s.Kind, s.Visibility, s.QualifiedName, s.Span.StartLine, s.Span.EndLine, s.Signature)
	}

	fmt.Println("\n=== IMPORTS ===")
	for _, imp := range u.Imports {
		alias := ""
		if imp.LocalAlias != nil {
			alias = " as " + *imp.LocalAlias
		}
		fmt.Printf("  %s%s (line %d, module=%t, wildcard=%t)\n", imp.ImportedPath, alias, imp.Line, imp.IsModule, imp.IsWildcard)
	}

	fmt.Println("\n=== INHERITANCE ===")
	for _, e := range u.Inheritance {
		fmt.Printf("  %s %s %s\n", e.Child, e.Kind, e.Parent)
	}

	fmt.Println("\n=== CALL SITES ===")
	fmt.Printf("Count: %d\n", len(u.CallSites))
	for _, c := range u.CallSites {
		fmt.Printf("  line %d: %s in %s (receiver=%s member=%s args=%d dynamic=%t)\n",
			c.Span.StartLine, c.Expression, c.Caller, c.Receiver, c.Member, c.ArgumentCount, c.Dynamic)
	}

	if len(u.Diagnostics.Unsupported) > 0 {
		fmt.Println("\n=== UNSUPPORTED ===")
		for _, c := range u.Diagnostics.Unsupported {
			fmt.Printf("  line %d: %s\n", c.Line, c.Construct)
		}
	}
}
