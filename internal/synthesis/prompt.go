package synthesis

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
	"github.com/mvp-joe/project-scribe/internal/scoring"
)

var kindOrder = []extraction.SymbolKind{
	extraction.KindClass,
	extraction.KindInterface,
	extraction.KindEnum,
	extraction.KindFunction,
	extraction.KindMethod,
	extraction.KindField,
	extraction.KindConstant,
}

func writeHeader(b *strings.Builder, u *extraction.ParseUnit) {
	fmt.Fprintf(b, "File: %s\n", u.Path)
	fmt.Fprintf(b, "Language: %s\n", u.Language)
	if u.Namespace != "" {
		fmt.Fprintf(b, "Namespace: %s\n", u.Namespace)
	}
	fmt.Fprintf(b, "Lines: %d\n", u.Lines)
	fmt.Fprintf(b, "Symbols: %d (%s)\n", len(u.Symbols), kindCounts(u.Symbols))
	fmt.Fprintf(b, "Imports: %d\n", len(u.Imports))
	if len(u.Inheritance) > 0 {
		parts := make([]string, 0, len(u.Inheritance))
		for _, e := range u.Inheritance {
			parts = append(parts, fmt.Sprintf("%s %s %s", e.Child, e.Kind, e.Parent))
		}
		fmt.Fprintf(b, "Inheritance: %s\n", strings.Join(parts, "; "))
	}
}

// kindCounts renders "2 class, 14 method" in a fixed kind order.
func kindCounts(symbols []extraction.Symbol) string {
	counts := make(map[extraction.SymbolKind]int)
	for _, s := range symbols {
		counts[s.Kind]++
	}
	var parts []string
	for _, k := range kindOrder {
		if n := counts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func writeSymbol(b *strings.Builder, sym extraction.Symbol) {
	fmt.Fprintf(b, "- %s %s %s [score %d]", sym.Visibility, sym.Kind, sym.QualifiedName, sym.Score)
	if sym.Signature != "" {
		fmt.Fprintf(b, ": %s", sym.Signature)
	}
	b.WriteByte('\n')
}

func writeSymbols(b *strings.Builder, symbols []extraction.Symbol) {
	if len(symbols) == 0 {
		b.WriteString("(none)\n")
		return
	}
	for _, sym := range symbols {
		writeSymbol(b, sym)
	}
}

// standardPrompt lists every symbol. supplementary carries an earlier
// overview when Standard runs as a fallback.
func standardPrompt(u *extraction.ParseUnit, supplementary string) string {
	var b strings.Builder
	b.WriteString("Document the following source file.\n\n")
	writeHeader(&b, u)
	if supplementary != "" {
		b.WriteString("\nAn earlier overview of this file:\n")
		b.WriteString(supplementary)
		b.WriteString("\n")
	}
	b.WriteString("\nSymbols by importance:\n")
	writeSymbols(&b, scoring.Rank(u.Symbols))
	b.WriteString("\nWrite a Markdown document that starts with a '# ' heading, summarizes the file's purpose and describes its most important symbols.\n")
	return b.String()
}

// hierarchicalPrompt lists at most perContainer symbols for each container
// and reports whether any symbol was left out.
func hierarchicalPrompt(u *extraction.ParseUnit, perContainer int) (string, bool) {
	type bucket struct {
		name    string
		symbols []extraction.Symbol
	}

	var buckets []*bucket
	index := make(map[string]*bucket)
	for _, sym := range u.Symbols {
		name := sym.Container
		if name == "" {
			name = extraction.ModuleScope
		}
		bk, ok := index[name]
		if !ok {
			bk = &bucket{name: name}
			index[name] = bk
			buckets = append(buckets, bk)
		}
		bk.symbols = append(bk.symbols, sym)
	}

	var b strings.Builder
	b.WriteString("Document the following source file. Symbols are grouped by their enclosing declaration and only the most important ones are listed.\n\n")
	writeHeader(&b, u)

	truncated := false
	for _, bk := range buckets {
		fmt.Fprintf(&b, "\n## %s\n", bk.name)
		top := scoring.Top(bk.symbols, perContainer)
		writeSymbols(&b, top)
		if omitted := len(bk.symbols) - len(top); omitted > 0 {
			truncated = true
			fmt.Fprintf(&b, "(%d less important symbols omitted)\n", omitted)
		}
	}

	b.WriteString("\nWrite a Markdown document that starts with a '# ' heading and has one section per group above.\n")
	return b.String(), truncated
}

func overviewPrompt(u *extraction.ParseUnit, topN int) string {
	var b strings.Builder
	b.WriteString("This is round 1 of 3 in documenting a large source file.\n\n")
	writeHeader(&b, u)
	fmt.Fprintf(&b, "\nTop %d symbols by importance:\n", topN)
	writeSymbols(&b, scoring.Top(u.Symbols, topN))
	b.WriteString("\nWrite a short architecture summary of this file in one or two paragraphs.\n")
	return b.String()
}

func componentsPrompt(u *extraction.ParseUnit, overview string, groups []Group, topK int) string {
	var b strings.Builder
	b.WriteString("This is round 2 of 3 in documenting a large source file.\n\n")
	writeHeader(&b, u)
	b.WriteString("\nOverview from round 1:\n")
	b.WriteString(overview)
	b.WriteString("\n\nSymbols grouped by responsibility:\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "\n## %s (%d symbols)\n", g.Name, len(g.Symbols))
		writeSymbols(&b, scoring.Top(g.Symbols, topK))
	}
	b.WriteString("\nFor each group, write a section headed by the group name that describes its responsibility and how it relates to the other groups.\n")
	return b.String()
}

func synthesisPrompt(u *extraction.ParseUnit, overview, components string) string {
	var b strings.Builder
	b.WriteString("This is round 3 of 3 in documenting a large source file.\n\n")
	writeHeader(&b, u)
	b.WriteString("\nOverview from round 1:\n")
	b.WriteString(overview)
	b.WriteString("\n\nComponent analysis from round 2:\n")
	b.WriteString(components)
	b.WriteString("\n\nAll symbols by importance:\n")
	writeSymbols(&b, scoring.Rank(u.Symbols))
	b.WriteString("\nWrite the final Markdown document. Start with a '# ' heading, then an overview, then one section per component.\n")
	return b.String()
}
