package synthesis

import (
	"fmt"
	"path"
	"strings"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
	"github.com/mvp-joe/project-scribe/internal/scoring"
)

// templateKeySymbols is how many symbols the generated summary names.
const templateKeySymbols = 5

// Template renders a document without calling a generator. overview and
// components are earlier round outputs and may be empty. The result is never empty.
func Template(u *extraction.ParseUnit, overview, components string) string {
	var b strings.Builder

	title := path.Base(strings.ReplaceAll(u.Path, `\`, "/"))
	if title == "" || title == "." || title == "/" {
		title = "Source file"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "%s source, %d lines, %d symbols.\n", languageLabel(u.Language), u.Lines, len(u.Symbols))

	b.WriteString("\n## Overview\n\n")
	if s := strings.TrimSpace(overview); s != "" {
		b.WriteString(s)
		b.WriteString("\n")
	} else {
		b.WriteString(summary(u))
	}

	b.WriteString("\n## Components\n\n")
	if s := strings.TrimSpace(components); s != "" {
		b.WriteString(s)
		b.WriteString("\n")
	} else {
		writeGroups(&b, GroupSymbols(u.Symbols))
	}

	if len(u.Imports) > 0 {
		b.WriteString("\n## Dependencies\n\n")
		for _, imp := range u.Imports {
			fmt.Fprintf(&b, "- `%s`\n", imp.ImportedPath)
		}
	}

	if len(u.Symbols) > 0 {
		b.WriteString("\n## Symbols\n\n")
		for _, sym := range scoring.Rank(u.Symbols) {
			fmt.Fprintf(&b, "- `%s` (%s, %s, lines %d-%d)", sym.QualifiedName, sym.Kind, sym.Visibility, sym.Span.StartLine, sym.Span.EndLine)
			if sym.DocComment != nil {
				if first := firstLine(*sym.DocComment); first != "" {
					fmt.Fprintf(&b, ": %s", first)
				}
			}
			b.WriteByte('\n')
		}
	}

	return b.String()
}

func summary(u *extraction.ParseUnit) string {
	if len(u.Symbols) == 0 {
		return "This file declares no symbols.\n"
	}
	top := scoring.Top(u.Symbols, templateKeySymbols)
	names := make([]string, 0, len(top))
	for _, s := range top {
		names = append(names, "`"+s.QualifiedName+"`")
	}
	return fmt.Sprintf("This file declares %s. Key symbols: %s.\n", kindCounts(u.Symbols), strings.Join(names, ", "))
}

func writeGroups(b *strings.Builder, groups []Group) {
	if len(groups) == 0 {
		b.WriteString("No components.\n")
		return
	}
	for _, g := range groups {
		fmt.Fprintf(b, "### %s\n\n", g.Name)
		for _, s := range g.Symbols {
			fmt.Fprintf(b, "- `%s` (%s)\n", s.Name, s.Kind)
		}
		b.WriteByte('\n')
	}
}

func languageLabel(l extraction.Language) string {
	switch l {
	case extraction.LanguagePHP:
		return "PHP"
	case extraction.LanguageTypeScript:
		return "TypeScript"
	case extraction.LanguageJavaScript:
		return "JavaScript"
	case "":
		return "Unknown"
	}
	s := string(l)
	return strings.ToUpper(s[:1]) + s[1:]
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
