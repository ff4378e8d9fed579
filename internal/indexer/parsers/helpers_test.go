package parsers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

func extract(t *testing.T, lang extraction.Language, path, src string) *extraction.ParseUnit {
	t.Helper()
	u, err := ExtractFile(context.Background(), lang, path, []byte(src))
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func qualifiedNames(u *extraction.ParseUnit) []string {
	names := make([]string, 0, len(u.Symbols))
	for _, sym := range u.Symbols {
		names = append(names, sym.QualifiedName)
	}
	return names
}

func symbol(t *testing.T, u *extraction.ParseUnit, qn string) extraction.Symbol {
	t.Helper()
	sym, ok := u.Symbol(qn)
	require.True(t, ok, "symbol %s not found in %v", qn, qualifiedNames(u))
	return *sym
}

// site returns the only call site invoking member.
func site(t *testing.T, u *extraction.ParseUnit, member string) extraction.CallSite {
	t.Helper()
	var found []extraction.CallSite
	for _, s := range u.CallSites {
		if s.Member == member {
			found = append(found, s)
		}
	}
	require.Len(t, found, 1, "call sites for %q", member)
	return found[0]
}

func constructs(u *extraction.ParseUnit) []string {
	var out []string
	for _, c := range u.Diagnostics.Unsupported {
		out = append(out, c.Construct)
	}
	return out
}
