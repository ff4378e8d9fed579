package parsers

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// Test Plan for adapter lookup and parsing:
// - every supported language has an adapter tagged with its language
// - unknown languages fail with ErrUnsupportedLanguage
// - a cancelled context stops parsing before the grammar runs
// - syntax errors become diagnostics and are logged through WithLogger
// - symbol spans are 1-indexed with start <= end

// Test: ForLanguage covers every supported language
func TestForLanguage(t *testing.T) {
	t.Parallel()

	langs := []extraction.Language{
		extraction.LanguageJava,
		extraction.LanguagePython,
		extraction.LanguagePHP,
		extraction.LanguageTypeScript,
		extraction.LanguageJavaScript,
		extraction.LanguageRuby,
	}
	for _, lang := range langs {
		t.Run(string(lang), func(t *testing.T) {
			t.Parallel()
			a, err := ForLanguage(lang)
			require.NoError(t, err)
			assert.Equal(t, lang, a.Language())
		})
	}

	_, err := ForLanguage(extraction.Language("cobol"))
	assert.True(t, errors.Is(err, ErrUnsupportedLanguage))

	_, err = ExtractFile(context.Background(), extraction.Language("cobol"), "x.cbl", nil)
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

// Test: Parsing honours a cancelled context
func TestParse_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(ctx, extraction.LanguageJava, []byte("class A {}"))
	assert.ErrorIs(t, err, context.Canceled)
}

// Test: Syntax errors are recorded and logged, extraction continues
func TestExtractFile_SyntaxError(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	u, err := ExtractFile(context.Background(), extraction.LanguagePython, "broken.py", []byte(`def ok():
    pass

def broken(:
    pass
`), WithLogger(logger))
	require.NoError(t, err)

	assert.NotEmpty(t, u.Diagnostics.Unsupported)
	assert.Contains(t, qualifiedNames(u), "broken.ok")
	assert.Contains(t, logs.String(), "skipping construct")
	assert.Contains(t, logs.String(), "broken.py")
}

// Test: Spans are 1-indexed and ordered
func TestExtractFile_Spans(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguageJava, "A.java", `class A {
    void run() {
        go();
    }
}
`)

	assert.Equal(t, 5, u.Lines)
	run := symbol(t, u, "A.run")
	assert.Equal(t, extraction.Span{File: "A.java", StartLine: 2, EndLine: 4}, run.Span)
	for _, sym := range u.Symbols {
		assert.True(t, sym.Span.Valid(), sym.QualifiedName)
	}

	call := site(t, u, "go")
	assert.Equal(t, 3, call.Span.StartLine)
	assert.Equal(t, "A.run", call.Caller)
}
