package cli

// Test Plan for the CLI:
// - parseLevel accepts the four level names and rejects anything else
// - collectFiles expands directories through discovery and keeps plain files
// - extract writes a JSON report and stores it when --db is set
// - graph callers/callees answer from the stored extraction
// - document writes one template document per file without a generator
// - version prints the build information

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-scribe/internal/config"
	"github.com/mvp-joe/project-scribe/internal/storage"
)

const calculatorJava = `package com.acme;

public class Calculator {
    public int add(int a, int b) {
        return this.multiply(a, 1) + b;
    }

    public int multiply(int a, int b) {
        return a * b;
    }

    public int square(int a) {
        return multiply(a, a);
    }
}
`

const ordersPy = `class Order:
    def __init__(self, total):
        self.total = total


def place(total):
    return Order(total)
`

func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/com/acme/Calculator.java": calculatorJava,
		"orders.py":                    ordersPy,
		"node_modules/x/index.js":      "module.exports = 1",
		"README.md":                    "# project",
	}
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	return root
}

// Test: log levels parse case-insensitively.
func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := parseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Test: directory arguments are discovered, file arguments pass through.
func TestCollectFiles(t *testing.T) {
	t.Parallel()

	root := newProject(t)
	files, err := collectFiles(context.Background(), root, []string{"src", "README.md", "orders.py", "src/com/acme/Calculator.java"}, config.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "README.md"),
		filepath.Join(root, "orders.py"),
		filepath.Join(root, "src", "com", "acme", "Calculator.java"),
	}, files)

	_, err = collectFiles(context.Background(), root, []string{"missing"}, config.Default())
	assert.Error(t, err)
}

// Test: extract writes a report, stores it, and graph queries read it back.
func TestExtractAndGraph(t *testing.T) {
	t.Parallel()

	root := newProject(t)
	db := filepath.Join(root, ".scribe", "scribe.db")
	var stdout, stderr bytes.Buffer

	err := runExtract(context.Background(), runOptions{rootDir: root, db: db, quiet: true}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	var report struct {
		RunID string `json:"run_id"`
		Files []struct {
			Path  string `json:"path"`
			Calls []struct {
				Caller         string  `json:"caller"`
				ResolvedCallee *string `json:"resolved_callee"`
			} `json:"calls"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	require.Len(t, report.Files, 2)
	assert.Equal(t, "orders.py", report.Files[0].Path)
	assert.Equal(t, "src/com/acme/Calculator.java", report.Files[1].Path)

	store, err := storage.Open(db)
	require.NoError(t, err)
	last, err := store.LastRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.RunID, last)
	require.NoError(t, store.Close())

	callers, err := queryGraph(context.Background(), db, "callers", "com.acme.Calculator.multiply", 1)
	require.NoError(t, err)
	ids := []string{}
	for _, r := range callers {
		ids = append(ids, r.Node.ID)
	}
	assert.Equal(t, []string{"com.acme.Calculator.add", "com.acme.Calculator.square"}, ids)

	callees, err := queryGraph(context.Background(), db, "callees", "orders.place", 1)
	require.NoError(t, err)
	require.Len(t, callees, 1)
	assert.Equal(t, "orders.Order.<init>", callees[0].Node.ID)

	_, err = queryGraph(context.Background(), db, "sideways", "orders.place", 1)
	assert.Error(t, err)
}

// Test: extract honours --format yaml and --out.
func TestExtract_YAMLToFile(t *testing.T) {
	t.Parallel()

	root := newProject(t)
	out := filepath.Join(t.TempDir(), "report.yaml")
	var stdout, stderr bytes.Buffer

	err := runExtract(context.Background(), runOptions{rootDir: root, paths: []string{"orders.py"}, out: out, format: "yaml", quiet: true}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "path: orders.py")
	assert.Contains(t, string(data), "resolved_callee: orders.Order.<init>")
}

// Test: an unknown format fails before any work is done.
func TestExtract_BadFormat(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := runExtract(context.Background(), runOptions{rootDir: newProject(t), format: "xml", quiet: true}, &stdout, &stderr)
	assert.Error(t, err)
}

// Test: without a generator every file gets a template document.
func TestDocument_Template(t *testing.T) {
	t.Parallel()

	root := newProject(t)
	db := filepath.Join(root, "docs.db")
	var stdout, stderr bytes.Buffer

	err := runDocument(context.Background(), runOptions{rootDir: root, paths: []string{"orders.py"}, db: db, quiet: true}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	var docs []struct {
		Path     string `json:"path"`
		Strategy string `json:"strategy"`
		Fallback string `json:"fallback"`
		Content  string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "orders.py", docs[0].Path)
	assert.Equal(t, "standard", docs[0].Strategy)
	assert.Equal(t, "template", docs[0].Fallback)
	assert.Contains(t, docs[0].Content, "# orders.py")

	store, err := storage.Open(db)
	require.NoError(t, err)
	defer store.Close()
	doc, err := store.Document(context.Background(), "orders.py")
	require.NoError(t, err)
	assert.Equal(t, docs[0].Content, doc.Content)
}

// Test: version prints build information.
func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	assert.Contains(t, buf.String(), "Scribe dev")
	assert.Contains(t, buf.String(), "Git commit: none")
}
