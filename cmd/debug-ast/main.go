// Command debug-ast prints the tree-sitter syntax tree of one source file.
// Pass a node kind to print only the subtrees of that kind.
//
//	debug-ast testdata/orders.py
//	debug-ast src/App.php class_declaration
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-scribe/internal/indexer"
	"github.com/mvp-joe/project-scribe/internal/indexer/parsers"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: debug-ast <file> [node-kind]")
		os.Exit(2)
	}
	path := os.Args[1]
	kind := ""
	if len(os.Args) > 2 {
		kind = os.Args[2]
	}

	lang, ok := indexer.DetectLanguage(path)
	if !ok {
		fmt.Fprintf(os.Stderr, "unsupported file type: %s\n", path)
		os.Exit(1)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	parse := parsers.Parse
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".tsx" || ext == ".jsx" {
		parse = parsers.ParseTSX
	}
	tree, err := parse(context.Background(), lang, source)
	if err != nil {
		panic(err)
	}
	defer tree.Close()

	walkTree(tree.RootNode(), source, kind, 0, kind == "")
}

func walkTree(node *sitter.Node, source []byte, kind string, depth int, printing bool) {
	if node == nil {
		return
	}
	if !printing && node.Kind() == kind {
		printing = true
		depth = 0
		fmt.Printf("\n=== %s at line %d ===\n", kind, node.StartPosition().Row+1)
	}

	if printing {
		label := node.Kind()
		if field := fieldName(node); field != "" {
			label = field + ": " + label
		}
		if node.ChildCount() == 0 {
			fmt.Printf("%s%s %q\n", strings.Repeat("  ", depth), label, node.Utf8Text(source))
		} else {
			fmt.Printf("%s%s [%d-%d]\n", strings.Repeat("  ", depth), label, node.StartPosition().Row+1, node.EndPosition().Row+1)
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		next := depth
		if printing {
			next++
		}
		walkTree(node.Child(i), source, kind, next, printing)
	}
}

// fieldName returns the grammar field under which node hangs off its parent.
func fieldName(node *sitter.Node) string {
	parent := node.Parent()
	if parent == nil {
		return ""
	}
	for i := uint(0); i < parent.ChildCount(); i++ {
		if c := parent.Child(i); c != nil && c.Id() == node.Id() {
			return parent.FieldNameForChild(uint32(i))
		}
	}
	return ""
}
