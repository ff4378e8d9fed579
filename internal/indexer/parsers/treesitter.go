package parsers

import (
	"log/slog"
	"path"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// treeSitterParser carries what every language adapter shares.
type treeSitterParser struct {
	lang   extraction.Language
	logger *slog.Logger
}

func newTreeSitterParser(lang extraction.Language, opts []Option) *treeSitterParser {
	p := &treeSitterParser{
		lang:   lang,
		logger: discardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Language returns the language tag written to every unit.
func (p *treeSitterParser) Language() extraction.Language {
	return p.lang
}

// newUnit starts a builder for one file and records syntax errors up front.
func (p *treeSitterParser) newUnit(tree *sitter.Tree, source []byte, filePath string) (*unitBuilder, *sitter.Node) {
	root := tree.RootNode()
	b := newUnitBuilder(p, source, filePath, countLines(source))
	b.reportSyntaxErrors(root)
	return b, root
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for each node.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		walkTree(child, visitor)
	}
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// findChildrenByType finds all child nodes with the given type.
func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			results = append(results, child)
		}
	}
	return results
}

// namedChildren returns the named children of node in source order.
func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		out = append(out, node.NamedChild(uint(i)))
	}
	return out
}

// hasToken reports whether node has an anonymous child with the given text,
// such as a "static" or "async" keyword.
func hasToken(node *sitter.Node, token string) bool {
	if node == nil {
		return false
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if !child.IsNamed() && child.Kind() == token {
			return true
		}
	}
	return false
}

// argumentCount counts the argument expressions inside an argument list node.
func argumentCount(args *sitter.Node) int {
	n := 0
	for _, child := range namedChildren(args) {
		switch child.Kind() {
		case "comment", "line_comment", "block_comment":
			continue
		}
		n++
	}
	return n
}

// spanOf converts a node's rows to a 1-indexed inclusive span.
func spanOf(node *sitter.Node, file string) extraction.Span {
	return extraction.Span{
		File:      file,
		StartLine: lineOf(node),
		EndLine:   int(node.EndPosition().Row) + 1,
	}
}

func lineOf(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// textBefore returns node's source up to (not including) stop, with runs of
// whitespace collapsed. It is how signatures and callee expressions are cut.
func textBefore(node, stop *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	end := node.EndByte()
	if stop != nil && stop.StartByte() >= node.StartByte() && stop.StartByte() <= end {
		end = stop.StartByte()
	}
	return collapseSpace(string(source[node.StartByte():end]))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanBlockDoc strips the comment markers from a /** ... */ block.
func cleanBlockDoc(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "/**")
	raw = strings.TrimSuffix(raw, "*/")

	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		out = append(out, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// blockDocBefore returns the /** */ comment immediately preceding node.
func blockDocBefore(node *sitter.Node, source []byte) *string {
	for n := node; n != nil; n = n.Parent() {
		prev := n.PrevSibling()
		for prev != nil && prev.Kind() == "decorator" {
			prev = prev.PrevSibling()
		}
		if prev != nil && strings.Contains(prev.Kind(), "comment") {
			text := extractNodeText(prev, source)
			if strings.HasPrefix(text, "/**") {
				doc := cleanBlockDoc(text)
				return &doc
			}
			return nil
		}
		// Doc comments sit before export and decorator wrappers.
		parent := n.Parent()
		if parent == nil || (parent.Kind() != "export_statement" && parent.Kind() != "decorated_definition") {
			return nil
		}
	}
	return nil
}

// lineDocBefore collects consecutive "#" comments directly above node.
func lineDocBefore(node *sitter.Node, source []byte) *string {
	var lines []string
	expect := lineOf(node) - 1
	for prev := node.PrevSibling(); prev != nil && prev.Kind() == "comment"; prev = prev.PrevSibling() {
		if int(prev.EndPosition().Row)+1 != expect {
			break
		}
		text := strings.TrimSpace(strings.TrimLeft(extractNodeText(prev, source), "#"))
		lines = append([]string{text}, lines...)
		expect = lineOf(prev) - 1
	}
	if len(lines) == 0 {
		return nil
	}
	doc := strings.Join(lines, "\n")
	return &doc
}

// unquote strips one layer of matching quotes from a string literal.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}

func countLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := strings.Count(string(source), "\n")
	if source[len(source)-1] != '\n' {
		n++
	}
	return n
}

// modulePath converts a file path to a dotted module name: "src/shop/models.py"
// becomes "src.shop.models". Package markers (__init__, index) name their
// directory.
func modulePath(filePath string) string {
	p := strings.TrimPrefix(path.Clean(strings.ReplaceAll(filePath, `\`, "/")), "./")
	p = strings.TrimSuffix(p, path.Ext(p))
	if base := path.Base(p); (base == "__init__" || base == "index") && path.Dir(p) != "." {
		p = path.Dir(p)
	}
	return strings.Trim(strings.ReplaceAll(p, "/", "."), ".")
}

func isJSXPath(filePath string) bool {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".tsx", ".jsx":
		return true
	}
	return false
}

func isUpperName(name string) bool {
	hasLetter := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		}
	}
	return hasLetter
}

func startsUpper(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}
