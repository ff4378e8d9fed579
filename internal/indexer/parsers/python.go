package parsers

import (
	"path"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// pythonParser extracts Python modules.
type pythonParser struct {
	*treeSitterParser
}

// NewPythonParser creates a new Python parser.
func NewPythonParser(opts ...Option) *pythonParser {
	return &pythonParser{
		treeSitterParser: newTreeSitterParser(extraction.LanguagePython, opts),
	}
}

// Extract maps a Python syntax tree to a ParseUnit. The module path derived
// from the file path is the namespace.
func (p *pythonParser) Extract(tree *sitter.Tree, source []byte, filePath string) *extraction.ParseUnit {
	b, root := p.newUnit(tree, source, filePath)
	b.setNamespace(modulePath(filePath))
	b.shareModuleScope()

	w := &pythonWalker{b: b, pkg: pythonPackage(filePath)}
	w.block(root)
	return b.build()
}

type pythonWalker struct {
	b   *unitBuilder
	pkg string // dotted package relative imports start from
}

// block walks the statements of a module, class or function body.
func (w *pythonWalker) block(n *sitter.Node) {
	for _, c := range namedChildren(n) {
		w.statement(c, nil)
	}
}

func (w *pythonWalker) statement(n *sitter.Node, decorators []string) {
	switch n.Kind() {
	case "import_statement":
		w.importStatement(n)
	case "import_from_statement":
		w.importFrom(n)
	case "class_definition":
		w.class(n, decorators)
	case "function_definition":
		w.function(n, decorators)
	case "decorated_definition":
		var decs []string
		for _, d := range findChildrenByType(n, "decorator") {
			decs = append(decs, collapseSpace(w.b.text(d)))
		}
		if def := n.ChildByFieldName("definition"); def != nil {
			w.statement(def, decs)
		}
	case "expression_statement":
		w.expressionStatement(n)
	default:
		w.walk(n)
	}
}

// importStatement handles "import a.b" and "import a.b as c". An unaliased
// dotted import binds its first segment, like the interpreter does.
func (w *pythonWalker) importStatement(n *sitter.Node) {
	for _, c := range namedChildren(n) {
		imp := extraction.Import{IsModule: true}
		switch c.Kind() {
		case "dotted_name":
			imp.ImportedPath = w.b.text(c)
			if head, _, dotted := strings.Cut(imp.ImportedPath, "."); dotted {
				imp.QualifiedPath = head
			}
		case "aliased_import":
			imp.ImportedPath = w.b.text(c.ChildByFieldName("name"))
			imp.LocalAlias = extraction.StringPtr(w.b.text(c.ChildByFieldName("alias")))
		default:
			continue
		}
		w.b.addImport(imp, n)
	}
}

// importFrom handles "from m import a, b as c", "from . import x" and
// "from m import *". Relative module paths are resolved against the package
// of the current file.
func (w *pythonWalker) importFrom(n *sitter.Node) {
	moduleNode := n.ChildByFieldName("module_name")
	module := w.b.text(moduleNode)

	var qualified string
	relative := moduleNode != nil && moduleNode.Kind() == "relative_import"
	if relative {
		qualified = w.resolveRelative(module)
	}

	if findChildByType(n, "wildcard_import") != nil {
		w.b.addImport(extraction.Import{
			ImportedPath:  module,
			IsRelative:    relative,
			IsWildcard:    true,
			QualifiedPath: qualified,
		}, n)
		return
	}

	for _, c := range namedChildren(n) {
		if moduleNode != nil && c.StartByte() == moduleNode.StartByte() {
			continue
		}
		imp := extraction.Import{ImportedPath: module, IsRelative: relative}
		switch c.Kind() {
		case "dotted_name":
			imp.ImportedSymbol = extraction.StringPtr(w.b.text(c))
		case "aliased_import":
			imp.ImportedSymbol = extraction.StringPtr(w.b.text(c.ChildByFieldName("name")))
			imp.LocalAlias = extraction.StringPtr(w.b.text(c.ChildByFieldName("alias")))
		default:
			continue
		}
		if relative {
			imp.QualifiedPath = joinDotted(qualified, *imp.ImportedSymbol)
		}
		w.b.addImport(imp, n)
	}
}

// resolveRelative turns "..models" into a dotted path from the package root.
func (w *pythonWalker) resolveRelative(module string) string {
	rest := strings.TrimLeft(module, ".")
	dots := len(module) - len(rest)

	base := strings.Split(w.pkg, ".")
	if w.pkg == "" {
		base = nil
	}
	for i := 1; i < dots && len(base) > 0; i++ {
		base = base[:len(base)-1]
	}
	return joinDotted(strings.Join(base, "."), rest)
}

func (w *pythonWalker) class(n *sitter.Node, decorators []string) {
	name := w.b.text(n.ChildByFieldName("name"))
	body := n.ChildByFieldName("body")
	supers := n.ChildByFieldName("superclasses")

	var modifiers []string
	var parents []string
	for _, s := range namedChildren(supers) {
		switch s.Kind() {
		case "identifier", "attribute":
			parent := w.b.text(s)
			parents = append(parents, parent)
			if parent == "ABC" || parent == "abc.ABC" {
				modifiers = append(modifiers, "abstract")
			}
		case "keyword_argument":
			if w.b.text(s.ChildByFieldName("name")) == "metaclass" && strings.HasSuffix(w.b.text(s.ChildByFieldName("value")), "ABCMeta") {
				modifiers = append(modifiers, "abstract")
			}
		}
	}

	qn := w.b.addSymbol(extraction.Symbol{
		Name:        name,
		Kind:        pythonClassKind(parents),
		Visibility:  pythonVisibility(name),
		Signature:   strings.TrimSuffix(textBefore(n, body, w.b.source), ":"),
		DocComment:  w.docstring(body),
		Annotations: decorators,
		Modifiers:   modifiers,
	}, n)
	for _, parent := range parents {
		w.b.addEdge(qn, parent, extraction.Extends)
	}

	w.b.pushType(qn, name)
	defer w.b.popType()
	for _, c := range namedChildren(body) {
		w.classStatement(c)
	}
}

func (w *pythonWalker) classStatement(n *sitter.Node) {
	if n.Kind() != "expression_statement" {
		w.statement(n, nil)
		return
	}
	for _, expr := range namedChildren(n) {
		if expr.Kind() != "assignment" {
			w.walk(expr)
			continue
		}
		left := expr.ChildByFieldName("left")
		if left == nil || left.Kind() != "identifier" {
			w.walk(expr)
			continue
		}
		name := w.b.text(left)
		typ := pythonTypeName(expr.ChildByFieldName("type"), w.b.source)
		if typ == "" {
			typ = w.constructedType(expr.ChildByFieldName("right"))
		}
		w.b.setField(name, typ)
		kind := extraction.KindField
		if isUpperName(name) {
			kind = extraction.KindConstant
		}
		w.b.addSymbol(extraction.Symbol{
			Name:       name,
			Kind:       kind,
			Visibility: pythonVisibility(name),
			Signature:  assignmentSignature(expr, expr.ChildByFieldName("right"), w.b.source),
		}, expr)
		w.walk(expr.ChildByFieldName("right"))
	}
}

func (w *pythonWalker) function(n *sitter.Node, decorators []string) {
	name := w.b.text(n.ChildByFieldName("name"))
	body := n.ChildByFieldName("body")

	// Functions nested in other functions are part of their body.
	if w.b.currentFunc() != nil {
		w.walk(body)
		return
	}

	var modifiers []string
	if hasToken(n, "async") {
		modifiers = append(modifiers, "async")
	}
	for _, d := range decorators {
		switch strings.TrimPrefix(d, "@") {
		case "staticmethod":
			modifiers = append(modifiers, "static")
		case "classmethod":
			modifiers = append(modifiers, "classmethod")
		case "abstractmethod", "abc.abstractmethod":
			modifiers = append(modifiers, "abstract")
		}
	}

	sym := extraction.Symbol{
		Name:        name,
		Kind:        extraction.KindFunction,
		Visibility:  pythonVisibility(name),
		Signature:   strings.TrimSuffix(textBefore(n, body, w.b.source), ":"),
		DocComment:  w.docstring(body),
		Annotations: decorators,
		Modifiers:   modifiers,
	}

	var qn string
	switch {
	case w.b.currentType() == nil:
		qn = w.b.addSymbol(sym, n)
	case name == "__init__":
		sym.Visibility = extraction.VisibilityPublic
		qn = w.b.addConstructor(sym, n)
	default:
		sym.Kind = extraction.KindMethod
		qn = w.b.addSymbol(sym, n)
	}

	w.b.pushFunc(qn, name)
	defer w.b.popFunc()
	w.params(n.ChildByFieldName("parameters"))
	w.block(body)
}

func (w *pythonWalker) params(n *sitter.Node) {
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "identifier":
			w.b.declareLocal(w.b.text(c), "")
		case "typed_parameter":
			if id := findChildByType(c, "identifier"); id != nil {
				w.b.declareLocal(w.b.text(id), pythonTypeName(c.ChildByFieldName("type"), w.b.source))
			}
		case "default_parameter", "typed_default_parameter":
			w.b.declareLocal(w.b.text(c.ChildByFieldName("name")), pythonTypeName(c.ChildByFieldName("type"), w.b.source))
		case "list_splat_pattern", "dictionary_splat_pattern":
			if id := findChildByType(c, "identifier"); id != nil {
				w.b.declareLocal(w.b.text(id), "")
			}
		}
	}
}

// docstring returns the string literal opening a body, if any.
func (w *pythonWalker) docstring(body *sitter.Node) *string {
	if body == nil || body.NamedChildCount() == 0 {
		return nil
	}
	first := body.NamedChild(0)
	if first.Kind() != "expression_statement" || first.NamedChildCount() != 1 {
		return nil
	}
	str := first.NamedChild(0)
	if str.Kind() != "string" {
		return nil
	}
	doc := strings.TrimSpace(strings.Trim(w.b.text(str), `"'`))
	return &doc
}

// expressionStatement handles module-level constants and assignments inside
// functions; everything else is walked for calls.
func (w *pythonWalker) expressionStatement(n *sitter.Node) {
	for _, expr := range namedChildren(n) {
		if expr.Kind() != "assignment" {
			w.walk(expr)
			continue
		}
		w.assignment(expr)
	}
}

func (w *pythonWalker) assignment(n *sitter.Node) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	w.walk(right)

	typ := pythonTypeName(n.ChildByFieldName("type"), w.b.source)
	if typ == "" {
		typ = w.constructedType(right)
	}
	if typ == "" && right != nil && right.Kind() == "identifier" {
		typ, _ = w.b.lookupLocal(w.b.text(right))
	}

	switch {
	case left == nil:
	case left.Kind() == "identifier" && w.b.currentFunc() == nil:
		name := w.b.text(left)
		if isUpperName(name) {
			w.b.addSymbol(extraction.Symbol{
				Name:       name,
				Kind:       extraction.KindConstant,
				Visibility: pythonVisibility(name),
				Signature:  assignmentSignature(n, right, w.b.source),
			}, n)
		}
		w.b.declareLocal(name, typ)
	case left.Kind() == "identifier":
		w.b.declareLocal(w.b.text(left), typ)
	case left.Kind() == "attribute" && w.isSelf(left.ChildByFieldName("object")):
		w.b.setField(w.b.text(left.ChildByFieldName("attribute")), typ)
	default:
		w.declarePattern(left)
	}
}

// declarePattern binds every identifier in a tuple or list target.
func (w *pythonWalker) declarePattern(n *sitter.Node) {
	walkTree(n, func(c *sitter.Node) bool {
		switch c.Kind() {
		case "identifier":
			w.b.declareLocal(w.b.text(c), "")
			return false
		case "attribute", "subscript":
			return false
		}
		return true
	})
}

// constructedType returns "Foo" for a right-hand side like Foo(...) or
// mod.Foo(...).
func (w *pythonWalker) constructedType(n *sitter.Node) string {
	if n == nil || n.Kind() != "call" {
		return ""
	}
	fn := n.ChildByFieldName("function")
	if fn == nil || (fn.Kind() != "identifier" && fn.Kind() != "attribute") {
		return ""
	}
	name := w.b.text(fn)
	i := strings.LastIndexByte(name, '.')
	if !startsUpper(name[i+1:]) {
		return ""
	}
	return name
}

func (w *pythonWalker) isSelf(n *sitter.Node) bool {
	return n != nil && n.Kind() == "identifier" && w.b.text(n) == "self" && w.b.currentType() != nil
}

// walk visits expressions and compound statements, recording calls and
// binding loop, with and comprehension targets.
func (w *pythonWalker) walk(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "class_definition", "function_definition", "decorated_definition",
		"import_statement", "import_from_statement":
		w.statement(n, nil)
		return
	case "block":
		w.block(n)
		return
	case "expression_statement":
		w.expressionStatement(n)
		return
	case "assignment":
		w.assignment(n)
		return
	case "for_statement", "for_in_clause":
		w.walk(n.ChildByFieldName("right"))
		w.declarePattern(n.ChildByFieldName("left"))
		for _, c := range namedChildren(n) {
			if c.Kind() == "block" || c.Kind() == "else_clause" {
				w.walk(c)
			}
		}
		return
	case "as_pattern_target":
		w.declarePattern(n)
		return
	case "lambda":
		for _, p := range namedChildren(n.ChildByFieldName("parameters")) {
			if p.Kind() == "identifier" {
				w.b.declareLocal(w.b.text(p), "")
			}
		}
		w.walk(n.ChildByFieldName("body"))
		return
	case "call":
		w.call(n)
	}
	for _, c := range namedChildren(n) {
		w.walk(c)
	}
}

func (w *pythonWalker) call(n *sitter.Node) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	args := n.ChildByFieldName("arguments")
	site := extraction.CallSite{
		Expression:    collapseSpace(w.b.text(fn)),
		ArgumentCount: argumentCount(args),
	}

	switch fn.Kind() {
	case "identifier":
		name := w.b.text(fn)
		if name == "super" {
			// Only meaningful as the receiver of the call around it.
			return
		}
		site.Member = name
		site.Receiver = extraction.ReceiverNone
		if _, ok := w.b.lookupLocal(name); ok {
			site.CalleeIsLocal = true
		}
	case "attribute":
		site.Member = w.b.text(fn.ChildByFieldName("attribute"))
		w.receiver(&site, fn.ChildByFieldName("object"))
	default:
		site.Dynamic = true
	}
	w.b.addCall(site, n)
}

func (w *pythonWalker) receiver(site *extraction.CallSite, obj *sitter.Node) {
	switch obj.Kind() {
	case "identifier":
		name := w.b.text(obj)
		switch {
		case name == "self" && w.b.currentType() != nil:
			site.Receiver = extraction.ReceiverSelf
			return
		case name == "cls" && w.b.currentType() != nil:
			site.Receiver = extraction.ReceiverScopeSelf
			return
		}
		site.Receiver = extraction.ReceiverIdentifier
		site.ReceiverText = name
		if typ, ok := w.b.lookupLocal(name); ok {
			site.ReceiverIsLocal = true
			site.ReceiverType = typ
		}
	case "call":
		if fn := obj.ChildByFieldName("function"); fn != nil && fn.Kind() == "identifier" && w.b.text(fn) == "super" {
			site.Receiver = extraction.ReceiverSuper
			site.Constructor = site.Member == "__init__"
			return
		}
		site.Receiver = extraction.ReceiverExpression
		site.ReceiverText = collapseSpace(w.b.text(obj))
	case "attribute":
		if w.isSelf(obj.ChildByFieldName("object")) {
			field := w.b.text(obj.ChildByFieldName("attribute"))
			site.Receiver = extraction.ReceiverSelfField
			site.ReceiverText = field
			site.ReceiverType, _ = w.b.fieldType(field)
			return
		}
		site.Receiver = extraction.ReceiverExpression
		site.ReceiverText = collapseSpace(w.b.text(obj))
	default:
		site.Receiver = extraction.ReceiverExpression
		site.ReceiverText = collapseSpace(w.b.text(obj))
	}
}

// pythonTypeName reduces an annotation to a class name: Optional[Foo] and
// "Foo" both give Foo.
func pythonTypeName(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	if n.Kind() == "type" && n.NamedChildCount() == 1 {
		n = n.NamedChild(0)
	}
	switch n.Kind() {
	case "identifier", "attribute":
		name := extractNodeText(n, source)
		switch name {
		case "int", "str", "float", "bool", "bytes", "None", "Any", "dict", "list", "set", "tuple":
			return ""
		}
		return name
	case "string":
		return strings.Trim(extractNodeText(n, source), `"'`)
	case "type_parameter":
		if n.NamedChildCount() > 0 {
			return pythonTypeName(n.NamedChild(0), source)
		}
	case "subscript", "generic_type":
		head := extractNodeText(n.NamedChild(0), source)
		if head == "Optional" || head == "typing.Optional" {
			return pythonTypeName(n.NamedChild(1), source)
		}
	}
	return ""
}

// assignmentSignature is the target and annotation of an assignment.
func assignmentSignature(n, right *sitter.Node, source []byte) string {
	return strings.TrimSpace(strings.TrimSuffix(textBefore(n, right, source), "="))
}

func pythonVisibility(name string) extraction.Visibility {
	switch {
	case strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"):
		return extraction.VisibilityPublic
	case strings.HasPrefix(name, "__"):
		return extraction.VisibilityPrivate
	case strings.HasPrefix(name, "_"):
		return extraction.VisibilityProtected
	}
	return extraction.VisibilityPublic
}

func pythonClassKind(parents []string) extraction.SymbolKind {
	for _, p := range parents {
		switch p {
		case "Enum", "enum.Enum", "IntEnum", "enum.IntEnum", "StrEnum", "enum.StrEnum":
			return extraction.KindEnum
		case "Protocol", "typing.Protocol":
			return extraction.KindInterface
		}
	}
	return extraction.KindClass
}

// pythonPackage returns the dotted package a file belongs to. A package's
// __init__.py is its own package.
func pythonPackage(filePath string) string {
	mod := modulePath(filePath)
	if path.Base(strings.TrimSuffix(filePath, path.Ext(filePath))) == "__init__" {
		return mod
	}
	if i := strings.LastIndexByte(mod, '.'); i >= 0 {
		return mod[:i]
	}
	return ""
}

func joinDotted(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.Trim(p, "."); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ".")
}
