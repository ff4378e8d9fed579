package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// javaParser extracts Java compilation units.
type javaParser struct {
	*treeSitterParser
}

// NewJavaParser creates a new Java parser.
func NewJavaParser(opts ...Option) *javaParser {
	return &javaParser{
		treeSitterParser: newTreeSitterParser(extraction.LanguageJava, opts),
	}
}

// Extract maps a Java syntax tree to a ParseUnit. The package declaration
// becomes the namespace; nested types are qualified by their outer type.
func (p *javaParser) Extract(tree *sitter.Tree, source []byte, filePath string) *extraction.ParseUnit {
	b, root := p.newUnit(tree, source, filePath)
	w := &javaWalker{b: b}
	for _, child := range namedChildren(root) {
		w.topLevel(child)
	}
	return b.build()
}

type javaWalker struct {
	b     *unitBuilder
	kinds []extraction.SymbolKind
}

func (w *javaWalker) topLevel(n *sitter.Node) {
	switch n.Kind() {
	case "package_declaration":
		for _, c := range namedChildren(n) {
			if c.Kind() == "scoped_identifier" || c.Kind() == "identifier" {
				w.b.setNamespace(w.b.text(c))
			}
		}
	case "import_declaration":
		w.importDecl(n)
	default:
		w.declaration(n)
	}
}

// importDecl handles single-type, on-demand (".*") and static imports.
func (w *javaWalker) importDecl(n *sitter.Node) {
	var path string
	for _, c := range namedChildren(n) {
		if c.Kind() == "scoped_identifier" || c.Kind() == "identifier" {
			path = w.b.text(c)
		}
	}
	if path == "" {
		return
	}
	w.b.addImport(extraction.Import{
		ImportedPath: path,
		IsWildcard:   findChildByType(n, "asterisk") != nil,
	}, n)
}

func (w *javaWalker) declaration(n *sitter.Node) {
	switch n.Kind() {
	case "class_declaration", "record_declaration":
		w.typeDecl(n, extraction.KindClass)
	case "interface_declaration":
		w.typeDecl(n, extraction.KindInterface)
	case "enum_declaration":
		w.typeDecl(n, extraction.KindEnum)
	case "annotation_type_declaration":
		w.b.unsupported(n, "annotation type declaration")
	case "module_declaration":
		w.b.unsupported(n, "module declaration")
	}
}

func (w *javaWalker) inInterface() bool {
	return len(w.kinds) > 0 && w.kinds[len(w.kinds)-1] == extraction.KindInterface
}

func (w *javaWalker) typeDecl(n *sitter.Node, kind extraction.SymbolKind) {
	name := w.b.text(n.ChildByFieldName("name"))
	if name == "" {
		return
	}
	body := n.ChildByFieldName("body")
	mods := javaModifiersOf(n, w.b.source)

	qn := w.b.addSymbol(extraction.Symbol{
		Name:        name,
		Kind:        kind,
		Visibility:  mods.visibility(w.inInterface()),
		Signature:   javaSignature(n, body, w.b.source),
		DocComment:  blockDocBefore(n, w.b.source),
		Annotations: mods.annotations,
		Modifiers:   mods.keywords(),
	}, n)

	if sc := n.ChildByFieldName("superclass"); sc != nil {
		for _, t := range namedChildren(sc) {
			w.b.addEdge(qn, javaTypeName(t, w.b.source), extraction.Extends)
		}
	}
	if si := n.ChildByFieldName("interfaces"); si != nil {
		w.typeList(qn, si, extraction.Implements)
	}
	if ei := findChildByType(n, "extends_interfaces"); ei != nil {
		w.typeList(qn, ei, extraction.Extends)
	}

	w.b.pushType(qn, name)
	w.kinds = append(w.kinds, kind)
	defer func() {
		w.kinds = w.kinds[:len(w.kinds)-1]
		w.b.popType()
	}()

	if n.Kind() == "record_declaration" {
		w.recordComponents(n.ChildByFieldName("parameters"))
	}
	w.collectFields(body)
	w.body(body)
}

func (w *javaWalker) typeList(child string, n *sitter.Node, kind extraction.InheritanceKind) {
	for _, c := range namedChildren(n) {
		if c.Kind() == "type_list" {
			w.typeList(child, c, kind)
			continue
		}
		w.b.addEdge(child, javaTypeName(c, w.b.source), kind)
	}
}

// collectFields records field types before any method body is walked, since
// Java lets a method use a field declared below it.
func (w *javaWalker) collectFields(body *sitter.Node) {
	for _, c := range namedChildren(body) {
		if c.Kind() != "field_declaration" && c.Kind() != "constant_declaration" {
			continue
		}
		typ := javaTypeName(c.ChildByFieldName("type"), w.b.source)
		for _, d := range findChildrenByType(c, "variable_declarator") {
			w.b.setField(w.b.text(d.ChildByFieldName("name")), typ)
		}
	}
}

func (w *javaWalker) recordComponents(params *sitter.Node) {
	for _, c := range namedChildren(params) {
		if c.Kind() != "formal_parameter" {
			continue
		}
		name := w.b.text(c.ChildByFieldName("name"))
		typ := c.ChildByFieldName("type")
		w.b.setField(name, javaTypeName(typ, w.b.source))
		w.b.addSymbol(extraction.Symbol{
			Name:       name,
			Kind:       extraction.KindField,
			Visibility: extraction.VisibilityPrivate,
			Signature:  collapseSpace(w.b.text(c)),
			Modifiers:  []string{"final"},
		}, c)
	}
}

func (w *javaWalker) body(body *sitter.Node) {
	for _, c := range namedChildren(body) {
		switch c.Kind() {
		case "field_declaration", "constant_declaration":
			w.field(c)
		case "method_declaration":
			w.method(c)
		case "constructor_declaration", "compact_constructor_declaration":
			w.constructor(c)
		case "enum_constant":
			w.enumConstant(c)
		case "enum_body_declarations":
			w.body(c)
		case "static_initializer", "block":
			w.b.pushFunc(w.b.currentType().qn, "")
			w.walk(c)
			w.b.popFunc()
		default:
			w.declaration(c)
		}
	}
}

func (w *javaWalker) field(n *sitter.Node) {
	mods := javaModifiersOf(n, w.b.source)
	typeNode := n.ChildByFieldName("type")

	kind := extraction.KindField
	if n.Kind() == "constant_declaration" || (mods.has("static") && mods.has("final")) {
		kind = extraction.KindConstant
	}

	for _, d := range findChildrenByType(n, "variable_declarator") {
		name := w.b.text(d.ChildByFieldName("name"))
		sig := strings.Join(mods.words, " ") + " " + w.b.text(typeNode) + " " + name
		w.b.addSymbol(extraction.Symbol{
			Name:        name,
			Kind:        kind,
			Visibility:  mods.visibility(w.inInterface()),
			Signature:   collapseSpace(sig),
			DocComment:  blockDocBefore(n, w.b.source),
			Annotations: mods.annotations,
			Modifiers:   mods.keywords(),
		}, n)
		w.walk(d.ChildByFieldName("value"))
	}
}

func (w *javaWalker) method(n *sitter.Node) {
	name := w.b.text(n.ChildByFieldName("name"))
	body := n.ChildByFieldName("body")
	mods := javaModifiersOf(n, w.b.source)

	modifiers := mods.keywords()
	if w.inInterface() && body == nil && !mods.has("abstract") {
		modifiers = append(modifiers, "abstract")
	}

	qn := w.b.addSymbol(extraction.Symbol{
		Name:        name,
		Kind:        extraction.KindMethod,
		Visibility:  mods.visibility(w.inInterface()),
		Signature:   javaSignature(n, body, w.b.source),
		DocComment:  blockDocBefore(n, w.b.source),
		Annotations: mods.annotations,
		Modifiers:   modifiers,
	}, n)

	w.b.pushFunc(qn, name)
	defer w.b.popFunc()
	w.params(n.ChildByFieldName("parameters"))
	w.walk(body)
}

func (w *javaWalker) constructor(n *sitter.Node) {
	name := w.b.text(n.ChildByFieldName("name"))
	body := n.ChildByFieldName("body")
	mods := javaModifiersOf(n, w.b.source)

	qn := w.b.addConstructor(extraction.Symbol{
		Name:        name,
		Visibility:  mods.visibility(false),
		Signature:   javaSignature(n, body, w.b.source),
		DocComment:  blockDocBefore(n, w.b.source),
		Annotations: mods.annotations,
		Modifiers:   mods.keywords(),
	}, n)

	w.b.pushFunc(qn, name)
	defer w.b.popFunc()
	w.params(n.ChildByFieldName("parameters"))
	w.walk(body)
}

func (w *javaWalker) enumConstant(n *sitter.Node) {
	w.b.addSymbol(extraction.Symbol{
		Name:       w.b.text(n.ChildByFieldName("name")),
		Kind:       extraction.KindConstant,
		Signature:  collapseSpace(w.b.text(n.ChildByFieldName("name"))),
		DocComment: blockDocBefore(n, w.b.source),
		Modifiers:  []string{"static", "final"},
	}, n)
	w.walk(n.ChildByFieldName("arguments"))
}

func (w *javaWalker) params(n *sitter.Node) {
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "formal_parameter":
			w.b.declareLocal(w.b.text(c.ChildByFieldName("name")), javaTypeName(c.ChildByFieldName("type"), w.b.source))
		case "spread_parameter":
			if d := findChildByType(c, "variable_declarator"); d != nil {
				w.b.declareLocal(w.b.text(d.ChildByFieldName("name")), "")
			}
		}
	}
}

// walk visits statements and expressions in source order, binding locals
// as they are declared and recording every invocation.
func (w *javaWalker) walk(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "local_variable_declaration":
		typ := javaTypeName(n.ChildByFieldName("type"), w.b.source)
		for _, d := range findChildrenByType(n, "variable_declarator") {
			value := d.ChildByFieldName("value")
			w.walk(value)
			t := typ
			if t == "" && value != nil && value.Kind() == "object_creation_expression" {
				t = javaTypeName(value.ChildByFieldName("type"), w.b.source)
			}
			w.b.declareLocal(w.b.text(d.ChildByFieldName("name")), t)
		}
		return
	case "enhanced_for_statement":
		w.walk(n.ChildByFieldName("value"))
		w.b.declareLocal(w.b.text(n.ChildByFieldName("name")), javaTypeName(n.ChildByFieldName("type"), w.b.source))
		w.walk(n.ChildByFieldName("body"))
		return
	case "catch_formal_parameter":
		var typ string
		if ct := findChildByType(n, "catch_type"); ct != nil && ct.NamedChildCount() == 1 {
			typ = javaTypeName(ct.NamedChild(0), w.b.source)
		}
		w.b.declareLocal(w.b.text(n.ChildByFieldName("name")), typ)
		return
	case "resource":
		w.walk(n.ChildByFieldName("value"))
		w.b.declareLocal(w.b.text(n.ChildByFieldName("name")), javaTypeName(n.ChildByFieldName("type"), w.b.source))
		return
	case "lambda_expression":
		w.lambdaParams(n.ChildByFieldName("parameters"))
		w.walk(n.ChildByFieldName("body"))
		return
	case "method_invocation":
		w.call(n)
	case "object_creation_expression":
		w.newExpr(n)
	case "explicit_constructor_invocation":
		w.constructorChain(n)
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
		w.declaration(n)
		return
	}
	for _, c := range namedChildren(n) {
		w.walk(c)
	}
}

func (w *javaWalker) lambdaParams(n *sitter.Node) {
	if n == nil {
		return
	}
	if n.Kind() == "identifier" {
		w.b.declareLocal(w.b.text(n), "")
		return
	}
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "identifier":
			w.b.declareLocal(w.b.text(c), "")
		case "formal_parameter":
			w.b.declareLocal(w.b.text(c.ChildByFieldName("name")), javaTypeName(c.ChildByFieldName("type"), w.b.source))
		}
	}
}

func (w *javaWalker) call(n *sitter.Node) {
	args := n.ChildByFieldName("arguments")
	site := extraction.CallSite{
		Expression:    textBefore(n, args, w.b.source),
		Member:        w.b.text(n.ChildByFieldName("name")),
		ArgumentCount: argumentCount(args),
	}
	w.receiver(&site, n.ChildByFieldName("object"))
	w.b.addCall(site, n)
}

func (w *javaWalker) receiver(site *extraction.CallSite, obj *sitter.Node) {
	if obj == nil {
		site.Receiver = extraction.ReceiverNone
		site.ImplicitSelf = true
		return
	}
	switch obj.Kind() {
	case "this":
		site.Receiver = extraction.ReceiverSelf
	case "super":
		site.Receiver = extraction.ReceiverSuper
	case "identifier":
		name := w.b.text(obj)
		site.ReceiverText = name
		if typ, ok := w.b.lookupLocal(name); ok {
			site.Receiver = extraction.ReceiverIdentifier
			site.ReceiverIsLocal = true
			site.ReceiverType = typ
		} else if typ, ok := w.b.fieldType(name); ok {
			site.Receiver = extraction.ReceiverSelfField
			site.ReceiverType = typ
		} else {
			site.Receiver = extraction.ReceiverIdentifier
		}
	case "field_access":
		if o := obj.ChildByFieldName("object"); o != nil && o.Kind() == "this" {
			field := w.b.text(obj.ChildByFieldName("field"))
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

func (w *javaWalker) newExpr(n *sitter.Node) {
	args := n.ChildByFieldName("arguments")
	name := javaTypeName(n.ChildByFieldName("type"), w.b.source)
	w.b.addCall(extraction.CallSite{
		Expression:    textBefore(n, args, w.b.source),
		Receiver:      extraction.ReceiverNone,
		Member:        name,
		Constructor:   true,
		Dynamic:       name == "",
		ArgumentCount: argumentCount(args),
	}, n)
}

// constructorChain handles this(...) and super(...) as the first statement
// of a constructor.
func (w *javaWalker) constructorChain(n *sitter.Node) {
	ctor := n.ChildByFieldName("constructor")
	args := n.ChildByFieldName("arguments")
	site := extraction.CallSite{
		Expression:    w.b.text(ctor),
		Receiver:      extraction.ReceiverSelf,
		Constructor:   true,
		ArgumentCount: argumentCount(args),
	}
	if ctor != nil && ctor.Kind() == "super" {
		site.Receiver = extraction.ReceiverSuper
	}
	w.b.addCall(site, n)
}

// javaTypeName reduces a type node to the name a resolver can qualify:
// generics and array brackets are dropped, primitives yield "".
func javaTypeName(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case "type_identifier", "scoped_type_identifier", "identifier", "scoped_identifier":
		return extractNodeText(n, source)
	case "generic_type":
		return javaTypeName(n.NamedChild(0), source)
	case "array_type":
		return javaTypeName(n.ChildByFieldName("element"), source)
	case "annotated_type":
		return javaTypeName(n.NamedChild(n.NamedChildCount()-1), source)
	}
	return ""
}

// javaModifiers splits a modifiers node into keywords and annotations.
type javaModifiers struct {
	words       []string
	annotations []string
}

func javaModifiersOf(n *sitter.Node, source []byte) javaModifiers {
	var m javaModifiers
	mods := findChildByType(n, "modifiers")
	if mods == nil {
		return m
	}
	for i := 0; i < int(mods.ChildCount()); i++ {
		c := mods.Child(uint(i))
		switch {
		case c.Kind() == "annotation" || c.Kind() == "marker_annotation":
			m.annotations = append(m.annotations, collapseSpace(extractNodeText(c, source)))
		case !c.IsNamed():
			m.words = append(m.words, c.Kind())
		}
	}
	return m
}

func (m javaModifiers) has(word string) bool {
	for _, w := range m.words {
		if w == word {
			return true
		}
	}
	return false
}

// keywords returns the modifiers other than access levels.
func (m javaModifiers) keywords() []string {
	out := []string{}
	for _, w := range m.words {
		switch w {
		case "public", "protected", "private":
			continue
		}
		out = append(out, w)
	}
	return out
}

func (m javaModifiers) visibility(interfaceMember bool) extraction.Visibility {
	switch {
	case m.has("public"):
		return extraction.VisibilityPublic
	case m.has("protected"):
		return extraction.VisibilityProtected
	case m.has("private"):
		return extraction.VisibilityPrivate
	case interfaceMember:
		return extraction.VisibilityPublic
	}
	return extraction.VisibilityPackagePrivate
}

// javaSignature is the declaration header without annotations or body.
func javaSignature(n, body *sitter.Node, source []byte) string {
	start := n.StartByte()
	var words []string
	if mods := findChildByType(n, "modifiers"); mods != nil {
		start = mods.EndByte()
		words = javaModifiersOf(n, source).words
	}
	end := n.EndByte()
	if body != nil {
		end = body.StartByte()
	}
	if start > end {
		start = end
	}
	rest := strings.TrimSuffix(collapseSpace(string(source[start:end])), ";")
	return strings.TrimSpace(strings.Join(append(words, rest), " "))
}
