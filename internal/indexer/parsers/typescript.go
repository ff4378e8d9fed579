package parsers

import (
	"path"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// typescriptParser extracts TypeScript and JavaScript modules. Both are
// parsed with the TypeScript grammar.
type typescriptParser struct {
	*treeSitterParser
}

// NewTypeScriptParser creates a parser that tags units with lang, which must
// be LanguageTypeScript or LanguageJavaScript.
func NewTypeScriptParser(lang extraction.Language, opts ...Option) *typescriptParser {
	return &typescriptParser{
		treeSitterParser: newTreeSitterParser(lang, opts),
	}
}

// Extract maps a TypeScript syntax tree to a ParseUnit. The module path
// derived from the file path is the namespace, and relative import
// specifiers are resolved against it.
func (p *typescriptParser) Extract(tree *sitter.Tree, source []byte, filePath string) *extraction.ParseUnit {
	b, root := p.newUnit(tree, source, filePath)
	b.setNamespace(modulePath(filePath))
	b.shareModuleScope()

	w := &tsWalker{b: b, dir: path.Dir(strings.ReplaceAll(filePath, `\`, "/"))}
	for _, c := range namedChildren(root) {
		w.statement(c)
	}
	return b.build()
}

type tsWalker struct {
	b     *unitBuilder
	dir   string
	kinds []extraction.SymbolKind
}

func (w *tsWalker) statement(n *sitter.Node) {
	switch n.Kind() {
	case "import_statement":
		w.importStatement(n)
	case "export_statement":
		if decl := n.ChildByFieldName("declaration"); decl != nil {
			w.statement(decl)
			return
		}
		w.walk(n)
	case "class_declaration", "abstract_class_declaration":
		w.class(n)
	case "interface_declaration":
		w.iface(n)
	case "enum_declaration":
		w.enum(n)
	case "function_declaration", "generator_function_declaration":
		w.function(n, n.ChildByFieldName("name"), n)
	case "lexical_declaration", "variable_declaration":
		w.variables(n)
	case "internal_module", "module":
		w.b.unsupported(n, "namespace declaration")
		if body := n.ChildByFieldName("body"); body != nil {
			for _, c := range namedChildren(body) {
				w.statement(c)
			}
		}
	case "ambient_declaration":
		w.b.unsupported(n, "ambient declaration")
	case "type_alias_declaration", "comment":
	default:
		w.walk(n)
	}
}

// importStatement handles default, namespace, named and side-effect imports.
func (w *tsWalker) importStatement(n *sitter.Node) {
	source := unquote(w.b.text(n.ChildByFieldName("source")))
	relative := strings.HasPrefix(source, ".")
	base := extraction.Import{ImportedPath: source, IsRelative: relative}
	if relative {
		base.QualifiedPath = w.resolveSpecifier(source)
	}

	clause := findChildByType(n, "import_clause")
	if clause == nil {
		base.IsModule = true
		w.b.addImport(base, n)
		return
	}

	for _, c := range namedChildren(clause) {
		switch c.Kind() {
		case "identifier":
			imp := base
			imp.IsModule = true
			imp.LocalAlias = extraction.StringPtr(w.b.text(c))
			w.b.addImport(imp, n)
		case "namespace_import":
			imp := base
			imp.IsModule = true
			if id := findChildByType(c, "identifier"); id != nil {
				imp.LocalAlias = extraction.StringPtr(w.b.text(id))
			}
			w.b.addImport(imp, n)
		case "named_imports":
			for _, spec := range findChildrenByType(c, "import_specifier") {
				imp := base
				name := w.b.text(spec.ChildByFieldName("name"))
				imp.ImportedSymbol = extraction.StringPtr(name)
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					imp.LocalAlias = extraction.StringPtr(w.b.text(alias))
				}
				if relative {
					imp.QualifiedPath = joinDotted(base.QualifiedPath, name)
				}
				w.b.addImport(imp, n)
			}
		}
	}
}

// resolveSpecifier maps "./models/user" to the module path of the file it
// names, matching the namespace that file gets when it is extracted.
func (w *tsWalker) resolveSpecifier(spec string) string {
	return modulePath(path.Join(w.dir, spec) + ".ts")
}

// requireImport records "const x = require('mod')" as a module import.
func (w *tsWalker) requireImport(name string, value *sitter.Node) bool {
	if value == nil || value.Kind() != "call_expression" {
		return false
	}
	fn := value.ChildByFieldName("function")
	if fn == nil || w.b.text(fn) != "require" {
		return false
	}
	args := namedChildren(value.ChildByFieldName("arguments"))
	if len(args) != 1 || args[0].Kind() != "string" {
		return false
	}
	spec := unquote(w.b.text(args[0]))
	imp := extraction.Import{
		ImportedPath: spec,
		LocalAlias:   extraction.StringPtr(name),
		IsRelative:   strings.HasPrefix(spec, "."),
		IsModule:     true,
	}
	if imp.IsRelative {
		imp.QualifiedPath = w.resolveSpecifier(spec)
	}
	w.b.addImport(imp, value)
	return true
}

func (w *tsWalker) inInterface() bool {
	return len(w.kinds) > 0 && w.kinds[len(w.kinds)-1] == extraction.KindInterface
}

func (w *tsWalker) class(n *sitter.Node) {
	name := w.b.text(n.ChildByFieldName("name"))
	if name == "" {
		w.walk(n)
		return
	}
	body := n.ChildByFieldName("body")

	var modifiers []string
	if n.Kind() == "abstract_class_declaration" {
		modifiers = append(modifiers, "abstract")
	}

	qn := w.b.addSymbol(extraction.Symbol{
		Name:        name,
		Kind:        extraction.KindClass,
		Signature:   w.headerWithoutDecorators(n, body),
		DocComment:  blockDocBefore(n, w.b.source),
		Annotations: w.decorators(n),
		Modifiers:   modifiers,
	}, n)

	if heritage := findChildByType(n, "class_heritage"); heritage != nil {
		for _, clause := range namedChildren(heritage) {
			kind := extraction.Extends
			if clause.Kind() == "implements_clause" {
				kind = extraction.Implements
			}
			for _, t := range namedChildren(clause) {
				if t.Kind() == "type_arguments" {
					continue
				}
				w.b.addEdge(qn, tsTypeName(t, w.b.source), kind)
			}
		}
	}

	w.b.pushType(qn, name)
	w.kinds = append(w.kinds, extraction.KindClass)
	defer func() {
		w.kinds = w.kinds[:len(w.kinds)-1]
		w.b.popType()
	}()

	w.collectFields(body)
	for _, c := range namedChildren(body) {
		w.member(c)
	}
}

func (w *tsWalker) iface(n *sitter.Node) {
	name := w.b.text(n.ChildByFieldName("name"))
	body := n.ChildByFieldName("body")

	qn := w.b.addSymbol(extraction.Symbol{
		Name:       name,
		Kind:       extraction.KindInterface,
		Signature:  textBefore(n, body, w.b.source),
		DocComment: blockDocBefore(n, w.b.source),
	}, n)

	if ext := findChildByType(n, "extends_type_clause"); ext != nil {
		for _, t := range namedChildren(ext) {
			w.b.addEdge(qn, tsTypeName(t, w.b.source), extraction.Extends)
		}
	}

	w.b.pushType(qn, name)
	w.kinds = append(w.kinds, extraction.KindInterface)
	defer func() {
		w.kinds = w.kinds[:len(w.kinds)-1]
		w.b.popType()
	}()
	for _, c := range namedChildren(body) {
		w.member(c)
	}
}

func (w *tsWalker) enum(n *sitter.Node) {
	name := w.b.text(n.ChildByFieldName("name"))
	body := n.ChildByFieldName("body")

	qn := w.b.addSymbol(extraction.Symbol{
		Name:       name,
		Kind:       extraction.KindEnum,
		Signature:  textBefore(n, body, w.b.source),
		DocComment: blockDocBefore(n, w.b.source),
	}, n)

	w.b.pushType(qn, name)
	defer w.b.popType()
	for _, c := range namedChildren(body) {
		member := c
		if c.Kind() == "enum_assignment" {
			member = c.ChildByFieldName("name")
		}
		if member == nil || (member.Kind() != "property_identifier" && member.Kind() != "string") {
			continue
		}
		w.b.addSymbol(extraction.Symbol{
			Name:      unquote(w.b.text(member)),
			Kind:      extraction.KindConstant,
			Signature: collapseSpace(w.b.text(c)),
		}, c)
	}
}

// collectFields records field and parameter-property types ahead of the
// method bodies that use them.
func (w *tsWalker) collectFields(body *sitter.Node) {
	for _, c := range namedChildren(body) {
		switch c.Kind() {
		case "public_field_definition", "field_definition":
			name := tsMemberName(w.b.text(c.ChildByFieldName("name")))
			typ := tsTypeName(c.ChildByFieldName("type"), w.b.source)
			if typ == "" {
				typ = w.constructedType(c.ChildByFieldName("value"))
			}
			w.b.setField(name, typ)
		case "method_definition":
			if w.b.text(c.ChildByFieldName("name")) != "constructor" {
				continue
			}
			for _, p := range namedChildren(c.ChildByFieldName("parameters")) {
				if findChildByType(p, "accessibility_modifier") == nil && !hasToken(p, "readonly") {
					continue
				}
				w.b.setField(w.b.text(p.ChildByFieldName("pattern")), tsTypeName(p.ChildByFieldName("type"), w.b.source))
			}
		}
	}
}

func (w *tsWalker) member(n *sitter.Node) {
	switch n.Kind() {
	case "method_definition", "method_signature", "abstract_method_signature":
		w.method(n)
	case "public_field_definition", "field_definition", "property_signature":
		w.field(n)
	case "class_static_block":
		w.b.pushFunc(w.b.currentType().qn, "")
		w.walk(n.ChildByFieldName("body"))
		w.b.popFunc()
	}
}

func (w *tsWalker) method(n *sitter.Node) {
	rawName := w.b.text(n.ChildByFieldName("name"))
	name := tsMemberName(rawName)
	body := n.ChildByFieldName("body")

	modifiers := tsModifiers(n)
	if n.Kind() == "abstract_method_signature" || (w.inInterface() && body == nil) {
		modifiers = appendMissing(modifiers, "abstract")
	}
	if hasToken(n, "get") {
		modifiers = append(modifiers, "get")
	} else if hasToken(n, "set") {
		modifiers = append(modifiers, "set")
	}

	sym := extraction.Symbol{
		Name:        name,
		Kind:        extraction.KindMethod,
		Visibility:  tsVisibility(n, rawName, w.b.source),
		Signature:   trimHeader(w.headerWithoutDecorators(n, body), ";"),
		DocComment:  blockDocBefore(n, w.b.source),
		Annotations: w.decorators(n),
		Modifiers:   modifiers,
	}

	var qn string
	if name == "constructor" && !w.inInterface() {
		qn = w.b.addConstructor(sym, n)
		w.parameterProperties(n.ChildByFieldName("parameters"))
	} else {
		qn = w.b.addSymbol(sym, n)
	}

	if body == nil {
		return
	}
	w.b.pushFunc(qn, name)
	defer w.b.popFunc()
	w.params(n.ChildByFieldName("parameters"))
	w.walk(body)
}

// parameterProperties records "constructor(private repo: Repo)" fields.
func (w *tsWalker) parameterProperties(params *sitter.Node) {
	for _, p := range namedChildren(params) {
		acc := findChildByType(p, "accessibility_modifier")
		if acc == nil && !hasToken(p, "readonly") {
			continue
		}
		name := w.b.text(p.ChildByFieldName("pattern"))
		vis := extraction.VisibilityPublic
		switch w.b.text(acc) {
		case "private":
			vis = extraction.VisibilityPrivate
		case "protected":
			vis = extraction.VisibilityProtected
		}
		w.b.addSymbol(extraction.Symbol{
			Name:       name,
			Kind:       extraction.KindField,
			Visibility: vis,
			Signature:  collapseSpace(w.b.text(p)),
			Modifiers:  tsModifiers(p),
		}, p)
	}
}

func (w *tsWalker) field(n *sitter.Node) {
	rawName := w.b.text(n.ChildByFieldName("name"))
	value := n.ChildByFieldName("value")

	kind := extraction.KindField
	if value != nil && (value.Kind() == "arrow_function" || value.Kind() == "function_expression") {
		kind = extraction.KindMethod
	}

	qn := w.b.addSymbol(extraction.Symbol{
		Name:        tsMemberName(rawName),
		Kind:        kind,
		Visibility:  tsVisibility(n, rawName, w.b.source),
		Signature:   trimHeader(w.headerWithoutDecorators(n, value), "=", ";"),
		DocComment:  blockDocBefore(n, w.b.source),
		Annotations: w.decorators(n),
		Modifiers:   tsModifiers(n),
	}, n)

	if kind == extraction.KindMethod {
		w.b.pushFunc(qn, tsMemberName(rawName))
		defer w.b.popFunc()
	}
	w.walk(value)
}

// function records a named function, or an arrow/function expression bound
// to a module-level const.
func (w *tsWalker) function(n, nameNode, fn *sitter.Node) {
	name := w.b.text(nameNode)
	body := fn.ChildByFieldName("body")

	var modifiers []string
	if hasToken(fn, "async") {
		modifiers = append(modifiers, "async")
	}

	docNode := n
	if n.Kind() == "variable_declarator" && n.Parent() != nil {
		docNode = n.Parent()
	}

	qn := w.b.addSymbol(extraction.Symbol{
		Name:       name,
		Kind:       extraction.KindFunction,
		Signature:  trimHeader(textBefore(n, body, w.b.source), "=>"),
		DocComment: blockDocBefore(docNode, w.b.source),
		Modifiers:  modifiers,
	}, n)

	w.b.pushFunc(qn, name)
	defer w.b.popFunc()
	w.params(fn.ChildByFieldName("parameters"))
	if p := fn.ChildByFieldName("parameter"); p != nil {
		w.b.declareLocal(w.b.text(p), "")
	}
	w.walk(body)
}

// variables handles top-level const/let/var declarations.
func (w *tsWalker) variables(n *sitter.Node) {
	for _, d := range findChildrenByType(n, "variable_declarator") {
		nameNode := d.ChildByFieldName("name")
		value := d.ChildByFieldName("value")
		name := w.b.text(nameNode)

		if nameNode != nil && nameNode.Kind() == "identifier" && w.requireImport(name, value) {
			continue
		}
		if value != nil && (value.Kind() == "arrow_function" || value.Kind() == "function_expression" || value.Kind() == "function") {
			w.function(d, nameNode, value)
			continue
		}
		if nameNode != nil && nameNode.Kind() == "identifier" && hasToken(n, "const") && isUpperName(name) {
			w.b.addSymbol(extraction.Symbol{
				Name:       name,
				Kind:       extraction.KindConstant,
				Signature:  trimHeader(textBefore(d, value, w.b.source), "="),
				DocComment: blockDocBefore(n, w.b.source),
			}, d)
		}
		w.walk(value)
		if nameNode == nil || nameNode.Kind() != "identifier" {
			w.declarePattern(nameNode)
			continue
		}
		typ := tsTypeName(d.ChildByFieldName("type"), w.b.source)
		if typ == "" {
			typ = w.constructedType(value)
		}
		w.b.declareLocal(name, typ)
	}
}

func (w *tsWalker) params(n *sitter.Node) {
	for _, p := range namedChildren(n) {
		switch p.Kind() {
		case "required_parameter", "optional_parameter":
			pattern := p.ChildByFieldName("pattern")
			if pattern != nil && pattern.Kind() == "identifier" {
				w.b.declareLocal(w.b.text(pattern), tsTypeName(p.ChildByFieldName("type"), w.b.source))
				continue
			}
			w.declarePattern(pattern)
		case "identifier":
			w.b.declareLocal(w.b.text(p), "")
		default:
			w.declarePattern(p)
		}
	}
}

func (w *tsWalker) declarePattern(n *sitter.Node) {
	walkTree(n, func(c *sitter.Node) bool {
		switch c.Kind() {
		case "identifier", "shorthand_property_identifier_pattern":
			w.b.declareLocal(w.b.text(c), "")
			return false
		case "type_annotation", "member_expression":
			return false
		}
		return true
	})
}

// walk visits statements and expressions in source order.
func (w *tsWalker) walk(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "class_declaration", "abstract_class_declaration", "interface_declaration", "enum_declaration", "internal_module":
		w.statement(n)
		return
	case "lexical_declaration", "variable_declaration":
		if w.b.currentFunc() == nil && w.b.currentType() == nil {
			w.variables(n)
			return
		}
		for _, d := range findChildrenByType(n, "variable_declarator") {
			value := d.ChildByFieldName("value")
			w.walk(value)
			nameNode := d.ChildByFieldName("name")
			if nameNode != nil && nameNode.Kind() == "identifier" {
				typ := tsTypeName(d.ChildByFieldName("type"), w.b.source)
				if typ == "" {
					typ = w.constructedType(value)
				}
				w.b.declareLocal(w.b.text(nameNode), typ)
				continue
			}
			w.declarePattern(nameNode)
		}
		return
	case "for_in_statement":
		w.walk(n.ChildByFieldName("right"))
		w.declarePattern(n.ChildByFieldName("left"))
		w.walk(n.ChildByFieldName("body"))
		return
	case "catch_clause":
		w.declarePattern(n.ChildByFieldName("parameter"))
		w.walk(n.ChildByFieldName("body"))
		return
	case "arrow_function", "function_expression", "function":
		w.params(n.ChildByFieldName("parameters"))
		if p := n.ChildByFieldName("parameter"); p != nil {
			w.b.declareLocal(w.b.text(p), "")
		}
		w.walk(n.ChildByFieldName("body"))
		return
	case "assignment_expression":
		w.walk(n.ChildByFieldName("right"))
		left := n.ChildByFieldName("left")
		if left != nil && left.Kind() == "member_expression" {
			if obj := left.ChildByFieldName("object"); obj != nil && obj.Kind() == "this" {
				w.b.setField(tsMemberName(w.b.text(left.ChildByFieldName("property"))), w.constructedType(n.ChildByFieldName("right")))
			}
		}
		w.walk(left)
		return
	case "call_expression":
		w.call(n)
	case "new_expression":
		w.newExpr(n)
	}
	for _, c := range namedChildren(n) {
		w.walk(c)
	}
}

func (w *tsWalker) constructedType(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	if n.Kind() == "await_expression" && n.NamedChildCount() > 0 {
		n = n.NamedChild(0)
	}
	if n.Kind() != "new_expression" {
		return ""
	}
	ctor := n.ChildByFieldName("constructor")
	if ctor == nil || (ctor.Kind() != "identifier" && ctor.Kind() != "member_expression") {
		return ""
	}
	return w.b.text(ctor)
}

func (w *tsWalker) call(n *sitter.Node) {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	site := extraction.CallSite{
		Expression:    collapseSpace(w.b.text(fn)),
		ArgumentCount: argumentCount(args),
	}

	switch {
	case fn == nil:
		site.Dynamic = true
	case fn.Kind() == "identifier":
		name := w.b.text(fn)
		site.Member = name
		site.Receiver = extraction.ReceiverNone
		if _, ok := w.b.lookupLocal(name); ok {
			site.CalleeIsLocal = true
		}
	case fn.Kind() == "super":
		site.Receiver = extraction.ReceiverSuper
		site.Constructor = true
	case fn.Kind() == "member_expression":
		prop := fn.ChildByFieldName("property")
		site.Member = tsMemberName(w.b.text(prop))
		if prop == nil || (prop.Kind() != "property_identifier" && prop.Kind() != "private_property_identifier") {
			site.Dynamic = true
			break
		}
		w.receiver(&site, fn.ChildByFieldName("object"))
	default:
		// callbacks[0](), makeHandler()(), (a || b)()
		site.Dynamic = true
	}
	w.b.addCall(site, n)
}

func (w *tsWalker) receiver(site *extraction.CallSite, obj *sitter.Node) {
	switch {
	case obj == nil:
		site.Dynamic = true
	case obj.Kind() == "this":
		site.Receiver = extraction.ReceiverSelf
	case obj.Kind() == "super":
		site.Receiver = extraction.ReceiverSuper
	case obj.Kind() == "identifier":
		name := w.b.text(obj)
		site.Receiver = extraction.ReceiverIdentifier
		site.ReceiverText = name
		if typ, ok := w.b.lookupLocal(name); ok {
			site.ReceiverIsLocal = true
			site.ReceiverType = typ
		}
	case obj.Kind() == "member_expression" && w.b.text(obj.ChildByFieldName("object")) == "this":
		field := tsMemberName(w.b.text(obj.ChildByFieldName("property")))
		site.Receiver = extraction.ReceiverSelfField
		site.ReceiverText = field
		site.ReceiverType, _ = w.b.fieldType(field)
	default:
		site.Receiver = extraction.ReceiverExpression
		site.ReceiverText = collapseSpace(w.b.text(obj))
	}
}

func (w *tsWalker) newExpr(n *sitter.Node) {
	ctor := n.ChildByFieldName("constructor")
	args := n.ChildByFieldName("arguments")
	site := extraction.CallSite{
		Expression:    textBefore(n, args, w.b.source),
		Receiver:      extraction.ReceiverNone,
		Constructor:   true,
		ArgumentCount: argumentCount(args),
	}
	switch {
	case ctor == nil:
		site.Dynamic = true
	case ctor.Kind() == "identifier":
		site.Member = w.b.text(ctor)
	case ctor.Kind() == "member_expression":
		site.Receiver = extraction.ReceiverIdentifier
		site.ReceiverText = w.b.text(ctor)
		site.ReceiverIsModule = true
	default:
		site.Dynamic = true
	}
	w.b.addCall(site, n)
}

// decorators collects decorators on the declaration and, for class members
// and exported classes, the ones placed before it.
func (w *tsWalker) decorators(n *sitter.Node) []string {
	var out []string
	for prev := n.PrevSibling(); prev != nil && prev.Kind() == "decorator"; prev = prev.PrevSibling() {
		out = append([]string{collapseSpace(w.b.text(prev))}, out...)
	}
	if parent := n.Parent(); parent != nil && parent.Kind() == "export_statement" {
		for _, d := range findChildrenByType(parent, "decorator") {
			out = append(out, collapseSpace(w.b.text(d)))
		}
	}
	for _, d := range findChildrenByType(n, "decorator") {
		out = append(out, collapseSpace(w.b.text(d)))
	}
	return out
}

// headerWithoutDecorators is the declaration text up to stop, starting after
// any leading decorators.
func (w *tsWalker) headerWithoutDecorators(n, stop *sitter.Node) string {
	start := n.StartByte()
	for _, d := range findChildrenByType(n, "decorator") {
		if d.EndByte() > start {
			start = d.EndByte()
		}
	}
	end := n.EndByte()
	if stop != nil {
		end = stop.StartByte()
	}
	if start > end {
		start = end
	}
	return strings.TrimSpace(collapseSpace(string(w.b.source[start:end])))
}

// tsTypeName reduces a type annotation to a class name.
func tsTypeName(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case "type_annotation":
		if n.NamedChildCount() > 0 {
			return tsTypeName(n.NamedChild(0), source)
		}
	case "type_identifier", "identifier", "nested_type_identifier", "member_expression":
		return extractNodeText(n, source)
	case "generic_type":
		return tsTypeName(n.ChildByFieldName("name"), source)
	case "expression_with_type_arguments":
		return tsTypeName(n.NamedChild(0), source)
	}
	return ""
}

func tsVisibility(n *sitter.Node, rawName string, source []byte) extraction.Visibility {
	if strings.HasPrefix(rawName, "#") {
		return extraction.VisibilityPrivate
	}
	switch extractNodeText(findChildByType(n, "accessibility_modifier"), source) {
	case "private":
		return extraction.VisibilityPrivate
	case "protected":
		return extraction.VisibilityProtected
	}
	return extraction.VisibilityPublic
}

func tsModifiers(n *sitter.Node) []string {
	var out []string
	for _, kw := range []string{"static", "async", "abstract", "readonly"} {
		if hasToken(n, kw) {
			out = append(out, kw)
		}
	}
	if findChildByType(n, "override_modifier") != nil {
		out = append(out, "override")
	}
	return out
}

// trimHeader drops trailing punctuation left on a header cut before its
// value or body.
func trimHeader(s string, suffixes ...string) string {
	s = strings.TrimSpace(s)
	for _, suffix := range suffixes {
		s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
	}
	return s
}

func tsMemberName(name string) string {
	return strings.TrimPrefix(name, "#")
}

func appendMissing(list []string, item string) []string {
	for _, s := range list {
		if s == item {
			return list
		}
	}
	return append(list, item)
}
