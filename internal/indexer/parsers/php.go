package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
	"github.com/mvp-joe/project-scribe/internal/resolver"
)

// phpParser extracts PHP source files.
type phpParser struct {
	*treeSitterParser
}

// NewPHPParser creates a new PHP parser.
func NewPHPParser(opts ...Option) *phpParser {
	return &phpParser{
		treeSitterParser: newTreeSitterParser(extraction.LanguagePHP, opts),
	}
}

// Extract maps a PHP syntax tree to a ParseUnit. Namespace separators are
// normalized to "." in every qualified name.
func (p *phpParser) Extract(tree *sitter.Tree, source []byte, filePath string) *extraction.ParseUnit {
	b, root := p.newUnit(tree, source, filePath)
	w := &phpWalker{b: b}
	w.statements(root)
	return b.build()
}

type phpWalker struct {
	b     *unitBuilder
	kinds []extraction.SymbolKind
}

func (w *phpWalker) statements(n *sitter.Node) {
	for _, c := range namedChildren(n) {
		w.statement(c)
	}
}

func (w *phpWalker) statement(n *sitter.Node) {
	switch n.Kind() {
	case "namespace_definition":
		ns := resolver.NormalizeName(w.b.text(n.ChildByFieldName("name")))
		body := n.ChildByFieldName("body")
		if body == nil {
			w.b.setNamespace(ns)
			return
		}
		prev := w.b.namespace
		w.b.setNamespace(ns)
		w.statements(body)
		w.b.namespace = prev
	case "namespace_use_declaration":
		w.useDeclaration(n)
	case "class_declaration":
		w.typeDecl(n, extraction.KindClass)
	case "interface_declaration":
		w.typeDecl(n, extraction.KindInterface)
	case "trait_declaration":
		w.typeDecl(n, extraction.KindClass)
	case "enum_declaration":
		w.typeDecl(n, extraction.KindEnum)
	case "function_definition":
		w.function(n)
	case "const_declaration":
		w.constants(n)
	case "php_tag", "text", "text_interpolation", "comment":
	default:
		w.walk(n)
	}
}

// useDeclaration handles "use A\B;", "use A\B as C;", "use function A\f;"
// and grouped "use A\{B, C as D};".
func (w *phpWalker) useDeclaration(n *sitter.Node) {
	var prefix string
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "namespace_name":
			prefix = w.b.text(c)
		case "namespace_use_clause":
			w.useClause(c, "", n)
		case "namespace_use_group":
			for _, g := range namedChildren(c) {
				if strings.HasPrefix(g.Kind(), "namespace_use") {
					w.useClause(g, prefix, n)
				}
			}
		}
	}
}

func (w *phpWalker) useClause(c *sitter.Node, prefix string, decl *sitter.Node) {
	var path, alias string
	afterAs := false
	for i := 0; i < int(c.ChildCount()); i++ {
		child := c.Child(uint(i))
		switch {
		case child.Kind() == "as":
			afterAs = true
		case child.Kind() == "namespace_aliasing_clause":
			if name := findChildByType(child, "name"); name != nil {
				alias = w.b.text(name)
			}
		case child.Kind() == "name" && afterAs:
			alias = w.b.text(child)
		case child.Kind() == "name" || child.Kind() == "qualified_name" || child.Kind() == "namespace_name":
			if path == "" {
				path = w.b.text(child)
			}
		}
	}
	if path == "" {
		return
	}
	if prefix != "" {
		path = prefix + `\` + path
	}
	imp := extraction.Import{ImportedPath: strings.TrimPrefix(path, `\`)}
	if alias != "" {
		imp.LocalAlias = extraction.StringPtr(alias)
	}
	w.b.addImport(imp, decl)
}

func (w *phpWalker) inInterface() bool {
	return len(w.kinds) > 0 && w.kinds[len(w.kinds)-1] == extraction.KindInterface
}

func (w *phpWalker) typeDecl(n *sitter.Node, kind extraction.SymbolKind) {
	name := w.b.text(n.ChildByFieldName("name"))
	if name == "" {
		return
	}
	body := n.ChildByFieldName("body")

	modifiers := phpModifiers(n)
	if n.Kind() == "trait_declaration" {
		modifiers = append(modifiers, "trait")
	}

	qn := w.b.addSymbol(extraction.Symbol{
		Name:        name,
		Kind:        kind,
		Signature:   textBefore(n, body, w.b.source),
		DocComment:  blockDocBefore(n, w.b.source),
		Annotations: w.attributes(n),
		Modifiers:   modifiers,
	}, n)

	if base := findChildByType(n, "base_clause"); base != nil {
		for _, t := range namedChildren(base) {
			w.b.addEdge(qn, w.b.text(t), extraction.Extends)
		}
	}
	if impl := findChildByType(n, "class_interface_clause"); impl != nil {
		for _, t := range namedChildren(impl) {
			w.b.addEdge(qn, w.b.text(t), extraction.Implements)
		}
	}

	w.b.pushType(qn, name)
	w.kinds = append(w.kinds, kind)
	defer func() {
		w.kinds = w.kinds[:len(w.kinds)-1]
		w.b.popType()
	}()

	w.collectFields(body)
	for _, c := range namedChildren(body) {
		w.member(c, qn)
	}
}

// collectFields records declared and promoted property types ahead of the
// method bodies that use them.
func (w *phpWalker) collectFields(body *sitter.Node) {
	for _, c := range namedChildren(body) {
		switch c.Kind() {
		case "property_declaration":
			typ := phpTypeName(c.ChildByFieldName("type"), w.b.source)
			for _, el := range findChildrenByType(c, "property_element") {
				w.b.setField(phpVarName(w.b.text(findChildByType(el, "variable_name"))), typ)
			}
		case "method_declaration":
			if w.b.text(c.ChildByFieldName("name")) != "__construct" {
				continue
			}
			for _, p := range findChildrenByType(c.ChildByFieldName("parameters"), "property_promotion_parameter") {
				w.b.setField(phpVarName(w.b.text(p.ChildByFieldName("name"))), phpTypeName(p.ChildByFieldName("type"), w.b.source))
			}
		}
	}
}

func (w *phpWalker) member(n *sitter.Node, typeQN string) {
	switch n.Kind() {
	case "property_declaration":
		w.property(n)
	case "const_declaration":
		w.constants(n)
	case "method_declaration":
		w.method(n)
	case "enum_case":
		name := n.ChildByFieldName("name")
		if name == nil {
			name = findChildByType(n, "name")
		}
		w.b.addSymbol(extraction.Symbol{
			Name:      w.b.text(name),
			Kind:      extraction.KindConstant,
			Signature: collapseSpace(strings.TrimSuffix(w.b.text(n), ";")),
		}, n)
	case "use_declaration":
		// Trait composition.
		for _, t := range namedChildren(n) {
			if t.Kind() == "name" || t.Kind() == "qualified_name" {
				w.b.addEdge(typeQN, w.b.text(t), extraction.Implements)
			}
		}
	}
}

func (w *phpWalker) property(n *sitter.Node) {
	for _, el := range findChildrenByType(n, "property_element") {
		name := phpVarName(w.b.text(findChildByType(el, "variable_name")))
		w.b.addSymbol(extraction.Symbol{
			Name:        name,
			Kind:        extraction.KindField,
			Visibility:  phpVisibility(n, w.b.source),
			Signature:   collapseSpace(strings.TrimSuffix(w.b.text(n), ";")),
			DocComment:  blockDocBefore(n, w.b.source),
			Annotations: w.attributes(n),
			Modifiers:   phpModifiers(n),
		}, n)
		w.walk(el)
	}
}

func (w *phpWalker) constants(n *sitter.Node) {
	for _, el := range findChildrenByType(n, "const_element") {
		name := findChildByType(el, "name")
		if name == nil {
			continue
		}
		w.b.addSymbol(extraction.Symbol{
			Name:       w.b.text(name),
			Kind:       extraction.KindConstant,
			Visibility: phpVisibility(n, w.b.source),
			Signature:  "const " + collapseSpace(w.b.text(el)),
			DocComment: blockDocBefore(n, w.b.source),
			Modifiers:  phpModifiers(n),
		}, n)
	}
}

func (w *phpWalker) method(n *sitter.Node) {
	name := w.b.text(n.ChildByFieldName("name"))
	body := n.ChildByFieldName("body")

	modifiers := phpModifiers(n)
	if w.inInterface() && body == nil {
		modifiers = append(modifiers, "abstract")
	}

	sym := extraction.Symbol{
		Name:        name,
		Kind:        extraction.KindMethod,
		Visibility:  phpVisibility(n, w.b.source),
		Signature:   strings.TrimSuffix(textBefore(n, body, w.b.source), ";"),
		DocComment:  blockDocBefore(n, w.b.source),
		Annotations: w.attributes(n),
		Modifiers:   modifiers,
	}

	var qn string
	if name == "__construct" {
		qn = w.b.addConstructor(sym, n)
		w.promotedProperties(n.ChildByFieldName("parameters"))
	} else {
		qn = w.b.addSymbol(sym, n)
	}

	w.b.pushFunc(qn, name)
	defer w.b.popFunc()
	w.params(n.ChildByFieldName("parameters"))
	w.walk(body)
}

func (w *phpWalker) promotedProperties(params *sitter.Node) {
	for _, p := range findChildrenByType(params, "property_promotion_parameter") {
		w.b.addSymbol(extraction.Symbol{
			Name:       phpVarName(w.b.text(p.ChildByFieldName("name"))),
			Kind:       extraction.KindField,
			Visibility: phpVisibility(p, w.b.source),
			Signature:  collapseSpace(w.b.text(p)),
			Modifiers:  phpModifiers(p),
		}, p)
	}
}

func (w *phpWalker) function(n *sitter.Node) {
	name := w.b.text(n.ChildByFieldName("name"))
	body := n.ChildByFieldName("body")

	if w.b.currentFunc() != nil {
		w.b.unsupported(n, "nested function declaration")
		return
	}

	qn := w.b.addSymbol(extraction.Symbol{
		Name:        name,
		Kind:        extraction.KindFunction,
		Signature:   textBefore(n, body, w.b.source),
		DocComment:  blockDocBefore(n, w.b.source),
		Annotations: w.attributes(n),
	}, n)

	w.b.pushFunc(qn, name)
	defer w.b.popFunc()
	w.params(n.ChildByFieldName("parameters"))
	w.walk(body)
}

func (w *phpWalker) params(n *sitter.Node) {
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "simple_parameter", "variadic_parameter", "property_promotion_parameter":
			w.b.declareLocal(w.b.text(c.ChildByFieldName("name")), phpTypeName(c.ChildByFieldName("type"), w.b.source))
		}
	}
}

// attributes lists PHP 8 attributes as "#[Name(args)]", one per attribute.
func (w *phpWalker) attributes(n *sitter.Node) []string {
	var out []string
	for _, list := range findChildrenByType(n, "attribute_list") {
		walkTree(list, func(c *sitter.Node) bool {
			if c.Kind() != "attribute" {
				return true
			}
			out = append(out, "#["+collapseSpace(w.b.text(c))+"]")
			return false
		})
	}
	return out
}

// walk visits statements and expressions, binding variables on assignment
// and recording every call.
func (w *phpWalker) walk(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "class_declaration", "interface_declaration", "trait_declaration", "enum_declaration":
		w.statement(n)
		return
	case "function_definition":
		w.function(n)
		return
	case "assignment_expression":
		w.walk(n.ChildByFieldName("right"))
		w.assign(n.ChildByFieldName("left"), n.ChildByFieldName("right"))
		return
	case "foreach_statement":
		w.foreach(n)
		return
	case "anonymous_function", "arrow_function", "anonymous_function_creation_expression":
		w.params(n.ChildByFieldName("parameters"))
		w.walk(n.ChildByFieldName("body"))
		return
	case "function_call_expression":
		w.functionCall(n)
	case "member_call_expression", "nullsafe_member_call_expression":
		w.memberCall(n)
	case "scoped_call_expression":
		w.scopedCall(n)
	case "object_creation_expression":
		w.newExpr(n)
	}
	for _, c := range namedChildren(n) {
		w.walk(c)
	}
}

func (w *phpWalker) assign(left, right *sitter.Node) {
	if left == nil {
		return
	}
	typ := w.constructedType(right)
	if typ == "" && right != nil && right.Kind() == "variable_name" {
		typ, _ = w.b.lookupLocal(w.b.text(right))
	}
	switch left.Kind() {
	case "variable_name":
		w.b.declareLocal(w.b.text(left), typ)
	case "member_access_expression":
		if obj := left.ChildByFieldName("object"); obj != nil && w.b.text(obj) == "$this" {
			w.b.setField(w.b.text(left.ChildByFieldName("name")), typ)
		}
	}
}

func (w *phpWalker) foreach(n *sitter.Node) {
	children := namedChildren(n)
	if len(children) == 0 {
		return
	}
	w.walk(children[0])
	for _, c := range children[1:] {
		if c.Kind() == "variable_name" || c.Kind() == "pair" || c.Kind() == "by_ref" || c.Kind() == "list_literal" {
			walkTree(c, func(v *sitter.Node) bool {
				if v.Kind() == "variable_name" {
					w.b.declareLocal(w.b.text(v), "")
					return false
				}
				return true
			})
			continue
		}
		w.walk(c)
	}
}

// constructedType returns the class of a "new Foo(...)" right-hand side.
func (w *phpWalker) constructedType(n *sitter.Node) string {
	if n == nil || n.Kind() != "object_creation_expression" {
		return ""
	}
	cls := phpClassDesignator(n)
	if cls == nil || (cls.Kind() != "name" && cls.Kind() != "qualified_name" && cls.Kind() != "relative_scope") {
		return ""
	}
	switch name := w.b.text(cls); phpRelativeScope(name) {
	case "self", "static":
		if t := w.b.currentType(); t != nil {
			return t.name
		}
		return ""
	case "parent":
		return ""
	default:
		return name
	}
}

func (w *phpWalker) functionCall(n *sitter.Node) {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	site := extraction.CallSite{
		Expression:    textBefore(n, args, w.b.source),
		Receiver:      extraction.ReceiverNone,
		ArgumentCount: argumentCount(args),
	}
	switch {
	case fn == nil:
		site.Dynamic = true
	case fn.Kind() == "name":
		site.Member = w.b.text(fn)
	case fn.Kind() == "qualified_name":
		site.Member = resolver.NormalizeName(w.b.text(fn))
	default:
		// $fn(), $handlers[0](), ($this->cb)()
		site.Dynamic = true
	}
	w.b.addCall(site, n)
}

func (w *phpWalker) memberCall(n *sitter.Node) {
	obj := n.ChildByFieldName("object")
	name := n.ChildByFieldName("name")
	args := n.ChildByFieldName("arguments")
	site := extraction.CallSite{
		Expression:    textBefore(n, args, w.b.source),
		Member:        w.b.text(name),
		ArgumentCount: argumentCount(args),
	}
	if name == nil || name.Kind() != "name" {
		site.Dynamic = true
		w.b.addCall(site, n)
		return
	}

	switch {
	case obj == nil:
		site.Dynamic = true
	case obj.Kind() == "variable_name" && w.b.text(obj) == "$this":
		site.Receiver = extraction.ReceiverSelf
	case obj.Kind() == "variable_name":
		v := w.b.text(obj)
		site.Receiver = extraction.ReceiverIdentifier
		site.ReceiverText = v
		site.ReceiverIsLocal = w.b.currentFunc() != nil
		site.ReceiverType, _ = w.b.lookupLocal(v)
	case obj.Kind() == "member_access_expression" && w.b.text(obj.ChildByFieldName("object")) == "$this":
		field := w.b.text(obj.ChildByFieldName("name"))
		site.Receiver = extraction.ReceiverSelfField
		site.ReceiverText = field
		site.ReceiverType, _ = w.b.fieldType(field)
	default:
		site.Receiver = extraction.ReceiverExpression
		site.ReceiverText = collapseSpace(w.b.text(obj))
	}
	w.b.addCall(site, n)
}

// scopedCall handles Foo::bar(), self::bar(), static::bar() and parent::bar().
func (w *phpWalker) scopedCall(n *sitter.Node) {
	scope := n.ChildByFieldName("scope")
	args := n.ChildByFieldName("arguments")
	site := extraction.CallSite{
		Expression:    textBefore(n, args, w.b.source),
		Member:        w.b.text(n.ChildByFieldName("name")),
		ArgumentCount: argumentCount(args),
	}

	switch {
	case scope == nil:
		site.Dynamic = true
	case phpRelativeScope(w.b.text(scope)) == "parent":
		site.Receiver = extraction.ReceiverSuper
		site.Constructor = site.Member == "__construct"
	case phpRelativeScope(w.b.text(scope)) != "":
		site.Receiver = extraction.ReceiverScopeSelf
	case scope.Kind() == "name":
		site.Receiver = extraction.ReceiverIdentifier
		site.ReceiverText = w.b.text(scope)
	case scope.Kind() == "qualified_name":
		site.Receiver = extraction.ReceiverIdentifier
		site.ReceiverText = w.b.text(scope)
		site.ReceiverIsModule = true
	default:
		// $class::make()
		site.Dynamic = true
	}
	w.b.addCall(site, n)
}

func (w *phpWalker) newExpr(n *sitter.Node) {
	args := findChildByType(n, "arguments")
	site := extraction.CallSite{
		Expression:    textBefore(n, args, w.b.source),
		Receiver:      extraction.ReceiverNone,
		Constructor:   true,
		ArgumentCount: argumentCount(args),
	}

	cls := phpClassDesignator(n)
	switch {
	case cls == nil:
		site.Dynamic = true
	case phpRelativeScope(w.b.text(cls)) == "parent":
		site.Receiver = extraction.ReceiverSuper
	case phpRelativeScope(w.b.text(cls)) != "":
		site.Receiver = extraction.ReceiverScopeSelf
	case cls.Kind() == "name" || cls.Kind() == "qualified_name":
		site.Member = w.b.text(cls)
	default:
		// new $class(), new class {}
		site.Dynamic = true
	}
	w.b.addCall(site, n)
}

// phpClassDesignator returns the class operand of a "new" expression.
func phpClassDesignator(n *sitter.Node) *sitter.Node {
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "arguments", "attribute_list", "comment":
			continue
		}
		return c
	}
	return nil
}

// phpTypeName reduces a declared type to a class name; scalar, union and
// intersection types give "".
func phpTypeName(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case "name", "qualified_name":
		return extractNodeText(n, source)
	case "named_type", "optional_type":
		if n.NamedChildCount() > 0 {
			return phpTypeName(n.NamedChild(0), source)
		}
	}
	return ""
}

func phpVisibility(n *sitter.Node, source []byte) extraction.Visibility {
	vis := n.ChildByFieldName("visibility")
	if vis == nil {
		vis = findChildByType(n, "visibility_modifier")
	}
	switch strings.ToLower(extractNodeText(vis, source)) {
	case "private":
		return extraction.VisibilityPrivate
	case "protected":
		return extraction.VisibilityProtected
	}
	return extraction.VisibilityPublic
}

// phpModifiers lists the non-access modifiers of a declaration.
func phpModifiers(n *sitter.Node) []string {
	var out []string
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "static_modifier":
			out = append(out, "static")
		case "abstract_modifier":
			out = append(out, "abstract")
		case "final_modifier":
			out = append(out, "final")
		case "readonly_modifier":
			out = append(out, "readonly")
		}
	}
	return out
}

// phpRelativeScope returns "self", "static" or "parent" for those keywords
// and "" for anything else. The grammar types them as either relative_scope
// or name depending on position.
func phpRelativeScope(text string) string {
	switch t := strings.ToLower(strings.TrimSpace(text)); t {
	case "self", "static", "parent":
		return t
	}
	return ""
}

// phpVarName strips the sigil from "$name".
func phpVarName(v string) string {
	return strings.TrimPrefix(v, "$")
}
