package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
	"github.com/mvp-joe/project-scribe/internal/resolver"
)

// rubyParser extracts Ruby source files. Modules are namespaces rather than
// symbols; classes nested in them are qualified by the module path.
type rubyParser struct {
	*treeSitterParser
}

// NewRubyParser creates a new Ruby adapter.
func NewRubyParser(opts ...Option) *rubyParser {
	return &rubyParser{
		treeSitterParser: newTreeSitterParser(extraction.LanguageRuby, opts),
	}
}

// Extract maps a Ruby syntax tree to a ParseUnit.
func (p *rubyParser) Extract(tree *sitter.Tree, source []byte, path string) *extraction.ParseUnit {
	b, root := p.newUnit(tree, source, path)
	w := &rubyWalker{b: b, vis: extraction.VisibilityPublic}
	w.body(namedChildren(root))
	return b.build()
}

type rubyWalker struct {
	b *unitBuilder

	// vis is the section visibility set by a bare private/protected/public.
	vis extraction.Visibility
	// singleton is set inside "class << self" bodies.
	singleton bool
}

// rubySendMethods invoke a method named by a runtime value.
var rubySendMethods = map[string]bool{
	"send":        true,
	"public_send": true,
	"__send__":    true,
}

// body handles the statements of a program, module or class body.
func (w *rubyWalker) body(stmts []*sitter.Node) {
	for _, n := range stmts {
		switch n.Kind() {
		case "module":
			w.module(n)
		case "class":
			w.class(n)
		case "singleton_class":
			w.singletonClass(n)
		case "method":
			w.method(n, w.singleton, w.vis)
		case "singleton_method":
			w.method(n, true, w.vis)
		case "identifier":
			if vis, ok := rubyVisibility(w.b.text(n)); ok && w.b.currentType() != nil {
				w.vis = vis
				continue
			}
			w.walk(n)
		case "call":
			w.classLevelCall(n)
		case "assignment":
			w.constantAssignment(n)
		case "comment":
		default:
			w.walk(n)
		}
	}
}

// bodyOf returns the statements of a module, class or method, skipping the
// header nodes.
func bodyOf(n *sitter.Node, header ...*sitter.Node) []*sitter.Node {
	if body := n.ChildByFieldName("body"); body != nil {
		return namedChildren(body)
	}
	var out []*sitter.Node
	for _, c := range namedChildren(n) {
		skip := false
		for _, h := range header {
			if h != nil && c.StartByte() == h.StartByte() && c.Kind() == h.Kind() {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, c)
		}
	}
	return out
}

func (w *rubyWalker) module(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	name := resolver.NormalizeName(w.b.text(nameNode))

	prev := w.b.namespace
	if t := w.b.currentType(); t != nil {
		// A module nested in a class is qualified by the class.
		name = t.qn + "." + name
	} else if prev != "" {
		name = prev + "." + name
	}
	w.b.setNamespace(name)

	outer := w.b.types
	w.b.types = nil
	savedVis := w.vis
	w.vis = extraction.VisibilityPublic
	defer func() {
		w.b.types = outer
		w.b.namespace = prev
		w.vis = savedVis
	}()

	w.body(bodyOf(n, nameNode))
}

func (w *rubyWalker) class(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	superclass := n.ChildByFieldName("superclass")
	name := resolver.NormalizeName(w.b.text(nameNode))

	sig := "class " + w.b.text(nameNode)
	if superclass != nil {
		sig += " " + w.b.text(superclass)
	}

	qn := w.b.addSymbol(extraction.Symbol{
		Name:          resolver.LastSegment(name),
		QualifiedName: w.b.qualify(name),
		Kind:          extraction.KindClass,
		Signature:     collapseSpace(sig),
		DocComment:    lineDocBefore(n, w.b.source),
	}, n)

	if superclass != nil && superclass.NamedChildCount() > 0 {
		w.b.addEdge(qn, resolver.NormalizeName(w.b.text(superclass.NamedChild(0))), extraction.Extends)
	}

	w.b.pushType(qn, resolver.LastSegment(name))
	savedVis, savedSingleton := w.vis, w.singleton
	w.vis, w.singleton = extraction.VisibilityPublic, false
	defer func() {
		w.b.popType()
		w.vis, w.singleton = savedVis, savedSingleton
	}()

	stmts := bodyOf(n, nameNode, superclass)
	w.collectFields(stmts)
	w.body(stmts)
}

// singletonClass walks "class << self" bodies, whose methods are class
// methods. The block itself is reported since it is not modelled as a type.
func (w *rubyWalker) singletonClass(n *sitter.Node) {
	value := n.ChildByFieldName("value")
	w.b.unsupported(n, "singleton class")
	if w.b.text(value) != "self" {
		return
	}

	saved, savedVis := w.singleton, w.vis
	w.singleton = true
	defer func() { w.singleton, w.vis = saved, savedVis }()
	w.body(bodyOf(n, value))
}

// collectFields records instance variable types assigned in initialize so
// every method sees them.
func (w *rubyWalker) collectFields(stmts []*sitter.Node) {
	for _, s := range stmts {
		if s.Kind() != "method" || w.b.text(s.ChildByFieldName("name")) != "initialize" {
			continue
		}
		walkTree(s, func(n *sitter.Node) bool {
			if n.Kind() != "assignment" {
				return true
			}
			left := n.ChildByFieldName("left")
			if left != nil && left.Kind() == "instance_variable" {
				w.b.setField(strings.TrimPrefix(w.b.text(left), "@"), w.constructedType(n.ChildByFieldName("right")))
			}
			return false
		})
	}
}

func (w *rubyWalker) method(n *sitter.Node, static bool, vis extraction.Visibility) {
	nameNode := n.ChildByFieldName("name")
	params := n.ChildByFieldName("parameters")
	object := n.ChildByFieldName("object")
	name := w.b.text(nameNode)

	sig := "def "
	if object != nil {
		sig += w.b.text(object) + "."
	}
	sig += name + w.b.text(params)

	var modifiers []string
	if static {
		modifiers = append(modifiers, "static")
	}

	sym := extraction.Symbol{
		Name:       name,
		Kind:       extraction.KindMethod,
		Visibility: vis,
		Signature:  collapseSpace(sig),
		DocComment: lineDocBefore(n, w.b.source),
		Modifiers:  modifiers,
	}
	if w.b.currentType() == nil {
		sym.Kind = extraction.KindFunction
	}

	var qn string
	if name == "initialize" && !static && w.b.currentType() != nil {
		sym.Visibility = extraction.VisibilityPrivate
		qn = w.b.addConstructor(sym, n)
	} else {
		qn = w.b.addSymbol(sym, n)
	}

	w.b.pushFunc(qn, name)
	defer w.b.popFunc()
	w.params(params)
	for _, c := range bodyOf(n, nameNode, params, object) {
		w.walk(c)
	}
}

// classLevelCall handles declarations written as calls in a class or module
// body: attr_*, include, require, visibility modifiers.
func (w *rubyWalker) classLevelCall(n *sitter.Node) {
	if n.ChildByFieldName("receiver") != nil {
		w.walk(n)
		return
	}
	method := w.b.text(n.ChildByFieldName("method"))
	args := namedChildren(n.ChildByFieldName("arguments"))

	switch method {
	case "require", "require_relative", "load":
		if len(args) == 1 && args[0].Kind() == "string" {
			w.b.addImport(extraction.Import{
				ImportedPath: unquote(w.b.text(args[0])),
				IsRelative:   method == "require_relative",
				IsWildcard:   true,
			}, n)
			return
		}
	case "include", "prepend":
		if t := w.b.currentType(); t != nil {
			for _, a := range args {
				w.b.addEdge(t.qn, resolver.NormalizeName(w.b.text(a)), extraction.Implements)
			}
			return
		}
	case "attr_reader", "attr_writer", "attr_accessor":
		if w.b.currentType() != nil {
			for _, a := range args {
				if a.Kind() != "simple_symbol" {
					continue
				}
				field := strings.TrimPrefix(w.b.text(a), ":")
				w.b.addSymbol(extraction.Symbol{
					Name:       field,
					Kind:       extraction.KindField,
					Visibility: w.vis,
					Signature:  method + " " + w.b.text(a),
					Modifiers:  []string{method},
				}, a)
				w.b.setField(field, "")
			}
			return
		}
	case "private", "protected", "public", "private_class_method":
		vis, _ := rubyVisibility(method)
		if len(args) == 0 && method != "private_class_method" {
			w.vis = vis
			return
		}
		if method == "private_class_method" {
			vis = extraction.VisibilityPrivate
		}
		if w.applyVisibility(args, vis, method == "private_class_method") {
			return
		}
	}
	w.walk(n)
}

// applyVisibility handles "private def x" and "private :x, :y". It reports
// false when the arguments are neither.
func (w *rubyWalker) applyVisibility(args []*sitter.Node, vis extraction.Visibility, static bool) bool {
	if len(args) == 0 {
		return false
	}
	for _, a := range args {
		switch a.Kind() {
		case "method":
			w.method(a, w.singleton || static, vis)
		case "singleton_method":
			w.method(a, true, vis)
		case "simple_symbol":
			w.setVisibility(strings.TrimPrefix(w.b.text(a), ":"), vis)
		default:
			return false
		}
	}
	return true
}

func (w *rubyWalker) setVisibility(name string, vis extraction.Visibility) {
	qn := w.b.qualify(name)
	for i := range w.b.unit.Symbols {
		if w.b.unit.Symbols[i].QualifiedName == qn {
			w.b.unit.Symbols[i].Visibility = vis
		}
	}
}

// constantAssignment records "MAX = 5"; any other assignment is walked.
func (w *rubyWalker) constantAssignment(n *sitter.Node) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left == nil || left.Kind() != "constant" {
		w.walk(n)
		return
	}
	w.b.addSymbol(extraction.Symbol{
		Name:       w.b.text(left),
		Kind:       extraction.KindConstant,
		Signature:  w.b.text(left),
		DocComment: lineDocBefore(n, w.b.source),
	}, n)
	w.walk(right)
}

func (w *rubyWalker) params(n *sitter.Node) {
	for _, p := range namedChildren(n) {
		switch p.Kind() {
		case "identifier":
			w.b.declareLocal(w.b.text(p), "")
		case "destructured_parameter":
			w.params(p)
		default:
			w.b.declareLocal(w.b.text(p.ChildByFieldName("name")), "")
		}
	}
}

// walk visits expressions in source order. In Ruby an identifier that is
// not a local variable is a method call on self.
func (w *rubyWalker) walk(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "module", "class", "singleton_class", "method", "singleton_method":
		w.body([]*sitter.Node{n})
		return
	case "method_parameters", "block_parameters", "lambda_parameters":
		w.params(n)
		return
	case "exception_variable":
		for _, c := range namedChildren(n) {
			w.b.declareLocal(w.b.text(c), "")
		}
		return
	case "assignment", "operator_assignment":
		w.assignment(n)
		return
	case "for":
		w.walk(n.ChildByFieldName("value"))
		w.declareTargets(n.ChildByFieldName("pattern"), "")
		w.walk(n.ChildByFieldName("body"))
		return
	case "identifier":
		name := w.b.text(n)
		if _, ok := w.b.lookupLocal(name); ok {
			return
		}
		w.b.addCall(extraction.CallSite{
			Expression:   name,
			Receiver:     extraction.ReceiverNone,
			Member:       name,
			ImplicitSelf: true,
		}, n)
		return
	case "super":
		w.super(n, nil)
		return
	case "call":
		w.call(n)
		w.walk(n.ChildByFieldName("receiver"))
		w.walk(n.ChildByFieldName("arguments"))
		w.walk(n.ChildByFieldName("block"))
		return
	case "comment", "simple_symbol", "hash_key_symbol", "string_content":
		return
	}
	for _, c := range namedChildren(n) {
		w.walk(c)
	}
}

func (w *rubyWalker) assignment(n *sitter.Node) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	w.walk(right)

	typ := ""
	if n.Kind() == "assignment" {
		typ = w.constructedType(right)
	}
	switch {
	case left == nil:
	case left.Kind() == "instance_variable":
		w.b.setField(strings.TrimPrefix(w.b.text(left), "@"), typ)
	case left.Kind() == "element_reference":
		for _, c := range namedChildren(left) {
			w.walk(c)
		}
	case left.Kind() == "call":
		w.walk(left.ChildByFieldName("receiver"))
	default:
		w.declareTargets(left, typ)
	}
}

func (w *rubyWalker) declareTargets(n *sitter.Node, typ string) {
	if n == nil {
		return
	}
	if n.Kind() == "identifier" {
		w.b.declareLocal(w.b.text(n), typ)
		return
	}
	walkTree(n, func(c *sitter.Node) bool {
		if c.Kind() == "identifier" {
			w.b.declareLocal(w.b.text(c), "")
			return false
		}
		return true
	})
}

// constructedType returns "User" for "User.new(...)" and "A.B" for
// "A::B.new".
func (w *rubyWalker) constructedType(n *sitter.Node) string {
	if n == nil || n.Kind() != "call" || w.b.text(n.ChildByFieldName("method")) != "new" {
		return ""
	}
	recv := n.ChildByFieldName("receiver")
	if recv == nil || (recv.Kind() != "constant" && recv.Kind() != "scope_resolution") {
		return ""
	}
	return resolver.NormalizeName(w.b.text(recv))
}

func (w *rubyWalker) call(n *sitter.Node) {
	recv := n.ChildByFieldName("receiver")
	methodNode := n.ChildByFieldName("method")
	args := n.ChildByFieldName("arguments")

	if methodNode != nil && methodNode.Kind() == "super" {
		w.super(n, args)
		return
	}

	member := w.b.text(methodNode)
	stop := args
	if stop == nil {
		stop = n.ChildByFieldName("block")
	}
	site := extraction.CallSite{
		Expression:    textBefore(n, stop, w.b.source),
		Member:        member,
		ArgumentCount: argumentCount(args),
	}

	switch {
	case methodNode == nil || rubySendMethods[member]:
		site.Dynamic = true
	case recv == nil:
		site.Receiver = extraction.ReceiverNone
		site.ImplicitSelf = true
	case recv.Kind() == "self":
		site.Receiver = extraction.ReceiverSelf
		if w.singleton || w.inStaticMethod() {
			site.Receiver = extraction.ReceiverScopeSelf
		}
	case recv.Kind() == "constant" && member == "new":
		site.Receiver = extraction.ReceiverNone
		site.Member = w.b.text(recv)
		site.Constructor = true
	case recv.Kind() == "constant":
		site.Receiver = extraction.ReceiverIdentifier
		site.ReceiverText = w.b.text(recv)
	case recv.Kind() == "scope_resolution":
		site.Receiver = extraction.ReceiverIdentifier
		site.ReceiverText = w.b.text(recv)
		site.ReceiverIsModule = true
		site.Constructor = member == "new"
	case recv.Kind() == "instance_variable":
		field := strings.TrimPrefix(w.b.text(recv), "@")
		site.Receiver = extraction.ReceiverSelfField
		site.ReceiverText = field
		site.ReceiverType, _ = w.b.fieldType(field)
	case recv.Kind() == "identifier":
		name := w.b.text(recv)
		if typ, ok := w.b.lookupLocal(name); ok {
			site.Receiver = extraction.ReceiverIdentifier
			site.ReceiverText = name
			site.ReceiverIsLocal = true
			site.ReceiverType = typ
		} else if typ, ok := w.b.fieldType(name); ok {
			// attr_reader accessor
			site.Receiver = extraction.ReceiverSelfField
			site.ReceiverText = name
			site.ReceiverType = typ
		} else {
			site.Receiver = extraction.ReceiverIdentifier
			site.ReceiverText = name
		}
	default:
		site.Receiver = extraction.ReceiverExpression
		site.ReceiverText = collapseSpace(w.b.text(recv))
	}
	w.b.addCall(site, n)
}

// super records a call to the parent's implementation of the enclosing
// method. Inside initialize that is the parent constructor.
func (w *rubyWalker) super(n, args *sitter.Node) {
	f := w.b.currentFunc()
	if f == nil {
		return
	}
	if args == nil {
		args = findChildByType(n, "argument_list")
	}
	w.b.addCall(extraction.CallSite{
		Expression:    "super",
		Receiver:      extraction.ReceiverSuper,
		Member:        f.name,
		Constructor:   f.name == "initialize",
		ArgumentCount: argumentCount(args),
	}, n)
}

func (w *rubyWalker) inStaticMethod() bool {
	f := w.b.currentFunc()
	if f == nil {
		return false
	}
	sym, ok := w.b.unit.Symbol(f.caller)
	return ok && sym.HasModifier("static")
}

func rubyVisibility(word string) (extraction.Visibility, bool) {
	switch word {
	case "private":
		return extraction.VisibilityPrivate, true
	case "protected":
		return extraction.VisibilityProtected, true
	case "public":
		return extraction.VisibilityPublic, true
	}
	return "", false
}
