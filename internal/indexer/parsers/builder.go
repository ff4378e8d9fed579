package parsers

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// typeFrame is one enclosing type declaration.
type typeFrame struct {
	qn     string
	name   string
	fields map[string]string // field name → declared or assigned type
}

// funcFrame is one enclosing function or method body.
type funcFrame struct {
	caller string
	name   string
	locals map[string]string // local name → tracked type, "" when unknown
}

// unitBuilder accumulates one ParseUnit while an adapter walks the tree.
// It owns the qualified-name scheme: "." separated, namespace first, and a
// "#N" suffix for the Nth declaration of an already used name.
type unitBuilder struct {
	p      *treeSitterParser
	source []byte
	path   string
	unit   *extraction.ParseUnit

	namespace string
	types     []*typeFrame
	funcs     []*funcFrame
	seen      map[string]int

	// globals holds module-level variables for languages whose function
	// bodies can read them. Nil otherwise.
	globals map[string]string
}

func newUnitBuilder(p *treeSitterParser, source []byte, filePath string, lines int) *unitBuilder {
	return &unitBuilder{
		p:      p,
		source: source,
		path:   filePath,
		unit: &extraction.ParseUnit{
			Path:        filePath,
			Language:    p.lang,
			Lines:       lines,
			Symbols:     []extraction.Symbol{},
			Imports:     []extraction.Import{},
			Inheritance: []extraction.InheritanceEdge{},
			Calls:       []extraction.Call{},
		},
		seen: make(map[string]int),
	}
}

func (b *unitBuilder) text(node *sitter.Node) string {
	return extractNodeText(node, b.source)
}

// setNamespace sets the prefix for declarations that follow. The first
// non-empty namespace becomes the unit's namespace.
func (b *unitBuilder) setNamespace(ns string) {
	b.namespace = ns
	if b.unit.Namespace == "" {
		b.unit.Namespace = ns
	}
}

// qualify returns the qualified name for a declaration in the current scope.
func (b *unitBuilder) qualify(name string) string {
	if t := b.currentType(); t != nil {
		return t.qn + "." + name
	}
	if b.namespace != "" {
		return b.namespace + "." + name
	}
	return name
}

// addSymbol appends sym and returns its final qualified name. Span, container
// and nil slices are filled in here so adapters only describe the declaration.
func (b *unitBuilder) addSymbol(sym extraction.Symbol, node *sitter.Node) string {
	if sym.QualifiedName == "" {
		sym.QualifiedName = b.qualify(sym.Name)
	}
	if n := b.seen[sym.QualifiedName]; n > 0 {
		b.seen[sym.QualifiedName] = n + 1
		sym.QualifiedName = fmt.Sprintf("%s#%d", sym.QualifiedName, n+1)
	} else {
		b.seen[sym.QualifiedName] = 1
	}
	if sym.Container == "" && !sym.IsType() {
		if t := b.currentType(); t != nil {
			sym.Container = t.qn
		}
	}
	if sym.Visibility == "" {
		sym.Visibility = extraction.VisibilityPublic
	}
	if sym.Annotations == nil {
		sym.Annotations = []string{}
	}
	if sym.Modifiers == nil {
		sym.Modifiers = []string{}
	}
	sym.Span = spanOf(node, b.path)
	b.unit.Symbols = append(b.unit.Symbols, sym)
	return sym.QualifiedName
}

// addConstructor records a constructor under the shared "<init>" member name
// so calls and declarations meet on one qualified name in every language.
func (b *unitBuilder) addConstructor(sym extraction.Symbol, node *sitter.Node) string {
	if t := b.currentType(); t != nil {
		sym.QualifiedName = t.qn + "." + extraction.ConstructorMarker
	}
	sym.Kind = extraction.KindMethod
	return b.addSymbol(sym, node)
}

func (b *unitBuilder) addImport(imp extraction.Import, node *sitter.Node) {
	imp.Line = lineOf(node)
	b.unit.Imports = append(b.unit.Imports, imp)
}

func (b *unitBuilder) addEdge(child, parent string, kind extraction.InheritanceKind) {
	parent = strings.TrimSpace(parent)
	if child == "" || parent == "" {
		return
	}
	b.unit.Inheritance = append(b.unit.Inheritance, extraction.InheritanceEdge{
		Child:  child,
		Parent: parent,
		Kind:   kind,
	})
}

// pushType enters a type body.
func (b *unitBuilder) pushType(qn, name string) {
	b.types = append(b.types, &typeFrame{qn: qn, name: name, fields: make(map[string]string)})
}

func (b *unitBuilder) popType() {
	b.types = b.types[:len(b.types)-1]
}

func (b *unitBuilder) currentType() *typeFrame {
	if len(b.types) == 0 {
		return nil
	}
	return b.types[len(b.types)-1]
}

// setField records the type of a field on the enclosing type. An empty type
// never overwrites a known one.
func (b *unitBuilder) setField(name, typ string) {
	t := b.currentType()
	if t == nil || name == "" {
		return
	}
	if _, ok := t.fields[name]; ok && typ == "" {
		return
	}
	t.fields[name] = typ
}

func (b *unitBuilder) fieldType(name string) (string, bool) {
	t := b.currentType()
	if t == nil {
		return "", false
	}
	typ, ok := t.fields[name]
	return typ, ok
}

// pushFunc enters a function body whose calls are attributed to caller.
func (b *unitBuilder) pushFunc(caller, name string) {
	b.funcs = append(b.funcs, &funcFrame{caller: caller, name: name, locals: make(map[string]string)})
}

func (b *unitBuilder) popFunc() {
	b.funcs = b.funcs[:len(b.funcs)-1]
}

func (b *unitBuilder) currentFunc() *funcFrame {
	if len(b.funcs) == 0 {
		return nil
	}
	return b.funcs[len(b.funcs)-1]
}

// shareModuleScope makes variables assigned at module scope visible to every
// body in the file, as Python and JavaScript scoping does.
func (b *unitBuilder) shareModuleScope() {
	b.globals = make(map[string]string)
}

// declareLocal binds a parameter or local variable in the innermost body.
// Outside any body it binds a module-level variable when the module scope is
// shared; class bodies bind nothing.
func (b *unitBuilder) declareLocal(name, typ string) {
	if name == "" {
		return
	}
	f := b.currentFunc()
	if f == nil {
		if b.globals != nil && b.currentType() == nil {
			b.globals[name] = typ
		}
		return
	}
	f.locals[name] = typ
}

// lookupLocal searches enclosing bodies from the innermost outwards, so
// closures see the variables of the function that contains them. Module
// variables come last.
func (b *unitBuilder) lookupLocal(name string) (string, bool) {
	for i := len(b.funcs) - 1; i >= 0; i-- {
		if typ, ok := b.funcs[i].locals[name]; ok {
			return typ, true
		}
	}
	typ, ok := b.globals[name]
	return typ, ok
}

// caller is the qualified name calls in the current position belong to.
func (b *unitBuilder) caller() string {
	if f := b.currentFunc(); f != nil {
		return f.caller
	}
	if t := b.currentType(); t != nil {
		return t.qn
	}
	return extraction.ModuleScope
}

// addCall fills in the scope fields of site and appends it.
func (b *unitBuilder) addCall(site extraction.CallSite, node *sitter.Node) {
	site.Caller = b.caller()
	if t := b.currentType(); t != nil {
		site.EnclosingType = t.qn
	}
	if f := b.currentFunc(); f != nil {
		site.EnclosingName = f.name
	}
	site.Span = spanOf(node, b.path)
	b.unit.CallSites = append(b.unit.CallSites, site)
}

// unsupported records a construct the adapter skipped. Extraction goes on.
func (b *unitBuilder) unsupported(node *sitter.Node, construct string) {
	uc := extraction.UnsupportedConstruct{Construct: construct, Line: lineOf(node)}
	b.unit.Diagnostics.Unsupported = append(b.unit.Diagnostics.Unsupported, uc)
	b.p.logger.Debug("skipping construct",
		"error", &UnsupportedConstructError{
			Language:  b.p.lang,
			Path:      b.path,
			Construct: construct,
			Line:      uc.Line,
		})
}

// reportSyntaxErrors records the outermost ERROR and MISSING nodes. The
// grammar recovers around them, so the rest of the file is still extracted.
func (b *unitBuilder) reportSyntaxErrors(root *sitter.Node) {
	if root == nil || !root.HasError() {
		return
	}
	walkTree(root, func(n *sitter.Node) bool {
		switch {
		case n.IsError():
			b.unsupported(n, "syntax error")
			return false
		case n.IsMissing():
			b.unsupported(n, "missing "+n.Kind())
			return false
		}
		return n.HasError()
	})
}

func (b *unitBuilder) build() *extraction.ParseUnit {
	b.bindGlobals()
	return b.unit
}

// bindGlobals marks call sites that read a module variable assigned after
// the body containing them was walked.
func (b *unitBuilder) bindGlobals() {
	if len(b.globals) == 0 {
		return
	}
	for i := range b.unit.CallSites {
		site := &b.unit.CallSites[i]
		switch site.Receiver {
		case extraction.ReceiverNone:
			if _, ok := b.globals[site.Member]; ok && !site.Constructor && !site.Dynamic {
				site.CalleeIsLocal = true
			}
		case extraction.ReceiverIdentifier:
			if site.ReceiverIsLocal || site.ReceiverIsModule {
				continue
			}
			if typ, ok := b.globals[site.ReceiverText]; ok {
				site.ReceiverIsLocal = true
				if site.ReceiverType == "" {
					site.ReceiverType = typ
				}
			}
		}
	}
}
