package extraction

// CallSite is an unresolved call expression as seen by a language adapter.
// Adapters describe the shape of the call; the resolver decides what it means.
type CallSite struct {
	Caller        string // qualified name of the owning symbol, or ModuleScope
	EnclosingType string // qualified name of the enclosing type, empty at module scope
	EnclosingName string // simple name of the enclosing function, used by bare Ruby super

	Expression string // raw callee text
	Receiver   ReceiverKind
	// ReceiverText is the raw receiver: the identifier, the field name for
	// ReceiverSelfField, or the full expression text.
	ReceiverText string
	// Member is the invoked name; empty for bare-super constructor chains.
	Member string

	Constructor bool // new X(), X.new, super(...) chains
	Dynamic     bool // computed callee, e.g. $fn(), callbacks[0](), f()()

	ReceiverType     string // tracked type of the receiver, if known
	ReceiverIsLocal  bool   // receiver is a parameter or local variable
	CalleeIsLocal    bool   // bare callee is a local variable (callable value)
	ReceiverIsModule bool   // receiver is a language-level namespace, e.g. Ruby Foo::Bar
	ImplicitSelf     bool   // the language lets a bare call target a method of the enclosing type

	ArgumentCount int
	Span          Span
}
