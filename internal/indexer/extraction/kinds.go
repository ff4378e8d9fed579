package extraction

// SymbolKind classifies a declaration.
type SymbolKind string

const (
	KindClass     SymbolKind = "class"
	KindInterface SymbolKind = "interface"
	KindEnum      SymbolKind = "enum"
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindField     SymbolKind = "field"
	KindConstant  SymbolKind = "constant"
)

// Visibility is the access level of a declaration.
type Visibility string

const (
	VisibilityPublic         Visibility = "public"
	VisibilityProtected      Visibility = "protected"
	VisibilityPrivate        Visibility = "private"
	VisibilityPackagePrivate Visibility = "package_private"
)

// InheritanceKind distinguishes class extension from interface implementation.
type InheritanceKind string

const (
	Extends    InheritanceKind = "extends"
	Implements InheritanceKind = "implements"
)

// CallType classifies the target of a call site.
type CallType string

const (
	CallFunction     CallType = "function"
	CallMethod       CallType = "method"
	CallStaticMethod CallType = "static_method"
	CallConstructor  CallType = "constructor"
	CallDynamic      CallType = "dynamic"
)

// Valid reports whether t is one of the fixed call types.
func (t CallType) Valid() bool {
	switch t {
	case CallFunction, CallMethod, CallStaticMethod, CallConstructor, CallDynamic:
		return true
	}
	return false
}

// Confidence tags whether a resolution relied on an unverified heuristic.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// ReceiverKind describes the syntactic shape of a call's receiver.
type ReceiverKind int

const (
	// ReceiverNone is a bare call: foo(), new Foo().
	ReceiverNone ReceiverKind = iota
	// ReceiverSelf is an instance self reference: this, self, $this.
	ReceiverSelf
	// ReceiverScopeSelf is a scope-qualified self reference: self::, static::, cls.
	ReceiverScopeSelf
	// ReceiverSuper is super, super(), parent::.
	ReceiverSuper
	// ReceiverIdentifier is a single identifier: Foo.bar(), foo.bar(), Foo::bar().
	ReceiverIdentifier
	// ReceiverSelfField is a field reached through self: this.repo.find().
	ReceiverSelfField
	// ReceiverExpression is any other receiver: a.b.c(), f().g(), arr[0].h().
	ReceiverExpression
)

func (k ReceiverKind) String() string {
	switch k {
	case ReceiverNone:
		return "none"
	case ReceiverSelf:
		return "self"
	case ReceiverScopeSelf:
		return "scope_self"
	case ReceiverSuper:
		return "super"
	case ReceiverIdentifier:
		return "identifier"
	case ReceiverSelfField:
		return "self_field"
	case ReceiverExpression:
		return "expression"
	}
	return "unknown"
}
