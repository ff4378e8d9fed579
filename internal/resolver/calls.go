package resolver

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mvp-joe/project-scribe/internal/graph"
	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// Resolver turns adapter call sites into classified calls. It holds read-only
// references to the project ParentMap and MemberIndex and is safe for
// concurrent use.
type Resolver struct {
	parents  *graph.ParentMap
	members  MemberIndex
	maxDepth int
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxDepth sets the ancestor walk bound used for super calls.
func WithMaxDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Resolver. Either table may be nil for single-file use.
func New(parents *graph.ParentMap, members MemberIndex, opts ...Option) *Resolver {
	r := &Resolver{
		parents:  parents,
		members:  members,
		maxDepth: graph.DefaultMaxDepth,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// outcome carries resolution side information that feeds diagnostics.
type outcome struct {
	depthExceeded bool
}

// ResolveCall classifies one call site. It never panics: any failure falls
// back to an unresolved Dynamic call.
func (r *Resolver) ResolveCall(site extraction.CallSite, aliases *AliasMap, unit *UnitIndex) extraction.Call {
	call, _ := r.resolve(site, aliases, unit)
	return call
}

func (r *Resolver) resolve(site extraction.CallSite, aliases *AliasMap, unit *UnitIndex) (call extraction.Call, out outcome) {
	call = extraction.Call{
		Caller:           site.Caller,
		CalleeExpression: site.Expression,
		ArgumentCount:    site.ArgumentCount,
		Span:             site.Span,
	}
	if call.Caller == "" {
		call.Caller = extraction.ModuleScope
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("call resolution panicked", "expr", site.Expression, "line", site.Span.StartLine, "panic", rec)
			call = dynamic(call)
		}
	}()

	if site.Dynamic {
		return dynamic(call), out
	}

	switch site.Receiver {
	case extraction.ReceiverSelf:
		call = r.resolveSelf(call, site, aliases)
	case extraction.ReceiverScopeSelf:
		call = r.resolveScopeSelf(call, site, aliases)
	case extraction.ReceiverSuper:
		call, out = r.resolveSuper(call, site, aliases)
	case extraction.ReceiverSelfField:
		call = r.resolveTyped(call, site, aliases, unit, site.ReceiverType, site.ReceiverText)
	case extraction.ReceiverIdentifier:
		call = r.resolveIdentifier(call, site, aliases, unit)
	case extraction.ReceiverExpression:
		call = r.resolveExpression(call, site, aliases)
	case extraction.ReceiverNone:
		call = r.resolveBare(call, site, aliases, unit)
	default:
		call = dynamic(call)
	}

	if !call.CallType.Valid() {
		call = dynamic(call)
	}
	return call, out
}

// resolveSelf handles this.m(), self.m(), $this->m() and this(...).
func (r *Resolver) resolveSelf(call extraction.Call, site extraction.CallSite, aliases *AliasMap) extraction.Call {
	if site.EnclosingType == "" {
		return dynamic(call)
	}
	if site.Constructor {
		return resolved(call, extraction.CallConstructor, constructorOf(site.EnclosingType), extraction.ConfidenceHigh, aliases)
	}
	return resolved(call, extraction.CallMethod, site.EnclosingType+"."+site.Member, extraction.ConfidenceHigh, aliases)
}

// resolveScopeSelf handles self::m(), static::m(), cls.m() and new self().
func (r *Resolver) resolveScopeSelf(call extraction.Call, site extraction.CallSite, aliases *AliasMap) extraction.Call {
	if site.EnclosingType == "" {
		return dynamic(call)
	}
	if site.Constructor {
		return resolved(call, extraction.CallConstructor, constructorOf(site.EnclosingType), extraction.ConfidenceHigh, aliases)
	}
	return resolved(call, extraction.CallStaticMethod, site.EnclosingType+"."+site.Member, extraction.ConfidenceHigh, aliases)
}

// resolveSuper looks up the immediate parent. When the project declares that
// parent and it lacks the member, the ancestor chain is walked to the first
// type that declares it. Members of types outside the project are not verified.
func (r *Resolver) resolveSuper(call extraction.Call, site extraction.CallSite, aliases *AliasMap) (extraction.Call, outcome) {
	var out outcome
	call.CallType = extraction.CallMethod
	if site.Constructor {
		call.CallType = extraction.CallConstructor
	}

	parent, ok := r.parents.Superclass(site.EnclosingType)
	if site.EnclosingType == "" || !ok {
		return unresolved(call), out
	}

	if site.Constructor {
		return resolved(call, extraction.CallConstructor, constructorOf(parent), extraction.ConfidenceHigh, aliases), out
	}

	target := parent
	if r.members.Knows(parent) && !r.members.Declares(parent, site.Member) {
		anc, found, err := r.parents.FindAncestor(parent, func(id string) bool {
			return r.members.Declares(id, site.Member)
		}, r.maxDepth)
		switch {
		case errors.Is(err, graph.ErrCycleDepthExceeded):
			r.logger.Debug("super lookup gave up", "type", site.EnclosingType, "member", site.Member, "error", err)
			out.depthExceeded = true
			return unresolved(call), out
		case found:
			target = anc
		}
	}

	return resolved(call, extraction.CallMethod, target+"."+site.Member, extraction.ConfidenceHigh, aliases), out
}

// resolveIdentifier handles a single-identifier receiver: Foo.bar(), foo.bar(),
// Foo::bar(), pd.read_csv().
func (r *Resolver) resolveIdentifier(call extraction.Call, site extraction.CallSite, aliases *AliasMap, unit *UnitIndex) extraction.Call {
	recv := site.ReceiverText
	if recv == "" {
		return dynamic(call)
	}

	if site.ReceiverIsLocal || site.ReceiverType != "" {
		return r.resolveTyped(call, site, aliases, unit, site.ReceiverType, recv)
	}

	if site.ReceiverIsModule {
		name := NormalizeName(recv)
		if qn, ok := unit.Type(name); ok {
			name = qn
		}
		if site.Constructor {
			return resolved(call, extraction.CallConstructor, constructorOf(name), extraction.ConfidenceHigh, aliases)
		}
		return resolved(call, extraction.CallStaticMethod, name+"."+site.Member, extraction.ConfidenceHigh, aliases)
	}

	if entry, ok := aliases.Lookup(recv); ok {
		switch {
		case site.Constructor:
			return resolved(call, extraction.CallConstructor, constructorOf(entry.Target), extraction.ConfidenceHigh, aliases)
		case entry.Module || !isCapitalized(recv):
			return resolved(call, extraction.CallFunction, recv+"."+site.Member, extraction.ConfidenceHigh, aliases)
		default:
			return resolved(call, extraction.CallStaticMethod, recv+"."+site.Member, extraction.ConfidenceHigh, aliases)
		}
	}

	if qn, ok := unit.Type(recv); ok {
		if site.Constructor {
			return resolved(call, extraction.CallConstructor, constructorOf(qn), extraction.ConfidenceHigh, aliases)
		}
		return resolved(call, extraction.CallStaticMethod, qn+"."+site.Member, extraction.ConfidenceHigh, aliases)
	}

	if isCapitalized(recv) {
		name, known := r.qualifyType(recv, aliases, unit)
		confidence := extraction.ConfidenceLow
		if known {
			confidence = extraction.ConfidenceHigh
		}
		if site.Constructor {
			return resolved(call, extraction.CallConstructor, constructorOf(name), confidence, aliases)
		}
		return resolved(call, extraction.CallStaticMethod, name+"."+site.Member, confidence, aliases)
	}

	// A lowercase receiver nobody declared: module-level variable or global object.
	return r.resolveTyped(call, site, aliases, unit, "", recv)
}

// resolveTyped classifies a method call on a variable or field. A tracked type
// gives a high-confidence answer; otherwise the capitalized variable name is
// proposed as the type with low confidence.
func (r *Resolver) resolveTyped(call extraction.Call, site extraction.CallSite, aliases *AliasMap, unit *UnitIndex, typ, variable string) extraction.Call {
	if typ != "" {
		name, _ := r.qualifyType(typ, aliases, unit)
		return resolved(call, extraction.CallMethod, name+"."+site.Member, extraction.ConfidenceHigh, aliases)
	}
	guess := capitalize(strings.TrimLeft(variable, "$@_"))
	if guess == "" {
		return dynamic(call)
	}
	return resolved(call, extraction.CallMethod, guess+"."+site.Member, extraction.ConfidenceLow, aliases)
}

// resolveExpression handles multi-segment receivers. Only dotted paths rooted
// at a module alias (os.path.join) are resolvable without type inference.
func (r *Resolver) resolveExpression(call extraction.Call, site extraction.CallSite, aliases *AliasMap) extraction.Call {
	head, _ := splitHead(site.ReceiverText)
	if entry, ok := aliases.Lookup(head); ok && entry.Module && isDottedPath(site.ReceiverText) {
		return resolved(call, extraction.CallFunction, site.ReceiverText+"."+site.Member, extraction.ConfidenceHigh, aliases)
	}
	return dynamic(call)
}

// resolveBare handles calls without a receiver: foo(), Foo(), new Foo().
func (r *Resolver) resolveBare(call extraction.Call, site extraction.CallSite, aliases *AliasMap, unit *UnitIndex) extraction.Call {
	name := site.Member
	if name == "" {
		return dynamic(call)
	}

	if site.Constructor {
		qn, known := r.qualifyType(name, aliases, unit)
		confidence := extraction.ConfidenceLow
		if known {
			confidence = extraction.ConfidenceHigh
		}
		return resolved(call, extraction.CallConstructor, constructorOf(qn), confidence, aliases)
	}

	if site.CalleeIsLocal {
		return dynamic(call)
	}

	if qn, ok := unit.Type(name); ok {
		return resolved(call, extraction.CallConstructor, constructorOf(qn), extraction.ConfidenceHigh, aliases)
	}

	if site.ImplicitSelf && site.EnclosingType != "" {
		if qn := site.EnclosingType + "." + name; unit.Declares(qn) {
			return resolved(call, extraction.CallMethod, qn, extraction.ConfidenceHigh, aliases)
		}
	}

	if qn, ok := unit.Function(name); ok {
		return resolved(call, extraction.CallFunction, qn, extraction.ConfidenceHigh, aliases)
	}

	if entry, ok := aliases.Lookup(name); ok {
		if r.members.Knows(entry.Target) {
			return resolved(call, extraction.CallConstructor, constructorOf(entry.Target), extraction.ConfidenceHigh, aliases)
		}
		if isCapitalized(name) && !entry.Module && unit != nil && unit.Language == extraction.LanguagePython {
			return resolved(call, extraction.CallConstructor, constructorOf(entry.Target), extraction.ConfidenceLow, aliases)
		}
		return resolved(call, extraction.CallFunction, name, extraction.ConfidenceHigh, aliases)
	}

	if site.ImplicitSelf && site.EnclosingType != "" {
		// Probably inherited from a parent this unit cannot see.
		return resolved(call, extraction.CallMethod, site.EnclosingType+"."+name, extraction.ConfidenceLow, aliases)
	}

	// Builtins and names from wildcard imports keep their syntactic identity.
	return resolved(call, extraction.CallFunction, name, extraction.ConfidenceLow, aliases)
}

// qualifyType maps a type name to its qualified form and reports whether the
// mapping is backed by a declaration or import.
func (r *Resolver) qualifyType(name string, aliases *AliasMap, unit *UnitIndex) (string, bool) {
	name = NormalizeName(name)
	if qn, ok := unit.Type(name); ok {
		return qn, true
	}
	head, _ := splitHead(name)
	if _, ok := aliases.Lookup(head); ok {
		return ResolveAlias(name, aliases), true
	}
	if unit != nil && unit.Namespace != "" {
		if qn := unit.Namespace + "." + name; r.members.Knows(qn) {
			return qn, true
		}
	}
	if r.members.Knows(name) {
		return name, true
	}
	return name, strings.Contains(name, ".")
}

func resolved(call extraction.Call, typ extraction.CallType, name string, confidence extraction.Confidence, aliases *AliasMap) extraction.Call {
	call.CallType = typ
	call.ResolvedCallee = extraction.StringPtr(ResolveAlias(name, aliases))
	call.Confidence = confidence
	return call
}

func unresolved(call extraction.Call) extraction.Call {
	call.ResolvedCallee = nil
	call.Confidence = extraction.ConfidenceLow
	return call
}

func dynamic(call extraction.Call) extraction.Call {
	call.CallType = extraction.CallDynamic
	return unresolved(call)
}

func constructorOf(typeQN string) string {
	return typeQN + "." + extraction.ConstructorMarker
}

func isCapitalized(s string) bool {
	s = strings.TrimLeft(s, "$@:")
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func isDottedPath(s string) bool {
	if s == "" {
		return false
	}
	for _, seg := range strings.Split(s, ".") {
		if seg == "" {
			return false
		}
		for i, r := range seg {
			if !(r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r))) {
				return false
			}
		}
	}
	return true
}
