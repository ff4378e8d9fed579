package resolver

import (
	"strings"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// QualifyInheritance rewrites the raw parent names an adapter recorded into
// qualified names. A parent declared in the unit wins, then an import alias,
// then a type of the same namespace known to the project. Anything else keeps
// its written form.
func QualifyInheritance(u *extraction.ParseUnit, aliases *AliasMap, members MemberIndex) []extraction.InheritanceEdge {
	unit := IndexUnit(u)
	r := &Resolver{members: members}

	out := make([]extraction.InheritanceEdge, 0, len(u.Inheritance))
	for _, e := range u.Inheritance {
		parent := e.Parent
		if qn, ok := unit.Type(parent); ok {
			parent = qn
		} else if qn, known := r.qualifyType(parent, aliases, unit); known {
			parent = qn
		} else if u.Namespace != "" && sameNamespaceLookup(u.Language) && !strings.Contains(parent, ".") {
			parent = u.Namespace + "." + parent
		}
		if parent == e.Child || parent == "" {
			continue
		}
		out = append(out, extraction.InheritanceEdge{Child: e.Child, Parent: parent, Kind: e.Kind})
	}
	return out
}

// sameNamespaceLookup reports whether unqualified type names resolve against
// the file's own package or namespace.
func sameNamespaceLookup(lang extraction.Language) bool {
	return lang == extraction.LanguageJava || lang == extraction.LanguagePHP
}

// ResolveUnit returns a resolved copy of u: every call site becomes exactly
// one Call, and the resolution counters and wildcard imports are recorded in
// the copy's diagnostics. u itself is not modified.
func (r *Resolver) ResolveUnit(u *extraction.ParseUnit) *extraction.ParseUnit {
	out := u.Clone()
	aliases := BuildAliasMap(u.Imports)
	unit := IndexUnit(u)

	out.Diagnostics.WildcardImports = aliases.Wildcards()
	out.Diagnostics.LowConfidence = 0
	out.Diagnostics.Unresolved = 0
	out.Diagnostics.DepthExceeded = 0

	out.Calls = make([]extraction.Call, 0, len(u.CallSites))
	for _, site := range u.CallSites {
		call, res := r.resolve(site, aliases, unit)
		if call.Confidence == extraction.ConfidenceLow {
			out.Diagnostics.LowConfidence++
		}
		if call.ResolvedCallee == nil {
			out.Diagnostics.Unresolved++
		}
		if res.depthExceeded {
			out.Diagnostics.DepthExceeded++
		}
		out.Calls = append(out.Calls, call)
	}

	var types []string
	for _, sym := range u.Symbols {
		if sym.IsType() {
			types = append(types, sym.QualifiedName)
		}
	}
	out.Diagnostics.InheritanceCycles = r.parents.CyclesThrough(types)

	if out.Diagnostics.LowConfidence > 0 || out.Diagnostics.DepthExceeded > 0 {
		r.logger.Debug("resolved unit",
			"path", u.Path,
			"calls", len(out.Calls),
			"low_confidence", out.Diagnostics.LowConfidence,
			"unresolved", out.Diagnostics.Unresolved,
			"depth_exceeded", out.Diagnostics.DepthExceeded)
	}

	return out
}
