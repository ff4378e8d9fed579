package resolver

import (
	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// MemberIndex maps a type's qualified name to the simple names of the members
// it declares. It is built once per project and only read afterwards.
type MemberIndex map[string]map[string]struct{}

// BuildMemberIndex indexes every type and every contained member across units.
func BuildMemberIndex(units []*extraction.ParseUnit) MemberIndex {
	idx := make(MemberIndex)
	for _, u := range units {
		if u == nil {
			continue
		}
		for _, sym := range u.Symbols {
			if sym.IsType() {
				if _, ok := idx[sym.QualifiedName]; !ok {
					idx[sym.QualifiedName] = make(map[string]struct{})
				}
			}
			if sym.Container == "" {
				continue
			}
			members, ok := idx[sym.Container]
			if !ok {
				members = make(map[string]struct{})
				idx[sym.Container] = members
			}
			members[sym.Name] = struct{}{}
		}
	}
	return idx
}

// Knows reports whether typeQN is declared somewhere in the project.
func (mi MemberIndex) Knows(typeQN string) bool {
	_, ok := mi[typeQN]
	return ok
}

// Declares reports whether typeQN declares a member with the given name.
func (mi MemberIndex) Declares(typeQN, member string) bool {
	members, ok := mi[typeQN]
	if !ok {
		return false
	}
	_, ok = members[member]
	return ok
}

// UnitIndex is the per-file lookup table of declared names.
type UnitIndex struct {
	Language  extraction.Language
	Namespace string

	types     map[string]string // simple name → qualified name
	typeQNs   map[string]bool
	functions map[string]string // module-level function name → qualified name
	symbols   map[string]bool   // every qualified name
}

// IndexUnit builds a UnitIndex. The first declaration of a simple name wins.
func IndexUnit(u *extraction.ParseUnit) *UnitIndex {
	ui := &UnitIndex{
		Language:  u.Language,
		Namespace: u.Namespace,
		types:     make(map[string]string),
		typeQNs:   make(map[string]bool),
		functions: make(map[string]string),
		symbols:   make(map[string]bool),
	}
	for _, sym := range u.Symbols {
		ui.symbols[sym.QualifiedName] = true
		switch {
		case sym.IsType():
			ui.typeQNs[sym.QualifiedName] = true
			if _, ok := ui.types[sym.Name]; !ok {
				ui.types[sym.Name] = sym.QualifiedName
			}
		case sym.Kind == extraction.KindFunction && sym.Container == "":
			if _, ok := ui.functions[sym.Name]; !ok {
				ui.functions[sym.Name] = sym.QualifiedName
			}
		}
	}
	return ui
}

// Type returns the qualified name of a type declared in the unit, accepting
// either its simple or its qualified name.
func (ui *UnitIndex) Type(name string) (string, bool) {
	if ui == nil {
		return "", false
	}
	if ui.typeQNs[name] {
		return name, true
	}
	qn, ok := ui.types[name]
	return qn, ok
}

// Function returns the qualified name of a module-level function.
func (ui *UnitIndex) Function(name string) (string, bool) {
	if ui == nil {
		return "", false
	}
	qn, ok := ui.functions[name]
	return qn, ok
}

// Declares reports whether the unit declares the qualified name.
func (ui *UnitIndex) Declares(qn string) bool {
	return ui != nil && ui.symbols[qn]
}
