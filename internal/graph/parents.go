package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// DefaultMaxDepth bounds ancestor walks.
const DefaultMaxDepth = 32

// ErrCycleDepthExceeded is returned by FindAncestor when the walk hit the depth
// bound or ran into an inheritance cycle before the predicate matched.
var ErrCycleDepthExceeded = errors.New("inheritance lookup exceeded depth bound")

// ParentMap is the project-wide child → parents table. It is read-only after
// BuildParentMap returns and safe for concurrent readers.
type ParentMap struct {
	parents map[string][]extraction.InheritanceEdge
	g       graph.Graph[string, string]
	cycles  [][]string
	cyclic  map[string]bool
}

// BuildParentMap aggregates edges by child. Declaration order is kept,
// duplicate edges and self-loops are dropped.
func BuildParentMap(edges []extraction.InheritanceEdge) *ParentMap {
	pm := &ParentMap{
		parents: make(map[string][]extraction.InheritanceEdge),
		g:       graph.New(graph.StringHash, graph.Directed()),
	}

	seen := make(map[[2]string]bool)
	for _, e := range edges {
		if e.Child == "" || e.Parent == "" || e.Child == e.Parent {
			continue
		}
		key := [2]string{e.Child, e.Parent}
		if seen[key] {
			continue
		}
		seen[key] = true
		pm.parents[e.Child] = append(pm.parents[e.Child], e)

		// Vertices may already exist; only the edge matters here.
		_ = pm.g.AddVertex(e.Child)
		_ = pm.g.AddVertex(e.Parent)
		_ = pm.g.AddEdge(e.Child, e.Parent, graph.EdgeAttribute("kind", string(e.Kind)))
	}

	pm.cycles = pm.findCycles()
	pm.cyclic = make(map[string]bool)
	for _, cyc := range pm.cycles {
		for _, id := range cyc {
			pm.cyclic[id] = true
		}
	}

	return pm
}

// Parents returns the direct parents of child in declaration order.
func (pm *ParentMap) Parents(child string) []string {
	if pm == nil {
		return nil
	}
	edges := pm.parents[child]
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.Parent)
	}
	return out
}

// Superclass returns the parent a super reference targets: the first
// Extends parent, or the first parent of any kind when none extends.
func (pm *ParentMap) Superclass(child string) (string, bool) {
	if pm == nil {
		return "", false
	}
	edges := pm.parents[child]
	for _, e := range edges {
		if e.Kind == extraction.Extends {
			return e.Parent, true
		}
	}
	if len(edges) > 0 {
		return edges[0].Parent, true
	}
	return "", false
}

// Has reports whether child has at least one recorded parent.
func (pm *ParentMap) Has(child string) bool {
	return pm != nil && len(pm.parents[child]) > 0
}

// Len returns the number of children with parents.
func (pm *ParentMap) Len() int {
	if pm == nil {
		return 0
	}
	return len(pm.parents)
}

// FindAncestor walks ancestors of child breadth-first, nearest first, and
// returns the first one for which pred is true. child itself is not tested.
//
// The walk keeps a visited set and stops after maxDepth levels (DefaultMaxDepth
// when maxDepth <= 0). If the bound is hit, or a cycle was seen, before pred
// matches, the error wraps ErrCycleDepthExceeded. A clean miss returns ("", false, nil).
func (pm *ParentMap) FindAncestor(child string, pred func(string) bool, maxDepth int) (string, bool, error) {
	if pm == nil {
		return "", false, nil
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	visited := map[string]bool{child: true}
	frontier := []string{child}
	cycle := false

	for depth := 1; len(frontier) > 0; depth++ {
		if depth > maxDepth {
			return "", false, fmt.Errorf("%w: %s (max %d)", ErrCycleDepthExceeded, child, maxDepth)
		}

		var next []string
		for _, id := range frontier {
			for _, e := range pm.parents[id] {
				if visited[e.Parent] {
					cycle = true
					continue
				}
				visited[e.Parent] = true
				if pred(e.Parent) {
					return e.Parent, true, nil
				}
				next = append(next, e.Parent)
			}
		}
		frontier = next
	}

	if cycle && pm.inCycle(child) {
		return "", false, fmt.Errorf("%w: cycle reachable from %s", ErrCycleDepthExceeded, child)
	}
	return "", false, nil
}

// inCycle reports whether a cycle is reachable from child. Diamonds revisit
// nodes without being cyclic, so a revisit alone is not enough.
func (pm *ParentMap) inCycle(child string) bool {
	reach := map[string]bool{}
	stack := []string{child}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reach[id] {
			continue
		}
		reach[id] = true
		stack = append(stack, pm.Parents(id)...)
	}
	for id := range reach {
		if pm.cyclic[id] {
			return true
		}
	}
	return false
}

// Cycles returns every inheritance cycle as a sorted list of members,
// ordered by first member.
func (pm *ParentMap) Cycles() [][]string {
	if pm == nil {
		return nil
	}
	out := make([][]string, len(pm.cycles))
	for i, cyc := range pm.cycles {
		out[i] = append([]string(nil), cyc...)
	}
	return out
}

// CyclesThrough returns the cycles that contain any of the given names.
func (pm *ParentMap) CyclesThrough(names []string) [][]string {
	if pm == nil {
		return nil
	}
	var out [][]string
	for _, cyc := range pm.cycles {
		for _, n := range names {
			if containsString(cyc, n) {
				out = append(out, append([]string(nil), cyc...))
				break
			}
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (pm *ParentMap) findCycles() [][]string {
	sccs, err := graph.StronglyConnectedComponents(pm.g)
	if err != nil {
		return nil
	}

	var out [][]string
	for _, scc := range sccs {
		if len(scc) < 2 {
			continue
		}
		members := append([]string(nil), scc...)
		sort.Strings(members)
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
