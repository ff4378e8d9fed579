package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// DefaultDepth is the traversal depth used when a query passes depth <= 0.
const DefaultDepth = 3

// Node is a symbol in the call graph. Unresolved or external callees get a
// node with an empty File.
type Node struct {
	ID        string                `json:"id" yaml:"id"`
	Kind      extraction.SymbolKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	File      string                `json:"file,omitempty" yaml:"file,omitempty"`
	StartLine int                   `json:"start_line,omitempty" yaml:"start_line,omitempty"`
	EndLine   int                   `json:"end_line,omitempty" yaml:"end_line,omitempty"`
}

// Result is one node reached by a traversal, with the depth it was first found at.
type Result struct {
	Node  *Node `json:"node" yaml:"node"`
	Depth int   `json:"depth" yaml:"depth"`
}

// CallGraph is a directed caller → callee graph over resolved calls.
type CallGraph struct {
	g       graph.Graph[string, *Node]
	callers map[string][]string
	callees map[string][]string
}

// NewCallGraph builds a call graph from resolved units. Dynamic and
// unresolved calls are skipped.
func NewCallGraph(units []*extraction.ParseUnit) (*CallGraph, error) {
	cg := &CallGraph{
		g:       graph.New(func(n *Node) string { return n.ID }, graph.Directed()),
		callers: make(map[string][]string),
		callees: make(map[string][]string),
	}

	for _, u := range units {
		for _, sym := range u.Symbols {
			node := &Node{
				ID:        sym.QualifiedName,
				Kind:      sym.Kind,
				File:      sym.Span.File,
				StartLine: sym.Span.StartLine,
				EndLine:   sym.Span.EndLine,
			}
			if err := cg.g.AddVertex(node); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
				return nil, fmt.Errorf("failed to add node %s: %w", node.ID, err)
			}
		}
	}

	for _, u := range units {
		for _, c := range u.Calls {
			if c.ResolvedCallee == nil {
				continue
			}
			cg.addCall(c.Caller, *c.ResolvedCallee)
		}
	}

	return cg, nil
}

// Edge is one resolved caller → callee pair, as loaded from storage.
type Edge struct {
	From string
	To   string
}

// NewCallGraphFromEdges builds a call graph from stored edges. Nodes carry
// only their IDs.
func NewCallGraphFromEdges(edges []Edge) *CallGraph {
	cg := &CallGraph{
		g:       graph.New(func(n *Node) string { return n.ID }, graph.Directed()),
		callers: make(map[string][]string),
		callees: make(map[string][]string),
	}
	for _, e := range edges {
		if e.From == "" || e.To == "" {
			continue
		}
		cg.addCall(e.From, e.To)
	}
	return cg
}

func (cg *CallGraph) addCall(from, to string) {
	for _, id := range []string{from, to} {
		if _, err := cg.g.Vertex(id); err != nil {
			_ = cg.g.AddVertex(&Node{ID: id})
		}
	}
	if err := cg.g.AddEdge(from, to); err != nil {
		// Repeated calls between the same pair collapse into one edge.
		return
	}
	cg.callees[from] = append(cg.callees[from], to)
	cg.callers[to] = append(cg.callers[to], from)
}

// Callers returns symbols that call target, transitively up to depth.
func (cg *CallGraph) Callers(target string, depth int) []Result {
	return cg.traverse(target, depth, cg.callers)
}

// Callees returns symbols called by target, transitively up to depth.
func (cg *CallGraph) Callees(target string, depth int) []Result {
	return cg.traverse(target, depth, cg.callees)
}

func (cg *CallGraph) traverse(target string, depth int, index map[string][]string) []Result {
	if depth <= 0 {
		depth = DefaultDepth
	}

	visited := map[string]bool{target: true}
	frontier := []string{target}
	var results []Result

	for d := 1; d <= depth && len(frontier) > 0; d++ {
		var next []string
		for _, id := range frontier {
			for _, nb := range index[id] {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				node, err := cg.g.Vertex(nb)
				if err != nil {
					continue
				}
				results = append(results, Result{Node: node, Depth: d})
				next = append(next, nb)
			}
		}
		sort.Strings(next)
		frontier = next
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Depth != results[j].Depth {
			return results[i].Depth < results[j].Depth
		}
		return results[i].Node.ID < results[j].Node.ID
	})
	return results
}

// Order returns the number of nodes in the graph.
func (cg *CallGraph) Order() int {
	n, err := cg.g.Order()
	if err != nil {
		return 0
	}
	return n
}
