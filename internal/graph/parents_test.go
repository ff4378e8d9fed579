package graph

// Test Plan for ParentMap:
// - BuildParentMap aggregates by child in declaration order
// - self-loops and duplicate edges are dropped
// - Superclass prefers Extends over Implements
// - FindAncestor returns the nearest matching ancestor (BFS)
// - FindAncestor terminates on cycles and reports ErrCycleDepthExceeded
// - FindAncestor reports ErrCycleDepthExceeded when the chain is deeper than the bound
// - diamonds are not reported as cycles
// - Cycles lists strongly connected components deterministically

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

func edge(child, parent string, kind extraction.InheritanceKind) extraction.InheritanceEdge {
	return extraction.InheritanceEdge{Child: child, Parent: parent, Kind: kind}
}

func TestBuildParentMap_Aggregation(t *testing.T) {
	t.Parallel()

	pm := BuildParentMap([]extraction.InheritanceEdge{
		edge("AdminUser", "User", extraction.Extends),
		edge("AdminUser", "Auditable", extraction.Implements),
		edge("AdminUser", "User", extraction.Extends),
		edge("Loop", "Loop", extraction.Extends),
		edge("User", "Model", extraction.Extends),
	})

	assert.Equal(t, []string{"User", "Auditable"}, pm.Parents("AdminUser"))
	assert.Equal(t, []string{"Model"}, pm.Parents("User"))
	assert.Empty(t, pm.Parents("Loop"))
	assert.Empty(t, pm.Parents("Unknown"))
	assert.Equal(t, 2, pm.Len())
}

func TestParentMap_Superclass(t *testing.T) {
	t.Parallel()

	pm := BuildParentMap([]extraction.InheritanceEdge{
		edge("Impl", "Iface", extraction.Implements),
		edge("Impl", "Base", extraction.Extends),
		edge("OnlyIface", "Iface", extraction.Implements),
	})

	parent, ok := pm.Superclass("Impl")
	require.True(t, ok)
	assert.Equal(t, "Base", parent)

	parent, ok = pm.Superclass("OnlyIface")
	require.True(t, ok)
	assert.Equal(t, "Iface", parent)

	_, ok = pm.Superclass("Base")
	assert.False(t, ok)
}

func TestParentMap_FindAncestor(t *testing.T) {
	t.Parallel()

	pm := BuildParentMap([]extraction.InheritanceEdge{
		edge("C", "B", extraction.Extends),
		edge("B", "A", extraction.Extends),
		edge("A", "Root", extraction.Extends),
	})

	t.Run("nearest match wins", func(t *testing.T) {
		t.Parallel()
		got, ok, err := pm.FindAncestor("C", func(id string) bool { return id == "A" || id == "Root" }, 0)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "A", got)
	})

	t.Run("clean miss", func(t *testing.T) {
		t.Parallel()
		_, ok, err := pm.FindAncestor("C", func(string) bool { return false }, 0)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("child itself is not tested", func(t *testing.T) {
		t.Parallel()
		_, ok, err := pm.FindAncestor("C", func(id string) bool { return id == "C" }, 0)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestParentMap_FindAncestor_Cycle(t *testing.T) {
	t.Parallel()

	pm := BuildParentMap([]extraction.InheritanceEdge{
		edge("A", "B", extraction.Extends),
		edge("B", "C", extraction.Extends),
		edge("C", "A", extraction.Extends),
	})

	_, ok, err := pm.FindAncestor("A", func(string) bool { return false }, 0)
	assert.False(t, ok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycleDepthExceeded)

	// A match inside the cycle is still found.
	got, ok, err := pm.FindAncestor("A", func(id string) bool { return id == "C" }, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "C", got)

	assert.Equal(t, [][]string{{"A", "B", "C"}}, pm.Cycles())
	assert.Len(t, pm.CyclesThrough([]string{"B"}), 1)
	assert.Empty(t, pm.CyclesThrough([]string{"Z"}))
}

func TestParentMap_FindAncestor_DepthBound(t *testing.T) {
	t.Parallel()

	var edges []extraction.InheritanceEdge
	for i := 0; i < 40; i++ {
		edges = append(edges, edge(fmt.Sprintf("T%d", i), fmt.Sprintf("T%d", i+1), extraction.Extends))
	}
	pm := BuildParentMap(edges)

	_, ok, err := pm.FindAncestor("T0", func(id string) bool { return id == "T40" }, 0)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCycleDepthExceeded)

	got, ok, err := pm.FindAncestor("T0", func(id string) bool { return id == "T40" }, 64)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "T40", got)
}

func TestParentMap_Diamond(t *testing.T) {
	t.Parallel()

	pm := BuildParentMap([]extraction.InheritanceEdge{
		edge("D", "B", extraction.Extends),
		edge("D", "C", extraction.Extends),
		edge("B", "A", extraction.Extends),
		edge("C", "A", extraction.Extends),
	})

	_, ok, err := pm.FindAncestor("D", func(string) bool { return false }, 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, pm.Cycles())
}

func TestParentMap_Nil(t *testing.T) {
	t.Parallel()

	var pm *ParentMap
	assert.Empty(t, pm.Parents("X"))
	assert.False(t, pm.Has("X"))
	_, ok, err := pm.FindAncestor("X", func(string) bool { return true }, 0)
	assert.NoError(t, err)
	assert.False(t, ok)
}
