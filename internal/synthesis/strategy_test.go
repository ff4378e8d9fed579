package synthesis

// Test Plan for SelectStrategy and GroupSymbols:
// - below or at the large pair → Standard, no triggers
// - one over either large threshold → Hierarchical with that trigger
// - exactly at the super-large pair → Hierarchical, not MultiRound
// - one over either super-large threshold → MultiRound
// - both counts over → both triggers recorded
// - GroupSymbols clusters by container, CamelCase suffix and name prefix
// - singleton stems fall into the module group; order is first appearance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mvp-joe/project-scribe/internal/config"
	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

func TestSelectStrategy(t *testing.T) {
	t.Parallel()

	th := config.Default().Thresholds // 1000/50, 3000/150
	lines := extraction.TriggerExcessiveLines
	syms := extraction.TriggerExcessiveSymbols

	tests := []struct {
		name         string
		lines, count int
		want         Strategy
		triggers     []extraction.Trigger
	}{
		{"small", 10, 3, StrategyStandard, nil},
		{"at large pair", 1000, 50, StrategyStandard, nil},
		{"one line over large", 1001, 50, StrategyHierarchical, []extraction.Trigger{lines}},
		{"one symbol over large", 1000, 51, StrategyHierarchical, []extraction.Trigger{syms}},
		{"at super-large pair", 3000, 150, StrategyHierarchical, []extraction.Trigger{lines, syms}},
		{"one line over super-large", 3001, 10, StrategyMultiRound, []extraction.Trigger{lines}},
		{"one symbol over super-large", 10, 151, StrategyMultiRound, []extraction.Trigger{syms}},
		{"both over super-large", 5000, 400, StrategyMultiRound, []extraction.Trigger{lines, syms}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sel := SelectStrategy(tt.lines, tt.count, th)
			assert.Equal(t, tt.want, sel.Strategy)
			assert.Equal(t, tt.triggers, sel.Triggers)
		})
	}
}

func TestGroupSymbols(t *testing.T) {
	t.Parallel()

	symbols := []extraction.Symbol{
		{Name: "OrderService", QualifiedName: "OrderService", Kind: extraction.KindClass},
		{Name: "place", QualifiedName: "OrderService.place", Kind: extraction.KindMethod, Container: "OrderService"},
		{Name: "UserController", QualifiedName: "UserController", Kind: extraction.KindClass},
		{Name: "OrderController", QualifiedName: "OrderController", Kind: extraction.KindClass},
		{Name: "parse_header", QualifiedName: "parse_header", Kind: extraction.KindFunction},
		{Name: "parse_body", QualifiedName: "parse_body", Kind: extraction.KindFunction},
		{Name: "main", QualifiedName: "main", Kind: extraction.KindFunction},
		{Name: "Money", QualifiedName: "Money", Kind: extraction.KindClass},
	}

	groups := GroupSymbols(symbols)

	names := make([]string, 0, len(groups))
	sizes := make([]int, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
		sizes = append(sizes, len(g.Symbols))
	}
	assert.Equal(t, []string{"OrderService", "*Controller", "parse*", ModuleGroup, "Money"}, names)
	assert.Equal(t, []int{2, 2, 2, 1, 1}, sizes)
	assert.Equal(t, "UserController", groups[1].Symbols[0].Name, "declaration order kept")
}

func TestNameStems(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "parse", namePrefix("parseHeader"))
	assert.Equal(t, "load", namePrefix("_load_users"))
	assert.Equal(t, "run", namePrefix("run"))
	assert.Equal(t, "Controller", nameSuffix("UserController"))
	assert.Equal(t, "Server", nameSuffix("HTTPServer"))
	assert.Equal(t, "repo", nameSuffix("user_repo"))
	assert.Equal(t, "Order", nameSuffix("Order"))
}
