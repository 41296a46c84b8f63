package fsa

import (
	"testing"

	"grammarfsa/internal/core/errors"
	"grammarfsa/internal/engine/symbol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	termA = symbol.NewTerminal("a")
	termB = symbol.NewTerminal("b")
)

func newTestGraph(t *testing.T, n int) *Graph {
	t.Helper()
	g, err := NewGraph(n)
	require.NoError(t, err)
	return g
}

func TestNewGraph_RejectsEmpty(t *testing.T) {
	_, err := NewGraph(0)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestGraph_AddEdgeAndAdjacent(t *testing.T) {
	g := newTestGraph(t, 3)

	require.NoError(t, g.AddEdge(0, Edge{Target: 1, Label: termA}))
	require.NoError(t, g.AddEdge(0, Edge{Target: 2, Label: termA}))
	require.NoError(t, g.AddEdge(0, Edge{Target: 2, Label: termB}))
	// Duplicates are appended, not suppressed.
	require.NoError(t, g.AddEdge(0, Edge{Target: 2, Label: termB}))

	all, err := g.Adjacent(0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, 4, g.EdgeCount())

	onA, err := g.AdjacentOn(0, termA)
	require.NoError(t, err)
	assert.Equal(t, []Edge{{Target: 1, Label: termA}, {Target: 2, Label: termA}}, onA)

	none, err := g.AdjacentOn(1, termA)
	require.NoError(t, err)
	assert.Empty(t, none)

	var visited []int
	require.NoError(t, g.ForEachOn(0, termB, func(e Edge) { visited = append(visited, e.Target) }))
	assert.Equal(t, []int{2, 2}, visited)
}

func TestGraph_AdjacentIsSubset(t *testing.T) {
	g := newTestGraph(t, 2)
	require.NoError(t, g.AddEdge(0, Edge{Target: 1, Label: termA}))
	require.NoError(t, g.AddEdge(0, Edge{Target: 0, Label: termB}))

	all, err := g.Adjacent(0)
	require.NoError(t, err)
	for _, label := range []symbol.Terminal{termA, termB} {
		sub, err := g.AdjacentOn(0, label)
		require.NoError(t, err)
		for _, e := range sub {
			assert.Contains(t, all, e)
			assert.Equal(t, label, e.Label)
		}
	}
}

func TestGraph_LookupErrors(t *testing.T) {
	g := newTestGraph(t, 2)

	checks := map[string]func() error{
		"adjacent negative": func() error { _, err := g.Adjacent(-1); return err },
		"adjacent high":     func() error { _, err := g.Adjacent(2); return err },
		"adjacent on":       func() error { _, err := g.AdjacentOn(5, termA); return err },
		"for each on":       func() error { return g.ForEachOn(2, termA, func(Edge) {}) },
		"is accepting":      func() error { _, err := g.IsAccepting(2); return err },
		"set accepting":     func() error { return g.SetAccepting(-3) },
		"edge source":       func() error { return g.AddEdge(9, Edge{Target: 0, Label: termA}) },
		"edge target":       func() error { return g.AddEdge(0, Edge{Target: 9, Label: termA}) },
	}

	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			err := check()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeLookup), "got %v", err)
		})
	}
	assert.Equal(t, 0, g.EdgeCount())
}

func TestGraph_AcceptingContract(t *testing.T) {
	g := newTestGraph(t, 3)
	assert.Equal(t, -1, g.Accepting())

	for i := 0; i < 3; i++ {
		ok, err := g.IsAccepting(i)
		require.NoError(t, err)
		assert.False(t, ok, "no state accepts before SetAccepting")
	}

	require.NoError(t, g.SetAccepting(2))
	ok, err := g.IsAccepting(2)
	require.NoError(t, err)
	assert.True(t, ok)

	// Exactly one accepting state: moving the flag clears the old one.
	require.NoError(t, g.SetAccepting(1))
	ok, _ = g.IsAccepting(2)
	assert.False(t, ok)
	ok, _ = g.IsAccepting(1)
	assert.True(t, ok)
	assert.Equal(t, 1, g.Accepting())
}

func TestGraph_Freeze(t *testing.T) {
	g := newTestGraph(t, 2)
	require.NoError(t, g.AddEdge(0, Edge{Target: 1, Label: termA}))
	require.NoError(t, g.SetAccepting(1))
	g.Freeze()
	assert.True(t, g.Frozen())

	err := g.AddEdge(0, Edge{Target: 1, Label: termB})
	assert.True(t, errors.IsCode(err, errors.CodeConflict))
	err = g.SetAccepting(0)
	assert.True(t, errors.IsCode(err, errors.CodeConflict))

	edges, err := g.Adjacent(0)
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}

func TestGraph_AdjacentReturnsCopy(t *testing.T) {
	g := newTestGraph(t, 2)
	require.NoError(t, g.AddEdge(0, Edge{Target: 1, Label: termA}))

	edges, _ := g.Adjacent(0)
	edges[0].Target = 0

	again, _ := g.Adjacent(0)
	assert.Equal(t, 1, again[0].Target)
}
