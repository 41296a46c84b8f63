// Package fsa stores the compiled finite-state graph: integer states, labelled
// edges between them and the single accepting state.
package fsa

import (
	"fmt"

	"grammarfsa/internal/core/errors"
	"grammarfsa/internal/engine/symbol"
)

// Edge is a transition to Target that consumes Label.
type Edge struct {
	Target int
	Label  symbol.Terminal
}

func (e Edge) String() string {
	return fmt.Sprintf("-%s-> %d", e.Label, e.Target)
}

const noAccepting = -1

type state struct {
	edges   []Edge
	byLabel map[symbol.Terminal][]Edge
}

// Graph is an adjacency structure over states [0, StateCount). It is built
// once and frozen; a frozen graph is safe for concurrent readers.
type Graph struct {
	states    []state
	accepting int
	edgeCount int
	frozen    bool
}

func NewGraph(stateCount int) (*Graph, error) {
	if stateCount < 1 {
		return nil, errors.Newf(errors.CodeValidationError, "graph needs at least one state, got %d", stateCount)
	}
	return &Graph{
		states:    make([]state, stateCount),
		accepting: noAccepting,
	}, nil
}

func (g *Graph) StateCount() int { return len(g.states) }
func (g *Graph) EdgeCount() int  { return g.edgeCount }
func (g *Graph) Frozen() bool    { return g.frozen }

// Freeze makes the graph read-only. Later AddEdge and SetAccepting calls fail.
func (g *Graph) Freeze() { g.frozen = true }

// AddEdge appends e to source's outgoing edges. Duplicates are kept.
func (g *Graph) AddEdge(source int, e Edge) error {
	if err := g.checkMutable("add edge"); err != nil {
		return err
	}
	if err := g.check(source, "add edge"); err != nil {
		return err
	}
	if err := g.check(e.Target, "add edge target"); err != nil {
		return err
	}

	st := &g.states[source]
	st.edges = append(st.edges, e)
	if st.byLabel == nil {
		st.byLabel = make(map[symbol.Terminal][]Edge)
	}
	st.byLabel[e.Label] = append(st.byLabel[e.Label], e)
	g.edgeCount++
	return nil
}

// Adjacent returns every edge leaving source.
func (g *Graph) Adjacent(source int) ([]Edge, error) {
	if err := g.check(source, "adjacent"); err != nil {
		return nil, err
	}
	return cloneEdges(g.states[source].edges), nil
}

// AdjacentOn returns the edges leaving source whose label equals t.
func (g *Graph) AdjacentOn(source int, t symbol.Terminal) ([]Edge, error) {
	if err := g.check(source, "adjacent on label"); err != nil {
		return nil, err
	}
	return cloneEdges(g.states[source].byLabel[t]), nil
}

// SetAccepting makes index the accepting state, replacing any previous one.
func (g *Graph) SetAccepting(index int) error {
	if err := g.checkMutable("set accepting"); err != nil {
		return err
	}
	if err := g.check(index, "set accepting"); err != nil {
		return err
	}
	g.accepting = index
	return nil
}

// IsAccepting reports whether index is the accepting state. An accepting
// state is one where recognition succeeds once all input is consumed.
func (g *Graph) IsAccepting(index int) (bool, error) {
	if err := g.check(index, "is accepting"); err != nil {
		return false, err
	}
	return index == g.accepting, nil
}

// Accepting returns the accepting state index, or -1 when none is set.
func (g *Graph) Accepting() int { return g.accepting }

// ForEachOn calls fn for each edge AdjacentOn would return, without copying.
func (g *Graph) ForEachOn(source int, t symbol.Terminal, fn func(Edge)) error {
	if err := g.check(source, "adjacent on label"); err != nil {
		return err
	}
	for _, e := range g.states[source].byLabel[t] {
		fn(e)
	}
	return nil
}

func (g *Graph) check(index int, op string) error {
	if index < 0 || index >= len(g.states) {
		de := errors.Newf(errors.CodeLookup, "state %d outside [0, %d)", index, len(g.states))
		de.WithContext(errors.CtxOperation, op).WithContext(errors.CtxState, index)
		return de
	}
	return nil
}

func (g *Graph) checkMutable(op string) error {
	if g.frozen {
		return errors.AddContext(errors.New(errors.CodeConflict, "graph is frozen"), errors.CtxOperation, op)
	}
	return nil
}

func cloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}
