package search

import (
	"log/slog"
	"time"

	"grammarfsa/internal/core/errors"
	"grammarfsa/internal/engine/fsa"
	"grammarfsa/internal/engine/grammar"
	"grammarfsa/internal/engine/symbol"
	"grammarfsa/internal/shared/observability"
)

// Compile builds the state graph for g and lex and returns an automaton
// starting at start.
//
// States [0, K) follow g.NonTerminals() then lex.NonTerminals(); state K
// accepts. A grammar rule LHS -> t RHS becomes the edge LHS -t-> RHS. Every
// terminal of every lexical sequence for LHS becomes its own edge LHS -t-> K,
// so a multi-word entry licenses any one of its words rather than the
// sequence as a whole.
func Compile(g grammar.Grammar, lex grammar.Lexicon, start symbol.NonTerminal, opts ...Option) (*Automaton, error) {
	if g == nil || lex == nil {
		return nil, errors.New(errors.CodeValidationError, "grammar and lexicon are required")
	}
	began := time.Now()

	grammarNTs := g.NonTerminals()
	lexiconNTs := lex.NonTerminals()
	universe := make([]symbol.NonTerminal, 0, len(grammarNTs)+len(lexiconNTs))
	universe = append(universe, grammarNTs...)
	universe = append(universe, lexiconNTs...)

	// A nonterminal listed twice resolves to its first index.
	index := make(map[symbol.NonTerminal]int, len(universe))
	for i, nt := range universe {
		if _, ok := index[nt]; !ok {
			index[nt] = i
		}
	}
	accepting := len(universe)

	resolve := func(nt symbol.NonTerminal, role string) (int, error) {
		i, ok := index[nt]
		if !ok {
			de := errors.Newf(errors.CodeCompilation, "unresolved %s symbol %s", role, nt.Name())
			de.WithContext(errors.CtxSymbol, nt.Name()).WithContext(errors.CtxOperation, "compile")
			return 0, de
		}
		return i, nil
	}

	startState, err := resolve(start, "start")
	if err != nil {
		return nil, err
	}

	graph, err := fsa.NewGraph(accepting + 1)
	if err != nil {
		return nil, err
	}

	for _, lhs := range grammarNTs {
		from, err := resolve(lhs, "rule head")
		if err != nil {
			return nil, err
		}
		for _, r := range g.RulesFor(lhs) {
			to, err := resolve(r.Next, "rule target")
			if err != nil {
				return nil, errors.AddContext(err, "rule", lhs.Name()+" -> "+r.String())
			}
			if err := graph.AddEdge(from, fsa.Edge{Target: to, Label: r.Consume}); err != nil {
				return nil, err
			}
		}
	}

	for _, lhs := range lexiconNTs {
		from, err := resolve(lhs, "lexicon head")
		if err != nil {
			return nil, err
		}
		for _, seq := range lex.RulesFor(lhs) {
			for _, t := range seq {
				if err := graph.AddEdge(from, fsa.Edge{Target: accepting, Label: t}); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := graph.SetAccepting(accepting); err != nil {
		return nil, err
	}
	graph.Freeze()

	observability.CompileDuration.Observe(time.Since(began).Seconds())
	observability.GraphStates.Set(float64(graph.StateCount()))
	observability.GraphEdges.Set(float64(graph.EdgeCount()))
	slog.Debug("compiled automaton",
		"start", start.Name(),
		"states", graph.StateCount(),
		"edges", graph.EdgeCount(),
		"duration", time.Since(began),
	)

	a := newAutomaton(graph, startState, opts)
	a.index = index
	return a, nil
}
