// Package search compiles grammars into state graphs and decides whether an
// input is licensed by walking the graph with an explicit hypothesis agenda.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"grammarfsa/internal/core/errors"
	"grammarfsa/internal/engine/fsa"
	"grammarfsa/internal/engine/symbol"
	"grammarfsa/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ctxCheckInterval is how many expansions run between ctx.Err() checks.
const ctxCheckInterval = 1024

type options struct {
	maxSteps int
	memoize  bool
}

type Option func(*options)

// WithMaxSteps bounds the number of hypotheses Run expands. Zero or a
// negative value means unbounded.
func WithMaxSteps(n int) Option {
	return func(o *options) { o.maxSteps = n }
}

// WithMemoization toggles the visited set of (state, position) pairs. It is
// on by default and never changes the outcome, only the work done.
func WithMemoization(on bool) Option {
	return func(o *options) { o.memoize = on }
}

// Result describes one finished search.
type Result struct {
	Accepted bool
	Tokens   int
	// Steps counts expanded hypotheses.
	Steps int
}

// Automaton is a compiled, read-only recognizer. All search state lives in
// the call, so one Automaton can serve concurrent callers.
type Automaton struct {
	graph *fsa.Graph
	start int
	index map[symbol.NonTerminal]int
	opts  options
}

func newAutomaton(g *fsa.Graph, start int, opts []Option) *Automaton {
	o := options{memoize: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Automaton{graph: g, start: start, opts: o}
}

// FromGraph wraps a hand-built graph. The graph is frozen; start must be a
// valid state index.
func FromGraph(g *fsa.Graph, start int, opts ...Option) (*Automaton, error) {
	if g == nil {
		return nil, errors.New(errors.CodeValidationError, "graph is required")
	}
	if _, err := g.IsAccepting(start); err != nil {
		return nil, errors.AddContext(err, errors.CtxOperation, "from graph")
	}
	g.Freeze()
	return newAutomaton(g, start, opts), nil
}

func (a *Automaton) Graph() *fsa.Graph { return a.graph }
func (a *Automaton) Start() int        { return a.start }

// StateOf returns the state compiled for nt. Automata built with FromGraph
// have no symbol table.
func (a *Automaton) StateOf(nt symbol.NonTerminal) (int, bool) {
	i, ok := a.index[nt]
	return i, ok
}

// StateNames labels every state for display: the nonterminal compiled to
// it, "ACCEPT" for the accepting state and "q<i>" for anything else.
func (a *Automaton) StateNames() []string {
	names := make([]string, a.graph.StateCount())
	for i := range names {
		names[i] = fmt.Sprintf("q%d", i)
	}
	for nt, i := range a.index {
		names[i] = nt.Name()
	}
	if k := a.graph.Accepting(); k >= 0 {
		names[k] = "ACCEPT"
	}
	return names
}

// Tokenize splits input on runs of whitespace.
func Tokenize(input string) []symbol.Terminal {
	return symbol.Terminals(strings.Fields(input)...)
}

// Recognize reports whether input is licensed. It ignores WithMaxSteps; use
// Run when the search must be bounded.
func (a *Automaton) Recognize(input string) bool {
	res, err := a.search(context.Background(), Tokenize(input), 0)
	if err != nil {
		// Only reachable through a corrupt graph; Compile validates every index.
		slog.Error("recognition failed", "error", err)
		return false
	}
	return res.Accepted
}

// Run is Recognize with cancellation, the step bound and span reporting.
// Non-acceptance is a false Result, never an error.
func (a *Automaton) Run(ctx context.Context, input string) (Result, error) {
	return a.RunTokens(ctx, Tokenize(input))
}

func (a *Automaton) RunTokens(ctx context.Context, tokens []symbol.Terminal) (Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "search.Run",
		trace.WithAttributes(attribute.Int("tokens", len(tokens))))
	defer span.End()

	res, err := a.search(ctx, tokens, a.opts.maxSteps)
	span.SetAttributes(
		attribute.Int("steps", res.Steps),
		attribute.Bool("accepted", res.Accepted),
	)
	if err != nil {
		span.RecordError(err)
		return res, err
	}
	observability.SearchSteps.Observe(float64(res.Steps))
	return res, nil
}

func (a *Automaton) search(ctx context.Context, tokens []symbol.Terminal, maxSteps int) (Result, error) {
	res := Result{Tokens: len(tokens)}

	initial := Hypothesis{State: a.start, Position: 0}
	final, err := a.IsFinal(initial, tokens)
	if err != nil {
		return res, err
	}
	if final {
		res.Accepted = true
		return res, nil
	}

	var visited map[Hypothesis]struct{}
	if a.opts.memoize {
		visited = map[Hypothesis]struct{}{initial: {}}
	}

	var frontier agenda
	frontier.push(initial)
	for !frontier.empty() {
		if maxSteps > 0 && res.Steps >= maxSteps {
			de := errors.Newf(errors.CodeStepLimit, "search exceeded %d steps", maxSteps)
			de.WithContext("tokens", len(tokens))
			return res, de
		}
		if res.Steps%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		h := frontier.pop()
		res.Steps++

		next, err := a.Successors(h, tokens)
		if err != nil {
			return res, err
		}
		for _, s := range next {
			final, err := a.IsFinal(s, tokens)
			if err != nil {
				return res, err
			}
			if final {
				res.Accepted = true
				return res, nil
			}
			if visited != nil {
				if _, seen := visited[s]; seen {
					continue
				}
				visited[s] = struct{}{}
			}
			frontier.push(s)
		}
	}
	return res, nil
}

// Successors returns the hypotheses reachable from h by consuming
// tokens[h.Position]. Exhausted input has no successors.
func (a *Automaton) Successors(h Hypothesis, tokens []symbol.Terminal) ([]Hypothesis, error) {
	if h.Position < 0 || h.Position > len(tokens) {
		de := errors.Newf(errors.CodeLookup, "position %d outside [0, %d]", h.Position, len(tokens))
		return nil, de.WithContext(errors.CtxState, h.State)
	}
	if h.Position == len(tokens) {
		if _, err := a.graph.IsAccepting(h.State); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var out []Hypothesis
	err := a.graph.ForEachOn(h.State, tokens[h.Position], func(e fsa.Edge) {
		out = append(out, Hypothesis{State: e.Target, Position: h.Position + 1})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IsFinal reports whether h accepts: all tokens consumed and h.State is the
// accepting state.
func (a *Automaton) IsFinal(h Hypothesis, tokens []symbol.Terminal) (bool, error) {
	accepting, err := a.graph.IsAccepting(h.State)
	if err != nil {
		return false, err
	}
	return accepting && h.Position == len(tokens), nil
}
