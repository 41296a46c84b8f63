// Package grammar provides the rule sources an automaton is compiled from:
// a right-linear Grammar (consume one terminal, continue at one nonterminal)
// and a Lexicon mapping categories to their word sequences.
//
// Providers return nonterminals as ordered slices. Compilation numbers
// states in that order, so the order must be stable across calls.
package grammar

import (
	"strings"

	"grammarfsa/internal/core/errors"
	"grammarfsa/internal/engine/symbol"
)

// Rule is the body of a right-linear production LHS -> Consume Next.
type Rule struct {
	Consume symbol.Terminal
	Next    symbol.NonTerminal
}

func (r Rule) String() string {
	return r.Consume.String() + " " + r.Next.String()
}

// RuleFromSymbols validates a right-hand side and converts it to a Rule.
// Only the shape [Terminal, NonTerminal] is representable.
func RuleFromSymbols(rhs []symbol.Symbol) (Rule, error) {
	if len(rhs) != 2 {
		return Rule{}, errors.Newf(errors.CodeValidationError, "right-linear rule needs exactly 2 symbols, got %d", len(rhs))
	}
	t, ok := rhs[0].AsTerminal()
	if !ok {
		return Rule{}, errors.Newf(errors.CodeValidationError, "rule must start with a terminal, got %s %s", rhs[0].Kind(), rhs[0])
	}
	n, ok := rhs[1].AsNonTerminal()
	if !ok {
		return Rule{}, errors.Newf(errors.CodeValidationError, "rule must end with a nonterminal, got %s %s", rhs[1].Kind(), rhs[1])
	}
	return Rule{Consume: t, Next: n}, nil
}

type Grammar interface {
	NonTerminals() []symbol.NonTerminal
	RulesFor(lhs symbol.NonTerminal) []Rule
}

type Lexicon interface {
	NonTerminals() []symbol.NonTerminal
	RulesFor(lhs symbol.NonTerminal) [][]symbol.Terminal
}

// MemoryGrammar is an insertion-ordered Grammar. Duplicate rules for the
// same left-hand side are stored once.
type MemoryGrammar struct {
	order []symbol.NonTerminal
	rules map[symbol.NonTerminal][]Rule
	seen  map[symbol.NonTerminal]map[Rule]struct{}
}

var _ Grammar = (*MemoryGrammar)(nil)

func NewGrammar() *MemoryGrammar {
	return &MemoryGrammar{
		rules: make(map[symbol.NonTerminal][]Rule),
		seen:  make(map[symbol.NonTerminal]map[Rule]struct{}),
	}
}

func (g *MemoryGrammar) AddRule(lhs symbol.NonTerminal, r Rule) {
	set, ok := g.seen[lhs]
	if !ok {
		set = make(map[Rule]struct{})
		g.seen[lhs] = set
		g.order = append(g.order, lhs)
	}
	if _, dup := set[r]; dup {
		return
	}
	set[r] = struct{}{}
	g.rules[lhs] = append(g.rules[lhs], r)
}

// Add registers lhs -> rhs after checking the right-hand side is right-linear.
func (g *MemoryGrammar) Add(lhs symbol.NonTerminal, rhs ...symbol.Symbol) error {
	r, err := RuleFromSymbols(rhs)
	if err != nil {
		return errors.AddContext(err, errors.CtxSymbol, lhs.Name())
	}
	g.AddRule(lhs, r)
	return nil
}

func (g *MemoryGrammar) NonTerminals() []symbol.NonTerminal {
	out := make([]symbol.NonTerminal, len(g.order))
	copy(out, g.order)
	return out
}

func (g *MemoryGrammar) RulesFor(lhs symbol.NonTerminal) []Rule {
	rules := g.rules[lhs]
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

func (g *MemoryGrammar) RuleCount() int {
	n := 0
	for _, rules := range g.rules {
		n += len(rules)
	}
	return n
}

// MemoryLexicon is an insertion-ordered Lexicon. Identical sequences for the
// same category are stored once.
type MemoryLexicon struct {
	order   []symbol.NonTerminal
	entries map[symbol.NonTerminal][][]symbol.Terminal
	seen    map[symbol.NonTerminal]map[string]struct{}
}

var _ Lexicon = (*MemoryLexicon)(nil)

func NewLexicon() *MemoryLexicon {
	return &MemoryLexicon{
		entries: make(map[symbol.NonTerminal][][]symbol.Terminal),
		seen:    make(map[symbol.NonTerminal]map[string]struct{}),
	}
}

// Add registers one realisation of lhs. Empty sequences are ignored.
func (l *MemoryLexicon) Add(lhs symbol.NonTerminal, words ...symbol.Terminal) {
	set, ok := l.seen[lhs]
	if !ok {
		set = make(map[string]struct{})
		l.seen[lhs] = set
		l.order = append(l.order, lhs)
	}
	if len(words) == 0 {
		return
	}
	key := sequenceKey(words)
	if _, dup := set[key]; dup {
		return
	}
	set[key] = struct{}{}
	seq := make([]symbol.Terminal, len(words))
	copy(seq, words)
	l.entries[lhs] = append(l.entries[lhs], seq)
}

func (l *MemoryLexicon) NonTerminals() []symbol.NonTerminal {
	out := make([]symbol.NonTerminal, len(l.order))
	copy(out, l.order)
	return out
}

func (l *MemoryLexicon) RulesFor(lhs symbol.NonTerminal) [][]symbol.Terminal {
	seqs := l.entries[lhs]
	out := make([][]symbol.Terminal, 0, len(seqs))
	for _, s := range seqs {
		cp := make([]symbol.Terminal, len(s))
		copy(cp, s)
		out = append(out, cp)
	}
	return out
}

func (l *MemoryLexicon) EntryCount() int {
	n := 0
	for _, seqs := range l.entries {
		n += len(seqs)
	}
	return n
}

func sequenceKey(words []symbol.Terminal) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text()
	}
	return strings.Join(parts, "\x00")
}
