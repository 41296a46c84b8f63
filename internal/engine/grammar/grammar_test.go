package grammar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"grammarfsa/internal/core/errors"
	"grammarfsa/internal/engine/symbol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ntS  = symbol.NewNonTerminal("S")
	ntNP = symbol.NewNonTerminal("NP")
	ntN  = symbol.NewNonTerminal("N")
)

func TestMemoryGrammar_OrderAndDedup(t *testing.T) {
	g := NewGrammar()
	g.AddRule(ntS, Rule{Consume: symbol.NewTerminal("the"), Next: ntNP})
	g.AddRule(ntNP, Rule{Consume: symbol.NewTerminal("big"), Next: ntNP})
	g.AddRule(ntS, Rule{Consume: symbol.NewTerminal("the"), Next: ntNP})
	g.AddRule(ntS, Rule{Consume: symbol.NewTerminal("a"), Next: ntNP})

	assert.Equal(t, []symbol.NonTerminal{ntS, ntNP}, g.NonTerminals())
	assert.Len(t, g.RulesFor(ntS), 2)
	assert.Equal(t, 3, g.RuleCount())
	assert.Empty(t, g.RulesFor(ntN))
}

func TestMemoryGrammar_AddValidatesShape(t *testing.T) {
	g := NewGrammar()

	err := g.Add(ntS, symbol.FromTerminal(symbol.NewTerminal("a")), symbol.FromNonTerminal(ntNP))
	require.NoError(t, err)

	err = g.Add(ntS, symbol.FromNonTerminal(ntNP), symbol.FromTerminal(symbol.NewTerminal("a")))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	err = g.Add(ntS, symbol.FromTerminal(symbol.NewTerminal("a")))
	require.Error(t, err)

	assert.Len(t, g.RulesFor(ntS), 1)
}

func TestMemoryGrammar_ReturnsCopies(t *testing.T) {
	g := NewGrammar()
	g.AddRule(ntS, Rule{Consume: symbol.NewTerminal("a"), Next: ntNP})

	nts := g.NonTerminals()
	nts[0] = ntN
	rules := g.RulesFor(ntS)
	rules[0].Next = ntN

	assert.Equal(t, ntS, g.NonTerminals()[0])
	assert.Equal(t, ntNP, g.RulesFor(ntS)[0].Next)
}

func TestMemoryLexicon(t *testing.T) {
	l := NewLexicon()
	l.Add(ntN, symbol.Terminals("dog")...)
	l.Add(ntN, symbol.Terminals("hot", "dog")...)
	l.Add(ntN, symbol.Terminals("dog")...)
	l.Add(ntNP)

	assert.Equal(t, []symbol.NonTerminal{ntN, ntNP}, l.NonTerminals())
	assert.Equal(t, [][]symbol.Terminal{
		symbol.Terminals("dog"),
		symbol.Terminals("hot", "dog"),
	}, l.RulesFor(ntN))
	assert.Empty(t, l.RulesFor(ntNP))
	assert.Equal(t, 2, l.EntryCount())
}

func TestParseGrammar(t *testing.T) {
	src := `
# determiners first
S  -> the NP | a NP
NP -> big NP
`
	g, err := ParseGrammar(strings.NewReader(src), "test.grammar")
	require.NoError(t, err)

	assert.Equal(t, []symbol.NonTerminal{ntS, ntNP}, g.NonTerminals())
	assert.Equal(t, []Rule{
		{Consume: symbol.NewTerminal("the"), Next: ntNP},
		{Consume: symbol.NewTerminal("a"), Next: ntNP},
	}, g.RulesFor(ntS))
}

func TestParseGrammar_Malformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing arrow", "S the NP"},
		{"multi lhs", "S T -> a NP"},
		{"three fields", "S -> a NP extra"},
		{"one field", "S -> a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGrammar(strings.NewReader(tt.src), "bad.grammar")
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeValidationError))
			assert.Contains(t, err.Error(), "bad.grammar")
		})
	}
}

func TestParseLexicon(t *testing.T) {
	src := "N -> dog | hot dog\nDet -> the\n"
	l, err := ParseLexicon(strings.NewReader(src), "test.lex")
	require.NoError(t, err)

	assert.Equal(t, []symbol.NonTerminal{ntN, symbol.NewNonTerminal("Det")}, l.NonTerminals())
	assert.Len(t, l.RulesFor(ntN), 2)

	_, err = ParseLexicon(strings.NewReader("N -> dog ||"), "bad.lex")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	gPath := filepath.Join(dir, "rules.grammar")
	lPath := filepath.Join(dir, "words.lex")
	require.NoError(t, os.WriteFile(gPath, []byte("S -> a T\n"), 0o644))
	require.NoError(t, os.WriteFile(lPath, []byte("T -> b\n"), 0o644))

	g, l, err := LoadFiles(gPath, lPath)
	require.NoError(t, err)
	assert.Equal(t, 1, g.RuleCount())
	assert.Equal(t, 1, l.EntryCount())

	_, _, err = LoadFiles(filepath.Join(dir, "missing.grammar"), lPath)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}
