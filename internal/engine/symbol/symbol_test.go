package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalEquality(t *testing.T) {
	assert.Equal(t, NewTerminal("dog"), NewTerminal("dog"))
	assert.NotEqual(t, NewTerminal("dog"), NewTerminal("cat"))

	seen := map[Terminal]int{}
	seen[NewTerminal("dog")]++
	seen[NewTerminal("dog")]++
	assert.Equal(t, 2, seen[NewTerminal("dog")])
}

func TestNonTerminalEquality(t *testing.T) {
	assert.Equal(t, NewNonTerminal("NP"), NewNonTerminal("NP"))
	assert.NotEqual(t, NewNonTerminal("NP"), NewNonTerminal("VP"))
	assert.Equal(t, "NP", NewNonTerminal("NP").String())
}

func TestSymbolVariant(t *testing.T) {
	ts := FromTerminal(NewTerminal("the"))
	ns := FromNonTerminal(NewNonTerminal("Det"))

	assert.Equal(t, KindTerminal, ts.Kind())
	assert.Equal(t, KindNonTerminal, ns.Kind())

	term, ok := ts.AsTerminal()
	assert.True(t, ok)
	assert.Equal(t, "the", term.Text())
	_, ok = ts.AsNonTerminal()
	assert.False(t, ok)

	nt, ok := ns.AsNonTerminal()
	assert.True(t, ok)
	assert.Equal(t, "Det", nt.Name())
	_, ok = ns.AsTerminal()
	assert.False(t, ok)

	// Same text, different kind: not the same symbol.
	assert.NotEqual(t, FromTerminal(NewTerminal("X")), FromNonTerminal(NewNonTerminal("X")))

	var zero Symbol
	_, ok = zero.AsTerminal()
	assert.False(t, ok)
	assert.Equal(t, "<invalid>", zero.String())
}

func TestTerminals(t *testing.T) {
	got := Terminals("a", "b")
	assert.Equal(t, []Terminal{NewTerminal("a"), NewTerminal("b")}, got)
}
