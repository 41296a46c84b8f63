// Package symbol holds the value types grammars are written in: terminals
// (input tokens), nonterminals (categories) and the Symbol variant that can
// carry either.
package symbol

import "fmt"

// Terminal is an atomic input token. Two terminals are equal when their
// surface text is equal, so Terminal is usable as a map key.
type Terminal struct {
	text string
}

func NewTerminal(text string) Terminal {
	return Terminal{text: text}
}

func (t Terminal) Text() string   { return t.text }
func (t Terminal) String() string { return fmt.Sprintf("%q", t.text) }

// NonTerminal is a grammar category, equal by name.
type NonTerminal struct {
	name string
}

func NewNonTerminal(name string) NonTerminal {
	return NonTerminal{name: name}
}

func (n NonTerminal) Name() string   { return n.name }
func (n NonTerminal) String() string { return n.name }

type Kind uint8

const (
	KindTerminal Kind = iota + 1
	KindNonTerminal
)

func (k Kind) String() string {
	switch k {
	case KindTerminal:
		return "terminal"
	case KindNonTerminal:
		return "nonterminal"
	default:
		return "invalid"
	}
}

// Symbol is a tagged variant over Terminal and NonTerminal. The zero value
// has no kind and matches neither accessor.
type Symbol struct {
	kind Kind
	text string
}

func FromTerminal(t Terminal) Symbol {
	return Symbol{kind: KindTerminal, text: t.text}
}

func FromNonTerminal(n NonTerminal) Symbol {
	return Symbol{kind: KindNonTerminal, text: n.name}
}

func (s Symbol) Kind() Kind { return s.kind }

func (s Symbol) AsTerminal() (Terminal, bool) {
	if s.kind != KindTerminal {
		return Terminal{}, false
	}
	return Terminal{text: s.text}, true
}

func (s Symbol) AsNonTerminal() (NonTerminal, bool) {
	if s.kind != KindNonTerminal {
		return NonTerminal{}, false
	}
	return NonTerminal{name: s.text}, true
}

func (s Symbol) String() string {
	switch s.kind {
	case KindTerminal:
		return Terminal{text: s.text}.String()
	case KindNonTerminal:
		return s.text
	default:
		return "<invalid>"
	}
}

// Terminals converts words into terminals, preserving order.
func Terminals(words ...string) []Terminal {
	out := make([]Terminal, 0, len(words))
	for _, w := range words {
		out = append(out, NewTerminal(w))
	}
	return out
}
