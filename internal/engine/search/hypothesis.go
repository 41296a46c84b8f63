package search

import "fmt"

// Hypothesis says the automaton can be in State after consuming the first
// Position input tokens.
type Hypothesis struct {
	State    int
	Position int
}

func (h Hypothesis) String() string {
	return fmt.Sprintf("(%d@%d)", h.State, h.Position)
}

// agenda is the LIFO frontier of one search call.
type agenda []Hypothesis

func (a *agenda) push(h Hypothesis) { *a = append(*a, h) }

func (a *agenda) pop() Hypothesis {
	old := *a
	h := old[len(old)-1]
	*a = old[:len(old)-1]
	return h
}

func (a agenda) empty() bool { return len(a) == 0 }
