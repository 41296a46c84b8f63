package output

import (
	"fmt"
	"strings"

	"grammarfsa/internal/engine/search"
)

type TSVGenerator struct {
	automaton *search.Automaton
}

func NewTSVGenerator(a *search.Automaton) *TSVGenerator {
	return &TSVGenerator{automaton: a}
}

func (t *TSVGenerator) Generate() (string, error) {
	rows, err := edgeRows(t.automaton)
	if err != nil {
		return "", err
	}
	names := t.automaton.StateNames()

	var buf strings.Builder
	buf.WriteString("From\tFromState\tLabel\tTo\tToState\n")
	for _, r := range rows {
		buf.WriteString(fmt.Sprintf("%d\t%s\t%s\t%d\t%s\n",
			r.from, names[r.from], r.label, r.to, names[r.to]))
	}
	return buf.String(), nil
}
