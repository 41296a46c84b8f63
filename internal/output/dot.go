package output

import (
	"fmt"
	"strings"

	"grammarfsa/internal/engine/search"
)

type DOTGenerator struct {
	automaton *search.Automaton
}

func NewDOTGenerator(a *search.Automaton) *DOTGenerator {
	return &DOTGenerator{automaton: a}
}

func (d *DOTGenerator) Generate() (string, error) {
	rows, err := edgeRows(d.automaton)
	if err != nil {
		return "", err
	}
	names := d.automaton.StateNames()
	live := reachable(d.automaton, rows)
	accepting := d.automaton.Graph().Accepting()

	var buf strings.Builder
	buf.WriteString("digraph automaton {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=circle, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=9];\n\n")

	buf.WriteString("  __start [shape=point];\n")
	for i, name := range names {
		attrs := []string{fmt.Sprintf("label=%q", name)}
		if i == accepting {
			attrs = append(attrs, "shape=doublecircle")
		}
		if !live[i] {
			attrs = append(attrs, "style=dashed", "color=gray")
		}
		buf.WriteString(fmt.Sprintf("  s%d [%s];\n", i, strings.Join(attrs, ", ")))
	}
	buf.WriteString("\n")

	buf.WriteString(fmt.Sprintf("  __start -> s%d;\n", d.automaton.Start()))
	for _, r := range rows {
		buf.WriteString(fmt.Sprintf("  s%d -> s%d [label=%q];\n", r.from, r.to, r.label))
	}
	buf.WriteString("}\n")
	return buf.String(), nil
}
