package output

import (
	"fmt"
	"strings"

	"grammarfsa/internal/engine/search"
)

type MermaidGenerator struct {
	automaton *search.Automaton
}

func NewMermaidGenerator(a *search.Automaton) *MermaidGenerator {
	return &MermaidGenerator{automaton: a}
}

func (m *MermaidGenerator) Generate() (string, error) {
	rows, err := edgeRows(m.automaton)
	if err != nil {
		return "", err
	}
	names := m.automaton.StateNames()
	live := reachable(m.automaton, rows)
	accepting := m.automaton.Graph().Accepting()

	var b strings.Builder
	b.WriteString("flowchart LR\n")
	b.WriteString("  start((start))\n")
	for i, name := range names {
		label := mermaidEscape(name)
		if i == accepting {
			b.WriteString(fmt.Sprintf("  s%d(((\"%s\")))\n", i, label))
		} else {
			b.WriteString(fmt.Sprintf("  s%d((\"%s\"))\n", i, label))
		}
	}

	b.WriteString(fmt.Sprintf("  start --> s%d\n", m.automaton.Start()))
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  s%d -->|\"%s\"| s%d\n", r.from, mermaidEscape(r.label), r.to))
	}

	b.WriteString("  classDef unreachable stroke-dasharray: 5 5,color:#64748B;\n")
	for i := range names {
		if !live[i] {
			b.WriteString(fmt.Sprintf("  class s%d unreachable\n", i))
		}
	}
	return b.String(), nil
}

func mermaidEscape(s string) string {
	r := strings.NewReplacer(`"`, "#quot;", "|", "#124;", "<", "#lt;", ">", "#gt;")
	return r.Replace(s)
}
