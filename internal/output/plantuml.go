package output

import (
	"fmt"
	"strings"

	"grammarfsa/internal/engine/search"
)

type PlantUMLGenerator struct {
	automaton *search.Automaton
}

func NewPlantUMLGenerator(a *search.Automaton) *PlantUMLGenerator {
	return &PlantUMLGenerator{automaton: a}
}

// Generate emits a state diagram; the accepting state links to the final
// pseudo-state.
func (p *PlantUMLGenerator) Generate() (string, error) {
	rows, err := edgeRows(p.automaton)
	if err != nil {
		return "", err
	}
	names := p.automaton.StateNames()
	accepting := p.automaton.Graph().Accepting()

	var b strings.Builder
	b.WriteString("@startuml\n")
	b.WriteString("hide empty description\n")
	for i, name := range names {
		b.WriteString(fmt.Sprintf("state \"%s\" as s%d\n", strings.ReplaceAll(name, `"`, `'`), i))
	}
	b.WriteString(fmt.Sprintf("[*] --> s%d\n", p.automaton.Start()))
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("s%d --> s%d : %s\n", r.from, r.to, r.label))
	}
	if accepting >= 0 {
		b.WriteString(fmt.Sprintf("s%d --> [*]\n", accepting))
	}
	b.WriteString("@enduml\n")
	return b.String(), nil
}
