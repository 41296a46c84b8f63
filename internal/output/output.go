// Package output renders a compiled automaton as DOT, Mermaid, PlantUML or
// TSV for inspection.
package output

import (
	"fmt"
	"strings"

	"grammarfsa/internal/engine/search"
)

type Format string

const (
	FormatDOT      Format = "dot"
	FormatMermaid  Format = "mermaid"
	FormatPlantUML Format = "plantuml"
	FormatTSV      Format = "tsv"
)

type Generator interface {
	Generate() (string, error)
}

// NewGenerator returns the renderer for format.
func NewGenerator(format string, a *search.Automaton) (Generator, error) {
	if a == nil {
		return nil, fmt.Errorf("automaton is required")
	}
	switch Format(strings.ToLower(strings.TrimSpace(format))) {
	case FormatDOT:
		return NewDOTGenerator(a), nil
	case FormatMermaid:
		return NewMermaidGenerator(a), nil
	case FormatPlantUML:
		return NewPlantUMLGenerator(a), nil
	case FormatTSV:
		return NewTSVGenerator(a), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want dot, mermaid, plantuml or tsv)", format)
	}
}

type edgeRow struct {
	from, to int
	label    string
}

// edgeRows lists every edge in state order, keeping insertion order within
// a state.
func edgeRows(a *search.Automaton) ([]edgeRow, error) {
	g := a.Graph()
	var rows []edgeRow
	for i := 0; i < g.StateCount(); i++ {
		edges, err := g.Adjacent(i)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			rows = append(rows, edgeRow{from: i, to: e.Target, label: e.Label.Text()})
		}
	}
	return rows, nil
}

// reachable marks the states reachable from the start state.
func reachable(a *search.Automaton, rows []edgeRow) []bool {
	out := make([]bool, a.Graph().StateCount())
	adj := make(map[int][]int)
	for _, r := range rows {
		adj[r.from] = append(adj[r.from], r.to)
	}
	stack := []int{a.Start()}
	out[a.Start()] = true
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, t := range adj[s] {
			if !out[t] {
				out[t] = true
				stack = append(stack, t)
			}
		}
	}
	return out
}
