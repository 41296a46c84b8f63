package grammar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"grammarfsa/internal/core/errors"
	"grammarfsa/internal/engine/symbol"
)

const (
	arrow       = "->"
	alternative = "|"
	comment     = "#"
)

// ParseGrammar reads right-linear rules, one production per line:
//
//	S  -> the NP | a NP
//	NP -> big NP
//
// Each alternative is a terminal followed by a nonterminal. Blank lines and
// lines starting with # are skipped. name is only used in error context.
func ParseGrammar(r io.Reader, name string) (*MemoryGrammar, error) {
	g := NewGrammar()
	err := scanProductions(r, name, func(lineNo int, lhs symbol.NonTerminal, alt []string) error {
		if len(alt) != 2 {
			return lineError(name, lineNo, fmt.Sprintf("expected \"terminal NonTerminal\", got %d fields", len(alt)))
		}
		rhs := []symbol.Symbol{
			symbol.FromTerminal(symbol.NewTerminal(alt[0])),
			symbol.FromNonTerminal(symbol.NewNonTerminal(alt[1])),
		}
		if err := g.Add(lhs, rhs...); err != nil {
			return errors.AddContext(errors.AddContext(err, errors.CtxPath, name), errors.CtxLine, lineNo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ParseLexicon reads lexical entries, one category per line:
//
//	N   -> dog | cat | hot dog
//	Det -> the
//
// Every alternative is a sequence of one or more terminals.
func ParseLexicon(r io.Reader, name string) (*MemoryLexicon, error) {
	l := NewLexicon()
	err := scanProductions(r, name, func(lineNo int, lhs symbol.NonTerminal, alt []string) error {
		if len(alt) == 0 {
			return lineError(name, lineNo, "empty lexical entry")
		}
		l.Add(lhs, symbol.Terminals(alt...)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// LoadFiles parses a grammar file and a lexicon file.
func LoadFiles(grammarPath, lexiconPath string) (*MemoryGrammar, *MemoryLexicon, error) {
	g, err := parseFile(grammarPath, ParseGrammar)
	if err != nil {
		return nil, nil, err
	}
	l, err := parseFile(lexiconPath, ParseLexicon)
	if err != nil {
		return nil, nil, err
	}
	return g, l, nil
}

func parseFile[T any](path string, parse func(io.Reader, string) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return zero, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "rule file not found"), errors.CtxPath, path)
		}
		return zero, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return parse(f, path)
}

type productionFunc func(lineNo int, lhs symbol.NonTerminal, alt []string) error

func scanProductions(r io.Reader, name string, fn productionFunc) error {
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, comment) {
			continue
		}

		head, body, ok := strings.Cut(line, arrow)
		if !ok {
			return lineError(name, lineNo, "missing \"->\"")
		}
		lhsFields := strings.Fields(head)
		if len(lhsFields) != 1 {
			return lineError(name, lineNo, "left-hand side must be a single nonterminal")
		}
		lhs := symbol.NewNonTerminal(lhsFields[0])

		for _, alt := range strings.Split(body, alternative) {
			if err := fn(lineNo, lhs, strings.Fields(alt)); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return nil
}

func lineError(name string, lineNo int, msg string) error {
	de := errors.Newf(errors.CodeValidationError, "malformed production: %s", msg)
	de.WithContext(errors.CtxPath, name).WithContext(errors.CtxLine, lineNo)
	return de
}
