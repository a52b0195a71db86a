package codebase

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/dhamidi/chartparse/ebnf/parse"
	"github.com/dhamidi/chartparse/ebnflex"
)

// maxSuggestionDistance is the largest edit distance at which an
// expected literal is offered as a correction.
const maxSuggestionDistance = 2

type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
)

type Diagnostic struct {
	Span     parse.Span
	Severity Severity
	Message  string
}

// Diagnostics reports the problems of the last parsed version of a
// document.
func (c *Codebase) Diagnostics(path string) []Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f := c.files[path]
	if f == nil {
		return nil
	}
	return diagnose(f)
}

func diagnose(f *FileInfo) []Diagnostic {
	if f.ParseErr == nil {
		if len(f.Trees) > 1 {
			return []Diagnostic{{
				Span:     f.Trees[0].Span,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("ambiguous input: %d derivations", len(f.Trees)),
			}}
		}
		return nil
	}

	var perr *parse.Error
	if !errors.As(f.ParseErr, &perr) {
		start := ebnflex.Position{Filename: f.Path, Line: 1, Column: 1}
		return []Diagnostic{{
			Span:     parse.Span{Start: start, End: start},
			Severity: SeverityError,
			Message:  f.ParseErr.Error(),
		}}
	}

	d := Diagnostic{
		Span:     parse.Span{Start: perr.Pos, End: perr.Pos},
		Severity: SeverityError,
		Message:  perr.Err.Error(),
	}
	if perr.Token != nil {
		d.Span.End = perr.Token.End()
		if s := suggest(perr.Token.Literal, perr.Expected); s != "" {
			d.Message += fmt.Sprintf(" (did you mean %q?)", s)
		}
	}
	return []Diagnostic{d}
}

// suggest returns the expected literal closest to got, or "" when none
// is close enough.
func suggest(got string, expected []string) string {
	var literals []string
	for _, e := range expected {
		if !strings.HasPrefix(e, `"`) {
			continue
		}
		if lit, err := strconv.Unquote(e); err == nil {
			literals = append(literals, lit)
		}
	}
	closest := closestStrings(maxSuggestionDistance+1, got, literals)
	if len(closest) == 0 {
		return ""
	}
	return closest[0]
}

// closestStrings returns the candidates at the smallest edit distance
// from a that is below minDistance, sorted.
func closestStrings(minDistance int, a string, candidates []string) []string {
	var closest []string
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(a, c)
		switch {
		case d < minDistance:
			closest = []string{c}
			minDistance = d
		case d == minDistance && len(closest) > 0:
			closest = append(closest, c)
		}
	}
	slices.Sort(closest)
	return closest
}
