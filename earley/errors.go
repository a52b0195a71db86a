package earley

import (
	"fmt"
	"strconv"
	"strings"
)

// UndefinedRuleError reports a nonterminal that was needed during
// prediction but has no rules and was not declared undefined. It points
// at a defect in the grammar.
type UndefinedRuleError struct {
	Name string
}

func (e *UndefinedRuleError) Error() string {
	return fmt.Sprintf("undefined rule %q", e.Name)
}

// ParseError reports that no item could consume the token at Index.
type ParseError struct {
	// Token is the token that could not be consumed, nil at end of input.
	Token *Token
	Index int

	// Expected lists the terminals unfinished items in the failing column
	// were waiting for, in order of appearance.
	Expected []string

	// ExpectedRules lists the nonterminals those items were waiting for,
	// leaving out names that merely alias something already listed.
	ExpectedRules []string

	column []*Item
}

// Column returns the items of the chart column the parse stopped in.
func (e *ParseError) Column() []*Item {
	return e.column
}

func (e *ParseError) Error() string {
	found := "end of input"
	if e.Token != nil {
		found = strconv.Quote(e.Token.Value)
	}
	if len(e.Expected) == 0 {
		return fmt.Sprintf("Unexpected %s. Expected end of input", found)
	}
	return fmt.Sprintf("Unexpected %s. Expected one of: %s", found, strings.Join(e.Expected, ", "))
}

// IncompleteInputError reports that every token was consumed but no
// derivation of the start rule covers them all.
type IncompleteInputError struct {
	ParseError
}

func (e *IncompleteInputError) Error() string {
	if len(e.Expected) == 0 {
		return "Unexpected end of input"
	}
	return "Expected one of: " + strings.Join(e.Expected, ", ")
}

func newParseError(g *Grammar, tokens []Token, index int, column []*Item) ParseError {
	e := ParseError{Index: index, column: column}
	if index < len(tokens) {
		tok := tokens[index]
		e.Token = &tok
	}

	listed := make(map[string]bool)
	var names []string
	for _, it := range column {
		sym, ok := it.Expected()
		if !ok {
			continue
		}
		key := sym.String()
		if listed[key] {
			continue
		}
		listed[key] = true
		if sym.IsTerminal() {
			e.Expected = append(e.Expected, key)
		} else {
			names = append(names, key)
		}
	}
	for _, name := range names {
		if !g.isAlias(name, listed) {
			e.ExpectedRules = append(e.ExpectedRules, name)
		}
	}
	return e
}
