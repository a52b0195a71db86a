package earley

import (
	"errors"
	"fmt"
	"slices"
)

// Completion describes symbols that could be inserted at a cursor: a
// rule whose Pre symbols match the tokens from Start up to the cursor
// and whose Post symbols match the tokens from the cursor up to End. Gap
// is what is missing in between.
type Completion struct {
	Start int
	Pre   []Symbol
	Gap   []Symbol
	Post  []Symbol
	End   int
	Rule  *Rule
}

// Completer answers what may be inserted at a position in a token
// sequence. It parses the tokens before the cursor forwards and the
// tokens after it backwards and matches up rules both parses are in the
// middle of. Like Parser, a Completer keeps state between calls and must
// not be shared between goroutines.
type Completer struct {
	grammar *Grammar
	left    *Parser
	right   *Parser
}

// NewCompleter returns a completer for g.
func NewCompleter(g *Grammar) *Completer {
	return &Completer{
		grammar: g,
		left:    NewParser(g),
		right:   NewParser(g.Reverse()),
	}
}

// Complete returns the completions at cursor, a token boundary between 0
// and len(tokens). When the tokens on either side contain a syntax error
// no completions are returned, along with the error.
func (c *Completer) Complete(tokens []Token, cursor int) ([]Completion, error) {
	if cursor < 0 || cursor > len(tokens) {
		return nil, fmt.Errorf("cursor %d out of range [0, %d]", cursor, len(tokens))
	}

	left := append(slices.Clone(tokens[:cursor]), cursorToken())
	right := slices.Clone(tokens[cursor:])
	slices.Reverse(right)
	right = append(right, cursorToken())

	before, err := reachCursor(c.left, left)
	if err != nil {
		return nil, err
	}
	after, err := reachCursor(c.right, right)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			// Report the token by its position in the forward input.
			forward := *perr
			forward.Index = len(tokens) - 1 - perr.Index
			return nil, &forward
		}
		return nil, err
	}

	type key struct {
		rule           *Rule
		start, end     int
		preLen, gapEnd int
	}
	seen := make(map[key]bool)
	var completions []Completion
	for _, l := range before {
		for _, r := range after {
			if r.Rule.Original != l.Rule {
				continue
			}
			symbols := l.Rule.Symbols
			li, ri := l.Position, len(symbols)-r.Position
			if li >= ri {
				continue
			}
			k := key{l.Rule, l.Origin, len(tokens) - r.Origin, li, ri}
			if seen[k] {
				continue
			}
			seen[k] = true
			completions = append(completions, Completion{
				Start: k.start,
				Pre:   slices.Clone(symbols[:li]),
				Gap:   slices.Clone(symbols[li:ri]),
				Post:  slices.Clone(symbols[ri:]),
				End:   k.end,
				Rule:  l.Rule,
			})
		}
	}
	return completions, nil
}

// reachCursor parses tokens, which end in the cursor sentinel, and
// returns the column the parse stopped in. Stopping anywhere but at the
// sentinel means the tokens themselves do not parse.
func reachCursor(p *Parser, tokens []Token) ([]*Item, error) {
	_, err := p.Parse(tokens)
	var perr *ParseError
	if !errors.As(err, &perr) {
		if err == nil {
			err = errors.New("cursor sentinel was consumed")
		}
		return nil, err
	}
	if perr.Index != len(tokens)-1 || perr.Token == nil || perr.Token.Kind != CursorKind {
		return nil, perr
	}
	return perr.Column(), nil
}
