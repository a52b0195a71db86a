package parse

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/chartparse/earley"
	"github.com/dhamidi/chartparse/ebnflex"
)

// Parser parses successive versions of one document. Each call reuses
// the chart built for the previous version up to the first changed
// token.
type Parser struct {
	lang      *Language
	filename  string
	parser    *earley.Parser
	completer *earley.Completer
}

// Error is a syntax error located in the source.
type Error struct {
	// Err is an *earley.ParseError, or an *earley.IncompleteInputError
	// when the input ended too early.
	Err error
	// Token is the offending token, nil at end of input.
	Token *ebnflex.Token
	Pos   ebnflex.Position
	// Expected lists the terminals that would have been accepted.
	Expected []string
}

func (e *Error) Error() string {
	return e.Pos.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Language returns the language the parser was created for.
func (p *Parser) Language() *Language {
	return p.lang
}

// Parse returns one syntax tree per derivation of src. Syntax errors are
// returned as *Error.
func (p *Parser) Parse(src []byte) ([]*Node, error) {
	lexed, tokens, err := p.lang.Tokenize(src, p.filename)
	if err != nil {
		return nil, err
	}

	results, err := p.parser.Parse(tokens)
	if err != nil {
		return nil, p.locate(err, lexed, src)
	}

	start := p.positionOf(lexed, src, 0)
	if len(lexed) > 0 {
		start = lexed[0].Position
	}
	nodes := make([]*Node, 0, len(results))
	for _, r := range results {
		n, ok := r.Process().(*Node)
		if !ok {
			continue
		}
		n.place(lexed, 0, start)
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// Completion is a completion candidate at a source offset.
type Completion struct {
	earley.Completion

	// Seed is the part of a word the cursor is in or right behind. It is
	// left out of the parse and replaced by an inserted completion.
	Seed string
	// Replace covers Seed; it is empty when there is no seed.
	Replace Span
}

// Complete returns what may be inserted at the byte offset in src.
func (p *Parser) Complete(src []byte, offset int) ([]Completion, error) {
	if offset < 0 || offset > len(src) {
		return nil, fmt.Errorf("offset %d out of range [0, %d]", offset, len(src))
	}
	lexed, tokens, err := p.lang.Tokenize(src, p.filename)
	if err != nil {
		return nil, err
	}

	at := p.positionOf(lexed, src, offset)
	replace := Span{Start: at, End: at}
	cursor := len(lexed)
	seed := ""
	for i, tok := range lexed {
		start, end := tok.Position.Offset, tok.End().Offset
		if start >= offset {
			cursor = i
			break
		}
		if offset < end || (offset == end && isWord(tok.Literal)) {
			cursor = i
			seed = tok.Literal[:offset-start]
			replace.Start = tok.Position
			tokens = append(tokens[:i:i], tokens[i+1:]...)
			lexed = append(lexed[:i:i], lexed[i+1:]...)
			break
		}
	}

	candidates, err := p.completer.Complete(tokens, cursor)
	if err != nil {
		return nil, p.locate(err, lexed, src)
	}

	completions := make([]Completion, len(candidates))
	for i, c := range candidates {
		completions[i] = Completion{Completion: c, Seed: seed, Replace: replace}
	}
	return completions, nil
}

// locate attaches source positions to chart errors.
func (p *Parser) locate(err error, lexed []ebnflex.Token, src []byte) error {
	var perr *earley.ParseError
	switch e := err.(type) {
	case *earley.IncompleteInputError:
		perr = &e.ParseError
	case *earley.ParseError:
		perr = e
	default:
		return err
	}

	located := &Error{
		Err:      err,
		Pos:      p.positionOf(lexed, src, len(src)),
		Expected: perr.Expected,
	}
	if perr.Token != nil && perr.Index < len(lexed) {
		tok := lexed[perr.Index]
		located.Token = &tok
		located.Pos = tok.Position
	}
	return located
}

// positionOf returns the position of a byte offset in src, starting
// from the last token at or before it.
func (p *Parser) positionOf(lexed []ebnflex.Token, src []byte, offset int) ebnflex.Position {
	pos := ebnflex.Position{Filename: p.filename, Line: 1, Column: 1}
	for _, tok := range lexed {
		if tok.Position.Offset > offset {
			break
		}
		pos = tok.Position
	}
	for pos.Offset < offset && pos.Offset < len(src) {
		r, size := utf8.DecodeRune(src[pos.Offset:])
		pos.Offset += size
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}

func isWord(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
