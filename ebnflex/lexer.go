// Package ebnflex provides lexical scanning based on EBNF grammars.
package ebnflex

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"
)

// LiteralKind is the kind of tokens matched by one of the lexer's
// literals rather than by a lexical production.
const LiteralKind = "Literal"

// Position represents a location in source code.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token with its position.
type Token struct {
	Kind     string
	Literal  string
	Position Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Position, t.Kind, t.Literal)
}

// End returns the position just past the token.
func (t Token) End() Position {
	end := t.Position
	for _, r := range t.Literal {
		end.Offset += len(string(r))
		if r == '\n' {
			end.Line++
			end.Column = 1
		} else {
			end.Column++
		}
	}
	return end
}

// memoKey is used for memoization of match results.
type memoKey struct {
	name   string
	offset int
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithLiterals makes the lexer recognize the given strings directly.
// Keywords and punctuation of a syntactic grammar go here so that they
// lex as LiteralKind tokens even without a lexical production.
func WithLiterals(literals ...string) Option {
	return func(l *Lexer) {
		for _, lit := range literals {
			if lit != "" && !slices.Contains(l.literals, lit) {
				l.literals = append(l.literals, lit)
			}
		}
	}
}

// Lexer tokenizes input based on an EBNF grammar.
type Lexer struct {
	grammar  ebnf.Grammar
	names    []string
	literals []string
	input    []byte
	filename string
	pos      int
	line     int
	column   int
	memo     map[memoKey]int  // memoization cache: key -> match length (-1 = no match)
	visiting map[memoKey]bool // cycle detection
}

// NewLexer creates a lexer for the given grammar and input.
func NewLexer(grammar ebnf.Grammar, input []byte, filename string, opts ...Option) *Lexer {
	l := &Lexer{
		grammar:  grammar,
		names:    LexicalNames(grammar),
		input:    input,
		filename: filename,
		pos:      0,
		line:     1,
		column:   1,
		memo:     make(map[memoKey]int),
		visiting: make(map[memoKey]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LexicalNames returns the names of the token productions of g (those
// starting with an uppercase letter) in sorted order, so that ties
// between equally long matches resolve the same way every time.
func LexicalNames(g ebnf.Grammar) []string {
	var names []string
	for name, prod := range g {
		if prod.Expr != nil && IsLexical(name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// IsLexical reports whether name denotes a token production.
func IsLexical(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// LoadGrammar loads an EBNF grammar from a file.
func LoadGrammar(filename string) (ebnf.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	grammar, err := ebnf.Parse(filename, f)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}

	return grammar, nil
}

// Position returns the current position in the input.
func (l *Lexer) Position() Position {
	return Position{
		Filename: l.filename,
		Offset:   l.pos,
		Line:     l.line,
		Column:   l.column,
	}
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else if ch < 0x80 || ch >= 0xC0 {
		l.column++
	}
	return ch
}

// NextToken returns the next token from the input.
// It tries each token production and each literal and returns the
// longest match. A literal wins over a production of the same length.
func (l *Lexer) NextToken() (Token, error) {
	if l.pos >= len(l.input) {
		return Token{Kind: "EOF", Position: l.Position()}, io.EOF
	}

	startPos := l.Position()
	startOffset := l.pos

	// Clear memoization cache for each new token (positions change)
	l.memo = make(map[memoKey]int)

	var bestKind string
	var bestLen int

	for _, lit := range l.literals {
		if n := l.tryMatchToken(lit, startOffset); n > bestLen {
			bestLen = n
			bestKind = LiteralKind
		}
	}

	for _, name := range l.names {
		l.visiting = make(map[memoKey]bool)
		matchLen := l.tryMatch(l.grammar[name].Expr, startOffset, name)
		if matchLen > bestLen {
			bestLen = matchLen
			bestKind = name
		}
	}

	if bestLen == 0 {
		// No match - emit single character as error token
		ch := l.advance()
		return Token{
			Kind:     "ERROR",
			Literal:  string(ch),
			Position: startPos,
		}, nil
	}

	for i := 0; i < bestLen; i++ {
		l.advance()
	}

	return Token{
		Kind:     bestKind,
		Literal:  string(l.input[startOffset : startOffset+bestLen]),
		Position: startPos,
	}, nil
}

// tryMatch attempts to match an expression at the given offset.
// Returns the length of the match, or 0 if no match.
func (l *Lexer) tryMatch(expr ebnf.Expression, offset int, context string) int {
	switch e := expr.(type) {
	case *ebnf.Token:
		return l.tryMatchToken(e.String, offset)

	case *ebnf.Range:
		return l.tryMatchRange(e.Begin.String, e.End.String, offset)

	case ebnf.Sequence:
		total := 0
		pos := offset
		for _, item := range e {
			n := l.tryMatch(item, pos, context)
			if n == 0 && !l.nullable(item) {
				return 0
			}
			total += n
			pos += n
		}
		return total

	case ebnf.Alternative:
		best := 0
		for _, alt := range e {
			n := l.tryMatch(alt, offset, context)
			if n > best {
				best = n
			}
		}
		return best

	case *ebnf.Repetition:
		total := 0
		pos := offset
		for {
			n := l.tryMatch(e.Body, pos, context)
			if n == 0 {
				break
			}
			total += n
			pos += n
		}
		return total

	case *ebnf.Option:
		return l.tryMatch(e.Body, offset, context)

	case *ebnf.Group:
		return l.tryMatch(e.Body, offset, context)

	case *ebnf.Name:
		return l.tryMatchName(e.String, offset)

	default:
		return 0
	}
}

// nullable reports whether expr may match the empty string, so that a
// zero-length match inside a sequence is not mistaken for a failure.
func (l *Lexer) nullable(expr ebnf.Expression) bool {
	return l.nullableIn(expr, make(map[string]bool))
}

// nullableIn follows names into their productions. A production already
// being visited counts as not nullable, which breaks recursion.
func (l *Lexer) nullableIn(expr ebnf.Expression, visiting map[string]bool) bool {
	switch e := expr.(type) {
	case nil:
		return true
	case *ebnf.Option, *ebnf.Repetition:
		return true
	case *ebnf.Token:
		return e.String == ""
	case *ebnf.Group:
		return l.nullableIn(e.Body, visiting)
	case ebnf.Sequence:
		for _, item := range e {
			if !l.nullableIn(item, visiting) {
				return false
			}
		}
		return true
	case ebnf.Alternative:
		for _, alt := range e {
			if l.nullableIn(alt, visiting) {
				return true
			}
		}
		return false
	case *ebnf.Name:
		prod, ok := l.grammar[e.String]
		if !ok || visiting[e.String] {
			return false
		}
		visiting[e.String] = true
		defer delete(visiting, e.String)
		return l.nullableIn(prod.Expr, visiting)
	}
	return false
}

// tryMatchName matches a named production with memoization and cycle detection.
func (l *Lexer) tryMatchName(name string, offset int) int {
	key := memoKey{name: name, offset: offset}

	if result, ok := l.memo[key]; ok {
		if result == -1 {
			return 0
		}
		return result
	}

	// Cycle detection - if we're already visiting this production at this offset,
	// return 0 to break the cycle (left recursion)
	if l.visiting[key] {
		return 0
	}

	prod, ok := l.grammar[name]
	if !ok || prod.Expr == nil {
		l.memo[key] = -1
		return 0
	}

	l.visiting[key] = true
	result := l.tryMatch(prod.Expr, offset, name)
	delete(l.visiting, key)

	if result == 0 {
		l.memo[key] = -1
	} else {
		l.memo[key] = result
	}

	return result
}

// tryMatchToken matches a literal string.
func (l *Lexer) tryMatchToken(s string, offset int) int {
	if s == "" || offset+len(s) > len(l.input) {
		return 0
	}
	if string(l.input[offset:offset+len(s)]) == s {
		return len(s)
	}
	return 0
}

// tryMatchRange matches a character range (e.g., "a"…"z").
func (l *Lexer) tryMatchRange(begin, end string, offset int) int {
	if offset >= len(l.input) {
		return 0
	}
	begin = strings.Trim(begin, "\"")
	end = strings.Trim(end, "\"")
	if len(begin) != 1 || len(end) != 1 {
		return 0
	}
	ch := l.input[offset]
	if ch >= begin[0] && ch <= end[0] {
		return 1
	}
	return 0
}

// Tokenize reads all tokens from input. The last token has kind EOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err == io.EOF {
			tokens = append(tokens, tok)
			break
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
