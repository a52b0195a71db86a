package parse

import (
	"fmt"
	"maps"

	"github.com/dhamidi/chartparse/earley"
	"github.com/dhamidi/chartparse/ebnflex"
	"golang.org/x/exp/ebnf"
)

// Language is an EBNF grammar compiled for parsing: the lexical
// productions drive the tokenizer, the syntactic ones the parser.
type Language struct {
	Name     string
	Lexical  ebnf.Grammar
	Grammar  *earley.Grammar
	Literals []string

	skipKinds map[string]bool
}

type options struct {
	name      string
	undefined []string
	skipKinds []string
}

// Option configures Compile.
type Option func(*options)

// WithName names the language.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithUndefined declares nonterminals that are intentionally left
// without productions.
func WithUndefined(names ...string) Option {
	return func(o *options) { o.undefined = append(o.undefined, names...) }
}

// WithSkipKinds sets which token kinds are trivia. Trivia never reaches
// the parser; it is kept as trailing text of the preceding token.
// The default is WhiteSpace and Comment.
func WithSkipKinds(kinds ...string) Option {
	return func(o *options) { o.skipKinds = kinds }
}

// LoadLanguage loads an EBNF grammar from a file and compiles it.
func LoadLanguage(filename, start string, opts ...Option) (*Language, error) {
	g, err := ebnflex.LoadGrammar(filename)
	if err != nil {
		return nil, err
	}
	lang, err := Compile(g, start, opts...)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", filename, err)
	}
	return lang, nil
}

// Compile builds a Language from g, parsing from the start production.
//
// Lowercase productions become rules; uppercase names are token kinds
// produced by the lexer; quoted strings are literals the lexer
// recognizes directly. Groups, options and repetitions become auxiliary
// rules whose nodes are spliced into the enclosing production.
func Compile(g ebnf.Grammar, start string, opts ...Option) (*Language, error) {
	o := options{skipKinds: []string{"WhiteSpace", "Comment"}}
	for _, opt := range opts {
		opt(&o)
	}

	grammar, literals, err := compileGrammar(g, start)
	if err != nil {
		return nil, err
	}
	grammar.Declare(o.undefined...)
	// Parsers on several documents share the grammar; build the
	// reversed form now so they only ever read it.
	grammar.Reverse()

	lang := &Language{
		Name:      o.name,
		Lexical:   g,
		Grammar:   grammar,
		Literals:  literals,
		skipKinds: make(map[string]bool),
	}
	for _, k := range o.skipKinds {
		lang.skipKinds[k] = true
	}
	return lang, nil
}

// Extend returns a copy of the language whose grammar also has rules.
// l itself, and parsers already using it, are unaffected.
func (l *Language) Extend(rules ...*earley.Rule) *Language {
	g := l.Grammar.Copy()
	for _, r := range rules {
		g.AddRule(r)
	}
	g.Reverse()

	ext := *l
	ext.Grammar = g
	ext.skipKinds = maps.Clone(l.skipKinds)
	return &ext
}

// IsTrivia reports whether tokens of kind are skipped by the parser.
func (l *Language) IsTrivia(kind string) bool {
	return l.skipKinds[kind]
}

// Tokenize lexes src. It returns the significant tokens with their
// positions and, aligned with them, the tokens handed to the parser.
// Trivia is appended to the Text of the preceding parser token.
func (l *Language) Tokenize(src []byte, filename string) ([]ebnflex.Token, []earley.Token, error) {
	lexer := ebnflex.NewLexer(l.Lexical, src, filename, ebnflex.WithLiterals(l.Literals...))
	all, err := lexer.Tokenize()
	if err != nil {
		return nil, nil, fmt.Errorf("tokenize: %w", err)
	}

	var lexed []ebnflex.Token
	var tokens []earley.Token
	for _, tok := range all {
		switch {
		case tok.Kind == "EOF":
		case l.IsTrivia(tok.Kind):
			if n := len(tokens); n > 0 {
				tokens[n-1].Text += tok.Literal
			}
		default:
			lexed = append(lexed, tok)
			tokens = append(tokens, earley.Token{Kind: tok.Kind, Text: tok.Literal, Value: tok.Literal})
		}
	}
	return lexed, tokens, nil
}

// NewParser returns a parser for one document in this language.
func (l *Language) NewParser(filename string) *Parser {
	return &Parser{
		lang:      l,
		filename:  filename,
		parser:    earley.NewParser(l.Grammar),
		completer: earley.NewCompleter(l.Grammar),
	}
}
