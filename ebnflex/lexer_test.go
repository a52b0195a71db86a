package ebnflex

import (
	"strings"
	"testing"

	"golang.org/x/exp/ebnf"
)

const calcLexical = `
Number = digit { digit } .
Identifier = letter { letter | digit } .
WhiteSpace = " " | "\t" | "\n" .
digit = "0" … "9" .
letter = "a" … "z" .
`

func mustGrammar(t *testing.T, src string) ebnf.Grammar {
	t.Helper()
	g, err := ebnf.Parse("test.ebnf", strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse grammar: %v", err)
	}
	return g
}

func TestLexerTokens(t *testing.T) {
	g := mustGrammar(t, calcLexical)

	tests := []struct {
		input    string
		literals []string
		expected []string
	}{
		{"", nil, []string{"EOF"}},
		{"12 ab3", nil, []string{"Number 12", "WhiteSpace  ", "Identifier ab3", "EOF"}},
		{"let x", []string{"let"}, []string{"Literal let", "WhiteSpace  ", "Identifier x", "EOF"}},
		{"letter", []string{"let"}, []string{"Identifier letter", "EOF"}},
		{"(1+2)", []string{"(", ")", "+"}, []string{"Literal (", "Number 1", "Literal +", "Number 2", "Literal )", "EOF"}},
		{"1?", nil, []string{"Number 1", "ERROR ?", "EOF"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lexer := NewLexer(g, []byte(tt.input), "test", WithLiterals(tt.literals...))
			tokens, err := lexer.Tokenize()
			if err != nil {
				t.Fatalf("tokenize: %v", err)
			}
			var got []string
			for _, tok := range tokens {
				got = append(got, strings.TrimSpace(tok.Kind+" "+tok.Literal))
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("got %q, want %q", got, tt.expected)
			}
			for i := range got {
				if got[i] != strings.TrimSpace(tt.expected[i]) {
					t.Errorf("token %d: got %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestLexerPositions(t *testing.T) {
	g := mustGrammar(t, calcLexical)

	tokens, err := NewLexer(g, []byte("a\n bc"), "pos.calc").Tokenize()
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}

	bc := tokens[3]
	if bc.Literal != "bc" {
		t.Fatalf("token 3 = %v, want bc", bc)
	}
	if bc.Position.Line != 2 || bc.Position.Column != 2 || bc.Position.Offset != 3 {
		t.Errorf("position = %+v, want line 2 column 2 offset 3", bc.Position)
	}
	if got := bc.End(); got.Column != 4 || got.Offset != 5 {
		t.Errorf("end = %+v, want column 4 offset 5", got)
	}
	if got := bc.Position.String(); got != "pos.calc:2:2" {
		t.Errorf("String() = %q", got)
	}
}

func TestLexicalNames(t *testing.T) {
	names := LexicalNames(mustGrammar(t, calcLexical))
	want := []string{"Identifier", "Number", "WhiteSpace"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", names, want)
	}
}

func TestLexerNullableReference(t *testing.T) {
	g := mustGrammar(t, `
Word = Sign letter { letter } .
Sign = [ Minus ] .
Minus = "-" .
Rec = Rec "x" | "y" .
letter = "a" … "z" .
`)

	tests := []struct {
		input    string
		expected []string
	}{
		{"a", []string{"Word a", "EOF"}},
		{"-ab", []string{"Word -ab", "EOF"}},
		{"y", []string{"Rec y", "EOF"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := NewLexer(g, []byte(tt.input), "test").Tokenize()
			if err != nil {
				t.Fatalf("tokenize: %v", err)
			}
			var got []string
			for _, tok := range tokens {
				got = append(got, strings.TrimSpace(tok.Kind+" "+tok.Literal))
			}
			if strings.Join(got, "|") != strings.Join(tt.expected, "|") {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}

	lexer := NewLexer(g, nil, "test")
	if lexer.nullable(&ebnf.Name{String: "Rec"}) {
		t.Error("Rec matches at least one byte")
	}
	if !lexer.nullable(&ebnf.Name{String: "Sign"}) {
		t.Error("Sign may be empty")
	}
}
