package earley

import (
	"strings"
	"unicode"
)

// tokenize splits src into number, word and symbol tokens. Whitespace is
// kept as trailing text of the preceding token.
func tokenize(src string) []Token {
	var tokens []Token
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		if unicode.IsSpace(r) {
			if n := len(tokens); n > 0 {
				tokens[n-1].Text += string(r)
			}
			i++
			continue
		}
		start := i
		kind := "symbol"
		switch {
		case unicode.IsDigit(r):
			kind = "number"
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
		case unicode.IsLetter(r):
			kind = "word"
			for i < len(runes) && unicode.IsLetter(runes[i]) {
				i++
			}
		default:
			i++
		}
		value := string(runes[start:i])
		tokens = append(tokens, Token{Kind: kind, Text: value, Value: value})
	}
	return tokens
}

func word(w string) Symbol { return Lit("word", w) }

func sym(s string) Symbol { return Lit("symbol", s) }

func tokenValue(children []any) any {
	return children[0].(Token).Value
}

// sentenceGrammar is a small natural-language grammar.
func sentenceGrammar() *Grammar {
	return NewGrammar("S", []*Rule{
		NewRule("S", []Symbol{NT("NP"), NT("VP")}, nil),
		NewRule("NP", []Symbol{NT("N")}, nil),
		NewRule("VP", []Symbol{NT("V"), NT("NP")}, nil),
		NewRule("VP", []Symbol{NT("V"), word("to"), NT("VP")}, nil),
		NewRule("N", []Symbol{word("Dan")}, tokenValue),
		NewRule("N", []Symbol{word("beards")}, tokenValue),
		NewRule("V", []Symbol{word("like")}, tokenValue),
		NewRule("V", []Symbol{word("likes")}, tokenValue),
	})
}

// sumGrammar is the ambiguous e → e "+" e | n grammar.
func sumGrammar() *Grammar {
	return NewGrammar("e", []*Rule{
		NewRule("e", []Symbol{NT("e"), sym("+"), NT("e")}, nil),
		NewRule("e", []Symbol{NT("n")}, First),
		NewRule("n", []Symbol{Kind("number")}, tokenValue),
	})
}

// parenGrammar matches balanced parentheses.
func parenGrammar() *Grammar {
	return NewGrammar("E", []*Rule{
		NewRule("E", []Symbol{sym("("), NT("E"), sym(")")}, func(c []any) any { return []any{c[1]} }),
		NewRule("E", nil, Constant("")),
	})
}

func pretty(results []*Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Pretty()
	}
	return out
}

func symbols(syms []Symbol) string {
	parts := make([]string, len(syms))
	for i, s := range syms {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}
