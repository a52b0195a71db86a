package earley

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGrammarLookupOrder(t *testing.T) {
	g := sentenceGrammar()

	rules, err := g.Lookup("VP")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	got := []string{rules[0].String(), rules[1].String()}
	want := []string{"VP → V NP", `VP → V "to" VP`}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("alternatives mismatch (-want +got):\n%s", diff)
	}

	var undefined *UndefinedRuleError
	if _, err := g.Lookup("Adj"); !errors.As(err, &undefined) {
		t.Errorf("lookup Adj: got %v, want *UndefinedRuleError", err)
	}
}

func TestGrammarCopyIsIndependent(t *testing.T) {
	g := NewGrammar("S", nil)
	for _, w := range []string{"a", "b", "c"} {
		g.AddRule(NewRule("S", []Symbol{word(w)}, nil))
	}

	cp := g.Copy()
	cp.AddRule(NewRule("S", []Symbol{word("copy")}, nil))
	g.AddRule(NewRule("S", []Symbol{word("original")}, nil))

	orig, _ := g.Lookup("S")
	copied, _ := cp.Lookup("S")
	if got := orig[3].String(); got != `S → "original"` {
		t.Errorf("original 4th rule = %s", got)
	}
	if got := copied[3].String(); got != `S → "copy"` {
		t.Errorf("copy 4th rule = %s", got)
	}
	if len(g.Rules()) != 4 || len(cp.Rules()) != 4 {
		t.Errorf("rule counts %d and %d, want 4 and 4", len(g.Rules()), len(cp.Rules()))
	}
	if orig[0] != copied[0] {
		t.Error("copy does not share rule values")
	}

	cp.Declare("X")
	if _, err := g.Lookup("X"); err == nil {
		t.Error("declaring X on the copy leaked into the original")
	}
}

func TestGrammarReverse(t *testing.T) {
	g := sentenceGrammar()
	rev := g.Reverse()

	if rev != g.Reverse() {
		t.Error("Reverse() is not memoized")
	}
	rules, err := rev.Lookup("VP")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got, want := rules[1].String(), `VP → VP "to" V`; got != want {
		t.Errorf("reversed rule = %s, want %s", got, want)
	}
	orig, _ := g.Lookup("VP")
	if rules[1].Original != orig[1] {
		t.Error("reversed rule does not point at its original")
	}

	g.AddRule(NewRule("N", []Symbol{word("Ann")}, tokenValue))
	if g.Reverse() == rev {
		t.Error("Reverse() not recomputed after AddRule")
	}
}

func TestGrammarReverseParse(t *testing.T) {
	rev := sentenceGrammar().Reverse()
	tokens := tokenize("beards likes Dan")

	results, err := NewParser(rev).Parse(tokens)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []any{[]any{"Dan"}, []any{"likes", []any{"beards"}}}
	if diff := cmp.Diff(want, results[0].Process()); diff != "" {
		t.Errorf("Process() mismatch (-want +got):\n%s", diff)
	}
}

func TestGrammarMissing(t *testing.T) {
	g := NewGrammar("S", []*Rule{
		NewRule("S", []Symbol{NT("A"), NT("B"), NT("C")}, nil),
		NewRule("A", []Symbol{word("a")}, nil),
	}, "C")

	if diff := cmp.Diff([]string{"B"}, g.Missing()); diff != "" {
		t.Errorf("Missing() mismatch (-want +got):\n%s", diff)
	}
}

func TestSymbolMatch(t *testing.T) {
	tok := Token{Kind: "word", Text: "likes ", Value: "likes"}

	tests := []struct {
		sym  Symbol
		tok  Token
		want bool
	}{
		{Kind("word"), tok, true},
		{Kind("number"), tok, false},
		{Lit("word", "likes"), tok, true},
		{Lit("word", "like"), tok, false},
		{Lit("symbol", "likes"), tok, false},
		{NT("word"), tok, false},
		{Kind(CursorKind), cursorToken(), false},
	}
	for _, tt := range tests {
		if got := tt.sym.Match(tt.tok); got != tt.want {
			t.Errorf("%s.Match(%s) = %v, want %v", tt.sym, tt.tok, got, tt.want)
		}
	}
}
