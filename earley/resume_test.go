package earley

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// outcome summarizes a parse for comparison between fresh and resumed
// parsers.
func outcome(results []*Result, err error) []string {
	if err != nil {
		return []string{"error: " + err.Error()}
	}
	return pretty(results)
}

func TestResumeMatchesFreshParse(t *testing.T) {
	tests := []struct {
		name    string
		grammar func() *Grammar
		inputs  []string
	}{
		{
			name:    "typing",
			grammar: sumGrammar,
			inputs:  []string{"", "1", "1 +", "1 + 2", "1 + 2 +", "1 + 2 + 3"},
		},
		{
			name:    "edit in the middle",
			grammar: sumGrammar,
			inputs:  []string{"1 + 2 + 3", "1 + 7 + 3", "1 + 7 3", "1 + 7 + 3 + 4"},
		},
		{
			name:    "deleting",
			grammar: sumGrammar,
			inputs:  []string{"1 + 2 + 3 + 4", "1 + 2", "1", ""},
		},
		{
			name:    "recover from error",
			grammar: sentenceGrammar,
			inputs:  []string{"Dan Dan", "Dan likes", "Dan likes beards", "Dan likes to like Dan", "beards like"},
		},
		{
			name:    "parens",
			grammar: parenGrammar,
			inputs:  []string{"(((", "((()))", "(()", "", ")("},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.grammar()
			resumed := NewParser(g)
			for _, input := range tt.inputs {
				tokens := tokenize(input)
				want := outcome(NewParser(g).Parse(tokens))
				got := outcome(resumed.Parse(tokens))
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("%q: resumed parse differs (-fresh +resumed):\n%s", input, diff)
				}
			}
		})
	}
}

func TestResumeReusesColumns(t *testing.T) {
	p := NewParser(sumGrammar())
	if _, err := p.Parse(tokenize("1 + 2")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	before := p.Chart()

	if _, err := p.Parse(tokenize("1 + 5")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	after := p.Chart()

	for i := 0; i < 2; i++ {
		if len(before[i]) != len(after[i]) {
			t.Fatalf("column %d: %d items, was %d", i, len(after[i]), len(before[i]))
		}
		for j := range before[i] {
			if before[i][j] != after[i][j] {
				t.Errorf("column %d item %d was rebuilt", i, j)
			}
		}
	}
	if before[3][0] == after[3][0] {
		t.Error("column 3 was reused although its token changed")
	}
}

func TestResumeIgnoresTrailingText(t *testing.T) {
	p := NewParser(sumGrammar())
	if _, err := p.Parse(tokenize("1+2")); err != nil {
		t.Fatalf("parse: %v", err)
	}

	results, err := p.Parse(tokenize("1 +  2  "))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := results[0].Tokens()[1].Text; got != "+  " {
		t.Errorf("token text = %q, want %q", got, "+  ")
	}
}

func TestResumeAfterUndefinedRule(t *testing.T) {
	g := NewGrammar("S", []*Rule{
		NewRule("S", []Symbol{word("a"), word("b")}, nil),
		NewRule("S", []Symbol{word("a"), word("c"), NT("X")}, nil),
	})
	p := NewParser(g)

	_, err := p.Parse(tokenize("a c"))
	var undefined *UndefinedRuleError
	if !errors.As(err, &undefined) || undefined.Name != "X" {
		t.Fatalf("got %v, want undefined rule X", err)
	}
	if n := len(p.Chart()); n != 0 {
		t.Errorf("chart kept %d columns after an undefined rule", n)
	}

	tokens := tokenize("a b")
	want := outcome(NewParser(g).Parse(tokens))
	got := outcome(p.Parse(tokens))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parse after undefined rule differs (-fresh +reused):\n%s", diff)
	}
	if diff := cmp.Diff([]string{`(S "a" "b")`}, got); diff != "" {
		t.Errorf("derivation mismatch (-want +got):\n%s", diff)
	}
}
