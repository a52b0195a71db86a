package earley

import "fmt"

// CursorKind is the kind of the sentinel token the Completer places at
// the cursor. No terminal matches it.
const CursorKind = "◬"

// Token is a lexical unit as produced by a tokenizer.
//
// Text is the surface form including any trailing trivia; Value is the
// semantic payload terminals match against.
type Token struct {
	Kind  string
	Text  string
	Value string
}

// Equal reports whether two tokens are interchangeable for parsing. Text
// is ignored, so a change in trailing whitespace keeps a chart column
// valid.
func (t Token) Equal(o Token) bool {
	return t.Kind == o.Kind && t.Value == o.Value
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q", t.Kind, t.Value)
}

func cursorToken() Token {
	return Token{Kind: CursorKind, Value: CursorKind}
}

// commonPrefix returns the number of leading tokens a and b agree on.
func commonPrefix(a, b []Token) int {
	n := 0
	for n < len(a) && n < len(b) && a[n].Equal(b[n]) {
		n++
	}
	return n
}
