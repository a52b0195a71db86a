package earley

import "strconv"

// Symbol is one element of a rule body: either a reference to another
// rule (nonterminal) or a terminal matcher. The variant is fixed when the
// symbol is built.
type Symbol struct {
	name     string
	terminal bool
	kind     string
	value    string
	hasValue bool
}

// NT returns a nonterminal symbol referring to the rules called name.
func NT(name string) Symbol {
	return Symbol{name: name}
}

// Kind returns a terminal matching any token of the given kind.
func Kind(kind string) Symbol {
	return Symbol{terminal: true, kind: kind}
}

// Lit returns a terminal matching tokens of the given kind whose value
// equals value.
func Lit(kind, value string) Symbol {
	return Symbol{terminal: true, kind: kind, value: value, hasValue: true}
}

func (s Symbol) IsTerminal() bool { return s.terminal }

// Name is the rule name of a nonterminal, empty for terminals.
func (s Symbol) Name() string { return s.name }

// TokenKind is the kind tested by a terminal, empty for nonterminals.
func (s Symbol) TokenKind() string { return s.kind }

// Value returns the exact value a terminal requires, if any.
func (s Symbol) Value() (string, bool) { return s.value, s.hasValue }

// Match reports whether a terminal accepts tok. Nonterminals never match,
// and neither does the cursor sentinel.
func (s Symbol) Match(tok Token) bool {
	if !s.terminal || tok.Kind == CursorKind {
		return false
	}
	if tok.Kind != s.kind {
		return false
	}
	return !s.hasValue || tok.Value == s.value
}

func (s Symbol) String() string {
	switch {
	case !s.terminal:
		return s.name
	case s.hasValue:
		return strconv.Quote(s.value)
	default:
		return s.kind
	}
}
