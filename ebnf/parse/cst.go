// Package parse provides parsing based on EBNF grammars, producing concrete syntax trees.
package parse

import (
	"strconv"
	"strings"

	"github.com/dhamidi/chartparse/ebnflex"
)

// Span represents a range in source code.
type Span struct {
	Start ebnflex.Position
	End   ebnflex.Position
}

// Node represents a node in the concrete syntax tree.
// Leaf nodes have a non-nil Token; interior nodes have Children.
type Node struct {
	Kind     string         // Production name or token kind
	Children []*Node        // Child nodes (nil for terminals)
	Token    *ebnflex.Token // The token (non-nil for terminals)
	Span     Span           // Source span covering this node
}

// IsTerminal returns true if this is a leaf node (token).
func (n *Node) IsTerminal() bool {
	return n.Token != nil
}

// Text returns the source text of this node.
// For terminals, returns the token literal.
// For non-terminals, returns empty string (caller should use span to extract text).
func (n *Node) Text() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// String renders the tree as nested parentheses, terminals as quoted
// literals.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n.IsTerminal() {
		b.WriteString(strconv.Quote(n.Token.Literal))
		return
	}
	b.WriteByte('(')
	b.WriteString(n.Kind)
	for _, c := range n.Children {
		b.WriteByte(' ')
		c.write(b)
	}
	b.WriteByte(')')
}

// NewTerminal creates a terminal node from a token.
func NewTerminal(tok ebnflex.Token) *Node {
	return &Node{
		Kind:  tok.Kind,
		Token: &tok,
		Span: Span{
			Start: tok.Position,
			End:   tok.End(),
		},
	}
}

// NewNonTerminal creates a non-terminal node.
func NewNonTerminal(kind string) *Node {
	return &Node{
		Kind:     kind,
		Children: make([]*Node, 0),
	}
}

// place assigns positions to the leaves of n from toks, which must be
// the tokens n was parsed from in source order, and recomputes spans.
// next is the index of the first unplaced token.
func (n *Node) place(toks []ebnflex.Token, next int, at ebnflex.Position) int {
	if n.IsTerminal() {
		tok := toks[next]
		*n = *NewTerminal(tok)
		return next + 1
	}
	n.Span = Span{Start: at, End: at}
	for i, c := range n.Children {
		next = c.place(toks, next, at)
		if i == 0 {
			n.Span.Start = c.Span.Start
		}
		n.Span.End = c.Span.End
		at = c.Span.End
	}
	return next
}
