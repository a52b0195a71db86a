package parse

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dhamidi/chartparse/earley"
	"github.com/dhamidi/chartparse/ebnflex"
	"golang.org/x/exp/ebnf"
)

// splice carries the nodes matched by a group, option or repetition up
// into the production that contains it.
type splice []*Node

// compiler turns the syntactic productions of an EBNF grammar into
// earley rules. Lexical productions (uppercase names) stay with the
// lexer and are referenced by kind.
type compiler struct {
	src      ebnf.Grammar
	g        *earley.Grammar
	literals []string
	aux      map[string]int
	errs     []error

	// Productions are compiled in the order they are reached from the
	// start production. Lowercase helpers used only by lexical
	// productions are never reached.
	reached map[string]bool
	queue   []string
}

func compileGrammar(src ebnf.Grammar, start string) (*earley.Grammar, []string, error) {
	if prod, ok := src[start]; !ok || prod == nil {
		return nil, nil, fmt.Errorf("start production %q not found in grammar", start)
	}
	if ebnflex.IsLexical(start) {
		return nil, nil, fmt.Errorf("start production %q is lexical", start)
	}

	c := &compiler{
		src:     src,
		g:       earley.NewGrammar(start, nil),
		aux:     make(map[string]int),
		reached: map[string]bool{start: true},
		queue:   []string{start},
	}
	for len(c.queue) > 0 {
		name := c.queue[0]
		c.queue = c.queue[1:]
		c.production(name, src[name].Expr)
	}
	if len(c.errs) > 0 {
		return nil, nil, errors.Join(c.errs...)
	}
	return c.g, c.literals, nil
}

func (c *compiler) production(name string, expr ebnf.Expression) {
	action := func(children []any) any {
		n := NewNonTerminal(name)
		n.Children = flatten(children)
		return n
	}
	c.alternatives(name, expr, action)
}

// alternatives adds one rule per alternative of expr, in source order.
func (c *compiler) alternatives(name string, expr ebnf.Expression, action earley.Action) {
	if alt, ok := expr.(ebnf.Alternative); ok {
		for _, e := range alt {
			c.alternatives(name, e, action)
		}
		return
	}
	c.g.AddRule(earley.NewRule(name, c.sequence(name, expr), action))
}

func (c *compiler) sequence(owner string, expr ebnf.Expression) []earley.Symbol {
	switch e := expr.(type) {
	case nil:
		return nil
	case ebnf.Sequence:
		var symbols []earley.Symbol
		for _, item := range e {
			symbols = append(symbols, c.symbol(owner, item))
		}
		return symbols
	default:
		return []earley.Symbol{c.symbol(owner, e)}
	}
}

func (c *compiler) symbol(owner string, expr ebnf.Expression) earley.Symbol {
	switch e := expr.(type) {
	case *ebnf.Name:
		if ebnflex.IsLexical(e.String) {
			return earley.Kind(e.String)
		}
		if prod := c.src[e.String]; prod != nil && !c.reached[e.String] {
			c.reached[e.String] = true
			c.queue = append(c.queue, e.String)
		}
		return earley.NT(e.String)

	case *ebnf.Token:
		if !slices.Contains(c.literals, e.String) {
			c.literals = append(c.literals, e.String)
		}
		return earley.Lit(ebnflex.LiteralKind, e.String)

	case *ebnf.Group:
		name := c.auxName(owner)
		c.alternatives(name, e.Body, spliceAction)
		return earley.NT(name)

	case *ebnf.Option:
		name := c.auxName(owner)
		c.alternatives(name, e.Body, spliceAction)
		c.g.AddRule(earley.NewRule(name, nil, spliceAction))
		return earley.NT(name)

	case *ebnf.Repetition:
		name := c.auxName(owner)
		c.g.AddRule(earley.NewRule(name, nil, spliceAction))
		alts := []ebnf.Expression{e.Body}
		if alt, ok := e.Body.(ebnf.Alternative); ok {
			alts = alt
		}
		for _, alt := range alts {
			symbols := append([]earley.Symbol{earley.NT(name)}, c.sequence(owner, alt)...)
			c.g.AddRule(earley.NewRule(name, symbols, spliceAction))
		}
		return earley.NT(name)

	case *ebnf.Range:
		c.errs = append(c.errs, fmt.Errorf("%s: range in syntactic production %q", e.Pos(), owner))
		return earley.NT(owner)

	default:
		// Sequences and alternatives only occur inside groups.
		name := c.auxName(owner)
		c.alternatives(name, e, spliceAction)
		return earley.NT(name)
	}
}

func (c *compiler) auxName(owner string) string {
	c.aux[owner]++
	return fmt.Sprintf("%s·%d", owner, c.aux[owner])
}

func spliceAction(children []any) any {
	return splice(flatten(children))
}

func flatten(children []any) []*Node {
	nodes := make([]*Node, 0, len(children))
	for _, child := range children {
		switch v := child.(type) {
		case *Node:
			nodes = append(nodes, v)
		case splice:
			nodes = append(nodes, v...)
		case earley.Token:
			nodes = append(nodes, &Node{
				Kind:  v.Kind,
				Token: &ebnflex.Token{Kind: v.Kind, Literal: v.Value},
			})
		}
	}
	return nodes
}
