package earley

import (
	"slices"

	"github.com/tliron/commonlog"
)

// column holds the items whose dot reached one token boundary.
type column struct {
	index int
	items []*Item

	// seeds is the number of leading items that were scanned in from the
	// previous column. Everything after them is derived from the seeds
	// alone, so a column can be rebuilt from items[:seeds].
	seeds int

	predicted map[string]*prediction
}

func newColumn(index int, seeds []*Item) *column {
	return &column{
		index:     index,
		items:     seeds,
		seeds:     len(seeds),
		predicted: make(map[string]*prediction),
	}
}

// reset discards everything derived from the seeds.
func (c *column) reset() {
	c.items = slices.Clip(c.items[:c.seeds])
	c.predicted = make(map[string]*prediction)
}

// Parser builds Earley charts over a grammar. A Parser keeps the chart
// of its last call and reuses the columns a new token sequence shares
// with the previous one. It must not be used from several goroutines.
//
// Parsing terminates on cyclic grammars, but the number of derivations
// returned can grow exponentially with the input, since every distinct
// derivation becomes its own Result.
type Parser struct {
	grammar *Grammar
	tokens  []Token
	chart   []*column
}

// NewParser returns a parser for g.
func NewParser(g *Grammar) *Parser {
	return &Parser{grammar: g}
}

// Grammar returns the grammar the parser was built for.
func (p *Parser) Grammar() *Grammar {
	return p.grammar
}

// Chart returns the items of every column built by the last call to
// Parse, including the column it failed in.
func (p *Parser) Chart() [][]*Item {
	chart := make([][]*Item, len(p.chart))
	for i, col := range p.chart {
		chart[i] = slices.Clone(col.items)
	}
	return chart
}

// Parse returns every derivation of the grammar's start rule over
// tokens. It fails with *ParseError when a token cannot be consumed,
// *IncompleteInputError when the tokens run out early and
// *UndefinedRuleError when the grammar references a missing rule.
func (p *Parser) Parse(tokens []Token) ([]*Result, error) {
	log := commonlog.GetLogger("chartparse.earley")

	resume := p.resumeAt(tokens)
	p.tokens = slices.Clone(tokens)
	if resume < 0 {
		log.Debugf("fresh parse of %d tokens", len(tokens))
		p.chart = []*column{newColumn(0, nil)}
		resume = 0
	} else {
		log.Debugf("resuming parse of %d tokens at column %d", len(tokens), resume)
		p.chart = p.chart[:resume+1]
		p.chart[resume].reset()
	}

	for i := resume; ; i++ {
		col := p.chart[i]
		next, err := p.process(col)
		if err != nil {
			p.chart, p.tokens = nil, nil
			return nil, err
		}
		if i == len(p.tokens) {
			break
		}
		if len(next) == 0 {
			perr := newParseError(p.grammar, p.tokens, i, col.items)
			return nil, &perr
		}
		p.chart = append(p.chart, newColumn(i+1, next))
	}

	return p.results()
}

// resumeAt returns the first column that has to be rebuilt for tokens,
// or -1 when nothing can be reused.
func (p *Parser) resumeAt(tokens []Token) int {
	if len(p.chart) == 0 {
		return -1
	}
	n := commonPrefix(p.tokens, tokens)
	return min(n, len(p.chart)-1)
}

func (p *Parser) results() ([]*Result, error) {
	last := p.chart[len(p.chart)-1]
	var results []*Result
	for _, it := range last.items {
		if it.IsFinished() && it.Origin == 0 && it.Rule.Name == p.grammar.Start {
			results = append(results, &Result{item: it, tokens: p.tokens})
		}
	}
	if len(results) == 0 {
		return nil, &IncompleteInputError{
			ParseError: newParseError(p.grammar, p.tokens, len(p.tokens), last.items),
		}
	}
	return results, nil
}

// process drains col as a work queue and returns the items scanned into
// the next column.
func (p *Parser) process(col *column) ([]*Item, error) {
	i := col.index
	if i == 0 && col.seeds == 0 {
		if err := p.predict(col, p.grammar.Start, nil); err != nil {
			return nil, err
		}
	}

	var next []*Item
	for j := 0; j < len(col.items); j++ {
		it := col.items[j]
		sym, ok := it.Expected()
		switch {
		case !ok:
			p.complete(col, it)
		case !sym.IsTerminal():
			if err := p.predict(col, sym.Name(), it); err != nil {
				return nil, err
			}
		case i < len(p.tokens) && sym.Match(p.tokens[i]):
			next = append(next, it.advance(Backpointer{Token: i}, i+1))
		}
	}
	return next, nil
}

// predict adds the alternatives of name to col the first time name is
// asked for there, and registers parent as waiting for it.
func (p *Parser) predict(col *column, name string, parent *Item) error {
	pred, seen := col.predicted[name]
	if !seen {
		rules, err := p.grammar.Lookup(name)
		if err != nil {
			return err
		}
		pred = &prediction{}
		col.predicted[name] = pred
		for _, r := range rules {
			col.items = append(col.items, newItem(r, col.index, pred))
		}
	}
	if parent == nil {
		return nil
	}
	pred.parents = append(pred.parents, parent)
	for _, done := range pred.completed {
		p.advance(col, parent, done)
	}
	return nil
}

// complete advances every item waiting for the rule it finished.
func (p *Parser) complete(col *column, it *Item) {
	pred := it.wantedBy
	if pred == nil {
		return
	}
	if it.Origin == col.index {
		pred.completed = append(pred.completed, it)
	}
	for _, parent := range pred.parents {
		p.advance(col, parent, it)
	}
}

func (p *Parser) advance(col *column, parent, child *Item) {
	next := parent.advance(Backpointer{Item: child}, col.index)
	if next.IsFinished() && next.cyclic() {
		return
	}
	col.items = append(col.items, next)
}
