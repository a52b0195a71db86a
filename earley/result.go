package earley

import (
	"strconv"
	"strings"
)

// Result is one complete derivation of the start rule.
type Result struct {
	item   *Item
	tokens []Token

	processed bool
	value     any
}

// Item returns the finished start item the derivation hangs off.
func (r *Result) Item() *Item {
	return r.item
}

// Tokens returns the token sequence that was parsed.
func (r *Result) Tokens() []Token {
	return r.tokens
}

// Process runs the rule actions bottom-up and returns the value of the
// start rule. Sub-derivations shared between branches are evaluated
// once, and repeated calls return the cached value.
func (r *Result) Process() any {
	if !r.processed {
		memo := make(map[*Item]any)
		r.value = r.process(r.item, memo)
		r.processed = true
	}
	return r.value
}

func (r *Result) process(it *Item, memo map[*Item]any) any {
	if v, ok := memo[it]; ok {
		return v
	}
	bps := it.Backpointers()
	children := make([]any, len(bps))
	for i, bp := range bps {
		if bp.Item == nil {
			children[i] = r.tokens[bp.Token]
			continue
		}
		children[i] = r.process(bp.Item, memo)
	}
	v := it.Rule.Action(children)
	memo[it] = v
	return v
}

// Pretty renders the derivation as a bracketed trace of rule names and
// token values, independent of the rule actions.
func (r *Result) Pretty() string {
	var b strings.Builder
	r.pretty(&b, r.item)
	return b.String()
}

func (r *Result) pretty(b *strings.Builder, it *Item) {
	b.WriteByte('(')
	b.WriteString(it.Rule.Name)
	for _, bp := range it.Backpointers() {
		b.WriteByte(' ')
		if bp.Item == nil {
			b.WriteString(strconv.Quote(r.tokens[bp.Token].Value))
			continue
		}
		r.pretty(b, bp.Item)
	}
	b.WriteByte(')')
}
