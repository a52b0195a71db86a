package earley

import (
	"fmt"
	"strings"
)

// Item is a rule attempt anchored at chart column Origin that has
// matched its first Position symbols. Items are never modified once
// created; advancing produces a new Item.
type Item struct {
	Rule     *Rule
	Origin   int
	Position int

	// end is the column the item lives in.
	end int

	// left is the item this one was advanced from, node the backpointer
	// added by that step.
	left *Item
	node Backpointer

	// wantedBy is shared by every item descending from the same
	// prediction and lists the parents waiting for Rule.Name.
	wantedBy *prediction
}

// Backpointer is one matched child of an Item: either a finished child
// Item or the index of a scanned token.
type Backpointer struct {
	Item  *Item
	Token int
}

// prediction records, for one nonterminal in one column, the items that
// asked for it and the zero-width completions found so far.
type prediction struct {
	parents   []*Item
	completed []*Item
}

func newItem(rule *Rule, origin int, wantedBy *prediction) *Item {
	return &Item{Rule: rule, Origin: origin, end: origin, wantedBy: wantedBy}
}

// IsFinished reports whether every symbol of the rule has been matched.
func (it *Item) IsFinished() bool {
	return it.Position == len(it.Rule.Symbols)
}

// Expected returns the next symbol to match. ok is false for finished
// items.
func (it *Item) Expected() (sym Symbol, ok bool) {
	if it.IsFinished() {
		return Symbol{}, false
	}
	return it.Rule.Symbols[it.Position], true
}

// Backpointers returns the matched children in symbol order.
func (it *Item) Backpointers() []Backpointer {
	bps := make([]Backpointer, it.Position)
	for cur := it; cur.left != nil; cur = cur.left {
		bps[cur.Position-1] = cur.node
	}
	return bps
}

func (it *Item) advance(node Backpointer, end int) *Item {
	return &Item{
		Rule:     it.Rule,
		Origin:   it.Origin,
		Position: it.Position + 1,
		end:      end,
		left:     it,
		node:     node,
		wantedBy: it.wantedBy,
	}
}

// cyclic reports whether a child covering exactly the same tokens as
// it derives it.Rule again. Only cyclic grammars produce such items, and
// keeping them would let completion run forever.
func (it *Item) cyclic() bool {
	for cur := it; cur.left != nil; cur = cur.left {
		if c := cur.node.Item; c != nil && it.sameSpan(c) && c.derives(it.Rule) {
			return true
		}
	}
	return false
}

func (it *Item) derives(rule *Rule) bool {
	if it.Rule == rule {
		return true
	}
	for cur := it; cur.left != nil; cur = cur.left {
		if c := cur.node.Item; c != nil && it.sameSpan(c) && c.derives(rule) {
			return true
		}
	}
	return false
}

func (it *Item) sameSpan(o *Item) bool {
	return it.Origin == o.Origin && it.end == o.end
}

func (it *Item) String() string {
	var b strings.Builder
	b.WriteString(it.Rule.Name)
	b.WriteString(" →")
	for i, s := range it.Rule.Symbols {
		if i == it.Position {
			b.WriteString(" •")
		}
		b.WriteByte(' ')
		b.WriteString(s.String())
	}
	if it.IsFinished() {
		b.WriteString(" •")
	}
	fmt.Fprintf(&b, ", %d", it.Origin)
	return b.String()
}
