package earley

import (
	"slices"
	"strings"
)

// Action builds the semantic value of a fully matched rule from the
// values of its children, one per symbol. Terminal children are passed as
// Token values.
type Action func(children []any) any

// Rule is a named production. Rules are immutable once built and may be
// shared between grammars.
type Rule struct {
	Name    string
	Symbols []Symbol
	Action  Action

	// Original is set on rules of a reversed grammar and points at the
	// rule they were derived from.
	Original *Rule
}

// NewRule builds a rule. A nil action yields the children slice.
func NewRule(name string, symbols []Symbol, action Action) *Rule {
	if action == nil {
		action = List
	}
	return &Rule{
		Name:    name,
		Symbols: slices.Clip(slices.Clone(symbols)),
		Action:  action,
	}
}

// List is an Action returning the children unchanged.
func List(children []any) any {
	return children
}

// First is an Action returning the first child, or nil for empty rules.
func First(children []any) any {
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// Constant returns an Action that ignores its children and yields v.
func Constant(v any) Action {
	return func([]any) any { return v }
}

func (r *Rule) reverse() *Rule {
	symbols := slices.Clone(r.Symbols)
	slices.Reverse(symbols)
	action := r.Action
	return &Rule{
		Name:    r.Name,
		Symbols: symbols,
		Action: func(children []any) any {
			ordered := slices.Clone(children)
			slices.Reverse(ordered)
			return action(ordered)
		},
		Original: r,
	}
}

func (r *Rule) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteString(" →")
	if len(r.Symbols) == 0 {
		b.WriteString(" ε")
	}
	for _, s := range r.Symbols {
		b.WriteByte(' ')
		b.WriteString(s.String())
	}
	return b.String()
}
