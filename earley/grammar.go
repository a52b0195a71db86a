package earley

import (
	"maps"
	"slices"
)

// Grammar is a set of rules with a designated start name.
//
// Grammars are append-only. A grammar in use by a Parser must not gain
// rules concurrently; extend a Copy instead.
type Grammar struct {
	Start string

	rules     []*Rule
	byName    map[string][]*Rule
	undefined map[string]bool
	reversed  *Grammar
}

// NewGrammar returns a grammar over rules. Names listed in undefined may
// be referenced without ever having rules.
func NewGrammar(start string, rules []*Rule, undefined ...string) *Grammar {
	g := &Grammar{
		Start:     start,
		byName:    make(map[string][]*Rule),
		undefined: make(map[string]bool),
	}
	for _, name := range undefined {
		g.undefined[name] = true
	}
	for _, r := range rules {
		g.AddRule(r)
	}
	return g
}

// AddRule appends a rule. References to unknown names are not checked
// here; they fail when a parse first needs them.
func (g *Grammar) AddRule(r *Rule) {
	g.rules = append(g.rules, r)
	g.byName[r.Name] = append(g.byName[r.Name], r)
	g.reversed = nil
}

// Declare marks names as intentionally undefined.
func (g *Grammar) Declare(names ...string) {
	for _, name := range names {
		g.undefined[name] = true
	}
	g.reversed = nil
}

// Rules returns all rules in declaration order.
func (g *Grammar) Rules() []*Rule {
	return slices.Clone(g.rules)
}

// Lookup returns the alternatives for name in declaration order.
func (g *Grammar) Lookup(name string) ([]*Rule, error) {
	if rules, ok := g.byName[name]; ok {
		return rules, nil
	}
	if g.undefined[name] {
		return nil, nil
	}
	return nil, &UndefinedRuleError{Name: name}
}

// Missing lists nonterminals referenced by some rule that have neither
// rules nor an undefined declaration, in order of first reference.
func (g *Grammar) Missing() []string {
	var missing []string
	seen := make(map[string]bool)
	for _, r := range g.rules {
		for _, s := range r.Symbols {
			if s.IsTerminal() || seen[s.Name()] {
				continue
			}
			seen[s.Name()] = true
			if _, err := g.Lookup(s.Name()); err != nil {
				missing = append(missing, s.Name())
			}
		}
	}
	return missing
}

// Copy returns a grammar sharing g's rules whose rule lists are
// independent: adding rules to the copy leaves g untouched.
func (g *Grammar) Copy() *Grammar {
	byName := make(map[string][]*Rule, len(g.byName))
	for name, rules := range g.byName {
		byName[name] = slices.Clip(rules)
	}
	return &Grammar{
		Start:     g.Start,
		rules:     slices.Clip(g.rules),
		byName:    byName,
		undefined: maps.Clone(g.undefined),
	}
}

// Reverse returns a grammar whose rules match their symbols right to
// left. Each reversed rule's Original points back into g. The result is
// computed once and reused until g gains rules.
func (g *Grammar) Reverse() *Grammar {
	if g.reversed != nil {
		return g.reversed
	}
	rev := &Grammar{
		Start:     g.Start,
		byName:    make(map[string][]*Rule, len(g.byName)),
		undefined: maps.Clone(g.undefined),
	}
	for _, r := range g.rules {
		rev.AddRule(r.reverse())
	}
	g.reversed = rev
	return rev
}

// isAlias reports whether every alternative of name is a single symbol
// already present in listed.
func (g *Grammar) isAlias(name string, listed map[string]bool) bool {
	rules := g.byName[name]
	if len(rules) == 0 {
		return false
	}
	for _, r := range rules {
		if len(r.Symbols) != 1 || !listed[r.Symbols[0].String()] {
			return false
		}
	}
	return true
}
