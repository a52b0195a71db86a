package codebase

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dhamidi/chartparse/earley"
	"github.com/dhamidi/chartparse/ebnf/parse"
)

type CompletionKind int

const (
	// CompletionKindKeyword inserts literal text only.
	CompletionKindKeyword CompletionKind = iota
	// CompletionKindSnippet has placeholders for tokens or phrases.
	CompletionKindSnippet
)

type CompletionItem struct {
	Label      string
	Kind       CompletionKind
	Detail     string
	InsertText string
	// Replace is the text the insertion replaces, the typed prefix of a
	// word or an empty span at the cursor.
	Replace parse.Span
}

// CompletionsAtPoint returns what may be typed at a 1-based line and
// column of a document, shortest insertions first.
func (c *Codebase) CompletionsAtPoint(path string, line, column int) []CompletionItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := c.files[path]
	if f == nil {
		return nil
	}
	lang, err := c.languageForLocked(path)
	if err != nil {
		return nil
	}

	offset := offsetOf(f.Content, line, column)
	completions, err := c.parserLocked(path, lang).Complete(f.Content, offset)
	if err != nil {
		log.Debugf("complete %s:%d:%d: %v", path, line, column, err)
		return nil
	}
	return completionItems(completions)
}

func completionItems(completions []parse.Completion) []CompletionItem {
	type ranked struct {
		item CompletionItem
		rank int
	}
	var items []ranked
	seen := make(map[string]bool)
	for _, comp := range completions {
		if !matchesSeed(comp.Gap, comp.Seed) {
			continue
		}
		item := CompletionItem{
			Label:      label(comp.Gap),
			Kind:       CompletionKindKeyword,
			Detail:     displayName(comp.Rule.Name),
			InsertText: snippet(comp.Gap),
			Replace:    comp.Replace,
		}
		if seen[item.InsertText] {
			continue
		}
		seen[item.InsertText] = true
		for _, sym := range comp.Gap {
			if _, ok := sym.Value(); !ok {
				item.Kind = CompletionKindSnippet
			}
		}
		items = append(items, ranked{item, len(comp.Gap)})
	}

	slices.SortStableFunc(items, func(a, b ranked) int {
		return cmp.Or(cmp.Compare(a.rank, b.rank), strings.Compare(a.item.Label, b.item.Label))
	})
	out := make([]CompletionItem, len(items))
	for i, r := range items {
		out[i] = r.item
	}
	return out
}

// matchesSeed reports whether an insertion starting with gap fits the
// partially typed word. Placeholders match any seed.
func matchesSeed(gap []earley.Symbol, seed string) bool {
	if seed == "" || len(gap) == 0 {
		return true
	}
	value, ok := gap[0].Value()
	return !ok || strings.HasPrefix(value, seed)
}

func label(gap []earley.Symbol) string {
	parts := make([]string, len(gap))
	for i, sym := range gap {
		if value, ok := sym.Value(); ok {
			parts[i] = value
		} else {
			parts[i] = displayName(symbolName(sym))
		}
	}
	return strings.Join(parts, " ")
}

// snippet renders gap in LSP snippet syntax: literals verbatim, every
// other symbol as a numbered placeholder.
func snippet(gap []earley.Symbol) string {
	parts := make([]string, len(gap))
	n := 0
	for i, sym := range gap {
		if value, ok := sym.Value(); ok {
			parts[i] = escapeSnippet(value)
			continue
		}
		n++
		parts[i] = "${" + strconv.Itoa(n) + ":" + escapeSnippet(displayName(symbolName(sym))) + "}"
	}
	return strings.Join(parts, " ")
}

func symbolName(sym earley.Symbol) string {
	if sym.IsTerminal() {
		return sym.TokenKind()
	}
	return sym.Name()
}

// displayName strips the suffix of rules generated for groups,
// options and repetitions.
func displayName(name string) string {
	base, _, _ := strings.Cut(name, "·")
	return base
}

func escapeSnippet(s string) string {
	return strings.NewReplacer(`\`, `\\`, `$`, `\$`, `}`, `\}`).Replace(s)
}

// offsetOf converts a 1-based line and column, counted in runes, to a
// byte offset, clamped to the line and the content.
func offsetOf(content []byte, line, column int) int {
	offset := 0
	for l := 1; l < line; l++ {
		i := strings.IndexByte(string(content[offset:]), '\n')
		if i < 0 {
			return len(content)
		}
		offset += i + 1
	}
	for col := 1; col < column && offset < len(content); col++ {
		r, size := utf8.DecodeRune(content[offset:])
		if r == '\n' {
			break
		}
		offset += size
	}
	return offset
}
