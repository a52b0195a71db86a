package format

import (
	"io"
	"strings"

	"github.com/dhamidi/chartparse/ebnf/parse"
)

// TreeEncoder writes one parenthesized tree per line, in derivation
// order.
type TreeEncoder struct {
	w     io.Writer
	trees []*parse.Node
}

func NewTreeEncoder(w io.Writer) *TreeEncoder {
	return &TreeEncoder{w: w}
}

func (e *TreeEncoder) Encode(trees []*parse.Node) error {
	e.trees = trees
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TreeEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, n := range e.trees {
		sb.WriteString(n.String())
		sb.WriteByte('\n')
	}
	return []byte(sb.String()), nil
}
