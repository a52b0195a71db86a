// Package format renders parse results for the command line and editors.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/chartparse/ebnf/parse"
)

// Encoder writes the syntax trees of one parse. MarshalText renders the
// trees passed to the last Encode.
type Encoder interface {
	encoding.TextMarshaler
	Encode(trees []*parse.Node) error
}

// NewEncoder returns the encoder for a format name, "json" or "tree".
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "json":
		return NewCSTJSONEncoder(w), nil
	case "tree", "":
		return NewTreeEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q", name)
}
