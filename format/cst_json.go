package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/chartparse/ebnf/parse"
)

// CSTJSONEncoder writes syntax trees as an indented JSON array.
type CSTJSONEncoder struct {
	w     io.Writer
	trees []*parse.Node
}

func NewCSTJSONEncoder(w io.Writer) *CSTJSONEncoder {
	return &CSTJSONEncoder{w: w}
}

func (e *CSTJSONEncoder) Encode(trees []*parse.Node) error {
	e.trees = trees
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *CSTJSONEncoder) MarshalText() ([]byte, error) {
	out := make([]*cstJSONNode, len(e.trees))
	for i, n := range e.trees {
		out[i] = nodeToJSON(n)
	}
	return json.MarshalIndent(out, "", "  ")
}

type cstJSONNode struct {
	Kind     string         `json:"kind"`
	Span     *jsonSpan      `json:"span,omitempty"`
	Token    string         `json:"token,omitempty"`
	Children []*cstJSONNode `json:"children,omitempty"`
}

type jsonSpan struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func spanToJSON(s parse.Span) *jsonSpan {
	if s.Start.Line == 0 && s.End.Line == 0 {
		return nil
	}
	return &jsonSpan{
		Start: jsonPosition{Line: s.Start.Line, Column: s.Start.Column},
		End:   jsonPosition{Line: s.End.Line, Column: s.End.Column},
	}
}

func nodeToJSON(n *parse.Node) *cstJSONNode {
	jn := &cstJSONNode{
		Kind: n.Kind,
		Span: spanToJSON(n.Span),
	}

	if n.Token != nil {
		jn.Token = n.Token.Literal
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*cstJSONNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = nodeToJSON(child)
		}
	}

	return jn
}
