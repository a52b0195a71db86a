package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/chartparse/earley"
	"github.com/dhamidi/chartparse/ebnf/parse"
)

type CompletionJSONEncoder struct {
	w io.Writer
}

func NewCompletionJSONEncoder(w io.Writer) *CompletionJSONEncoder {
	return &CompletionJSONEncoder{w: w}
}

func (e *CompletionJSONEncoder) Encode(completions []parse.Completion) error {
	text, err := e.MarshalText(completions)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *CompletionJSONEncoder) MarshalText(completions []parse.Completion) ([]byte, error) {
	out := make([]completionJSON, len(completions))
	for i, c := range completions {
		out[i] = completionJSON{
			Rule:    c.Rule.Name,
			Start:   c.Start,
			End:     c.End,
			Pre:     symbolNames(c.Pre),
			Gap:     symbolNames(c.Gap),
			Post:    symbolNames(c.Post),
			Seed:    c.Seed,
			Replace: spanToJSON(c.Replace),
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

type completionJSON struct {
	Rule    string    `json:"rule"`
	Start   int       `json:"start"`
	End     int       `json:"end"`
	Pre     []string  `json:"pre"`
	Gap     []string  `json:"gap"`
	Post    []string  `json:"post"`
	Seed    string    `json:"seed,omitempty"`
	Replace *jsonSpan `json:"replace,omitempty"`
}

func symbolNames(symbols []earley.Symbol) []string {
	names := make([]string, len(symbols))
	for i, s := range symbols {
		names[i] = s.String()
	}
	return names
}
