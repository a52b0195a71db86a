package format

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/dhamidi/chartparse/ebnf/parse"
)

// ErrorJSONEncoder writes a parse failure as JSON. Syntax errors carry
// their position, offending token and expected terminals; other errors
// only a message.
type ErrorJSONEncoder struct {
	w io.Writer
}

func NewErrorJSONEncoder(w io.Writer) *ErrorJSONEncoder {
	return &ErrorJSONEncoder{w: w}
}

func (e *ErrorJSONEncoder) Encode(err error) error {
	text, merr := e.MarshalText(err)
	if merr != nil {
		return merr
	}
	_, werr := e.w.Write(append(text, '\n'))
	return werr
}

func (e *ErrorJSONEncoder) MarshalText(err error) ([]byte, error) {
	return json.MarshalIndent(errorToJSON(err), "", "  ")
}

type errorJSON struct {
	Message  string        `json:"message"`
	Position *jsonPosition `json:"position,omitempty"`
	Got      string        `json:"got,omitempty"`
	Expected []string      `json:"expected,omitempty"`
}

func errorToJSON(err error) *errorJSON {
	var perr *parse.Error
	if !errors.As(err, &perr) {
		return &errorJSON{Message: err.Error()}
	}
	je := &errorJSON{
		Message:  perr.Err.Error(),
		Position: &jsonPosition{Line: perr.Pos.Line, Column: perr.Pos.Column},
		Expected: perr.Expected,
	}
	if perr.Token != nil {
		je.Got = perr.Token.Literal
	}
	return je
}
