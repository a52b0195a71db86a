// Package ui serves a grammar playground: an EBNF grammar and an input
// are posted, and the derivations or completions come back as JSON.
package ui

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tliron/commonlog"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/chartparse/ebnf/parse"
	"github.com/dhamidi/chartparse/format"
)

//go:embed templates
var embeddedFS embed.FS

// maxLanguages bounds the compiled grammars kept between requests.
const maxLanguages = 32

var log = commonlog.GetLogger("chartparse.ui")

type Server struct {
	templates *template.Template
	mux       *http.ServeMux
	languages *lru.Cache[string, *parse.Language]
}

// Request is the body of /parse and /complete, as JSON or form values.
type Request struct {
	Grammar string `json:"grammar"`
	Start   string `json:"start"`
	Input   string `json:"input"`
	Offset  int    `json:"offset"`
}

func NewServer() (*Server, error) {
	tmpl, err := template.ParseFS(embeddedFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	languages, err := lru.New[string, *parse.Language](maxLanguages)
	if err != nil {
		return nil, err
	}

	s := &Server{
		templates: tmpl,
		mux:       http.NewServeMux(),
		languages: languages,
	}

	s.mux.HandleFunc("POST /parse", s.handleParse)
	s.mux.HandleFunc("POST /complete", s.handleComplete)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.templates.ExecuteTemplate(w, "index.html", nil); err != nil {
		log.Errorf("render index: %v", err)
	}
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	req, lang, ok := s.prepare(w, r)
	if !ok {
		return
	}

	trees, err := lang.NewParser("input").Parse([]byte(req.Input))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	format.NewCSTJSONEncoder(w).Encode(trees)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	req, lang, ok := s.prepare(w, r)
	if !ok {
		return
	}

	completions, err := lang.NewParser("input").Complete([]byte(req.Input), req.Offset)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	format.NewCompletionJSONEncoder(w).Encode(completions)
}

// prepare decodes the request and compiles its grammar, answering the
// request itself when either fails.
func (s *Server) prepare(w http.ResponseWriter, r *http.Request) (Request, *parse.Language, bool) {
	req, err := decodeRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return req, nil, false
	}
	lang, err := s.language(req.Grammar, req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return req, nil, false
	}
	return req, lang, true
}

func decodeRequest(r *http.Request) (Request, error) {
	var req Request

	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("invalid JSON: %w", err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("invalid form data: %w", err)
		}
		req.Grammar = r.FormValue("grammar")
		req.Start = r.FormValue("start")
		req.Input = r.FormValue("input")
		if offset := r.FormValue("offset"); offset != "" {
			if _, err := fmt.Sscan(offset, &req.Offset); err != nil {
				return req, fmt.Errorf("invalid offset %q", offset)
			}
		}
	}

	if req.Grammar == "" || req.Start == "" {
		return req, errors.New("must provide grammar and start")
	}
	if req.Offset < 0 || req.Offset > len(req.Input) {
		return req, fmt.Errorf("offset %d out of range [0, %d]", req.Offset, len(req.Input))
	}
	return req, nil
}

// language compiles a grammar, reusing the result for repeated requests
// with the same grammar.
func (s *Server) language(grammar, start string) (*parse.Language, error) {
	key := start + "\x00" + grammar
	if lang, ok := s.languages.Get(key); ok {
		return lang, nil
	}

	g, err := ebnf.Parse("grammar", strings.NewReader(grammar))
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	lang, err := parse.Compile(g, start)
	if err != nil {
		return nil, fmt.Errorf("compile grammar: %w", err)
	}
	s.languages.Add(key, lang)
	return lang, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	format.NewErrorJSONEncoder(w).Encode(err)
}
