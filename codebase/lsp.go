package codebase

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/chartparse/config"
	"github.com/dhamidi/chartparse/ebnf/parse"
	"github.com/dhamidi/chartparse/ebnflex"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "chartparse"

type LSPServer struct {
	codebase   *Codebase
	watcher    *GrammarWatcher
	configPath string
	handler    protocol.Handler
	server     *server.Server
	version    string
}

// NewLSPServer returns a language server for the languages of a
// .chartparse.yaml file. With an empty configPath the file is looked up
// from the workspace root on initialize.
func NewLSPServer(version, configPath string) *LSPServer {
	ls := &LSPServer{
		version:    version,
		configPath: configPath,
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentCompletion: ls.textDocumentCompletion,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	cfg, err := ls.loadConfig(rootDir)
	if err != nil {
		return nil, err
	}
	ls.codebase = New(rootDir, cfg)
	if err := ls.codebase.LoadLanguages(); err != nil {
		log.Errorf("load languages: %v", err)
	}

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    intPtr(int(protocol.TextDocumentSyncKindFull)),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{" "},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) loadConfig(rootDir string) (*config.Config, error) {
	path := ls.configPath
	if path == "" {
		found, err := config.Find(rootDir)
		if errors.Is(err, config.ErrNotFound) {
			log.Warningf("no %s found above %s", config.FileName, rootDir)
			return &config.Config{}, nil
		}
		if err != nil {
			return nil, err
		}
		path = found
	}
	return config.Load(path)
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	watcher, err := NewGrammarWatcher(ls.codebase)
	if err != nil {
		log.Warningf("grammar changes will not be picked up: %v", err)
		return nil
	}
	watcher.OnReload = func(language string, err error) {
		if err == nil {
			ls.publishAll(ctx, language)
		}
	}
	watcher.Start()
	ls.watcher = watcher
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
		ls.watcher = nil
	}
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.update(ctx, params.TextDocument.URI, []byte(params.TextDocument.Text))
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.update(ctx, params.TextDocument.URI, []byte(textChange.Text))
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.codebase.RemoveFile(path)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.update(ctx, params.TextDocument.URI, []byte(*params.Text))
	}
	return nil
}

func (ls *LSPServer) update(ctx *glsp.Context, uri protocol.DocumentUri, content []byte) {
	path, err := uriToPath(uri)
	if err != nil {
		return
	}
	if err := ls.codebase.UpdateFile(path, content); err != nil {
		log.Debugf("update %s: %v", path, err)
		return
	}
	ls.publish(ctx, uri, path)
}

func (ls *LSPServer) publish(ctx *glsp.Context, uri protocol.DocumentUri, path string) {
	var content []byte
	if f := ls.codebase.GetFile(path); f != nil {
		content = f.Content
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toProtocolDiagnostics(content, ls.codebase.Diagnostics(path)),
	})
}

// publishAll republishes the diagnostics of every open document in a
// language.
func (ls *LSPServer) publishAll(ctx *glsp.Context, language string) {
	for _, path := range ls.codebase.Files() {
		if f := ls.codebase.GetFile(path); f != nil && f.Language == language {
			ls.publish(ctx, pathToURI(path), path)
		}
	}
}

func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}

	f := ls.codebase.GetFile(path)
	if f == nil {
		return nil, nil
	}
	line := int(params.Position.Line) + 1
	col := runeColumn(f.Content, line, int(params.Position.Character))

	completions := ls.codebase.CompletionsAtPoint(path, line, col)
	if len(completions) == 0 {
		return nil, nil
	}

	var items []protocol.CompletionItem
	for _, c := range completions {
		kind := toProtocolKind(c.Kind)
		detail := c.Detail
		format := protocol.InsertTextFormatSnippet

		items = append(items, protocol.CompletionItem{
			Label:            c.Label,
			Kind:             &kind,
			Detail:           &detail,
			InsertTextFormat: &format,
			TextEdit: protocol.TextEdit{
				Range:   toProtocolRange(f.Content, c.Replace),
				NewText: c.InsertText,
			},
		})
	}

	return items, nil
}

func toProtocolDiagnostics(content []byte, diags []Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	source := lsName
	for _, d := range diags {
		severity := protocol.DiagnosticSeverityError
		if d.Severity == SeverityWarning {
			severity = protocol.DiagnosticSeverityWarning
		}
		out = append(out, protocol.Diagnostic{
			Range:    toProtocolRange(content, d.Span),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}
	return out
}

func toProtocolRange(content []byte, s parse.Span) protocol.Range {
	return protocol.Range{
		Start: toProtocolPosition(content, s.Start),
		End:   toProtocolPosition(content, s.End),
	}
}

// toProtocolPosition converts a 1-based rune column into the UTF-16
// code units the protocol counts.
func toProtocolPosition(content []byte, p ebnflex.Position) protocol.Position {
	if p.Line < 1 {
		return protocol.Position{}
	}
	return protocol.Position{
		Line:      protocol.UInteger(p.Line - 1),
		Character: protocol.UInteger(utf16Character(content, p.Line, p.Column)),
	}
}

// utf16Character returns the number of UTF-16 code units before column
// on line. Columns past the end of the line count one unit each.
func utf16Character(content []byte, line, column int) int {
	rest := content[offsetOf(content, line, 1):]
	units := 0
	for col := 1; col < column; col++ {
		r, size := utf8.DecodeRune(rest)
		if size == 0 || r == '\n' {
			units += column - col
			break
		}
		units += max(utf16.RuneLen(r), 1)
		rest = rest[size:]
	}
	return units
}

// runeColumn is the inverse of utf16Character, clamped to the end of
// the line.
func runeColumn(content []byte, line, character int) int {
	rest := content[offsetOf(content, line, 1):]
	column := 1
	for units := 0; units < character; column++ {
		r, size := utf8.DecodeRune(rest)
		if size == 0 || r == '\n' {
			break
		}
		units += max(utf16.RuneLen(r), 1)
		rest = rest[size:]
	}
	return column
}

func toProtocolKind(kind CompletionKind) protocol.CompletionItemKind {
	switch kind {
	case CompletionKindKeyword:
		return protocol.CompletionItemKindKeyword
	case CompletionKindSnippet:
		return protocol.CompletionItemKindSnippet
	default:
		return protocol.CompletionItemKindText
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) protocol.DocumentUri {
	if !filepath.IsAbs(path) {
		return path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *protocol.TextDocumentSyncKind {
	v := protocol.TextDocumentSyncKind(i)
	return &v
}
