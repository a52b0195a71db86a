// Package codebase keeps the documents of a project parsed as they are
// edited, and serves diagnostics and completions for them.
package codebase

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/chartparse/config"
	"github.com/dhamidi/chartparse/ebnf/parse"
)

// DefaultParserCacheSize bounds how many documents keep their parse
// charts between edits.
const DefaultParserCacheSize = 64

var log = commonlog.GetLogger("chartparse.codebase")

// ErrNoLanguage is returned for files no configured language handles.
var ErrNoLanguage = errors.New("no language for file")

type Codebase struct {
	mu        sync.RWMutex
	rootDir   string
	cfg       *config.Config
	languages map[string]*parse.Language
	files     map[string]*FileInfo
	parsers   *lru.Cache[string, *parse.Parser]
}

type FileInfo struct {
	Path     string
	Language string
	Content  []byte
	Trees    []*parse.Node
	ParseErr error
}

// New returns a codebase for the files under rootDir. Languages are
// compiled lazily; see LoadLanguages.
func New(rootDir string, cfg *config.Config) *Codebase {
	if cfg == nil {
		cfg = &config.Config{}
	}
	parsers, _ := lru.New[string, *parse.Parser](DefaultParserCacheSize)
	return &Codebase{
		rootDir:   rootDir,
		cfg:       cfg,
		languages: make(map[string]*parse.Language),
		files:     make(map[string]*FileInfo),
		parsers:   parsers,
	}
}

func (c *Codebase) Config() *config.Config {
	return c.cfg
}

// LoadLanguages compiles every configured language. Languages that fail
// to compile are reported together and left out.
func (c *Codebase) LoadLanguages() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, lang := range c.cfg.Languages {
		if _, err := c.loadLanguageLocked(lang); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ReloadLanguage recompiles the named language from its grammar file
// and reparses the documents written in it. On failure the previous
// grammar stays in use.
func (c *Codebase) ReloadLanguage(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	lang, ok := c.cfg.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown language %q", name)
	}
	if _, err := c.loadLanguageLocked(lang); err != nil {
		return err
	}

	for path, f := range c.files {
		if f.Language == name {
			c.parsers.Remove(path)
			c.updateFileLocked(path, f.Content)
		}
	}
	return nil
}

func (c *Codebase) loadLanguageLocked(lang config.Language) (*parse.Language, error) {
	compiled, err := lang.Compile()
	if err != nil {
		log.Errorf("language %s: %v", lang.Name, err)
		return nil, fmt.Errorf("language %s: %w", lang.Name, err)
	}
	if missing := compiled.Grammar.Missing(); len(missing) > 0 {
		log.Warningf("language %s: productions without definition: %s", lang.Name, strings.Join(missing, ", "))
	}
	c.languages[lang.Name] = compiled
	log.Infof("loaded language %s from %s", lang.Name, lang.Grammar)
	return compiled, nil
}

func (c *Codebase) languageForLocked(path string) (*parse.Language, error) {
	lang, ok := c.cfg.LanguageFor(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNoLanguage)
	}
	if compiled, ok := c.languages[lang.Name]; ok {
		return compiled, nil
	}
	return c.loadLanguageLocked(lang)
}

// parserLocked returns the document's parser, creating one when the
// document is new or was evicted from the cache.
func (c *Codebase) parserLocked(path string, lang *parse.Language) *parse.Parser {
	if p, ok := c.parsers.Get(path); ok && p.Language() == lang {
		return p
	}
	p := lang.NewParser(path)
	c.parsers.Add(path, p)
	return p
}

// ScanAll parses every file under the root directory that a configured
// language handles.
func (c *Codebase) ScanAll() error {
	return filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != c.rootDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := c.cfg.LanguageFor(path); ok {
			if err := c.ScanFile(path); err != nil {
				log.Warningf("scan %s: %v", path, err)
			}
		}
		return nil
	})
}

func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.UpdateFile(path, content)
}

// UpdateFile parses a new version of a document. Syntax errors are kept
// on the FileInfo; the returned error reports files that could not be
// parsed at all.
func (c *Codebase) UpdateFile(path string, content []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.updateFileLocked(path, content)
}

func (c *Codebase) updateFileLocked(path string, content []byte) error {
	lang, err := c.languageForLocked(path)
	if err != nil {
		return err
	}

	trees, parseErr := c.parserLocked(path, lang).Parse(content)
	c.files[path] = &FileInfo{
		Path:     path,
		Language: lang.Name,
		Content:  content,
		Trees:    trees,
		ParseErr: parseErr,
	}
	if parseErr != nil {
		log.Debugf("%s: %v", path, parseErr)
	}
	return nil
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
	c.parsers.Remove(path)
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Files returns the paths of all known documents.
func (c *Codebase) Files() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.files))
	for path := range c.files {
		paths = append(paths, path)
	}
	return paths
}
