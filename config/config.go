// Package config loads the .chartparse.yaml project file that maps file
// extensions to EBNF grammars.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/chartparse/ebnf/parse"
)

// FileName is the name Find looks for.
const FileName = ".chartparse.yaml"

// EnvPath overrides the location of the config file when set.
const EnvPath = "CHARTPARSE_CONFIG"

// ErrNotFound is returned by Find when no config file exists in a
// directory or any of its parents.
var ErrNotFound = errors.New("config file not found")

// Config is a project's language setup.
type Config struct {
	Languages []Language `yaml:"languages"`

	// Path is the file the config was loaded from.
	Path string `yaml:"-"`
}

// Language binds files to a grammar.
type Language struct {
	Name       string   `yaml:"name"`
	Extensions []string `yaml:"extensions"`
	// Grammar is the EBNF file. Relative paths are resolved against the
	// directory of the config file.
	Grammar   string   `yaml:"grammar"`
	Start     string   `yaml:"start"`
	Skip      []string `yaml:"skip,omitempty"`
	Undefined []string `yaml:"undefined,omitempty"`
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.Path = path
	dir := filepath.Dir(path)
	for i := range cfg.Languages {
		if g := cfg.Languages[i].Grammar; !filepath.IsAbs(g) {
			cfg.Languages[i].Grammar = filepath.Join(dir, g)
		}
	}
	return cfg, nil
}

// Parse decodes and validates config data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Find locates the config file for dir. The EnvPath variable takes
// precedence; otherwise dir and its parents are searched for FileName.
func Find(dir string) (string, error) {
	if path := os.Getenv(EnvPath); path != "" {
		return path, nil
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Validate checks that every language is complete and that no
// extension is claimed twice.
func (c *Config) Validate() error {
	var errs []error
	names := make(map[string]bool)
	owners := make(map[string]string)
	for i, lang := range c.Languages {
		if lang.Name == "" {
			errs = append(errs, fmt.Errorf("language %d: missing name", i))
		} else if names[lang.Name] {
			errs = append(errs, fmt.Errorf("language %q: defined twice", lang.Name))
		}
		names[lang.Name] = true

		if lang.Grammar == "" {
			errs = append(errs, fmt.Errorf("language %q: missing grammar", lang.Name))
		}
		if lang.Start == "" {
			errs = append(errs, fmt.Errorf("language %q: missing start production", lang.Name))
		}
		for _, ext := range lang.Extensions {
			if !strings.HasPrefix(ext, ".") {
				errs = append(errs, fmt.Errorf("language %q: extension %q must start with a dot", lang.Name, ext))
			}
			if owner, ok := owners[ext]; ok {
				errs = append(errs, fmt.Errorf("language %q: extension %q already used by %q", lang.Name, ext, owner))
			}
			owners[ext] = lang.Name
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// LanguageFor returns the language handling filename, if any.
func (c *Config) LanguageFor(filename string) (Language, bool) {
	ext := filepath.Ext(filename)
	for _, lang := range c.Languages {
		if slices.Contains(lang.Extensions, ext) {
			return lang, true
		}
	}
	return Language{}, false
}

// Lookup returns the language called name.
func (c *Config) Lookup(name string) (Language, bool) {
	for _, lang := range c.Languages {
		if lang.Name == name {
			return lang, true
		}
	}
	return Language{}, false
}

// Compile loads the language's grammar file and compiles it with the
// configured name, trivia and undefined productions.
func (l Language) Compile() (*parse.Language, error) {
	opts := []parse.Option{parse.WithName(l.Name), parse.WithUndefined(l.Undefined...)}
	if len(l.Skip) > 0 {
		opts = append(opts, parse.WithSkipKinds(l.Skip...))
	}
	return parse.LoadLanguage(l.Grammar, l.Start, opts...)
}
