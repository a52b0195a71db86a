package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhamidi/chartparse/config"
	"github.com/dhamidi/chartparse/ebnf/parse"
)

// languageFlags select the grammar for a file, either directly or
// through the project config.
type languageFlags struct {
	grammar string
	start   string
	config  string
}

func (f *languageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.grammar, "grammar", "g", "", "EBNF grammar file (default: from "+config.FileName+")")
	cmd.Flags().StringVarP(&f.start, "start", "s", "", "start production (required with --grammar)")
	cmd.Flags().StringVar(&f.config, "config", "", "config file (default: searched upwards, or $"+config.EnvPath+")")
}

func (f *languageFlags) load(filename string) (*parse.Language, error) {
	if f.grammar != "" {
		if f.start == "" {
			return nil, fmt.Errorf("--start is required with --grammar")
		}
		return parse.LoadLanguage(f.grammar, f.start)
	}

	path := f.config
	if path == "" {
		found, err := config.Find(filepath.Dir(filename))
		if err != nil {
			return nil, fmt.Errorf("find config: %w", err)
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	lang, ok := cfg.LanguageFor(filename)
	if !ok {
		return nil, fmt.Errorf("%s: no language configured in %s", filename, path)
	}
	if f.start != "" {
		lang.Start = f.start
	}
	return lang.Compile()
}
