package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
languages:
  - name: calc
    extensions: [".calc"]
    grammar: grammars/calc.ebnf
    start: expr
    skip: [WhiteSpace]
  - name: sentence
    extensions: [".txt", ".sen"]
    grammar: /abs/sentence.ebnf
    start: s
    undefined: [adverb]
`

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, sample)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Languages, 2)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, filepath.Join(dir, "grammars", "calc.ebnf"), cfg.Languages[0].Grammar)
	assert.Equal(t, "/abs/sentence.ebnf", cfg.Languages[1].Grammar)
	assert.Equal(t, []string{"WhiteSpace"}, cfg.Languages[0].Skip)
	assert.Equal(t, []string{"adverb"}, cfg.Languages[1].Undefined)
}

func TestLanguageFor(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	tests := []struct {
		filename string
		want     string
		ok       bool
	}{
		{"x/y/z.calc", "calc", true},
		{"notes.sen", "sentence", true},
		{"README.txt", "sentence", true},
		{"main.go", "", false},
		{"Makefile", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			lang, ok := cfg.LanguageFor(tt.filename)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, lang.Name)
		})
	}

	lang, ok := cfg.Lookup("calc")
	assert.True(t, ok)
	assert.Equal(t, "expr", lang.Start)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"missing name", "languages: [{grammar: g.ebnf, start: s}]", "missing name"},
		{"missing grammar", "languages: [{name: a, start: s}]", "missing grammar"},
		{"missing start", "languages: [{name: a, grammar: g.ebnf}]", "missing start production"},
		{"bad extension", `languages: [{name: a, grammar: g.ebnf, start: s, extensions: ["calc"]}]`, "must start with a dot"},
		{"duplicate name", "languages: [{name: a, grammar: g, start: s}, {name: a, grammar: g, start: s}]", "defined twice"},
		{"shared extension", `languages: [{name: a, grammar: g, start: s, extensions: [".x"]}, {name: b, grammar: g, start: s, extensions: [".x"]}]`, `already used by "a"`},
		{"bad yaml", "languages: {", "decode config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, sample)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	t.Setenv(EnvPath, "")
	found, err := Find(nested)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	t.Setenv(EnvPath, "/elsewhere/config.yaml")
	found, err = Find(nested)
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere/config.yaml", found)
}

func TestFindNotFound(t *testing.T) {
	t.Setenv(EnvPath, "")
	dir := t.TempDir()
	_, err := Find(dir)
	if err != nil {
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestLanguageCompile(t *testing.T) {
	dir := t.TempDir()
	grammar := "list = Word { Word } .\nWord = letter { letter } .\nSpace = \" \" .\nletter = \"a\" … \"z\" .\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "list.ebnf"), []byte(grammar), 0o644))

	lang := Language{
		Name:      "list",
		Grammar:   filepath.Join(dir, "list.ebnf"),
		Start:     "list",
		Skip:      []string{"Space"},
		Undefined: []string{"extra"},
	}
	compiled, err := lang.Compile()
	require.NoError(t, err)
	assert.Equal(t, "list", compiled.Name)
	assert.True(t, compiled.IsTrivia("Space"))
	assert.False(t, compiled.IsTrivia("Word"))

	trees, err := compiled.NewParser("a.list").Parse([]byte("ab cd"))
	require.NoError(t, err)
	require.Len(t, trees, 1)
	assert.Equal(t, `(list "ab" "cd")`, trees[0].String())

	lang.Start = "nope"
	_, err = lang.Compile()
	assert.Error(t, err)
}
