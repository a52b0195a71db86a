package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runEbnf(t *testing.T, grammar string, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ebnf")
	if err := os.WriteFile(path, []byte(grammar), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := newEbnfCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	full := append([]string{args[0], path}, args[1:]...)
	cmd.SetArgs(full)
	err := cmd.Execute()
	return out.String(), err
}

func TestEbnfCheck(t *testing.T) {
	tests := []struct {
		name    string
		grammar string
		args    []string
		wantErr string
	}{
		{"syntax only", `s = "a" .`, []string{"check"}, ""},
		{"syntax error", `s = "a"`, []string{"check"}, "expected"},
		{"compiles", `s = "a" { "b" } .`, []string{"check", "--start", "s"}, ""},
		{"missing start", `s = "a" .`, []string{"check", "--start", "t"}, `start production "t" not found`},
		{"undefined", `s = "a" | t .`, []string{"check", "--start", "s"}, "undefined productions: t"},
		{"declared undefined", `s = "a" | t .`, []string{"check", "--start", "s", "--undefined", "t"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runEbnf(t, tt.grammar, tt.args...)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v\n%s", err, out)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(out, tt.wantErr) {
				t.Errorf("output %q does not mention %q", out, tt.wantErr)
			}
		})
	}
}

func TestEbnfRules(t *testing.T) {
	out, err := runEbnf(t, `s = "a" [ s ] .`, "rules", "s")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	want := []string{`s·1 → s`, `s·1 → ε`, `s → "a" s·1`}
	got := strings.Split(strings.TrimSpace(out), "\n")
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("got\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}
