package main

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/chartparse/ebnf/parse"
	"github.com/dhamidi/chartparse/ebnflex"
)

func newEbnfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ebnf",
		Short:         "EBNF grammar tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newEbnfCheckCmd())
	cmd.AddCommand(newEbnfRulesCmd())
	cmd.AddCommand(newEbnfTokensCmd())

	return cmd
}

func newEbnfCheckCmd() *cobra.Command {
	var startProduction string
	var undefined []string

	cmd := &cobra.Command{
		Use:           "check <file>",
		Short:         "Parse an EBNF grammar file and compile it for parsing",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			grammar, err := ebnflex.LoadGrammar(args[0])
			if err != nil {
				printErrors(cmd.OutOrStdout(), err)
				return err
			}
			if startProduction == "" {
				return nil
			}

			lang, err := parse.Compile(grammar, startProduction, parse.WithUndefined(undefined...))
			if err != nil {
				printErrors(cmd.OutOrStdout(), err)
				return err
			}
			if missing := lang.Grammar.Missing(); len(missing) > 0 {
				err := fmt.Errorf("undefined productions: %s", strings.Join(missing, ", "))
				fmt.Fprintln(cmd.OutOrStdout(), err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production to compile from (if empty, only checks syntax)")
	cmd.Flags().StringSliceVar(&undefined, "undefined", nil, "productions that are intentionally left undefined")

	return cmd
}

func newEbnfRulesCmd() *cobra.Command {
	var reverse bool

	cmd := &cobra.Command{
		Use:   "rules <file> <start>",
		Short: "Print the rules an EBNF grammar compiles to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := parse.LoadLanguage(args[0], args[1])
			if err != nil {
				return err
			}
			g := lang.Grammar
			if reverse {
				g = g.Reverse()
			}
			for _, r := range g.Rules() {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reverse, "reverse", false, "print the reversed grammar used for completion")

	return cmd
}

func newEbnfTokensCmd() *cobra.Command {
	var literals []string

	cmd := &cobra.Command{
		Use:   "tokens <grammar> <file>",
		Short: "Tokenize a file with the lexical productions of a grammar",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			grammar, err := ebnflex.LoadGrammar(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}

			lexer := ebnflex.NewLexer(grammar, data, args[1], ebnflex.WithLiterals(literals...))
			tokens, err := lexer.Tokenize()
			if err != nil {
				return err
			}
			for _, tok := range tokens {
				fmt.Fprintln(cmd.OutOrStdout(), tok)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&literals, "literal", nil, "literal to recognize as a token (repeatable)")

	return cmd
}

func printErrors(w io.Writer, err error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			printErrors(w, e)
		}
		return
	}
	v := reflect.ValueOf(err)
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			fmt.Fprintln(w, v.Index(i).Interface())
		}
	} else {
		fmt.Fprintln(w, err)
	}
}
