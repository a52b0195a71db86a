package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/chartparse/ebnf/parse"
	"github.com/dhamidi/chartparse/format"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var lf languageFlags

	cmd := &cobra.Command{
		Use:          "parse <file>",
		Short:        "Parse a file and print every derivation",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]

			lang, err := lf.load(filename)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}

			encoder, err := format.NewEncoder(outputFormat, os.Stdout)
			if err != nil {
				return err
			}

			trees, err := lang.NewParser(filename).Parse(data)
			if err != nil {
				var perr *parse.Error
				if outputFormat == "json" && errors.As(err, &perr) {
					if encErr := format.NewErrorJSONEncoder(os.Stdout).Encode(err); encErr != nil {
						return fmt.Errorf("encode error: %w", encErr)
					}
				}
				return err
			}

			if err := encoder.Encode(trees); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format (tree, json)")
	lf.register(cmd)

	return cmd
}
