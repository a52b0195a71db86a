package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/chartparse/format"
)

func newCompleteCmd() *cobra.Command {
	var lf languageFlags

	cmd := &cobra.Command{
		Use:   "complete <file> <offset|line:column>",
		Short: "List what may be inserted at a position in a file",
		Long: `List what may be inserted at a position in a file.

The position is a byte offset, or a 1-based line and column.`,
		Args:         cobra.ExactArgs(2),
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
			offset, err := parseOffset(data, args[1])
			if err != nil {
				return err
			}

			completions, err := lang.NewParser(filename).Complete(data, offset)
			if err != nil {
				return err
			}
			return format.NewCompletionJSONEncoder(os.Stdout).Encode(completions)
		},
	}

	lf.register(cmd)

	return cmd
}

// parseOffset reads a byte offset or a line:column pair.
func parseOffset(data []byte, pos string) (int, error) {
	lineStr, colStr, found := strings.Cut(pos, ":")
	if !found {
		offset, err := strconv.Atoi(pos)
		if err != nil {
			return 0, fmt.Errorf("invalid position %q", pos)
		}
		return offset, nil
	}

	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 1 {
		return 0, fmt.Errorf("invalid line in %q", pos)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil || col < 1 {
		return 0, fmt.Errorf("invalid column in %q", pos)
	}

	offset := 0
	for l := 1; l < line; l++ {
		i := strings.IndexByte(string(data[offset:]), '\n')
		if i < 0 {
			return 0, fmt.Errorf("line %d past end of file", line)
		}
		offset += i + 1
	}
	return min(offset+col-1, len(data)), nil
}
