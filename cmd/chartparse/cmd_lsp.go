package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/chartparse/codebase"
)

func newLSPCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := codebase.NewLSPServer(version, configPath)
			return server.RunStdio()
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: searched from the workspace root)")

	return cmd
}
