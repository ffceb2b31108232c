package main

import (
	"github.com/spf13/cobra"

	"github.com/efebarandurmaz/archlint/internal/mcpserver"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve check_architecture and analyze_file as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := mcpserver.New(mcpserver.Options{
				Version:    version,
				Workers:    a.cfg.Analysis.Workers,
				Extensions: a.cfg.Analysis.Extensions,
				Exclude:    a.cfg.Analysis.Exclude,
				Logger:     a.logger,
			})
			return s.ServeStdio()
		},
	}
}
