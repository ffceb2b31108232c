package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/efebarandurmaz/archlint/internal/check"
	"github.com/efebarandurmaz/archlint/internal/depgraph"
)

func newGraphCmd(a *app) *cobra.Command {
	var (
		f      checkFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Print the file import graph as DOT, Mermaid, JSON, or statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := a.request(rootArg(args), &f)
			res, err := check.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "dot":
				fmt.Fprint(out, depgraph.ExportDOT(res.Graph))
			case "mermaid":
				fmt.Fprint(out, depgraph.ExportMermaid(res.Graph))
			case "json":
				data, err := depgraph.ExportJSON(res.Graph)
				if err != nil {
					return err
				}
				writeLine(out, "%s", data)
			case "stats":
				fmt.Fprint(out, depgraph.FormatStats(res.Graph))
			default:
				return fmt.Errorf("unknown graph format %q (want dot, mermaid, json, stats)", format)
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&format, "format", "stats", "Output format: dot, mermaid, json, stats")
	return cmd
}
