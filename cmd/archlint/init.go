package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/efebarandurmaz/archlint/internal/config"
	"github.com/efebarandurmaz/archlint/internal/detect"
)

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter architect.json suggested for the detected framework",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := rootArg(args)
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return fmt.Errorf("init needs an existing directory: %s", dir)
			}

			framework, err := detect.Project(nil, dir)
			if err != nil {
				return err
			}
			suggestion := detect.Suggest(framework)
			cfg, err := suggestion.Config()
			if err != nil {
				return err
			}

			path := filepath.Join(dir, config.DefaultRulesFile)
			if err := config.SaveRules(path, cfg, force); err != nil {
				if errors.Is(err, config.ErrRulesExist) {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
				return err
			}

			a.logger.Debug("framework detected", "framework", framework)
			writeLine(cmd.OutOrStdout(), "created %s for a %s project (max %d lines per function, pattern %s)",
				path, framework, suggestion.MaxLinesPerFunction, suggestion.Pattern)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing architect.json")
	return cmd
}
