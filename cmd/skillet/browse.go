package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/browse"
	"github.com/skillet-ai/skillet/pkg/catalog"
	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/presenter"
	"github.com/skillet-ai/skillet/pkg/skill"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the skill catalog in the terminal",
	Long: `Open an interactive terminal browser over the local skill catalog:
filter by name, and inspect each package's validation status, resources,
and instruction preview without leaving the shell.`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		cfg, err := config.FromViper()
		if err != nil {
			presenter.Error(err, "Failed to load configuration")
			os.Exit(1)
		}

		discovery, err := skill.NewDiscovery(skill.WithRoots(cfg.SkillRoots...))
		if err != nil {
			presenter.Error(err, "Failed to initialize skill discovery")
			os.Exit(1)
		}

		if err := browse.Start(ctx, catalog.New(discovery)); err != nil {
			presenter.Error(err, "Catalog browser failed")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
