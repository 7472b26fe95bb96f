package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/presenter"
	"github.com/skillet-ai/skillet/pkg/skill"
)

type NewConfig struct {
	Description string
	Root        string
}

func NewNewConfig() *NewConfig {
	return &NewConfig{
		Description: "",
		Root:        "./skills",
	}
}

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Scaffold a new skill package",
	Long: `Scaffold a new skill package directory with a SKILL.md manifest and a
scripts directory. The name must be lowercase letters, digits, and single
hyphens, and becomes the directory name.

Examples:
  skillet new budget-builder --description "Build quarterly budget workbooks"
  skillet new deck-polisher -d "Apply brand styles to slide decks" --root ./skills`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getNewConfigFromFlags(cmd)

		if config.Description == "" {
			presenter.Error(fmt.Errorf("description is required"), "Pass --description with a sentence describing when to use the skill")
			os.Exit(1)
		}

		dir, err := skill.Scaffold(config.Root, args[0], config.Description)
		if err != nil {
			presenter.Error(err, "Failed to scaffold skill")
			os.Exit(1)
		}

		presenter.Success(fmt.Sprintf("Created skill package at %s", dir))
		presenter.Info("Edit SKILL.md, then check it with: skillet validate " + dir)
	},
}

func init() {
	defaults := NewNewConfig()
	newCmd.Flags().StringP("description", "d", defaults.Description, "One-sentence description of when to use the skill")
	newCmd.Flags().String("root", defaults.Root, "Directory the package is created under")
	rootCmd.AddCommand(newCmd)
}

func getNewConfigFromFlags(cmd *cobra.Command) *NewConfig {
	config := NewNewConfig()
	if description, err := cmd.Flags().GetString("description"); err == nil {
		config.Description = description
	}
	if root, err := cmd.Flags().GetString("root"); err == nil {
		config.Root = root
	}
	return config
}
