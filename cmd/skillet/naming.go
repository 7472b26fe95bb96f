package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/naming"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

var namingCmd = &cobra.Command{
	Use:   "naming",
	Short: "Versioned document naming commands",
	Long:  `Check and parse file names against the YYYY-MM-DD_Type_Version_Status.ext pattern.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var namingCheckCmd = &cobra.Command{
	Use:   "check <filename>...",
	Short: "Check file names against the naming convention",
	Long: `Check one or more file names against the versioned-document pattern.
Directory components are ignored; only the base name is checked.

Examples:
  skillet naming check 2026-08-25_Budget_v2_Draft.xlsx
  skillet naming check outputs/*.xlsx`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		convention := conventionFromConfig()

		failed := 0
		for _, name := range args {
			if err := convention.Validate(name); err != nil {
				presenter.Warning(fmt.Sprintf("✗ %s: %v", name, err))
				failed++
				continue
			}
			presenter.Success("✓ " + name)
		}
		if failed > 0 {
			presenter.Info("Expected pattern: YYYY-MM-DD_Type_Version_Status.ext")
			presenter.Info("Statuses: " + strings.Join(convention.Statuses(), ", "))
			os.Exit(1)
		}
	},
}

var namingParseCmd = &cobra.Command{
	Use:   "parse <filename>",
	Short: "Parse a file name into its fields",
	Long:  `Parse a versioned-document file name and print its fields as JSON.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		convention := conventionFromConfig()

		name, err := convention.Parse(args[0])
		if err != nil {
			presenter.Error(err, "Name does not parse")
			os.Exit(1)
		}

		out, err := json.MarshalIndent(map[string]string{
			"date":    name.Date.Format("2006-01-02"),
			"type":    name.DocType,
			"version": name.Version,
			"status":  name.Status,
			"ext":     name.Ext,
		}, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to encode name")
			os.Exit(1)
		}
		fmt.Println(string(out))
	},
}

func init() {
	namingCmd.AddCommand(namingCheckCmd)
	namingCmd.AddCommand(namingParseCmd)
	rootCmd.AddCommand(namingCmd)
}

// conventionFromConfig builds the naming convention with any extra statuses
// from configuration. Configuration errors fall back to the defaults; a
// naming check should work in a bare environment.
func conventionFromConfig() *naming.Convention {
	cfg, err := config.FromViper()
	if err != nil {
		return naming.New()
	}
	return naming.New(cfg.Naming.Statuses...)
}
