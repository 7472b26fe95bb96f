package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/presenter"
	"github.com/skillet-ai/skillet/pkg/skill"
)

type FmtConfig struct {
	Check bool
}

func NewFmtConfig() *FmtConfig {
	return &FmtConfig{
		Check: false,
	}
}

var fmtCmd = &cobra.Command{
	Use:   "fmt <dir|SKILL.md>...",
	Short: "Format SKILL.md frontmatter",
	Long: `Rewrite SKILL.md frontmatter into canonical form: name, description,
license, and allowed-tools first, two-space YAML indentation, LF line
endings. Directory arguments format the SKILL.md inside them.

With --check, prints a diff for any file that would change and exits
non-zero without writing. Suitable for CI.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getFmtConfigFromFlags(cmd)

		changed := 0
		for _, arg := range args {
			path := arg
			if info, err := os.Stat(arg); err == nil && info.IsDir() {
				path = filepath.Join(arg, skill.ManifestName)
			}

			original, err := os.ReadFile(path)
			if err != nil {
				presenter.Error(err, fmt.Sprintf("Failed to read %s", path))
				os.Exit(1)
			}

			formatted, dirty, err := skill.Format(skill.NormalizeLineEndings(original))
			if err != nil {
				presenter.Error(err, fmt.Sprintf("Failed to format %s", path))
				os.Exit(1)
			}
			if !dirty {
				continue
			}
			changed++

			if config.Check {
				fmt.Print(skill.FormatDiff(path, original, formatted))
				continue
			}

			if err := os.WriteFile(path, formatted, 0o644); err != nil {
				presenter.Error(err, fmt.Sprintf("Failed to write %s", path))
				os.Exit(1)
			}
			presenter.Success("Formatted " + path)
		}

		if config.Check && changed > 0 {
			presenter.Warning(fmt.Sprintf("%d file(s) need formatting", changed))
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewFmtConfig()
	fmtCmd.Flags().Bool("check", defaults.Check, "Print diffs instead of rewriting, exit non-zero on changes")
	rootCmd.AddCommand(fmtCmd)
}

func getFmtConfigFromFlags(cmd *cobra.Command) *FmtConfig {
	config := NewFmtConfig()
	if check, err := cmd.Flags().GetBool("check"); err == nil {
		config.Check = check
	}
	return config
}
