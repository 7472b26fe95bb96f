package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/brand"
	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/lint"
	"github.com/skillet-ai/skillet/pkg/naming"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

type LintCmdConfig struct {
	Root   string
	Format string
}

func NewLintCmdConfig() *LintCmdConfig {
	return &LintCmdConfig{
		Root:   "",
		Format: "text",
	}
}

var lintCmd = &cobra.Command{
	Use:   "lint [root]",
	Short: "Lint the documentation corpus",
	Long: `Walk the documentation corpus and report findings: palette tables whose
hex and RGB columns disagree, naming-convention examples that do not parse,
banned vendor tokens, and skill manifests with broken frontmatter.

The root defaults to corpus_dir from configuration. Warnings print but do
not fail the run; any error-severity finding exits non-zero.

Examples:
  skillet lint
  skillet lint docs --format json`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cmdConfig := getLintCmdConfigFromFlags(cmd)

		cfg, err := config.FromViper()
		if err != nil {
			presenter.Error(err, "Failed to load configuration")
			os.Exit(1)
		}

		root := cfg.CorpusDir
		if len(args) == 1 {
			root = args[0]
		}
		if cmdConfig.Root != "" {
			root = cmdConfig.Root
		}

		linter, err := buildLinter(cfg)
		if err != nil {
			presenter.Error(err, "Failed to build linter")
			os.Exit(1)
		}

		report, err := linter.Run(root)
		if err != nil {
			presenter.Error(err, "Lint run failed")
			os.Exit(1)
		}

		if cmdConfig.Format == "json" {
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				presenter.Error(err, "Failed to encode report")
				os.Exit(1)
			}
			fmt.Println(string(out))
		} else {
			for _, f := range report.Findings {
				fmt.Println(f.String())
			}
			summary := fmt.Sprintf("%d file(s) scanned, %d error(s), %d warning(s)",
				report.FilesScanned, report.Errors(), report.Warnings())
			if report.HasErrors() {
				presenter.Warning(summary)
			} else {
				presenter.Success(summary)
			}
		}

		if report.HasErrors() {
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewLintCmdConfig()
	lintCmd.Flags().String("root", defaults.Root, "Corpus root to lint (overrides corpus_dir)")
	lintCmd.Flags().String("format", defaults.Format, "Output format (text, json)")
	rootCmd.AddCommand(lintCmd)
}

func getLintCmdConfigFromFlags(cmd *cobra.Command) *LintCmdConfig {
	config := NewLintCmdConfig()
	if root, err := cmd.Flags().GetString("root"); err == nil {
		config.Root = root
	}
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	return config
}

// buildLinter assembles a Linter from the configuration tree: guidelines
// (with any extra banned tokens appended), naming statuses, and the corpus
// globs.
func buildLinter(cfg config.Config) (*lint.Linter, error) {
	guidelines, err := loadGuidelines(cfg)
	if err != nil {
		return nil, err
	}
	guidelines.ExcludedTokens = append(guidelines.ExcludedTokens, cfg.Lint.BannedTokens...)

	opts := []lint.Option{
		lint.WithGuidelines(guidelines),
		lint.WithConvention(naming.New(cfg.Naming.Statuses...)),
	}
	if len(cfg.Lint.Include) > 0 {
		opts = append(opts, lint.WithIncludes(cfg.Lint.Include...))
	}
	if len(cfg.Lint.Exclude) > 0 {
		opts = append(opts, lint.WithExcludes(cfg.Lint.Exclude...))
	}
	return lint.New(opts...), nil
}

// loadGuidelines resolves the brand definition: a configured YAML file, or
// the embedded defaults when none is set.
func loadGuidelines(cfg config.Config) (*brand.Guidelines, error) {
	return brand.Load(cfg.Guidelines)
}
