package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/importer"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

type ImportConfig struct {
	CorpusDir string
	Overwrite bool
}

func NewImportConfig() *ImportConfig {
	return &ImportConfig{
		CorpusDir: "",
		Overwrite: false,
	}
}

var importCmd = &cobra.Command{
	Use:   "import <file.html>...",
	Short: "Import HTML pages into the documentation corpus",
	Long: `Convert saved HTML pages to Markdown and add them to the corpus, where
the linter governs them like any hand-written document. The output file is
named after the page title; re-importing the same page needs --overwrite.

Examples:
  skillet import exports/brand-colors.html
  skillet import legacy/*.html --corpus-dir docs --overwrite`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		importConfig := getImportConfigFromFlags(cmd)

		corpusDir := importConfig.CorpusDir
		if corpusDir == "" {
			if cfg, err := config.FromViper(); err == nil {
				corpusDir = cfg.CorpusDir
			} else {
				corpusDir = "."
			}
		}

		im := importer.New(
			importer.WithCorpusDir(corpusDir),
			importer.WithOverwrite(importConfig.Overwrite),
		)

		failed := 0
		for _, path := range args {
			result, err := im.ImportFile(ctx, path)
			if err != nil {
				presenter.Error(err, fmt.Sprintf("Failed to import %s", path))
				failed++
				continue
			}
			presenter.Success(fmt.Sprintf("Imported %q to %s (%d bytes)", result.Title, result.Path, result.Bytes))
		}

		if failed > 0 {
			os.Exit(1)
		}
		presenter.Info("Run 'skillet lint' to check the imported pages")
	},
}

func init() {
	defaults := NewImportConfig()
	importCmd.Flags().String("corpus-dir", defaults.CorpusDir, "Corpus directory to write into (defaults to corpus_dir)")
	importCmd.Flags().Bool("overwrite", defaults.Overwrite, "Replace an existing page with the same title")
	rootCmd.AddCommand(importCmd)
}

func getImportConfigFromFlags(cmd *cobra.Command) *ImportConfig {
	config := NewImportConfig()
	if corpusDir, err := cmd.Flags().GetString("corpus-dir"); err == nil {
		config.CorpusDir = corpusDir
	}
	if overwrite, err := cmd.Flags().GetBool("overwrite"); err == nil {
		config.Overwrite = overwrite
	}
	return config
}
