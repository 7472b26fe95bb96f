package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/mcpserver"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol commands",
	Long:  `Expose skillet's validation and lint checks to MCP clients.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve validation tools over MCP on stdio",
	Long: `Start an MCP server on stdin/stdout exposing three tools:
validate_skill, lint_corpus, and check_brand. Point an MCP-capable agent
at 'skillet mcp serve' and it can validate its own output as it works.

The server runs until the client closes the stream or the process is
interrupted.`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		cfg, err := config.FromViper()
		if err != nil {
			presenter.Error(err, "Failed to load configuration")
			os.Exit(1)
		}

		guidelines, err := loadGuidelines(cfg)
		if err != nil {
			presenter.Error(err, "Failed to load guidelines")
			os.Exit(1)
		}
		linter, err := buildLinter(cfg)
		if err != nil {
			presenter.Error(err, "Failed to build linter")
			os.Exit(1)
		}

		server := mcpserver.New(mcpserver.Config{
			CorpusRoot: cfg.CorpusDir,
			Guidelines: guidelines,
			Linter:     linter,
		})

		// Stdout belongs to the protocol once the server starts; status
		// goes to the log.
		logger.G(ctx).WithField("corpus_root", cfg.CorpusDir).Info("starting MCP server on stdio")

		if err := server.Serve(ctx); err != nil {
			logger.G(ctx).WithError(err).Error("MCP server error")
			os.Exit(1)
		}

		logger.G(ctx).Info("MCP server stopped")
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
