package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

func init() {
	viper.SetEnvPrefix("SKILLET")
	viper.AutomaticEnv()

	config.SetDefaults()

	// ./skillet.yaml wins; fall back to ~/.skillet/config.yaml.
	viper.SetConfigName("skillet")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		viper.AddConfigPath("$HOME/.skillet")
		_ = viper.ReadInConfig()
	}
}

// tracingShutdown flushes the tracer on exit. Set in PersistentPreRunE once
// flags have been parsed.
var tracingShutdown func(context.Context) error

var rootCmd = &cobra.Command{
	Use:   "skillet",
	Short: "Skillet keeps skill packages and brand-governed documents consistent",
	Long: `Skillet manages agent skill packages and the documentation corpus around
them: validate and publish packages, run skills against the Anthropic API,
lint brand and naming rules across Markdown, and guard generated files.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.Setup(viper.GetString("log_level"), viper.GetString("log_format")); err != nil {
			return err
		}

		shutdown, err := initTracing(cmd.Context())
		if err != nil {
			logger.G(cmd.Context()).WithError(err).Warn("tracing disabled")
			return nil
		}
		tracingShutdown = shutdown
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if tracingShutdown != nil {
			if err := tracingShutdown(context.Background()); err != nil {
				logger.G(cmd.Context()).WithError(err).Debug("failed to shut down tracer")
			}
		}
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		presenter.Error(err, "command failed")
		os.Exit(1)
	}
}
