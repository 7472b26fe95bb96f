package main

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/catalog"
	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/presenter"
	"github.com/skillet-ai/skillet/pkg/skill"
)

// ServeConfig holds configuration for the serve command
type ServeConfig struct {
	Host string
	Port int
}

// NewServeConfig creates a new ServeConfig with default values
func NewServeConfig() *ServeConfig {
	return &ServeConfig{
		Host: "localhost",
		Port: 8080,
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the skill catalog over HTTP",
	Long: `Start a local HTTP server exposing the skill catalog: the discovered
packages under the configured skill roots, per-skill detail with validation
status, and an endpoint that lints the documentation corpus on demand.

The server will be available at http://localhost:8080 by default.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		serveConfig := getServeConfigFromFlags(cmd)

		if err := validateServeConfig(serveConfig); err != nil {
			presenter.Error(err, "invalid server configuration")
			os.Exit(1)
		}

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

		linter, err := buildLinter(cfg)
		if err != nil {
			presenter.Error(err, "Failed to build linter")
			os.Exit(1)
		}

		logger.G(ctx).WithFields(map[string]interface{}{
			"host":        serveConfig.Host,
			"port":        serveConfig.Port,
			"skill_roots": cfg.SkillRoots,
		}).Info("starting catalog server")

		server, err := catalog.NewServer(&catalog.ServerConfig{
			Host:       serveConfig.Host,
			Port:       serveConfig.Port,
			CorpusRoot: cfg.CorpusDir,
		}, catalog.New(discovery), linter)
		if err != nil {
			presenter.Error(err, "failed to create catalog server")
			os.Exit(1)
		}

		presenter.Success(fmt.Sprintf("Catalog server starting on http://%s:%d", serveConfig.Host, serveConfig.Port))
		presenter.Info("Press Ctrl+C to stop the server")

		if err := server.Start(ctx); err != nil {
			logger.G(ctx).WithError(err).Error("catalog server error")
			presenter.Error(err, "catalog server failed")
			os.Exit(1)
		}

		presenter.Info("Catalog server stopped")
	},
}

func init() {
	defaults := NewServeConfig()
	serveCmd.Flags().String("host", defaults.Host, "Host to bind the server to")
	serveCmd.Flags().Int("port", defaults.Port, "Port to bind the server to")
	rootCmd.AddCommand(serveCmd)
}

// getServeConfigFromFlags extracts serve configuration from command flags
func getServeConfigFromFlags(cmd *cobra.Command) *ServeConfig {
	config := NewServeConfig()

	if host, err := cmd.Flags().GetString("host"); err == nil {
		config.Host = host
	}
	if port, err := cmd.Flags().GetInt("port"); err == nil {
		config.Port = port
	}

	return config
}

// validateServeConfig validates the serve configuration
func validateServeConfig(config *ServeConfig) error {
	if config.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}

	if config.Host != "localhost" && config.Host != "0.0.0.0" {
		if ip := net.ParseIP(config.Host); ip == nil {
			if strings.Contains(config.Host, " ") || strings.Contains(config.Host, ":") {
				return fmt.Errorf("invalid host: %s", config.Host)
			}
		}
	}

	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", config.Port)
	}

	return nil
}
