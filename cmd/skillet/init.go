package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up skillet configuration",
	Long:  `Set up skillet configuration with sensible defaults.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		override, _ := cmd.Flags().GetBool("override")

		presenter.Section("Skillet Configuration Setup")
		presenter.Info("Setting up skillet with recommended defaults.")
		presenter.Separator()

		presenter.Section("API Key Requirements")

		anthropicKey := os.Getenv("ANTHROPIC_API_KEY")
		if anthropicKey != "" {
			presenter.Success("Found ANTHROPIC_API_KEY in environment")
		} else {
			presenter.Info("You will need ANTHROPIC_API_KEY set to publish and run skills; lint, validate, and the guards work without it")
		}

		presenter.Separator()

		configDir := filepath.Join(os.Getenv("HOME"), ".skillet")
		err := os.MkdirAll(configDir, 0755)
		if err != nil {
			presenter.Error(err, "Failed to create config directory")
			logger.G(ctx).WithError(err).WithField("config_dir", configDir).Error("Config directory creation failed")
			return
		}
		logger.G(ctx).WithField("config_dir", configDir).Debug("Config directory created")

		configFile := filepath.Join(configDir, "config.yaml")

		if !override {
			if _, err := os.Stat(configFile); err == nil {
				presenter.Warning(fmt.Sprintf("Configuration file already exists at %s", configFile))
				presenter.Info("To overwrite, use the --override flag or remove the file and run 'skillet init' again")
				return
			}
		}

		configContent := `log_level: info
log_format: text
skill_roots:
    - ./skills
corpus_dir: .
outputs_dir: ./outputs
api:
    model: claude-sonnet-4-5
    max_tokens: 4096
lint:
    include:
        - "**/*.md"
    exclude:
        - node_modules/**
        - .git/**
        - outputs/**
naming:
    statuses: []
guard:
    protected_dirs: []
    protected_files: []
`

		err = os.WriteFile(configFile, []byte(configContent), 0644)
		if err != nil {
			presenter.Error(err, "Failed to write config file")
			logger.G(ctx).WithError(err).WithField("config_file", configFile).Error("Config file write failed")
			return
		}

		if override {
			presenter.Success(fmt.Sprintf("Configuration overwritten at %s", configFile))
		} else {
			presenter.Success(fmt.Sprintf("Configuration saved to %s", configFile))
		}
		presenter.Info("You can modify these settings at any time by editing the config file")
		presenter.Info("A per-project skillet.yaml in the working directory takes precedence")
		logger.G(ctx).WithField("config_file", configFile).Info("Configuration file created successfully")

		presenter.Separator()
		presenter.Section("Setup Complete")
		presenter.Success("Skillet has been configured with sensible defaults")

		if anthropicKey == "" {
			presenter.Separator()
			presenter.Warning("No API key found. Set it before publishing or running skills:")
			presenter.Info("  export ANTHROPIC_API_KEY=\"your-key-here\"")
		}

		presenter.Separator()
		presenter.Section("Getting Started")
		presenter.Info("  skillet new my-skill --description \"...\"   # Scaffold a skill package")
		presenter.Info("  skillet validate ./skills/my-skill          # Check package structure")
		presenter.Info("  skillet lint                                # Lint the documentation corpus")
		presenter.Info("  skillet publish ./skills/my-skill           # Upload to the Skills API")
		presenter.Info("  skillet run <skill-id> \"your prompt\"        # Execute a skill")
		presenter.Info("  skillet serve                               # Start the catalog server")
		presenter.Info("  skillet --help                              # Show all available commands")

		logger.G(ctx).Info("Skillet initialization completed successfully")
	},
}

func init() {
	initCmd.Flags().Bool("override", false, "Overwrite existing configuration file if it exists")
	rootCmd.AddCommand(initCmd)
}
