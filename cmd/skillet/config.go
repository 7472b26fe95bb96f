package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect skillet configuration",
	Long:  `Commands for inspecting the resolved configuration and its schema.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Long: `Print the configuration after merging defaults, config files, environment
variables, and flags, in the order viper resolves them.

Examples:
  skillet config show
  SKILLET_LOG_LEVEL=debug skillet config show`,
	Run: func(cmd *cobra.Command, _ []string) {
		out, err := yaml.Marshal(viper.AllSettings())
		if err != nil {
			presenter.Error(err, "Failed to render configuration")
			os.Exit(1)
		}
		fmt.Print(string(out))
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the configuration JSON schema",
	Long: `Print a JSON schema describing skillet.yaml and ~/.skillet/config.yaml.
Point your editor's YAML language server at it to get completion and
validation while editing config files.

Examples:
  skillet config schema > skillet.schema.json`,
	Run: func(cmd *cobra.Command, _ []string) {
		reflector := jsonschema.Reflector{
			AllowAdditionalProperties: true,
			DoNotReference:            true,
			FieldNameTag:              "mapstructure",
		}
		schema := reflector.Reflect(&config.Config{})
		schema.Title = "skillet configuration"
		schema.Description = "Configuration accepted in skillet.yaml and ~/.skillet/config.yaml"

		out, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to render schema")
			os.Exit(1)
		}
		fmt.Println(string(out))
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSchemaCmd)
	rootCmd.AddCommand(configCmd)
}
