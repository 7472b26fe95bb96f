package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/presenter"
	"github.com/skillet-ai/skillet/pkg/skillsapi"
)

type SkillsListConfig struct {
	Source string
}

func NewSkillsListConfig() *SkillsListConfig {
	return &SkillsListConfig{
		Source: "",
	}
}

type SkillsDeleteConfig struct {
	Versions bool
}

func NewSkillsDeleteConfig() *SkillsDeleteConfig {
	return &SkillsDeleteConfig{
		Versions: false,
	}
}

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Manage skills on the Anthropic API",
	Long: `List, inspect, and delete skills uploaded to the Anthropic API. Uploading
happens through 'skillet publish'. All commands need ANTHROPIC_API_KEY.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var skillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List remote skills",
	Long: `List skills on the API. --source filters to custom (uploaded) or
anthropic (platform-bundled) skills.`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		listConfig := getSkillsListConfigFromFlags(cmd)

		client := mustAPIClient()
		skills, err := client.ListSkills(ctx, listConfig.Source)
		if err != nil {
			presenter.Error(err, "Failed to list skills")
			os.Exit(1)
		}
		if len(skills) == 0 {
			presenter.Info("No skills found")
			return
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tSOURCE\tLATEST\tUPDATED")
		for _, s := range skills {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				s.ID, s.DisplayTitle, s.Source, s.LatestVersion, s.UpdatedAt.Format("2006-01-02"))
		}
		tw.Flush()
	},
}

var skillsGetCmd = &cobra.Command{
	Use:   "get <skill-id>",
	Short: "Show one remote skill",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		client := mustAPIClient()
		skill, err := client.GetSkill(ctx, args[0])
		if err != nil {
			presenter.Error(err, "Failed to get skill")
			os.Exit(1)
		}

		fmt.Printf("ID:             %s\n", skill.ID)
		fmt.Printf("Title:          %s\n", skill.DisplayTitle)
		fmt.Printf("Source:         %s\n", skill.Source)
		fmt.Printf("Latest version: %s\n", skill.LatestVersion)
		fmt.Printf("Created:        %s\n", skill.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Updated:        %s\n", skill.UpdatedAt.Format("2006-01-02 15:04:05"))
	},
}

var skillsVersionsCmd = &cobra.Command{
	Use:   "versions <skill-id>",
	Short: "List the versions of a remote skill",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		client := mustAPIClient()
		versions, err := client.ListVersions(ctx, args[0])
		if err != nil {
			presenter.Error(err, "Failed to list versions")
			os.Exit(1)
		}
		if len(versions) == 0 {
			presenter.Info("No versions found")
			return
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tNAME\tCREATED")
		for _, v := range versions {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Version, v.Name, v.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		tw.Flush()
	},
}

var skillsDeleteCmd = &cobra.Command{
	Use:   "delete <skill-id>",
	Short: "Delete a remote skill",
	Long: `Delete a skill from the API. A skill with versions cannot be deleted
until its versions are gone; --versions deletes them first.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		deleteConfig := getSkillsDeleteConfigFromFlags(cmd)

		client := mustAPIClient()
		deleted, err := client.DeleteSkill(ctx, args[0], deleteConfig.Versions)
		if err != nil {
			presenter.Error(err, "Failed to delete skill")
			os.Exit(1)
		}

		for _, v := range deleted {
			presenter.Info("Deleted version " + v)
		}
		presenter.Success("Deleted skill " + args[0])
	},
}

var skillsDeleteVersionCmd = &cobra.Command{
	Use:   "delete-version <skill-id> <version>",
	Short: "Delete one version of a remote skill",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		client := mustAPIClient()
		if err := client.DeleteVersion(ctx, args[0], args[1]); err != nil {
			presenter.Error(err, "Failed to delete version")
			os.Exit(1)
		}
		presenter.Success(fmt.Sprintf("Deleted %s version %s", args[0], args[1]))
	},
}

func init() {
	listDefaults := NewSkillsListConfig()
	skillsListCmd.Flags().String("source", listDefaults.Source, "Filter by source (custom, anthropic)")

	deleteDefaults := NewSkillsDeleteConfig()
	skillsDeleteCmd.Flags().Bool("versions", deleteDefaults.Versions, "Delete all versions first")

	skillsCmd.AddCommand(skillsListCmd)
	skillsCmd.AddCommand(skillsGetCmd)
	skillsCmd.AddCommand(skillsVersionsCmd)
	skillsCmd.AddCommand(skillsDeleteCmd)
	skillsCmd.AddCommand(skillsDeleteVersionCmd)
	rootCmd.AddCommand(skillsCmd)
}

func getSkillsListConfigFromFlags(cmd *cobra.Command) *SkillsListConfig {
	config := NewSkillsListConfig()
	if source, err := cmd.Flags().GetString("source"); err == nil {
		config.Source = source
	}
	return config
}

func getSkillsDeleteConfigFromFlags(cmd *cobra.Command) *SkillsDeleteConfig {
	config := NewSkillsDeleteConfig()
	if versions, err := cmd.Flags().GetBool("versions"); err == nil {
		config.Versions = versions
	}
	return config
}

// mustAPIClient builds the API client with the configured retry policy, or
// exits with a credential hint.
func mustAPIClient() *skillsapi.Client {
	opts := []skillsapi.ClientOption{}
	if cfg, err := config.FromViper(); err == nil {
		opts = append(opts, skillsapi.WithRetryConfig(cfg.API.Retry))
	}

	client, err := skillsapi.New(opts...)
	if err != nil {
		presenter.Error(err, "Set ANTHROPIC_API_KEY to use API commands")
		os.Exit(1)
	}
	return client
}
