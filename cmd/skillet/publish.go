package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/ledger"
	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/presenter"
	"github.com/skillet-ai/skillet/pkg/skill"
	"github.com/skillet-ai/skillet/pkg/telemetry"
)

type PublishConfig struct {
	Title string
	Force bool
}

func NewPublishConfig() *PublishConfig {
	return &PublishConfig{
		Title: "",
		Force: false,
	}
}

var publishCmd = &cobra.Command{
	Use:   "publish <dir>",
	Short: "Upload a skill package to the Anthropic API",
	Long: `Validate a skill package and upload it. The first publish of a name
creates the skill; later publishes create new versions. A package whose
content digest matches the last recorded publish is skipped unless --force
is given, so re-running publish in CI is cheap.

Publishes are recorded in the local history ledger; see 'skillet history
publishes'.

Examples:
  skillet publish skills/applying-brand-guidelines
  skillet publish skills/budget-builder --title "Budget Builder" --force`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		publishConfig := getPublishConfigFromFlags(cmd)
		dir := args[0]

		result := skill.Validate(dir)
		if !result.Valid() {
			presenter.Warning(fmt.Sprintf("%s has %d validation error(s)", dir, len(result.Errors)))
			for _, e := range result.Errors {
				fmt.Fprintf(os.Stderr, "  ✗ %s\n", e)
			}
			os.Exit(1)
		}
		for _, w := range result.Warnings {
			presenter.Warning("  ! " + w)
		}

		pkg, err := skill.Load(dir)
		if err != nil {
			presenter.Error(err, "Failed to load package")
			os.Exit(1)
		}
		digest, err := pkg.Digest()
		if err != nil {
			presenter.Error(err, "Failed to hash package")
			os.Exit(1)
		}

		store, err := ledger.OpenDefault(ctx)
		if err != nil {
			presenter.Error(err, "Failed to open history ledger")
			os.Exit(1)
		}
		defer store.Close()

		last, err := store.LatestPublish(ctx, pkg.Name)
		if err != nil {
			presenter.Error(err, "Failed to read publish history")
			os.Exit(1)
		}

		if last != nil && last.Digest == digest && !publishConfig.Force {
			presenter.Info(fmt.Sprintf("%s is unchanged since version %s (digest %.12s), skipping upload", pkg.Name, last.Version, digest))
			presenter.Info("Use --force to upload anyway")
			return
		}

		client := mustAPIClient()
		record := ledger.Publish{
			SkillName: pkg.Name,
			Digest:    digest,
			Directory: absDir(dir),
		}

		err = telemetry.WithSpan(ctx, "skillet.publish", func(ctx context.Context) error {
			if last == nil {
				title := publishConfig.Title
				if title == "" {
					title = pkg.Name
				}
				created, err := client.CreateSkill(ctx, dir, title)
				if err != nil {
					return err
				}
				record.SkillID = created.ID
				record.Version = created.LatestVersion
				presenter.Success(fmt.Sprintf("Created skill %s (version %s)", created.ID, created.LatestVersion))
				return nil
			}

			version, err := client.CreateVersion(ctx, last.SkillID, dir)
			if err != nil {
				return err
			}
			record.SkillID = last.SkillID
			record.Version = version.Version
			presenter.Success(fmt.Sprintf("Published %s version %s", last.SkillID, version.Version))
			return nil
		})
		if err != nil {
			presenter.Error(err, "Upload failed")
			os.Exit(1)
		}

		saved, err := store.RecordPublish(ctx, record)
		if err != nil {
			presenter.Error(err, "Upload succeeded but recording it failed")
			os.Exit(1)
		}
		logger.G(ctx).WithFields(map[string]interface{}{
			"skill_id": saved.SkillID,
			"version":  saved.Version,
			"digest":   saved.Digest,
		}).Info("publish recorded")
		presenter.Info("Run it with: skillet run " + saved.SkillID + " \"<prompt>\"")
	},
}

func init() {
	defaults := NewPublishConfig()
	publishCmd.Flags().String("title", defaults.Title, "Display title for a first publish (defaults to the skill name)")
	publishCmd.Flags().Bool("force", defaults.Force, "Upload even when the content digest is unchanged")
	rootCmd.AddCommand(publishCmd)
}

func getPublishConfigFromFlags(cmd *cobra.Command) *PublishConfig {
	config := NewPublishConfig()
	if title, err := cmd.Flags().GetString("title"); err == nil {
		config.Title = title
	}
	if force, err := cmd.Flags().GetBool("force"); err == nil {
		config.Force = force
	}
	return config
}

func absDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}
