package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/artifacts"
	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/ledger"
	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/presenter"
	"github.com/skillet-ai/skillet/pkg/runner"
	"github.com/skillet-ai/skillet/pkg/telemetry"
)

type RunConfig struct {
	Version         string
	Model           string
	MaxTokens       int64
	AnthropicSkills []string
	OutputDir       string
	KeepExisting    bool
	NoSave          bool
}

func NewRunConfig() *RunConfig {
	return &RunConfig{
		Version:         "",
		Model:           "",
		MaxTokens:       0,
		AnthropicSkills: nil,
		OutputDir:       "",
		KeepExisting:    false,
		NoSave:          false,
	}
}

var runCmd = &cobra.Command{
	Use:   "run <skill-id> [prompt]",
	Short: "Run a published skill against the Anthropic API",
	Long: `Send a prompt to a published skill in a code-execution container and
stream what comes back: text, tool use, and generated files. Files land in
the outputs directory; existing files are overwritten unless
--keep-existing is given.

The prompt comes from the arguments, or from stdin when piped. Runs are
recorded in the local history ledger; see 'skillet history runs'.

Examples:
  skillet run skill_01AbCdEfGh "Build the Q3 budget workbook"
  cat brief.md | skillet run skill_01AbCdEfGh
  skillet run skill_01AbCdEfGh "Polish this deck" --anthropic-skill pptx`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		runConfig := getRunConfigFromFlags(cmd)
		skillID := args[0]

		prompt, err := resolvePrompt(args[1:])
		if err != nil {
			presenter.Error(err, "No prompt provided")
			os.Exit(1)
		}

		cfg, err := config.FromViper()
		if err != nil {
			presenter.Error(err, "Failed to load configuration")
			os.Exit(1)
		}

		model := cfg.API.Model
		if runConfig.Model != "" {
			model = runConfig.Model
		}
		maxTokens := int64(cfg.API.MaxTokens)
		if runConfig.MaxTokens > 0 {
			maxTokens = runConfig.MaxTokens
		}
		outputDir := cfg.OutputsDir
		if runConfig.OutputDir != "" {
			outputDir = runConfig.OutputDir
		}

		client := mustAPIClient()

		req := runner.Request{
			SkillID:         skillID,
			Version:         runConfig.Version,
			Prompt:          prompt,
			Model:           model,
			MaxTokens:       maxTokens,
			AnthropicSkills: runConfig.AnthropicSkills,
		}

		var result *runner.Result
		err = telemetry.WithSpan(ctx, "skillet.run", func(ctx context.Context) error {
			var runErr error
			result, runErr = runner.New(client).Run(ctx, req, &runner.ConsoleHandler{})
			return runErr
		})
		if err != nil {
			presenter.Error(err, "Run failed")
			os.Exit(1)
		}

		downloader := artifacts.NewDownloader(client,
			artifacts.WithOutputDir(outputDir),
			artifacts.WithOverwrite(!runConfig.KeepExisting),
		)
		results := downloader.DownloadAll(ctx, result.Response)
		if len(results) > 0 {
			fmt.Println(artifacts.Summary(results))
		}

		presenter.Usage(result.Usage.InputTokens, result.Usage.OutputTokens)

		if !runConfig.NoSave {
			recordRun(ctx, skillID, runConfig.Version, prompt, result, results)
		}
	},
}

func init() {
	defaults := NewRunConfig()
	runCmd.Flags().String("version", defaults.Version, "Skill version to run (defaults to latest)")
	runCmd.Flags().String("model", defaults.Model, "Model override")
	runCmd.Flags().Int64("max-tokens", defaults.MaxTokens, "Response token budget override")
	runCmd.Flags().StringSlice("anthropic-skill", defaults.AnthropicSkills, "Platform skill to load alongside (xlsx, pptx, docx, pdf); repeatable")
	runCmd.Flags().StringP("output-dir", "o", defaults.OutputDir, "Directory for generated files (defaults to outputs_dir)")
	runCmd.Flags().Bool("keep-existing", defaults.KeepExisting, "Keep existing files instead of overwriting")
	runCmd.Flags().Bool("no-save", defaults.NoSave, "Skip recording the run in the history ledger")
	rootCmd.AddCommand(runCmd)
}

func getRunConfigFromFlags(cmd *cobra.Command) *RunConfig {
	config := NewRunConfig()
	if version, err := cmd.Flags().GetString("version"); err == nil {
		config.Version = version
	}
	if model, err := cmd.Flags().GetString("model"); err == nil {
		config.Model = model
	}
	if maxTokens, err := cmd.Flags().GetInt64("max-tokens"); err == nil {
		config.MaxTokens = maxTokens
	}
	if anthropicSkills, err := cmd.Flags().GetStringSlice("anthropic-skill"); err == nil {
		config.AnthropicSkills = anthropicSkills
	}
	if outputDir, err := cmd.Flags().GetString("output-dir"); err == nil {
		config.OutputDir = outputDir
	}
	if keepExisting, err := cmd.Flags().GetBool("keep-existing"); err == nil {
		config.KeepExisting = keepExisting
	}
	if noSave, err := cmd.Flags().GetBool("no-save"); err == nil {
		config.NoSave = noSave
	}
	return config
}

// resolvePrompt joins the argument words, or reads stdin when the command is
// being piped into.
func resolvePrompt(args []string) (string, error) {
	stat, _ := os.Stdin.Stat()
	isPipe := (stat.Mode() & os.ModeCharDevice) == 0

	if isPipe {
		stdinBytes, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		content := strings.TrimSpace(string(stdinBytes))
		if len(args) > 0 {
			return strings.Join(args, " ") + "\n" + content, nil
		}
		if content == "" {
			return "", fmt.Errorf("stdin was empty")
		}
		return content, nil
	}

	if len(args) == 0 {
		return "", fmt.Errorf("pass a prompt argument or pipe one on stdin")
	}
	return strings.Join(args, " "), nil
}

// recordRun saves the run to the ledger. History is best-effort: a ledger
// failure warns but does not fail a run that already succeeded.
func recordRun(ctx context.Context, skillID, version, prompt string, result *runner.Result, downloads []artifacts.DownloadResult) {
	store, err := ledger.OpenDefault(ctx)
	if err != nil {
		presenter.Warning("History ledger unavailable: " + err.Error())
		return
	}
	defer store.Close()

	saved := 0
	for _, d := range downloads {
		if d.Success {
			saved++
		}
	}

	run := ledger.Run{
		SkillID:             skillID,
		Version:             version,
		Model:               result.Model,
		Prompt:              prompt,
		MessageID:           result.MessageID,
		StopReason:          result.StopReason,
		InputTokens:         result.Usage.InputTokens,
		OutputTokens:        result.Usage.OutputTokens,
		CacheCreationTokens: result.Usage.CacheCreationInputTokens,
		CacheReadTokens:     result.Usage.CacheReadInputTokens,
		Artifacts:           saved,
	}
	if _, err := store.RecordRun(ctx, run); err != nil {
		presenter.Warning("Failed to record run: " + err.Error())
		return
	}
	logger.G(ctx).WithFields(map[string]interface{}{
		"skill_id":   skillID,
		"message_id": result.MessageID,
		"artifacts":  saved,
	}).Debug("run recorded")
}
