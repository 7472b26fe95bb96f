package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/presenter"
	"github.com/skillet-ai/skillet/pkg/skill"
)

type ValidateConfig struct {
	Watch    bool
	Debounce int
	Format   string
}

func NewValidateConfig() *ValidateConfig {
	return &ValidateConfig{
		Watch:    false,
		Debounce: 500,
		Format:   "text",
	}
}

var validateCmd = &cobra.Command{
	Use:   "validate <dir>...",
	Short: "Validate skill packages",
	Long: `Validate one or more skill package directories against the publishing
rules: a parseable SKILL.md manifest with name and description, a name that
matches the directory, no symlinks escaping the package, and the package
size limit.

With --watch, stays running and re-validates a single package whenever a
file inside it changes.

Examples:
  skillet validate skills/applying-brand-guidelines
  skillet validate skills/*
  skillet validate --watch skills/budget-builder`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getValidateConfigFromFlags(cmd)

		if config.Watch {
			if len(args) != 1 {
				presenter.Error(fmt.Errorf("--watch takes exactly one directory"), "Invalid arguments")
				os.Exit(1)
			}
			watchAndValidate(ctx, args[0], config)
			return
		}

		failed := 0
		for _, dir := range args {
			result := skill.Validate(dir)
			reportValidation(config, dir, result)
			if !result.Valid() {
				failed++
			}
		}
		if failed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewValidateConfig()
	validateCmd.Flags().BoolP("watch", "w", defaults.Watch, "Re-validate whenever a file in the package changes")
	validateCmd.Flags().Int("debounce", defaults.Debounce, "Debounce time in milliseconds for watch mode")
	validateCmd.Flags().String("format", defaults.Format, "Output format (text, json)")
	rootCmd.AddCommand(validateCmd)
}

func getValidateConfigFromFlags(cmd *cobra.Command) *ValidateConfig {
	config := NewValidateConfig()
	if watch, err := cmd.Flags().GetBool("watch"); err == nil {
		config.Watch = watch
	}
	if debounce, err := cmd.Flags().GetInt("debounce"); err == nil {
		config.Debounce = debounce
	}
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	return config
}

func reportValidation(config *ValidateConfig, dir string, result *skill.ValidationResult) {
	if config.Format == "json" {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to encode result")
			return
		}
		fmt.Println(string(out))
		return
	}

	if result.Valid() {
		presenter.Success(fmt.Sprintf("%s is valid (%d files, %d bytes)", dir, result.FileCount, result.TotalSize))
	} else {
		presenter.Warning(fmt.Sprintf("%s has %d error(s)", dir, len(result.Errors)))
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  ✗ %s\n", e)
		}
	}
	for _, w := range result.Warnings {
		presenter.Warning("  ! " + w)
	}
}

// watchAndValidate re-runs validation on every debounced change under dir.
func watchAndValidate(ctx context.Context, dir string, config *ValidateConfig) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		presenter.Error(err, "Failed to create file watcher")
		os.Exit(1)
	}
	defer watcher.Close()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if name := info.Name(); name == ".git" || name == "node_modules" || name == "__pycache__" {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		presenter.Error(err, "Failed to watch package directory")
		os.Exit(1)
	}

	runValidation := func() {
		result := skill.Validate(dir)
		reportValidation(config, dir, result)
	}

	presenter.Info(fmt.Sprintf("Watching %s for changes... Press Ctrl+C to stop", dir))
	runValidation()

	debounce := time.Duration(config.Debounce) * time.Millisecond
	var timer *time.Timer
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if strings.Contains(event.Name, string(os.PathSeparator)+".git"+string(os.PathSeparator)) {
				continue
			}
			// New directories need to be added to the watch set.
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := watcher.Add(event.Name); addErr != nil {
						logger.G(ctx).WithError(addErr).WithField("directory", event.Name).Debug("failed to watch new directory")
					}
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				presenter.Separator()
				presenter.Info(fmt.Sprintf("Change detected: %s", event.Name))
				runValidation()
			})
		case werr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			presenter.Error(werr, "File watcher error")
			logger.G(ctx).WithError(werr).Error("error watching package")
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			presenter.Info("Watch stopped")
			return
		}
	}
}
