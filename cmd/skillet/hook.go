package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/guard"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

type HookGuardConfig struct {
	Format string
}

func NewHookGuardConfig() *HookGuardConfig {
	return &HookGuardConfig{
		Format: "text",
	}
}

type HookInstallConfig struct {
	Root   string
	Binary string
}

func NewHookInstallConfig() *HookInstallConfig {
	return &HookInstallConfig{
		Root:   ".",
		Binary: "skillet",
	}
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Advisory guards for agent tool use",
	Long: `Guards that read a PreToolUse hook payload on stdin and print advisory
warnings. They never block: whatever they find, they exit zero, because a
guard that can kill a session gets removed, while one that only talks gets
kept.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var hookBashGuardCmd = &cobra.Command{
	Use:   "bash-guard",
	Short: "Warn about risky shell commands",
	Long: `Read a Bash tool payload on stdin and warn about deletions of protected
directories, package installs, and locally started servers. Always exits
zero.`,
	Run: func(cmd *cobra.Command, _ []string) {
		runGuard(cmd, guard.KindCommand)
	},
}

var hookFileGuardCmd = &cobra.Command{
	Use:   "file-guard",
	Short: "Warn about writes to protected or misplaced paths",
	Long: `Read a file-tool payload on stdin and warn about writes to protected
files and generated documents landing outside the outputs directory.
Always exits zero.`,
	Run: func(cmd *cobra.Command, _ []string) {
		runGuard(cmd, guard.KindWrite)
	},
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Register both guards in the agent settings file",
	Long: `Merge the bash and file guards into .claude/settings.json under the
project root, replacing any previously installed skillet entries and
leaving everything else in the file alone.`,
	Run: func(cmd *cobra.Command, _ []string) {
		installConfig := getHookInstallConfigFromFlags(cmd)
		settingsPath := guard.SettingsPath(installConfig.Root)
		bindings := guard.DefaultBindings(installConfig.Binary)

		if err := guard.InstallSettings(settingsPath, bindings); err != nil {
			presenter.Error(err, "Failed to install hooks")
			os.Exit(1)
		}
		presenter.Success(fmt.Sprintf("Installed %d hook(s) in %s", len(bindings), settingsPath))
		for _, b := range bindings {
			presenter.Info(fmt.Sprintf("  %s -> %s", b.Matcher, b.Command))
		}
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the guards from the agent settings file",
	Run: func(cmd *cobra.Command, _ []string) {
		installConfig := getHookInstallConfigFromFlags(cmd)
		settingsPath := guard.SettingsPath(installConfig.Root)

		if err := guard.UninstallSettings(settingsPath); err != nil {
			presenter.Error(err, "Failed to uninstall hooks")
			os.Exit(1)
		}
		presenter.Success("Removed skillet hooks from " + settingsPath)
	},
}

var hookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed guard hooks",
	Run: func(cmd *cobra.Command, _ []string) {
		installConfig := getHookInstallConfigFromFlags(cmd)
		settingsPath := guard.SettingsPath(installConfig.Root)

		bindings, err := guard.InstalledBindings(settingsPath)
		if err != nil {
			presenter.Error(err, "Failed to read settings")
			os.Exit(1)
		}
		if len(bindings) == 0 {
			presenter.Info("No skillet hooks installed in " + settingsPath)
			return
		}
		for _, b := range bindings {
			fmt.Printf("%s\t%s\n", b.Matcher, b.Command)
		}
	},
}

func init() {
	guardDefaults := NewHookGuardConfig()
	hookBashGuardCmd.Flags().String("format", guardDefaults.Format, "Output format (text, json)")
	hookFileGuardCmd.Flags().String("format", guardDefaults.Format, "Output format (text, json)")

	installDefaults := NewHookInstallConfig()
	for _, c := range []*cobra.Command{hookInstallCmd, hookUninstallCmd, hookListCmd} {
		c.Flags().String("root", installDefaults.Root, "Project root holding .claude/settings.json")
	}
	hookInstallCmd.Flags().String("binary", installDefaults.Binary, "Binary name or path the hook commands invoke")

	hookCmd.AddCommand(hookBashGuardCmd)
	hookCmd.AddCommand(hookFileGuardCmd)
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookCmd.AddCommand(hookListCmd)
	rootCmd.AddCommand(hookCmd)
}

func getHookGuardConfigFromFlags(cmd *cobra.Command) *HookGuardConfig {
	config := NewHookGuardConfig()
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	return config
}

func getHookInstallConfigFromFlags(cmd *cobra.Command) *HookInstallConfig {
	config := NewHookInstallConfig()
	if root, err := cmd.Flags().GetString("root"); err == nil {
		config.Root = root
	}
	if binary, err := cmd.Flags().GetString("binary"); err == nil && binary != "" {
		config.Binary = binary
	}
	return config
}

// runGuard evaluates one hook payload from stdin. Guards are advisory: any
// internal failure logs and exits zero so the tool call proceeds.
func runGuard(cmd *cobra.Command, kind guard.Kind) {
	ctx := cmd.Context()
	guardConfig := getHookGuardConfigFromFlags(cmd)

	format := guard.FormatText
	if guardConfig.Format == "json" {
		format = guard.FormatJSON
	}

	g, err := guardFromConfig()
	if err != nil {
		presenter.Warning("guard configuration invalid, using built-in rules: " + err.Error())
		g, err = guard.New()
		if err != nil {
			return
		}
	}

	g.RunHook(ctx, kind, os.Stdin, os.Stdout, format)
}

// guardFromConfig extends the built-in advisory rules with the configured
// extras. The built-in floor always applies.
func guardFromConfig() (*guard.Guard, error) {
	cfg, err := config.FromViper()
	if err != nil {
		return nil, err
	}

	opts := []guard.Option{}
	if len(cfg.Guard.ProtectedDirs) > 0 {
		opts = append(opts, guard.WithProtectedDirs(cfg.Guard.ProtectedDirs...))
	}
	if len(cfg.Guard.ProtectedFiles) > 0 {
		opts = append(opts, guard.WithProtectedFiles(cfg.Guard.ProtectedFiles...))
	}
	if len(cfg.Guard.Installers) > 0 {
		opts = append(opts, guard.WithInstallers(cfg.Guard.Installers...))
	}
	if len(cfg.Guard.IgnorePatterns) > 0 {
		opts = append(opts, guard.WithIgnorePatterns(cfg.Guard.IgnorePatterns...))
	}
	if cfg.Guard.OutputsDir != "" {
		opts = append(opts, guard.WithOutputsDir(cfg.Guard.OutputsDir))
	}
	if len(cfg.Guard.OutputsExts) > 0 {
		opts = append(opts, guard.WithOutputsExts(cfg.Guard.OutputsExts...))
	}
	return guard.New(opts...)
}
