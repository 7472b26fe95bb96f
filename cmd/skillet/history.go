package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/ledger"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

type HistoryConfig struct {
	Skill string
	Limit int
}

func NewHistoryConfig() *HistoryConfig {
	return &HistoryConfig{
		Skill: "",
		Limit: 20,
	}
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show local publish and run history",
	Long: `Show the local history ledger: what was published when with which
content digest, and which runs consumed how many tokens. The ledger lives
in ~/.skillet/skillet.db and only ever records; nothing reads it back into
API calls except the publish digest check.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var historyRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent skill runs",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		historyConfig := getHistoryConfigFromFlags(cmd)

		store, err := ledger.OpenDefault(ctx)
		if err != nil {
			presenter.Error(err, "Failed to open history ledger")
			os.Exit(1)
		}
		defer store.Close()

		runs, err := store.RecentRuns(ctx, historyConfig.Skill, historyConfig.Limit)
		if err != nil {
			presenter.Error(err, "Failed to read run history")
			os.Exit(1)
		}
		if len(runs) == 0 {
			presenter.Info("No runs recorded")
			return
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "WHEN\tSKILL\tMODEL\tIN\tOUT\tFILES\tPROMPT")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.SkillID, r.Model,
				r.InputTokens, r.OutputTokens, r.Artifacts, truncate(r.Prompt, 48))
		}
		tw.Flush()
	},
}

var historyPublishesCmd = &cobra.Command{
	Use:   "publishes",
	Short: "List recent skill publishes",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		historyConfig := getHistoryConfigFromFlags(cmd)

		store, err := ledger.OpenDefault(ctx)
		if err != nil {
			presenter.Error(err, "Failed to open history ledger")
			os.Exit(1)
		}
		defer store.Close()

		publishes, err := store.RecentPublishes(ctx, historyConfig.Limit)
		if err != nil {
			presenter.Error(err, "Failed to read publish history")
			os.Exit(1)
		}
		if len(publishes) == 0 {
			presenter.Info("No publishes recorded")
			return
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "WHEN\tNAME\tSKILL ID\tVERSION\tDIGEST")
		for _, p := range publishes {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.12s\n",
				p.CreatedAt.Format("2006-01-02 15:04"), p.SkillName, p.SkillID, p.Version, p.Digest)
		}
		tw.Flush()
	},
}

func init() {
	defaults := NewHistoryConfig()
	historyRunsCmd.Flags().String("skill", defaults.Skill, "Filter runs to one skill ID")
	historyRunsCmd.Flags().Int("limit", defaults.Limit, "Maximum rows to show")
	historyPublishesCmd.Flags().Int("limit", defaults.Limit, "Maximum rows to show")

	historyCmd.AddCommand(historyRunsCmd)
	historyCmd.AddCommand(historyPublishesCmd)
	rootCmd.AddCommand(historyCmd)
}

func getHistoryConfigFromFlags(cmd *cobra.Command) *HistoryConfig {
	config := NewHistoryConfig()
	if skill, err := cmd.Flags().GetString("skill"); err == nil {
		config.Skill = skill
	}
	if limit, err := cmd.Flags().GetInt("limit"); err == nil {
		config.Limit = limit
	}
	return config
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
