package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long: `Print skillet version information as JSON, or just the version string
with --short.`,
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()

		if short, err := cmd.Flags().GetBool("short"); err == nil && short {
			fmt.Println(info.Version)
			return
		}

		out, err := info.JSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting version info: %s\n", err)
			os.Exit(1)
		}
		fmt.Println(out)
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version string")
	rootCmd.AddCommand(versionCmd)
}
