package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/artifacts"
	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

type FilesDownloadConfig struct {
	Output       string
	KeepExisting bool
}

func NewFilesDownloadConfig() *FilesDownloadConfig {
	return &FilesDownloadConfig{
		Output:       "",
		KeepExisting: false,
	}
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Inspect and download generated files",
	Long: `Work with files a skill run produced in its execution container, by
file ID. Run output prints the IDs; 'skillet history runs' shows past runs.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var filesInfoCmd = &cobra.Command{
	Use:   "info <file-id>",
	Short: "Show a generated file's metadata",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		client := mustAPIClient()
		downloader := artifacts.NewDownloader(client)
		info, err := downloader.FileInfo(ctx, args[0])
		if err != nil {
			presenter.Error(err, "Failed to fetch file metadata")
			os.Exit(1)
		}

		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to encode metadata")
			os.Exit(1)
		}
		fmt.Println(string(out))
	},
}

var filesDownloadCmd = &cobra.Command{
	Use:   "download <file-id>",
	Short: "Download a generated file",
	Long: `Download one generated file. Without --output the file lands in the
outputs directory under its original name.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		downloadConfig := getFilesDownloadConfigFromFlags(cmd)
		fileID := args[0]

		cfg, err := config.FromViper()
		if err != nil {
			presenter.Error(err, "Failed to load configuration")
			os.Exit(1)
		}

		client := mustAPIClient()
		downloader := artifacts.NewDownloader(client,
			artifacts.WithOutputDir(cfg.OutputsDir),
			artifacts.WithOverwrite(!downloadConfig.KeepExisting),
		)

		outputPath := downloadConfig.Output
		if outputPath == "" {
			info, err := downloader.FileInfo(ctx, fileID)
			if err != nil {
				presenter.Error(err, "Failed to fetch file metadata")
				os.Exit(1)
			}
			outputPath = filepath.Join(cfg.OutputsDir, info.Filename)
		}

		result := downloader.Download(ctx, fileID, outputPath)
		if !result.Success {
			presenter.Error(fmt.Errorf("%s", result.Error), "Download failed")
			os.Exit(1)
		}

		notice := ""
		if result.Overwritten {
			notice = " (overwrote existing file)"
		}
		presenter.Success(fmt.Sprintf("Saved %s (%.1f KB)%s", result.OutputPath, float64(result.Size)/1024, notice))
	},
}

func init() {
	defaults := NewFilesDownloadConfig()
	filesDownloadCmd.Flags().StringP("output", "o", defaults.Output, "Destination path (defaults to outputs_dir/<original name>)")
	filesDownloadCmd.Flags().Bool("keep-existing", defaults.KeepExisting, "Fail instead of overwriting an existing file")

	filesCmd.AddCommand(filesInfoCmd)
	filesCmd.AddCommand(filesDownloadCmd)
	rootCmd.AddCommand(filesCmd)
}

func getFilesDownloadConfigFromFlags(cmd *cobra.Command) *FilesDownloadConfig {
	config := NewFilesDownloadConfig()
	if output, err := cmd.Flags().GetString("output"); err == nil {
		config.Output = output
	}
	if keepExisting, err := cmd.Flags().GetBool("keep-existing"); err == nil {
		config.KeepExisting = keepExisting
	}
	return config
}
