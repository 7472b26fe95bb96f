package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/brand"
	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

type BrandCheckConfig struct {
	Format string
}

func NewBrandCheckConfig() *BrandCheckConfig {
	return &BrandCheckConfig{
		Format: "text",
	}
}

var brandCmd = &cobra.Command{
	Use:   "brand",
	Short: "Brand guideline commands",
	Long:  `Check content against the brand guidelines and inspect the palette.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var brandCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Check a document for brand compliance",
	Long: `Check content against the brand guidelines: colors outside the palette,
unapproved fonts, prohibited words, missing tone keywords, and brand-name
misuse. Reads the named file, or stdin when no path is given.

Violations exit non-zero; warnings do not.

Examples:
  skillet brand check docs/brand_guidelines.md
  cat draft.md | skillet brand check
  skillet brand check report.html --format json`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		checkConfig := getBrandCheckConfigFromFlags(cmd)

		cfg, err := config.FromViper()
		if err != nil {
			presenter.Error(err, "Failed to load configuration")
			os.Exit(1)
		}
		guidelines, err := loadGuidelines(cfg)
		if err != nil {
			presenter.Error(err, "Failed to load guidelines")
			os.Exit(1)
		}
		validator := brand.NewValidator(guidelines)

		var report *brand.Report
		var source string
		if len(args) == 1 {
			source = args[0]
			report, err = validator.CheckFile(args[0])
			if err != nil {
				presenter.Error(err, "Failed to check file")
				os.Exit(1)
			}
		} else {
			source = "stdin"
			content, err := io.ReadAll(os.Stdin)
			if err != nil {
				presenter.Error(err, "Failed to read stdin")
				os.Exit(1)
			}
			report = validator.CheckContent(string(content))
		}

		if checkConfig.Format == "json" {
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				presenter.Error(err, "Failed to encode report")
				os.Exit(1)
			}
			fmt.Println(string(out))
		} else {
			for _, issue := range report.Issues {
				fmt.Printf("%s:%d: %s: %s [%s]\n", source, issue.Line, issue.Severity, issue.Message, issue.Category)
			}
			for _, s := range report.Suggestions {
				presenter.Info("suggestion: " + s)
			}
			summary := fmt.Sprintf("score %d/100, %d violation(s), %d warning(s)",
				report.Score, report.Violations, report.Warnings)
			if report.Compliant() {
				presenter.Success(summary)
			} else {
				presenter.Warning(summary)
			}
		}

		if !report.Compliant() {
			os.Exit(1)
		}
	},
}

var brandPaletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Print the approved color palette",
	Long:  `Print every approved brand color with its hex code, RGB triple, and usage.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cfg, err := config.FromViper()
		if err != nil {
			presenter.Error(err, "Failed to load configuration")
			os.Exit(1)
		}
		guidelines, err := loadGuidelines(cfg)
		if err != nil {
			presenter.Error(err, "Failed to load guidelines")
			os.Exit(1)
		}

		presenter.Section(guidelines.BrandName + " palette")
		for _, c := range guidelines.AllColors() {
			fmt.Printf("%-14s %s  rgb(%d, %d, %d)\n", c.Name, c.Hex, c.RGB[0], c.RGB[1], c.RGB[2])
		}
		presenter.Separator()
		presenter.Info("Fonts: " + strings.Join(guidelines.Fonts.Approved(), ", "))
	},
}

func init() {
	defaults := NewBrandCheckConfig()
	brandCheckCmd.Flags().String("format", defaults.Format, "Output format (text, json)")

	brandCmd.AddCommand(brandCheckCmd)
	brandCmd.AddCommand(brandPaletteCmd)
	rootCmd.AddCommand(brandCmd)
}

func getBrandCheckConfigFromFlags(cmd *cobra.Command) *BrandCheckConfig {
	config := NewBrandCheckConfig()
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	return config
}
