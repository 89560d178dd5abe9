package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"fredcat/pkg/ui"
)

var (
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	notifications bool
	quiet         bool
)

var rootCmd = &cobra.Command{
	Use:   "fredcat",
	Short: "Crawl the FRED category tree level by level",
	Long: `fredcat walks the FRED (Federal Reserve Economic Data) category tree
breadth-first from the root category and saves every level to disk.

Features:
  - One API call every two seconds by default
  - Each level is a checkpoint; interrupted runs resume where they stopped
  - CSV or Parquet output
  - API key kept in the system keychain or an encrypted file`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			return
		}
		switch cmd.Name() {
		case "fetch", "status":
			ui.PrintLogo()
		}
	},
}

// Execute runs the root command and exits 1 on any error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default searches .fredcat.yaml and ~/.config/fredcat/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", false, "send a desktop notification when a crawl ends")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only print level summaries and errors")

	rootCmd.SetVersionTemplate(`fredcat {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
