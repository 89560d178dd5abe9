package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fredcat/pkg/auth"
	"fredcat/pkg/config"
	"fredcat/pkg/logger"
	"fredcat/pkg/ui"
)

const exampleConfig = `# fredcat configuration
#
# Every value can also be set through the environment, e.g.
# FREDCAT_OUTPUT_DIR, FREDCAT_MAX_DEPTH, FREDCAT_ROOT_IDS=0,32991.
# Keep the API key out of this file: use FRED_API_KEY or 'fredcat auth set-key'.

api:
  base_url: "https://api.stlouisfed.org/fred"
  # per-request timeout
  timeout: 30s

rate_limit:
  # calls per period, for the whole process
  calls: 1
  period: 2s
  # window (sliding window) or leaky (evenly spaced)
  strategy: window

output:
  directory: "./saved_categories"
  # csv or parquet
  format: csv
  # one file per level; must contain exactly one %d
  file_pattern: "fetched_level_%d"
  # write every level into one more file at the end (empty: disabled)
  aggregate_file: ""

traversal:
  max_depth: 10
  root_ids: ["0"]

logging:
  # debug, info, warn, error
  level: info
  file: ""
`

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage fredcat configuration.

Values are taken from, highest priority first:
  - --log-level
  - environment variables (FREDCAT_*, FRED_API_KEY), including .env files
  - the configuration file
  - defaults`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example configuration file",
	Long: `Write an example configuration file listing every option.

The file goes to --config when given, otherwise ~/.config/fredcat/config.yaml.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and API key resolution",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var forceInit bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configValidateCmd)
	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Fprintln(ui.Output, "\nNext steps:")
	fmt.Fprintln(ui.Output, "1. Store your API key with 'fredcat auth set-key'")
	fmt.Fprintln(ui.Output, "2. Check the setup with 'fredcat config validate'")
	fmt.Fprintln(ui.Output, "3. Start crawling with 'fredcat fetch'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, config.Overrides{LogLevel: logLevel})
	if err != nil {
		return err
	}

	display := *cfg
	if display.API.Key != "" {
		display.API.Key = auth.MaskKey(display.API.Key)
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Effective configuration")
	fmt.Fprintln(ui.Output)
	fmt.Fprint(ui.Output, string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		ui.PrintInfo("Validating", configFile)
	}

	cfg, err := config.Load(configFile, config.Overrides{LogLevel: logLevel})
	if err != nil {
		ui.PrintError("Configuration is invalid")
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				fmt.Fprintf(ui.Output, "  • %s\n", strings.TrimSpace(e.Error()))
			}
		}
		return err
	}
	ui.PrintSuccess("Configuration is valid")

	if err := resolveAPIKey(cfg, logger.NewNopLogger()); err != nil {
		ui.PrintWarning("No API key found", err)
		return nil
	}
	ui.PrintInfo("API key", auth.MaskKey(cfg.API.Key))
	return nil
}
