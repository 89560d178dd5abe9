package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"fredcat/pkg/auth"
	"fredcat/pkg/config"
	"fredcat/pkg/fred"
	"fredcat/pkg/logger"
	"fredcat/pkg/ui"
)

var (
	authProfile string
	verifyKey   bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored FRED API key",
	Long: `Manage the FRED API key used by fetch.

The key is stored in:
  - the system keychain (when available)
  - an encrypted file with PBKDF2 key derivation otherwise

FREDCAT_API_KEY / FRED_API_KEY and api.key in the config file take precedence
over the stored key.`,
}

var setKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store a FRED API key",
	Long: `Store a FRED API key. The key is read from the terminal without echo.

Request a key at https://fredaccount.stlouisfed.org/apikeys (free, requires
a FRED account). Keys are 32 lowercase hexadecimal characters.`,
	Example: `  fredcat auth set-key
  fredcat auth set-key --verify
  echo "$KEY" | fredcat auth set-key`,
	Args: cobra.NoArgs,
	RunE: runSetKey,
}

var showKeyCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored key, masked",
	Args:  cobra.NoArgs,
	RunE:  runShowKey,
}

var removeKeyCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the stored key",
	Args:  cobra.NoArgs,
	RunE:  runRemoveKey,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(setKeyCmd, showKeyCmd, removeKeyCmd)

	authCmd.PersistentFlags().StringVar(&authProfile, "profile", auth.DefaultProfile, "name the key is stored under")
	setKeyCmd.Flags().BoolVar(&verifyKey, "verify", false, "make one category/children call to check the key before storing it")
}

func runSetKey(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	fmt.Fprint(ui.Output, "FRED API key: ")
	key, err := readSecret()
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}
	if key == "" {
		return auth.ErrInvalidKey
	}
	if !looksLikeFREDKey(key) {
		ui.PrintWarning("That does not look like a FRED key (32 lowercase hex characters); storing it anyway")
	}

	if verifyKey {
		cfg := config.DefaultConfig()
		if loaded, err := config.Load(configFile, config.Overrides{LogLevel: logLevel}); err == nil {
			cfg = loaded
		}
		if err := checkKey(cmd.Context(), cfg, key); err != nil {
			return fmt.Errorf("key rejected: %w", err)
		}
		ui.PrintSuccess("Key accepted by the FRED API")
	}

	where, err := manager.Store(&auth.APIKey{Profile: authProfile, Key: key})
	if err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Key for profile %q stored in %s", authProfile, where))
	return nil
}

func runShowKey(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	key, source, err := manager.Retrieve(authProfile)
	if err != nil {
		if errors.Is(err, auth.ErrKeyNotFound) {
			ui.PrintWarning("No key stored. Run 'fredcat auth set-key'")
			return nil
		}
		return err
	}

	ui.PrintInfo("Profile", key.Profile)
	ui.PrintInfo("Key", auth.MaskKey(key.Key))
	ui.PrintInfo("Source", source)
	if !key.LastModified.IsZero() {
		ui.PrintInfo("Stored", key.LastModified.Format(time.RFC1123))
	}
	return nil
}

func runRemoveKey(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}
	if err := manager.Delete(authProfile); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Key for profile %q removed", authProfile))
	return nil
}

// readSecret reads a line from stdin without echo when stdin is a terminal
func readSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(ui.Output)
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	input, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func looksLikeFREDKey(key string) bool {
	if len(key) != 32 {
		return false
	}
	for _, r := range key {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}

// checkKey asks for the root category's children with key, going through
// the same client and rate limit a crawl with cfg would use.
func checkKey(ctx context.Context, cfg *config.Config, key string) error {
	checked := *cfg
	checked.API.Key = key

	client, err := newClient(&checked, logger.NewNopLogger())
	if err != nil {
		return err
	}
	_, err = client.FetchChildren(ctx, fred.RootCategoryID)
	return err
}
