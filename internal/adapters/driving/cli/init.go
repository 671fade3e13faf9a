package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/newsdesk/internal/adapters/driven/config/file"
	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file and query pool",
	Long: `Creates config.toml with every default and queries.yaml with the built-in
query pool. Existing files are left untouched.

With --credentials the upstream sign-in and Telegram token are asked for
interactively. Secrets can also be supplied through environment variables:
  NEWSDESK_UPSTREAM_EMAIL, NEWSDESK_UPSTREAM_PASSWORD, NEWSDESK_TELEGRAM_TOKEN`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("credentials", false, "prompt for upstream and Telegram credentials")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	ask, err := cmd.Flags().GetBool("credentials")
	if err != nil {
		return fmt.Errorf("getting credentials flag: %w", err)
	}

	store, err := settingsStore()
	if err != nil {
		return err
	}

	poolPath := filepath.Join(filepath.Dir(store.Path()), "queries.yaml")
	if written, err := file.WriteDefaultPool(poolPath); err != nil {
		return fmt.Errorf("writing query pool: %w", err)
	} else if written {
		cmd.Printf("Wrote %s\n", poolPath)
	} else {
		cmd.Printf("Kept existing %s\n", poolPath)
	}

	if _, err := os.Stat(store.Path()); err == nil && !ask {
		cmd.Printf("Kept existing %s\n", store.Path())
		return nil
	}

	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if settings.QueryPoolPath == "" {
		settings.QueryPoolPath = poolPath
	}

	if ask {
		if err := promptCredentials(cmd, &settings); err != nil {
			return err
		}
	}

	if err := store.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	cmd.Printf("Wrote %s\n", store.Path())
	return nil
}

func settingsStore() (*file.SettingsStore, error) {
	if configPath != "" {
		return file.NewSettingsStoreAt(configPath), nil
	}
	return file.NewSettingsStore("")
}

func promptCredentials(cmd *cobra.Command, s *domain.Settings) error {
	reader := bufio.NewReader(cmd.InOrStdin())

	email, err := promptLine(cmd, reader, "Upstream email")
	if err != nil {
		return err
	}
	if email != "" {
		s.Upstream.Credentials.Email = email
	}

	password, err := promptSecret(cmd, reader, "Upstream password")
	if err != nil {
		return err
	}
	if password != "" {
		s.Upstream.Credentials.Password = password
	}

	token, err := promptSecret(cmd, reader, "Telegram bot token")
	if err != nil {
		return err
	}
	if token != "" {
		s.Telegram.Token = token
	}
	return nil
}

func promptLine(cmd *cobra.Command, reader *bufio.Reader, label string) (string, error) {
	cmd.Printf("%s: ", label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", nil
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo when stdin is a terminal.
func promptSecret(cmd *cobra.Command, reader *bufio.Reader, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if cmd.InOrStdin() != os.Stdin || !term.IsTerminal(fd) {
		return promptLine(cmd, reader, label)
	}

	cmd.Printf("%s: ", label)
	secret, err := term.ReadPassword(fd)
	cmd.Println()
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(string(secret)), nil
}
