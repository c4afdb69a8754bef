// File: cmd/profile.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sipb/gosapweb/internal/browser"
	"github.com/sipb/gosapweb/internal/observability"
)

// newProfileCmd groups the browser profile management commands.
func newProfileCmd() *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the persistent authenticated browser profile",
	}
	profileCmd.AddCommand(newProfileSetupCmd(), newProfileStatusCmd())
	return profileCmd
}

func newProfileSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactively log in once and persist the browser profile",
		Long: `Setup opens a visible browser window on the institutional
certificate page. Log in there (certificate or Touchstone), then return to
the terminal and press ENTER. The resulting profile directory holds the
authenticated state every later run reuses.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			store := browser.NewProfileStore(cfg, logger)
			return store.Bootstrap(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func newProfileStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the browser profile is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := browser.NewProfileStore(cfg, observability.GetLogger())
			configured, err := store.Configured()
			if err != nil {
				return err
			}
			if !configured {
				fmt.Fprintf(cmd.OutOrStdout(), "profile at %s is not configured; run `gosapweb profile setup`\n", store.Dir())
				return browser.ErrProfileNotConfigured
			}
			fmt.Fprintf(cmd.OutOrStdout(), "profile at %s is configured\n", store.Dir())
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newProfileCmd())
}
