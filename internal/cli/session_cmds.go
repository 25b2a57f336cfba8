package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := flow.Logout(); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := sessions.Get()
		if err != nil {
			return fmt.Errorf("read session: %w", err)
		}
		if !s.Authenticated() {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return nil
		}
		if s.DisplayName == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "User ID: %s\n", s.UserID)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (user ID: %s)\n", s.DisplayName, s.UserID)
		return nil
	},
}
