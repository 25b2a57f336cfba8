package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/raphaelgruber/sccse-chat/internal/apperr"
	"github.com/raphaelgruber/sccse-chat/internal/auth"
	"github.com/spf13/cobra"
)

var (
	loginEmailFlag    string
	loginPasswordFlag string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and start a session",
	Long: `Log in to the chat server. The session is kept until you log out
or your OS session ends.

Without flags on a terminal, the interactive login form opens and moves to
the chat view on success. With --email but no --password, the password is
prompted for without echo.

Examples:
  sccse login
  sccse login --email ana@example.com`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmailFlag, "email", "", "email address")
	loginCmd.Flags().StringVar(&loginPasswordFlag, "password", "", "password (prompted if omitted)")
}

// loginInteractive reports whether login should open the form.
func loginInteractive(cmd *cobra.Command) bool {
	f := cmd.Flags()
	return !f.Changed("email") && !f.Changed("password") && isInteractive()
}

func runLogin(cmd *cobra.Command, args []string) error {
	if loginInteractive(cmd) {
		return runApp(newAppDeps(), routeLogin)
	}

	password := loginPasswordFlag
	if !cmd.Flags().Changed("password") {
		var err error
		password, err = promptPassword(os.Stdin, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}

	s, err := flow.Login(context.Background(), auth.LoginForm{
		Email:    loginEmailFlag,
		Password: password,
	})
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "❌ "+apperr.Message(err, auth.InvalidCredentialsMessage))
		return err
	}

	name := s.DisplayName
	if name == "" {
		name = s.UserID
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Logged in as %s\n", name)
	return nil
}
