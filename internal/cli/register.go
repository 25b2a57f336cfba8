package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/sccse-chat/internal/apperr"
	"github.com/raphaelgruber/sccse-chat/internal/auth"
	"github.com/spf13/cobra"
)

var (
	registerNameFlag     string
	registerEmailFlag    string
	registerPasswordFlag string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Create an account on the chat server.

Without flags on a terminal, the interactive registration form opens.
Registering does not log you in.

Examples:
  sccse register
  sccse register --name "Ana Lima" --email ana@example.com --password s3cret`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerNameFlag, "name", "", "full name")
	registerCmd.Flags().StringVar(&registerEmailFlag, "email", "", "email address")
	registerCmd.Flags().StringVar(&registerPasswordFlag, "password", "", "password")
}

// registerInteractive reports whether register should open the form.
func registerInteractive(cmd *cobra.Command) bool {
	f := cmd.Flags()
	return !f.Changed("name") && !f.Changed("email") && !f.Changed("password") && isInteractive()
}

func runRegister(cmd *cobra.Command, args []string) error {
	if registerInteractive(cmd) {
		return runApp(newAppDeps(), routeRegister)
	}

	msg, err := flow.Register(context.Background(), auth.RegisterForm{
		Name:     registerNameFlag,
		Email:    registerEmailFlag,
		Password: registerPasswordFlag,
	})
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "❌ "+apperr.Message(err, auth.RegisterFailedMessage))
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✅ "+msg)
	return nil
}
