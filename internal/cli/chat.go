package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raphaelgruber/sccse-chat/internal/chat"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat",
	Long: `Open the interactive chat. If no one is logged in, the login form
is shown first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(newAppDeps(), routeChat)
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send one message and print the reply",
	Long: `Send one message to the bot and print its reply.

Examples:
  sccse send "When is the next CSE meetup?"
  sccse send What are the opening hours`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the chat server is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := apiClient.Ping(context.Background())
		if err != nil {
			return fmt.Errorf("server %s: %w", apiClient.Endpoint(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", apiClient.Endpoint(), msg)
		return nil
	},
}

func runSend(cmd *cobra.Command, args []string) error {
	s, err := sessions.Get()
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if !s.Authenticated() {
		return errors.New(loginRequiredNotice + " Run 'sccse login' first.")
	}

	d := chat.NewDispatcher(chat.NewConversation(), sessions, apiClient, chat.WithLogger(logger))
	entry, err := d.Send(context.Background(), strings.Join(args, " "))
	if errors.Is(err, chat.ErrEmptyInput) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), newMarkdownRenderer(cfg.MarkdownStyle, defaultWrapWidth).render(entry.Text))
	return nil
}
