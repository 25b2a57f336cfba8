// Package cli provides the command-line interface for sccse.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/raphaelgruber/sccse-chat/internal/auth"
	"github.com/raphaelgruber/sccse-chat/internal/client"
	"github.com/raphaelgruber/sccse-chat/internal/config"
	"github.com/raphaelgruber/sccse-chat/internal/metrics"
	"github.com/raphaelgruber/sccse-chat/internal/session"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and services
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	sessions   session.Store
	apiClient  *client.Client
	flow       *auth.Flow
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sccse",
	Short: "SCCSE chatbot client",
	Long: `sccse is a terminal client for the SCCSE chatbot.

Create an account, log in, and chat with the bot either interactively
or one message at a time. The login session lasts until you log out
or your OS session ends.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}

		// The interactive app owns the terminal, so it logs to the file only.
		var console io.Writer
		if verbose && !opensApp(cmd) {
			console = os.Stderr
		}
		logger, logCleanup = config.SetupLogger(console, cfg.LogFile, level)
		slog.SetDefault(logger)

		store := session.NewFileStore(cfg.SessionFile)
		sessions = store
		apiClient = client.New(cfg.ServerURL, cfg.ClientTimeout, logger)
		flow = auth.NewFlow(apiClient, sessions, logger)

		logger.Debug("client configured", "command", cmd.Name(), "endpoint", apiClient.Endpoint(), "session_file", store.Path())
		return nil
	},
}

// opensApp reports whether cmd will run the interactive app.
func opensApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "chat":
		return true
	case "login":
		return loginInteractive(cmd)
	case "register":
		return registerInteractive(cmd)
	default:
		return false
	}
}

// newAppDeps wires the interactive app to the global services.
func newAppDeps() appDeps {
	return appDeps{
		flow:           flow,
		sessions:       sessions,
		replier:        apiClient,
		logger:         logger,
		serializeSends: cfg.SerializeSends,
		markdown:       newMarkdownRenderer(cfg.MarkdownStyle, defaultWrapWidth),
		metrics:        metrics.NewCollector(),
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer closeLog()
	return rootCmd.Execute()
}

// closeLog closes the log file opened by PersistentPreRunE. Cobra skips
// post-run hooks when a command fails, so this runs from Execute.
func closeLog() {
	if logCleanup == nil {
		return
	}
	if err := logCleanup(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
	}
	logCleanup = nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(statusCmd)
}
