// Command eventstream sends, replays, and inspects events in an event log.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/eventstream/pkg/eventstream/config"
)

var (
	// Global flags
	configPath  string
	backend     string
	logPath     string
	metricsAddr string

	// Set up by PersistentPreRunE for every subcommand
	current *app
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run executes one command line and releases whatever it opened, even when
// the command fails.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootCmd := newRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, closeApp())
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "eventstream",
		Short: "Send, replay, and inspect persisted events",
		Long: `eventstream works against an append-only event log.
Settings come from built-in defaults, an optional YAML or JSON file (--config),
EVENTSTREAM_* environment variables, and finally command line flags.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initializeApp,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (.yaml, .yml, or .json)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Log backend: file, sqlite, redis, or memory")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Log file or database path")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the command runs")

	rootCmd.AddCommand(newSendCommand())
	rootCmd.AddCommand(newReplayCommand())
	rootCmd.AddCommand(newDumpCommand())

	return rootCmd
}

// initializeApp loads settings and opens the log for the running subcommand.
func initializeApp(cmd *cobra.Command, args []string) error {
	// Skip initialization for help commands
	if cmd.Name() == "help" || cmd.Parent() == nil {
		return nil
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	current, err = newApp(cmd.Context(), s, cmd.ErrOrStderr())
	return err
}

func closeApp() error {
	if current == nil {
		return nil
	}
	err := current.Close()
	current = nil
	return err
}

// loadSettings layers explicitly set flags over file and environment settings.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	s, err := config.LoadSettings(configPath)
	if err != nil {
		return config.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		s.Backend = backend
	}
	if flags.Changed("log") {
		s.Path = logPath
	}
	if flags.Changed("metrics-addr") {
		s.MetricsAddr = metricsAddr
	}

	if err := s.Validate(); err != nil {
		return config.Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// requireApp returns the initialized app or an error if setup did not run.
func requireApp() (*app, error) {
	if current == nil {
		return nil, fmt.Errorf("event log not initialized")
	}
	return current, nil
}
