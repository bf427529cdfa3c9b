package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/vidgrab/internal/app"
	"github.com/yourusername/vidgrab/internal/domain"
	"github.com/yourusername/vidgrab/pkg/logger"
)

// Exit codes besides 0 and 1
const (
	exitCancelled = 130
)

var (
	configPath  string
	serverURL   string
	noAutoStart bool
	verbose     bool
	rootCmd     = &cobra.Command{
		Use:   "vidgrab",
		Short: "vidgrab - drive yt-dlp downloads with live progress",
		Long: `A command-line front end for yt-dlp. Downloads run locally by default;
the runs commands and --remote talk to a vidgrab-server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default searches ./configs, ~/.vidgrab, /etc/vidgrab)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server URL (default from config)")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(runsCmd)
}

// exitError carries a process exit code out of a command
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// exitCodeFor maps a finished run to the CLI's exit status
func exitCodeFor(outcome domain.RunOutcome) int {
	switch outcome.Kind {
	case domain.OutcomeSucceeded:
		return 0
	case domain.OutcomeCancelled:
		return exitCancelled
	default:
		return 1
	}
}

func loadConfig() (*domain.Config, error) {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return config, nil
}

func newLogger() *zap.Logger {
	return logger.NewCLI(verbose)
}

// resolveServerURL prefers --server over the configured address
func resolveServerURL(config *domain.Config) string {
	if serverURL != "" {
		return serverURL
	}
	return fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)
}

// connect returns a client for the server, starting it unless
// --no-auto-start was given
func connect() (*apiClient, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}
	baseURL := resolveServerURL(config)
	if !noAutoStart {
		if err := ensureServerRunning(baseURL); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	return newAPIClient(baseURL), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
