package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/daemon"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// socketPath overrides the control socket location.
	socketPath string
	// dataDir overrides the alarm database directory.
	dataDir string
	// logLevel overrides the configured log verbosity.
	logLevel string

	// rootCmd represents the base command for running the alarm daemon.
	rootCmd = &cobra.Command{
		Use:   "alarm-daemon",
		Short: "Run the alarm scheduling daemon.",
		Long: `Starts the alarm daemon that schedules, evaluates, and rings alarms.

The daemon polls every second while running and additionally evaluates on a
coarse cron schedule, so alarms still fire shortly after the process wakes
from a suspend. Alarms are persisted locally and survive restarts. A JSON-RPC
control endpoint is served on a unix socket for the alarm-cli client.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return daemon.Run(ctx, &daemon.Options{
				ConfigPath: configPath,
				SocketPath: socketPath,
				DataDir:    dataDir,
				LogLevel:   logLevel,
			})
		},
	}
)

// Execute runs the alarm-daemon CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&socketPath, "socket", "s", "", "path to the control socket")
	rootCmd.Flags().StringVarP(&dataDir, "data-dir", "d", "", "path to the alarm database directory")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level (debug, info, warn, error, fatal)")
}
