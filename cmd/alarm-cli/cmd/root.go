package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/api/rpc"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// socketPath overrides the daemon control socket location.
	socketPath string

	// rootCmd represents the base command for controlling the alarm daemon.
	rootCmd = &cobra.Command{
		Use:   "alarm-cli",
		Short: "Control the alarm daemon.",
		Long: `Manages alarms over the daemon's control socket.

Alarms are created, edited, enabled, and removed through subcommands; snooze
and dismiss act on the alarm that is currently ringing. The daemon must be
running for any command to succeed.`,
	}
)

// Execute runs the alarm-cli and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup persistent flags shared by every subcommand.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&socketPath, "socket", "s", "", "path to the daemon control socket")
}

// withClient dials the daemon and runs fn with a signal-aware context.
func withClient(fn func(ctx context.Context, client *rpc.Client) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	socket := socketPath
	if socket == "" {
		settings, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}

		socket = settings.SocketPath
	}

	client, err := rpc.Dial(socket, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	return fn(ctx, client)
}

// printAlarm renders one alarm as a detail block.
func printAlarm(a *domain.Alarm) {
	state := "off"
	if a.Enabled {
		state = "on"
	}

	fmt.Printf("%s  %02d:%02d  [%s]  %s (%s)\n", a.ID, a.Hour, a.Minute, state, a.Label, describeRepeat(a))

	if a.SnoozedUntil != nil {
		fmt.Printf("    snoozed until %s\n", a.SnoozedUntil.Format("15:04:05"))
	}
}

// describeRepeat renders the recurrence in a human-readable form.
func describeRepeat(a *domain.Alarm) string {
	switch a.Repeat {
	case domain.RepeatDaily:
		return "daily"
	case domain.RepeatCustom:
		days := a.Weekdays.Days()
		names := make([]string, 0, len(days))

		for _, d := range days {
			names = append(names, d.String()[:3])
		}

		return strings.Join(names, ",")
	default:
		return "once"
	}
}
