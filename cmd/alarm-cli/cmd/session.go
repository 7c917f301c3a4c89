package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/api/rpc"
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	snoozeCmd := &cobra.Command{
		Use:   "snooze",
		Short: "Postpone the ringing alarm.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withClient(func(ctx context.Context, client *rpc.Client) error {
				a, err := client.Snooze(ctx)
				if err != nil {
					return err
				}

				printAlarm(a)

				return nil
			})
		},
	}

	dismissCmd := &cobra.Command{
		Use:   "dismiss",
		Short: "Silence the ringing alarm.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withClient(func(ctx context.Context, client *rpc.Client) error {
				a, err := client.Dismiss(ctx)
				if err != nil {
					return err
				}

				printAlarm(a)

				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether an alarm is ringing.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withClient(func(ctx context.Context, client *rpc.Client) error {
				status, err := client.Status(ctx)
				if err != nil {
					return err
				}

				if !status.Ringing {
					fmt.Println("quiet")

					return nil
				}

				fmt.Printf("ringing: %s (%s) since %s\n",
					status.Label, status.AlarmID, status.StartedAt.Format("15:04:05"))

				return nil
			})
		},
	}

	pokeCmd := &cobra.Command{
		Use:   "poke",
		Short: "Request an immediate evaluation pass.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withClient(func(ctx context.Context, client *rpc.Client) error {
				res, err := client.Poke(ctx)
				if err != nil {
					return err
				}

				fmt.Printf("fired: %d\n", res.Fired)

				return nil
			})
		},
	}

	rootCmd.AddCommand(snoozeCmd, dismissCmd, statusCmd, pokeCmd)
}
