package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/api/rpc"
)

// weekdayAliases maps the short names accepted by --days to weekday numbers.
var weekdayAliases = map[string]int{
	"sun": 0,
	"mon": 1,
	"tue": 2,
	"wed": 3,
	"thu": 4,
	"fri": 5,
	"sat": 6,
}

// alarmFlags collects the editable alarm fields shared by add and update.
type alarmFlags struct {
	label     string
	repeat    string
	days      string
	sound     string
	soundFile string
	snooze    int
	vibrate   bool
	gradual   bool
	disabled  bool
}

// register attaches the shared flags to a command.
func (f *alarmFlags) register(c *cobra.Command) {
	c.Flags().StringVarP(&f.label, "label", "l", "", "display label shown while ringing")
	c.Flags().StringVarP(&f.repeat, "repeat", "r", "once", "recurrence mode (once, daily, custom)")
	c.Flags().StringVarP(&f.days, "days", "d", "", "comma-separated weekdays for custom repeat (mon,tue,...)")
	c.Flags().StringVar(&f.sound, "sound", "default", "sound pattern (default, gentle, radar, bell)")
	c.Flags().StringVar(&f.soundFile, "sound-file", "", "path to a WAV file to ring with")
	c.Flags().IntVar(&f.snooze, "snooze", 0, "snooze duration in minutes")
	c.Flags().BoolVar(&f.vibrate, "vibrate", false, "vibrate while ringing")
	c.Flags().BoolVar(&f.gradual, "gradual", false, "ramp the volume up gradually")
	c.Flags().BoolVar(&f.disabled, "disabled", false, "create the alarm switched off")
}

// toParams converts the parsed flags and the positional time into RPC params.
func (f *alarmFlags) toParams(timeArg string) (*rpc.AlarmParams, error) {
	hour, minute, err := parseClock(timeArg)
	if err != nil {
		return nil, err
	}

	days, err := parseDays(f.days)
	if err != nil {
		return nil, err
	}

	params := &rpc.AlarmParams{
		Hour:          hour,
		Minute:        minute,
		Label:         f.label,
		Enabled:       !f.disabled,
		Repeat:        f.repeat,
		Weekdays:      days,
		Sound:         f.sound,
		SnoozeMinutes: f.snooze,
		Vibration:     f.vibrate,
		GradualVolume: f.gradual,
	}

	if f.soundFile != "" {
		payload, err := os.ReadFile(f.soundFile)
		if err != nil {
			return nil, fmt.Errorf("read sound file: %w", err)
		}

		params.Sound = "custom"
		params.CustomSound = payload
	}

	return params, nil
}

// parseClock splits an "HH:MM" argument into its components.
func parseClock(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q out of range", s)
	}

	return hour, minute, nil
}

// parseDays converts "mon,tue" into weekday numbers.
func parseDays(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}

	var days []int

	for _, part := range strings.Split(s, ",") {
		day, ok := weekdayAliases[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}

		days = append(days, day)
	}

	return days, nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	addFlags := &alarmFlags{}
	addCmd := &cobra.Command{
		Use:   "add HH:MM",
		Short: "Create an alarm.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			params, err := addFlags.toParams(args[0])
			if err != nil {
				return err
			}

			return withClient(func(ctx context.Context, client *rpc.Client) error {
				a, err := client.Add(ctx, params)
				if err != nil {
					return err
				}

				printAlarm(a)

				return nil
			})
		},
	}
	addFlags.register(addCmd)

	updateFlags := &alarmFlags{}
	updateCmd := &cobra.Command{
		Use:   "update ID HH:MM",
		Short: "Replace an alarm's schedule and settings.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			params, err := updateFlags.toParams(args[1])
			if err != nil {
				return err
			}

			return withClient(func(ctx context.Context, client *rpc.Client) error {
				a, err := client.Update(ctx, &rpc.UpdateParams{ID: args[0], AlarmParams: *params})
				if err != nil {
					return err
				}

				printAlarm(a)

				return nil
			})
		},
	}
	updateFlags.register(updateCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all alarms.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withClient(func(ctx context.Context, client *rpc.Client) error {
				collection, err := client.List(ctx)
				if err != nil {
					return err
				}

				if len(collection) == 0 {
					fmt.Println("no alarms")

					return nil
				}

				for _, a := range collection {
					printAlarm(a)
				}

				return nil
			})
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Delete an alarm.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *rpc.Client) error {
				return client.Remove(ctx, args[0])
			})
		},
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle ID (on|off)",
		Short: "Enable or disable an alarm.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			var enabled bool

			switch args[1] {
			case "on":
				enabled = true
			case "off":
				enabled = false
			default:
				return fmt.Errorf("invalid state %q, expected on or off", args[1])
			}

			return withClient(func(ctx context.Context, client *rpc.Client) error {
				a, err := client.Toggle(ctx, args[0], enabled)
				if err != nil {
					return err
				}

				printAlarm(a)

				return nil
			})
		},
	}

	rootCmd.AddCommand(addCmd, updateCmd, listCmd, removeCmd, toggleCmd)
}
