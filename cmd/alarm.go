package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/securitas-community/securitas-bridge/internal/pkg/securitas"
)

var _alarmCmdOpts struct {
	mode             string
	operationTimeout time.Duration
}

var statusCmd = &cobra.Command{
	Use:   "status <numinst>",
	Short: "Run a fresh check of the panel state",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doStatus(cmd.Context(), args[0])
	},

	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkRequiredFlags("securitas.username", "securitas.password", "securitas.country")
	},
}

var armCmd = &cobra.Command{
	Use:   "arm <numinst>",
	Short: "Arm the panel",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doArm(cmd.Context(), args[0])
	},

	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkRequiredFlags("securitas.username", "securitas.password", "securitas.country")
	},
}

var disarmCmd = &cobra.Command{
	Use:   "disarm <numinst>",
	Short: "Disarm the panel",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doDisarm(cmd.Context(), args[0])
	},

	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkRequiredFlags("securitas.username", "securitas.password", "securitas.country")
	},
}

func init() {
	armCmd.Flags().StringVar(&_alarmCmdOpts.mode, "mode", "total_armed", "alarm state to arm into, eg. total_armed, night_armed, interior_partial")

	// Only one of the three commands runs per invocation, so the flag
	// can share a destination.
	for _, c := range []*cobra.Command{statusCmd, armCmd, disarmCmd} {
		c.Flags().DurationVar(&_alarmCmdOpts.operationTimeout, "operation-timeout", securitas.DefaultOperationTimeout, "budget for the polled operation, eg. 1m or 30s")
	}

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(armCmd)
	rootCmd.AddCommand(disarmCmd)
}

func doStatus(ctx context.Context, numinst string) error {
	client, err := newAlarmClient()
	if err != nil {
		return err
	}

	inst, err := findInstallation(ctx, client, numinst)
	if err != nil {
		return err
	}

	referenceID, err := client.CheckAlarm(ctx, inst)
	if err != nil {
		return err
	}

	status, err := client.CheckAlarmStatus(ctx, inst, referenceID, _alarmCmdOpts.operationTimeout)
	if err != nil {
		return err
	}

	return printJSON(status)
}

func doArm(ctx context.Context, numinst string) error {
	client, err := newAlarmClient()
	if err != nil {
		return err
	}

	state, err := securitas.ParseAlarmState(_alarmCmdOpts.mode)
	if err != nil {
		return err
	}

	inst, err := findInstallation(ctx, client, numinst)
	if err != nil {
		return err
	}

	status, err := client.ArmAlarm(ctx, inst, state, _alarmCmdOpts.operationTimeout)
	if err != nil {
		return err
	}

	return printJSON(status)
}

func doDisarm(ctx context.Context, numinst string) error {
	client, err := newAlarmClient()
	if err != nil {
		return err
	}

	inst, err := findInstallation(ctx, client, numinst)
	if err != nil {
		return err
	}

	status, err := client.DisarmAlarm(ctx, inst, _alarmCmdOpts.operationTimeout)
	if err != nil {
		return err
	}

	return printJSON(status)
}
