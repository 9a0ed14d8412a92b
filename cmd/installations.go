package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/securitas-community/securitas-bridge/internal/pkg/securitas"
)

var installationsCmd = &cobra.Command{
	Use:   "installations",
	Short: "List the alarm installations on the account",

	RunE: func(cmd *cobra.Command, args []string) error {
		return doInstallations(cmd.Context())
	},

	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkRequiredFlags("securitas.username", "securitas.password", "securitas.country")
	},
}

var servicesCmd = &cobra.Command{
	Use:   "services <numinst>",
	Short: "List the services available on an installation",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doServices(cmd.Context(), args[0])
	},

	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkRequiredFlags("securitas.username", "securitas.password", "securitas.country")
	},
}

func init() {
	rootCmd.AddCommand(installationsCmd)
	rootCmd.AddCommand(servicesCmd)
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}

	fmt.Println(string(b))
	return nil
}

func doInstallations(ctx context.Context) error {
	client, err := newAlarmClient()
	if err != nil {
		return err
	}

	installations, err := client.ListInstallations(ctx)
	if err != nil {
		return err
	}

	return printJSON(installations)
}

func findInstallation(ctx context.Context, client *securitas.Client, numinst string) (*securitas.Installation, error) {
	installations, err := client.ListInstallations(ctx)
	if err != nil {
		return nil, err
	}

	for i := range installations {
		if installations[i].Number == numinst {
			return &installations[i], nil
		}
	}

	return nil, fmt.Errorf("installation %s not found on this account", numinst)
}

func doServices(ctx context.Context, numinst string) error {
	client, err := newAlarmClient()
	if err != nil {
		return err
	}

	inst, err := findInstallation(ctx, client, numinst)
	if err != nil {
		return err
	}

	services, err := client.GetAllServices(ctx, inst)
	if err != nil {
		return err
	}

	return printJSON(services)
}
