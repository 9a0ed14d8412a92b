package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var _enrollCmdOpts struct {
	phoneID int
}

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Validate this device with an SMS code so it can log in",
	Long: `Validate this device with an SMS code so it can log in.

The API refuses logins from devices it has not seen before.  Enroll asks
the vendor to SMS a one-time code to a phone registered on the account,
reads the code from stdin and confirms the device.  Persist the
device-id, device-uuid and indigitall-id settings afterwards, the
enrollment is bound to them.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return doEnroll(cmd.Context())
	},

	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkRequiredFlags("securitas.username", "securitas.password", "securitas.country")
	},
}

func init() {
	enrollCmd.Flags().IntVar(&_enrollCmdOpts.phoneID, "phone", -1, "id of the phone to send the code to (prompted when unset)")

	rootCmd.AddCommand(enrollCmd)
}

func doEnroll(ctx context.Context) error {
	client, err := newAlarmClient()
	if err != nil {
		return err
	}

	hash, phones, err := client.ValidateDevice(ctx, false, "", "")
	if err != nil {
		return err
	}
	if hash == "" {
		fmt.Println("device is already validated")
		return nil
	}

	if len(phones) == 0 {
		return fmt.Errorf("no phones on the account are eligible for the SMS code")
	}

	reader := bufio.NewReader(os.Stdin)

	phoneID := _enrollCmdOpts.phoneID
	if phoneID < 0 {
		for _, p := range phones {
			fmt.Printf("  %d: %s\n", p.ID, p.Phone)
		}
		fmt.Print("send the code to phone id: ")

		var id int
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		if _, err := fmt.Sscanf(strings.TrimSpace(line), "%d", &id); err != nil {
			return fmt.Errorf("not a phone id: %q", strings.TrimSpace(line))
		}
		phoneID = id
	}

	if err := client.SendOTP(ctx, phoneID, hash); err != nil {
		return err
	}

	fmt.Print("code received by SMS: ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	code := strings.TrimSpace(line)

	if _, _, err := client.ValidateDevice(ctx, true, hash, code); err != nil {
		return err
	}

	fmt.Println("device validated")
	return nil
}
