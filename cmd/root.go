package cmd

import (
	"fmt"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/securitas-community/securitas-bridge/internal/pkg/logging"
	"github.com/securitas-community/securitas-bridge/internal/pkg/securitas"
)

var _rootCmdOpts struct {
	cfgFile string
	debug   bool
}

var rootCmd = &cobra.Command{
	Use:   "securitas-bridge",
	Short: "Bridge a home automation hub to the Securitas Direct cloud",

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Configure(viper.GetViper())
	},
}

// Execute runs the selected command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&_rootCmdOpts.cfgFile, "config", "", "config file (default is $HOME/.securitas-bridge.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("username", "", "Securitas Direct account user name")
	rootCmd.PersistentFlags().String("password", "", "Securitas Direct account password")
	rootCmd.PersistentFlags().String("country", "", "two letter country code of the account, eg. ES or GB")
	rootCmd.PersistentFlags().String("command-set", "std", "state-to-command table: std, or peri for installations with perimetral sensors")
	rootCmd.PersistentFlags().Duration("poll-delay", 0, "pause between operation status polls, eg. 2s")
	rootCmd.PersistentFlags().String("device-id", "", "persisted device identifier (generated when empty)")
	rootCmd.PersistentFlags().String("device-uuid", "", "persisted device uuid (generated when empty)")
	rootCmd.PersistentFlags().String("indigitall-id", "", "persisted indigitall id (generated when empty)")

	errPanic(viper.GetViper().BindPFlag("logging.debug", rootCmd.PersistentFlags().Lookup("debug")))
	errPanic(viper.GetViper().BindPFlag("securitas.username", rootCmd.PersistentFlags().Lookup("username")))
	errPanic(viper.GetViper().BindPFlag("securitas.password", rootCmd.PersistentFlags().Lookup("password")))
	errPanic(viper.GetViper().BindPFlag("securitas.country", rootCmd.PersistentFlags().Lookup("country")))
	errPanic(viper.GetViper().BindPFlag("securitas.command-set", rootCmd.PersistentFlags().Lookup("command-set")))
	errPanic(viper.GetViper().BindPFlag("securitas.poll-delay", rootCmd.PersistentFlags().Lookup("poll-delay")))
	errPanic(viper.GetViper().BindPFlag("securitas.device-id", rootCmd.PersistentFlags().Lookup("device-id")))
	errPanic(viper.GetViper().BindPFlag("securitas.device-uuid", rootCmd.PersistentFlags().Lookup("device-uuid")))
	errPanic(viper.GetViper().BindPFlag("securitas.indigitall-id", rootCmd.PersistentFlags().Lookup("indigitall-id")))
}

func initConfig() {
	if _rootCmdOpts.cfgFile != "" {
		viper.SetConfigFile(_rootCmdOpts.cfgFile)
	} else {
		home, err := homedir.Dir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".securitas-bridge")
		}
	}

	viper.SetEnvPrefix("SECURITAS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logging.Logger(nil).Debugf("using config file %s", viper.ConfigFileUsed())
	}

	if viper.GetBool("logging.debug") {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

func errPanic(err error) {
	if err != nil {
		panic(err)
	}
}

func checkRequiredFlags(needFlags ...string) error {
	missingFlags := []string{}

	for _, f := range needFlags {
		if !viper.IsSet(f) || viper.GetString(f) == "" {
			missingFlags = append(missingFlags, f)
		}
	}

	if len(missingFlags) > 0 {
		itemPlural := "item"
		if len(missingFlags) > 1 {
			itemPlural = "items"
		}
		return fmt.Errorf("required config %s `%s` not set", itemPlural, strings.Join(missingFlags, "`, `"))
	}

	return nil
}

func newAlarmClient() (*securitas.Client, error) {
	commandSet := securitas.CommandSetStandard
	if viper.GetString("securitas.command-set") == "peri" {
		commandSet = securitas.CommandSetPerimeter
	}

	return securitas.NewClient(securitas.Config{
		Username:     viper.GetString("securitas.username"),
		Password:     viper.GetString("securitas.password"),
		Country:      viper.GetString("securitas.country"),
		CommandSet:   commandSet,
		PollDelay:    viper.GetDuration("securitas.poll-delay"),
		DeviceID:     viper.GetString("securitas.device-id"),
		UUID:         viper.GetString("securitas.device-uuid"),
		IndigitallID: viper.GetString("securitas.indigitall-id"),
	})
}
