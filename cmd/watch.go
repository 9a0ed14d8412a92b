package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/korovkin/limiter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/securitas-community/securitas-bridge/internal/pkg/logging"
	"github.com/securitas-community/securitas-bridge/internal/pkg/securitas"
)

var _watchCmdOpts struct {
	interval      time.Duration
	maxConcurrent int
	sentinel      bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Periodically poll every installation and log its state",

	RunE: func(cmd *cobra.Command, args []string) error {
		if err := doWatch(); err != nil {
			return err
		}

		return nil
	},

	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkRequiredFlags("securitas.username", "securitas.password", "securitas.country")
	},
}

func init() {
	watchCmd.Flags().DurationVar(&_watchCmdOpts.interval, "interval", time.Minute*5, "time between status sweeps, eg. 5m or 30s")
	watchCmd.Flags().IntVar(&_watchCmdOpts.maxConcurrent, "max-concurrent", 3, "maximum installations checked at once")
	watchCmd.Flags().BoolVar(&_watchCmdOpts.sentinel, "sentinel", false, "also read sentinel temperature/humidity services")

	errPanic(viper.GetViper().BindPFlag("watch.interval", watchCmd.Flags().Lookup("interval")))
	errPanic(viper.GetViper().BindPFlag("watch.max-concurrent", watchCmd.Flags().Lookup("max-concurrent")))
	errPanic(viper.GetViper().BindPFlag("watch.sentinel", watchCmd.Flags().Lookup("sentinel")))

	rootCmd.AddCommand(watchCmd)
}

func sweepLoop(ctx context.Context, client *securitas.Client, interval time.Duration, c chan securitas.Installation) {
	defer close(c)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		logging.Logger(nil).Debug("sweep-loop: listing installations")
		installations, err := client.ListInstallations(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logging.Logger(nil).Info("sweep-loop: shutting down")
				return
			}

			logging.Logger(nil).WithError(err).Error("sweep-loop: listing installations")
		}

		for _, inst := range installations {
			// Catch shutdown and don't block waiting for a checker if they are busy
			select {
			case <-ctx.Done():
				logging.Logger(nil).Info("sweep-loop: shutting down")
				return
			case c <- inst:
			}
		}

		select {
		case <-ctx.Done():
			logging.Logger(nil).Info("sweep-loop: shutting down")
			return
		case <-ticker.C:
		}
	}
}

func checkLoop(ctx context.Context, maxConcurrent int, client *securitas.Client, c chan securitas.Installation) {
	limit := limiter.NewConcurrencyLimiter(maxConcurrent)

	for inst := range c {
		inst := inst
		limit.ExecuteWithTicket(func(ticket int) {
			checkInstallation(ctx, ticket, client, inst)
		})
	}

	logging.Logger(nil).Info("check-loop: shutting down")
	limit.WaitAndClose()
	logging.Logger(nil).Info("check-loop: done")
}

func checkInstallation(ctx context.Context, ticket int, client *securitas.Client, inst securitas.Installation) {
	logging.Logger(nil).Debugf("check-goroutine %d: installation %s", ticket, inst.Number)

	status, err := client.CheckGeneralStatus(ctx, &inst)
	if err != nil {
		logging.Logger(nil).WithError(err).Errorf("checking installation %s", inst.Number)
		return
	}

	entry := logging.Logger(nil).WithFields(map[string]interface{}{
		"installation": inst.Number,
		"alias":        inst.Alias,
		"status":       status.Status,
		"statusDate":   status.TimestampUpdate,
	})

	if viper.GetBool("watch.sentinel") {
		services, err := client.GetAllServices(ctx, &inst)
		if err != nil {
			logging.Logger(nil).WithError(err).Errorf("listing services for installation %s", inst.Number)
		} else {
			for _, svc := range services {
				if !svc.Active {
					continue
				}

				sentinel, err := client.GetSentinelData(ctx, &inst, svc)
				if err != nil {
					continue
				}

				entry = entry.WithFields(map[string]interface{}{
					"temperature": sentinel.Temperature,
					"humidity":    sentinel.Humidity,
				})
				break
			}
		}
	}

	entry.Info("installation state")
	logging.Logger(nil).Debugf("check-goroutine %d: done", ticket)
}

func doWatch() error {
	interval := viper.GetDuration("watch.interval")
	maxConcurrent := viper.GetInt("watch.max-concurrent")

	client, err := newAlarmClient()
	if err != nil {
		return err
	}

	// context to allow us to stop the sweep loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	// comms between sweep and check loops
	instChan := make(chan securitas.Installation)

	wg.Add(1)
	go func() {
		defer wg.Done()
		checkLoop(ctx, maxConcurrent, client, instChan)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sweepLoop(ctx, client, interval, instChan)
	}()

	// ctrl-c handler
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	// Block until we receive a signal
	<-c
	logging.Logger(nil).Info("main: shutting down")

	cancel()
	wg.Wait()

	logging.Logger(nil).Info("main: exiting")
	return nil
}
