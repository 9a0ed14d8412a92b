package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/securitas-community/securitas-bridge/internal/pkg/httpapi"
	"github.com/securitas-community/securitas-bridge/internal/pkg/logging"
	"github.com/securitas-community/securitas-bridge/pkg/middlewares"
)

var _serveCmdOpts struct {
	httpPort         uint16
	tlsCertPath      string
	tlsKeyPath       string
	gracefulTimeout  time.Duration
	readTimeout      time.Duration
	writeTimeout     time.Duration
	operationTimeout time.Duration
	logRequests      bool
	corsOrigins      []string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the hub-facing alarm API server",

	RunE: func(cmd *cobra.Command, args []string) error {
		if err := doServe(); err != nil {
			return err
		}

		return nil
	},

	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkRequiredFlags("securitas.username", "securitas.password", "securitas.country")
	},
}

func init() {
	serveCmd.Flags().Uint16Var(&_serveCmdOpts.httpPort, "port", 8722, "HTTP port number")
	serveCmd.Flags().StringVar(&_serveCmdOpts.tlsCertPath, "tls-cert", "", "TLS certificate file (plain HTTP when unset)")
	serveCmd.Flags().StringVar(&_serveCmdOpts.tlsKeyPath, "tls-key", "", "TLS key file")
	serveCmd.Flags().DurationVar(&_serveCmdOpts.gracefulTimeout, "graceful-timeout", time.Second*15, "duration to wait for server to finish, eg. 1m or 10s")
	serveCmd.Flags().DurationVar(&_serveCmdOpts.readTimeout, "read-timeout", time.Second*15, "duration to wait for request read, eg. 1m or 10s")
	serveCmd.Flags().DurationVar(&_serveCmdOpts.writeTimeout, "write-timeout", time.Second*120, "duration to wait for request write, eg. 1m or 10s")
	serveCmd.Flags().DurationVar(&_serveCmdOpts.operationTimeout, "operation-timeout", time.Second*60, "budget for polled panel operations, eg. 1m or 30s")
	serveCmd.Flags().BoolVar(&_serveCmdOpts.logRequests, "log-requests", false, "log requests and responses (only in debug mode)")
	serveCmd.Flags().StringSliceVar(&_serveCmdOpts.corsOrigins, "cors-origins", nil, "origins allowed to call the API from a browser")

	errPanic(viper.GetViper().BindPFlag("http.port", serveCmd.Flags().Lookup("port")))
	errPanic(viper.GetViper().BindPFlag("http.cert", serveCmd.Flags().Lookup("tls-cert")))
	errPanic(viper.GetViper().BindPFlag("http.key", serveCmd.Flags().Lookup("tls-key")))
	errPanic(viper.GetViper().BindPFlag("http.graceful-timeout", serveCmd.Flags().Lookup("graceful-timeout")))
	errPanic(viper.GetViper().BindPFlag("http.read-timeout", serveCmd.Flags().Lookup("read-timeout")))
	errPanic(viper.GetViper().BindPFlag("http.write-timeout", serveCmd.Flags().Lookup("write-timeout")))
	errPanic(viper.GetViper().BindPFlag("securitas.operation-timeout", serveCmd.Flags().Lookup("operation-timeout")))
	errPanic(viper.GetViper().BindPFlag("logging.log-requests", serveCmd.Flags().Lookup("log-requests")))
	errPanic(viper.GetViper().BindPFlag("http.cors-origins", serveCmd.Flags().Lookup("cors-origins")))

	rootCmd.AddCommand(serveCmd)
}

func doServe() error {
	wait := viper.GetDuration("http.graceful-timeout")
	port := viper.GetUint("http.port")
	certFile := viper.GetString("http.cert")
	keyFile := viper.GetString("http.key")
	operationTimeout := viper.GetDuration("securitas.operation-timeout")

	var logRequests bool
	if viper.GetBool("logging.log-requests") {
		if logrus.IsLevelEnabled(logrus.DebugLevel) {
			logRequests = true
		} else {
			logging.Logger(nil).Warn("log-requests ignored when not in debug mode")
		}
	}

	client, err := newAlarmClient()
	if err != nil {
		return err
	}

	ah := httpapi.NewAlarmHandler(client, operationTimeout)

	r := mux.NewRouter()
	if origins := viper.GetStringSlice("http.cors-origins"); len(origins) > 0 {
		r.Use(middlewares.NewCorsMw(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		}))
	}
	r.Use(middlewares.NewLoggingMw(logRequests))
	r.Use(middlewares.NewRecoveryMw())
	r.Use(middlewares.NewCorrelationMw("X-Correlation-ID"))
	ah.Routes(r)

	s := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		ReadTimeout:  viper.GetDuration("http.read-timeout"),
		WriteTimeout: viper.GetDuration("http.write-timeout"),
		IdleTimeout:  time.Second * 60,
		Handler:      r,
	}

	logging.Logger(nil).Infof("Serving on port %d", port)
	go func() {
		var err error
		if certFile != "" && keyFile != "" {
			err = s.ListenAndServeTLS(certFile, keyFile)
		} else {
			err = s.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			logging.Logger(nil).WithError(err).Error("running server")
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	// Block until we receive a signal
	<-c

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	logging.Logger(nil).Info("shutting down")
	if err := s.Shutdown(ctx); err != nil {
		logging.Logger(nil).WithError(err).Errorf("shutting down")
	}
	logging.Logger(nil).Info("exiting")
	return nil
}
