// Humid-cfg is a command-line client for Daikin humidifying air purifiers.
//
// It reads the device state, changes controls and shows a live view over
// the unit's local HTTP interface. No cloud account is involved.
//
// Usage:
//
//	humid-cfg [command] [flags]
//
// See 'humid-cfg --help' for available commands.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/daikin-humid/internal/config"
	"github.com/muurk/daikin-humid/internal/coordinator"
	"github.com/muurk/daikin-humid/internal/deviceclient"
	"github.com/muurk/daikin-humid/internal/logging"
	"github.com/muurk/daikin-humid/internal/ui"
	"github.com/muurk/daikin-humid/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "humid-cfg",
	Short: "Daikin Humidifier Command-Line Client",
	Long: `A command-line client for Daikin humidifying air purifiers.

Talks to the unit's local HTTP interface to read its controls, sensors and
status, change power, mode, humidity level and fan speed, and follow the
state live.

The device address comes from --device or from the config file
(see 'humid-bridge init-config').`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Persistent flags shared by every device command
var (
	deviceHost string
	timeout    time.Duration
	configPath string
	logLevel   string
)

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&deviceHost, "device", "", "Device IP address or host[:port] (overrides the config file)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-request timeout (default from config, 10s)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: OS config directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Line("humid-cfg"))
	},
}

// session is the per-invocation wiring shared by the device commands.
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *deviceclient.Client
	coord   *coordinator.Coordinator
	printer *ui.Printer
}

// newSession loads the config, applies flag overrides and builds the
// client and coordinator.
func newSession() (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if deviceHost != "" {
		cfg.Device.Host = deviceHost
	}
	if timeout != 0 {
		cfg.Device.Timeout = timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration (use --device or a config file): %w", err)
	}

	// The CLI stays silent unless asked; the file's log_level is for the bridge.
	logger, err := logging.New(logLevel)
	if err != nil {
		return nil, err
	}

	client := deviceclient.NewClient(cfg.Device.Host,
		&http.Client{Timeout: cfg.Device.Timeout},
		deviceclient.WithTimeout(cfg.Device.Timeout),
		deviceclient.WithLogger(logger.Named("device")),
	)

	return &session{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		coord:   coordinator.New(client, coordinator.WithLogger(logger.Named("coordinator"))),
		printer: ui.NewPrinter(os.Stdout),
	}, nil
}

func (s *session) close() {
	logging.Sync(s.logger)
}

// deviceParam is the header line naming the device.
func (s *session) deviceParam() ui.Param {
	return ui.Param{Key: "Device", Value: s.cfg.DisplayName()}
}
