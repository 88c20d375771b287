package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/daikin-humid/internal/config"
	"github.com/muurk/daikin-humid/internal/coordinator"
	"github.com/muurk/daikin-humid/internal/deviceclient"
	"github.com/muurk/daikin-humid/internal/logging"
	"github.com/muurk/daikin-humid/internal/metrics"
	"github.com/muurk/daikin-humid/internal/mqttbridge"
	"github.com/muurk/daikin-humid/internal/server"
	"github.com/muurk/daikin-humid/internal/version"
)

// Serve command flags
var (
	serveDevice   string
	serveListen   string
	serveInterval time.Duration
	serveBroker   string
	serveLogLevel string
	noHTTP        bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll the device and serve its state",
	Long: `Poll the device and publish its state until interrupted.

Settings come from the config file; flags override it. The HTTP API is
served on http.listen unless --no-http is given. The MQTT bridge runs when a
broker is configured.`,
	Example: `  # Use the config file
  humid-bridge serve

  # No config file: device and listen address from flags
  humid-bridge serve --device 192.168.1.40 --listen 127.0.0.1:8080

  # Poll every 15 seconds and bridge to Home Assistant
  humid-bridge serve --interval 15s --mqtt-broker tcp://homeassistant.local:1883`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveDevice, "device", "", "Device IP address or host[:port]")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "HTTP API listen address (default :8080)")
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 0, "Poll interval (default 30s)")
	serveCmd.Flags().StringVar(&serveBroker, "mqtt-broker", "", "MQTT broker URL, e.g. tcp://localhost:1883")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&noHTTP, "no-http", false, "Do not serve the HTTP API")
}

// loadServeConfig loads the config file and applies the serve flags.
func loadServeConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if serveDevice != "" {
		cfg.Device.Host = serveDevice
	}
	if serveListen != "" {
		cfg.HTTP.Listen = serveListen
	}
	if serveInterval != 0 {
		cfg.Device.PollInterval = serveInterval
	}
	if serveBroker != "" {
		cfg.MQTT.Broker = serveBroker
	}
	if serveLogLevel != "" {
		cfg.LogLevel = serveLogLevel
	}
	if noHTTP {
		cfg.HTTP.Listen = ""
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	logger.Info("Starting humid-bridge",
		zap.String("version", version.Full()),
		zap.String("device", cfg.Device.Host),
		zap.Duration("poll_interval", cfg.Device.PollInterval),
	)

	client := deviceclient.NewClient(cfg.Device.Host,
		&http.Client{Timeout: cfg.Device.Timeout},
		deviceclient.WithTimeout(cfg.Device.Timeout),
		deviceclient.WithLogger(logger.Named("device")),
	)

	if err := serve(cmd.Context(), cfg, client, logger); err != nil {
		if _, ok := deviceclient.AsFault(err); ok {
			fmt.Fprintln(os.Stderr, deviceclient.TroubleshootingHint(err))
		}
		return err
	}
	return nil
}

// serve identifies the device and runs the poller, HTTP API and MQTT bridge
// until ctx is done or one of them fails.
func serve(ctx context.Context, cfg *config.Config, client *deviceclient.Client, logger *zap.Logger) error {
	device, err := identify(ctx, cfg, client)
	if err != nil {
		logger.Error("Device probe failed",
			zap.String("reason", deviceclient.ShortMessage(err)),
			zap.Error(err),
		)
		return fmt.Errorf("cannot reach device at %s: %w", cfg.Device.Host, err)
	}
	logger.Info("Device identified",
		zap.String("name", device.Name),
		zap.String("id", device.ID),
		zap.String("model", device.Model),
	)

	coord := coordinator.New(client, coordinator.WithLogger(logger.Named("coordinator")))

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(coord)
	registry.MustRegister(
		collector,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	subID := coord.Subscribe(collector.Observe)
	defer coord.Unsubscribe(subID)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return coord.Run(ctx, cfg.Device.PollInterval)
	})

	if cfg.HTTP.Listen != "" {
		srv := server.New(&server.Config{Listen: cfg.HTTP.Listen, Gatherer: registry}, coord,
			server.WithLogger(logger.Named("http")))
		g.Go(func() error {
			return srv.Start(ctx)
		})
	}

	if cfg.MQTT.Enabled() {
		bridge := mqttbridge.New(cfg.MQTT, device, coord, mqttbridge.WithLogger(logger.Named("mqtt")))
		mqttClient := mqtt.NewClient(bridge.ClientOptions(cfg.MQTT))
		g.Go(func() error {
			return bridge.Run(ctx, mqttClient)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		logger.Info("humid-bridge stopped")
		return nil
	}
	return err
}

// identify probes the device and collects what the MQTT bridge needs to
// describe it. A failing model read is not fatal.
func identify(ctx context.Context, cfg *config.Config, client *deviceclient.Client) (mqttbridge.Device, error) {
	basic, err := client.Probe(ctx)
	if err != nil {
		return mqttbridge.Device{}, err
	}

	host := client.Host()
	device := mqttbridge.Device{
		ID:       basic.UniqueID(host),
		Name:     basic.Title(host),
		Firmware: basic.Firmware,
	}
	if cfg.Device.Nickname != "" {
		device.Name = cfg.Device.Nickname
	}
	if resp, err := client.GetModelInfo(ctx); err == nil {
		device.Model = deviceclient.ModelInfoFrom(resp).Model
	}
	return device, nil
}
