// Humid-bridge keeps a Daikin humidifying air purifier's state and exposes
// it to other systems.
//
// It polls the unit on a fixed interval and serves the latest state over a
// small HTTP API (JSON, WebSocket stream, Prometheus metrics). With a broker
// configured it also registers the unit with Home Assistant over MQTT and
// forwards commands back to the device.
//
// Usage:
//
//	humid-bridge serve [flags]
//
// See 'humid-bridge serve --help' for available options.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/daikin-humid/internal/config"
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
	Use:   "humid-bridge",
	Short: "Daikin Humidifier Bridge",
	Long: `A long-running bridge for Daikin humidifying air purifiers.

Polls the unit over its local HTTP interface and publishes the state over an
HTTP API, Prometheus metrics and, optionally, Home Assistant MQTT discovery.

For one-off reads and changes, use the separate 'humid-cfg' utility.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var configPath string

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: OS config directory)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(versionCmd)
}

var initHost string

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a starter config file",
	Long: `Write a config file with default settings for the given device.

An existing file is never overwritten.`,
	Example: `  humid-bridge init-config --device 192.168.1.40
  humid-bridge init-config --device 192.168.1.40 --config ./bridge.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.CreateDefaultConfig(configPath, initHost)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		fmt.Println("Edit it to set a nickname or an MQTT broker, then run 'humid-bridge serve'.")
		return nil
	},
}

func init() {
	initConfigCmd.Flags().StringVar(&initHost, "device", "", "Device IP address or host[:port]")
	_ = initConfigCmd.MarkFlagRequired("device")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Line("humid-bridge"))
	},
}
