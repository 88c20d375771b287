package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/daikin-humid/internal/controls"
	"github.com/muurk/daikin-humid/internal/coordinator"
	"github.com/muurk/daikin-humid/internal/deviceclient"
	"github.com/muurk/daikin-humid/internal/server"
	"github.com/muurk/daikin-humid/internal/ui"
)

// Output formats
const (
	formatDetailed = "detailed"
	formatCompact  = "compact"
	formatJSON     = "json"
)

var outputFormat string

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", formatDetailed, "Output format (detailed, compact, json)")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(fanScaleCmd)
}

func checkFormat() error {
	switch outputFormat {
	case formatDetailed, formatCompact, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown format %q (use detailed, compact or json)", outputFormat)
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// infoCmd shows the device identity
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device identity",
	Long: `Read /common/basic_info and /cleaner/get_model_info and show the unit's
name, model, MAC address and firmware.

This is also a quick way to check that the address is reachable.`,
	Example: `  humid-cfg info --device 192.168.1.40
  humid-cfg info --format json`,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	host := s.client.Host()

	basic, err := s.client.Probe(ctx)
	if err != nil {
		return s.fault("Could not read the device", err)
	}
	modelResp, err := s.client.GetModelInfo(ctx)
	if err != nil {
		return s.fault("Could not read the model", err)
	}
	model := deviceclient.ModelInfoFrom(modelResp)

	switch outputFormat {
	case formatCompact:
		fmt.Println(basic.Summary(host))
	case formatJSON:
		return printJSON(map[string]map[string]string{
			"basic_info": basic.Raw.Map(),
			"model_info": model.Raw.Map(),
		})
	default:
		s.printer.PrintHeader("Device Info", "humid-cfg info", s.deviceParam())
		s.printer.PrintSuccess(basic.Title(host),
			ui.Param{Key: "Address", Value: host},
			ui.Param{Key: "Model", Value: dash(model.Model)},
			ui.Param{Key: "MAC", Value: dash(basic.MAC)},
			ui.Param{Key: "Firmware", Value: dash(basic.Firmware)},
			ui.Param{Key: "Region", Value: dash(basic.Region)},
			ui.Param{Key: "Unique ID", Value: basic.UniqueID(host)},
		)
	}
	return nil
}

// showCmd reads and shows the device state
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show device state",
	Long: `Run one refresh cycle (controls, sensors, unit status) and show the
result.`,
	Example: `  humid-cfg show --device 192.168.1.40
  humid-cfg show --format compact
  humid-cfg show --format json`,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	update, err := s.coord.RequestRefresh(cmd.Context())
	if err != nil {
		if outputFormat == formatJSON {
			_ = printJSON(server.NewStateDocument(update.Snapshot, update.State, err))
			return err
		}
		return s.fault("Could not read the device", err)
	}

	snap := update.Snapshot
	switch outputFormat {
	case formatCompact:
		fmt.Print(deviceclient.FormatCompact(snap.ControlInfo(), snap.SensorInfo(), snap.UnitStatus()))
	case formatJSON:
		return printJSON(server.NewStateDocument(snap, update.State, nil))
	default:
		s.printer.PrintHeader("Device State", "humid-cfg show", s.deviceParam())
		s.printer.PrintSnapshot(s.cfg.DisplayName(), snap)
	}
	return nil
}

// Set command flags
var (
	setPower          string
	setMode           string
	setHumidity       string
	setFan            string
	setTargetHumidity int
	setFanPercent     int
)

// setCmd changes device controls
var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change device controls",
	Long: `Send a control command and show what changed.

Only the attributes you pass are sent. Values are names:

  --power     off, on
  --mode      auto, eco, pollen, moisturize, circulator
  --humidity  off, low, normal, high
  --fan       auto, silent, low, normal, turbo

--target-humidity picks the humidity level nearest a relative humidity
(0 = off, up to 45 = low, up to 55 = normal, above = high).
--fan-percent picks a fan speed on the 1-100 scale (see 'humid-cfg fan-scale').`,
	Example: `  # Turn on in moisturize mode
  humid-cfg set --power on --mode moisturize

  # Aim for 50% humidity with a quiet fan
  humid-cfg set --target-humidity 50 --fan silent

  # Fan at 60%
  humid-cfg set --fan-percent 60`,
	RunE: runSet,
}

func init() {
	addSetFlags(setCmd)
}

func addSetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&setPower, "power", "", "Power (off, on)")
	cmd.Flags().StringVar(&setMode, "mode", "", "Operating mode")
	cmd.Flags().StringVar(&setHumidity, "humidity", "", "Humidity level (off, low, normal, high)")
	cmd.Flags().StringVar(&setFan, "fan", "", "Fan speed (auto, silent, low, normal, turbo)")
	cmd.Flags().IntVar(&setTargetHumidity, "target-humidity", 0, "Target relative humidity, 0-100")
	cmd.Flags().IntVar(&setFanPercent, "fan-percent", 0, "Fan speed percentage, 1-100")

	cmd.MarkFlagsMutuallyExclusive("humidity", "target-humidity")
	cmd.MarkFlagsMutuallyExclusive("fan", "fan-percent")
}

// controlRequest collects the set flags into the same request the HTTP API
// accepts.
func controlRequest(cmd *cobra.Command) server.ControlRequest {
	req := server.ControlRequest{
		Power:    setPower,
		Mode:     setMode,
		Humidity: setHumidity,
		FanSpeed: setFan,
	}
	if cmd.Flags().Changed("target-humidity") {
		v := setTargetHumidity
		req.TargetHumidity = &v
	}
	if cmd.Flags().Changed("fan-percent") {
		v := setFanPercent
		req.FanPercentage = &v
	}
	return req
}

func runSet(cmd *cobra.Command, args []string) error {
	command, err := controlRequest(cmd).Command()
	if err != nil {
		return err
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()

	before, err := s.coord.RequestRefresh(ctx)
	if err != nil {
		return s.fault("Could not read the device", err)
	}

	s.printer.PrintHeader("Set Controls", "humid-cfg set", s.deviceParam(), ui.Param{Key: "Command", Value: command.String()})

	resp, err := s.coord.SetControl(ctx, command)
	if err != nil {
		return s.fault("Control command failed", err)
	}

	after := s.coord.Status()
	if after.State != coordinator.StateReady {
		s.printer.PrintWarning("Command sent, but the state could not be re-read",
			ui.Param{Key: "Reply", Value: resp.String()},
			ui.Param{Key: "Reason", Value: deviceclient.ShortMessage(after.LastError)},
		)
		return nil
	}

	oldCtl := before.Snapshot.ControlInfo()
	newCtl := s.coord.CurrentSnapshot().ControlInfo()
	if !deviceclient.ControlInfoFrom(resp).OK() {
		s.printer.PrintWarning("Device did not accept the command",
			ui.Param{Key: "Reply", Value: resp.String()},
		)
	} else {
		s.printer.PrintSuccess("Control command sent", changeParams(command)...)
	}
	fmt.Print(deviceclient.FormatDiff(oldCtl, newCtl))
	return nil
}

// changeParams lists the attributes a command sets.
func changeParams(c deviceclient.ControlCommand) []ui.Param {
	var params []ui.Param
	if c.Power != nil {
		params = append(params, ui.Param{Key: "Power", Value: c.Power.Name()})
	}
	if c.Mode != nil {
		params = append(params, ui.Param{Key: "Mode", Value: c.Mode.Name()})
	}
	if c.Humidity != nil {
		params = append(params, ui.Param{Key: "Humidity level", Value: fmt.Sprintf("%s (target %d%%)",
			c.Humidity.Name(), controls.TargetForHumidity(*c.Humidity))})
	}
	if c.FanSpeed != nil {
		params = append(params, ui.Param{Key: "Fan speed", Value: c.FanSpeed.Name()})
	}
	return params
}

var watchInterval time.Duration

// watchCmd follows the device state live
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow device state live",
	Long: `Poll the device and show its state as it changes.

Press r to refresh now and q to quit.`,
	Example: `  humid-cfg watch --device 192.168.1.40
  humid-cfg watch --interval 10s`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Time between refreshes (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	interval := s.cfg.Device.PollInterval
	if cmd.Flags().Changed("interval") {
		interval = watchInterval
	}
	if interval <= 0 {
		return fmt.Errorf("--interval must be positive, got %v", interval)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.coord.Run(ctx, interval) }()

	err = ui.RunWatch(ctx, s.coord, s.cfg.DisplayName())
	cancel()
	<-done
	return err
}

// fanScaleCmd prints the fan percentage buckets
var fanScaleCmd = &cobra.Command{
	Use:   "fan-scale",
	Short: "Show how fan percentages map to fan speeds",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(deviceclient.FanScaleTable())
	},
}

// fault prints a failure box for err and returns it, so the exit code
// reflects the failure.
func (s *session) fault(title string, err error) error {
	if outputFormat != formatJSON {
		s.printer.PrintFault(title, err)
	}
	return err
}

func dash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
