// Package ui provides terminal UI components for the humid-cfg CLI.
//
// Output is rendered with Lipgloss. One-shot commands print boxes through a
// Printer; the watch command runs a Bubble Tea program that follows the
// coordinator.
//
// # Components
//
//   - Header: command banner showing operation name and parameters
//   - Result: success, warning or failure box; failure boxes for device
//     errors carry the troubleshooting tips for the fault kind
//   - RenderSnapshot: the device state box (controls, sensors, status)
//   - Gauge: a percentage bar for humidity and fan speed
//   - WatchModel: live state view with a spinner while refreshing
//
// # Usage Pattern
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("Device State", "humid-cfg show", ui.Param{Key: "Device", Value: host})
//	if _, err := coord.RequestRefresh(ctx); err != nil {
//	    p.PrintFault("Could not read the device", err)
//	    return err
//	}
//	p.PrintSnapshot(name, coord.CurrentSnapshot())
//
// # Logging Integration
//
// The CLI keeps zap silent unless DAIKIN_HUMID_LOG_LEVEL (or --log-level)
// is set, so log lines do not interleave with the rendered output.
package ui
