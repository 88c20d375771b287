package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/daikin-humid/internal/coordinator"
	"github.com/muurk/daikin-humid/internal/deviceclient"
)

const missing = "-"

// nameOrCode shows a decoded name, the raw code when it is unknown, or "-".
func nameOrCode(name, code string) string {
	switch {
	case name != "":
		return name
	case code == "":
		return missing
	default:
		return fmt.Sprintf("unknown (%s)", code)
	}
}

func row(key, value string) string {
	return ResultKeyStyle.Render(key+":") + " " + value
}

// RenderSnapshot renders the state box for snap. A nil snapshot renders a
// placeholder. now is used for the age line.
func RenderSnapshot(title string, snap *coordinator.Snapshot, width int, now time.Time) string {
	width = ClampWidth(width)
	style := StateBoxStyle(width)

	heading := HeaderTitleStyle.UnsetPaddingLeft().Render(strings.ToUpper(title))
	if snap == nil {
		body := lipgloss.JoinVertical(lipgloss.Left, heading, "", OffValueStyle.Render("No data received from the device yet."))
		return style.Render(body)
	}

	control := snap.ControlInfo()
	sensors := snap.SensorInfo()
	status := snap.UnitStatus()
	gauge := NewGauge(width)

	lines := []string{heading, "", SectionTitleStyle.Render("Controls")}
	lines = append(lines, row("Power", renderPower(control)))
	lines = append(lines, row("Mode", nameOrCode(control.Mode.Name(), string(control.Mode))))
	lines = append(lines, row("Humidity level", fmt.Sprintf("%s (target %d%%)",
		nameOrCode(control.Humidity.Name(), string(control.Humidity)), control.TargetHumidity())))
	if pct, ok := control.FanPercentage(); ok {
		lines = append(lines, row("Fan speed", gauge.Render(pct, fmt.Sprintf("%s %d%%", control.FanSpeed.Name(), pct))))
	} else {
		lines = append(lines, row("Fan speed", nameOrCode(control.FanSpeed.Name(), string(control.FanSpeed))))
	}

	lines = append(lines, "", SectionTitleStyle.Render("Sensors"))
	if h, ok := sensors.HumidityValue(); ok {
		lines = append(lines, row("Humidity", gauge.Render(h, fmt.Sprintf("%d%%", h))))
	} else {
		lines = append(lines, row("Humidity", missing))
	}
	if t, ok := sensors.TemperatureValue(); ok {
		lines = append(lines, row("Temperature", fmt.Sprintf("%.1f°C", t)))
	} else {
		lines = append(lines, row("Temperature", missing))
	}
	if pm, ok := sensors.PM25Value(); ok {
		lines = append(lines, row("PM2.5", fmt.Sprintf("%d µg/m³", pm)))
	} else {
		lines = append(lines, row("PM2.5", missing))
	}

	lines = append(lines, "", SectionTitleStyle.Render("Status"))
	lines = append(lines, row("Filter", renderFilter(status)))

	lines = append(lines, "", FooterStyle.UnsetPaddingLeft().Render(fmt.Sprintf("Updated %s (%s ago)",
		snap.FetchedAt().Format(time.TimeOnly), now.Sub(snap.FetchedAt()).Truncate(time.Second))))

	return style.Render(strings.Join(lines, "\n"))
}

func renderPower(c deviceclient.ControlInfo) string {
	name := nameOrCode(c.Power.Name(), string(c.Power))
	if c.IsOn() {
		return OnValueStyle.Render(name)
	}
	return OffValueStyle.Render(name)
}

func renderFilter(u deviceclient.UnitStatus) string {
	switch {
	case u.FilterSign == "":
		return missing
	case u.FilterNeedsAttention():
		return AttentionValueStyle.Render(WarningMarker + " needs attention")
	default:
		return "ok"
	}
}
