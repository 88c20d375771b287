package deviceclient

import (
	"fmt"
	"strings"

	"github.com/muurk/daikin-humid/internal/controls"
)

// orDash renders missing values as "-".
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// nameOr renders a code by name, falling back to the raw code.
func nameOr(name, code string) string {
	if name != "" {
		return name
	}
	if code == "" {
		return "-"
	}
	return fmt.Sprintf("unknown (%s)", code)
}

// Summary returns a one-line summary of the device identity
func (b BasicInfo) Summary(host string) string {
	return fmt.Sprintf("%s @ %s (MAC: %s, FW: %s)", b.Title(host), host, orDash(b.MAC), orDash(b.Firmware))
}

// FormatDeviceInfo returns a formatted string with device identification information
func FormatDeviceInfo(host string, b BasicInfo, m ModelInfo) string {
	var sb strings.Builder

	sb.WriteString("=== Device Information ===\n")
	sb.WriteString(fmt.Sprintf("Name:        %s\n", b.Title(host)))
	sb.WriteString(fmt.Sprintf("Address:     %s\n", host))
	sb.WriteString(fmt.Sprintf("Model:       %s\n", orDash(m.Model)))
	sb.WriteString(fmt.Sprintf("MAC Address: %s\n", orDash(b.MAC)))
	sb.WriteString(fmt.Sprintf("Firmware:    %s\n", orDash(b.Firmware)))
	sb.WriteString(fmt.Sprintf("Type:        %s\n", orDash(b.Type)))
	sb.WriteString(fmt.Sprintf("Region:      %s\n", orDash(b.Region)))
	sb.WriteString(fmt.Sprintf("Unique ID:   %s\n", b.UniqueID(host)))

	return sb.String()
}

// FormatControl returns a formatted string with the control attributes
func (c ControlInfo) FormatControl() string {
	var sb strings.Builder

	sb.WriteString("=== Controls ===\n")
	sb.WriteString(fmt.Sprintf("Power:           %s\n", nameOr(c.Power.Name(), string(c.Power))))
	sb.WriteString(fmt.Sprintf("Mode:            %s\n", nameOr(c.Mode.Name(), string(c.Mode))))
	sb.WriteString(fmt.Sprintf("Humidity level:  %s (target %d%%)\n", nameOr(c.Humidity.Name(), string(c.Humidity)), c.TargetHumidity()))
	if p, ok := c.FanPercentage(); ok {
		sb.WriteString(fmt.Sprintf("Fan speed:       %s (%d%%)\n", c.FanSpeed.Name(), p))
	} else {
		sb.WriteString(fmt.Sprintf("Fan speed:       %s\n", nameOr(c.FanSpeed.Name(), string(c.FanSpeed))))
	}

	return sb.String()
}

// FormatSensors returns a formatted string with the sensor readings
func (s SensorInfo) FormatSensors() string {
	var sb strings.Builder

	humidity, _ := s.CurrentHumidity()

	sb.WriteString("=== Sensors ===\n")
	sb.WriteString(fmt.Sprintf("PM2.5:       %s µg/m³\n", orDash(s.PM25)))
	sb.WriteString(fmt.Sprintf("Humidity:    %s %%\n", orDash(humidity)))
	sb.WriteString(fmt.Sprintf("Temperature: %s °C\n", orDash(s.Temperature)))

	return sb.String()
}

// FormatStatus returns a formatted string with the unit status
func (u UnitStatus) FormatStatus() string {
	var sb strings.Builder

	sb.WriteString("=== Unit Status ===\n")
	if u.FilterNeedsAttention() {
		sb.WriteString("Filter: CHECK (filter sign lit)\n")
	} else {
		sb.WriteString("Filter: OK\n")
	}

	return sb.String()
}

// FormatCompact returns a compact multi-line format suitable for terminal display
func FormatCompact(c ControlInfo, s SensorInfo, u UnitStatus) string {
	var sb strings.Builder

	humidity, _ := s.CurrentHumidity()

	sb.WriteString(fmt.Sprintf("Power: %s  Mode: %s  Humidity: %s  Fan: %s\n",
		nameOr(c.Power.Name(), string(c.Power)),
		nameOr(c.Mode.Name(), string(c.Mode)),
		nameOr(c.Humidity.Name(), string(c.Humidity)),
		nameOr(c.FanSpeed.Name(), string(c.FanSpeed))))
	sb.WriteString(fmt.Sprintf("PM2.5: %s  RH: %s%%  Temp: %s°C  Filter: %s\n",
		orDash(s.PM25), orDash(humidity), orDash(s.Temperature), filterWord(u)))

	return sb.String()
}

func filterWord(u UnitStatus) string {
	if u.FilterNeedsAttention() {
		return "check"
	}
	return "ok"
}

// FormatChanges returns a formatted string showing what a command will change
func (c ControlCommand) FormatChanges() string {
	var sb strings.Builder

	sb.WriteString("=== Control Changes ===\n")

	if c.IsEmpty() {
		sb.WriteString("(no changes specified)\n")
		return sb.String()
	}
	if c.Power != nil {
		sb.WriteString(fmt.Sprintf("  Power:    %s\n", nameOr(c.Power.Name(), string(*c.Power))))
	}
	if c.Mode != nil {
		sb.WriteString(fmt.Sprintf("  Mode:     %s\n", nameOr(c.Mode.Name(), string(*c.Mode))))
	}
	if c.Humidity != nil {
		sb.WriteString(fmt.Sprintf("  Humidity: %s\n", nameOr(c.Humidity.Name(), string(*c.Humidity))))
	}
	if c.FanSpeed != nil {
		sb.WriteString(fmt.Sprintf("  Fan:      %s\n", nameOr(c.FanSpeed.Name(), string(*c.FanSpeed))))
	}

	return sb.String()
}

// FormatDiff returns a formatted diff between two control states
func FormatDiff(old, new ControlInfo) string {
	var sb strings.Builder

	sb.WriteString("=== Control Differences ===\n")

	changed := false
	diff := func(label, from, to string) {
		if from == to {
			return
		}
		sb.WriteString(fmt.Sprintf("  %-9s %s → %s\n", label+":", from, to))
		changed = true
	}

	diff("Power", nameOr(old.Power.Name(), string(old.Power)), nameOr(new.Power.Name(), string(new.Power)))
	diff("Mode", nameOr(old.Mode.Name(), string(old.Mode)), nameOr(new.Mode.Name(), string(new.Mode)))
	diff("Humidity", nameOr(old.Humidity.Name(), string(old.Humidity)), nameOr(new.Humidity.Name(), string(new.Humidity)))
	diff("Fan", nameOr(old.FanSpeed.Name(), string(old.FanSpeed)), nameOr(new.FanSpeed.Name(), string(new.FanSpeed)))

	if !changed {
		sb.WriteString("(no differences detected)\n")
	}

	return sb.String()
}

// FanScaleTable returns a table of the fan percentage buckets
func FanScaleTable() string {
	var sb strings.Builder

	sb.WriteString("=== Fan Percentage Scale ===\n")
	lower := 1
	for _, speed := range controls.OrderedFanSpeeds {
		upper, _ := controls.FanSpeedToPercentage(speed)
		sb.WriteString(fmt.Sprintf("  %3d-%3d%%  %s\n", lower, upper, speed.Name()))
		lower = upper + 1
	}
	sb.WriteString("  preset    auto\n")

	return sb.String()
}
