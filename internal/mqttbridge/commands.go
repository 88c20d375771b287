package mqttbridge

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/muurk/daikin-humid/internal/controls"
	"github.com/muurk/daikin-humid/internal/deviceclient"
)

// CommandError reports a command topic or payload the bridge cannot act on.
type CommandError struct {
	Topic   string
	Payload string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("mqtt command %s %q: %v", e.Topic, e.Payload, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ParseCommand converts a message on a command topic into a device command.
//
// Setting the fan speed or preset also powers the unit on, so choosing a
// speed from Home Assistant while the unit is off starts it.
func ParseCommand(topics Topics, topic string, payload []byte) (deviceclient.ControlCommand, error) {
	var cmd deviceclient.ControlCommand
	value := strings.TrimSpace(string(payload))
	fail := func(err error) (deviceclient.ControlCommand, error) {
		return deviceclient.ControlCommand{}, &CommandError{Topic: topic, Payload: value, Err: err}
	}

	entity, field, ok := topics.ParseCommand(topic)
	if !ok {
		return fail(errors.New("not a command topic"))
	}

	switch entity + "/" + field {
	case EntityHumidifier + "/" + FieldPower, EntityFan + "/" + FieldPower:
		p, err := parseSwitch(value)
		if err != nil {
			return fail(err)
		}
		return cmd.WithPower(p), nil

	case EntityHumidifier + "/" + FieldMode:
		m, err := controls.ParseMode(value)
		if err != nil {
			return fail(err)
		}
		return cmd.WithMode(m), nil

	case EntityHumidifier + "/" + FieldTargetHumidity:
		n, err := parseNumber(value)
		if err != nil {
			return fail(err)
		}
		h, err := controls.HumidityForTarget(n)
		if err != nil {
			return fail(err)
		}
		return cmd.WithHumidity(h), nil

	case EntityHumidityLevel + "/" + FieldOption:
		h, err := controls.ParseHumidity(value)
		if err != nil {
			return fail(err)
		}
		return cmd.WithHumidity(h), nil

	case EntityFan + "/" + FieldPercentage:
		n, err := parseNumber(value)
		if err != nil {
			return fail(err)
		}
		f, err := controls.PercentageToFanSpeed(n)
		if err != nil {
			return fail(err)
		}
		return cmd.WithPower(controls.PowerOn).WithFanSpeed(f), nil

	case EntityFan + "/" + FieldPreset:
		if !strings.EqualFold(value, controls.PresetAuto) {
			return fail(fmt.Errorf("unknown preset (only %q is supported)", controls.PresetAuto))
		}
		return cmd.WithPower(controls.PowerOn).WithFanSpeed(controls.FanAuto), nil
	}

	return fail(fmt.Errorf("unknown command %s/%s", entity, field))
}

func parseSwitch(value string) (controls.Power, error) {
	switch strings.ToUpper(value) {
	case PayloadOn:
		return controls.PowerOn, nil
	case PayloadOff:
		return controls.PowerOff, nil
	}
	return controls.ParsePower(value)
}

// parseNumber accepts integers and the decimal form Home Assistant sends for
// some number entities.
func parseNumber(value string) (int, error) {
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a number")
	}
	return int(math.Round(f)), nil
}
