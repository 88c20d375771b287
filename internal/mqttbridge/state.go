package mqttbridge

import (
	"github.com/muurk/daikin-humid/internal/controls"
	"github.com/muurk/daikin-humid/internal/coordinator"
)

// StatePayload is published retained to the state topic after every
// successful cycle. Every entity reads its value from it with a template.
// Fields the device did not report are null.
type StatePayload struct {
	Power          string   `json:"power"`
	Mode           *string  `json:"mode"`
	HumidityLevel  *string  `json:"humidity_level"`
	TargetHumidity int      `json:"target_humidity"`
	FanSpeed       *string  `json:"fan_speed"`
	FanPercentage  *int     `json:"fan_percentage"`
	FanPreset      *string  `json:"fan_preset"`
	PM25           *int     `json:"pm25"`
	Humidity       *int     `json:"humidity"`
	Temperature    *float64 `json:"temperature"`
	Filter         string   `json:"filter"`
}

// NewStatePayload renders a snapshot.
func NewStatePayload(snap *coordinator.Snapshot) StatePayload {
	control := snap.ControlInfo()
	sensors := snap.SensorInfo()
	unit := snap.UnitStatus()

	p := StatePayload{
		Power:          onOff(control.IsOn()),
		Mode:           nameOrNil(control.Mode.Name()),
		HumidityLevel:  nameOrNil(control.Humidity.Name()),
		TargetHumidity: control.TargetHumidity(),
		FanSpeed:       nameOrNil(control.FanSpeed.Name()),
		Filter:         onOff(unit.FilterNeedsAttention()),
	}

	if control.FanSpeed == controls.FanAuto {
		preset := controls.PresetAuto
		p.FanPreset = &preset
	} else if pct, ok := control.FanPercentage(); ok {
		p.FanPercentage = &pct
	}

	if v, ok := sensors.PM25Value(); ok {
		p.PM25 = &v
	}
	if v, ok := sensors.HumidityValue(); ok {
		p.Humidity = &v
	}
	if v, ok := sensors.TemperatureValue(); ok {
		p.Temperature = &v
	}
	return p
}

func onOff(b bool) string {
	if b {
		return PayloadOn
	}
	return PayloadOff
}

func nameOrNil(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}
