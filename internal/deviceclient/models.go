package deviceclient

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/muurk/daikin-humid/internal/controls"
	"github.com/muurk/daikin-humid/internal/protocol"
)

// ControlInfo is the decoded reply of get_control_info.
//
// Codes are kept exactly as the device sent them; an unknown code stays in
// the field and Name() on it returns "". Keys this type does not name are
// still available through Raw.
type ControlInfo struct {
	Return   string
	Power    controls.Power
	Mode     controls.Mode
	Humidity controls.Humidity
	FanSpeed controls.FanSpeed

	Raw protocol.Response
}

// ControlInfoFrom decodes a control info response.
func ControlInfoFrom(r protocol.Response) ControlInfo {
	return ControlInfo{
		Return:   r.Value(protocol.KeyReturn),
		Power:    controls.Power(r.Value(protocol.KeyPower)),
		Mode:     controls.Mode(r.Value(protocol.KeyMode)),
		Humidity: controls.Humidity(r.Value(protocol.KeyHumidity)),
		FanSpeed: controls.FanSpeed(r.Value(protocol.KeyFanSpeed)),
		Raw:      r,
	}
}

// OK reports whether the device answered ret=OK.
func (c ControlInfo) OK() bool {
	return c.Return == protocol.ReturnOK
}

// IsOn reports whether the unit is powered on.
func (c ControlInfo) IsOn() bool {
	return c.Power == controls.PowerOn
}

// TargetHumidity is the target relative humidity implied by the humidity
// level.
func (c ControlInfo) TargetHumidity() int {
	return controls.TargetForHumidity(c.Humidity)
}

// FanPercentage is the fan speed on the percentage scale. It reports false
// for auto and unknown codes.
func (c ControlInfo) FanPercentage() (int, bool) {
	return controls.FanSpeedToPercentage(c.FanSpeed)
}

// SensorInfo is the decoded reply of get_sensor_info.
//
// Values are the device's strings. Depending on firmware the current
// humidity arrives as "hhum", "humi" or both.
type SensorInfo struct {
	PM25        string
	HHum        string
	Humi        string
	Temperature string

	Raw protocol.Response
}

// SensorInfoFrom decodes a sensor info response.
func SensorInfoFrom(r protocol.Response) SensorInfo {
	return SensorInfo{
		PM25:        r.Value(protocol.KeyPM25),
		HHum:        r.Value(protocol.KeyHumidityHHum),
		Humi:        r.Value(protocol.KeyHumidityHumi),
		Temperature: r.Value(protocol.KeyTemperature),
		Raw:         r,
	}
}

// CurrentHumidity returns the measured relative humidity as sent by the
// device, preferring "hhum" over "humi".
func (s SensorInfo) CurrentHumidity() (string, bool) {
	if v, ok := s.Raw.Get(protocol.KeyHumidityHHum); ok {
		return v, true
	}
	return s.Raw.Get(protocol.KeyHumidityHumi)
}

// PM25Value returns the PM2.5 reading in µg/m³.
func (s SensorInfo) PM25Value() (int, bool) {
	return atoi(s.PM25)
}

// HumidityValue returns the measured relative humidity in percent.
func (s SensorInfo) HumidityValue() (int, bool) {
	if v, ok := atoi(s.HHum); ok {
		return v, true
	}
	return atoi(s.Humi)
}

// TemperatureValue returns the measured temperature in °C.
func (s SensorInfo) TemperatureValue() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s.Temperature), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// UnitStatus is the decoded reply of get_unit_status.
type UnitStatus struct {
	FilterSign string

	Raw protocol.Response
}

// UnitStatusFrom decodes a unit status response.
func UnitStatusFrom(r protocol.Response) UnitStatus {
	return UnitStatus{
		FilterSign: r.Value(protocol.KeyFilterSign),
		Raw:        r,
	}
}

// FilterNeedsAttention reports whether the filter sign is lit.
func (u UnitStatus) FilterNeedsAttention() bool {
	return u.FilterSign == "1"
}

// BasicInfo is the decoded reply of basic_info.
type BasicInfo struct {
	Return   string
	Name     string // Percent-decoded device name
	MAC      string
	Type     string
	Region   string
	Firmware string

	Raw protocol.Response
}

// BasicInfoFrom decodes a basic info response. The device percent-encodes
// its name; a name that fails to decode is kept verbatim.
func BasicInfoFrom(r protocol.Response) BasicInfo {
	name := r.Value(protocol.KeyName)
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	return BasicInfo{
		Return:   r.Value(protocol.KeyReturn),
		Name:     name,
		MAC:      r.Value(protocol.KeyMAC),
		Type:     r.Value(protocol.KeyType),
		Region:   r.Value(protocol.KeyRegion),
		Firmware: r.Value(protocol.KeyFirmware),
		Raw:      r,
	}
}

// Title is the display name for a device: its own name, or host when it
// has none.
func (b BasicInfo) Title(host string) string {
	if b.Name != "" {
		return b.Name
	}
	return host
}

// UniqueID identifies a device across address changes: its MAC, then its
// name, then host.
func (b BasicInfo) UniqueID(host string) string {
	switch {
	case b.MAC != "":
		return b.MAC
	case b.Name != "":
		return b.Name
	default:
		return host
	}
}

// ModelInfo is the decoded reply of get_model_info.
type ModelInfo struct {
	Return string
	Model  string

	Raw protocol.Response
}

// ModelInfoFrom decodes a model info response.
func ModelInfoFrom(r protocol.Response) ModelInfo {
	return ModelInfo{
		Return: r.Value(protocol.KeyReturn),
		Model:  r.Value(protocol.KeyModel),
		Raw:    r,
	}
}

// ControlCommand is a partial update of the control attributes.
// Nil fields are left unchanged on the device.
type ControlCommand struct {
	Power    *controls.Power
	Mode     *controls.Mode
	Humidity *controls.Humidity
	FanSpeed *controls.FanSpeed
}

// WithPower returns a copy of c that sets the power state.
func (c ControlCommand) WithPower(p controls.Power) ControlCommand {
	c.Power = &p
	return c
}

// WithMode returns a copy of c that sets the operating mode.
func (c ControlCommand) WithMode(m controls.Mode) ControlCommand {
	c.Mode = &m
	return c
}

// WithHumidity returns a copy of c that sets the humidity level.
func (c ControlCommand) WithHumidity(h controls.Humidity) ControlCommand {
	c.Humidity = &h
	return c
}

// WithFanSpeed returns a copy of c that sets the fan speed.
func (c ControlCommand) WithFanSpeed(f controls.FanSpeed) ControlCommand {
	c.FanSpeed = &f
	return c
}

// IsEmpty reports whether the command changes nothing.
func (c ControlCommand) IsEmpty() bool {
	return c.Power == nil && c.Mode == nil && c.Humidity == nil && c.FanSpeed == nil
}

// Fields returns the present attributes keyed by conceptual name.
func (c ControlCommand) Fields() map[protocol.Param]string {
	fields := make(map[protocol.Param]string, 4)
	if c.Power != nil {
		fields[protocol.ParamPower] = string(*c.Power)
	}
	if c.Mode != nil {
		fields[protocol.ParamMode] = string(*c.Mode)
	}
	if c.Humidity != nil {
		fields[protocol.ParamHumidity] = string(*c.Humidity)
	}
	if c.FanSpeed != nil {
		fields[protocol.ParamFanSpeed] = string(*c.FanSpeed)
	}
	return fields
}

// String renders the command as the query it produces.
func (c ControlCommand) String() string {
	return protocol.Serialize(c.Fields()).Encode()
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
