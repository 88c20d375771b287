package protocol

import (
	"net/url"
	"strings"
)

// Param is a conceptual control parameter name.
type Param string

// Control parameters accepted by set_control_info.
const (
	ParamPower    Param = "power"
	ParamMode     Param = "mode"
	ParamHumidity Param = "humidity"
	ParamFanSpeed Param = "fan_speed"
)

// paramKeys maps conceptual parameter names to the device's query keys.
var paramKeys = map[Param]string{
	ParamPower:    KeyPower,
	ParamMode:     KeyMode,
	ParamHumidity: KeyHumidity,
	ParamFanSpeed: KeyFanSpeed,
}

// Params lists the control parameters in request order.
var Params = []Param{ParamPower, ParamMode, ParamHumidity, ParamFanSpeed}

// DeviceKey returns the query key the device expects for p.
func (p Param) DeviceKey() (string, bool) {
	key, ok := paramKeys[p]
	return key, ok
}

// Serialize converts control parameters into query parameters.
//
// Only parameters present in fields are emitted, under their device key.
// Unknown parameter names are ignored. An empty or nil map yields empty
// values, which leaves every device attribute unchanged.
func Serialize(fields map[Param]string) url.Values {
	values := url.Values{}
	for _, p := range Params {
		v, ok := fields[p]
		if !ok {
			continue
		}
		values.Set(paramKeys[p], v)
	}
	return values
}

// Format renders a response back into wire format with sorted keys.
//
// Parse(Format(r)) equals r for any r produced by Parse whose values contain
// no ','.
func Format(r Response) string {
	keys := r.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+PairSeparator+r.fields[k])
	}
	return strings.Join(parts, FieldSeparator)
}
