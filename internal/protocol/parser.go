package protocol

import (
	"sort"
	"strings"
)

// Field separators used by the device.
const (
	FieldSeparator = ","
	PairSeparator  = "="
)

// Well-known response keys. Firmware revisions differ in which of these they
// send; absence of a key is normal.
const (
	KeyReturn = "ret"

	// Control
	KeyPower    = "pow"
	KeyMode     = "mode"
	KeyHumidity = "humd"
	KeyFanSpeed = "airvol"

	// Sensors. Current humidity is reported as either "hhum" or "humi"
	// depending on firmware.
	KeyPM25         = "pm25"
	KeyHumidityHHum = "hhum"
	KeyHumidityHumi = "humi"
	KeyTemperature  = "temp"

	// Unit status
	KeyFilterSign = "filter_sign"

	// Basic and model info
	KeyName     = "name"
	KeyMAC      = "mac"
	KeyModel    = "model"
	KeyFirmware = "ver"
	KeyType     = "type"
	KeyRegion   = "reg"
)

// ReturnOK is the value of "ret" on a successful call.
const ReturnOK = "OK"

// Response is a parsed device response: field name to raw field value.
//
// A Response never holds converted values. It is immutable; use Map to get
// a mutable copy.
type Response struct {
	fields map[string]string
}

// Parse parses a device response body.
//
// Fields are separated by ',' and split on the first '=' only. Fragments
// without '=' and fragments with an empty key are dropped. When a key
// repeats, the last value wins. Parse never fails.
func Parse(text string) Response {
	fields := make(map[string]string)
	if strings.TrimSpace(text) == "" {
		return Response{fields: fields}
	}

	for _, fragment := range strings.Split(text, FieldSeparator) {
		key, value, ok := strings.Cut(fragment, PairSeparator)
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		fields[key] = strings.TrimSpace(value)
	}

	return Response{fields: fields}
}

// NewResponse builds a Response from an existing map. The map is copied.
func NewResponse(fields map[string]string) Response {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return Response{fields: copied}
}

// Get returns the raw value for key and whether it was present.
func (r Response) Get(key string) (string, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Value returns the raw value for key, or "" when absent.
func (r Response) Value(key string) string {
	return r.fields[key]
}

// Has reports whether key was present in the response.
func (r Response) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// Len returns the number of fields.
func (r Response) Len() int {
	return len(r.fields)
}

// Keys returns the field names in sorted order.
func (r Response) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the underlying fields.
func (r Response) Map() map[string]string {
	out := make(map[string]string, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

// Equal reports whether both responses hold exactly the same fields.
func (r Response) Equal(other Response) bool {
	if len(r.fields) != len(other.fields) {
		return false
	}
	for k, v := range r.fields {
		if ov, ok := other.fields[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// String renders the response in wire format with sorted keys.
func (r Response) String() string {
	return Format(r)
}
