package mqttbridge

import (
	"fmt"
	"strings"
)

// Availability payloads.
const (
	PayloadOnline  = "online"
	PayloadOffline = "offline"
)

// Switch payloads used for power and the filter sign.
const (
	PayloadOn  = "ON"
	PayloadOff = "OFF"
)

// Entities and the fields they accept commands for.
const (
	EntityHumidifier    = "humidifier"
	EntityFan           = "fan"
	EntityHumidityLevel = "humidity_level"

	FieldPower          = "power"
	FieldMode           = "mode"
	FieldTargetHumidity = "target_humidity"
	FieldPercentage     = "percentage"
	FieldPreset         = "preset"
	FieldOption         = "option"
)

// Topics names every topic the bridge uses under one prefix.
type Topics struct {
	Prefix string
}

// State is the retained JSON state document.
func (t Topics) State() string {
	return t.Prefix + "/state"
}

// Availability carries online/offline.
func (t Topics) Availability() string {
	return t.Prefix + "/availability"
}

// Command is the command topic for one entity field.
func (t Topics) Command(entity, field string) string {
	return fmt.Sprintf("%s/%s/%s/set", t.Prefix, entity, field)
}

// CommandFilter matches every command topic.
func (t Topics) CommandFilter() string {
	return t.Prefix + "/+/+/set"
}

// ParseCommand splits a command topic into entity and field.
func (t Topics) ParseCommand(topic string) (entity, field string, ok bool) {
	rest, found := strings.CutPrefix(topic, t.Prefix+"/")
	if !found {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[2] != "set" || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// DiscoveryTopic is the Home Assistant discovery config topic.
func DiscoveryTopic(discoveryPrefix, component, nodeID, objectID string) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", discoveryPrefix, component, nodeID, objectID)
}

// NodeID turns a device identifier into a topic-safe discovery node id.
func NodeID(id string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(id) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "daikin_humid"
	}
	return b.String()
}
