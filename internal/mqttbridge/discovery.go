package mqttbridge

import (
	"encoding/json"
	"fmt"

	"github.com/muurk/daikin-humid/internal/controls"
)

const manufacturer = "Daikin"

// Device identifies the unit in Home Assistant's device registry.
type Device struct {
	ID       string // Stable identifier, usually the MAC address
	Name     string
	Model    string
	Firmware string
}

type deviceBlock struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model,omitempty"`
	SWVersion    string   `json:"sw_version,omitempty"`
}

// entityBase carries the keys every discovery payload shares. A nil Name
// makes Home Assistant use the device name.
type entityBase struct {
	Name              *string     `json:"name"`
	UniqueID          string      `json:"unique_id"`
	ObjectID          string      `json:"object_id"`
	AvailabilityTopic string      `json:"availability_topic"`
	Device            deviceBlock `json:"device"`
}

type humidifierConfiguration struct {
	entityBase
	DeviceClass                 string   `json:"device_class"`
	StateTopic                  string   `json:"state_topic"`
	StateValueTemplate          string   `json:"state_value_template"`
	CommandTopic                string   `json:"command_topic"`
	PayloadOn                   string   `json:"payload_on"`
	PayloadOff                  string   `json:"payload_off"`
	TargetHumidityStateTopic    string   `json:"target_humidity_state_topic"`
	TargetHumidityStateTemplate string   `json:"target_humidity_state_template"`
	TargetHumidityCommandTopic  string   `json:"target_humidity_command_topic"`
	CurrentHumidityTopic        string   `json:"current_humidity_topic"`
	CurrentHumidityTemplate     string   `json:"current_humidity_template"`
	ModeStateTopic              string   `json:"mode_state_topic"`
	ModeStateTemplate           string   `json:"mode_state_template"`
	ModeCommandTopic            string   `json:"mode_command_topic"`
	Modes                       []string `json:"modes"`
	MinHumidity                 int      `json:"min_humidity"`
	MaxHumidity                 int      `json:"max_humidity"`
}

type fanConfiguration struct {
	entityBase
	StateTopic              string   `json:"state_topic"`
	StateValueTemplate      string   `json:"state_value_template"`
	CommandTopic            string   `json:"command_topic"`
	PayloadOn               string   `json:"payload_on"`
	PayloadOff              string   `json:"payload_off"`
	PercentageStateTopic    string   `json:"percentage_state_topic"`
	PercentageValueTemplate string   `json:"percentage_value_template"`
	PercentageCommandTopic  string   `json:"percentage_command_topic"`
	PresetModeStateTopic    string   `json:"preset_mode_state_topic"`
	PresetModeValueTemplate string   `json:"preset_mode_value_template"`
	PresetModeCommandTopic  string   `json:"preset_mode_command_topic"`
	PresetModes             []string `json:"preset_modes"`
}

type selectConfiguration struct {
	entityBase
	StateTopic    string   `json:"state_topic"`
	ValueTemplate string   `json:"value_template"`
	CommandTopic  string   `json:"command_topic"`
	Options       []string `json:"options"`
}

type sensorConfiguration struct {
	entityBase
	DeviceClass       string `json:"device_class,omitempty"`
	StateClass        string `json:"state_class,omitempty"`
	StateTopic        string `json:"state_topic"`
	ValueTemplate     string `json:"value_template"`
	UnitOfMeasurement string `json:"unit_of_measurement,omitempty"`
}

type binarySensorConfiguration struct {
	entityBase
	DeviceClass   string `json:"device_class"`
	StateTopic    string `json:"state_topic"`
	ValueTemplate string `json:"value_template"`
	PayloadOn     string `json:"payload_on"`
	PayloadOff    string `json:"payload_off"`
}

// Message is one retained discovery config.
type Message struct {
	Topic   string
	Payload []byte
}

type sensorDefinition struct {
	object string
	name   string
	class  string
	unit   string
	field  string
}

var sensorDefinitions = []sensorDefinition{
	{"pm25", "PM2.5", "pm25", "µg/m³", "pm25"},
	{"humidity", "Humidity", "humidity", "%", "humidity"},
	{"temperature", "Temperature", "temperature", "°C", "temperature"},
}

func template(field string) string {
	return fmt.Sprintf("{{ value_json.%s }}", field)
}

func strPtr(s string) *string {
	return &s
}

// DiscoveryMessages builds the discovery configs for every entity the
// bridge exposes.
func DiscoveryMessages(discoveryPrefix string, topics Topics, device Device) ([]Message, error) {
	node := NodeID(device.ID)
	block := deviceBlock{
		Identifiers:  []string{device.ID},
		Name:         device.Name,
		Manufacturer: manufacturer,
		Model:        device.Model,
		SWVersion:    device.Firmware,
	}
	base := func(object string, name *string) entityBase {
		return entityBase{
			Name:              name,
			UniqueID:          node + "_" + object,
			ObjectID:          node + "_" + object,
			AvailabilityTopic: topics.Availability(),
			Device:            block,
		}
	}

	type entry struct {
		component, object string
		config            any
	}
	entries := []entry{
		{"humidifier", "humidifier", humidifierConfiguration{
			entityBase:                  base("humidifier", nil),
			DeviceClass:                 "humidifier",
			StateTopic:                  topics.State(),
			StateValueTemplate:          template("power"),
			CommandTopic:                topics.Command(EntityHumidifier, FieldPower),
			PayloadOn:                   PayloadOn,
			PayloadOff:                  PayloadOff,
			TargetHumidityStateTopic:    topics.State(),
			TargetHumidityStateTemplate: template("target_humidity"),
			TargetHumidityCommandTopic:  topics.Command(EntityHumidifier, FieldTargetHumidity),
			CurrentHumidityTopic:        topics.State(),
			CurrentHumidityTemplate:     template("humidity"),
			ModeStateTopic:              topics.State(),
			ModeStateTemplate:           template("mode"),
			ModeCommandTopic:            topics.Command(EntityHumidifier, FieldMode),
			Modes:                       controls.ModeNames(),
			MinHumidity:                 0,
			MaxHumidity:                 100,
		}},
		{"fan", "fan", fanConfiguration{
			entityBase:              base("fan", strPtr("Fan")),
			StateTopic:              topics.State(),
			StateValueTemplate:      template("power"),
			CommandTopic:            topics.Command(EntityFan, FieldPower),
			PayloadOn:               PayloadOn,
			PayloadOff:              PayloadOff,
			PercentageStateTopic:    topics.State(),
			PercentageValueTemplate: template("fan_percentage"),
			PercentageCommandTopic:  topics.Command(EntityFan, FieldPercentage),
			PresetModeStateTopic:    topics.State(),
			PresetModeValueTemplate: template("fan_preset"),
			PresetModeCommandTopic:  topics.Command(EntityFan, FieldPreset),
			PresetModes:             []string{controls.PresetAuto},
		}},
		{"select", "humidity_level", selectConfiguration{
			entityBase:    base("humidity_level", strPtr("Humidity level")),
			StateTopic:    topics.State(),
			ValueTemplate: template("humidity_level"),
			CommandTopic:  topics.Command(EntityHumidityLevel, FieldOption),
			Options:       controls.HumidityNames(),
		}},
	}
	for _, s := range sensorDefinitions {
		entries = append(entries, entry{"sensor", s.object, sensorConfiguration{
			entityBase:        base(s.object, strPtr(s.name)),
			DeviceClass:       s.class,
			StateClass:        "measurement",
			StateTopic:        topics.State(),
			ValueTemplate:     template(s.field),
			UnitOfMeasurement: s.unit,
		}})
	}
	entries = append(entries, entry{"binary_sensor", "filter", binarySensorConfiguration{
		entityBase:    base("filter", strPtr("Filter")),
		DeviceClass:   "problem",
		StateTopic:    topics.State(),
		ValueTemplate: template("filter"),
		PayloadOn:     PayloadOn,
		PayloadOff:    PayloadOff,
	}})

	messages := make([]Message, 0, len(entries))
	for _, e := range entries {
		payload, err := json.Marshal(e.config)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s discovery config: %w", e.object, err)
		}
		messages = append(messages, Message{
			Topic:   DiscoveryTopic(discoveryPrefix, e.component, node, e.object),
			Payload: payload,
		})
	}
	return messages, nil
}
