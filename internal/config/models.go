package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// CurrentVersion is the config file format version this build reads and writes.
const CurrentVersion = 1

// Default values applied to fields left empty in the file.
const (
	DefaultPollInterval    = 30 * time.Second
	DefaultTimeout         = 10 * time.Second
	DefaultListen          = ":8080"
	DefaultDiscoveryPrefix = "homeassistant"
	DefaultTopicPrefix     = "daikin_humid"
	DefaultClientID        = "daikin-humid"

	// MinPollInterval keeps the unit's small HTTP server from being hammered.
	MinPollInterval = 5 * time.Second
	// MaxTimeout matches the device client's own per-call bound.
	MaxTimeout = 10 * time.Second
)

// Config represents the entire configuration file.
type Config struct {
	Version  int          `yaml:"version"`
	Device   DeviceConfig `yaml:"device"`
	HTTP     HTTPConfig   `yaml:"http"`
	MQTT     MQTTConfig   `yaml:"mqtt"`
	LogLevel string       `yaml:"log_level,omitempty"` // debug, info, warn, error; empty = silent
}

// DeviceConfig describes the polled unit.
type DeviceConfig struct {
	Host         string        `yaml:"host"`               // IP address or hostname, optional :port
	Nickname     string        `yaml:"nickname,omitempty"` // Display name; the device's own name is used when empty
	PollInterval time.Duration `yaml:"poll_interval"`      // Time between refresh cycles
	Timeout      time.Duration `yaml:"timeout"`            // Per-request bound
}

// HTTPConfig configures the local state API.
type HTTPConfig struct {
	Listen string `yaml:"listen"` // host:port; empty disables the API
}

// MQTTConfig configures the Home Assistant bridge. The bridge is disabled
// when Broker is empty.
type MQTTConfig struct {
	Broker          string `yaml:"broker,omitempty"` // e.g. tcp://localhost:1883
	Username        string `yaml:"username,omitempty"`
	Password        string `yaml:"password,omitempty"`
	DiscoveryPrefix string `yaml:"discovery_prefix"`
	TopicPrefix     string `yaml:"topic_prefix"`
	ClientID        string `yaml:"client_id"`
}

// Enabled reports whether a broker is configured.
func (m MQTTConfig) Enabled() bool {
	return m.Broker != ""
}

// New creates a Config with default values and no device.
func New() *Config {
	c := &Config{Version: CurrentVersion}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills empty fields with their defaults. It never overwrites
// a value that is set.
func (c *Config) ApplyDefaults() {
	if c.Version == 0 {
		c.Version = CurrentVersion
	}
	if c.Device.PollInterval == 0 {
		c.Device.PollInterval = DefaultPollInterval
	}
	if c.Device.Timeout == 0 {
		c.Device.Timeout = DefaultTimeout
	}
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = DefaultListen
	}
	if c.MQTT.DiscoveryPrefix == "" {
		c.MQTT.DiscoveryPrefix = DefaultDiscoveryPrefix
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = DefaultTopicPrefix
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = DefaultClientID
	}
}

// Validate checks that the configuration can drive a bridge. All problems
// are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Version != CurrentVersion {
		errs = append(errs, fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion))
	}
	if strings.TrimSpace(c.Device.Host) == "" {
		errs = append(errs, errors.New("device.host is required"))
	}
	if c.Device.PollInterval < MinPollInterval {
		errs = append(errs, fmt.Errorf("device.poll_interval must be at least %v, got %v", MinPollInterval, c.Device.PollInterval))
	}
	if c.Device.Timeout <= 0 || c.Device.Timeout > MaxTimeout {
		errs = append(errs, fmt.Errorf("device.timeout must be in (0, %v], got %v", MaxTimeout, c.Device.Timeout))
	}
	if c.MQTT.Enabled() {
		u, err := url.Parse(c.MQTT.Broker)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("mqtt.broker %q is not a broker URL (e.g. tcp://localhost:1883)", c.MQTT.Broker))
		}
		if strings.ContainsAny(c.MQTT.TopicPrefix, "#+") {
			errs = append(errs, fmt.Errorf("mqtt.topic_prefix %q must not contain wildcards", c.MQTT.TopicPrefix))
		}
	}

	return errors.Join(errs...)
}

// DisplayName is the nickname, or host when none is set.
func (c *Config) DisplayName() string {
	if c.Device.Nickname != "" {
		return c.Device.Nickname
	}
	return c.Device.Host
}
