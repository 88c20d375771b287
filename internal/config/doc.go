// Package config provides configuration file management for daikin-humid.
//
// The configuration is a YAML file that names the device to poll and
// configures the optional HTTP API and MQTT bridge. The file follows
// OS-specific conventions for its location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/daikin-humid/config.yaml or $HOME/.config/daikin-humid/config.yaml
//   - macOS: $HOME/.config/daikin-humid/config.yaml
//   - Windows: %LOCALAPPDATA%\daikin-humid\config.yaml
//
// Every command also accepts --config to point at another file.
//
// # File Format
//
//	version: 1
//	device:
//	    host: 192.168.1.40
//	    nickname: bedroom
//	    poll_interval: 30s
//	    timeout: 10s
//	http:
//	    listen: :8080
//	mqtt:
//	    broker: tcp://localhost:1883
//	    discovery_prefix: homeassistant
//	    topic_prefix: daikin_humid
//	    client_id: daikin-humid
//	log_level: info
//
// Empty fields take their defaults on Load. Command-line flags override the
// file; callers apply them to the loaded Config before calling Validate.
//
// # Usage Example
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    return err
//	}
//	if host != "" {
//	    cfg.Device.Host = host
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// Load and Save are serialised by a package mutex and Save writes
// atomically. A *Config itself is not synchronised.
package config
