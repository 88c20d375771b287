// Package mqttbridge exposes a polled humidifier to Home Assistant over MQTT.
//
// The bridge publishes retained discovery configs for a humidifier, a fan,
// a humidity level select, PM2.5, humidity and temperature sensors and a
// filter binary sensor. All entities read one retained JSON document on
// <prefix>/state. Availability is published on <prefix>/availability as
// online/offline and falls to offline after a failed refresh cycle or when
// the bridge disconnects (via the MQTT will).
//
// Commands arrive on <prefix>/<entity>/<field>/set:
//
//	humidifier/power/set            ON | OFF
//	humidifier/mode/set             auto | eco | pollen | moisturize | circulator
//	humidifier/target_humidity/set  0-100, mapped to off/low/normal/high
//	humidity_level/option/set       off | low | normal | high
//	fan/power/set                   ON | OFF
//	fan/percentage/set              1-100, also powers the unit on
//	fan/preset/set                  auto, also powers the unit on
//
// Each command goes through Coordinator.SetControl, which refreshes
// afterwards, so the new state is published by the normal update path.
package mqttbridge
