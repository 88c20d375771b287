package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/muurk/daikin-humid/internal/controls"
	"github.com/muurk/daikin-humid/internal/coordinator"
)

const namespace = "daikin_humid"

// Source is the part of the coordinator the collector reads.
// *coordinator.Coordinator satisfies it.
type Source interface {
	CurrentSnapshot() *coordinator.Snapshot
	Status() coordinator.Status
}

// Collector exports the coordinator's cached device state.
//
// Collect never talks to the device; it reads whatever the last refresh
// cycle left behind. Gauges for values the device did not report are
// omitted from the scrape.
type Collector struct {
	source Source

	up          prometheus.Gauge
	lastSuccess prometheus.Gauge

	powerOn     prometheus.Gauge
	mode        *prometheus.GaugeVec
	humidity    *prometheus.GaugeVec
	fanSpeed    *prometheus.GaugeVec
	pm25        prometheus.Gauge
	humidityPct prometheus.Gauge
	temperature prometheus.Gauge
	filterSign  prometheus.Gauge

	refreshes *prometheus.CounterVec
}

// NewCollector creates a collector over source.
func NewCollector(source Source) *Collector {
	return &Collector{
		source: source,
		up: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "up",
			Help:      "Last refresh cycle success (1=ok, 0=error or never polled)",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Completion time of the last successful refresh (epoch seconds)",
		}),
		powerOn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "power_on",
			Help:      "1 if the unit is powered on",
		}),
		mode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mode",
			Help:      "Operating mode (1 for the active mode)",
		}, []string{"mode"}),
		humidity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "humidity_level",
			Help:      "Humidification level (1 for the active level)",
		}, []string{"level"}),
		fanSpeed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fan_speed",
			Help:      "Fan speed (1 for the active speed)",
		}, []string{"speed"}),
		pm25: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pm25_micrograms",
			Help:      "PM2.5 concentration (ug/m3)",
		}),
		humidityPct: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "humidity_percent",
			Help:      "Current relative humidity (%)",
		}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temperature_celsius",
			Help:      "Room temperature (C)",
		}),
		filterSign: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "filter_sign",
			Help:      "1 if the unit reports the filter needs attention",
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Completed refresh cycles by result",
		}, []string{"result"}),
	}
}

// Observe counts a completed cycle. Pass it to Coordinator.Subscribe.
func (c *Collector) Observe(u coordinator.Update) {
	if u.OK() {
		c.refreshes.WithLabelValues("success").Inc()
		return
	}
	c.refreshes.WithLabelValues("failure").Inc()
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.up.Describe(ch)
	c.lastSuccess.Describe(ch)
	c.powerOn.Describe(ch)
	c.mode.Describe(ch)
	c.humidity.Describe(ch)
	c.fanSpeed.Describe(ch)
	c.pm25.Describe(ch)
	c.humidityPct.Describe(ch)
	c.temperature.Describe(ch)
	c.filterSign.Describe(ch)
	c.refreshes.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	status := c.source.Status()
	snap := c.source.CurrentSnapshot()

	if status.State == coordinator.StateReady {
		c.up.Set(1)
	} else {
		c.up.Set(0)
	}
	c.up.Collect(ch)
	c.refreshes.Collect(ch)

	if snap == nil {
		return
	}

	if !status.LastSuccess.IsZero() {
		c.lastSuccess.Set(unixSeconds(status.LastSuccess))
		c.lastSuccess.Collect(ch)
	}

	control := snap.ControlInfo()
	if control.Power.Valid() {
		c.powerOn.Set(boolValue(control.IsOn()))
		c.powerOn.Collect(ch)
	}

	c.mode.Reset()
	if control.Mode.Valid() {
		for _, m := range controls.Modes() {
			c.mode.WithLabelValues(m.Name()).Set(boolValue(m == control.Mode))
		}
	}
	c.mode.Collect(ch)

	c.humidity.Reset()
	if control.Humidity.Valid() {
		for _, h := range controls.Humidities() {
			c.humidity.WithLabelValues(h.Name()).Set(boolValue(h == control.Humidity))
		}
	}
	c.humidity.Collect(ch)

	c.fanSpeed.Reset()
	if control.FanSpeed.Valid() {
		for _, f := range controls.FanSpeeds() {
			c.fanSpeed.WithLabelValues(f.Name()).Set(boolValue(f == control.FanSpeed))
		}
	}
	c.fanSpeed.Collect(ch)

	sensors := snap.SensorInfo()
	if v, ok := sensors.PM25Value(); ok {
		c.pm25.Set(float64(v))
		c.pm25.Collect(ch)
	}
	if v, ok := sensors.HumidityValue(); ok {
		c.humidityPct.Set(float64(v))
		c.humidityPct.Collect(ch)
	}
	if v, ok := sensors.TemperatureValue(); ok {
		c.temperature.Set(v)
		c.temperature.Collect(ch)
	}

	unit := snap.UnitStatus()
	if unit.FilterSign != "" {
		c.filterSign.Set(boolValue(unit.FilterNeedsAttention()))
		c.filterSign.Collect(ch)
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
