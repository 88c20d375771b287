// Package metrics exposes the coordinator's cached device state as
// Prometheus metrics.
//
// Register a Collector with a registry and subscribe its Observe method to
// the coordinator so refresh outcomes are counted:
//
//	collector := metrics.NewCollector(coord)
//	coord.Subscribe(collector.Observe)
//	registry.MustRegister(collector)
package metrics
