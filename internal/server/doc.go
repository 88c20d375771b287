// Package server implements the local HTTP API for a polled humidifier.
//
// The API serves the coordinator's cached state and lets clients trigger a
// refresh or send control commands. Device faults are mapped to status
// codes: authentication faults to 401, communication faults to 502 and
// protocol faults to 500.
//
// # Endpoints
//
//	GET  /healthz       liveness, always "ok"
//	GET  /api/state     current StateDocument; state "idle" before the first poll
//	POST /api/refresh   run (or join) a refresh cycle and return its result
//	POST /api/control   send a ControlRequest, then refresh
//	GET  /api/ws        websocket stream of StateDocuments, one per cycle
//	GET  /metrics       Prometheus metrics, when a Gatherer is configured
//
// # Control Requests
//
// Attributes are given by name, or as a target humidity / fan percentage:
//
//	{"power": "on", "mode": "eco", "fan_percentage": 60}
//
// Unknown names, out-of-range numbers and empty requests are rejected with
// 400 before anything is sent to the device.
//
// # Usage Example
//
//	srv := server.New(&server.Config{Listen: ":8080", Gatherer: registry}, coord,
//	    server.WithLogger(logger))
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is done and then shuts down gracefully, closing any
// open websocket streams.
package server
