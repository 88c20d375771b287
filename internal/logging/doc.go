// Package logging builds the zap loggers used across daikin-humid.
//
// There is no package-level logger. Commands build one with New and hand it
// to every component through its WithLogger option; components that receive
// nil fall back to a no-op logger.
//
// # Log Levels
//
//   - Debug: every device request and response body
//   - Info: refresh results, bridge connections, server lifecycle
//   - Warn: failed refresh cycles, dropped streaming clients
//   - Error: startup failures
//
// # Configuration
//
//	logger, err := logging.New(cfg.LogLevel)
//	if err != nil {
//	    return err
//	}
//	defer logging.Sync(logger)
//
// An empty level falls back to the DAIKIN_HUMID_LOG_LEVEL environment
// variable. When that is empty too the logger is silent, which keeps CLI
// output clean by default.
//
// # Structured Fields
//
// RequestFields and ResponseFields describe device exchanges:
//
//	logger.Debug("device response", logging.ResponseFields(200, body)...)
//
// Output goes to stderr in console format:
//
//	2025-11-25T10:30:45.123-0800  DEBUG  deviceclient/client.go:142  device response  {"status_code": 200, "length": 38, "body": "ret=OK,pow=1,mode=2,humd=2,airvol=3"}
package logging
