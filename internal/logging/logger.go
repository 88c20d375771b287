package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "DAIKIN_HUMID_LOG_LEVEL"

// maxBodyDump bounds how much of a device response is copied into a log entry.
const maxBodyDump = 256

// New creates a logger with the specified level.
// If level is empty, it checks the DAIKIN_HUMID_LOG_LEVEL environment variable.
// If neither is set, a no-op logger is returned.
func New(level string) (*zap.Logger, error) {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		return zap.NewNop(), nil
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(level)),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}

// NewFromEnv creates a logger from DAIKIN_HUMID_LOG_LEVEL only. CLI commands
// use it to stay silent unless the user asks for logs.
func NewFromEnv() (*zap.Logger, error) {
	return New("")
}

// ParseLevel maps a level name to a zap level. Unknown names map to info,
// since a level that is set at all means the user wants output.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// Sync flushes any buffered log entries.
func Sync(l *zap.Logger) {
	if l != nil {
		_ = l.Sync()
	}
}

// RequestFields describes an outgoing device request.
func RequestFields(method, url string) []zap.Field {
	return []zap.Field{
		zap.String("method", method),
		zap.String("url", url),
	}
}

// ResponseFields describes a device response. The body is truncated and
// non-printable bytes are replaced so a misbehaving device cannot flood or
// corrupt the log.
func ResponseFields(status int, body []byte) []zap.Field {
	return []zap.Field{
		zap.Int("status_code", status),
		zap.Int("length", len(body)),
		zap.String("body", asciiDump(body)),
	}
}

// HTTPRequestFields describes a request served by the local HTTP API.
func HTTPRequestFields(remoteAddr, method, path string, status int, elapsed time.Duration) []zap.Field {
	return []zap.Field{
		zap.String("remote_addr", remoteAddr),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", status),
		zap.Duration("elapsed", elapsed),
	}
}

// ConnectionFields describes a connection event on a streaming client.
func ConnectionFields(remoteAddr, event string) []zap.Field {
	return []zap.Field{
		zap.String("remote_addr", remoteAddr),
		zap.String("event", event),
	}
}

func asciiDump(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	truncated := false
	if len(data) > maxBodyDump {
		data = data[:maxBodyDump]
		truncated = true
	}

	result := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			result[i] = b
		} else {
			result[i] = '.'
		}
	}
	if truncated {
		return string(result) + "..."
	}
	return string(result)
}
