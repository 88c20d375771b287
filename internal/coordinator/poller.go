package coordinator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/daikin-humid/internal/deviceclient"
)

// Run refreshes immediately and then every interval until ctx is done.
// Failed cycles are logged and retried on the next tick only. Run returns
// ctx.Err() on shutdown.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", interval)
	}

	c.logger.Info("Polling started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Polling stopped")
			return ctx.Err()
		case <-ticker.C:
			c.poll(ctx)
		}
	}
}

func (c *Coordinator) poll(ctx context.Context) {
	u, err := c.RequestRefresh(ctx)
	if err == nil {
		return
	}
	if ctx.Err() != nil {
		return
	}

	fields := []zap.Field{
		zap.String("reason", deviceclient.ShortMessage(err)),
		zap.Bool("retryable", deviceclient.IsRetryable(err)),
		zap.Bool("has_snapshot", u.Snapshot != nil),
		zap.Error(err),
	}
	if deviceclient.IsAuthenticationFault(err) {
		c.logger.Error("Refresh failed", fields...)
		return
	}
	c.logger.Warn("Refresh failed", fields...)
}
