package scheduler

import (
	"context"
	"time"
)

const defaultInterval = time.Hour

// Deactivator closes programs whose registration window ended by now.
type Deactivator interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int, error)
}

type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Run checks once immediately and then on every tick until ctx is done.
// Errors are logged and the loop keeps going.
func Run(ctx context.Context, d Deactivator, interval time.Duration, clock func() time.Time, logger Logger) {
	if interval <= 0 {
		interval = defaultInterval
	}
	if clock == nil {
		clock = time.Now
	}
	tick(ctx, d, clock, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx, d, clock, logger)
		}
	}
}

func tick(ctx context.Context, d Deactivator, clock func() time.Time, logger Logger) {
	n, err := d.DeactivateExpired(ctx, clock())
	if err != nil {
		if ctx.Err() == nil {
			logger.Error("deactivation check failed", "err", err)
		}
		return
	}
	if n > 0 {
		logger.Info("deactivation check closed programs", "count", n)
	}
}
