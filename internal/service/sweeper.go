package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper unmounts per-session instances that have been idle too long.
type Sweeper interface {
	Sweep(maxIdle time.Duration) int
}

// RunSweeper calls every sweeper each interval until ctx is done. Sessions
// expire after the session TTL without an explicit End, so their instances
// would otherwise stay mounted forever.
func RunSweeper(ctx context.Context, interval, maxIdle time.Duration, logger *zap.Logger, sweepers ...Sweeper) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := 0
			for _, s := range sweepers {
				removed += s.Sweep(maxIdle)
			}
			if removed > 0 {
				logger.Info("unmounted idle sessions", zap.Int("count", removed))
			}
		}
	}
}
