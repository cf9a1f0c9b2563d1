package router

import (
	"context"
	"time"

	"fvepg/internal/app/config"
	"fvepg/internal/app/epg"

	"go.uber.org/zap"
)

// Schedule periodically refreshes the cached channel registry and guide.
func Schedule(ctx context.Context, aggregator *epg.Engine, conf *config.Config, duration time.Duration) {
	ticker := time.NewTicker(duration)
	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("The scheduling task has been stopped.")
				return
			case <-ticker.C:
				logger.Info("Start executing the scheduling task.")

				// Reload the channel registry
				if err := updateChannels(conf); err != nil {
					logger.Error("Failed to update channel list.", zap.Error(err))
				}

				// Re-aggregate the guide
				if err := updateEPG(ctx, aggregator); err != nil {
					logger.Error("Failed to update EPG.", zap.Error(err))
				}

				logger.Info("The scheduling task has been completed.")
			}
		}
	}()
}
