package app

import (
	"context"
	"time"

	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/query"
)

// startRefreshScheduler drops the statistics and ranking entries on a fixed
// interval and re-warms them, so an idle dashboard does not serve a stale
// landing page.
func startRefreshScheduler(ctx context.Context, hooks *query.Hooks, logger *common.Logger, interval time.Duration) {
	if interval <= 0 {
		interval = common.FreshnessQuery
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Refresh scheduler: stopped")
			return
		case <-ticker.C:
			refreshLanding(ctx, hooks, logger)
		}
	}
}

func refreshLanding(ctx context.Context, hooks *query.Hooks, logger *common.Logger) {
	dropped := hooks.Cache().Invalidate(query.ResourceStatistics)
	dropped += hooks.Cache().Invalidate(query.ResourceRanking)
	logger.Debug().Int("dropped", dropped).Msg("Refresh scheduler: invalidated landing data")
	warmCache(ctx, hooks, logger)
}
