package app

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/models"
	"github.com/bobmcallan/raymonds/internal/pages"
	"github.com/bobmcallan/raymonds/internal/query"
)

// warmCache pre-fetches the home page data on startup so the first page
// load is served from cache.
func warmCache(ctx context.Context, hooks *query.Hooks, logger *common.Logger) {
	if os.Getenv("RAYMONDS_WARM_CACHE") == "off" {
		logger.Info().Msg("Warm cache: disabled via RAYMONDS_WARM_CACHE=off")
		return
	}

	start := time.Now()

	var stats query.Result[models.Statistics]
	var top query.Result[models.RankingPage]
	var g errgroup.Group
	g.Go(func() error {
		stats = hooks.Statistics(ctx)
		return nil
	})
	g.Go(func() error {
		top = hooks.Ranking(ctx, models.RankingParams{Page: 1, PageSize: pages.DefaultTopN})
		return nil
	})
	_ = g.Wait()

	if stats.Err != nil || top.Err != nil {
		logger.Warn().
			AnErr("statistics", stats.Err).
			AnErr("ranking", top.Err).
			Msg("Warm cache: backend unavailable")
		return
	}

	logger.Info().
		Int("entries", hooks.Cache().Len()).
		Dur("elapsed", time.Since(start)).
		Msg("Warm cache: complete")
}
