package pages

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/raymonds/internal/models"
	"github.com/bobmcallan/raymonds/internal/view"
)

// HomePage is the landing page: aggregate statistics and the top ranks.
type HomePage struct {
	Header     Header
	Statistics Section[models.Statistics]
	Stats      view.Stats
	Top        Section[models.RankingPage]
	TopRows    []RankingRow
}

// Home fetches statistics and the top of the ranking concurrently.
func (p *Pages) Home(ctx context.Context) HomePage {
	page := HomePage{Header: p.Header()}

	var g errgroup.Group
	g.Go(func() error {
		page.Statistics = newSection(p.hooks.Statistics(ctx))
		return nil
	})
	g.Go(func() error {
		page.Top = newSection(p.hooks.Ranking(ctx, models.RankingParams{Page: 1, PageSize: p.topN}))
		return nil
	})
	_ = g.Wait()

	page.Stats = view.StatisticsView(page.Statistics.Data())
	if top := page.Top.Data(); top != nil {
		page.TopRows = p.rankingRows(top.Items)
	}
	p.logger.Debug().
		Str("statistics", string(page.Statistics.Result.Status)).
		Str("top", string(page.Top.Result.Status)).
		Msg("Home page built")
	return page
}
