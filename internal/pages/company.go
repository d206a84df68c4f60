package pages

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/raymonds/internal/models"
	"github.com/bobmcallan/raymonds/internal/view"
)

// CompanyPage is the detail page of one company.
type CompanyPage struct {
	Header      Header
	ID          string
	Period      string
	Periods     []string
	Company     Section[models.CompanyScore]
	Stock       Section[models.StockPriceSeries]
	Score       view.Score
	Badge       view.Badge
	SubIndices  []view.SubIndexRow
	Flags       view.FlagPanel
	Narrative   []view.NarrativeSection
	Performance view.Performance
	InCompare   bool
	CompareFull bool
}

// Company fetches the score record and price series concurrently. An
// unknown period falls back to the default.
func (p *Pages) Company(ctx context.Context, id, period string) CompanyPage {
	id = strings.TrimSpace(id)
	if !models.ValidStockPeriod(period) {
		period = models.DefaultStockPeriod
	}
	page := CompanyPage{
		Header:      p.Header(),
		ID:          id,
		Period:      period,
		Periods:     models.StockPeriods,
		InCompare:   p.inCompare(id),
		CompareFull: p.compareFull(),
	}

	var g errgroup.Group
	g.Go(func() error {
		page.Company = newSection(p.hooks.Company(ctx, id))
		return nil
	})
	g.Go(func() error {
		page.Stock = newSection(p.hooks.StockPrices(ctx, id, period))
		return nil
	})
	_ = g.Wait()

	if c := page.Company.Data(); c != nil {
		page.Score = view.ScoreDisplay(c.RaymondsIndex, c.Rank, c.TotalRanked)
		page.Badge = view.GradeBadge(c.Grade)
		page.SubIndices = view.SubIndexRows(c)
		page.Flags = view.RiskFlagPanel(c)
		page.Narrative = view.Narrative(c)
	}
	page.Performance = view.PerformanceView(page.Stock.Data())
	return page
}
