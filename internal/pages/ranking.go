package pages

import (
	"context"

	"github.com/bobmcallan/raymonds/internal/models"
	"github.com/bobmcallan/raymonds/internal/view"
)

// RankingRow is one display row of a ranking or search table.
type RankingRow struct {
	Company   models.CompanySummary
	Score     view.Score
	Badge     view.Badge
	InCompare bool
}

func (p *Pages) rankingRows(items []models.CompanySummary) []RankingRow {
	rows := make([]RankingRow, 0, len(items))
	for _, c := range items {
		rows = append(rows, RankingRow{
			Company:   c,
			Score:     view.ScoreDisplay(c.RaymondsIndex, 0, 0),
			Badge:     view.GradeBadge(c.Grade),
			InCompare: p.inCompare(c.ID),
		})
	}
	return rows
}

// RankingPage is one filtered page of the ranking.
type RankingPage struct {
	Header      Header
	Params      models.RankingParams
	Result      Section[models.RankingPage]
	Rows        []RankingRow
	Grades      []models.Grade
	CompareFull bool
	PrevPage    int // 0 when on the first page
	NextPage    int // 0 when on the last page
}

// Empty reports a successful fetch with no matching companies.
func (r RankingPage) Empty() bool {
	if r.Result.Empty() {
		return true
	}
	d := r.Result.Data()
	return r.Result.Ready() && len(d.Items) == 0
}

// Ranking fetches one page of the ranking.
func (p *Pages) Ranking(ctx context.Context, params models.RankingParams) RankingPage {
	params = params.Normalized()
	page := RankingPage{
		Header:      p.Header(),
		Params:      params,
		Result:      newSection(p.hooks.Ranking(ctx, params)),
		Grades:      models.Grades,
		CompareFull: p.compareFull(),
	}
	if d := page.Result.Data(); d != nil {
		page.Rows = p.rankingRows(d.Items)
		if d.Page > 1 {
			page.PrevPage = d.Page - 1
		}
		if d.HasNext() {
			page.NextPage = d.Page + 1
		}
	}
	return page
}

// SearchPage shows search hits for a query.
type SearchPage struct {
	Header Header
	Query  string
	Result Section[models.SearchResults]
	Rows   []RankingRow
	Limit  int
}

// Empty reports a completed search with no hits.
func (s SearchPage) Empty() bool {
	if s.Result.Empty() {
		return true
	}
	d := s.Result.Data()
	return s.Result.Ready() && len(d.Results) == 0
}

// Search runs a search. An empty query leaves the section disabled.
func (p *Pages) Search(ctx context.Context, q string) SearchPage {
	page := SearchPage{
		Header: p.Header(),
		Query:  q,
		Result: newSection(p.hooks.Search(ctx, q, p.searchLimit)),
		Limit:  p.searchLimit,
	}
	if d := page.Result.Data(); d != nil {
		page.Rows = p.rankingRows(d.Results)
	}
	return page
}
