package view

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/models"
)

// Painter decorates a score or grade token for a particular output, such
// as a terminal. A nil Painter leaves text unchanged.
type Painter func(text string, color common.ColorToken) string

func (p Painter) paint(text string, color common.ColorToken) string {
	if p == nil {
		return text
	}
	return p(text, color)
}

// CompanyMarkdown formats a company detail page. series may be nil.
func CompanyMarkdown(c *models.CompanyScore, series *models.StockPriceSeries, paint Painter) string {
	if c == nil {
		return "No company data.\n"
	}
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s (%s)\n\n", c.CompanyName, c.Ticker))
	if c.Sector != "" || c.Market != "" {
		sb.WriteString(fmt.Sprintf("**Sector:** %s | **Market:** %s\n", dash(c.Sector), dash(c.Market)))
	}
	if c.FiscalYear > 0 {
		sb.WriteString(fmt.Sprintf("**Fiscal Year:** %d\n", c.FiscalYear))
	}

	score := ScoreDisplay(c.RaymondsIndex, c.Rank, c.TotalRanked)
	badge := GradeBadge(c.Grade)
	sb.WriteString(fmt.Sprintf("**RaymondsIndex:** %s | **Grade:** %s",
		paint.paint(score.Text, score.Color), paint.paint(badge.Text, badge.Color)))
	if c.Rank > 0 {
		sb.WriteString(fmt.Sprintf(" | **Rank:** %s", common.FormatCount(c.Rank)))
		if c.TotalRanked > 0 {
			sb.WriteString(fmt.Sprintf(" of %s", common.FormatCount(c.TotalRanked)))
		}
	}
	if score.Percentile != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", score.Percentile))
	}
	sb.WriteString("\n\n")

	sb.WriteString("## Sub-Indices\n\n")
	sb.WriteString("| Index | Name | Score |\n")
	sb.WriteString("|-------|------|-------|\n")
	for _, row := range SubIndexRows(c) {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", row.Index, row.Label, paint.paint(row.Score.Text, row.Score.Color)))
	}
	sb.WriteString("\n")

	panel := RiskFlagPanel(c)
	sb.WriteString("## Risk Flags\n\n")
	if panel.Empty() {
		sb.WriteString("No risk flags.\n\n")
	} else {
		for _, f := range panel.Flags {
			sb.WriteString(fmt.Sprintf("- %s %s\n", paint.paint(strings.ToUpper(string(f.Severity)), f.Severity.Color()), f.Text))
		}
		if panel.Violations > 0 {
			sb.WriteString(fmt.Sprintf("\n**Violations:** %d\n", panel.Violations))
		}
		sb.WriteString("\n")
	}

	if sections := Narrative(c); len(sections) > 0 {
		sb.WriteString("## Analysis\n\n")
		for _, s := range sections {
			sb.WriteString(fmt.Sprintf("**%s:** %s\n\n", s.Title, s.Body))
		}
	}

	if series != nil {
		perf := PerformanceView(series)
		sb.WriteString(fmt.Sprintf("## Stock Performance (%s)\n\n", dash(perf.Period)))
		if perf.Empty {
			sb.WriteString("No price data.\n\n")
		} else {
			sb.WriteString("| Metric | Value |\n")
			sb.WriteString("|--------|-------|\n")
			sb.WriteString(fmt.Sprintf("| Start | %s |\n", perf.StartPrice))
			sb.WriteString(fmt.Sprintf("| End | %s |\n", perf.EndPrice))
			sb.WriteString(fmt.Sprintf("| Total Return | %s |\n", paint.paint(perf.TotalReturn, perf.ReturnColor)))
			sb.WriteString(fmt.Sprintf("| Monthly Volatility | %s |\n", perf.Volatility))
			sb.WriteString(fmt.Sprintf("| Average Month | %s |\n", perf.AverageMonthly))
			if perf.Best != nil {
				sb.WriteString(fmt.Sprintf("| Best Month | %s (%s) |\n", perf.Best.Text, perf.Best.Date))
			}
			if perf.Worst != nil {
				sb.WriteString(fmt.Sprintf("| Worst Month | %s (%s) |\n", perf.Worst.Text, perf.Worst.Date))
			}
			sb.WriteString(fmt.Sprintf("| Data Points | %d |\n\n", perf.DataPoints))
		}
	}

	return sb.String()
}

// RankingMarkdown formats one ranking page.
func RankingMarkdown(page *models.RankingPage, paint Painter) string {
	if page == nil || len(page.Items) == 0 {
		return "No companies match the current filters.\n"
	}
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Ranking (page %d of %d, %s companies)\n\n",
		page.Page, max(page.TotalPages, 1), common.FormatCount(page.Total)))
	sb.WriteString("| Rank | Company | Ticker | Sector | Score | Grade | Red Flags |\n")
	sb.WriteString("|------|---------|--------|--------|-------|-------|-----------|\n")
	for _, row := range page.Items {
		sb.WriteString(summaryRow(row, true, paint))
	}
	if page.HasNext() {
		sb.WriteString(fmt.Sprintf("\nNext page: %d\n", page.Page+1))
	}
	return sb.String()
}

// SearchMarkdown formats search hits.
func SearchMarkdown(res *models.SearchResults, paint Painter) string {
	if res == nil || len(res.Results) == 0 {
		q := ""
		if res != nil {
			q = res.Query
		}
		return fmt.Sprintf("No companies found for %q.\n", q)
	}
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Search: %s (%d results)\n\n", res.Query, len(res.Results)))
	sb.WriteString("| ID | Company | Ticker | Sector | Score | Grade | Red Flags |\n")
	sb.WriteString("|----|---------|--------|--------|-------|-------|-----------|\n")
	for _, row := range res.Results {
		sb.WriteString(summaryRow(row, false, paint))
	}
	return sb.String()
}

func summaryRow(row models.CompanySummary, rank bool, paint Painter) string {
	score := ScoreDisplay(row.RaymondsIndex, 0, 0)
	badge := GradeBadge(row.Grade)
	lead := row.ID
	if rank {
		lead = fmt.Sprintf("%d", row.Rank)
	}
	return fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %d |\n",
		lead, row.CompanyName, row.Ticker, dash(row.Sector),
		paint.paint(score.Text, score.Color), paint.paint(badge.Text, badge.Color), row.RedFlagCount)
}

// ComparisonMarkdown formats the comparison table; the best value in each
// row is bold.
func ComparisonMarkdown(items []models.CompanyScore, paint Painter) string {
	if len(items) == 0 {
		return "No companies selected for comparison.\n"
	}
	t := ComparisonTable(items)
	var sb strings.Builder

	sb.WriteString("# Comparison\n\n")
	sb.WriteString("| Metric | " + strings.Join(t.Columns, " | ") + " |\n")
	sb.WriteString("|--------|" + strings.Repeat("------|", len(t.Columns)) + "\n")
	for _, row := range t.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			text := paint.paint(c.Text, c.Color)
			if c.Best {
				text = "**" + text + "**"
			}
			cells[i] = text
		}
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", row.Label, strings.Join(cells, " | ")))
	}
	return sb.String()
}

// StatisticsMarkdown formats the aggregate statistics panel.
func StatisticsMarkdown(s *models.Statistics, paint Painter) string {
	v := StatisticsView(s)
	if v.Empty {
		return "No statistics available.\n"
	}
	var sb strings.Builder

	sb.WriteString("# RaymondsIndex Statistics\n\n")
	sb.WriteString(fmt.Sprintf("**Companies:** %s\n", v.Total))
	sb.WriteString(fmt.Sprintf("**Average Score:** %s\n", paint.paint(v.Average.Text, v.Average.Color)))
	sb.WriteString(fmt.Sprintf("**Median Score:** %s\n", paint.paint(v.Median.Text, v.Median.Color)))
	sb.WriteString(fmt.Sprintf("**Companies With Red Flags:** %s (%s)\n\n", v.RedFlag, v.RedFlagPct))

	sb.WriteString("## Grade Distribution\n\n")
	sb.WriteString("| Grade | Companies | Share |\n")
	sb.WriteString("|-------|-----------|-------|\n")
	for _, b := range v.Distribution {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n", paint.paint(b.Badge.Text, b.Badge.Color), b.Count, b.Text))
	}

	if len(v.Sectors) > 0 {
		sb.WriteString("\n## Sector Averages\n\n")
		sb.WriteString("| Sector | Average |\n")
		sb.WriteString("|--------|---------|\n")
		for _, r := range v.Sectors {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", r.Sector, paint.paint(r.Score.Text, r.Score.Color)))
		}
	}
	return sb.String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
