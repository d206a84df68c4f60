// Package view projects domain records into display-ready values.
// Every function here is pure: the same inputs always yield the same output.
package view

import (
	"github.com/bobmcallan/raymonds/internal/clients/raymonds"
	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/models"
)

// Score is a formatted score with its colour and percentile bucket.
type Score struct {
	Text       string
	Color      common.ColorToken
	Percentile string
	Missing    bool
}

// ScoreDisplay formats a composite score. Rank and total feed the
// percentile bucket and may be zero when unknown.
func ScoreDisplay(score float64, rank, total int) Score {
	return Score{
		Text:       common.FormatScore(score),
		Color:      common.ScoreColor(score),
		Percentile: common.PercentileBucket(rank, total),
	}
}

// NullableScore formats a score that may be absent.
func NullableScore(score *float64) Score {
	return Score{
		Text:    common.FormatScorePtr(score),
		Color:   common.ScoreColorPtr(score),
		Missing: score == nil,
	}
}

// Badge is a grade label with its colour.
type Badge struct {
	Text  string
	Color common.ColorToken
	Tier  string
}

// GradeBadge colours a grade by position: the top two grades are emerald,
// the rest of the A tier green, B+ and B amber, B- orange and the C tier red.
func GradeBadge(g models.Grade) Badge {
	b := Badge{Text: g.String(), Tier: g.Tier()}
	switch g {
	case models.GradeAPlusPlus, models.GradeAPlus:
		b.Color = common.ColorEmerald
	case models.GradeA, models.GradeAMinus:
		b.Color = common.ColorGreen
	case models.GradeBPlus, models.GradeB:
		b.Color = common.ColorAmber
	case models.GradeBMinus:
		b.Color = common.ColorOrange
	case models.GradeCPlus, models.GradeC:
		b.Color = common.ColorRed
	default:
		b.Text = "N/A"
		b.Color = common.ColorGray
		b.Tier = ""
	}
	return b
}

// SubIndexRow is one sub-index line with a bar width in [0, 1].
type SubIndexRow struct {
	Index models.SubIndex
	Label string
	Score Score
	Bar   float64
}

// SubIndexRows lists the four sub-indices in canonical order.
func SubIndexRows(c *models.CompanyScore) []SubIndexRow {
	if c == nil {
		return nil
	}
	rows := make([]SubIndexRow, 0, len(models.SubIndices))
	for _, s := range c.SubIndexScores() {
		row := SubIndexRow{Index: s.Index, Label: s.Index.Label(), Score: NullableScore(s.Score)}
		if s.Score != nil {
			row.Bar = clamp01(*s.Score / common.ScoreCap)
		}
		rows = append(rows, row)
	}
	return rows
}

// ErrorMessage is the inline text shown in place of a failed section.
func ErrorMessage(err error) string {
	return raymonds.UserMessage(err)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
