package view

import (
	"sort"

	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/models"
)

// GradeBar is one bucket of the grade distribution chart.
type GradeBar struct {
	Badge Badge
	Count int
	Pct   float64
	Text  string
}

// SectorRow is one sector average, formatted.
type SectorRow struct {
	Sector string
	Score  Score
}

// Stats is the statistics panel.
type Stats struct {
	Total        string
	Average      Score
	Median       Score
	Distribution []GradeBar
	RedFlag      string
	RedFlagPct   string
	Sectors      []SectorRow
	Empty        bool
}

// StatisticsView formats aggregate statistics. Sectors are sorted by
// average score, best first, with ties broken by name.
func StatisticsView(s *models.Statistics) Stats {
	if s == nil || s.TotalCompanies == 0 {
		return Stats{Empty: true}
	}

	out := Stats{
		Total:   common.FormatCount(s.TotalCompanies),
		Average: ScoreDisplay(s.AverageScore, 0, 0),
		Median:  ScoreDisplay(s.MedianScore, 0, 0),
		RedFlag: common.FormatCount(s.RedFlagCompanies),
	}
	out.RedFlagPct = common.FormatPct(float64(s.RedFlagCompanies) / float64(s.TotalCompanies) * 100)

	for _, gc := range s.OrderedDistribution() {
		pct := float64(gc.Count) / float64(s.TotalCompanies) * 100
		out.Distribution = append(out.Distribution, GradeBar{
			Badge: GradeBadge(gc.Grade),
			Count: gc.Count,
			Pct:   pct,
			Text:  common.FormatPct(pct),
		})
	}

	for name, avg := range s.SectorAverages {
		out.Sectors = append(out.Sectors, SectorRow{Sector: name, Score: ScoreDisplay(avg, 0, 0)})
	}
	sort.Slice(out.Sectors, func(i, j int) bool {
		a, b := s.SectorAverages[out.Sectors[i].Sector], s.SectorAverages[out.Sectors[j].Sector]
		if a != b {
			return a > b
		}
		return out.Sectors[i].Sector < out.Sectors[j].Sector
	})
	return out
}
