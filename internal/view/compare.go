package view

import (
	"strconv"

	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/models"
)

// Cell is one value in a comparison row.
type Cell struct {
	Text  string
	Color common.ColorToken
	Best  bool
}

// Row is one metric across every compared company.
type Row struct {
	Label string
	Cells []Cell
}

// Table is the side-by-side comparison grid. Columns follow selection order.
type Table struct {
	Columns []string
	Rows    []Row
}

// metric extracts a comparable value; ok is false when the value is missing.
type metric struct {
	label       string
	lowerIsBest bool
	value       func(c *models.CompanyScore) (float64, bool)
	cell        func(c *models.CompanyScore) Cell
}

func scoreMetric(idx models.SubIndex) metric {
	get := func(c *models.CompanyScore) *float64 {
		for _, s := range c.SubIndexScores() {
			if s.Index == idx {
				return s.Score
			}
		}
		return nil
	}
	return metric{
		label: idx.Label(),
		value: func(c *models.CompanyScore) (float64, bool) {
			v := get(c)
			if v == nil {
				return 0, false
			}
			return *v, true
		},
		cell: func(c *models.CompanyScore) Cell {
			s := NullableScore(get(c))
			return Cell{Text: s.Text, Color: s.Color}
		},
	}
}

func countMetric(label string, n func(c *models.CompanyScore) int) metric {
	return metric{
		label:       label,
		lowerIsBest: true,
		value:       func(c *models.CompanyScore) (float64, bool) { return float64(n(c)), true },
		cell: func(c *models.CompanyScore) Cell {
			color := common.ColorGray
			if n(c) > 0 {
				color = common.ColorRed
			}
			return Cell{Text: strconv.Itoa(n(c)), Color: color}
		},
	}
}

func comparisonMetrics() []metric {
	ms := []metric{{
		label: "RaymondsIndex",
		value: func(c *models.CompanyScore) (float64, bool) { return c.RaymondsIndex, true },
		cell: func(c *models.CompanyScore) Cell {
			s := ScoreDisplay(c.RaymondsIndex, 0, 0)
			return Cell{Text: s.Text, Color: s.Color}
		},
	}}
	for _, idx := range models.SubIndices {
		ms = append(ms, scoreMetric(idx))
	}
	ms = append(ms,
		metric{
			label:       "Grade",
			lowerIsBest: true,
			value: func(c *models.CompanyScore) (float64, bool) {
				r := c.Grade.Rank()
				return float64(r), r >= 0
			},
			cell: func(c *models.CompanyScore) Cell {
				b := GradeBadge(c.Grade)
				return Cell{Text: b.Text, Color: b.Color}
			},
		},
		countMetric("Red Flags", func(c *models.CompanyScore) int { return len(c.RedFlags) }),
		countMetric("Yellow Flags", func(c *models.CompanyScore) int { return len(c.YellowFlags) }),
	)
	return ms
}

// ComparisonTable lays the selection out metric by metric. In each row the
// best value is highlighted, ties included. A row is left unhighlighted
// when fewer than two companies have a value or all values are equal.
func ComparisonTable(items []models.CompanyScore) Table {
	var t Table
	for i := range items {
		t.Columns = append(t.Columns, items[i].CompanyName)
	}
	if len(items) == 0 {
		return t
	}

	for _, m := range comparisonMetrics() {
		row := Row{Label: m.label, Cells: make([]Cell, len(items))}
		values := make([]float64, len(items))
		present := make([]bool, len(items))
		for i := range items {
			row.Cells[i] = m.cell(&items[i])
			values[i], present[i] = m.value(&items[i])
		}
		markBest(row.Cells, values, present, m.lowerIsBest)
		t.Rows = append(t.Rows, row)
	}
	return t
}

func markBest(cells []Cell, values []float64, present []bool, lowerIsBest bool) {
	var best float64
	n := 0
	allEqual := true
	for i, v := range values {
		if !present[i] {
			continue
		}
		if n == 0 {
			best = v
		} else {
			if v != best {
				allEqual = false
			}
			if (lowerIsBest && v < best) || (!lowerIsBest && v > best) {
				best = v
			}
		}
		n++
	}
	if n < 2 || allEqual {
		return
	}
	for i, v := range values {
		if present[i] && v == best {
			cells[i].Best = true
		}
	}
}
