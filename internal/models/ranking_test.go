package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankingParams_NormalizedDefaults(t *testing.T) {
	p := RankingParams{}.Normalized()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, "raymonds_index", p.SortBy)
	assert.Equal(t, "desc", p.Order)

	p = RankingParams{PageSize: 1000, Order: "asc"}.Normalized()
	assert.Equal(t, 100, p.PageSize)
	assert.Equal(t, "asc", p.Order)
}

func TestRankingParams_Values(t *testing.T) {
	min, max := 40.0, 85.5
	v := RankingParams{Grade: GradeA, Sector: "Retail", MinScore: &min, MaxScore: &max}.Values()

	assert.Equal(t, "1", v.Get("page"))
	assert.Equal(t, "A", v.Get("grade"))
	assert.Equal(t, "Retail", v.Get("sector"))
	assert.Equal(t, "40", v.Get("min_score"))
	assert.Equal(t, "85.5", v.Get("max_score"))
}

func TestStatistics_OrderedDistribution(t *testing.T) {
	s := Statistics{GradeDistribution: map[Grade]int{GradeA: 3, GradeC: 7}}
	dist := s.OrderedDistribution()
	assert.Len(t, dist, len(Grades))
	assert.Equal(t, GradeAPlusPlus, dist[0].Grade)
	assert.Equal(t, 0, dist[0].Count)
	assert.Equal(t, 7, dist[len(dist)-1].Count)
}

func TestStockPricePoint_Time(t *testing.T) {
	tm, err := StockPricePoint{Date: "2024-03"}.Time()
	assert.NoError(t, err)
	assert.Equal(t, 2024, tm.Year())

	_, err = StockPricePoint{Date: "March"}.Time()
	assert.Error(t, err)

	assert.True(t, ValidStockPeriod("3y"))
	assert.False(t, ValidStockPeriod("2y"))
}
