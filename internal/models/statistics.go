package models

import "time"

// Statistics is the aggregate view served by GET /statistics.
type Statistics struct {
	TotalCompanies    int                `json:"total_companies"`
	AverageScore      float64            `json:"average_score"`
	MedianScore       float64            `json:"median_score"`
	GradeDistribution map[Grade]int      `json:"grade_distribution"`
	SectorAverages    map[string]float64 `json:"sector_averages,omitempty"`
	RedFlagCompanies  int                `json:"red_flag_companies"`
	UpdatedAt         time.Time          `json:"updated_at,omitempty"`
}

// GradeCount is one bucket of the grade distribution.
type GradeCount struct {
	Grade Grade
	Count int
}

// OrderedDistribution returns the distribution best grade first, including zero buckets.
func (s *Statistics) OrderedDistribution() []GradeCount {
	out := make([]GradeCount, 0, len(Grades))
	for _, g := range Grades {
		out = append(out, GradeCount{Grade: g, Count: s.GradeDistribution[g]})
	}
	return out
}
