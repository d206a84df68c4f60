// Package models defines data structures for the RaymondsIndex client
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Grade is the ordinal letter rating derived server-side from the composite score.
type Grade string

const (
	GradeAPlusPlus Grade = "A++"
	GradeAPlus     Grade = "A+"
	GradeA         Grade = "A"
	GradeAMinus    Grade = "A-"
	GradeBPlus     Grade = "B+"
	GradeB         Grade = "B"
	GradeBMinus    Grade = "B-"
	GradeCPlus     Grade = "C+"
	GradeC         Grade = "C"
)

// Grades lists every grade, best first.
var Grades = []Grade{
	GradeAPlusPlus, GradeAPlus, GradeA, GradeAMinus,
	GradeBPlus, GradeB, GradeBMinus,
	GradeCPlus, GradeC,
}

// ParseGrade validates s against the enumeration.
func ParseGrade(s string) (Grade, error) {
	g := Grade(strings.ToUpper(strings.TrimSpace(s)))
	if g.Rank() < 0 {
		return "", fmt.Errorf("unknown grade %q", s)
	}
	return g, nil
}

// Rank returns the 0-based position of g in Grades (0 is best), or -1.
func (g Grade) Rank() int {
	for i, v := range Grades {
		if v == g {
			return i
		}
	}
	return -1
}

// Better reports whether g ranks above other.
func (g Grade) Better(other Grade) bool {
	return g.Rank() >= 0 && (other.Rank() < 0 || g.Rank() < other.Rank())
}

// Tier is the letter family of the grade: "A", "B" or "C".
func (g Grade) Tier() string {
	if g == "" {
		return ""
	}
	return string(g[0])
}

func (g Grade) String() string {
	return string(g)
}

// UnmarshalJSON rejects grades outside the enumeration.
func (g *Grade) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*g = ""
		return nil
	}
	parsed, err := ParseGrade(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
