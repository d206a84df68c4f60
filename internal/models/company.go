package models

import (
	"fmt"
	"time"
)

// SubIndex identifies one of the four weighted components of the composite score.
type SubIndex string

const (
	SubIndexCEI SubIndex = "CEI" // capital efficiency
	SubIndexRII SubIndex = "RII" // reinvestment intensity
	SubIndexCGI SubIndex = "CGI" // cash governance
	SubIndexMAI SubIndex = "MAI" // momentum alignment
)

// SubIndices lists the sub-indices in canonical display order.
var SubIndices = []SubIndex{SubIndexCEI, SubIndexRII, SubIndexCGI, SubIndexMAI}

// Label returns the human-readable sub-index name.
func (s SubIndex) Label() string {
	switch s {
	case SubIndexCEI:
		return "Capital Efficiency"
	case SubIndexRII:
		return "Reinvestment Intensity"
	case SubIndexCGI:
		return "Cash Governance"
	case SubIndexMAI:
		return "Momentum Alignment"
	}
	return string(s)
}

// SubIndexScore pairs a sub-index with its nullable score.
type SubIndexScore struct {
	Index SubIndex
	Score *float64 // nil when the company lacks enough history
}

// CompanyScore is the scored snapshot for one company, as served by GET /company/{id}.
type CompanyScore struct {
	ID             string    `json:"company_id"`
	CompanyName    string    `json:"company_name"`
	Ticker         string    `json:"stock_code"`
	Sector         string    `json:"sector,omitempty"`
	Market         string    `json:"market,omitempty"`
	FiscalYear     int       `json:"fiscal_year,omitempty"`
	RaymondsIndex  float64   `json:"raymonds_index"`
	CEI            *float64  `json:"cei_score"`
	RII            *float64  `json:"rii_score"`
	CGI            *float64  `json:"cgi_score"`
	MAI            *float64  `json:"mai_score"`
	Grade          Grade     `json:"grade"`
	Rank           int       `json:"rank,omitempty"`
	TotalRanked    int       `json:"total_ranked,omitempty"`
	RedFlags       []string  `json:"red_flags"`
	YellowFlags    []string  `json:"yellow_flags"`
	Verdict        string    `json:"verdict,omitempty"`
	KeyRisk        string    `json:"key_risk,omitempty"`
	Recommendation string    `json:"recommendation,omitempty"`
	WatchTrigger   string    `json:"watch_trigger,omitempty"`
	ViolationCount int       `json:"violation_count"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// SubIndexScores returns the four sub-indices in canonical order.
func (c *CompanyScore) SubIndexScores() []SubIndexScore {
	return []SubIndexScore{
		{Index: SubIndexCEI, Score: c.CEI},
		{Index: SubIndexRII, Score: c.RII},
		{Index: SubIndexCGI, Score: c.CGI},
		{Index: SubIndexMAI, Score: c.MAI},
	}
}

// HasFlags reports whether any red or yellow flag is attached.
func (c *CompanyScore) HasFlags() bool {
	return len(c.RedFlags) > 0 || len(c.YellowFlags) > 0
}

// Summary projects the record onto the row shape used by rankings and search.
func (c *CompanyScore) Summary() CompanySummary {
	return CompanySummary{
		ID:            c.ID,
		CompanyName:   c.CompanyName,
		Ticker:        c.Ticker,
		Sector:        c.Sector,
		Market:        c.Market,
		RaymondsIndex: c.RaymondsIndex,
		Grade:         c.Grade,
		Rank:          c.Rank,
		RedFlagCount:  len(c.RedFlags),
	}
}

// Validate checks the record invariants the client relies on.
func (c *CompanyScore) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("company record missing id")
	}
	if c.RaymondsIndex < 0 {
		return fmt.Errorf("company %s: negative composite score %v", c.ID, c.RaymondsIndex)
	}
	for _, s := range c.SubIndexScores() {
		if s.Score != nil && (*s.Score < 0 || *s.Score > 100) {
			return fmt.Errorf("company %s: %s score %v outside [0,100]", c.ID, s.Index, *s.Score)
		}
	}
	if c.Grade != "" && c.Grade.Rank() < 0 {
		return fmt.Errorf("company %s: unknown grade %q", c.ID, c.Grade)
	}
	return nil
}

// CompanySummary is a ranked or searched company row.
type CompanySummary struct {
	ID            string  `json:"company_id"`
	CompanyName   string  `json:"company_name"`
	Ticker        string  `json:"stock_code"`
	Sector        string  `json:"sector,omitempty"`
	Market        string  `json:"market,omitempty"`
	RaymondsIndex float64 `json:"raymonds_index"`
	Grade         Grade   `json:"grade"`
	Rank          int     `json:"rank,omitempty"`
	RedFlagCount  int     `json:"red_flag_count,omitempty"`
}

// SearchResults wraps GET /search hits.
type SearchResults struct {
	Query   string           `json:"query"`
	Results []CompanySummary `json:"results"`
	Total   int              `json:"total"`
}
