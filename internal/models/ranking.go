package models

import (
	"net/url"
	"strconv"
)

// RankingParams filters and pages GET /ranking.
type RankingParams struct {
	Page     int
	PageSize int
	Grade    Grade
	Sector   string
	MinScore *float64
	MaxScore *float64
	SortBy   string // "raymonds_index" (default), "company_name", a sub-index score field
	Order    string // "desc" (default) or "asc"
}

// Normalized fills defaults so equal filters produce equal cache keys.
func (p RankingParams) Normalized() RankingParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	if p.SortBy == "" {
		p.SortBy = "raymonds_index"
	}
	if p.Order != "asc" {
		p.Order = "desc"
	}
	return p
}

// Values encodes the params as a query string.
func (p RankingParams) Values() url.Values {
	p = p.Normalized()
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("size", strconv.Itoa(p.PageSize))
	v.Set("sort", p.SortBy)
	v.Set("order", p.Order)
	if p.Grade != "" {
		v.Set("grade", string(p.Grade))
	}
	if p.Sector != "" {
		v.Set("sector", p.Sector)
	}
	if p.MinScore != nil {
		v.Set("min_score", strconv.FormatFloat(*p.MinScore, 'f', -1, 64))
	}
	if p.MaxScore != nil {
		v.Set("max_score", strconv.FormatFloat(*p.MaxScore, 'f', -1, 64))
	}
	return v
}

// RankingPage is one page of GET /ranking.
type RankingPage struct {
	Items      []CompanySummary `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"size"`
	TotalPages int              `json:"total_pages"`
}

// HasNext reports whether a further page exists.
func (r *RankingPage) HasNext() bool {
	return r.Page < r.TotalPages
}
