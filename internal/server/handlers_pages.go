package server

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/raymonds/internal/clients/raymonds"
	"github.com/bobmcallan/raymonds/internal/models"
	"github.com/bobmcallan/raymonds/internal/pages"
	"github.com/bobmcallan/raymonds/internal/stepper"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	s.render(w, http.StatusOK, "home", s.app.Pages.Home(r.Context()))
}

// rankingView adds the score-range control to a ranking page.
type rankingView struct {
	pages.RankingPage
	Range  stepper.Range
	Bounds stepper.Range
}

// PageURL links to another page with the same filters.
func (v rankingView) PageURL(page int) template.URL {
	p := v.Params
	p.Page = page
	return template.URL("/ranking?" + p.Values().Encode())
}

// rankingParams reads filters from the query string. Without explicit
// score bounds, a narrowed score-range control applies.
func (s *Server) rankingParams(r *http.Request) (models.RankingParams, error) {
	q := r.URL.Query()
	p := models.RankingParams{
		Grade:  models.Grade(strings.TrimSpace(q.Get("grade"))),
		Sector: strings.TrimSpace(q.Get("sector")),
		SortBy: q.Get("sort"),
		Order:  q.Get("order"),
	}
	var err error
	if p.Page, err = optionalInt(q.Get("page")); err != nil {
		return p, err
	}
	if p.PageSize, err = optionalInt(q.Get("size")); err != nil {
		return p, err
	}
	if p.MinScore, err = optionalFloat(q.Get("min_score")); err != nil {
		return p, err
	}
	if p.MaxScore, err = optionalFloat(q.Get("max_score")); err != nil {
		return p, err
	}

	if p.MinScore == nil && p.MaxScore == nil {
		cfg := s.scoreRange.Config()
		rng := s.scoreRange.Range()
		if rng.Low > cfg.Min {
			low := rng.Low
			p.MinScore = &low
		}
		if rng.High < cfg.Max {
			high := rng.High
			p.MaxScore = &high
		}
	}
	return p, nil
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	params, err := s.rankingParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cfg := s.scoreRange.Config()
	s.render(w, http.StatusOK, "ranking", rankingView{
		RankingPage: s.app.Pages.Ranking(r.Context(), params),
		Range:       s.scoreRange.Range(),
		Bounds:      stepper.Range{Low: cfg.Min, High: cfg.Max},
	})
}

func (s *Server) handleCompany(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	id := PathParam(r, "/company/", "")
	if id == "" {
		http.Redirect(w, r, "/ranking", http.StatusSeeOther)
		return
	}
	page := s.app.Pages.Company(r.Context(), id, r.URL.Query().Get("period"))
	status := http.StatusOK
	if page.Company.Failed() && raymonds.IsNotFound(page.Company.Result.Err) {
		status = http.StatusNotFound
	}
	s.render(w, status, "company", page)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	s.render(w, http.StatusOK, "search", s.app.Pages.Search(r.Context(), strings.TrimSpace(r.URL.Query().Get("q"))))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	page := s.app.Pages.Compare(s.app.Compare.State())
	if isJSONRequest(r) {
		WriteJSON(w, http.StatusOK, compareResponse(page))
		return
	}
	s.render(w, http.StatusOK, "compare", page)
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func optionalFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
