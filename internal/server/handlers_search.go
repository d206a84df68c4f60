package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/bobmcallan/raymonds/internal/models"
	"github.com/bobmcallan/raymonds/internal/query"
	"github.com/bobmcallan/raymonds/internal/view"
)

// liveSearchLimit caps as-you-type results; the full search page uses the
// pages default.
const liveSearchLimit = 10

type liveSearchState struct {
	Query      string                  `json:"query"`
	Generation uint64                  `json:"generation"`
	Status     query.Status            `json:"status"`
	IsLoading  bool                    `json:"is_loading"`
	Results    []models.CompanySummary `json:"results"`
	Error      string                  `json:"error,omitempty"`
}

func (s *Server) liveSearchState(res query.Result[models.SearchResults]) liveSearchState {
	state := liveSearchState{
		Query:      s.search.Query(),
		Generation: s.search.Generation(),
		Status:     res.Status,
		IsLoading:  res.IsLoading,
		Results:    []models.CompanySummary{},
		Error:      view.ErrorMessage(res.Err),
	}
	if res.Data != nil {
		state.Results = res.Data.Results
	}
	return state
}

// handleLiveSearch reports the latest accepted result on GET. POST switches
// the query; with "wait" it blocks until that generation settles or is
// superseded.
func (s *Server) handleLiveSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		WriteJSON(w, http.StatusOK, s.liveSearchState(s.search.Current()))
		return
	}

	var body struct {
		Query string `json:"query"`
		Wait  bool   `json:"wait"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	// Detached from the request so a superseded fetch can still fill the cache.
	done := s.search.SetQuery(context.Background(), strings.TrimSpace(body.Query))
	if body.Wait {
		select {
		case <-done:
		case <-r.Context().Done():
			return
		}
	}
	WriteJSON(w, http.StatusOK, s.liveSearchState(s.search.Current()))
}
