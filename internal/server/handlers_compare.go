package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/raymonds/internal/clients/raymonds"
	"github.com/bobmcallan/raymonds/internal/models"
	"github.com/bobmcallan/raymonds/internal/pages"
	"github.com/bobmcallan/raymonds/internal/stores/compare"
	"github.com/bobmcallan/raymonds/internal/view"
)

type compareItem struct {
	ID            string       `json:"id"`
	CompanyName   string       `json:"company_name"`
	Ticker        string       `json:"ticker"`
	RaymondsIndex float64      `json:"raymonds_index"`
	Grade         models.Grade `json:"grade"`
}

type compareState struct {
	Items       []compareItem `json:"items"`
	Count       int           `json:"count"`
	Max         int           `json:"max"`
	IsModalOpen bool          `json:"is_modal_open"`
	CanOpen     bool          `json:"can_open"`
	Message     string        `json:"message,omitempty"`
	Table       *view.Table   `json:"table,omitempty"`
}

func compareResponse(page pages.ComparePage) compareState {
	resp := compareState{
		Items:       make([]compareItem, 0, len(page.Items)),
		Count:       len(page.Items),
		Max:         page.Max,
		IsModalOpen: page.IsModalOpen,
		CanOpen:     page.CanOpen,
		Message:     page.Message,
	}
	for _, c := range page.Items {
		resp.Items = append(resp.Items, compareItem{
			ID:            c.ID,
			CompanyName:   c.CompanyName,
			Ticker:        c.Ticker,
			RaymondsIndex: c.RaymondsIndex,
			Grade:         c.Grade,
		})
	}
	if page.IsModalOpen {
		table := page.Table
		resp.Table = &table
	}
	return resp
}

// respondCompare answers a selection action with the new state for JSON
// callers and a redirect for forms.
func (s *Server) respondCompare(w http.ResponseWriter, r *http.Request, status int) {
	if isJSONRequest(r) {
		WriteJSON(w, status, compareResponse(s.app.Pages.Compare(s.app.Compare.State())))
		return
	}
	redirectBack(w, r, "/compare")
}

// compareID reads the company id from a JSON body or a form field.
func compareID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			ID string `json:"id"`
		}
		if !DecodeJSON(w, r, &body) {
			return "", false
		}
		return strings.TrimSpace(body.ID), true
	}
	return strings.TrimSpace(r.FormValue("id")), true
}

func (s *Server) handleCompareAdd(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	id, ok := compareID(w, r)
	if !ok {
		return
	}
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Company id is required")
		return
	}

	res := s.app.Hooks.Company(r.Context(), id)
	if res.Err != nil {
		status := http.StatusBadGateway
		if raymonds.IsNotFound(res.Err) {
			status = http.StatusNotFound
		}
		WriteError(w, status, raymonds.UserMessage(res.Err))
		return
	}
	if res.Data == nil {
		WriteError(w, http.StatusNotFound, "Company not found")
		return
	}

	if err := s.app.Compare.Add(*res.Data); err != nil {
		if errors.Is(err, compare.ErrSelectionFull) {
			WriteErrorWithCode(w, http.StatusConflict, "Comparison selection is full", "selection_full")
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug().Str("company_id", id).Int("count", s.app.Compare.Len()).Msg("Added to comparison")
	s.respondCompare(w, r, http.StatusOK)
}

func (s *Server) handleCompareRemove(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	id, ok := compareID(w, r)
	if !ok {
		return
	}
	s.app.Compare.Remove(id)
	s.respondCompare(w, r, http.StatusOK)
}

func (s *Server) handleCompareClear(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	s.app.Compare.Clear()
	s.respondCompare(w, r, http.StatusOK)
}

func (s *Server) handleCompareOpen(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if !s.app.Compare.OpenModal() && isJSONRequest(r) {
		WriteErrorWithCode(w, http.StatusConflict, "Select at least two companies to compare", "too_few")
		return
	}
	s.respondCompare(w, r, http.StatusOK)
}

func (s *Server) handleCompareClose(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	s.app.Compare.CloseModal()
	s.respondCompare(w, r, http.StatusOK)
}
