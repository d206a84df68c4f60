package server

import (
	"net/http"

	"github.com/bobmcallan/raymonds/internal/stepper"
)

type rangeState struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Phase string  `json:"phase"`
	Accel float64 `json:"accel"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Step  float64 `json:"step"`
}

func (s *Server) rangeState() rangeState {
	cfg := s.scoreRange.Config()
	rng := s.scoreRange.Range()
	return rangeState{
		Low:   rng.Low,
		High:  rng.High,
		Phase: s.scoreRange.Phase().String(),
		Accel: s.scoreRange.Accel(),
		Min:   cfg.Min,
		Max:   cfg.Max,
		Step:  cfg.Step,
	}
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.rangeState())
}

// handleRangePress starts a press-and-hold on one thumb.
func (s *Server) handleRangePress(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Thumb     string `json:"thumb"`
		Direction string `json:"direction"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}
	thumb, err := stepper.ParseThumb(body.Thumb)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	dir, err := stepper.ParseDirection(body.Direction)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.scoreRange.Press(thumb, dir)
	WriteJSON(w, http.StatusOK, s.rangeState())
}

// handleRangeRelease ends any press, including a pointer leaving the control.
func (s *Server) handleRangeRelease(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	s.scoreRange.Release()
	WriteJSON(w, http.StatusOK, s.rangeState())
}

func (s *Server) handleRangeSet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Low  *float64 `json:"low"`
		High *float64 `json:"high"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}
	if body.Low == nil || body.High == nil {
		WriteError(w, http.StatusBadRequest, "low and high are required")
		return
	}
	s.scoreRange.Set(*body.Low, *body.High)
	WriteJSON(w, http.StatusOK, s.rangeState())
}
