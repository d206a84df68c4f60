package server

import (
	"net/http"

	"github.com/bobmcallan/raymonds/internal/common"
)

// registerRoutes sets up all dashboard routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Pages
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/ranking", s.handleRanking)
	mux.HandleFunc("/company/", s.handleCompany)
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/compare", s.handleCompare)

	// Comparison actions
	mux.HandleFunc("/compare/add", s.handleCompareAdd)
	mux.HandleFunc("/compare/remove", s.handleCompareRemove)
	mux.HandleFunc("/compare/clear", s.handleCompareClear)
	mux.HandleFunc("/compare/open", s.handleCompareOpen)
	mux.HandleFunc("/compare/close", s.handleCompareClose)

	// Auth
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/logout", s.handleLogout)

	// Charts
	mux.HandleFunc("/charts/radar/", s.handleRadarChart)
	mux.HandleFunc("/charts/compare.svg", s.handleCompareChart)
	mux.HandleFunc("/charts/stock/", s.handleStockChart)

	// Score range stepper
	mux.HandleFunc("/api/range", s.handleRange)
	mux.HandleFunc("/api/range/press", s.handleRangePress)
	mux.HandleFunc("/api/range/release", s.handleRangeRelease)
	mux.HandleFunc("/api/range/set", s.handleRangeSet)

	// Live search
	mux.HandleFunc("/api/search", s.handleLiveSearch)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.CurrentBuild())
}
