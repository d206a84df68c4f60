package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/raymonds/internal/clients/raymonds"
	"github.com/bobmcallan/raymonds/internal/models"
	"github.com/bobmcallan/raymonds/internal/pages"
)

type loginView struct {
	Header     pages.Header
	Email      string
	Error      string
	Registered bool
}

type registerView struct {
	Header   pages.Header
	Email    string
	Username string
	FullName string
	Error    string
}

// handleLogin shows the login form on GET and starts a session on POST.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if r.Method == http.MethodGet {
		s.app.Auth.ClearError()
		s.render(w, http.StatusOK, "login", loginView{
			Header:     s.app.Pages.Header(),
			Registered: r.URL.Query().Get("registered") == "1",
		})
		return
	}

	creds := models.Credentials{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	if err := s.app.Auth.Login(r.Context(), creds); err != nil {
		s.render(w, loginStatus(err), "login", loginView{
			Header: s.app.Pages.Header(),
			Email:  creds.Email,
			Error:  raymonds.UserMessage(err),
		})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleRegister creates an account, then sends the user to log in.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if r.Method == http.MethodGet {
		s.render(w, http.StatusOK, "register", registerView{Header: s.app.Pages.Header()})
		return
	}

	req := models.RegisterRequest{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Username: strings.TrimSpace(r.FormValue("username")),
		FullName: strings.TrimSpace(r.FormValue("full_name")),
		Password: r.FormValue("password"),
	}
	if _, err := s.app.Auth.Register(r.Context(), req); err != nil {
		s.render(w, http.StatusBadRequest, "register", registerView{
			Header:   s.app.Pages.Header(),
			Email:    req.Email,
			Username: req.Username,
			FullName: req.FullName,
			Error:    raymonds.UserMessage(err),
		})
		return
	}
	s.logger.Info().Str("username", req.Username).Msg("Account registered")
	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// loginStatus maps a failed login to the status of the re-rendered form.
func loginStatus(err error) int {
	var apiErr *raymonds.APIError
	switch {
	case raymonds.IsUnauthorized(err):
		return http.StatusUnauthorized
	case errors.As(err, &apiErr), errors.Is(err, raymonds.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	s.app.Auth.Logout(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
