package web

import (
	"net/http"

	"github.com/vbonduro/fieldtech/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.sendError(w, r, err)
		return
	}
	session, err := s.svc.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusOK, session)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	u, err := s.svc.Users.Get(r.Context(), p.UserID)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusOK, u)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.sendError(w, r, err)
		return
	}
	if err := s.svc.Users.ChangePassword(r.Context(), p.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		s.sendError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRegisterUser creates an account from an email, role and initial
// password.
func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var in service.NewUser
	if err := decodeJSON(w, r, &in); err != nil {
		s.sendError(w, r, err)
		return
	}
	u, err := s.svc.Users.Register(r.Context(), in)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusCreated, u)
}
