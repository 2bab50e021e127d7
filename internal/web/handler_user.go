package web

import (
	"net/http"

	"github.com/vbonduro/stayhaven/internal/auth"
	"github.com/vbonduro/stayhaven/internal/domain"
	"github.com/vbonduro/stayhaven/internal/service"
)

type userEnvelope struct {
	User *domain.User `json:"user"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var in service.SignUpInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	user, err := s.users.SignUp(r.Context(), in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, userEnvelope{User: user})
}

func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	user, err := s.users.GetUser(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, userEnvelope{User: user})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	var in service.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), p.UserID, in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, userEnvelope{User: user})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	var in service.PasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	if err := s.users.ChangePassword(r.Context(), p.UserID, in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password updated successfully")
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	if err := s.users.DeleteAccount(r.Context(), p.UserID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Successfully deleted")
}
