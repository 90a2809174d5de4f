package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/authgate/internal/common"
)

type registerRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.auth.Register(r.Context(), req.Login, req.Password, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrLoginTaken),
			errors.Is(err, common.ErrEmailTaken),
			errors.Is(err, common.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    user.ID,
		"login": user.Login,
		"email": user.Email,
		"roles": user.Roles,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	minted, err := s.auth.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid login or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": minted})
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	tokenString, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing bearer token")
		return
	}

	if err := s.auth.Logout(r.Context(), tokenString); err != nil {
		switch {
		case errors.Is(err, common.ErrTokenMalformed),
			errors.Is(err, common.ErrInvalidSignature),
			errors.Is(err, common.ErrTokenExpired),
			errors.Is(err, common.ErrAlreadyRevoked),
			errors.Is(err, common.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "revocation failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"subject": principal.Subject,
		"roles":   principal.Roles,
	})
}

func (s *Server) handleAdminGreet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "greetings, admin"})
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "user listing for admins"})
}

func (s *Server) handlePremiumFeature(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "hello, premium user"})
}

func (s *Server) handleGuestHello(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "hello, guest"})
}
