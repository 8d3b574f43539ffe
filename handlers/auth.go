package handlers

import (
	"net/http"

	"fetcharr/apperr"
	"fetcharr/config"
	"fetcharr/services"
)

type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.Password == "" {
		writeError(w, r, apperr.Validation("password is required"))
		return
	}

	if !services.VerifyPassword(h.cfg, body.Password) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid password"})
		return
	}

	session, err := services.GetSession(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	session.Values["authenticated"] = true
	if err := services.SaveSession(w, r, session); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, err := services.GetSession(r)
	if err == nil {
		session.Values["authenticated"] = false
		session.Options.MaxAge = -1
		_ = services.SaveSession(w, r, session)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
