package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Raymond9734/acme-dashboard-backend/internal/auth"
	"github.com/Raymond9734/acme-dashboard-backend/internal/service"
)

// AuthHandler handles sign-in and sign-out
type AuthHandler struct {
	authSvc      service.AuthService
	secureCookie bool
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc service.AuthService, secureCookie bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authSvc:      authSvc,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(w, r)
	if err != nil {
		respondBadForm(w)
		return
	}

	result, err := h.authSvc.Authenticate(r.Context(), service.FormState{}, form)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	if result.Message != "" {
		respondJSON(w, http.StatusUnauthorized, service.FormState{Message: result.Message})
		return
	}

	http.SetCookie(w, h.sessionCookie(result.Session.Token, result.Session.ExpiresAt))
	http.Redirect(w, r, result.RedirectTo, http.StatusSeeOther)
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, clearedSessionCookie(h.secureCookie))
	http.Redirect(w, r, service.RouteLogin, http.StatusSeeOther)
}

func (h *AuthHandler) sessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func clearedSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
