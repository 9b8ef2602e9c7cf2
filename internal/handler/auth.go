package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/focusboard/internal/apperror"
	"github.com/sakif/focusboard/internal/auth"
	"github.com/sakif/focusboard/internal/service"
)

// AuthHandler serves the login, signup and logout forms.
//
// HANDLER RESPONSIBILITIES:
//   - HandleLogin  → validate the login form, start a Session, set the cookie
//   - HandleSignup → validate the signup form, record the Account, set the cookie
//   - HandleLogout → end the Session, clear the cookie
//   - HandleMe     → return the current Session
type AuthHandler struct {
	sessions *service.SessionService
	tokens   *auth.TokenService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(sessions *service.SessionService, tokens *auth.TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// HandleLogin starts a session.
//
// HTTP: POST /auth/login
// REQUEST BODY: {"email":"jane@example.com","password":"secret1","remember":true}
// RESPONSE: 200 with the Session, plus the "token" cookie
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	session, err := h.sessions.Login(r.Context(), req.Email, req.Password, req.Remember)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.setSessionCookie(w, session.ID, session.Remember); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// HandleSignup creates an account and starts a session for it.
//
// HTTP: POST /auth/signup
// REQUEST BODY: {"name":"Jane","email":"jane@example.com","password":"secret1","confirmPassword":"secret1"}
// RESPONSE: 201 with the Session, plus the "token" cookie
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	session, err := h.sessions.Signup(r.Context(), req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.setSessionCookie(w, session.ID, session.Remember); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// HandleLogout ends the session.
//
// HTTP: POST /auth/logout
// Auth: Required
//
// The client asks the user to confirm before calling this: without
// "remember me" every todo, event and note is wiped.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		writeError(w, h.logger, err)
		return
	}

	auth.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the current Session.
//
// HTTP: GET /api/me
// Auth: Required (RequireSession puts the Session in the context)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("please log in"))
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// setSessionCookie signs a token for sessionID and sets it as the "token"
// cookie.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string, remember bool) error {
	ttl := auth.TTL(remember)
	token, err := h.tokens.Generate(sessionID, ttl)
	if err != nil {
		return err
	}
	auth.SetSessionCookie(w, token, ttl)
	return nil
}
