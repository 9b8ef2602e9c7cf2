package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/sakif/focusboard/internal/model"
)

// CookieName is the cookie the session token travels in.
const CookieName = "token"

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue accepts any key. A plain string key could be read or
// shadowed by any package that happens to use the same string; a private
// type can only be created here.
type contextKey string

const sessionKey contextKey = "session"

// SessionChecker is the slice of the session service the middleware needs.
// Declared here, where it is consumed, so auth does not import service.
type SessionChecker interface {
	CurrentUser(ctx context.Context) (*model.Session, error)
	IsSessionValid(ctx context.Context) (bool, error)
}

// RequireSession is a middleware that enforces a live session on protected
// routes.
//
// A request passes only if all of these hold:
//   - the "token" cookie carries a JWT we signed that has not expired
//   - a Session is stored and its id is the JWT subject
//   - that Session has not expired (IsSessionValid)
//
// For a remembered Session the response also carries a re-signed cookie.
//
// IsSessionValid clears an expired Session as a side effect, so the first
// request after expiry also logs the user out.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireSession(tokens *TokenService, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			cookie, err := r.Cookie(CookieName)
			if err != nil {
				unauthorized(w)
				return
			}
			sessionID, err := tokens.Validate(cookie.Value)
			if err != nil {
				unauthorized(w)
				return
			}

			session, err := sessions.CurrentUser(ctx)
			if err != nil {
				internalError(w)
				return
			}
			if session == nil || session.ID != sessionID {
				unauthorized(w)
				return
			}

			valid, err := sessions.IsSessionValid(ctx)
			if err != nil {
				internalError(w)
				return
			}
			if !valid {
				unauthorized(w)
				return
			}

			// SLIDING WINDOW:
			// A remembered session never expires, but its cookie does. Each
			// request pushes the cookie's expiry RememberTTL further out.
			if session.Remember {
				token, err := tokens.Generate(session.ID, RememberTTL)
				if err != nil {
					internalError(w)
					return
				}
				SetSessionCookie(w, token, RememberTTL)
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, sessionKey, session)))
		})
	}
}

// SessionFromContext returns the Session RequireSession attached to ctx.
// Returns (nil, false) outside a protected route.
func SessionFromContext(ctx context.Context) (*model.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*model.Session)
	return s, ok && s != nil
}

// SetSessionCookie sets token as the session cookie for ttl.
//
// HttpOnly = JavaScript cannot read this cookie (XSS protection).
// SameSite=Lax = cookie is sent on top-level navigations but not cross-site POSTs.
// Secure should be true behind HTTPS. It stays false for local use.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func unauthorized(w http.ResponseWriter) {
	deny(w, http.StatusUnauthorized, `{"error":"unauthorized","message":"please log in"}`)
}

func internalError(w http.ResponseWriter) {
	deny(w, http.StatusInternalServerError, `{"error":"internal_error","message":"an unexpected error occurred"}`)
}

func deny(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body + "\n"))
}
