package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName    = "gamedex_session"
	sessionUserKey = "uid"
)

// contextKey keeps middleware context values from colliding with other
// packages.
type contextKey string

// UserIDKey is the context key the session middleware stores the visitor
// id under.
const UserIDKey contextKey = "user_id"

// SessionManager assigns every visitor a stable anonymous user id kept
// in a signed cookie session. Collections are keyed by this id; there
// are no accounts or passwords.
type SessionManager struct {
	store *sessions.CookieStore
}

// NewSessionManager creates a session manager signing cookies with the
// given secret.
func NewSessionManager(secret string) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 365,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// Middleware ensures the request carries a visitor id, minting one on
// first contact, and exposes it through the request context.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A decode error just means a stale or tampered cookie; Get still
		// returns a fresh session to write into.
		session, err := m.store.Get(r, sessionName)
		if err != nil {
			slog.Debug("[SESSION] replacing undecodable session cookie", "error", err)
		}

		userID, _ := session.Values[sessionUserKey].(string)
		if userID == "" {
			userID = newVisitorID()
			session.Values[sessionUserKey] = userID
			if err := session.Save(r, w); err != nil {
				slog.Warn("[SESSION] failed to save session cookie", "error", err)
			}
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID returns the visitor id set by the session middleware, or an
// empty string if the middleware did not run.
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(UserIDKey).(string)
	return userID
}

func newVisitorID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable for session minting
		panic("failed to generate visitor id: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
