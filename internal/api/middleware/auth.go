package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/baldagame/internal/api/apierr"
	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/services/auth"
)

type contextKey string

const (
	profileContextKey contextKey = "profile"
	sessionContextKey contextKey = "session"
)

// SessionValidator resolves a session token
type SessionValidator interface {
	ValidateSession(token string) (*auth.Session, error)
}

// Auth creates authentication middleware
func Auth(sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := sessions.ValidateSession(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
		})
	}
}

// WithSession returns a context carrying the session, for handlers invoked
// without the middleware
func WithSession(ctx context.Context, session *auth.Session) context.Context {
	return withSession(ctx, session)
}

func withSession(ctx context.Context, session *auth.Session) context.Context {
	profile := session.Profile
	ctx = context.WithValue(ctx, sessionContextKey, session)
	return context.WithValue(ctx, profileContextKey, &profile)
}

// extractToken reads the bearer token, falling back to the query string for
// EventSource clients that cannot set headers
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	if cookie, err := r.Cookie("session"); err == nil {
		return cookie.Value
	}

	return r.URL.Query().Get("token")
}

// GetProfile returns the authenticated player from the request context
func GetProfile(ctx context.Context) *model.Profile {
	profile, _ := ctx.Value(profileContextKey).(*model.Profile)
	return profile
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionContextKey).(*auth.Session)
	return session
}

// MustGetProfile returns the authenticated player or panics
func MustGetProfile(ctx context.Context) *model.Profile {
	profile := GetProfile(ctx)
	if profile == nil {
		panic("no profile in context - auth middleware not applied?")
	}
	return profile
}
