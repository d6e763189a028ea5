package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/admin-management/internal"
	"github.com/frahmantamala/admin-management/internal/session"
)

// TokenValidator checks a signed token and returns the session id it carries.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// Authenticator resolves the bearer token to a live session record and
// attaches it to the request context. The chain is strict: any failure
// short-circuits with 401, it never falls through to anonymous access.
type Authenticator struct {
	tokens           TokenValidator
	sessions         session.Store
	sessionTTL       time.Duration
	refreshThreshold time.Duration
	callTimeout      time.Duration
	logger           *slog.Logger
}

func NewAuthenticator(tokens TokenValidator, sessions session.Store, sessionTTL, refreshThreshold time.Duration, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		tokens:           tokens,
		sessions:         sessions,
		sessionTTL:       sessionTTL,
		refreshThreshold: refreshThreshold,
		callTimeout:      3 * time.Second,
		logger:           logger,
	}
}

func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeGuardError(w, internal.ErrInvalidToken)
			return
		}

		sessionID, err := a.tokens.Validate(token)
		if err != nil {
			writeGuardError(w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), a.callTimeout)
		loginUser, err := a.sessions.Get(ctx, sessionID)
		cancel()
		if err != nil {
			// A store that cannot answer in time is treated as a miss; the
			// caller re-authenticates rather than proceeding unverified.
			a.logger.Error("session lookup failed", "error", err)
			writeGuardError(w, internal.ErrSessionExpired)
			return
		}
		if loginUser == nil {
			writeGuardError(w, internal.ErrSessionExpired)
			return
		}

		a.maybeRefresh(loginUser)

		next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), loginUser)))
	})
}

// maybeRefresh extends the session window when it has entered the refresh
// threshold. Runs detached so a slow store never delays the request, and a
// failed refresh only shortens the session, it never breaks the response.
func (a *Authenticator) maybeRefresh(loginUser *session.LoginUser) {
	if loginUser.Remaining(time.Now()) >= a.refreshThreshold {
		return
	}

	refreshed := *loginUser
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.callTimeout)
		defer cancel()
		refreshed.Touch(time.Now(), a.sessionTTL)
		if err := a.sessions.Put(ctx, &refreshed); err != nil {
			a.logger.Warn("session refresh failed", "session_id", refreshed.Token, "error", err)
		}
	}()
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
