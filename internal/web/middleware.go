package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/moodflix/moodflix/internal/auth"
	"github.com/moodflix/moodflix/internal/db"
	"github.com/moodflix/moodflix/internal/logging"
)

type contextKey struct{ name string }

var claimsKey = &contextKey{"claims"}

// requestLogger logs one line per request through zerolog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			logging.Ctx(r.Context()).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("remote", r.RemoteAddr).
				Msg("request")
		}()

		next.ServeHTTP(ww, r)
	})
}

// rateLimit limits requests per client IP per minute. A non-positive limit
// disables it.
func rateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many requests"})
		}),
	)
}

// requireAuth validates the bearer id token and stores its claims on the
// request context.
func requireAuth(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				writeError(w, r, fmt.Errorf("%w: missing bearer token", auth.ErrInvalidToken))
				return
			}

			claims, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accountLookup loads the stored account behind a token.
type accountLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
}

// requireAdmin rejects callers who are not admins. The token's role claim is
// checked first and the stored role second, so a demoted or deleted account
// loses access before its token expires. It must run after requireAuth.
func requireAdmin(accounts accountLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFrom(r.Context())
			if claims == nil || !claims.IsAdmin() {
				writeJSON(w, http.StatusForbidden, errorBody{Error: "admin role required"})
				return
			}

			user, err := accounts.GetUserByEmail(r.Context(), claims.Email)
			if errors.Is(err, auth.ErrUserNotFound) || (err == nil && user.Role != db.RoleAdmin) {
				writeJSON(w, http.StatusForbidden, errorBody{Error: "admin role required"})
				return
			}
			if err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// claimsFrom returns the claims stored by requireAuth, or nil.
func claimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// currentEmail returns the email of the authenticated caller.
func currentEmail(r *http.Request) string {
	if claims := claimsFrom(r.Context()); claims != nil {
		return claims.Email
	}
	return ""
}
