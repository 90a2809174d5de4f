package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/example/authgate/internal/common"
	"github.com/example/authgate/internal/server/session"
	"github.com/gorilla/mux"
)

type ctxKey string

const principalKey ctxKey = "principal"

func principalFrom(ctx context.Context) *session.Principal {
	principal, _ := ctx.Value(principalKey).(*session.Principal)
	return principal
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	tokenString := strings.TrimPrefix(auth, "Bearer ")
	return tokenString, tokenString != ""
}

// requireRole validates the bearer token and, when role is non-empty,
// requires the resolved principal to hold it. Any decode, revocation or
// unknown-subject failure is a plain 401; the response does not say which.
// A store failure is a 500, not a verdict on the token.
func (s *Server) requireRole(role string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			principal, err := s.sessions.Validate(r.Context(), tokenString)
			if err != nil {
				if errors.Is(err, common.ErrInternal) {
					writeError(w, http.StatusInternalServerError, "validation failed")
					return
				}
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if role != "" && !hasRole(principal, role) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasRole(p *session.Principal, role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogging logs one line per request.
func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}
