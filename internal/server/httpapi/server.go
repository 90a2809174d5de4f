// Package httpapi exposes the service over HTTP: registration, login, token
// revocation and a few role-gated endpoints. Routing glue only; the rules
// live in authsvc and session.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/example/authgate/internal/logging"
	"github.com/example/authgate/internal/server/authsvc"
	"github.com/example/authgate/internal/server/session"
	"github.com/example/authgate/internal/server/users"
	"github.com/gorilla/mux"
)

type Server struct {
	auth     *authsvc.Service
	sessions *session.Validator
	logger   logging.Logger
	router   *mux.Router
}

func NewServer(auth *authsvc.Service, sessions *session.Validator, logger logging.Logger) *Server {
	s := &Server{
		auth:     auth,
		sessions: sessions,
		logger:   logger.With("module", "http"),
	}
	s.router = s.routes()
	return s
}

// routes wires the public endpoints and the static role allow-list for the
// /api subtree. There is no policy engine: a route prefix maps to at most one
// required role.
func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestLogging)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	auth.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	auth.HandleFunc("/revoke", s.handleRevoke).Methods(http.MethodPost)
	auth.Handle("/validate", s.requireRole("")(http.HandlerFunc(s.handleValidate))).Methods(http.MethodGet)

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(s.requireRole(users.RoleAdmin))
	admin.HandleFunc("/greet", s.handleAdminGreet).Methods(http.MethodGet)
	admin.HandleFunc("/users", s.handleAdminUsers).Methods(http.MethodGet)

	premium := r.PathPrefix("/api/premium").Subrouter()
	premium.Use(s.requireRole(users.RolePremium))
	premium.HandleFunc("/feature", s.handlePremiumFeature).Methods(http.MethodGet)

	guest := r.PathPrefix("/api/guest").Subrouter()
	guest.Use(s.requireRole(""))
	guest.HandleFunc("/hello", s.handleGuestHello).Methods(http.MethodGet)

	return r
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Handler:      s.router,
		Addr:         addr,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "starting HTTP server", "addr", addr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
