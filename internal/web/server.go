// Package web serves the moodflix JSON API.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/moodflix/moodflix/internal/auth"
	"github.com/moodflix/moodflix/internal/logging"
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:8080"

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AuthRateLimit   int // signup/login requests per minute per IP; 0 disables
}

// Server is the HTTP server for the API.
type Server struct {
	router          chi.Router
	server          *http.Server
	handlers        *Handlers
	tokens          *auth.Tokens
	accounts        *auth.Service
	shutdownTimeout time.Duration
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig, svc Services) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	router := chi.NewRouter()

	s := &Server{
		router:          router,
		handlers:        NewHandlers(svc),
		tokens:          svc.Auth.Tokens(),
		accounts:        svc.Auth,
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.AuthRateLimit)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the routed handler, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
}

// setupRoutes configures routes for the API.
func (s *Server) setupRoutes(authRateLimit int) {
	h := s.handlers

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(authRateLimit))
			r.Post("/auth/signup", h.Signup)
			r.Post("/auth/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth(s.tokens))

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", h.Me)
				r.Patch("/", h.UpdateMe)
				r.Delete("/", h.DeleteMe)
				r.Put("/photo", h.SetPhoto)
				r.Get("/friends", h.Friends)
				r.Post("/friends", h.AddFriend)
				r.Delete("/friends/{email}", h.RemoveFriend)
			})

			r.Route("/content", func(r chi.Router) {
				r.Get("/", h.ListContent)
				r.Get("/legacy", h.LegacyContent)
				r.Get("/count", h.ContentCount)
				r.Get("/{key}", h.GetContent)

				r.Group(func(r chi.Router) {
					r.Use(requireAdmin(s.accounts))
					r.Post("/", h.AddContent)
					r.Patch("/{key}", h.UpdateContent)
					r.Delete("/{key}", h.DeleteContent)
				})
			})

			r.Route("/watchlist", func(r chi.Router) {
				r.Get("/", h.Watchlist)
				r.Post("/", h.AddToWatchlist)
				r.Delete("/", h.ClearWatchlist)
				r.Get("/legacy", h.LegacyWatchlist)
				r.Get("/count", h.WatchlistCount)
				r.Get("/{key}", h.InWatchlist)
				r.Delete("/{key}", h.RemoveFromWatchlist)
			})

			r.Route("/activities", func(r chi.Router) {
				r.Get("/", h.Activities)
				r.Post("/", h.LogActivity)
				r.Put("/{id}", h.UpdateActivity)
				r.Delete("/{id}", h.DeleteActivity)
			})

			r.Route("/moods", func(r chi.Router) {
				r.Get("/", h.MoodEntries)
				r.Post("/", h.AddMoodEntry)
				r.Put("/{id}", h.UpdateMoodEntry)
				r.Delete("/{id}", h.DeleteMoodEntry)
			})

			r.Get("/feedback", h.Feedback)
			r.Post("/feedback", h.SaveFeedback)
			r.Get("/recommendations", h.Recommendations)

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdmin(s.accounts))
				r.Get("/users", h.AllUsers)
				r.Get("/users/{email}", h.UserDetails)
				r.Patch("/users/{email}", h.PatchUser)
				r.Put("/users/{email}", h.PutUser)
				r.Delete("/users/{email}", h.DeleteUser)
				r.Put("/users/{email}/role", h.SetRole)
				r.Get("/feedback", h.AllFeedback)
				r.Delete("/feedback/{id}", h.DeleteFeedback)
				r.Get("/stats", h.Stats)
			})
		})
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.Info().Str("addr", s.server.Addr).Msg("starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and shuts it down gracefully on SIGINT, SIGTERM or
// when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logging.Info().Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logging.Info().Msg("server stopped")
	return nil
}
