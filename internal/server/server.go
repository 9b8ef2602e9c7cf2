// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer: it connects the store, services,
// handlers, middleware and routes. main.go stays minimal and only reads
// configuration.
//
// DEPENDENCY INJECTION FLOW:
//
//	sqlite.DB (repository.Storage)
//	  └─ repository.Store
//	       ├─ TodoService, EventService, NoteService, PreferenceService
//	       └─ SessionService ── TokenService ── RequireSession
//	            └─ DashboardService (reads the four above)
//
// This is the "composition root" pattern: all dependencies are wired in
// one place (New), rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/focusboard/internal/auth"
	"github.com/sakif/focusboard/internal/handler"
	"github.com/sakif/focusboard/internal/middleware"
	"github.com/sakif/focusboard/internal/repository"
	sqliteRepo "github.com/sakif/focusboard/internal/repository/sqlite"
	"github.com/sakif/focusboard/internal/service"
)

// Config holds server configuration, filled from the environment by main.
type Config struct {
	Port      int
	DBPath    string // SQLite file, or ":memory:"
	JWTSecret string // signs the session cookie, at least 16 characters

	// HashPasswords stores account passwords as bcrypt hashes.
	HashPasswords bool
	// LegacyEmailMatch makes the signup duplicate-email check case-sensitive.
	LegacyEmailMatch bool
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. Start closes it on shutdown;
// callers that never Start (tests) call Close.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, builds every service and registers the routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("configuring session tokens: %w", err)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(tokens)

	return s, nil
}

// Handler returns the router, for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /auth/login                     → start a session
//	POST   /auth/signup                    → create account + session
//	GET    /api/preferences/theme          → read theme
//	PUT    /api/preferences/theme          → set theme
//	POST   /api/preferences/theme/toggle   → flip theme
//
//	(everything below requires a live session)
//	POST   /auth/logout
//	GET    /api/me
//	GET    /api/dashboard
//	GET    /api/todos?filter=    POST /api/todos
//	POST   /api/todos/{id}/toggle           DELETE /api/todos/{id}
//	GET    /api/events           POST /api/events
//	GET    /api/events/upcoming?limit=      GET /api/events/month
//	DELETE /api/events/{id}
//	GET    /api/notes?q=&legacy= POST /api/notes
//	GET    /api/notes/{id}       PUT /api/notes/{id}   DELETE /api/notes/{id}
//
// MIDDLEWARE ORDER MATTERS:
// RequestID must run before Logger so the log line carries the id.
// Recoverer sits inside Logger so a panic is still logged as a 500.
func (s *Server) setupRoutes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	var passwords *auth.PasswordService
	if s.config.HashPasswords {
		passwords = auth.NewPasswordService()
	}

	store := repository.NewStore(s.db, s.logger)
	sessions := service.NewSessionService(store, passwords, service.SessionOptions{
		HashPasswords:    s.config.HashPasswords,
		LegacyEmailMatch: s.config.LegacyEmailMatch,
	}, s.logger)
	todos := service.NewTodoService(store, s.logger)
	events := service.NewEventService(store, s.logger)
	notes := service.NewNoteService(store, s.logger)
	prefs := service.NewPreferenceService(store, s.logger)
	dashboard := service.NewDashboardService(sessions, todos, events, notes)

	authHandler := handler.NewAuthHandler(sessions, tokens, s.logger)
	todoHandler := handler.NewTodoHandler(todos, s.logger)
	eventHandler := handler.NewEventHandler(events, s.logger)
	noteHandler := handler.NewNoteHandler(notes, s.logger)
	prefHandler := handler.NewPreferenceHandler(prefs, s.logger)
	dashHandler := handler.NewDashboardHandler(dashboard, s.logger)

	requireSession := auth.RequireSession(tokens, sessions)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/signup", authHandler.HandleSignup)
		r.With(requireSession).Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		// Public: the login page is themed too.
		r.Route("/preferences/theme", func(r chi.Router) {
			r.Get("/", prefHandler.HandleGetTheme)
			r.Put("/", prefHandler.HandleSetTheme)
			r.Post("/toggle", prefHandler.HandleToggleTheme)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Get("/me", authHandler.HandleMe)
			r.Get("/dashboard", dashHandler.HandleSummary)

			r.Route("/todos", func(r chi.Router) {
				r.Get("/", todoHandler.HandleList)
				r.Post("/", todoHandler.HandleCreate)
				r.Post("/{id}/toggle", todoHandler.HandleToggle)
				r.Delete("/{id}", todoHandler.HandleDelete)
			})

			r.Route("/events", func(r chi.Router) {
				r.Get("/", eventHandler.HandleList)
				r.Get("/upcoming", eventHandler.HandleUpcoming)
				r.Get("/month", eventHandler.HandleMonth)
				r.Post("/", eventHandler.HandleCreate)
				r.Delete("/{id}", eventHandler.HandleDelete)
			})

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", noteHandler.HandleList)
				r.Post("/", noteHandler.HandleCreate)
				r.Get("/{id}", noteHandler.HandleGet)
				r.Put("/{id}", noteHandler.HandleUpdate)
				r.Delete("/{id}", noteHandler.HandleDelete)
			})
		})
	})
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
