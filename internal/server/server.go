// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware,
// and routes. It decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (tests create a server without running main)
// - Reusable (multiple entry points could share the same wiring)
// - Clean (main.go stays minimal — load config, start the server)
//
// DEPENDENCY INJECTION FLOW:
// New() assembles the whole chain in one place, the "composition root":
//
//	sqlite.DB → PostService / LikeService / StatsService / AuthService
//	          → PostHandler / LikeHandler / StatsHandler / AuthHandler
//	ratelimit.Store → ratelimit.Limiter (mounted on /api)
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services, and nobody below this package knows
// the concrete types above it.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/age-wisdom/internal/auth"
	"github.com/sakif/age-wisdom/internal/config"
	"github.com/sakif/age-wisdom/internal/handler"
	"github.com/sakif/age-wisdom/internal/middleware"
	"github.com/sakif/age-wisdom/internal/ratelimit"
	sqliteRepo "github.com/sakif/age-wisdom/internal/repository/sqlite"
	"github.com/sakif/age-wisdom/internal/service"
)

// Server owns the router and every resource that must be released on
// shutdown: the database connection and the rate limit store.
type Server struct {
	router       *chi.Mux
	config       config.Config
	logger       *slog.Logger
	db           *sqliteRepo.DB
	closeLimiter func()
}

// New creates a Server from the loaded configuration.
//
// RATE LIMIT STORE SELECTION:
// REDIS_ADDR set → Redis-backed counters shared across replicas.
// Unset → in-process counters, right for a single node.
//
// AUTH IS OPTIONAL:
// Without JWT_SECRET the server still runs — posting and liking stay fully
// anonymous and the /api/auth routes aren't registered.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
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

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /healthz                  → liveness probe
//	GET    /api/ages                 → post counts per target age
//	GET    /api/posts?target_age=N   → browse posts for an age
//	POST   /api/posts                → create a post (anonymous or attributed)
//	POST   /api/posts/{id}/like      → like a post
//	GET    /api/posts/{id}/like      → has the caller liked this post
//	GET    /api/stats/site           → site-wide stats
//	POST   /api/auth/signup          → register + session cookie
//	POST   /api/auth/signin          → sign in + session cookie
//	POST   /api/auth/logout          → clear session cookie        [auth]
//	GET    /api/auth/me              → current user profile        [auth]
//	GET    /api/users/posts          → own posts + stats           [auth]
//	DELETE /api/posts/{id}           → soft-delete own post        [auth]
//
// MIDDLEWARE ORDER MATTERS:
// RequestID → RealIP → Recoverer → CORS → request logging, then the rate
// limiter on /api only. RealIP must precede both the logger and the
// limiter so they see the true client address behind a proxy.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true, // the session cookie must survive CORS
		MaxAge:           300,
	}))

	s.router.Use(middleware.Logger(s.logger))

	// Liveness probe for the load balancer. Outside /api so it skips the
	// rate limiter.
	s.router.Get("/healthz", s.handleHealthz)

	// === Rate limiting store ===
	limiter, err := s.newLimiter()
	if err != nil {
		return err
	}

	// === Services and handlers ===
	postService := service.NewPostService(s.db, s.logger)
	likeService := service.NewLikeService(s.db, s.logger)
	statsService := service.NewStatsService(s.db, s.logger)

	postHandler := handler.NewPostHandler(postService, s.db, s.logger)
	likeHandler := handler.NewLikeHandler(likeService, s.logger)
	statsHandler := handler.NewStatsHandler(statsService, s.logger)

	// === Auth (only with a secret) ===
	var tokens *auth.TokenService
	if s.config.JWTSecret != "" {
		tokens, err = auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
	} else {
		s.logger.Warn("JWT_SECRET not set — accounts disabled, posting and liking stay anonymous")
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(limiter.Middleware)

		// Public routes. OptionalAuth attaches the user identity when a
		// session cookie is present but never blocks.
		r.Group(func(r chi.Router) {
			if tokens != nil {
				r.Use(auth.OptionalAuth(tokens))
			}
			r.Get("/ages", statsHandler.HandleAges)
			r.Get("/posts", postHandler.HandleList)
			r.Post("/posts", postHandler.HandleCreate)
			r.Post("/posts/{id}/like", likeHandler.HandleAdd)
			r.Get("/posts/{id}/like", likeHandler.HandleStatus)
			r.Get("/stats/site", statsHandler.HandleSite)
		})

		if tokens != nil {
			authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.logger)
			authHandler := handler.NewAuthHandler(authService, tokens, s.logger)

			r.Post("/auth/signup", authHandler.HandleSignUp)
			r.Post("/auth/signin", authHandler.HandleSignIn)

			// Protected routes — RequireAuth rejects missing/invalid tokens.
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth(tokens))
				r.Post("/auth/logout", authHandler.HandleLogout)
				r.Get("/auth/me", authHandler.HandleMe)
				r.Get("/users/posts", postHandler.HandleListMine)
				r.Delete("/posts/{id}", postHandler.HandleDelete)
			})
		}
	})

	return nil
}

// newLimiter builds the rate limiter from config and records the cleanup
// hook for shutdown.
func (s *Server) newLimiter() (*ratelimit.Limiter, error) {
	var store ratelimit.Store
	if s.config.RedisAddr != "" {
		redisStore, err := ratelimit.NewRedisStore(s.config.RedisAddr, s.config.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("creating redis rate limit store: %w", err)
		}
		s.closeLimiter = func() { _ = redisStore.Close() }
		store = redisStore
		s.logger.Info("rate limiting via redis", slog.String("addr", s.config.RedisAddr))
	} else {
		memStore := ratelimit.NewMemoryStore(s.config.RateWindow)
		s.closeLimiter = memStore.Close
		store = memStore
	}

	return ratelimit.New(store, s.config.RateLimit, s.config.RateWindow, s.logger), nil
}

// handleHealthz reports liveness. It pings the database so a wedged SQLite
// file shows up here before it shows up as user-facing 500s.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"status":"degraded"}`)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

// Router exposes the assembled handler, used by the package tests to serve
// requests without binding a port.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the server's resources without going through Start's
// shutdown path. Safe to call more than once.
func (s *Server) Close() {
	if s.closeLimiter != nil {
		s.closeLimiter()
		s.closeLimiter = nil
	}
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
}

// Start runs the HTTP server until a signal arrives, then shuts down
// gracefully.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new connections
// 2. Wait up to 30s for in-flight requests to finish
// 3. Release the rate limit store and close the database
//    (flushes the WAL and releases the file lock)
func (s *Server) Start() error {
	defer s.Close()

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
		if err != http.ErrServerClosed {
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
