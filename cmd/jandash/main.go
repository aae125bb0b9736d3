// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/jandash/jandash/internal/backend"
	"github.com/jandash/jandash/internal/bootstrap"
	"github.com/jandash/jandash/internal/cache"
	"github.com/jandash/jandash/internal/config"
	"github.com/jandash/jandash/internal/handler"
	"github.com/jandash/jandash/internal/logging"
	"github.com/jandash/jandash/internal/middleware"
	"github.com/jandash/jandash/internal/query"
	"github.com/jandash/jandash/internal/render"
	"github.com/jandash/jandash/internal/scheduler"
	"github.com/jandash/jandash/internal/session"
	"github.com/jandash/jandash/internal/store"
	"github.com/jandash/jandash/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "jandash - User Administration Dashboard\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JANDASH_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JANDASH_BACKEND_URL       Base URL of the user document backend (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JANDASH_BACKEND_SECRET    Bearer token for the backend API\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JANDASH_DB_PATH           SQLite session database path (default: ./data/jandash.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JANDASH_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JANDASH_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JANDASH_SITE_URL          Public base URL of the dashboard (default: http://localhost:8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JANDASH_REDIS_URL         Redis URL for distributed caching (optional)\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		_, _ = fmt.Printf("jandash %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := logging.New(cfg.LogLevel)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize session database
	slog.Info("initializing session database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Initialize session manager
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Initialize query cache
	cacher := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	})
	if cfg.UseRedisCache() {
		slog.Info("cache initialized", "backend", "redis", "url", cfg.RedisURL)
	} else {
		slog.Info("cache initialized", "backend", "memory", "max_size", cfg.CacheMaxSize)
	}

	// Initialize backend client and the cached query layer over it
	client := backend.New(cfg.BackendURL, cfg.BackendSecret)
	users := query.NewUsers(cacher, client, time.Duration(cfg.CacheTTL)*time.Second)
	flow := bootstrap.New(client, users)
	slog.Info("backend client initialized", "url", cfg.BackendURL)

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}

	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		SiteName:       "jandash",
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Initialize and start the background cache refresh
	if cfg.RefreshSchedule != "" {
		sched := scheduler.New(users, cfg.RefreshSchedule, logger)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
		defer sched.Stop()
	}

	// Initialize handlers
	pagesHandler := handler.NewPagesHandler(renderer, sessionManager, users, flow, cfg.IdPLoginURL)
	usersHandler := handler.NewUsersHandler(users, renderer)
	healthHandler := handler.NewHealthHandler(db, cacher, sessionManager)

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))                    // Gzip compression with level 5
	r.Use(chimw.GetHead)                        // Handle HEAD requests for uptime monitoring
	r.Use(middleware.Timeout(30 * time.Second)) // 30 second request timeout
	r.Use(chimw.RedirectSlashes)                // Redirect /path/ to /path

	// Security headers middleware (CSP, HSTS, X-Frame-Options, etc.)
	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))
	slog.Info("security headers middleware initialized", "hsts", !cfg.IsDevelopment())

	r.Use(sessionManager.LoadAndSave)

	// CSRF protection for the create-user form
	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr())
	csrfMiddleware := middleware.CSRF(csrfConfig)
	slog.Info("CSRF protection initialized", "secure", !cfg.IsDevelopment())

	// Rate limit mutating requests per client IP
	mutationLimiter := middleware.NewMutationLimiter(2.0, 5)
	defer mutationLimiter.Close()

	// Health check route (public, returns additional details for authenticated callers)
	r.Get(handler.RouteHealth, healthHandler.Health)

	// Public routes
	r.Get(handler.RouteRoot, pagesHandler.Landing)

	// Development-only local sign-in shortcut
	if cfg.IsDevelopment() {
		r.Get(handler.RouteDevLogin, pagesHandler.DevLogin)
	}

	// Session-gated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(sessionManager))
		r.Use(csrfMiddleware)

		r.Get(handler.RouteWelcome, pagesHandler.Welcome)
		r.Get(handler.RouteDashboard, pagesHandler.Dashboard)
		r.Get(handler.RouteLogout, pagesHandler.Logout)
		r.Post(handler.RouteLogout, pagesHandler.Logout)

		r.Get(handler.RouteUsers, usersHandler.List)
		r.Get(handler.RouteUsersID, usersHandler.Detail)
		r.With(middleware.RefererGate(cfg.SiteURL)).Get(handler.RouteUsersNew, usersHandler.NewForm)
		r.With(mutationLimiter.Middleware()).Post(handler.RouteUsers, usersHandler.Create)
	})

	// Static file serving
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second, // Reduced from 120s to mitigate slowloris attacks
		MaxHeaderBytes:    1 << 20,          // 1MB max header size
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
