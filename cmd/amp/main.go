// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command amp runs the multi-tenant affiliate marketing platform server.
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

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/config"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/content"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/handler"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/imaging"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/logging"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/middleware"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/render"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/section"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/service"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/session"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/tenant"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/version"
	"github.com/0xSimbaDev/affiliate-website-sub002/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// crudHandlers defines the standard CRUD handler methods.
type crudHandlers struct {
	List     http.HandlerFunc
	NewForm  http.HandlerFunc
	Create   http.HandlerFunc
	EditForm http.HandlerFunc
	Update   http.HandlerFunc
	Delete   http.HandlerFunc
}

// registerCRUD registers standard CRUD routes for a resource.
// Routes: GET /, GET /new, POST /, GET /{id}, PUT /{id}, POST /{id}, DELETE /{id}
func registerCRUD(r chi.Router, base, baseID string, h crudHandlers) {
	r.Get(base, h.List)
	r.Get(base+handler.RouteSuffixNew, h.NewForm)
	r.Post(base, h.Create)
	r.Get(baseID, h.EditForm)
	r.Put(baseID, h.Update)
	r.Post(baseID, h.Update) // HTML forms can't send PUT
	r.Delete(baseID, h.Delete)
	r.Post(base+handler.RouteSuffixDelete, h.Delete) // HTML forms can't send DELETE either
}

// registerFrontendRoutes registers the public site routes on the given router.
func registerFrontendRoutes(r chi.Router, h *handler.FrontendHandler) {
	r.Get(handler.RouteRoot, h.Home)
	r.Get(handler.RouteProductSlug, h.Product)
	r.Get(handler.RouteArticleSlug, h.Article)
	r.Get(handler.RouteCategorySlug, h.Category)
	r.Get(handler.RouteContact, h.ContactForm)
	r.Post(handler.RouteContact, h.ContactSubmit)
	r.Get(handler.RouteSitemap, h.Sitemap)
	r.Get(handler.RouteRobots, h.Robots)
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "amp - multi-tenant affiliate marketing platform\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AMP_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AMP_DB_PATH           SQLite database path (default: ./data/amp.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AMP_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AMP_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AMP_DEFAULT_SITE      Fallback site slug for unmapped hostnames (default: demo-gaming)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AMP_UPLOADS_DIR       Uploaded media directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AMP_DO_SEED           Seed demo data on startup (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("amp %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
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

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// Seed the initial admin account, and demo content when enabled
	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.DoSeed); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	// Initialize session manager
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Content rendering pipeline: shortcodes, markdown, sanitization, auto-linking
	contentRenderer := content.NewRenderer(cfg.AutoLink)
	sectionRegistry := section.NewRegistry()

	// Tenant resolution: hostname to site, with a dev-only ?site= override
	tenantResolver := tenant.NewResolver(store.New(db), cfg.DefaultSite, cfg.IsDevelopment())
	slog.Info("tenant resolver initialized", "default_site", cfg.DefaultSite)

	// Services shared by handlers
	eventService := service.NewEventService(db)
	imageProcessor := imaging.NewProcessor(cfg.UploadsDir)

	// Login protection: per-IP rate limit plus per-account lockout
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized",
		"ip_rate_limit", "0.5 req/s",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	// CSRF protection middleware, applied per route group
	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())
	csrfMiddleware := middleware.CSRF(csrfConfig)
	slog.Info("CSRF protection initialized", "secure", !cfg.IsDevelopment())

	// Initialize handlers
	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, eventService, loginProtection)
	frontendHandler := handler.NewFrontendHandler(db, renderer, contentRenderer, sectionRegistry, eventService, cfg.AutoLink)
	adminHandler := handler.NewAdminHandler(db, renderer)
	siteHandler := handler.NewSiteHandler(db, renderer, eventService)
	nicheHandler := handler.NewNicheHandler(db, renderer, eventService)
	productHandler := handler.NewProductHandler(db, renderer, eventService)
	articleHandler := handler.NewArticleHandler(db, renderer, eventService)
	categoryHandler := handler.NewCategoryHandler(db, renderer, eventService)
	articleCategoryHandler := handler.NewArticleCategoryHandler(db, renderer, eventService)
	mediaHandler := handler.NewMediaHandler(db, renderer, eventService, imageProcessor)
	userHandler := handler.NewUserHandler(db, renderer, eventService)
	eventHandler := handler.NewEventHandler(db, renderer)
	formHandler := handler.NewFormHandler(db, renderer)
	healthHandler := handler.NewHealthHandler(db, versionInfo)

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(tenant.CanonicalHost)
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(sessionManager.LoadAndSave)

	// Health check routes (public)
	r.Get("/healthz", healthHandler.Live)
	r.Get("/readyz", healthHandler.Ready)

	// Public frontend routes, scoped to the site resolved from the hostname
	r.Group(func(r chi.Router) {
		r.Use(tenantResolver.Middleware)
		r.Use(csrfMiddleware)
		registerFrontendRoutes(r, frontendHandler)
	})

	// Auth routes (public, with CSRF and login rate limiting)
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Get(handler.RouteLogout, authHandler.Logout)
		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	// Admin routes (protected with CSRF)
	r.Route(handler.RouteAdmin, func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))
		r.Use(middleware.RequireRole(model.RoleOwner))

		// Dashboard and content routes (owner + admin)
		r.Get(handler.RouteRoot, adminHandler.Dashboard)

		registerCRUD(r, handler.RouteAdminProducts, handler.RouteAdminProducts+handler.RouteParamID, crudHandlers{
			List: productHandler.List, NewForm: productHandler.NewForm, Create: productHandler.Create,
			EditForm: productHandler.EditForm, Update: productHandler.Update, Delete: productHandler.Delete,
		})

		registerCRUD(r, handler.RouteAdminArticles, handler.RouteAdminArticles+handler.RouteParamID, crudHandlers{
			List: articleHandler.List, NewForm: articleHandler.NewForm, Create: articleHandler.Create,
			EditForm: articleHandler.EditForm, Update: articleHandler.Update, Delete: articleHandler.Delete,
		})

		registerCRUD(r, handler.RouteAdminCategories, handler.RouteAdminCategories+handler.RouteParamID, crudHandlers{
			List: categoryHandler.List, NewForm: categoryHandler.NewForm, Create: categoryHandler.Create,
			EditForm: categoryHandler.EditForm, Update: categoryHandler.Update, Delete: categoryHandler.Delete,
		})

		registerCRUD(r, handler.RouteAdminArticleCat, handler.RouteAdminArticleCat+handler.RouteParamID, crudHandlers{
			List: articleCategoryHandler.List, NewForm: articleCategoryHandler.NewForm, Create: articleCategoryHandler.Create,
			EditForm: articleCategoryHandler.EditForm, Update: articleCategoryHandler.Update, Delete: articleCategoryHandler.Delete,
		})

		// Media library routes
		r.Get(handler.RouteAdminMedia, mediaHandler.List)
		r.Post(handler.RouteAdminMedia+handler.RouteSuffixUpload, mediaHandler.Upload)
		r.Post(handler.RouteAdminMedia+handler.RouteParamID, mediaHandler.UpdateAltText)
		r.Delete(handler.RouteAdminMedia+handler.RouteParamID, mediaHandler.Delete)
		r.Post(handler.RouteAdminMedia+handler.RouteSuffixDelete, mediaHandler.Delete) // HTML forms can't send DELETE

		// Contact form submissions
		r.Get(handler.RouteAdminForms, formHandler.List)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin())

			registerCRUD(r, handler.RouteAdminSites, handler.RouteAdminSites+handler.RouteParamID, crudHandlers{
				List: siteHandler.List, NewForm: siteHandler.NewForm, Create: siteHandler.Create,
				EditForm: siteHandler.EditForm, Update: siteHandler.Update, Delete: siteHandler.Delete,
			})

			registerCRUD(r, handler.RouteAdminNiches, handler.RouteAdminNiches+handler.RouteParamID, crudHandlers{
				List: nicheHandler.List, NewForm: nicheHandler.NewForm, Create: nicheHandler.Create,
				EditForm: nicheHandler.EditForm, Update: nicheHandler.Update, Delete: nicheHandler.Delete,
			})

			registerCRUD(r, handler.RouteAdminUsers, handler.RouteAdminUsers+handler.RouteParamID, crudHandlers{
				List: userHandler.List, NewForm: userHandler.NewForm, Create: userHandler.Create,
				EditForm: userHandler.EditForm, Update: userHandler.Update, Delete: userHandler.Delete,
			})

			r.Get(handler.RouteAdminEvents, eventHandler.List)
		})
	})

	// Static file serving, cached for 1 year
	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	staticHandler := middleware.StaticCache(31536000)(http.StripPrefix("/static/dist/", http.FileServer(http.FS(staticFS))))
	r.Handle("/static/dist/*", staticHandler)

	// Serve uploaded media files, cached for 1 week
	uploadsHandler := middleware.StaticCache(604800)(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	r.Handle("/uploads/*", uploadsHandler)

	// 404 handler: render the site-themed not-found page
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		frontendHandler.NotFound(w, req)
	})

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
