package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"roster/internal/domain/audit"
	"roster/internal/domain/auth"
	"roster/internal/domain/directory"
	"roster/internal/domain/reports"
	"roster/internal/platform/config"
	"roster/internal/platform/crypto"
	"roster/internal/platform/db"
	"roster/internal/platform/metrics"
	"roster/internal/transport/http/api"
	audithandler "roster/internal/transport/http/handlers/audit"
	authhandler "roster/internal/transport/http/handlers/auth"
	directoryhandler "roster/internal/transport/http/handlers/directory"
	reportshandler "roster/internal/transport/http/handlers/reports"
	"roster/internal/transport/http/middleware"
	"roster/migrations"
)

type App struct {
	Config    config.Config
	DB        *db.Pool
	Directory *directory.Store
	Audit     *audit.Service
	Metrics   *metrics.Collector
	Router    http.Handler
}

// New builds the directory, loads it from Postgres when DATABASE_URL is set
// (seeding an empty database first) and wires the HTTP router. With a
// database the audit log is persisted too.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{
		Config:  cfg,
		Audit:   audit.New(cfg.AuditCapacity),
		Metrics: metrics.New(),
	}

	store, pool, err := OpenDirectory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Directory = store
	app.DB = pool
	app.Directory.Subscribe(app.Metrics)

	if pool != nil {
		sealer, err := crypto.New(cfg.DataEncryptionKey)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("encryption setup: %w", err)
		}
		if err := app.Audit.Persist(ctx, db.NewAuditLog(pool, sealer)); err != nil {
			app.Close()
			return nil, err
		}
	}

	operator, err := auth.NewOperator(cfg.AdminEmail, cfg.AdminPassword, cfg.AdminUserID, cfg.AdminTOTPSecret)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("operator setup: %w", err)
	}
	authn := auth.NewAuthenticator(cfg.JWTSecret, cfg.TokenTTL, operator)

	app.Router = app.routes(authn)
	return app, nil
}

// OpenDirectory returns the directory store. With a database URL the store
// is loaded from the Postgres snapshot (seeding an empty database first) and
// writes through to it; otherwise it holds the seed data in memory.
func OpenDirectory(ctx context.Context, cfg config.Config) (*directory.Store, *db.Pool, error) {
	store := directory.NewStore()
	if cfg.DatabaseURL == "" {
		if cfg.SeedData {
			store.Load(directory.SeedUsers(), directory.SeedRoles())
		}
		return store, nil, nil
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("db connect failed: %w", err)
	}
	fail := func(err error) (*directory.Store, *db.Pool, error) {
		pool.Close()
		return nil, nil, err
	}

	schema := fs.FS(migrations.FS)
	if cfg.MigrationsDir != "" {
		schema = os.DirFS(cfg.MigrationsDir)
	}
	if err := db.Migrate(ctx, pool, schema); err != nil {
		return fail(fmt.Errorf("migrations failed: %w", err))
	}

	sealer, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return fail(fmt.Errorf("encryption setup: %w", err))
	}
	snapshot := db.NewSnapshot(pool, sealer)
	if cfg.SeedData {
		seeded, err := db.Seed(ctx, snapshot)
		if err != nil {
			return fail(fmt.Errorf("seed failed: %w", err))
		}
		if seeded {
			slog.Info("seeded empty directory")
		}
	}

	users, roles, err := snapshot.Load(ctx)
	if err != nil {
		return fail(fmt.Errorf("snapshot load failed: %w", err))
	}
	store.Load(users, roles)
	store.Subscribe(snapshot)
	return store, pool, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func (a *App) routes(authn *auth.Authenticator) http.Handler {
	cfg := a.Config
	store := a.Directory

	var fallback *auth.UserContext
	if !cfg.AuthRequired {
		fallback = &auth.UserContext{UserID: cfg.AdminUserID, Email: auth.NormalizeEmail(cfg.AdminEmail)}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth(cfg.JWTSecret, fallback))
	router.Use(middleware.AccessLog(slog.Default()))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(a.Metrics))
	}
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if a.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := a.DB.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authHandler := authhandler.NewHandler(authn, store, a.Audit)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.With(middleware.RequireAuth).Post("/auth/logout", authHandler.HandleLogout)
		r.With(middleware.RequireAuth).Get("/me", authHandler.HandleMe)

		directoryHandler := directoryhandler.NewHandler(directory.NewService(store), a.Audit, middleware.NewIdempotencyStore(24*time.Hour))
		directoryHandler.RegisterRoutes(r)

		reportsHandler := reportshandler.NewHandler(reports.NewService(store), store)
		reportsHandler.RegisterRoutes(r)

		auditHandler := audithandler.NewHandler(a.Audit, store)
		auditHandler.RegisterRoutes(r)

		if cfg.MetricsEnabled {
			r.With(middleware.RequirePermission(directory.PermSystemSettings, store)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
			})
		}
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	return router
}

func Run() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("server shutdown failed", "err", err)
		}
	}()

	log.Printf("roster server listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		index := filepath.Join(h.staticPath, h.indexPath)
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
		return
	}

	http.NotFound(w, r)
}
