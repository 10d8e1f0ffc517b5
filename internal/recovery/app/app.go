package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/regain/internal/recovery/http"
	"github.com/aussiebroadwan/regain/internal/recovery/service"
	"github.com/aussiebroadwan/regain/internal/recovery/store"
	"github.com/aussiebroadwan/regain/internal/recovery/store/drivers/memory"
	"github.com/aussiebroadwan/regain/internal/recovery/store/drivers/sqlite"
	"github.com/aussiebroadwan/regain/pkg/cryptox"
	"github.com/aussiebroadwan/regain/pkg/grantx"
	"github.com/aussiebroadwan/regain/pkg/httpx"
	"github.com/aussiebroadwan/regain/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the recovery service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *grantx.Signer
	redis  *redis.Client

	tokenService        *service.TokenService
	sessionService      *service.SessionService
	enrollmentService   *service.EnrollmentService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "recovery-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Pepper backs the deterministic token digests; it must be loadable
	// before any token is issued or checked.
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initStore(); err != nil {
		return nil, err
	}

	signer, err := grantx.NewSigner(cfg.GrantIssuer, cfg.GrantTTL)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize grant signer: %w", err)
	}
	app.signer = signer

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("recovery service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down recovery service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("recovery service stopped")
	return nil
}

func (app *Application) initStore() error {
	switch app.cfg.StoreDriver {
	case "memory":
		app.db = memory.NewStore()
		app.logger.Warn("using in-memory store, recovery state is lost on restart")
		return nil

	case "sqlite":
		host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(host)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.db = db

		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply database migrations: %w", err)
		}
		app.logger.Info("database migrations applied successfully")
		return nil

	default:
		return fmt.Errorf("unknown store driver %q", app.cfg.StoreDriver)
	}
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Store:    app.db,
		TokenTTL: app.cfg.TokenTTL,
	}

	app.sessionService = &service.SessionService{
		Store:      app.db,
		Tokens:     app.tokenService,
		Signer:     app.signer,
		SessionTTL: app.cfg.SessionTTL,
	}

	app.enrollmentService = &service.EnrollmentService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.SessionService = app.sessionService
	router.TokenService = app.tokenService
	router.EnrollmentService = app.enrollmentService

	router.StartLimiter = app.windowLimiter(httpx.StartPolicy, "start")
	router.VerifyLimiter = app.windowLimiter(httpx.VerifyPolicy, "verify")
	router.CompleteLimiter = app.windowLimiter(httpx.CompletePolicy, "complete")
	router.PublicGuard = httpx.NewPublicGuard(app.cfg.PublicRequestsPerMinute)

	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// windowLimiter picks the limiter backend. With a Redis address configured
// the quota is shared across replicas; otherwise each replica counts alone.
func (app *Application) windowLimiter(policy httpx.WindowPolicy, class string) httpx.WindowLimiter {
	if app.cfg.RedisAddr == "" {
		return httpx.NewMemoryWindowLimiter(policy)
	}

	if app.redis == nil {
		app.redis = redis.NewClient(&redis.Options{Addr: app.cfg.RedisAddr})
		app.logger.Info("rate limiting backed by redis", "addr", app.cfg.RedisAddr)
	}
	return httpx.NewRedisWindowLimiter(app.redis, policy, "regain:rl:"+class)
}
