package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	httpapi "github.com/mydigitalspace/knowledgehub/internal/hub/http"
	"github.com/mydigitalspace/knowledgehub/internal/hub/service"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store/drivers/postgres"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store/drivers/sqlite"
	"github.com/mydigitalspace/knowledgehub/pkg/cryptox"
	"github.com/mydigitalspace/knowledgehub/pkg/feedx"
	"github.com/mydigitalspace/knowledgehub/pkg/jwtx"
	"github.com/mydigitalspace/knowledgehub/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the API server with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	authService     *service.AuthService
	noteService     *service.NoteService
	workflowService *service.WorkflowService
	categoryService *service.CategoryService
	contentService  *service.ContentService
	adminService    *service.AdminService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "knowledgehub",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.PepperFile != "" {
		cryptox.SetPepperPath(cfg.PepperFile)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("knowledgehub starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown drains in-flight requests and closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down knowledgehub...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("knowledgehub stopped")
	return nil
}

// initDatabase picks the driver from the configuration and applies
// migrations. A DATABASE_URL (or DB_HOST) selects Postgres; the default is a
// local SQLite file.
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	if strings.HasPrefix(app.cfg.DatabaseURL, "postgres://") || strings.HasPrefix(app.cfg.DatabaseURL, "postgresql://") {
		db, err = postgres.NewStore(context.Background(), app.cfg.DatabaseURL)
	} else {
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
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
}

// initServices initializes all business logic services.
func (app *Application) initServices() error {
	signer, err := jwtx.NewSignerHS256([]byte(app.cfg.JWTSecret))
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}

	app.authService = &service.AuthService{
		Store:  app.db,
		Signer: signer,
		Issuer: app.cfg.Issuer,
		TTL:    app.cfg.JWTExpire,
	}

	app.noteService = &service.NoteService{Store: app.db}
	app.workflowService = &service.WorkflowService{Store: app.db}
	app.categoryService = &service.CategoryService{Store: app.db}
	app.contentService = &service.ContentService{
		Store:   app.db,
		Fetcher: feedx.NewHTTPFetcher(),
	}
	app.adminService = &service.AdminService{Store: app.db}

	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() error {
	verifier, err := jwtx.NewVerifierHS256([]byte(app.cfg.JWTSecret), app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	router := httpapi.NewRouter(verifier, BuildVersion, app.db, app.cfg.CORSOrigins, app.logger)
	router.AuthService = app.authService
	router.NoteService = app.noteService
	router.WorkflowService = app.workflowService
	router.CategoryService = app.categoryService
	router.ContentService = app.contentService
	router.AdminService = app.adminService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
