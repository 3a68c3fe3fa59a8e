// Package app initializes and runs the blog service. It configures
// logging, storage, sessions, authentication and routing, and handles
// graceful shutdown.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/miniblog/internal/auth"
	"github.com/patric-chuzhbe/miniblog/internal/config"
	"github.com/patric-chuzhbe/miniblog/internal/db/memorystorage"
	"github.com/patric-chuzhbe/miniblog/internal/db/postgresdb"
	"github.com/patric-chuzhbe/miniblog/internal/db/storage"
	"github.com/patric-chuzhbe/miniblog/internal/hasher"
	"github.com/patric-chuzhbe/miniblog/internal/logger"
	"github.com/patric-chuzhbe/miniblog/internal/router"
	"github.com/patric-chuzhbe/miniblog/internal/service"
	"github.com/patric-chuzhbe/miniblog/internal/session"
	"github.com/patric-chuzhbe/miniblog/internal/sessioncleaner"
	"github.com/patric-chuzhbe/miniblog/internal/view"
)

// App encapsulates the configuration, HTTP handler, storage backend and
// background session cleaner needed to run the blog service.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	cleaner     *sessioncleaner.Cleaner
	stopCleaner context.CancelFunc
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing the logger
// - selecting and setting up storage
// - wiring sessions, the password hasher, the service and the router
// - starting the background session cleaner
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorageByDSN(app.cfg)
	if err != nil {
		return nil, err
	}

	sessionStore := session.NewMemStore()
	sessions := session.New(sessionStore, app.cfg.SessionCookieName, app.cfg.SessionTTL)

	app.cleaner = sessioncleaner.New(sessionStore, app.cfg.SessionCleanupEvery)
	cleanerRunCtx, stopCleaner := context.WithCancel(context.Background())
	app.stopCleaner = stopCleaner

	app.cleaner.Run(cleanerRunCtx)
	app.cleaner.ListenErrors(func(err error) {
		logger.Log.Debugln("Error passed from the `app.cleaner.ListenErrors()`:", zap.Error(err))
	})

	views, err := view.New()
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(
		service.New(app.db, hasher.New(app.cfg.BcryptCost)),
		sessions,
		auth.New(sessions),
		views,
	)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support. It listens
// for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Closing storage and exiting...")
		a.stopCleaner()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getStorageByDSN(cfg *config.Config) (storage.Storage, error) {
	if cfg.DatabaseDSN == "" {
		return memorystorage.New()
	}

	db, err := postgresdb.New(
		context.Background(),
		cfg.DatabaseDSN,
		cfg.DBConnectionTimeout,
		cfg.MigrationsDir,
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	return db, nil
}
