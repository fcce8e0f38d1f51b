// Package server initializes and runs the NoteKeeper backend. It opens the
// database, applies migrations, starts the websocket hub and the reminder
// scheduler, and serves the HTTP API until shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/avelichko/notekeeper/internal/logging"
	"github.com/avelichko/notekeeper/internal/server/config"
	"github.com/avelichko/notekeeper/internal/server/httpapi"
	"github.com/avelichko/notekeeper/internal/server/hub"
	"github.com/avelichko/notekeeper/internal/server/migrations"
	"github.com/avelichko/notekeeper/internal/server/notes"
	"github.com/avelichko/notekeeper/internal/server/users"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	hub       *hub.Hub
	scheduler *notes.Scheduler
	handler   http.Handler
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := runMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	userRepo := users.NewPostgresRepository(db)
	noteRepo := notes.NewPostgresRepository(db)

	userService := users.NewService(userRepo, c)
	noteService := notes.NewService(noteRepo)

	pushHub := hub.New(logger)
	scheduler := notes.NewScheduler(noteRepo, pushHub, c.ReminderPollInterval, logger)

	handler := httpapi.NewRouter(userService, noteService, pushHub, []byte(c.SecretKey), logger)

	return &App{
		config:    c,
		logger:    logger,
		db:        db,
		hub:       pushHub,
		scheduler: scheduler,
		handler:   handler,
	}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.BindAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.hub.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.scheduler.Run(ctx)
	}()

	srv := &http.Server{Addr: app.config.BindAddr, Handler: app.handler}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "http server error", "error", err)
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "http server shutdown error", "error", err)
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
