package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/avelichko/notekeeper/internal/client/api"
	"github.com/avelichko/notekeeper/internal/client/cache"
	"github.com/avelichko/notekeeper/internal/client/config"
	"github.com/avelichko/notekeeper/internal/client/push"
	"github.com/avelichko/notekeeper/internal/client/reminder"
	"github.com/avelichko/notekeeper/internal/client/session"
	notesync "github.com/avelichko/notekeeper/internal/client/sync"
	"github.com/avelichko/notekeeper/internal/logging"
)

// App wires the client together: the session store, the REST client, the
// note cache, the push channel and the sync orchestrator, fronted by a REPL.
type App struct {
	config     *config.Config
	sessions   *session.Store
	orch       *notesync.Orchestrator
	dispatcher *reminder.Dispatcher
	reader     *bufio.Reader
	logger     logging.Logger
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	sessions, err := session.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	apiClient := api.NewHTTPClient(c.ServerURL, sessions, c.RequestTimeout)

	app := &App{
		config:   c,
		sessions: sessions,
		reader:   bufio.NewReader(os.Stdin),
		logger:   logger,
	}

	app.dispatcher = reminder.New(&terminalNotifier{}, logger)

	dial := func(ctx context.Context, credential string) (push.Channel, error) {
		return push.Dial(ctx, c.WebsocketURL, credential, logger)
	}

	app.orch = notesync.New(apiClient, sessions, cache.New(apiClient), app.dispatcher, dial, logger)

	return app, nil
}

func (a *App) isLoggedIn() bool {
	return a.orch.Session() != nil
}

// status renders the prompt suffix: the signed-in email plus the current
// sync state, e.g. "(alice@example.com idle)".
func (a *App) status() string {
	s := ""
	if sess := a.orch.Session(); sess != nil {
		s = sess.Identity.Email + " "
	}
	s += string(a.orch.State())
	return fmt.Sprintf("(%s)", s)
}

// Run restores any persisted session, starts the reminder dispatcher and
// enters the REPL. It blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.sessions.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.dispatcher.Run(ctx)

	restored, err := a.orch.Restore(ctx)
	if err != nil {
		a.logger.Warn(ctx, "session restore failed", "error", err)
	}
	if restored {
		printlnFn("Welcome back,", a.orch.Session().Identity.Email)
	}

	printlnFn("NoteKeeper CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}
