package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/client/config"
	"github.com/dmitrijs2005/gophnotes/internal/client/crypto"
	"github.com/dmitrijs2005/gophnotes/internal/client/notestore"
	"github.com/dmitrijs2005/gophnotes/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophnotes/internal/client/services"
	"github.com/dmitrijs2005/gophnotes/internal/filex"
	"github.com/dmitrijs2005/gophnotes/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// noteSource is the part of notestore.Store the commands read from.
type noteSource interface {
	Snapshot() notestore.Snapshot
	Refresh(ctx context.Context) error
}

// keyCache is a CryptoService whose cached note keys can be dropped.
type keyCache interface {
	crypto.CryptoService
	Reset()
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	authService services.AuthService
	noteService services.NoteService
	remote      client.RemoteStore
	keys        keyCache
	notes       noteSource
	store       *notestore.Store
	events      chan notestore.SessionEvent
	session     *metadata.Session
	modeMu      sync.Mutex
	Mode        Mode
	reader      *bufio.Reader
	out         io.Writer
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	dir, err := filex.EnsureDataDir(c.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dir, "notes.db"))
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient, err := client.NewNotesClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	keys := crypto.NewService(apiClient, logger)

	a := &App{
		config:      c,
		logger:      logger.With("module", "cli"),
		authService: services.NewAuthService(apiClient, db),
		noteService: services.NewNoteService(apiClient, keys, logger),
		remote:      apiClient,
		keys:        keys,
		events:      make(chan notestore.SessionEvent),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}

	a.store = notestore.New(notestore.Options{
		Interval:           c.PollInterval,
		DecryptConcurrency: c.DecryptConcurrency,
		Notifier:           notestore.NotifierFunc(a.notify),
		Logger:             logger,
	})
	a.notes = a.store

	return a, nil
}

// notify prints a sync failure for the user; details go to the log.
func (a *App) notify(err error, message string) {
	a.logger.Debug(context.Background(), "sync notification", "error", err)
	fmt.Fprintln(a.out, message)
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(context.Background(), "switched mode", "mode", mode)
	}
}

func (a *App) mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.Mode
}

// Run starts the note store and the connectivity watcher and blocks in the
// REPL until the user leaves.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.authService.Close(ctx)

	storeDone := make(chan struct{})
	go func() {
		defer close(storeDone)
		a.store.Run(ctx, a.events)
	}()
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)

	cancel()
	<-storeDone
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

// emit forwards a session change to the note store and waits until the store
// has applied it.
func (a *App) emit(ev notestore.SessionEvent) {
	if a.events == nil {
		return
	}
	ev.Applied = make(chan struct{})
	a.events <- ev
	<-ev.Applied
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
