package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/clipkeeper/internal/auth"
	"github.com/dmitrijs2005/clipkeeper/internal/capture"
	"github.com/dmitrijs2005/clipkeeper/internal/client/client"
	"github.com/dmitrijs2005/clipkeeper/internal/client/config"
	"github.com/dmitrijs2005/clipkeeper/internal/client/keystore"
	"github.com/dmitrijs2005/clipkeeper/internal/client/models"
	"github.com/dmitrijs2005/clipkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clipkeeper/internal/clips"
	"github.com/dmitrijs2005/clipkeeper/internal/drive"
	"github.com/dmitrijs2005/clipkeeper/internal/filex"
	"github.com/dmitrijs2005/clipkeeper/internal/history"
	"github.com/dmitrijs2005/clipkeeper/internal/ipc"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/pipeline"
	"github.com/dmitrijs2005/clipkeeper/internal/settings"
	"github.com/dmitrijs2005/clipkeeper/internal/shortcut"
	"github.com/dmitrijs2005/clipkeeper/internal/sweeper"
	"github.com/dmitrijs2005/clipkeeper/internal/syncer"

	cliprepo "github.com/dmitrijs2005/clipkeeper/internal/client/repositories/clips"
)

const (
	onlineCheckInterval = 10 * time.Second
	pingTimeout         = 3 * time.Second
	teardownTimeout     = 10 * time.Second
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type session interface {
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
	IsSignedIn() bool
}

type remote interface {
	ListFiles(ctx context.Context) ([]models.RemoteFile, error)
	UploadClips(ctx context.Context, cs []clips.Clip) ([]models.UploadResult, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config *config.Config
	logger logging.Logger

	db     *sql.DB
	api    *client.GRPCClient
	creds  *aws.CredentialsCache
	closed sync.Once

	auth      *auth.Manager
	settings  *settings.Provider
	store     *clips.Store
	history   *history.History
	syncer    *syncer.Coordinator
	pipeline  *pipeline.Pipeline
	sweeper   *sweeper.Sweeper
	shortcuts *shortcut.Registrar
	ipc       *ipc.Server

	// console surface
	session session
	remote  remote
	pinger  pinger
	in      io.Reader

	modeMu sync.Mutex
	mode   Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, os.Stderr)
	if err != nil {
		return nil, err
	}

	path, err := filex.EnsureParentDir(c.DatabasePath)
	if err != nil {
		return nil, err
	}
	db, err := client.InitDatabase(ctx, path)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", path, "error", err)
		return nil, err
	}

	app := &App{config: c, logger: logger, db: db, in: os.Stdin}
	if err := app.wire(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}
	return app, nil
}

func (a *App) wire(ctx context.Context) error {
	c := a.config
	ks := keystore.New(metadata.NewSQLiteRepository(a.db), c.StorageSecret)

	a.settings = settings.NewProvider(a.loadSettings(ctx, ks), ks)

	api, err := client.NewGRPCClient(c.TokenServiceAddr)
	if err != nil {
		return fmt.Errorf("token service client: %w", err)
	}
	a.api = api

	prompter := auth.NewTerminalPrompter(os.Stdin, os.Stdout)
	a.auth = auth.NewManager(ks, api, auth.NewPasswordFlow(api, prompter), a.logger.With("module", "auth"))

	s3c, creds, err := drive.NewClient(ctx, drive.ClientOptions{
		Region:          c.S3Region,
		BaseEndpoint:    c.S3BaseEndpoint,
		AccessKeyID:     c.S3AccessKeyID,
		SecretAccessKey: c.S3SecretAccessKey,
		Session:         a.auth,
	})
	if err != nil {
		return fmt.Errorf("drive client: %w", err)
	}
	a.creds = creds
	d := drive.NewS3Drive(s3c, c.S3Bucket, c.S3Prefix, a.logger.With("module", "drive"))

	a.store = clips.NewStore()

	syncLog := a.logger.With("module", "syncer")
	a.syncer = syncer.New(d, ks, a.settings, a.store, syncer.LogReporter{Logger: syncLog}, syncLog)

	a.auth.Subscribe(a.onSessionChange)

	a.history = history.New(a.store, cliprepo.NewSQLiteRepository(a.db), a.logger.With("module", "history"))

	poller := capture.NewPoller(capture.NewOSReader(), c.PollInterval, a.logger.With("module", "capture"))
	a.pipeline = pipeline.New(poller, a.store, a.settings, a.syncer, a.logger.With("module", "pipeline"))

	a.sweeper = sweeper.New(a.store, a.auth, a.settings, a.logger.With("module", "sweeper"))

	scLog := a.logger.With("module", "shortcut")
	a.shortcuts = shortcut.NewRegistrar(shortcut.LogBinder{Logger: scLog}, scLog)

	a.ipc = ipc.NewServer(ipc.Deps{
		Session:      a.auth,
		Login:        api,
		Sync:         a.syncer,
		Clipboard:    capture.NewWriter(),
		Store:        a.store,
		Settings:     a.settings,
		Shortcuts:    a.shortcuts,
		PromptSignIn: c.Interactive,
		OnShortcut:   a.onShortcut,
	}, a.logger.With("module", "ipc"))

	a.session, a.remote, a.pinger = a.auth, a.syncer, api
	return nil
}

// loadSettings prefers the persisted settings, then the seed file, then
// the defaults.
func (a *App) loadSettings(ctx context.Context, ks *keystore.Keystore) settings.AppSettings {
	s, ok, err := ks.LoadSettings(ctx)
	if err != nil {
		a.logger.Warn(ctx, "stored settings unreadable, using seed", "error", err)
	}
	if ok && err == nil {
		return s
	}
	return settings.LoadSeed(a.config.SettingsFile)
}

func (a *App) onSessionChange(_ models.Credentials, signedIn bool) {
	if a.creds != nil {
		a.creds.Invalidate()
	}
	if !signedIn {
		a.syncer.Reset(context.Background())
	}
}

func (a *App) onShortcut() {
	a.logger.Info(context.Background(), "shortcut pressed", "clips", a.store.Len())
}

func (a *App) registerShortcut(ctx context.Context) {
	spec := a.settings.Get().System.Shortcut
	if _, err := a.shortcuts.Register(ctx, spec, a.onShortcut); err != nil {
		a.logger.Warn(ctx, "shortcut not registered", "shortcut", spec, "error", err)
	}
}

// Run starts every component and blocks until SIGINT or SIGTERM, the
// console exits or a component fails. Pending uploads are drained and the
// history is flushed before it returns.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.close(ctx)

	a.logger.Info(ctx, "Starting app...")

	if n, err := a.history.Hydrate(ctx); err != nil {
		a.logger.Error(ctx, "history not loaded", "error", err)
	} else {
		a.logger.Info(ctx, "history loaded", "clips", n)
	}
	if err := a.auth.Restore(ctx); err != nil {
		a.logger.Warn(ctx, "session not restored", "error", err)
	}
	if err := a.syncer.Restore(ctx); err != nil {
		a.logger.Warn(ctx, "sync cursor not restored", "error", err)
	}
	a.registerShortcut(ctx)

	a.history.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.pipeline.Run(gctx); err != nil && gctx.Err() == nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-a.sweeper.Start(gctx, a.config.SweepInterval)
		return nil
	})
	g.Go(func() error {
		return a.ipc.ListenAndServe(gctx, a.config.IPCAddr, nil)
	})
	g.Go(func() error {
		a.StartOnlineStatusWatcher(gctx, onlineCheckInterval)
		return nil
	})

	// Not part of the group: a blocked stdin read must not hold up shutdown.
	if a.config.Interactive {
		go func() {
			a.console(gctx)
			stop()
		}()
	}

	return g.Wait()
}

func (a *App) close(ctx context.Context) {
	a.closed.Do(func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), teardownTimeout)
		defer cancel()

		if a.syncer != nil {
			a.syncer.Wait()
		}
		if a.history != nil {
			if err := a.history.Flush(ctx); err != nil {
				a.logger.Error(ctx, "flush history", "error", err)
			}
		}
		if a.api != nil {
			_ = a.api.Close()
		}
		if err := a.db.Close(); err != nil {
			a.logger.Error(ctx, "close database", "error", err)
		}
		a.logger.Info(ctx, "Bye!")
	})
}

func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.logger.Info(context.Background(), fmt.Sprintf("Switched to %s mode", mode))
	}
}

// StartOnlineStatusWatcher pings the token service on every tick and
// tracks whether it is reachable.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.checkOnline(ctx)
	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.pinger.Ping(pctx)
	cancel()

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
