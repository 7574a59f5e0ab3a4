package ipc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/clipkeeper/internal/auth"
	"github.com/dmitrijs2005/clipkeeper/internal/client/models"
	"github.com/dmitrijs2005/clipkeeper/internal/clips"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/settings"
)

const shutdownTimeout = 5 * time.Second

type Session interface {
	SignIn(ctx context.Context) error
	SignInWith(ctx context.Context, flow auth.Flow) error
	SignOut(ctx context.Context) error
	IsSignedIn() bool
}

type Sync interface {
	ListFiles(ctx context.Context) ([]models.RemoteFile, error)
	UploadClips(ctx context.Context, cs []clips.Clip) ([]models.UploadResult, error)
}

type Clipboard interface {
	Copy(ctx context.Context, kind, content string) error
}

type Store interface {
	Snapshot() clips.State
	RemoveClips(ids []string) int
}

type Settings interface {
	Get() settings.AppSettings
	Update(ctx context.Context, fn func(*settings.AppSettings)) (settings.AppSettings, error)
	Replace(ctx context.Context, s settings.AppSettings) (settings.AppSettings, error)
}

type Shortcuts interface {
	Register(ctx context.Context, spec string, fn func()) (string, error)
}

// Deps are the components the API exposes.
type Deps struct {
	Session   Session
	Login     auth.LoginService
	Sync      Sync
	Clipboard Clipboard
	Store     Store
	Settings  Settings
	Shortcuts Shortcuts

	// PromptSignIn lets a sign-in without a username use the session's
	// own flow, which reads the terminal. Leave it off unless a console
	// is attached.
	PromptSignIn bool

	// OnShortcut runs when the global shortcut fires.
	OnShortcut func()
}

type Server struct {
	deps   Deps
	logger logging.Logger
}

func NewServer(deps Deps, logger logging.Logger) *Server {
	if deps.OnShortcut == nil {
		deps.OnShortcut = func() {}
	}
	return &Server{deps: deps, logger: logger}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogging(s.logger))

	r.Route("/ipc", func(r chi.Router) {
		r.Get("/session", s.session)
		r.Get("/clips", s.listClips)
		r.Get("/settings", s.getSettings)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))

			r.Post("/sign-in", s.signIn)
			r.Post("/sign-out", s.signOut)
			r.Post("/list-files", s.listFiles)
			r.Post("/upload-to-drive", s.uploadToDrive)
			r.Post("/copy-to-clipboard", s.copyToClipboard)
			r.Post("/change-shortcut", s.changeShortcut)
			r.Post("/remove-clips", s.removeClips)
			r.Put("/settings", s.putSettings)
		})
	})
	return r
}

// ListenAndServe serves the API on addr until ctx is done, then shuts the
// server down gracefully. ready, if non-nil, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if ready != nil {
		ready(ln.Addr())
	}

	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "ipc listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
