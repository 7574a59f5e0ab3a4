package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/clipkeeper/internal/auth"
	"github.com/dmitrijs2005/clipkeeper/internal/client/models"
	"github.com/dmitrijs2005/clipkeeper/internal/clips"
	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/settings"
	"github.com/dmitrijs2005/clipkeeper/internal/shortcut"
	"github.com/dmitrijs2005/clipkeeper/internal/syncer"
)

type fakeSession struct {
	signedIn   bool
	signInErr  error
	signOutErr error
	creds      models.Credentials
}

func (f *fakeSession) SignIn(context.Context) error {
	if f.signInErr != nil {
		return f.signInErr
	}
	f.signedIn = true
	return nil
}

func (f *fakeSession) SignInWith(ctx context.Context, flow auth.Flow) error {
	c, err := flow.Authorize(ctx)
	if err != nil {
		return err
	}
	f.creds, f.signedIn = c, true
	return nil
}

func (f *fakeSession) SignOut(context.Context) error {
	f.signedIn = false
	return f.signOutErr
}

func (f *fakeSession) IsSignedIn() bool { return f.signedIn }

type fakeLogin struct{}

func (fakeLogin) GetSalt(_ context.Context, username string) ([]byte, error) {
	if username != "alice" {
		return nil, common.ErrUnauthorized
	}
	return []byte("0123456789abcdef"), nil
}

func (fakeLogin) Login(_ context.Context, username string, _ []byte) (models.Credentials, error) {
	return models.Credentials{AccessToken: "token-" + username}, nil
}

type fakeSync struct {
	files     []models.RemoteFile
	listErr   error
	uploaded  []clips.Clip
	uploadErr error
}

func (f *fakeSync) ListFiles(context.Context) ([]models.RemoteFile, error) {
	return f.files, f.listErr
}

func (f *fakeSync) UploadClips(_ context.Context, cs []clips.Clip) ([]models.UploadResult, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploaded = append(f.uploaded, cs...)
	out := make([]models.UploadResult, 0, len(cs))
	for _, c := range cs {
		out = append(out, models.UploadResult{ClipID: c.ID, Key: "k-" + c.ID, Size: c.Size()})
	}
	return out, nil
}

type fakeClipboard struct {
	kind, content string
	err           error
}

func (f *fakeClipboard) Copy(_ context.Context, kind, content string) error {
	f.kind, f.content = kind, content
	return f.err
}

type fakeBinder struct{}

func (fakeBinder) Bind(string, func()) error { return nil }
func (fakeBinder) Unbind(string) error       { return nil }

type failingPersister struct{ err error }

func (f failingPersister) PersistSettings(context.Context, settings.AppSettings) error { return f.err }

type fixture struct {
	session   *fakeSession
	sync      *fakeSync
	clipboard *fakeClipboard
	store     *clips.Store
	settings  *settings.Provider
	handler   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, func(*Deps) {})
}

func newFixtureWith(t *testing.T, opt func(*Deps)) *fixture {
	t.Helper()
	f := &fixture{
		session:   &fakeSession{},
		sync:      &fakeSync{},
		clipboard: &fakeClipboard{},
		store:     clips.NewStore(),
		settings:  settings.NewProvider(settings.Default(), nil),
	}
	deps := Deps{
		Session:   f.session,
		Login:     fakeLogin{},
		Sync:      f.sync,
		Clipboard: f.clipboard,
		Store:     f.store,
		Settings:  f.settings,
		Shortcuts: shortcut.NewRegistrar(fakeBinder{}, logging.Discard()),
	}
	opt(&deps)
	f.handler = NewServer(deps, logging.Discard()).Routes()
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestSignIn_WithPassword(t *testing.T) {
	f := newFixture(t)

	rec, out := f.do(t, http.MethodPost, "/ipc/sign-in", `{"username":"alice","password":"secret"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["signedIn"])
	assert.Equal(t, "token-alice", f.session.creds.AccessToken)
}

func TestSignIn_FailureIsEnvelope(t *testing.T) {
	f := newFixture(t)

	rec, out := f.do(t, http.MethodPost, "/ipc/sign-in", `{"username":"mallory","password":"x"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, out["error"], "unauthorized")
	assert.False(t, f.session.signedIn)
}

func TestSignIn_DefaultFlow(t *testing.T) {
	f := newFixtureWith(t, func(d *Deps) { d.PromptSignIn = true })

	rec, out := f.do(t, http.MethodPost, "/ipc/sign-in", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["signedIn"])

	f.session.signInErr = errors.New("flow cancelled")
	_, out = f.do(t, http.MethodPost, "/ipc/sign-in", "")
	assert.Equal(t, "flow cancelled", out["error"])
}

func TestSignIn_WithoutCredentialsOrPrompt(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{"", `{}`, `{"password":"x"}`} {
		rec, out := f.do(t, http.MethodPost, "/ipc/sign-in", body)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, ErrCredentialsRequired.Error(), out["error"])
	}
	assert.False(t, f.session.signedIn)
}

func TestSignOut(t *testing.T) {
	f := newFixture(t)
	f.session.signedIn = true

	_, out := f.do(t, http.MethodPost, "/ipc/sign-out", "")
	assert.Equal(t, false, out["signedIn"])

	_, out = f.do(t, http.MethodGet, "/ipc/session", "")
	assert.Equal(t, false, out["signedIn"])
}

func TestListFiles(t *testing.T) {
	f := newFixture(t)

	_, out := f.do(t, http.MethodPost, "/ipc/list-files", "")
	assert.Equal(t, []any{}, out["files"])

	f.sync.files = []models.RemoteFile{{Key: "clips/1-a.json", Size: 10}}
	_, out = f.do(t, http.MethodPost, "/ipc/list-files", "")
	require.Len(t, out["files"], 1)

	f.sync.listErr = fmt.Errorf("list files: %w", common.ErrUnavailable)
	rec, out := f.do(t, http.MethodPost, "/ipc/list-files", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "list files: server unavailable", out["error"])
}

func TestUploadToDrive(t *testing.T) {
	f := newFixture(t)

	_, out := f.do(t, http.MethodPost, "/ipc/upload-to-drive",
		`[{"id":"a","type":"text","plainText":"hi","capturedAt":"2024-05-01T10:00:00Z"}]`)
	require.Len(t, out["results"], 1)
	require.Len(t, f.sync.uploaded, 1)
	assert.Equal(t, "hi", f.sync.uploaded[0].PlainText)

	rec, out := f.do(t, http.MethodPost, "/ipc/upload-to-drive", `{"not":"a list"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, out["error"])

	f.sync.uploadErr = common.ErrUnauthorized
	rec, out = f.do(t, http.MethodPost, "/ipc/upload-to-drive", `[]`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "unauthorized", out["error"])
}

type memDrive struct {
	uploads []clips.Clip
}

func (d *memDrive) Upload(_ context.Context, c clips.Clip, _ int64) (models.UploadResult, error) {
	d.uploads = append(d.uploads, c)
	return models.UploadResult{ClipID: c.ID, Key: "k-" + c.ID, Size: c.Size()}, nil
}

func (d *memDrive) ListFiles(_ context.Context, cursor string) ([]models.RemoteFile, string, error) {
	return nil, cursor, nil
}

type memCursor struct{ token string }

func (m *memCursor) LoadSyncCursor(context.Context) (string, bool, error) {
	return m.token, m.token != "", nil
}

func (m *memCursor) PersistSyncCursor(_ context.Context, token string) error {
	m.token = token
	return nil
}

func (m *memCursor) ClearSyncCursor(context.Context) error {
	m.token = ""
	return nil
}

func TestUploadToDrive_InvalidClips(t *testing.T) {
	d, cur, status := &memDrive{}, &memCursor{}, clips.NewStore()
	f := newFixtureWith(t, func(deps *Deps) {
		deps.Sync = syncer.New(d, cur, deps.Settings, status,
			syncer.LogReporter{Logger: logging.Discard()}, logging.Discard())
	})

	rec, out := f.do(t, http.MethodPost, "/ipc/upload-to-drive", `[{}]`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, common.ErrInvalidClip.Error(), out["error"])

	_, out = f.do(t, http.MethodPost, "/ipc/upload-to-drive", `[{"id":"a","type":"text","plainText":"hi"}]`)
	assert.Contains(t, out["error"], "invalid clip")
	assert.Empty(t, d.uploads)
	assert.Empty(t, cur.token)
	assert.Equal(t, clips.SyncRejected, status.Snapshot().Sync)

	_, out = f.do(t, http.MethodPost, "/ipc/upload-to-drive",
		`[{"id":"x"},{"id":"b","type":"text","plainText":"ok","capturedAt":"2024-05-01T10:00:00Z"}]`)
	require.Len(t, out["results"], 1)
	require.Len(t, d.uploads, 1)
	assert.Equal(t, "b", d.uploads[0].ID)
	assert.Equal(t, "k-b", cur.token)
}

func TestCopyToClipboard(t *testing.T) {
	f := newFixture(t)

	_, out := f.do(t, http.MethodPost, "/ipc/copy-to-clipboard", `{"type":"text","content":"hello"}`)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, "text", f.clipboard.kind)
	assert.Equal(t, "hello", f.clipboard.content)

	f.clipboard.err = errors.New("unsupported clip type")
	_, out = f.do(t, http.MethodPost, "/ipc/copy-to-clipboard", `{"type":"video","content":"x"}`)
	assert.Equal(t, "unsupported clip type", out["error"])

	rec, _ := f.do(t, http.MethodPost, "/ipc/copy-to-clipboard", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangeShortcut(t *testing.T) {
	f := newFixture(t)

	_, out := f.do(t, http.MethodPost, "/ipc/change-shortcut", `{"shortcut":"alt + shift + c"}`)
	assert.Equal(t, "Alt+Shift+C", out["shortcut"])
	assert.Equal(t, "Alt+Shift+C", f.settings.Get().System.Shortcut)

	_, out = f.do(t, http.MethodPost, "/ipc/change-shortcut", `{"shortcut":"ctrl+shift"}`)
	assert.Contains(t, out["error"], "no key")
	assert.Equal(t, "Alt+Shift+C", f.settings.Get().System.Shortcut)
}

func TestChangeShortcut_PersistFailure(t *testing.T) {
	f := newFixture(t)
	prov := settings.NewProvider(settings.Default(), failingPersister{err: errors.New("disk full")})
	f.handler = NewServer(Deps{
		Settings:  prov,
		Shortcuts: shortcut.NewRegistrar(fakeBinder{}, logging.Discard()),
	}, logging.Discard()).Routes()

	_, out := f.do(t, http.MethodPost, "/ipc/change-shortcut", `{"shortcut":"alt+v"}`)
	assert.Equal(t, "save shortcut: disk full", out["error"])
}

func TestClipsAndRemove(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.AddClip(clips.Clip{ID: "a", Type: clips.TypeText, PlainText: "one", CapturedAt: at}))
	require.NoError(t, f.store.AddClip(clips.Clip{ID: "b", Type: clips.TypeText, PlainText: "two", CapturedAt: at}))

	_, out := f.do(t, http.MethodGet, "/ipc/clips", "")
	require.Len(t, out["clips"], 2)
	assert.Equal(t, false, out["loading"])

	_, out = f.do(t, http.MethodPost, "/ipc/remove-clips", `{"ids":["a","zzz"]}`)
	assert.Equal(t, float64(1), out["removed"])
	assert.Equal(t, 1, f.store.Len())
}

func TestSettings_GetAndPut(t *testing.T) {
	f := newFixture(t)

	_, out := f.do(t, http.MethodGet, "/ipc/settings", "")
	drive := out["drive"].(map[string]any)
	assert.Equal(t, false, drive["sync"])

	_, out = f.do(t, http.MethodPut, "/ipc/settings", `{"drive":{"sync":true,"threshold":42}}`)
	drive = out["drive"].(map[string]any)
	assert.Equal(t, true, drive["sync"])
	assert.Equal(t, float64(42), drive["threshold"])

	got := f.settings.Get()
	assert.True(t, got.Drive.Sync)
	assert.Equal(t, settings.Default().System.Shortcut, got.System.Shortcut, "unspecified fields are kept")
}

func TestRejectsNonJSONBody(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/ipc/remove-clips", strings.NewReader("ids=a"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	s := NewServer(Deps{Session: f.session, Store: f.store, Settings: f.settings}, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0", func(a net.Addr) { addrCh <- a }) }()

	addr := <-addrCh
	resp, err := http.Get("http://" + addr.String() + "/ipc/session")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
