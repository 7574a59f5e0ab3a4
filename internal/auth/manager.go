package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/client/models"
	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
)

// DefaultSkew is how long before expiry credentials are refreshed.
const DefaultSkew = 30 * time.Second

// Store persists the credential bundle and the sync cursor that belongs
// to it.
type Store interface {
	LoadCredentials(ctx context.Context) (models.Credentials, bool, error)
	PersistCredentials(ctx context.Context, c models.Credentials) error
	ClearCredentials(ctx context.Context) error
	ClearSyncCursor(ctx context.Context) error
}

// TokenService refreshes and revokes credentials.
type TokenService interface {
	Refresh(ctx context.Context, refreshToken string) (models.Credentials, error)
	Revoke(ctx context.Context, c models.Credentials) error
}

// Flow obtains a fresh credential bundle, e.g. by asking for a password.
type Flow interface {
	Authorize(ctx context.Context) (models.Credentials, error)
}

// FlowFunc adapts a function to Flow.
type FlowFunc func(ctx context.Context) (models.Credentials, error)

func (f FlowFunc) Authorize(ctx context.Context) (models.Credentials, error) { return f(ctx) }

type Manager struct {
	store   Store
	tokens  TokenService
	flow    Flow
	logger  logging.Logger
	now     func() time.Time
	skew    time.Duration
	refresh sync.Mutex

	// session serializes a session transition with its write to the store,
	// so a late refresh can never persist over a sign-out.
	session sync.Mutex

	mu       sync.RWMutex
	creds    models.Credentials
	signedIn bool
	gen      uint64

	subMu  sync.Mutex
	subs   map[int]func(models.Credentials, bool)
	nextID int
}

func NewManager(store Store, tokens TokenService, flow Flow, logger logging.Logger) *Manager {
	return &Manager{
		store:  store,
		tokens: tokens,
		flow:   flow,
		logger: logger,
		now:    time.Now,
		skew:   DefaultSkew,
		subs:   make(map[int]func(models.Credentials, bool)),
	}
}

// Restore loads persisted credentials, if any. It does not emit.
func (m *Manager) Restore(ctx context.Context) error {
	c, ok, err := m.store.LoadCredentials(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if !ok || c.Empty() {
		return nil
	}

	m.mu.Lock()
	m.creds = c
	m.signedIn = true
	m.gen++
	m.mu.Unlock()
	return nil
}

func (m *Manager) IsSignedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.signedIn
}

// Subscribe registers fn for every credential change. fn receives the
// new bundle and whether a session is active.
func (m *Manager) Subscribe(fn func(models.Credentials, bool)) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

func (m *Manager) emit(c models.Credentials, signedIn bool) {
	m.subMu.Lock()
	fns := make([]func(models.Credentials, bool), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(c, signedIn)
	}
}

// SignIn runs the configured flow.
func (m *Manager) SignIn(ctx context.Context) error {
	return m.SignInWith(ctx, m.flow)
}

// SignInWith runs flow and stores the result. Concurrent sign-ins are not
// coalesced; the last one to finish wins.
func (m *Manager) SignInWith(ctx context.Context, flow Flow) error {
	if flow == nil {
		return errors.New("no sign-in flow configured")
	}

	c, err := flow.Authorize(ctx)
	if err != nil {
		return err
	}

	m.session.Lock()
	if err := m.store.PersistCredentials(ctx, c); err != nil {
		m.logger.Error(ctx, "persist credentials failed", "err", err)
	}

	m.mu.Lock()
	m.creds = c
	m.signedIn = true
	m.gen++
	m.mu.Unlock()
	m.session.Unlock()

	m.logger.Info(ctx, "signed in")
	m.emit(c, true)
	return nil
}

// SignOut clears local credentials and the sync cursor, then revokes the
// old credentials remotely. Revocation failures are logged only. Signing
// out twice leaves the same state as signing out once.
func (m *Manager) SignOut(ctx context.Context) error {
	m.session.Lock()
	m.mu.Lock()
	old, wasSignedIn := m.creds, m.signedIn
	m.creds = models.Credentials{}
	m.signedIn = false
	m.gen++
	m.mu.Unlock()

	err := m.clearLocal(ctx)
	m.session.Unlock()

	if wasSignedIn {
		m.emit(models.Credentials{}, false)
		if rerr := m.tokens.Revoke(ctx, old); rerr != nil {
			m.logger.Warn(ctx, "revoke failed", "err", rerr)
		}
		m.logger.Info(ctx, "signed out")
	}
	return err
}

func (m *Manager) clearLocal(ctx context.Context) error {
	return errors.Join(m.store.ClearCredentials(ctx), m.store.ClearSyncCursor(ctx))
}

// Token returns valid credentials, refreshing them when they expire within
// the skew. A refresh rejected as unauthorized means the grant was
// revoked: the session ends and common.ErrUnauthorized is returned.
func (m *Manager) Token(ctx context.Context) (models.Credentials, error) {
	c, gen, err := m.current()
	if err != nil {
		return c, err
	}
	if !c.ExpiresWithin(m.now(), m.skew) {
		return c, nil
	}

	m.refresh.Lock()
	defer m.refresh.Unlock()

	// another caller may have refreshed while we waited
	c, gen, err = m.current()
	if err != nil {
		return c, err
	}
	if !c.ExpiresWithin(m.now(), m.skew) {
		return c, nil
	}
	if c.RefreshToken == "" {
		return models.Credentials{}, common.ErrTokenExpired
	}

	next, err := m.tokens.Refresh(ctx, c.RefreshToken)
	if errors.Is(err, common.ErrUnauthorized) {
		m.logger.Warn(ctx, "refresh rejected, ending session", "err", err)
		m.revoked(ctx, gen)
		return models.Credentials{}, err
	}
	if err != nil {
		return models.Credentials{}, fmt.Errorf("refresh credentials: %w", err)
	}
	if next.RefreshToken == "" {
		next.RefreshToken = c.RefreshToken
	}

	if !m.rotate(ctx, gen, next) {
		return models.Credentials{}, common.ErrNotSignedIn
	}
	return next, nil
}

func (m *Manager) current() (models.Credentials, uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.signedIn {
		return models.Credentials{}, m.gen, common.ErrNotSignedIn
	}
	return m.creds, m.gen, nil
}

// rotate installs refreshed credentials unless the session changed while
// the refresh was in flight.
func (m *Manager) rotate(ctx context.Context, gen uint64, next models.Credentials) bool {
	m.session.Lock()
	m.mu.Lock()
	if m.gen != gen || !m.signedIn {
		m.mu.Unlock()
		m.session.Unlock()
		return false
	}
	m.creds = next
	m.gen++
	m.mu.Unlock()

	if err := m.store.PersistCredentials(ctx, next); err != nil {
		m.logger.Error(ctx, "persist refreshed credentials failed", "err", err)
	}
	m.session.Unlock()
	m.logger.Debug(ctx, "credentials refreshed", "expiry", next.Expiry)
	m.emit(next, true)
	return true
}

func (m *Manager) revoked(ctx context.Context, gen uint64) {
	m.session.Lock()
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		m.session.Unlock()
		return
	}
	m.creds = models.Credentials{}
	m.signedIn = false
	m.gen++
	m.mu.Unlock()

	if err := m.clearLocal(ctx); err != nil {
		m.logger.Error(ctx, "clear revoked credentials failed", "err", err)
	}
	m.session.Unlock()
	m.emit(models.Credentials{}, false)
}
