// Package sweeper evicts clips older than the configured retention from
// the clip store.
package sweeper

import (
	"context"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/clips"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/settings"
)

// DefaultInterval is how often the retention check runs.
const DefaultInterval = 24 * time.Hour

type Store interface {
	RemoveOlderThan(cutoff time.Time) []clips.Clip
}

type Session interface {
	IsSignedIn() bool
}

type SettingsSource interface {
	Get() settings.AppSettings
}

type Sweeper struct {
	store    Store
	session  Session
	settings SettingsSource
	logger   logging.Logger
	now      func() time.Time
}

func New(store Store, session Session, s SettingsSource, logger logging.Logger) *Sweeper {
	return &Sweeper{store: store, session: session, settings: s, logger: logger, now: time.Now}
}

// Start runs Sweep on every tick until ctx is done. The returned channel is
// closed when the loop exits.
func (s *Sweeper) Start(ctx context.Context, tick time.Duration) <-chan struct{} {
	if tick <= 0 {
		tick = DefaultInterval
	}
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep(ctx, s.now())
			}
		}
	}()
	return done
}

// Sweep removes every clip captured at or before now minus the retention
// window. It does nothing without an active session or when retention is
// disabled.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) []clips.Clip {
	every := s.settings.Get().Storage.Optimize.Every.Duration
	if every <= 0 || !s.session.IsSignedIn() {
		return nil
	}

	removed := s.store.RemoveOlderThan(now.Add(-every))
	if len(removed) > 0 {
		s.logger.Info(ctx, "expired clips removed", "count", len(removed), "retention", every.String())
	}
	return removed
}
