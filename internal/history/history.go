// Package history keeps the SQLite copy of the clip store.
//
// Hydrate fills the store from disk at startup. Start mirrors every later
// store mutation to the repository on a background worker, in mutation
// order. Persistence failures are logged and the in-memory store stays
// authoritative; Flush rewrites the whole table on teardown so the two
// converge again.
package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/clipkeeper/internal/clips"
	cliprepo "github.com/dmitrijs2005/clipkeeper/internal/client/repositories/clips"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
)

const queueSize = 256

type Store interface {
	SetLoading(loading bool)
	AddClips(cs []clips.Clip) int
	Entries() []clips.Entry
	Subscribe(fn func(clips.Event)) (unsubscribe func())
}

type History struct {
	store  Store
	repo   cliprepo.Repository
	logger logging.Logger

	mu          sync.Mutex
	started     bool
	closed      bool
	events      chan clips.Event
	unsubscribe func()
	done        chan struct{}
}

func New(store Store, repo cliprepo.Repository, logger logging.Logger) *History {
	return &History{store: store, repo: repo, logger: logger}
}

// Hydrate appends the persisted clips to the store and rewrites the table
// so stored positions match the store's ranks. The store reports loading
// while it runs.
func (h *History) Hydrate(ctx context.Context) (int, error) {
	h.store.SetLoading(true)
	defer h.store.SetLoading(false)

	persisted, err := h.repo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load history: %w", err)
	}

	n := h.store.AddClips(persisted)
	if skipped := len(persisted) - n; skipped > 0 {
		h.logger.Warn(ctx, "skipped invalid or duplicate clips", "count", skipped)
	}

	if err := h.repo.ReplaceAll(ctx, h.store.Entries()); err != nil {
		h.logger.Error(ctx, "normalize history", "error", err)
	}
	return n, nil
}

// Start subscribes to the store and persists each mutation until Flush.
func (h *History) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return
	}
	h.started = true

	h.events = make(chan clips.Event, queueSize)
	h.done = make(chan struct{})
	h.unsubscribe = h.store.Subscribe(h.enqueue)

	go h.run(context.WithoutCancel(ctx))
}

func (h *History) enqueue(ev clips.Event) {
	switch ev.Kind {
	case clips.EventLoading, clips.EventSync:
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.events <- ev
}

func (h *History) run(ctx context.Context) {
	defer close(h.done)
	for ev := range h.events {
		if err := h.apply(ctx, ev); err != nil {
			h.logger.Error(ctx, "persist clips", "event", string(ev.Kind), "error", err)
		}
	}
}

func (h *History) apply(ctx context.Context, ev clips.Event) error {
	switch ev.Kind {
	case clips.EventLoaded:
		return h.repo.ReplaceAll(ctx, ev.Entries)
	case clips.EventRemoved:
		_, err := h.repo.DeleteByIDs(ctx, ev.IDs)
		return err
	default:
		for _, e := range ev.Entries {
			if err := h.repo.Upsert(ctx, e); err != nil {
				return fmt.Errorf("clip %s: %w", e.Clip.ID, err)
			}
		}
		return nil
	}
}

// Flush stops mirroring, waits for queued writes and then writes the full
// store contents in one transaction.
func (h *History) Flush(ctx context.Context) error {
	h.mu.Lock()
	if h.started && !h.closed {
		h.closed = true
		h.unsubscribe()
		close(h.events)
	}
	done := h.done
	h.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := h.repo.ReplaceAll(ctx, h.store.Entries()); err != nil {
		return fmt.Errorf("flush history: %w", err)
	}
	return nil
}
