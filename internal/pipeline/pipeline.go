// Package pipeline connects the capture source to the clip store and the
// sync coordinator.
package pipeline

import (
	"context"

	"github.com/dmitrijs2005/clipkeeper/internal/clips"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/settings"
)

type Source interface {
	Watch(ctx context.Context) <-chan clips.Clip
}

type Store interface {
	Upsert(c clips.Clip, opts clips.Options) error
}

type SettingsSource interface {
	Get() settings.AppSettings
}

// Syncer is notified of every clip that reached the store.
type Syncer interface {
	OnClip(ctx context.Context, c clips.Clip)
}

type Pipeline struct {
	source   Source
	store    Store
	settings SettingsSource
	syncer   Syncer
	logger   logging.Logger
}

func New(source Source, store Store, s SettingsSource, syncer Syncer, logger logging.Logger) *Pipeline {
	return &Pipeline{source: source, store: store, settings: s, syncer: syncer, logger: logger}
}

// Run processes captured clips in arrival order until ctx is done or the
// source closes.
func (p *Pipeline) Run(ctx context.Context) error {
	for raw := range p.source.Watch(ctx) {
		p.Process(ctx, raw)
	}
	return ctx.Err()
}

// Process takes one captured clip through filter, store and sync. It
// reports whether the clip was stored.
func (p *Pipeline) Process(ctx context.Context, raw clips.Clip) bool {
	c, ok := clips.Filter(raw, p.settings.Get().Storage.Formats)
	if !ok {
		p.logger.Debug(ctx, "clip filtered out", "id", raw.ID, "type", string(raw.Type))
		return false
	}

	if err := p.store.Upsert(c, clips.Options{}); err != nil {
		p.logger.Warn(ctx, "clip dropped", "id", c.ID, "error", err)
		return false
	}

	p.syncer.OnClip(ctx, c)
	return true
}
