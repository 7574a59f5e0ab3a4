package settings

import (
	"context"
	"sync"
)

// Persister stores settings durably.
type Persister interface {
	PersistSettings(ctx context.Context, s AppSettings) error
}

// Provider holds the current settings. Reads are cheap and safe from any
// goroutine; Update persists before the new value becomes visible.
type Provider struct {
	mu        sync.RWMutex
	current   AppSettings
	persister Persister
	listeners []func(AppSettings)
}

func NewProvider(initial AppSettings, p Persister) *Provider {
	return &Provider{current: initial, persister: p}
}

func (p *Provider) Get() AppSettings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// OnChange registers fn to be called with the new settings after every
// successful Update.
func (p *Provider) OnChange(fn func(AppSettings)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Update applies fn to a copy of the current settings and persists the
// result. On persistence failure the current settings are unchanged.
func (p *Provider) Update(ctx context.Context, fn func(*AppSettings)) (AppSettings, error) {
	p.mu.Lock()
	next := p.current
	fn(&next)
	if p.persister != nil {
		if err := p.persister.PersistSettings(ctx, next); err != nil {
			cur := p.current
			p.mu.Unlock()
			return cur, err
		}
	}
	p.current = next
	listeners := append([]func(AppSettings){}, p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next, nil
}

// Replace swaps in s wholesale.
func (p *Provider) Replace(ctx context.Context, s AppSettings) (AppSettings, error) {
	return p.Update(ctx, func(cur *AppSettings) { *cur = s })
}
