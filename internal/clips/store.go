package clips

import (
	"slices"
	"sync"
	"time"
)

// Options tune a single Store mutation.
type Options struct {
	// Silently keeps the clip at its current position instead of moving it
	// to the front.
	Silently bool
}

// Entry is a clip together with its rank. Higher ranks are newer; the rank
// is what persistence layers store to reproduce the order.
type Entry struct {
	Clip Clip
	Rank int64
}

// EventKind names a Store mutation.
type EventKind string

const (
	EventLoaded   EventKind = "loaded"
	EventInserted EventKind = "inserted"
	EventAppended EventKind = "appended"
	EventUpdated  EventKind = "updated"
	EventRemoved  EventKind = "removed"
	EventLoading  EventKind = "loading"
	EventSync     EventKind = "sync"
)

// Event describes an applied mutation.
type Event struct {
	Kind    EventKind
	Entries []Entry
	IDs     []string
	Loading bool
	Sync    SyncStatus
}

// State is a point-in-time copy of the Store.
type State struct {
	Clips   []Clip     `json:"clips"`
	Loading bool       `json:"loading"`
	Sync    SyncStatus `json:"sync"`
}

// Store is the in-memory clip history.
//
// Mutations are serialized and their events are delivered in the order the
// mutations were applied. Subscribers may read from the Store but must not
// mutate it from inside the callback.
type Store struct {
	pub sync.Mutex // serializes mutate+publish

	mu       sync.RWMutex
	entries  []Entry // newest first
	loading  bool
	status   SyncStatus
	nextHigh int64
	nextLow  int64

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{nextHigh: 1, subs: make(map[int]func(Event))}
}

// Subscribe registers fn for every subsequent mutation.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	keys := make([]int, 0, len(s.subs))
	for k := range s.subs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	fns := make([]func(Event), 0, len(keys))
	for _, k := range keys {
		fns = append(fns, s.subs[k])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// mutate applies fn under the write lock and publishes the event it
// returns, if any.
func (s *Store) mutate(fn func() (Event, bool)) {
	s.pub.Lock()
	defer s.pub.Unlock()

	s.mu.Lock()
	ev, ok := fn()
	s.mu.Unlock()

	if ok {
		s.publish(ev)
	}
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.entries, func(e Entry) bool { return e.Clip.ID == id })
}

func (s *Store) front(c Clip) Entry {
	e := Entry{Clip: c, Rank: s.nextHigh}
	s.nextHigh++
	s.entries = slices.Insert(s.entries, 0, e)
	return e
}

// Load replaces the whole history. Invalid clips and repeated ids are
// dropped; the first occurrence of an id wins.
func (s *Store) Load(cs []Clip) {
	s.mutate(func() (Event, bool) {
		valid := dedupe(cs, nil)
		s.entries = make([]Entry, 0, len(valid))
		for i, c := range valid {
			s.entries = append(s.entries, Entry{Clip: c, Rank: int64(len(valid) - i)})
		}
		s.nextHigh = int64(len(valid)) + 1
		s.nextLow = 0
		return Event{Kind: EventLoaded, Entries: slices.Clone(s.entries)}, true
	})
}

// Upsert is the dedup-and-insert step for a single clip:
//
//   - unknown id: insert at the front;
//   - known id, not silent: drop the old occurrence and insert at the front;
//   - known id, silent: replace in place.
//
// Clips without an id or payload are rejected with common.ErrInvalidClip
// and the Store is left untouched.
func (s *Store) Upsert(c Clip, opts Options) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mutate(func() (Event, bool) {
		idx := s.indexOf(c.ID)
		switch {
		case idx < 0:
			return Event{Kind: EventInserted, Entries: []Entry{s.front(c)}}, true
		case opts.Silently:
			s.entries[idx].Clip = c
			return Event{Kind: EventUpdated, Entries: []Entry{s.entries[idx]}}, true
		default:
			s.entries = slices.Delete(s.entries, idx, idx+1)
			return Event{Kind: EventUpdated, Entries: []Entry{s.front(c)}}, true
		}
	})
	return nil
}

// AddClip records a newly captured clip as the most recent one.
func (s *Store) AddClip(c Clip) error {
	return s.Upsert(c, Options{})
}

// ModifyClip updates an existing clip. Without Silently the clip moves to
// the front (and is inserted if it was not present); with Silently an
// unknown id is a no-op.
func (s *Store) ModifyClip(c Clip, opts Options) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if opts.Silently {
		s.mutate(func() (Event, bool) {
			idx := s.indexOf(c.ID)
			if idx < 0 {
				return Event{}, false
			}
			s.entries[idx].Clip = c
			return Event{Kind: EventUpdated, Entries: []Entry{s.entries[idx]}}, true
		})
		return nil
	}
	return s.Upsert(c, opts)
}

// AddClips appends a batch at the tail, oldest last. It is the bulk
// hydration path: order within the batch is preserved and no clip is
// moved. Invalid clips and ids already present are skipped.
func (s *Store) AddClips(cs []Clip) int {
	added := 0
	s.mutate(func() (Event, bool) {
		present := make(map[string]struct{}, len(s.entries))
		for _, e := range s.entries {
			present[e.Clip.ID] = struct{}{}
		}
		batch := dedupe(cs, present)
		if len(batch) == 0 {
			return Event{}, false
		}
		appended := make([]Entry, 0, len(batch))
		for _, c := range batch {
			e := Entry{Clip: c, Rank: s.nextLow}
			s.nextLow--
			appended = append(appended, e)
		}
		s.entries = append(s.entries, appended...)
		added = len(appended)
		return Event{Kind: EventAppended, Entries: appended}, true
	})
	return added
}

// RemoveClips deletes the clips whose ids are listed. Survivors keep their
// relative order. It returns the number of clips removed.
func (s *Store) RemoveClips(ids []string) int {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return len(s.removeWhere(func(c Clip) bool {
		_, ok := set[c.ID]
		return ok
	}))
}

// RemoveOlderThan deletes every clip captured at or before cutoff and
// returns them.
func (s *Store) RemoveOlderThan(cutoff time.Time) []Clip {
	return s.removeWhere(func(c Clip) bool { return !c.CapturedAt.After(cutoff) })
}

func (s *Store) removeWhere(match func(Clip) bool) []Clip {
	var removed []Clip
	s.mutate(func() (Event, bool) {
		kept := s.entries[:0:0]
		for _, e := range s.entries {
			if match(e.Clip) {
				removed = append(removed, e.Clip)
				continue
			}
			kept = append(kept, e)
		}
		if len(removed) == 0 {
			return Event{}, false
		}
		s.entries = kept
		ids := make([]string, len(removed))
		for i, c := range removed {
			ids[i] = c.ID
		}
		return Event{Kind: EventRemoved, IDs: ids}, true
	})
	return removed
}

// SetLoading publishes whether a bulk load is in progress.
func (s *Store) SetLoading(loading bool) {
	s.mutate(func() (Event, bool) {
		s.loading = loading
		return Event{Kind: EventLoading, Loading: loading}, true
	})
}

// SetSyncStatus records the outcome of the latest sync attempt.
func (s *Store) SetSyncStatus(st SyncStatus) {
	s.mutate(func() (Event, bool) {
		s.status = st
		return Event{Kind: EventSync, Sync: st}, true
	})
}

// Clips returns the history newest-first.
func (s *Store) Clips() []Clip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clipsLocked()
}

func (s *Store) clipsLocked() []Clip {
	out := make([]Clip, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Clip
	}
	return out
}

// Entries returns the history newest-first together with ranks.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// Get returns the clip with the given id.
func (s *Store) Get(id string) (Clip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.entries[idx].Clip, true
	}
	return Clip{}, false
}

// Len returns the number of clips in the history.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns a copy of the full state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Clips: s.clipsLocked(), Loading: s.loading, Sync: s.status}
}

// dedupe drops invalid clips and ids seen earlier in cs or listed in
// present.
func dedupe(cs []Clip, present map[string]struct{}) []Clip {
	seen := make(map[string]struct{}, len(cs))
	out := make([]Clip, 0, len(cs))
	for _, c := range cs {
		if c.Validate() != nil {
			continue
		}
		if _, ok := present[c.ID]; ok {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
