// Package collection owns an ordered list of items and mirrors it into a
// single key of a storage backend.
//
// Every mutation rewrites the whole list under the key. Storage failures are
// logged and never surfaced: the in-memory list is the authority and the
// backend is best-effort.
package collection

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/idilsaglam/questlog/internal/logger"
	"github.com/idilsaglam/questlog/internal/model"
	"github.com/idilsaglam/questlog/internal/store"
)

const defaultTimeout = 2 * time.Second

// Mutation names reported to observers.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
	OpToggle = "toggle"
)

// Observer is told about mutations and storage failures.
type Observer interface {
	Mutated(key, op string)
	LoadFailed(key string, err error)
	PersistFailed(key string, err error)
}

type Option func(*options)

type options struct {
	now      func() time.Time
	newID    func() string
	log      *slog.Logger
	observer Observer
	timeout  time.Duration
}

func WithClock(now func() time.Time) Option   { return func(o *options) { o.now = now } }
func WithIDGenerator(fn func() string) Option { return func(o *options) { o.newID = fn } }
func WithLogger(l *slog.Logger) Option        { return func(o *options) { o.log = l } }
func WithObserver(obs Observer) Option        { return func(o *options) { o.observer = obs } }

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

// Store is the single source of truth for one collection.
type Store[C model.Category] struct {
	backend store.Backend
	key     string
	opt     options

	mu        sync.Mutex
	items     []model.Item[C]
	isLoading bool

	subMu  sync.Mutex
	subSeq int
	subs   map[int]func([]model.Item[C])

	// version counts mutations. Deliveries run under deliverMu and skip any
	// snapshot older than the last one delivered.
	version   uint64
	deliverMu sync.Mutex
	delivered uint64
}

// New binds a store to key on backend and loads it. Loading happens exactly
// once, here; it never fails.
func New[C model.Category](backend store.Backend, key string, opts ...Option) *Store[C] {
	o := options{
		now:     time.Now,
		newID:   uuid.NewString,
		timeout: defaultTimeout,
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		o.log = logger.Get()
	}
	o.log = o.log.With("collection", key)

	s := &Store[C]{
		backend:   backend,
		key:       key,
		opt:       o,
		items:     []model.Item[C]{},
		isLoading: true,
		subs:      make(map[int]func([]model.Item[C])),
	}
	s.load()
	return s
}

func (s *Store[C]) Key() string { return s.key }

func (s *Store[C]) load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.isLoading = false }()

	ctx, cancel := context.WithTimeout(context.Background(), s.opt.timeout)
	defer cancel()

	raw, ok, err := s.backend.GetItem(ctx, s.key)
	if err != nil {
		s.loadFailed(err)
		return
	}
	if !ok {
		return
	}
	items, err := Decode[C]([]byte(raw))
	if err != nil {
		s.loadFailed(err)
		return
	}
	s.items = items
	s.opt.log.Debug("collection loaded", "items", len(items))
}

func (s *Store[C]) loadFailed(err error) {
	s.opt.log.Error("failed to load collection from storage", "err", err)
	if s.opt.observer != nil {
		s.opt.observer.LoadFailed(s.key, err)
	}
}

// IsLoading is true until the initial load has finished.
func (s *Store[C]) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

// Items returns a copy of the list, newest first.
func (s *Store[C]) Items() []model.Item[C] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.items)
}

// Len returns the number of items.
func (s *Store[C]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Get looks an item up by id.
func (s *Store[C]) Get(id string) (model.Item[C], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return cloneItem(s.items[i]), true
	}
	return model.Item[C]{}, false
}

// Add creates an active item from f, puts it at the head of the list and
// persists. It does not validate f; see model.Fields.Validate.
func (s *Store[C]) Add(f model.Fields[C]) model.Item[C] {
	it := model.Item[C]{
		ID:          s.opt.newID(),
		Title:       f.Title,
		Description: f.Description,
		Status:      model.StatusActive,
		Category:    f.Category,
		CreatedAt:   s.opt.now().UnixMilli(),
	}
	if f.AssignedTo != nil {
		v := *f.AssignedTo
		it.AssignedTo = &v
	}

	s.mutate(OpAdd, func(items []model.Item[C]) []model.Item[C] {
		next := make([]model.Item[C], 0, len(items)+1)
		next = append(next, it)
		return append(next, items...)
	})
	return it
}

// Update merges p into the item with id, in place. Absent ids are a no-op.
func (s *Store[C]) Update(id string, p model.Patch[C]) {
	s.mutate(OpUpdate, func(items []model.Item[C]) []model.Item[C] {
		for i := range items {
			if items[i].ID == id {
				items[i] = p.Apply(items[i])
			}
		}
		return items
	})
}

// Delete removes the item with id, if present.
func (s *Store[C]) Delete(id string) {
	s.mutate(OpDelete, func(items []model.Item[C]) []model.Item[C] {
		next := items[:0]
		for _, it := range items {
			if it.ID != id {
				next = append(next, it)
			}
		}
		return next
	})
}

// ToggleStatus flips the item with id between active and completed.
func (s *Store[C]) ToggleStatus(id string) {
	s.mutate(OpToggle, func(items []model.Item[C]) []model.Item[C] {
		for i := range items {
			if items[i].ID == id {
				items[i].Status = items[i].Status.Flip()
			}
		}
		return items
	})
}

// mutate applies fn to a private copy of the list, installs the result,
// writes it through and then notifies subscribers outside the lock.
func (s *Store[C]) mutate(op string, fn func([]model.Item[C]) []model.Item[C]) {
	s.mu.Lock()
	next := fn(clone(s.items))
	s.items = next
	s.persist(next)
	s.version++
	version := s.version
	snapshot := clone(next)
	s.mu.Unlock()

	if s.opt.observer != nil {
		s.opt.observer.Mutated(s.key, op)
	}
	s.notify(version, snapshot)
}

func (s *Store[C]) persist(items []model.Item[C]) {
	b, err := Encode(items)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.opt.timeout)
		err = s.backend.SetItem(ctx, s.key, string(b))
		cancel()
	}
	if err != nil {
		s.opt.log.Error("failed to save collection to storage", "err", err, "items", len(items))
		if s.opt.observer != nil {
			s.opt.observer.PersistFailed(s.key, err)
		}
	}
}

// Subscribe registers fn to receive the list after mutations. Deliveries
// are serialized and never go back in time: when mutations race, fn may miss
// an intermediate list but the last one it sees is the current one. fn must
// not mutate the store. The returned func unregisters it.
func (s *Store[C]) Subscribe(fn func([]model.Item[C])) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subSeq++
	id := s.subSeq
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store[C]) notify(version uint64, items []model.Item[C]) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if version <= s.delivered {
		return
	}
	s.delivered = version

	s.subMu.Lock()
	fns := make([]func([]model.Item[C]), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(clone(items))
	}
}

func (s *Store[C]) indexOf(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// clone copies items deeply enough that callers cannot reach the store's
// memory through AssignedTo.
func clone[C model.Category](items []model.Item[C]) []model.Item[C] {
	out := make([]model.Item[C], len(items))
	for i, it := range items {
		out[i] = cloneItem(it)
	}
	return out
}

func cloneItem[C model.Category](it model.Item[C]) model.Item[C] {
	if it.AssignedTo != nil {
		v := *it.AssignedTo
		it.AssignedTo = &v
	}
	return it
}
