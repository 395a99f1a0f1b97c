package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/existflow/deadlines/internal/clock"
	"github.com/existflow/deadlines/internal/logger"
	"github.com/existflow/deadlines/internal/model"
	"github.com/existflow/deadlines/internal/storage"
	"github.com/google/uuid"
)

// DefaultKey is the storage key holding the collection
const DefaultKey = "deadlines"

// ErrNotLoaded is returned by mutations issued before Load
var ErrNotLoaded = errors.New("store not loaded")

// SeedFunc builds the collection used when nothing is persisted yet
type SeedFunc func(now time.Time) []model.Deadline

// Patch lists the fields an edit may overwrite; nil leaves a field as is
type Patch struct {
	Name    *string
	Task    *string
	DueDate *time.Time
}

// Store holds the ordered deadline collection and keeps it persisted
type Store struct {
	mu           sync.RWMutex
	kv           storage.KV
	key          string
	clock        clock.Clock
	seed         SeedFunc
	persistEmpty bool
	log          *logger.Logger

	items  []model.Deadline
	loaded bool
}

// Option configures a Store
type Option func(*Store)

// WithKey overrides the storage key
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock injects the clock used for createdAt and ids
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithSeed replaces the built-in example set
func WithSeed(fn SeedFunc) Option {
	return func(s *Store) { s.seed = fn }
}

// NoSeed starts from an empty collection when nothing is persisted
func NoSeed() Option {
	return WithSeed(func(time.Time) []model.Deadline { return nil })
}

// WithPersistEmpty makes an empty collection overwrite stored data
func WithPersistEmpty(v bool) Option {
	return func(s *Store) { s.persistEmpty = v }
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New creates a Store over kv; call Load before anything else
func New(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		key:   DefaultKey,
		clock: clock.System,
		seed:  ExampleSeed,
		log:   logger.L(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithFields(logger.F("component", "store"), logger.F("key", s.key))
	return s
}

// Load reads the persisted collection. An absent or undecodable value is
// replaced by the seed set, which is written back immediately.
func (s *Store) Load(ctx context.Context) ([]model.Deadline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.log.Info("No saved deadlines, using seed")
		return s.reseed(ctx)
	case err != nil:
		return nil, fmt.Errorf("failed to load deadlines: %w", err)
	}

	items, err := model.DecodeCollection(data)
	if err != nil {
		s.log.Warn("Saved deadlines unreadable, using seed", logger.F("error", err))
		return s.reseed(ctx)
	}

	s.items = items
	s.loaded = true
	s.log.Debug("Loaded deadlines", logger.F("count", len(items)))
	return s.snapshot(), nil
}

// reseed installs the seed set; caller holds mu
func (s *Store) reseed(ctx context.Context) ([]model.Deadline, error) {
	s.items = s.seed(s.clock.Now())
	s.loaded = true
	if err := s.persist(ctx); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

// persist writes the whole collection; caller holds mu
func (s *Store) persist(ctx context.Context) error {
	if len(s.items) == 0 && !s.persistEmpty {
		s.log.Debug("Skipping write of empty collection")
		return nil
	}

	data, err := model.EncodeCollection(s.items)
	if err != nil {
		return fmt.Errorf("failed to encode deadlines: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.log.Error("Failed to save deadlines", logger.F("error", err))
		return fmt.Errorf("failed to save deadlines: %w", err)
	}
	s.log.Debug("Saved deadlines", logger.F("count", len(s.items)))
	return nil
}

func (s *Store) snapshot() []model.Deadline {
	out := make([]model.Deadline, len(s.items))
	copy(out, s.items)
	return out
}

// Loaded reports whether Load has completed
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// List returns the collection in display order
func (s *Store) List() []model.Deadline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Get returns the deadline with the given id
func (s *Store) Get(id string) (model.Deadline, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.items[i], true
	}
	return model.Deadline{}, false
}

func (s *Store) index(id string) int {
	for i, d := range s.items {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// nextID is the creation instant in unix milliseconds, suffixed on collision
func (s *Store) nextID(now time.Time) string {
	id := strconv.FormatInt(now.UnixMilli(), 10)
	for s.index(id) >= 0 {
		id = strconv.FormatInt(now.UnixMilli(), 10) + "-" + uuid.New().String()[:8]
	}
	return id
}

// Add appends a new deadline created now
func (s *Store) Add(ctx context.Context, name, task string, due time.Time) (model.Deadline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return model.Deadline{}, ErrNotLoaded
	}

	now := s.clock.Now()
	d := model.Deadline{
		Name:      strings.TrimSpace(name),
		Task:      strings.TrimSpace(task),
		CreatedAt: now,
		DueDate:   due,
	}
	if err := d.Validate(); err != nil {
		return model.Deadline{}, err
	}
	d.ID = s.nextID(now)

	s.items = append(s.items, d)
	s.log.Info("Added deadline", logger.F("id", d.ID), logger.F("name", d.Name))
	return d, s.persist(ctx)
}

// Update applies p to the deadline with the given id, keeping its id and
// createdAt. An unknown id is not an error: it reports false and writes nothing.
func (s *Store) Update(ctx context.Context, id string, p Patch) (model.Deadline, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return model.Deadline{}, false, ErrNotLoaded
	}

	i := s.index(id)
	if i < 0 {
		s.log.Debug("Update of unknown deadline ignored", logger.F("id", id))
		return model.Deadline{}, false, nil
	}

	d := s.items[i]
	if p.Name != nil {
		d.Name = strings.TrimSpace(*p.Name)
	}
	if p.Task != nil {
		d.Task = strings.TrimSpace(*p.Task)
	}
	if p.DueDate != nil {
		d.DueDate = *p.DueDate
	}
	if err := d.Validate(); err != nil {
		return model.Deadline{}, true, err
	}

	s.items[i] = d
	s.log.Info("Updated deadline", logger.F("id", id))
	return d, true, s.persist(ctx)
}

// Remove deletes the deadline with the given id; unknown ids report false
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false, ErrNotLoaded
	}

	i := s.index(id)
	if i < 0 {
		s.log.Debug("Remove of unknown deadline ignored", logger.F("id", id))
		return false, nil
	}

	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.log.Info("Removed deadline", logger.F("id", id))
	return true, s.persist(ctx)
}

// Close releases the underlying storage
func (s *Store) Close() error {
	return s.kv.Close()
}
