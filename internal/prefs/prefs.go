// Package prefs implements domain.PreferenceStore on top of the YAML config
// file. Values are observable per key and survive restarts.
package prefs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/dokusha/internal/config"
	"github.com/mmcdole/dokusha/internal/domain"
	"github.com/mmcdole/dokusha/internal/stream"
)

// Store keeps ternary preferences in memory and persists them to config.yaml
type Store struct {
	dir    string
	logger *slog.Logger

	mu     sync.Mutex // Serializes Set and reloads
	cfg    config.Config
	values map[domain.PreferenceKey]*stream.Broadcaster[domain.TernaryState]
}

// NewStore creates a preference store seeded from cfg. Changes are written
// to the config file in dir ("" = default config dir).
func NewStore(dir string, cfg *config.Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := &Store{
		dir:    dir,
		logger: logger,
		cfg:    *cfg,
		values: make(map[domain.PreferenceKey]*stream.Broadcaster[domain.TernaryState]),
	}
	for _, key := range domain.PreferenceKeys() {
		b := stream.NewBroadcaster[domain.TernaryState]()
		b.Publish(domain.ParseTernaryState(lookup(&s.cfg.Library, key)))
		s.values[key] = b
	}
	return s
}

// Observe streams one setting, current value first. Unknown keys yield a
// closed channel.
func (s *Store) Observe(ctx context.Context, key domain.PreferenceKey) <-chan domain.TernaryState {
	b, ok := s.values[key]
	if !ok {
		s.logger.Warn("observe of unknown preference", "key", string(key))
		ch := make(chan domain.TernaryState)
		close(ch)
		return ch
	}
	return b.Subscribe(ctx)
}

// Get returns the current value of a setting (inactive for unknown keys)
func (s *Store) Get(key domain.PreferenceKey) domain.TernaryState {
	b, ok := s.values[key]
	if !ok {
		return domain.TernaryInactive
	}
	v, _ := b.Current()
	return v
}

// Set persists a new value and notifies observers
func (s *Store) Set(ctx context.Context, key domain.PreferenceKey, state domain.TernaryState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !key.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrUnknownPreference, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(key, state)
}

// Cycle advances a setting to its next value. Concurrent cycles are applied
// one after another.
func (s *Store) Cycle(ctx context.Context, key domain.PreferenceKey) (domain.TernaryState, error) {
	if err := ctx.Err(); err != nil {
		return s.Get(key), err
	}
	if !key.Valid() {
		return domain.TernaryInactive, fmt.Errorf("%w: %s", domain.ErrUnknownPreference, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.Get(key)
	next := current.Next()
	if err := s.save(key, next); err != nil {
		return current, err
	}
	return next, nil
}

// save writes state to the config file and publishes it. Callers hold mu.
func (s *Store) save(key domain.PreferenceKey, state domain.TernaryState) error {
	next := s.cfg
	assign(&next.Library, key, state.String())
	if err := config.SaveConfig(s.dir, &next); err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	s.cfg = next

	s.publishIfChanged(key, state)
	s.logger.Debug("preference saved", "key", string(key), "value", state.String())
	return nil
}

// Watch republishes preferences edited in the config file by hand.
// Blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	return config.Watch(ctx, s.dir, s.logger, s.reload)
}

// Close closes every observer channel
func (s *Store) Close() {
	for _, b := range s.values {
		b.Close()
	}
}

func (s *Store) reload(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.Library = cfg.Library
	for _, key := range domain.PreferenceKeys() {
		s.publishIfChanged(key, domain.ParseTernaryState(lookup(&cfg.Library, key)))
	}
}

func (s *Store) publishIfChanged(key domain.PreferenceKey, state domain.TernaryState) {
	b := s.values[key]
	if current, ok := b.Current(); ok && current == state {
		return
	}
	b.Publish(state)
	s.logger.Info("preference changed", "key", string(key), "value", state.String())
}

func lookup(lib *config.LibraryConfig, key domain.PreferenceKey) string {
	switch key {
	case domain.PrefLibraryFilterRead:
		return lib.FilterRead
	case domain.PrefLibrarySortRead:
		return lib.SortRead
	default:
		return ""
	}
}

func assign(lib *config.LibraryConfig, key domain.PreferenceKey, value string) {
	switch key {
	case domain.PrefLibraryFilterRead:
		lib.FilterRead = value
	case domain.PrefLibrarySortRead:
		lib.SortRead = value
	}
}
